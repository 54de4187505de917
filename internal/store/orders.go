package store

import (
	"context"
	"fmt"

	"veggiemarket/internal/domain"
)

// Orders persists checkout results through the remote store.
type Orders struct {
	client *Client
}

func NewOrders(client *Client) *Orders {
	return &Orders{client: client}
}

// Create inserts the order row and then its items. The remote store offers no
// transactional composition across calls, so a failure between the two leaves
// a headless order; the caller reports the error and the order stays visible
// as pending.
func (s *Orders) Create(ctx context.Context, order *domain.Order) error {
	err := s.client.Insert("orders", Row{
		"id":       order.ID,
		"buyer_id": order.BuyerID,
		"total":    order.Total,
		"status":   order.Status,
		"name":     order.Name,
		"phone":    order.Phone,
		"address":  order.Address,
		"pincode":  order.Pincode,
	}).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	for _, item := range order.Items {
		err := s.client.Insert("order_items", Row{
			"id":         item.ID,
			"order_id":   order.ID,
			"product_id": item.ProductID,
			"quantity":   item.Quantity,
			"unit_price": item.UnitPrice,
		}).Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}
	return nil
}

// InsertNotification records an order notification for the buyer.
func (s *Orders) InsertNotification(ctx context.Context, n domain.Notification) error {
	return s.client.Insert("notifications", Row{
		"user_id":  n.UserID,
		"title":    n.Title,
		"message":  n.Message,
		"type":     string(n.Type),
		"is_read":  n.IsRead,
		"metadata": jsonValue(n.Metadata),
	}).Exec(ctx)
}
