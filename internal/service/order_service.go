package service

import (
	"context"
	"errors"
	"fmt"

	"veggiemarket/internal/catalog"
	"veggiemarket/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrCheckoutOffline    = errors.New("checkout requires the remote store")
	ErrUnmappableCartItem = errors.New("cart item has no remote product")
)

// OrderStore persists checkout results.
type OrderStore interface {
	Create(ctx context.Context, order *domain.Order) error
	InsertNotification(ctx context.Context, n domain.Notification) error
}

// ProductResolver maps session product aliases to remote identifiers.
type ProductResolver interface {
	Mode() catalog.Mode
	RemoteProductID(alias int) (uuid.UUID, bool)
}

// ShippingDetails is the buyer-entered delivery information.
type ShippingDetails struct {
	Name    string
	Phone   string
	Address string
	Pincode string
}

// OrderService turns a session cart into a persisted order. Orders exist
// only remotely; in fallback mode checkout fails closed rather than
// fabricating an order that would vanish on reload.
type OrderService struct {
	orders   OrderStore
	resolver ProductResolver
	log      *zap.Logger
}

func NewOrderService(orders OrderStore, resolver ProductResolver, log *zap.Logger) *OrderService {
	return &OrderService{orders: orders, resolver: resolver, log: log}
}

// Checkout creates a pending order from the cart. Every cart line must map
// to a remote product; locally-held products cannot be ordered.
func (s *OrderService) Checkout(ctx context.Context, buyerID uuid.UUID, items []domain.CartItem, details ShippingDetails) (*domain.Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	if s.resolver.Mode() != catalog.ModeLive {
		return nil, ErrCheckoutOffline
	}

	order := &domain.Order{
		ID:      uuid.New(),
		BuyerID: buyerID,
		Status:  "pending",
		Name:    details.Name,
		Phone:   details.Phone,
		Address: details.Address,
		Pincode: details.Pincode,
	}

	for _, item := range items {
		remoteID, ok := s.resolver.RemoteProductID(item.ID)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnmappableCartItem, item.Name)
		}
		order.Items = append(order.Items, domain.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: remoteID,
			Quantity:  item.Quantity,
			UnitPrice: item.Price,
		})
		order.Total += item.Price * float64(item.Quantity)
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	s.log.Info("order placed",
		zap.String("order_id", order.ID.String()),
		zap.Float64("total", order.Total),
		zap.Int("items", len(order.Items)),
	)

	// The confirmation notification is best-effort; the order stands even if
	// it cannot be written.
	notification := domain.Notification{
		UserID:  buyerID.String(),
		Title:   "Order placed",
		Message: fmt.Sprintf("Your order of %d item(s) totalling %.2f is pending", len(order.Items), order.Total),
		Type:    domain.NotificationOrder,
		Metadata: map[string]any{
			"order_id": order.ID.String(),
		},
	}
	if err := s.orders.InsertNotification(ctx, notification); err != nil {
		s.log.Warn("order notification not recorded", zap.Error(err))
	}

	return order, nil
}
