package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"veggiemarket/internal/domain"

	"github.com/google/uuid"
)

var ErrProductNotFound = errors.New("product not found")

// Catalog provides the typed remote-store operations the catalog controller
// depends on, expressed through the generic client.
type Catalog struct {
	client *Client
}

func NewCatalog(client *Client) *Catalog {
	return &Catalog{client: client}
}

// Probe is the bounded, minimal-cost connectivity check run before the
// initial load.
func (s *Catalog) Probe(ctx context.Context) error {
	if err := s.client.Ping(ctx); err != nil {
		return fmt.Errorf("store unreachable: %w", err)
	}
	_, err := s.client.From("products").Select("id").Limit(1).Get(ctx)
	if err != nil {
		return fmt.Errorf("probe query failed: %w", err)
	}
	return nil
}

// ActiveProducts fetches active products, newest first.
func (s *Catalog) ActiveProducts(ctx context.Context) ([]domain.RemoteProduct, error) {
	rows, err := s.client.From("products").
		Select("id", "name", "price", "unit", "images", "stock_quantity", "status", "seller_id", "created_at", "updated_at").
		Eq("status", "active").
		Order("created_at", true).
		Get(ctx)
	if err != nil {
		return nil, err
	}

	products := make([]domain.RemoteProduct, 0, len(rows))
	for _, row := range rows {
		products = append(products, domain.RemoteProduct{
			ID:            asUUID(row["id"]),
			Name:          asString(row["name"]),
			Price:         asFloat(row["price"]),
			Unit:          asString(row["unit"]),
			Images:        asStringList(row["images"]),
			StockQuantity: asInt(row["stock_quantity"]),
			Status:        asString(row["status"]),
			SellerID:      asUUID(row["seller_id"]),
			CreatedAt:     asTime(row["created_at"]),
			UpdatedAt:     asTime(row["updated_at"]),
		})
	}
	return products, nil
}

// NotificationsFor fetches a user's notifications, newest first.
func (s *Catalog) NotificationsFor(ctx context.Context, userID uuid.UUID) ([]domain.Notification, error) {
	rows, err := s.client.From("notifications").
		Eq("user_id", userID).
		Order("created_at", true).
		Get(ctx)
	if err != nil {
		return nil, err
	}

	notifications := make([]domain.Notification, 0, len(rows))
	for _, row := range rows {
		notifications = append(notifications, domain.Notification{
			ID:        asUUID(row["id"]).String(),
			UserID:    asUUID(row["user_id"]).String(),
			Title:     asString(row["title"]),
			Message:   asString(row["message"]),
			Type:      domain.NotificationType(asString(row["type"])),
			IsRead:    asBool(row["is_read"]),
			Metadata:  asMetadata(row["metadata"]),
			CreatedAt: asTime(row["created_at"]),
		})
	}
	return notifications, nil
}

// Reviews fetches all reviews, newest first.
func (s *Catalog) Reviews(ctx context.Context) ([]domain.Review, error) {
	rows, err := s.client.From("reviews").
		Order("created_at", true).
		Get(ctx)
	if err != nil {
		return nil, err
	}

	reviews := make([]domain.Review, 0, len(rows))
	for _, row := range rows {
		reviews = append(reviews, domain.Review{
			ID:        asUUID(row["id"]).String(),
			ProductID: asUUID(row["product_id"]).String(),
			BuyerID:   asUUID(row["buyer_id"]).String(),
			Rating:    asInt(row["rating"]),
			Comment:   asString(row["comment"]),
			CreatedAt: asTime(row["created_at"]),
		})
	}
	return reviews, nil
}

// SellerStatsFor fetches the single stats row for a seller.
func (s *Catalog) SellerStatsFor(ctx context.Context, sellerID uuid.UUID) (*domain.SellerStats, error) {
	row, err := s.client.From("seller_stats").
		Eq("seller_id", sellerID).
		Single(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.SellerStats{
		ID:            asUUID(row["id"]).String(),
		SellerID:      asUUID(row["seller_id"]).String(),
		TotalOrders:   asInt(row["total_orders"]),
		TotalRevenue:  asFloat(row["total_revenue"]),
		TotalProducts: asInt(row["total_products"]),
		AverageRating: asFloat(row["average_rating"]),
		LastUpdated:   asTime(row["last_updated"]),
	}, nil
}

// InsertProduct creates a product row and returns its remote identifier.
func (s *Catalog) InsertProduct(ctx context.Context, p domain.RemoteProduct) (uuid.UUID, error) {
	row, err := s.client.Insert("products", Row{
		"name":           p.Name,
		"price":          p.Price,
		"unit":           p.Unit,
		"images":         jsonValue(p.Images),
		"stock_quantity": p.StockQuantity,
		"status":         p.Status,
		"seller_id":      p.SellerID,
	}).Returning("id").Single(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	return asUUID(row["id"]), nil
}

// UpdateProduct applies a partial update to one product row.
func (s *Catalog) UpdateProduct(ctx context.Context, id uuid.UUID, changes domain.ProductChanges) error {
	affected, err := s.client.Update("products", Row{
		"name":           changes.Name,
		"price":          changes.Price,
		"unit":           changes.Unit,
		"images":         jsonValue([]string{changes.Image}),
		"stock_quantity": changes.StockQuantity,
		"updated_at":     time.Now().UTC(),
	}).Eq("id", id).Exec(ctx)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// DeleteProduct removes one product row.
func (s *Catalog) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	affected, err := s.client.Delete("products").Eq("id", id).Exec(ctx)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// MarkNotificationRead flips one notification to read. The flag is one-way;
// there is no unread path.
func (s *Catalog) MarkNotificationRead(ctx context.Context, id uuid.UUID) error {
	_, err := s.client.Update("notifications", Row{
		"is_read": true,
	}).Eq("id", id).Exec(ctx)
	return err
}
