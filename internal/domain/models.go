package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is the dashboard role derived for a logged-in user.
type Role string

const (
	RoleBuyer   Role = "buyer"
	RoleSeller  Role = "seller"
	RoleAdmin   Role = "admin"
	RoleInvalid Role = "invalid"
)

// NotificationType is the closed set of notification categories.
type NotificationType string

const (
	NotificationOrder     NotificationType = "order"
	NotificationProduct   NotificationType = "product"
	NotificationSystem    NotificationType = "system"
	NotificationPromotion NotificationType = "promotion"
)

// Product is the catalog entry served to the dashboards. The ID is a
// session-local alias; the remote UUID is tracked separately by the catalog
// controller's identity map.
type Product struct {
	ID     int     `json:"id"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	Unit   string  `json:"unit"`
	Image  string  `json:"image"`
	Seller string  `json:"seller"`
	Stock  string  `json:"stock"`
}

// RemoteProduct is the product row as the remote store holds it.
type RemoteProduct struct {
	ID            uuid.UUID
	Name          string
	Price         float64
	Unit          string
	Images        []string
	StockQuantity int
	Status        string
	SellerID      uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ProductChanges is the partial record applied by a product update.
type ProductChanges struct {
	Name          string
	Price         float64
	Unit          string
	Image         string
	StockQuantity int
}

// Notification identifiers are strings because fallback notifications are not
// backed by remote rows.
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	IsRead    bool             `json:"is_read"`
	Metadata  map[string]any   `json:"metadata,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// Review is a buyer rating for a product, rating in [1,5].
type Review struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	BuyerID   string    `json:"buyer_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SellerStats is a derived aggregate, recomputed externally and read-only here.
type SellerStats struct {
	ID            string    `json:"id"`
	SellerID      string    `json:"seller_id"`
	TotalOrders   int       `json:"total_orders"`
	TotalRevenue  float64   `json:"total_revenue"`
	TotalProducts int       `json:"total_products"`
	AverageRating float64   `json:"average_rating"`
	LastUpdated   time.Time `json:"last_updated"`
}

// CartItem is a product reference plus quantity, scoped to one session and
// never persisted.
type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}

// PlatformStats is the admin dashboard aggregate, derived from the loaded
// collections.
type PlatformStats struct {
	TotalProducts int     `json:"total_products"`
	TotalReviews  int     `json:"total_reviews"`
	TotalOrders   int     `json:"total_orders"`
	TotalRevenue  float64 `json:"total_revenue"`
	AverageRating float64 `json:"average_rating"`
}

// User is a marketplace account held by the remote store.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Order is a checkout result, inserted through the remote store.
type Order struct {
	ID        uuid.UUID   `json:"id"`
	BuyerID   uuid.UUID   `json:"buyer_id"`
	Total     float64     `json:"total"`
	Status    string      `json:"status"`
	Name      string      `json:"name"`
	Phone     string      `json:"phone"`
	Address   string      `json:"address"`
	Pincode   string      `json:"pincode"`
	Items     []OrderItem `json:"items"`
	CreatedAt time.Time   `json:"created_at"`
}

// OrderItem is a single product line within an order.
type OrderItem struct {
	ID        uuid.UUID `json:"id"`
	OrderID   uuid.UUID `json:"order_id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	UnitPrice float64   `json:"unit_price"`
}
