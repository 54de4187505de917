package catalog

import (
	"time"

	"veggiemarket/internal/domain"
)

// Dataset is one fixed snapshot of all four resource collections.
type Dataset struct {
	Products      []domain.Product
	Notifications []domain.Notification
	Reviews       []domain.Review
	SellerStats   *domain.SellerStats
}

// Provider supplies the hard-coded demonstration dataset used when the
// remote store is unreachable. Load is deterministic apart from timestamps.
type Provider struct{}

func NewProvider() *Provider {
	return &Provider{}
}

func (p *Provider) Load() Dataset {
	now := time.Now().UTC()

	products := []domain.Product{
		{
			ID:     1,
			Name:   "Fresh Tomatoes",
			Price:  40,
			Unit:   "kg",
			Image:  "https://images.unsplash.com/photo-1607305387299-a3d9611cd469?crop=entropy&cs=tinysrgb&fit=max&fm=jpg&q=80&w=1080",
			Seller: "Local Farm",
			Stock:  "In Stock (50 kg)",
		},
		{
			ID:     2,
			Name:   "Fresh Potatoes",
			Price:  30,
			Unit:   "kg",
			Image:  "https://images.unsplash.com/photo-1518709268805-4e9042af2176?crop=entropy&cs=tinysrgb&fit=max&fm=jpg&q=80&w=1080",
			Seller: "Local Farm",
			Stock:  "In Stock (100 kg)",
		},
	}

	return Dataset{
		Products: products,
		Notifications: []domain.Notification{
			{
				ID:        "1",
				UserID:    "demo",
				Title:     "Welcome to VeggieMarket",
				Message:   "Your local store is ready to use",
				Type:      domain.NotificationSystem,
				IsRead:    false,
				CreatedAt: now,
			},
		},
		Reviews: []domain.Review{
			{
				ID:        "1",
				ProductID: "10000000-0000-0000-0000-000000000001",
				BuyerID:   "demo",
				Rating:    5,
				Comment:   "Great quality vegetables!",
				CreatedAt: now,
			},
		},
		SellerStats: &domain.SellerStats{
			ID:            "1",
			SellerID:      "demo",
			TotalOrders:   0,
			TotalRevenue:  0,
			TotalProducts: len(products),
			AverageRating: 0,
			LastUpdated:   now,
		},
	}
}
