package service

import (
	"sync"

	"veggiemarket/internal/domain"
)

// CartService holds the session-scoped shopping carts. Carts are transient
// derived state owned by the buyer view: in-memory only, never persisted,
// lost on reload.
type CartService struct {
	mu    sync.Mutex
	carts map[string][]domain.CartItem
}

func NewCartService() *CartService {
	return &CartService{carts: make(map[string][]domain.CartItem)}
}

// Add puts one unit of a product into a session's cart, incrementing the
// quantity if the product is already there.
func (s *CartService) Add(sessionID string, product domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.carts[sessionID]
	for i := range items {
		if items[i].ID == product.ID {
			items[i].Quantity++
			return
		}
	}
	s.carts[sessionID] = append(items, domain.CartItem{Product: product, Quantity: 1})
}

// UpdateQuantity applies a delta to one line. A line whose quantity would
// drop to zero or below is removed.
func (s *CartService) UpdateQuantity(sessionID string, productID, delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.carts[sessionID]
	for i := range items {
		if items[i].ID == productID {
			items[i].Quantity += delta
			if items[i].Quantity <= 0 {
				s.carts[sessionID] = append(items[:i], items[i+1:]...)
			}
			return
		}
	}
}

// Remove drops one line regardless of quantity.
func (s *CartService) Remove(sessionID string, productID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.carts[sessionID]
	for i := range items {
		if items[i].ID == productID {
			s.carts[sessionID] = append(items[:i], items[i+1:]...)
			return
		}
	}
}

// Items returns a copy of the session's cart.
func (s *CartService) Items(sessionID string) []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.carts[sessionID]
	out := make([]domain.CartItem, len(items))
	copy(out, items)
	return out
}

// Total sums price×quantity across the cart.
func (s *CartService) Total(sessionID string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total float64
	for _, item := range s.carts[sessionID] {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// Clear empties the session's cart, for example after checkout.
func (s *CartService) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
}
