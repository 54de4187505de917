package transport

import (
	"net/http"
	"strconv"

	"veggiemarket/internal/catalog"
	"veggiemarket/internal/domain"
	"veggiemarket/internal/middleware"
	"veggiemarket/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AddCartItemRequest references a catalog product by its session alias
type AddCartItemRequest struct {
	ProductID int `json:"product_id" validate:"required,gt=0"`
}

// UpdateCartItemRequest adjusts a cart line by a signed delta
type UpdateCartItemRequest struct {
	Delta int `json:"delta" validate:"required"`
}

// CartResponse is the session cart with its running total
type CartResponse struct {
	Items []domain.CartItem `json:"items"`
	Total float64           `json:"total"`
}

// CartHandler handles HTTP requests for the session cart. Carts are keyed by
// the authenticated email and never persisted.
type CartHandler struct {
	cart       *service.CartService
	controller *catalog.Controller
	logger     *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cart *service.CartService, controller *catalog.Controller, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		cart:       cart,
		controller: controller,
		logger:     logger,
	}
}

// RegisterRoutes registers the cart routes, all buyer-gated.
func (h *CartHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(middleware.RequireBuyer(h.logger))
		r.Get("/", h.GetCart)
		r.Delete("/", h.ClearCart)
		r.Post("/items", h.AddItem)
		r.Put("/items/{id}", h.UpdateItem)
		r.Delete("/items/{id}", h.RemoveItem)
	})
}

// GetCart returns the session cart.
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetUserEmail(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "missing session")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, CartResponse{
		Items: h.cart.Items(session),
		Total: h.cart.Total(session),
	})
}

// AddItem puts one unit of a catalog product in the cart. Adding a product
// already present increments its line instead of duplicating it.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetUserEmail(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "missing session")
		return
	}

	var req AddCartItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, found := h.findProduct(req.ProductID)
	if !found {
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		return
	}

	h.cart.Add(session, product)
	middleware.RespondWithJSON(w, http.StatusOK, CartResponse{
		Items: h.cart.Items(session),
		Total: h.cart.Total(session),
	})
}

// UpdateItem adjusts a cart line quantity; a non-positive result drops the
// line.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetUserEmail(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "missing session")
		return
	}

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req UpdateCartItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.cart.UpdateQuantity(session, id, req.Delta)
	middleware.RespondWithJSON(w, http.StatusOK, CartResponse{
		Items: h.cart.Items(session),
		Total: h.cart.Total(session),
	})
}

// RemoveItem drops one cart line.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetUserEmail(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "missing session")
		return
	}

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	h.cart.Remove(session, id)
	middleware.RespondWithJSON(w, http.StatusOK, CartResponse{
		Items: h.cart.Items(session),
		Total: h.cart.Total(session),
	})
}

// ClearCart empties the session cart.
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetUserEmail(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "missing session")
		return
	}

	h.cart.Clear(session)
	middleware.RespondWithJSON(w, http.StatusOK, CartResponse{
		Items: []domain.CartItem{},
		Total: 0,
	})
}

func (h *CartHandler) findProduct(alias int) (domain.Product, bool) {
	for _, p := range h.controller.Snapshot().Products {
		if p.ID == alias {
			return p, true
		}
	}
	return domain.Product{}, false
}
