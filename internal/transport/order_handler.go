package transport

import (
	"errors"
	"net/http"

	"veggiemarket/internal/middleware"
	"veggiemarket/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CheckoutRequest carries the buyer-entered delivery information
type CheckoutRequest struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone" validate:"required"`
	Address string `json:"address" validate:"required"`
	Pincode string `json:"pincode" validate:"required"`
}

// OrderHandler handles HTTP requests for checkout
type OrderHandler struct {
	orders  *service.OrderService
	cart    *service.CartService
	buyerID uuid.UUID
	logger  *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders *service.OrderService, cart *service.CartService, buyerID uuid.UUID, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orders:  orders,
		cart:    cart,
		buyerID: buyerID,
		logger:  logger,
	}
}

// RegisterRoutes registers the checkout route, buyer-gated.
func (h *OrderHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(middleware.RequireBuyer(h.logger))
		r.Post("/checkout", h.Checkout)
	})
}

// Checkout turns the session cart into a persisted order and clears the cart
// on success. Checkout requires the live store; in fallback mode it fails
// closed rather than fabricating an order that would vanish on reload.
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetUserEmail(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "missing session")
		return
	}

	var req CheckoutRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.orders.Checkout(r.Context(), h.buyerID, h.cart.Items(session), service.ShippingDetails{
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
		Pincode: req.Pincode,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyCart):
			middleware.RespondWithError(w, http.StatusBadRequest, "cart is empty")
		case errors.Is(err, service.ErrCheckoutOffline):
			middleware.RespondWithError(w, http.StatusServiceUnavailable, "checkout is unavailable while the store is unreachable")
		case errors.Is(err, service.ErrUnmappableCartItem):
			middleware.RespondWithError(w, http.StatusConflict, "cart contains a product that only exists in this session")
		default:
			h.logger.Error("Checkout failed", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to place order")
		}
		return
	}

	h.cart.Clear(session)

	h.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.Float64("total", order.Total),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, order)
}
