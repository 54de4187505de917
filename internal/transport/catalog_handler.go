package transport

import (
	"errors"
	"net/http"
	"strconv"

	"veggiemarket/internal/catalog"
	"veggiemarket/internal/domain"
	"veggiemarket/internal/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProductRequest represents a product create or update payload
type ProductRequest struct {
	Name  string  `json:"name" validate:"required"`
	Price float64 `json:"price" validate:"required,gt=0"`
	Unit  string  `json:"unit" validate:"required"`
	Image string  `json:"image"`
	Stock string  `json:"stock"`
}

// MutationResponse carries the user-facing status line for a product mutation
type MutationResponse struct {
	Message string `json:"message"`
}

// StatusResponse reports the catalog operating mode and any load advisories
type StatusResponse struct {
	Mode       string             `json:"mode"`
	Advisories []catalog.Advisory `json:"advisories,omitempty"`
}

// MarketRateResponse is a point-in-time reference quote for one product
type MarketRateResponse struct {
	ProductID  int     `json:"product_id"`
	MarketRate float64 `json:"market_rate"`
}

// CatalogHandler handles HTTP requests for the synchronized catalog
type CatalogHandler struct {
	controller *catalog.Controller
	logger     *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(controller *catalog.Controller, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		controller: controller,
		logger:     logger,
	}
}

// RegisterRoutes registers catalog routes. Reads are public; product
// mutations require a seller, the platform aggregate an admin.
func (h *CatalogHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/catalog", func(r chi.Router) {
		r.Get("/", h.GetSnapshot)
		r.Get("/status", h.GetStatus)
		r.Get("/products", h.GetProducts)
		r.Get("/products/{id}/market-rate", h.GetMarketRate)
		r.Get("/notifications", h.GetNotifications)
		r.Get("/reviews", h.GetReviews)
		r.Get("/seller-stats", h.GetSellerStats)
	})

	r.Route("/api/products", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(middleware.RequireSeller(h.logger))
		r.Post("/", h.CreateProduct)
		r.Put("/{id}", h.UpdateProduct)
		r.Delete("/{id}", h.DeleteProduct)
	})

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Patch("/api/notifications/{id}/read", h.MarkNotificationRead)
	})

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(middleware.RequireAdmin(h.logger))
		r.Get("/api/admin/stats", h.GetAdminStats)
	})
}

// GetSnapshot returns the full dashboard view in one response.
func (h *CatalogHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.controller.Snapshot())
}

// GetStatus reports the operating mode and load advisories.
func (h *CatalogHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	snapshot := h.controller.Snapshot()
	middleware.RespondWithJSON(w, http.StatusOK, StatusResponse{
		Mode:       string(snapshot.Mode),
		Advisories: snapshot.Advisories,
	})
}

// GetProducts returns the product collection.
func (h *CatalogHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.controller.Snapshot().Products)
}

// GetNotifications returns the session's notifications.
func (h *CatalogHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.controller.Snapshot().Notifications)
}

// GetReviews returns all reviews.
func (h *CatalogHandler) GetReviews(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.controller.Snapshot().Reviews)
}

// GetSellerStats returns the session seller's aggregate row.
func (h *CatalogHandler) GetSellerStats(w http.ResponseWriter, r *http.Request) {
	stats := h.controller.Snapshot().SellerStats
	if stats == nil {
		middleware.RespondWithError(w, http.StatusNotFound, "seller stats not loaded")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, stats)
}

// GetMarketRate returns a fresh reference quote for one product. Quotes are
// computed on demand and not stored; two consecutive calls may differ.
func (h *CatalogHandler) GetMarketRate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	rate, err := h.controller.MarketRate(id)
	if err != nil {
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, MarketRateResponse{
		ProductID:  id,
		MarketRate: rate,
	})
}

// CreateProduct adds a product. The remote insert may degrade to a local,
// session-only append; both outcomes are reported as success with different
// status lines.
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	message, err := h.controller.CreateProduct(r.Context(), catalog.ProductDraft{
		Name:  req.Name,
		Price: req.Price,
		Unit:  req.Unit,
		Image: req.Image,
		Stock: req.Stock,
	})
	if err != nil {
		h.logger.Error("Product creation failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to add product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, MutationResponse{Message: message})
}

// UpdateProduct applies changes to one product, addressed by session alias.
func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	message, err := h.controller.UpdateProduct(r.Context(), domain.Product{
		ID:    id,
		Name:  req.Name,
		Price: req.Price,
		Unit:  req.Unit,
		Image: req.Image,
		Stock: req.Stock,
	})
	if err != nil {
		h.respondMutationError(w, "update", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, MutationResponse{Message: message})
}

// DeleteProduct removes one product, addressed by session alias.
func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	message, err := h.controller.DeleteProduct(r.Context(), id)
	if err != nil {
		h.respondMutationError(w, "delete", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, MutationResponse{Message: message})
}

// MarkNotificationRead flips one notification to read.
func (h *CatalogHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.controller.MarkNotificationRead(r.Context(), id); err != nil {
		if errors.Is(err, catalog.ErrUnknownNotification) {
			middleware.RespondWithError(w, http.StatusNotFound, "notification not found")
			return
		}
		h.logger.Error("Failed to mark notification read", zap.Error(err), zap.String("id", id))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update notification")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, MutationResponse{Message: "Notification marked as read"})
}

// GetAdminStats returns the platform aggregate derived from the loaded
// collections.
func (h *CatalogHandler) GetAdminStats(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.controller.AdminStats())
}

func (h *CatalogHandler) respondMutationError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, catalog.ErrUnknownProduct):
		middleware.RespondWithError(w, http.StatusNotFound, "product has no remote counterpart")
	case errors.Is(err, catalog.ErrOperationInFlight):
		middleware.RespondWithError(w, http.StatusConflict, "another operation for this product is in progress")
	default:
		h.logger.Error("Product mutation failed", zap.String("op", op), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to "+op+" product")
	}
}
