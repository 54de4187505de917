package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"veggiemarket/internal/catalog"
	"veggiemarket/internal/domain"
	"veggiemarket/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errStoreDown = errors.New("store unreachable")

// unreachableStore fails every call, driving the controller into fallback.
type unreachableStore struct{}

func (unreachableStore) Probe(context.Context) error { return errStoreDown }
func (unreachableStore) ActiveProducts(context.Context) ([]domain.RemoteProduct, error) {
	return nil, errStoreDown
}
func (unreachableStore) NotificationsFor(context.Context, uuid.UUID) ([]domain.Notification, error) {
	return nil, errStoreDown
}
func (unreachableStore) Reviews(context.Context) ([]domain.Review, error) {
	return nil, errStoreDown
}
func (unreachableStore) SellerStatsFor(context.Context, uuid.UUID) (*domain.SellerStats, error) {
	return nil, errStoreDown
}
func (unreachableStore) InsertProduct(context.Context, domain.RemoteProduct) (uuid.UUID, error) {
	return uuid.Nil, errStoreDown
}
func (unreachableStore) UpdateProduct(context.Context, uuid.UUID, domain.ProductChanges) error {
	return errStoreDown
}
func (unreachableStore) DeleteProduct(context.Context, uuid.UUID) error {
	return errStoreDown
}
func (unreachableStore) MarkNotificationRead(context.Context, uuid.UUID) error {
	return errStoreDown
}

const testSecret = "test-secret"

func newTestRouter(t *testing.T) chi.Router {
	t.Helper()

	logger := zap.NewNop()
	controller := catalog.NewController(
		unreachableStore{},
		catalog.NewProvider(),
		catalog.Session{},
		"https://example.com/placeholder.jpg",
		logger,
	)
	if err := controller.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	router := chi.NewRouter()
	handler := NewCatalogHandler(controller, logger)
	handler.RegisterRoutes(router, middleware.AuthMiddleware(testSecret, logger))
	return router
}

func tokenFor(t *testing.T, role string) string {
	t.Helper()

	claims := jwt.MapClaims{
		"email": "demo@veggistore.com",
		"role":  role,
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestGetProductsServesFallbackCatalog(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest("GET", "/api/catalog/products", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var products []domain.Product
	if err := json.Unmarshal(w.Body.Bytes(), &products); err != nil {
		t.Fatalf("decode products: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 fallback products, got %d", len(products))
	}
	if products[0].Name != "Fresh Tomatoes" {
		t.Errorf("expected Fresh Tomatoes first, got %s", products[0].Name)
	}
}

func TestGetStatusReportsFallbackMode(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest("GET", "/api/catalog/status", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var status StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.Mode != string(catalog.ModeFallback) {
		t.Errorf("expected fallback mode, got %s", status.Mode)
	}
}

func TestProductMutationRequiresSellerToken(t *testing.T) {
	router := newTestRouter(t)
	body, _ := json.Marshal(ProductRequest{Name: "Carrots", Price: 25, Unit: "kg"})

	// No token at all
	req := httptest.NewRequest("POST", "/api/products/", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", w.Code)
	}

	// Buyer token is not enough
	req = httptest.NewRequest("POST", "/api/products/", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, "buyer"))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 with buyer token, got %d", w.Code)
	}
}

func TestCreateProductDegradesToLocalAppend(t *testing.T) {
	router := newTestRouter(t)
	body, _ := json.Marshal(ProductRequest{Name: "Carrots", Price: 25, Unit: "kg", Stock: "In Stock (30 kg)"})

	req := httptest.NewRequest("POST", "/api/products/", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, "seller"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp MutationResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Message == "Product added successfully" {
		t.Error("remote insert cannot succeed against an unreachable store")
	}

	// The product is now visible in the catalog
	req = httptest.NewRequest("GET", "/api/catalog/products", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var products []domain.Product
	if err := json.Unmarshal(w.Body.Bytes(), &products); err != nil {
		t.Fatalf("decode products: %v", err)
	}
	if len(products) != 3 {
		t.Fatalf("expected 3 products after local append, got %d", len(products))
	}
}

func TestMarketRateUnknownProductIs404(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest("GET", "/api/catalog/products/99/market-rate", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown product, got %d", w.Code)
	}
}

func TestMarketRateStaysInBand(t *testing.T) {
	router := newTestRouter(t)

	// Fresh Tomatoes at 40/kg quotes within plus or minus ten percent
	for i := 0; i < 20; i++ {
		req := httptest.NewRequest("GET", "/api/catalog/products/1/market-rate", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}

		var resp MarketRateResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.MarketRate < 36 || resp.MarketRate > 44 {
			t.Fatalf("market rate %f outside expected band", resp.MarketRate)
		}
	}
}

func TestAdminStatsRequiresAdmin(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest("GET", "/api/admin/stats", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, "seller"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for seller, got %d", w.Code)
	}

	req = httptest.NewRequest("GET", "/api/admin/stats", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, "admin"))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", w.Code)
	}

	var stats domain.PlatformStats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.TotalProducts != 2 {
		t.Errorf("expected 2 products in platform stats, got %d", stats.TotalProducts)
	}
}
