package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"veggiemarket/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// fakeStore is an in-memory Store with per-call failure injection.
type fakeStore struct {
	mu sync.Mutex

	probeErr         error
	productsErr      error
	notificationsErr error
	reviewsErr       error
	statsErr         error
	insertErr        error
	updateErr        error
	deleteErr        error

	products      []domain.RemoteProduct
	notifications []domain.Notification
	reviews       []domain.Review
	stats         *domain.SellerStats

	calls map[string]int

	// deleteGate, when set, blocks DeleteProduct until closed.
	// deleteEntered reports that the blocked call reached the store.
	deleteGate    chan struct{}
	deleteEntered chan struct{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{calls: make(map[string]int)}
}

func (s *fakeStore) count(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[op]++
}

func (s *fakeStore) callCount(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *fakeStore) Probe(ctx context.Context) error {
	s.count("probe")
	return s.probeErr
}

func (s *fakeStore) ActiveProducts(ctx context.Context) ([]domain.RemoteProduct, error) {
	s.count("products")
	if s.productsErr != nil {
		return nil, s.productsErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.RemoteProduct, len(s.products))
	copy(out, s.products)
	return out, nil
}

func (s *fakeStore) NotificationsFor(ctx context.Context, userID uuid.UUID) ([]domain.Notification, error) {
	s.count("notifications")
	if s.notificationsErr != nil {
		return nil, s.notificationsErr
	}
	return s.notifications, nil
}

func (s *fakeStore) Reviews(ctx context.Context) ([]domain.Review, error) {
	s.count("reviews")
	if s.reviewsErr != nil {
		return nil, s.reviewsErr
	}
	return s.reviews, nil
}

func (s *fakeStore) SellerStatsFor(ctx context.Context, sellerID uuid.UUID) (*domain.SellerStats, error) {
	s.count("stats")
	if s.statsErr != nil {
		return nil, s.statsErr
	}
	return s.stats, nil
}

func (s *fakeStore) InsertProduct(ctx context.Context, p domain.RemoteProduct) (uuid.UUID, error) {
	s.count("insert")
	if s.insertErr != nil {
		return uuid.Nil, s.insertErr
	}
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	s.mu.Lock()
	// newest first, matching the fetch ordering
	s.products = append([]domain.RemoteProduct{p}, s.products...)
	s.mu.Unlock()
	return p.ID, nil
}

func (s *fakeStore) UpdateProduct(ctx context.Context, id uuid.UUID, changes domain.ProductChanges) error {
	s.count("update")
	if s.updateErr != nil {
		return s.updateErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].ID == id {
			s.products[i].Name = changes.Name
			s.products[i].Price = changes.Price
			s.products[i].Unit = changes.Unit
			s.products[i].Images = []string{changes.Image}
			s.products[i].StockQuantity = changes.StockQuantity
			return nil
		}
	}
	return errors.New("not found")
}

func (s *fakeStore) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	s.count("delete")
	if s.deleteEntered != nil {
		s.deleteEntered <- struct{}{}
	}
	if s.deleteGate != nil {
		<-s.deleteGate
	}
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].ID == id {
			s.products = append(s.products[:i], s.products[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

func (s *fakeStore) MarkNotificationRead(ctx context.Context, id uuid.UUID) error {
	s.count("mark_read")
	return nil
}

func remoteProduct(name string, price float64, qty int) domain.RemoteProduct {
	return domain.RemoteProduct{
		ID:            uuid.New(),
		Name:          name,
		Price:         price,
		Unit:          "kg",
		Images:        []string{"https://img.example/" + name},
		StockQuantity: qty,
		Status:        "active",
		SellerID:      uuid.New(),
	}
}

func newTestController(store Store, fallback FallbackSource) *Controller {
	if fallback == nil {
		fallback = NewProvider()
	}
	return NewController(store, fallback, Session{
		BuyerID:  uuid.MustParse("00000000-0000-0000-0000-000000000002"),
		SellerID: uuid.MustParse("00000000-0000-0000-0000-000000000004"),
	}, "https://img.example/placeholder", zap.NewNop())
}

func TestInitializeFallbackOnProbeFailure(t *testing.T) {
	store := newFakeStore()
	store.probeErr = errors.New("connection refused")

	c := newTestController(store, nil)
	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	if c.Mode() != ModeFallback {
		t.Fatalf("expected fallback mode, got %s", c.Mode())
	}

	snap := c.Snapshot()
	if len(snap.Products) == 0 {
		t.Error("fallback products are empty")
	}
	if len(snap.Notifications) == 0 {
		t.Error("fallback notifications are empty")
	}
	if len(snap.Reviews) == 0 {
		t.Error("fallback reviews are empty")
	}
	if snap.SellerStats == nil {
		t.Error("fallback seller stats missing")
	}
	if len(snap.Advisories) == 0 {
		t.Error("expected a fallback advisory")
	}

	// None of the four live fetches may have been attempted.
	for _, op := range []string{"products", "notifications", "reviews", "stats"} {
		if n := store.callCount(op); n != 0 {
			t.Errorf("live fetch %s was attempted %d times after probe failure", op, n)
		}
	}
}

func TestInitializeFetchFailureIsolation(t *testing.T) {
	store := newFakeStore()
	store.products = []domain.RemoteProduct{remoteProduct("Fresh Tomatoes", 40, 50)}
	store.notificationsErr = errors.New("notifications table missing")
	store.reviews = []domain.Review{{ID: "r1", Rating: 4}}
	store.stats = &domain.SellerStats{ID: "s1"}

	c := newTestController(store, nil)
	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	if c.Mode() != ModeLive {
		t.Fatalf("expected live mode, got %s", c.Mode())
	}

	snap := c.Snapshot()
	if len(snap.Products) != 1 {
		t.Errorf("expected 1 product despite notifications failure, got %d", len(snap.Products))
	}
	if len(snap.Notifications) != 0 {
		t.Errorf("expected empty notifications, got %d", len(snap.Notifications))
	}
	if len(snap.Reviews) != 1 {
		t.Errorf("expected reviews to load, got %d", len(snap.Reviews))
	}

	found := false
	for _, a := range snap.Advisories {
		if a.Collection == "notifications" {
			found = true
		}
	}
	if !found {
		t.Error("expected an advisory for the failed notifications fetch")
	}
}

func TestInitializeAdvisoryPerFailedCollection(t *testing.T) {
	store := newFakeStore()
	store.products = []domain.RemoteProduct{remoteProduct("Fresh Tomatoes", 40, 50)}
	store.notificationsErr = errors.New("boom")
	store.reviewsErr = errors.New("boom")
	store.statsErr = errors.New("boom")

	c := newTestController(store, nil)
	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	snap := c.Snapshot()
	collections := make(map[string]bool)
	for _, a := range snap.Advisories {
		collections[a.Collection] = true
	}
	for _, want := range []string{"notifications", "reviews", "seller_stats"} {
		if !collections[want] {
			t.Errorf("missing advisory for failed %s fetch", want)
		}
	}
}

func TestInitializeIsSingleShot(t *testing.T) {
	store := newFakeStore()
	c := newTestController(store, nil)

	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("first Initialize returned error: %v", err)
	}
	if err := c.Initialize(context.Background()); !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("expected ErrAlreadyInitialized, got %v", err)
	}
}

func TestAliasStabilityAcrossRefetch(t *testing.T) {
	store := newFakeStore()
	first := remoteProduct("Fresh Tomatoes", 40, 50)
	second := remoteProduct("Fresh Potatoes", 30, 100)
	store.products = []domain.RemoteProduct{first, second}

	c := newTestController(store, nil)
	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	before := map[string]int{}
	for _, p := range c.Snapshot().Products {
		before[p.Name] = p.ID
	}

	// A new remote row appears at the head of the list; existing products
	// must keep their aliases.
	store.mu.Lock()
	store.products = append([]domain.RemoteProduct{remoteProduct("Fresh Peas", 20, 10)}, store.products...)
	store.mu.Unlock()
	c.refetchProducts(context.Background())

	after := map[string]int{}
	for _, p := range c.Snapshot().Products {
		after[p.Name] = p.ID
	}

	for name, id := range before {
		if after[name] != id {
			t.Errorf("alias for %s changed across refetch: %d -> %d", name, id, after[name])
		}
	}
	if after["Fresh Peas"] != 3 {
		t.Errorf("new product should get the next alias 3, got %d", after["Fresh Peas"])
	}
}

func TestStockDescriptorSynthesis(t *testing.T) {
	store := newFakeStore()
	inStock := remoteProduct("Fresh Tomatoes", 40, 50)
	outOfStock := remoteProduct("Fresh Okra", 25, 0)
	outOfStock.Images = nil
	store.products = []domain.RemoteProduct{inStock, outOfStock}

	c := newTestController(store, nil)
	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	for _, p := range c.Snapshot().Products {
		switch p.Name {
		case "Fresh Tomatoes":
			if p.Stock != "In Stock (50 kg)" {
				t.Errorf("unexpected stock descriptor %q", p.Stock)
			}
		case "Fresh Okra":
			if p.Stock != "Out of Stock" {
				t.Errorf("unexpected stock descriptor %q", p.Stock)
			}
			if p.Image != "https://img.example/placeholder" {
				t.Errorf("expected placeholder image, got %q", p.Image)
			}
		}
	}
}

func TestMarkNotificationReadIsMonotonic(t *testing.T) {
	store := newFakeStore()
	store.probeErr = errors.New("offline")

	c := newTestController(store, nil)
	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	if err := c.MarkNotificationRead(context.Background(), "1"); err != nil {
		t.Fatalf("first mark failed: %v", err)
	}
	if !c.Snapshot().Notifications[0].IsRead {
		t.Fatal("notification not marked read")
	}

	// Second mark is a no-op, and fallback mode never calls the store.
	if err := c.MarkNotificationRead(context.Background(), "1"); err != nil {
		t.Fatalf("repeat mark failed: %v", err)
	}
	if n := store.callCount("mark_read"); n != 0 {
		t.Errorf("fallback mode wrote to the store %d times", n)
	}

	if err := c.MarkNotificationRead(context.Background(), "missing"); !errors.Is(err, ErrUnknownNotification) {
		t.Errorf("expected ErrUnknownNotification, got %v", err)
	}
}

func TestMarketRateStaysWithinBand(t *testing.T) {
	store := newFakeStore()
	store.probeErr = errors.New("offline")

	c := newTestController(store, nil)
	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	for i := 0; i < 100; i++ {
		rate, err := c.MarketRate(1)
		if err != nil {
			t.Fatalf("MarketRate failed: %v", err)
		}
		if rate < 36 || rate > 44 {
			t.Fatalf("market rate %v outside ±10%% of 40", rate)
		}
	}

	if _, err := c.MarketRate(999); !errors.Is(err, ErrUnknownProduct) {
		t.Errorf("expected ErrUnknownProduct for unknown alias, got %v", err)
	}
}
