package catalog

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"veggiemarket/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Mode is the controller's operating mode. There is no transition back to
// ModeUninitialized; a full reload (a fresh controller) is the only recovery
// path.
type Mode string

const (
	ModeUninitialized Mode = "uninitialized"
	ModeLive          Mode = "live"
	ModeFallback      Mode = "fallback"
)

var (
	ErrAlreadyInitialized  = errors.New("catalog already initialized")
	ErrUnknownProduct      = errors.New("product identity has no remote counterpart")
	ErrOperationInFlight   = errors.New("another operation for this product is in flight")
	ErrUnknownNotification = errors.New("notification not found")
)

// Store is the remote-store surface the controller consumes.
type Store interface {
	Probe(ctx context.Context) error
	ActiveProducts(ctx context.Context) ([]domain.RemoteProduct, error)
	NotificationsFor(ctx context.Context, userID uuid.UUID) ([]domain.Notification, error)
	Reviews(ctx context.Context) ([]domain.Review, error)
	SellerStatsFor(ctx context.Context, sellerID uuid.UUID) (*domain.SellerStats, error)
	InsertProduct(ctx context.Context, p domain.RemoteProduct) (uuid.UUID, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, changes domain.ProductChanges) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	MarkNotificationRead(ctx context.Context, id uuid.UUID) error
}

// FallbackSource supplies the demo dataset activated when the probe fails.
type FallbackSource interface {
	Load() Dataset
}

// Session scopes the notification and seller-stats fetches. The identities
// are passed in rather than hard-coded in the core.
type Session struct {
	BuyerID  uuid.UUID
	SellerID uuid.UUID
}

// Advisory is a non-fatal, user-visible status message, distinct from a hard
// error. Every collection failure produces one; the policy is uniform across
// collections.
type Advisory struct {
	Collection string `json:"collection"`
	Message    string `json:"message"`
}

// Snapshot is the read-only view handed to the dashboards.
type Snapshot struct {
	Mode          Mode                  `json:"mode"`
	Products      []domain.Product      `json:"products"`
	Notifications []domain.Notification `json:"notifications"`
	Reviews       []domain.Review       `json:"reviews"`
	SellerStats   *domain.SellerStats   `json:"seller_stats,omitempty"`
	Advisories    []Advisory            `json:"advisories,omitempty"`
}

// Controller owns the in-memory collections and keeps them consistent with
// the remote store, degrading to the fallback dataset when it is unreachable.
type Controller struct {
	store       Store
	fallback    FallbackSource
	session     Session
	placeholder string
	log         *zap.Logger

	mu            sync.Mutex
	mode          Mode
	products      []domain.Product
	notifications []domain.Notification
	reviews       []domain.Review
	sellerStats   *domain.SellerStats
	ids           *identityMap
	advisories    []Advisory
	inflight      map[int]struct{}
	rng           *rand.Rand
}

func NewController(store Store, fallback FallbackSource, session Session, placeholderImage string, log *zap.Logger) *Controller {
	return &Controller{
		store:       store,
		fallback:    fallback,
		session:     session,
		placeholder: placeholderImage,
		log:         log,
		mode:        ModeUninitialized,
		ids:         newIdentityMap(),
		inflight:    make(map[int]struct{}),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Initialize probes the remote store and performs the initial load. On probe
// failure it activates the fallback dataset; on success it issues the four
// collection fetches concurrently, each settling independently. A failed
// fetch leaves its collection empty and records an advisory; it never blocks
// or rolls back the others.
func (c *Controller) Initialize(ctx context.Context) error {
	c.mu.Lock()
	if c.mode != ModeUninitialized {
		c.mu.Unlock()
		return ErrAlreadyInitialized
	}
	c.mu.Unlock()

	if err := c.store.Probe(ctx); err != nil {
		c.log.Warn("remote store probe failed, activating fallback dataset", zap.Error(err))
		c.activateFallback()
		return nil
	}

	c.mu.Lock()
	c.mode = ModeLive
	c.mu.Unlock()
	c.log.Info("remote store reachable, loading catalog")

	var wg sync.WaitGroup
	wg.Add(4)

	go func() {
		defer wg.Done()
		c.refetchProducts(ctx)
	}()

	go func() {
		defer wg.Done()
		notifications, err := c.store.NotificationsFor(ctx, c.session.BuyerID)
		if err != nil {
			c.collectionFailed("notifications", err)
			return
		}
		c.mu.Lock()
		c.notifications = notifications
		c.mu.Unlock()
	}()

	go func() {
		defer wg.Done()
		reviews, err := c.store.Reviews(ctx)
		if err != nil {
			c.collectionFailed("reviews", err)
			return
		}
		c.mu.Lock()
		c.reviews = reviews
		c.mu.Unlock()
	}()

	go func() {
		defer wg.Done()
		stats, err := c.store.SellerStatsFor(ctx, c.session.SellerID)
		if err != nil {
			c.collectionFailed("seller_stats", err)
			return
		}
		c.mu.Lock()
		c.sellerStats = stats
		c.mu.Unlock()
	}()

	wg.Wait()
	return nil
}

func (c *Controller) activateFallback() {
	data := c.fallback.Load()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = ModeFallback
	c.products = data.Products
	c.notifications = data.Notifications
	c.reviews = data.Reviews
	c.sellerStats = data.SellerStats
	for _, p := range data.Products {
		c.ids.reserve(p.ID)
	}
	c.advisories = append(c.advisories, Advisory{
		Collection: "catalog",
		Message:    "Remote store unreachable - using local demo data",
	})
}

// refetchProducts reloads the product collection from the remote store and
// re-shapes it. On failure the current collection is kept as-is.
func (c *Controller) refetchProducts(ctx context.Context) {
	remotes, err := c.store.ActiveProducts(ctx)
	if err != nil {
		c.collectionFailed("products", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.products = c.reshape(remotes)
}

// reshape maps remote rows into display products. Aliases come from the
// identity map, so a product keeps its number across refetches. Caller holds
// the lock.
func (c *Controller) reshape(remotes []domain.RemoteProduct) []domain.Product {
	products := make([]domain.Product, 0, len(remotes))
	for _, r := range remotes {
		image := c.placeholder
		if len(r.Images) > 0 && r.Images[0] != "" {
			image = r.Images[0]
		}
		seller := "Unknown Seller"
		if r.SellerID != uuid.Nil {
			seller = r.SellerID.String()
		}
		products = append(products, domain.Product{
			ID:     c.ids.alias(r.ID),
			Name:   r.Name,
			Price:  r.Price,
			Unit:   r.Unit,
			Image:  image,
			Seller: seller,
			Stock:  FormatStock(r.StockQuantity, r.Unit),
		})
	}
	return products
}

func (c *Controller) collectionFailed(collection string, err error) {
	c.log.Error("collection fetch failed",
		zap.String("collection", collection),
		zap.Error(err),
	)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.advisories = append(c.advisories, Advisory{
		Collection: collection,
		Message:    "Failed to load " + collection,
	})
}

// Mode reports the current operating mode.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Snapshot returns a copy of the collections for the dashboards. Views never
// mutate the canonical collections; they signal intent through the mutation
// operations.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		Mode:          c.mode,
		Products:      make([]domain.Product, len(c.products)),
		Notifications: make([]domain.Notification, len(c.notifications)),
		Reviews:       make([]domain.Review, len(c.reviews)),
		Advisories:    make([]Advisory, len(c.advisories)),
	}
	copy(snap.Products, c.products)
	copy(snap.Notifications, c.notifications)
	copy(snap.Reviews, c.reviews)
	copy(snap.Advisories, c.advisories)
	if c.sellerStats != nil {
		stats := *c.sellerStats
		snap.SellerStats = &stats
	}
	return snap
}

// RemoteProductID resolves a session alias to its remote identifier, for
// collaborators that persist references (orders).
func (c *Controller) RemoteProductID(alias int) (uuid.UUID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ids.remote(alias)
}

// AdminStats derives the platform-wide aggregate from the loaded collections.
func (c *Controller) AdminStats() domain.PlatformStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := domain.PlatformStats{
		TotalProducts: len(c.products),
		TotalReviews:  len(c.reviews),
	}
	if c.sellerStats != nil {
		stats.TotalOrders = c.sellerStats.TotalOrders
		stats.TotalRevenue = c.sellerStats.TotalRevenue
	}
	if len(c.reviews) > 0 {
		sum := 0
		for _, r := range c.reviews {
			sum += r.Rating
		}
		stats.AverageRating = float64(sum) / float64(len(c.reviews))
	}
	return stats
}

// MarkNotificationRead flips one notification to read. The flag is one-way:
// marking an already-read notification is a no-op. In live mode the flip is
// written through to the remote store before the local copy changes.
func (c *Controller) MarkNotificationRead(ctx context.Context, id string) error {
	c.mu.Lock()
	idx := -1
	for i, n := range c.notifications {
		if n.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		return ErrUnknownNotification
	}
	if c.notifications[idx].IsRead {
		c.mu.Unlock()
		return nil
	}
	live := c.mode == ModeLive
	c.mu.Unlock()

	if live {
		remoteID, err := uuid.Parse(id)
		if err != nil {
			return ErrUnknownNotification
		}
		if err := c.store.MarkNotificationRead(ctx, remoteID); err != nil {
			return err
		}
	}

	c.mu.Lock()
	c.notifications[idx].IsRead = true
	c.mu.Unlock()
	return nil
}
