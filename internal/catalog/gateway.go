package catalog

import (
	"context"
	"fmt"

	"veggiemarket/internal/domain"

	"go.uber.org/zap"
)

// ProductDraft is a product submitted for creation, before it has an
// identity.
type ProductDraft struct {
	Name   string
	Price  float64
	Unit   string
	Image  string
	Seller string
	Stock  string
}

// CreateProduct attempts a remote insert and refetches the collection on
// success. On any remote failure it degrades to appending the product to the
// in-memory collection with an alias one greater than the current maximum;
// the collection then diverges from the remote store until the next full
// reload. Both paths report success; only the advisory text differs.
func (c *Controller) CreateProduct(ctx context.Context, draft ProductDraft) (string, error) {
	quantity := ParseStockQuantity(draft.Stock)

	remote := domain.RemoteProduct{
		Name:          draft.Name,
		Price:         draft.Price,
		Unit:          draft.Unit,
		Images:        []string{draft.Image},
		StockQuantity: quantity,
		Status:        "active",
		SellerID:      c.session.SellerID,
	}

	id, err := c.store.InsertProduct(ctx, remote)
	if err == nil {
		c.log.Info("product created",
			zap.String("remote_id", id.String()),
			zap.String("name", draft.Name),
		)
		c.refetchProducts(ctx)
		return "Product added successfully", nil
	}

	c.log.Warn("remote insert failed, holding product locally", zap.Error(err))

	c.mu.Lock()
	alias := 0
	for _, p := range c.products {
		if p.ID > alias {
			alias = p.ID
		}
	}
	alias++
	c.ids.reserve(alias)
	c.products = append(c.products, domain.Product{
		ID:     alias,
		Name:   draft.Name,
		Price:  draft.Price,
		Unit:   draft.Unit,
		Image:  draft.Image,
		Seller: draft.Seller,
		Stock:  draft.Stock,
	})
	c.mu.Unlock()

	return "Product added locally - it will not survive a reload", nil
}

// UpdateProduct maps the session alias to its remote identifier and issues a
// remote update. There is no local-only fallback: a locally-applied change
// that never reached the remote store would silently resurface the old row on
// the next refetch.
func (c *Controller) UpdateProduct(ctx context.Context, product domain.Product) (string, error) {
	if !c.beginOp(product.ID) {
		return "", ErrOperationInFlight
	}
	defer c.endOp(product.ID)

	remoteID, ok := c.RemoteProductID(product.ID)
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrUnknownProduct, product.ID)
	}

	changes := domain.ProductChanges{
		Name:          product.Name,
		Price:         product.Price,
		Unit:          product.Unit,
		Image:         product.Image,
		StockQuantity: ParseStockQuantity(product.Stock),
	}

	if err := c.store.UpdateProduct(ctx, remoteID, changes); err != nil {
		c.log.Error("product update failed",
			zap.Int("id", product.ID),
			zap.String("remote_id", remoteID.String()),
			zap.Error(err),
		)
		return "", fmt.Errorf("failed to update product: %w", err)
	}

	c.refetchProducts(ctx)
	return "Product updated successfully", nil
}

// DeleteProduct maps the session alias to its remote identifier and issues a
// remote delete. Like Update, it fails closed with no local fallback.
func (c *Controller) DeleteProduct(ctx context.Context, productID int) (string, error) {
	if !c.beginOp(productID) {
		return "", ErrOperationInFlight
	}
	defer c.endOp(productID)

	remoteID, ok := c.RemoteProductID(productID)
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrUnknownProduct, productID)
	}

	if err := c.store.DeleteProduct(ctx, remoteID); err != nil {
		c.log.Error("product delete failed",
			zap.Int("id", productID),
			zap.String("remote_id", remoteID.String()),
			zap.Error(err),
		)
		return "", fmt.Errorf("failed to delete product: %w", err)
	}

	c.mu.Lock()
	c.ids.drop(productID)
	c.mu.Unlock()

	c.refetchProducts(ctx)
	return "Product deleted successfully", nil
}

// beginOp claims the per-identity in-flight slot. Two rapid mutation attempts
// for the same product would otherwise both be dispatched.
func (c *Controller) beginOp(alias int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inflight[alias]; busy {
		return false
	}
	c.inflight[alias] = struct{}{}
	return true
}

func (c *Controller) endOp(alias int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, alias)
}
