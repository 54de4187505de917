package catalog

import (
	"fmt"
	"math"
)

// MarketRate returns the demo market-rate quote for a product: the list price
// jittered within ±10%, rounded to two decimals. The quote is informational
// only and never written back to the catalog.
func (c *Controller) MarketRate(productID int) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, p := range c.products {
		if p.ID == productID {
			jitter := 0.9 + 0.2*c.rng.Float64()
			return math.Round(p.Price*jitter*100) / 100, nil
		}
	}
	return 0, fmt.Errorf("%w: %d", ErrUnknownProduct, productID)
}
