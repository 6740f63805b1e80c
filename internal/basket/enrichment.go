package basket

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ProductSnapshot is the authoritative product data captured at add-time.
type ProductSnapshot struct {
	ID       int64
	Name     string
	Price    decimal.Decimal
	ImageURL string
}

// ErrProductNotFound means the catalog authoritatively has no such product.
var ErrProductNotFound = errors.New("product not found")

// ErrCatalogUnavailable means the catalog could not answer; the caller may
// retry the whole operation later.
var ErrCatalogUnavailable = errors.New("catalog unavailable")

// ProductLookup resolves a product id to its current snapshot. Implementations
// return ErrProductNotFound or ErrCatalogUnavailable so callers can tell a
// terminal miss from a transient outage.
type ProductLookup interface {
	Lookup(ctx context.Context, productID int64) (ProductSnapshot, error)
}
