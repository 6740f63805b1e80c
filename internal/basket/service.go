package basket

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/luismarin/cartbase-backend/pkg/config"
	pkgerrors "github.com/luismarin/cartbase-backend/pkg/errors"
	"github.com/luismarin/cartbase-backend/pkg/logger"
	"github.com/luismarin/cartbase-backend/pkg/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	opGet         = "get"
	opAddItem     = "add_item"
	opSetQuantity = "set_quantity"
	opRemoveItem  = "remove_item"
	opClear       = "clear"
	opSummary     = "summary"
)

// Summary is the lightweight totals view of a basket.
type Summary struct {
	TotalItems  int             `json:"totalItems"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	ItemCount   int             `json:"itemCount"`
	LastUpdated time.Time       `json:"lastUpdated"`
}

// Service exposes the basket operations. Every mutation runs as a bounded
// optimistic retry loop against the versioned store.
type Service interface {
	GetBasket(ctx context.Context, ownerID uuid.UUID) (*Aggregate, error)
	AddItem(ctx context.Context, ownerID uuid.UUID, productID int64, quantity int) (*Aggregate, error)
	SetItemQuantity(ctx context.Context, ownerID uuid.UUID, productID int64, quantity int) (*Aggregate, error)
	RemoveItem(ctx context.Context, ownerID uuid.UUID, productID int64) (*Aggregate, error)
	Clear(ctx context.Context, ownerID uuid.UUID) error
	Summary(ctx context.Context, ownerID uuid.UUID) (*Summary, error)
}

type service struct {
	store   Store
	lookup  ProductLookup
	logg    *logger.Logger
	metrics *metrics.BasketMetrics

	maxAttempts int
	backoff     time.Duration
	now         func() time.Time
	sleep       func(context.Context, time.Duration) error
}

// NewService builds the basket service. Metrics may be nil.
func NewService(store Store, lookup ProductLookup, cfg config.BasketConfig, logg *logger.Logger, basketMetrics *metrics.BasketMetrics) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("basket store required")
	}
	if lookup == nil {
		return nil, fmt.Errorf("product lookup required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &service{
		store:       store,
		lookup:      lookup,
		logg:        logg,
		metrics:     basketMetrics,
		maxAttempts: maxAttempts,
		backoff:     cfg.RetryBackoff,
		now:         time.Now,
		sleep:       sleepContext,
	}, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *service) observe(op string, started time.Time) {
	s.metrics.ObserveOperation(op, time.Since(started))
}

// GetBasket returns the stored basket, or an empty one when nothing is stored.
func (s *service) GetBasket(ctx context.Context, ownerID uuid.UUID) (*Aggregate, error) {
	defer s.observe(opGet, s.now())
	agg, _, err := s.store.Get(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "basket store unreachable")
	}
	if agg == nil {
		return NewAggregate(ownerID, s.now()), nil
	}
	return agg, nil
}

// AddItem resolves the product from the catalog, then merges the quantity
// into the basket. The lookup happens once, before any write attempt, so a
// failed lookup never leaves partial state behind.
func (s *service) AddItem(ctx context.Context, ownerID uuid.UUID, productID int64, quantity int) (*Aggregate, error) {
	defer s.observe(opAddItem, s.now())
	if productID < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id must be positive")
	}
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	snapshot, err := s.lookup.Lookup(ctx, productID)
	if err != nil {
		switch {
		case errors.Is(err, ErrProductNotFound):
			s.metrics.IncLookupFailure("not_found")
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		case errors.Is(err, ErrCatalogUnavailable):
			s.metrics.IncLookupFailure("unavailable")
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "product catalog unavailable")
		default:
			s.metrics.IncLookupFailure("unavailable")
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "product lookup failed")
		}
	}

	return s.mutate(ctx, opAddItem, ownerID, func(agg *Aggregate) error {
		return agg.AddItem(snapshot.ID, snapshot.Name, snapshot.Price, quantity, snapshot.ImageURL, s.now())
	})
}

// SetItemQuantity replaces the stored quantity; zero removes the line.
func (s *service) SetItemQuantity(ctx context.Context, ownerID uuid.UUID, productID int64, quantity int) (*Aggregate, error) {
	defer s.observe(opSetQuantity, s.now())
	if productID < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id must be positive")
	}
	if quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative")
	}
	return s.mutate(ctx, opSetQuantity, ownerID, func(agg *Aggregate) error {
		return agg.SetItemQuantity(productID, quantity, s.now())
	})
}

// RemoveItem drops the line for the product; removing an absent line succeeds.
func (s *service) RemoveItem(ctx context.Context, ownerID uuid.UUID, productID int64) (*Aggregate, error) {
	defer s.observe(opRemoveItem, s.now())
	if productID < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id must be positive")
	}
	return s.mutate(ctx, opRemoveItem, ownerID, func(agg *Aggregate) error {
		agg.RemoveItem(productID, s.now())
		return nil
	})
}

// Clear removes the stored basket entirely.
func (s *service) Clear(ctx context.Context, ownerID uuid.UUID) error {
	defer s.observe(opClear, s.now())
	_, err := s.mutate(ctx, opClear, ownerID, func(agg *Aggregate) error {
		agg.Clear(s.now())
		return nil
	})
	return err
}

// Summary computes the totals view without touching stored state.
func (s *service) Summary(ctx context.Context, ownerID uuid.UUID) (*Summary, error) {
	defer s.observe(opSummary, s.now())
	agg, _, err := s.store.Get(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "basket store unreachable")
	}
	if agg == nil {
		return &Summary{TotalAmount: decimal.Zero}, nil
	}
	total, count := agg.Totals()
	return &Summary{
		TotalItems:  count,
		TotalAmount: total,
		ItemCount:   len(agg.Items),
		LastUpdated: agg.UpdatedAt,
	}, nil
}

// mutate runs the optimistic read-apply-commit loop: read the basket and its
// revision, apply the mutation to a fresh copy, then commit conditioned on the
// revision still matching. A basket left empty by the mutation is deleted
// instead of written, so an empty record is never stored. Revision conflicts
// retry up to the configured budget with a jittered pause between attempts.
func (s *service) mutate(ctx context.Context, op string, ownerID uuid.UUID, apply func(*Aggregate) error) (*Aggregate, error) {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		agg, version, err := s.store.Get(ctx, ownerID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "basket store unreachable")
		}
		if agg == nil {
			agg = NewAggregate(ownerID, s.now())
		}
		if err := apply(agg); err != nil {
			return nil, err
		}

		var commitErr error
		if agg.Empty() {
			commitErr = s.store.DeleteIfMatch(ctx, ownerID, version)
		} else {
			_, commitErr = s.store.PutIfMatch(ctx, ownerID, agg, version)
		}
		if commitErr == nil {
			return agg, nil
		}
		if !errors.Is(commitErr, ErrVersionConflict) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, commitErr, "basket store unreachable")
		}

		s.metrics.IncConflictRetry(op)
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"user_id": ownerID.String(),
			"op":      op,
			"attempt": attempt,
		})
		s.logg.Warn(logCtx, "basket revision conflict, retrying")
		if attempt < s.maxAttempts {
			if err := s.sleep(ctx, jitter(s.backoff)); err != nil {
				s.metrics.IncConflictExhausted(op)
				return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "basket update cancelled during retry")
			}
		}
	}
	s.metrics.IncConflictExhausted(op)
	return nil, pkgerrors.New(pkgerrors.CodeConflict, "basket was modified concurrently, please retry")
}

func jitter(base time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	return base + time.Duration(rand.Int63n(int64(base)))
}
