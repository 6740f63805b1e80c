package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/luismarin/cartbase-backend/internal/basket"
	"github.com/luismarin/cartbase-backend/pkg/config"
	pkgerrors "github.com/luismarin/cartbase-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

// Adapter exposes the in-process catalog service as a basket product lookup.
// Inactive listings are reported as missing so they cannot enter a basket.
type Adapter struct {
	catalog Service
}

// NewAdapter wraps the catalog service.
func NewAdapter(catalog Service) (*Adapter, error) {
	if catalog == nil {
		return nil, fmt.Errorf("catalog service required")
	}
	return &Adapter{catalog: catalog}, nil
}

func (a *Adapter) Lookup(ctx context.Context, productID int64) (basket.ProductSnapshot, error) {
	product, err := a.catalog.GetProduct(ctx, productID)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			switch typed.Code() {
			case pkgerrors.CodeNotFound, pkgerrors.CodeValidation:
				return basket.ProductSnapshot{}, basket.ErrProductNotFound
			}
		}
		return basket.ProductSnapshot{}, fmt.Errorf("%w: %w", basket.ErrCatalogUnavailable, err)
	}
	if !product.IsActive {
		return basket.ProductSnapshot{}, basket.ErrProductNotFound
	}
	return basket.ProductSnapshot{
		ID:       product.ID,
		Name:     product.Name,
		Price:    product.Price,
		ImageURL: product.ImageURL,
	}, nil
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPLookup resolves products from a remote catalog API. Transient failures
// are retried a bounded number of times with a fixed pause; a 404 or a
// non-success envelope is terminal.
type HTTPLookup struct {
	baseURL string
	client  httpDoer
	timeout time.Duration
	retries int
	backoff time.Duration
	sleep   func(context.Context, time.Duration) error
}

// NewHTTPLookup builds a remote lookup from the catalog config.
func NewHTTPLookup(cfg config.CatalogConfig, client httpDoer) (*HTTPLookup, error) {
	if strings.TrimSpace(cfg.LookupBaseURL) == "" {
		return nil, fmt.Errorf("catalog lookup base url required")
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.LookupTimeout}
	}
	retries := cfg.LookupRetries
	if retries < 0 {
		retries = 0
	}
	return &HTTPLookup{
		baseURL: strings.TrimRight(cfg.LookupBaseURL, "/"),
		client:  client,
		timeout: cfg.LookupTimeout,
		retries: retries,
		backoff: cfg.LookupBackoff,
		sleep:   sleepContext,
	}, nil
}

type lookupEnvelope struct {
	Success *bool           `json:"success,omitempty"`
	Data    json.RawMessage `json:"data"`
}

type lookupPayload struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	ImageURL      string          `json:"imageUrl"`
	StockQuantity int             `json:"stockQuantity"`
}

func (h *HTTPLookup) Lookup(ctx context.Context, productID int64) (basket.ProductSnapshot, error) {
	var errs error
	for attempt := 0; attempt <= h.retries; attempt++ {
		if attempt > 0 {
			if err := h.sleep(ctx, h.backoff); err != nil {
				errs = multierr.Append(errs, err)
				break
			}
		}
		snapshot, err := h.fetch(ctx, productID)
		if err == nil {
			return snapshot, nil
		}
		if errors.Is(err, basket.ErrProductNotFound) {
			return basket.ProductSnapshot{}, err
		}
		errs = multierr.Append(errs, err)
	}
	return basket.ProductSnapshot{}, fmt.Errorf("%w: %w", basket.ErrCatalogUnavailable, errs)
}

func (h *HTTPLookup) fetch(ctx context.Context, productID int64) (basket.ProductSnapshot, error) {
	reqCtx := ctx
	if h.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	url := fmt.Sprintf("%s/products/%d", h.baseURL, productID)
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return basket.ProductSnapshot{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return basket.ProductSnapshot{}, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		io.Copy(io.Discard, resp.Body)
		return basket.ProductSnapshot{}, basket.ErrProductNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		io.Copy(io.Discard, resp.Body)
		return basket.ProductSnapshot{}, fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}

	var envelope lookupEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return basket.ProductSnapshot{}, fmt.Errorf("decoding catalog response: %w", err)
	}
	if envelope.Success != nil && !*envelope.Success {
		return basket.ProductSnapshot{}, basket.ErrProductNotFound
	}
	if len(envelope.Data) == 0 {
		return basket.ProductSnapshot{}, fmt.Errorf("catalog response missing payload")
	}
	var payload lookupPayload
	if err := json.Unmarshal(envelope.Data, &payload); err != nil {
		return basket.ProductSnapshot{}, fmt.Errorf("decoding catalog payload: %w", err)
	}
	return basket.ProductSnapshot{
		ID:       payload.ID,
		Name:     payload.Name,
		Price:    payload.Price,
		ImageURL: payload.ImageURL,
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
