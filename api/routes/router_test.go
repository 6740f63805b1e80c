package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/luismarin/cartbase-backend/internal/basket"
	"github.com/luismarin/cartbase-backend/internal/catalog"
	"github.com/luismarin/cartbase-backend/pkg/auth"
	"github.com/luismarin/cartbase-backend/pkg/config"
	"github.com/luismarin/cartbase-backend/pkg/db/models"
	pkgerrors "github.com/luismarin/cartbase-backend/pkg/errors"
	"github.com/luismarin/cartbase-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type stubLookup struct{}

func (stubLookup) Lookup(ctx context.Context, productID int64) (basket.ProductSnapshot, error) {
	if productID != 42 {
		return basket.ProductSnapshot{}, basket.ErrProductNotFound
	}
	return basket.ProductSnapshot{ID: 42, Name: "Widget", Price: decimal.RequireFromString("9.99")}, nil
}

type stubCatalogService struct{}

func (stubCatalogService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	if id != 42 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return &models.Product{ID: 42, Name: "Widget", Price: decimal.RequireFromString("9.99"), IsActive: true}, nil
}

func (stubCatalogService) ListProducts(ctx context.Context, filter catalog.ListFilter) ([]models.Product, error) {
	return []models.Product{}, nil
}

func (stubCatalogService) CreateProduct(ctx context.Context, input catalog.ProductInput) (*models.Product, error) {
	return &models.Product{ID: 1, Name: input.Name, Price: input.Price}, nil
}

func (stubCatalogService) UpdateProduct(ctx context.Context, id int64, input catalog.ProductInput) (*models.Product, error) {
	return &models.Product{ID: id, Name: input.Name, Price: input.Price}, nil
}

func (stubCatalogService) DeleteProduct(ctx context.Context, id int64) error {
	return nil
}

func testRouter(t *testing.T) (http.Handler, *config.Config) {
	t.Helper()
	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.JWT = config.JWTConfig{Secret: "test-secret", Issuer: "cartbase"}

	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel, Output: io.Discard})
	basketService, err := basket.NewService(
		basket.NewMemoryStore(),
		stubLookup{},
		config.BasketConfig{TTL: time.Hour, MaxAttempts: 5, RetryBackoff: time.Millisecond},
		logg,
		nil,
	)
	if err != nil {
		t.Fatalf("building basket service: %v", err)
	}

	return NewRouter(cfg, logg, nil, nil, basketService, stubCatalogService{}, nil), cfg
}

func bearerFor(t *testing.T, cfg *config.Config, userID uuid.UUID, role string) string {
	t.Helper()
	token, err := auth.MintAccessToken(cfg.JWT, time.Now(), userID, role, time.Hour)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return "Bearer " + token
}

func TestBasketRoutesRequireAuth(t *testing.T) {
	router, _ := testRouter(t)
	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/basket"},
		{http.MethodPost, "/basket/items"},
		{http.MethodPut, "/basket/items"},
		{http.MethodDelete, "/basket/items/42"},
		{http.MethodDelete, "/basket/clear"},
		{http.MethodGet, "/basket/summary"},
	}
	for _, tc := range paths {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401 got %d", tc.method, tc.path, resp.Code)
		}
	}
}

func TestBasketFlowThroughRouter(t *testing.T) {
	router, cfg := testRouter(t)
	token := bearerFor(t, cfg, uuid.New(), "")

	addReq := httptest.NewRequest(http.MethodPost, "/basket/items", strings.NewReader(`{"productId":42,"quantity":2}`))
	addReq.Header.Set("Authorization", token)
	addResp := httptest.NewRecorder()
	router.ServeHTTP(addResp, addReq)
	if addResp.Code != http.StatusOK {
		t.Fatalf("add: expected 200 got %d: %s", addResp.Code, addResp.Body.String())
	}

	getReq := httptest.NewRequest(http.MethodGet, "/basket", nil)
	getReq.Header.Set("Authorization", token)
	getResp := httptest.NewRecorder()
	router.ServeHTTP(getResp, getReq)
	if getResp.Code != http.StatusOK {
		t.Fatalf("get: expected 200 got %d", getResp.Code)
	}
	var envelope struct {
		Data struct {
			Items []struct {
				ProductID int64 `json:"productId"`
				Quantity  int   `json:"quantity"`
			} `json:"items"`
		} `json:"data"`
	}
	if err := json.NewDecoder(getResp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode basket: %v", err)
	}
	if len(envelope.Data.Items) != 1 || envelope.Data.Items[0].Quantity != 2 {
		t.Fatalf("unexpected basket %+v", envelope.Data.Items)
	}

	removeReq := httptest.NewRequest(http.MethodDelete, "/basket/items/42", nil)
	removeReq.Header.Set("Authorization", token)
	removeResp := httptest.NewRecorder()
	router.ServeHTTP(removeResp, removeReq)
	if removeResp.Code != http.StatusOK {
		t.Fatalf("remove: expected 200 got %d", removeResp.Code)
	}
}

func TestPublicProductRoutes(t *testing.T) {
	router, _ := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/products/42", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/products/999", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestAdminRoutesEnforceRole(t *testing.T) {
	router, cfg := testRouter(t)
	body := `{"name":"Widget","price":"9.99"}`

	shopper := httptest.NewRequest(http.MethodPost, "/admin/products", strings.NewReader(body))
	shopper.Header.Set("Authorization", bearerFor(t, cfg, uuid.New(), "shopper"))
	shopperResp := httptest.NewRecorder()
	router.ServeHTTP(shopperResp, shopper)
	if shopperResp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", shopperResp.Code)
	}

	admin := httptest.NewRequest(http.MethodPost, "/admin/products", strings.NewReader(body))
	admin.Header.Set("Authorization", bearerFor(t, cfg, uuid.New(), "admin"))
	adminResp := httptest.NewRecorder()
	router.ServeHTTP(adminResp, admin)
	if adminResp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", adminResp.Code, adminResp.Body.String())
	}
}

func TestHealthLive(t *testing.T) {
	router, _ := testRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if env := resp.Header().Get("X-Cartbase-Env"); env != "test" {
		t.Fatalf("expected env header, got %q", env)
	}
}
