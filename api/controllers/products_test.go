package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/luismarin/cartbase-backend/internal/catalog"
	"github.com/luismarin/cartbase-backend/pkg/db/models"
	pkgerrors "github.com/luismarin/cartbase-backend/pkg/errors"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type stubCatalog struct {
	product  *models.Product
	products []models.Product
	err      error

	gotInput  catalog.ProductInput
	gotFilter catalog.ListFilter
}

func (s *stubCatalog) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	return s.product, s.err
}

func (s *stubCatalog) ListProducts(ctx context.Context, filter catalog.ListFilter) ([]models.Product, error) {
	s.gotFilter = filter
	return s.products, s.err
}

func (s *stubCatalog) CreateProduct(ctx context.Context, input catalog.ProductInput) (*models.Product, error) {
	s.gotInput = input
	return s.product, s.err
}

func (s *stubCatalog) UpdateProduct(ctx context.Context, id int64, input catalog.ProductInput) (*models.Product, error) {
	s.gotInput = input
	return s.product, s.err
}

func (s *stubCatalog) DeleteProduct(ctx context.Context, id int64) error {
	return s.err
}

func withProductID(req *http.Request, id string) *http.Request {
	rc := chi.NewRouteContext()
	rc.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func TestGetProductSuccess(t *testing.T) {
	stub := &stubCatalog{product: &models.Product{ID: 42, Name: "Widget", Price: decimal.RequireFromString("9.99")}}
	handler := GetProduct(stub, nil)

	req := withProductID(httptest.NewRequest(http.MethodGet, "/products/42", nil), "42")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data models.Product `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != 42 || !envelope.Data.Price.Equal(decimal.RequireFromString("9.99")) {
		t.Fatalf("unexpected product %+v", envelope.Data)
	}
}

func TestGetProductInvalidID(t *testing.T) {
	handler := GetProduct(&stubCatalog{}, nil)
	for _, id := range []string{"abc", "-1", "0"} {
		req := withProductID(httptest.NewRequest(http.MethodGet, "/products/"+id, nil), id)
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("id %q: expected 400 got %d", id, resp.Code)
		}
	}
}

func TestGetProductNotFound(t *testing.T) {
	stub := &stubCatalog{err: pkgerrors.New(pkgerrors.CodeNotFound, "product not found")}
	handler := GetProduct(stub, nil)

	req := withProductID(httptest.NewRequest(http.MethodGet, "/products/42", nil), "42")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestListProductsPassesFilter(t *testing.T) {
	stub := &stubCatalog{products: []models.Product{}}
	handler := ListProducts(stub, nil)

	req := httptest.NewRequest(http.MethodGet, "/products?category=tools&limit=10&offset=5", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if stub.gotFilter.Category != "tools" || stub.gotFilter.Limit != 10 || stub.gotFilter.Offset != 5 {
		t.Fatalf("unexpected filter %+v", stub.gotFilter)
	}
	if !stub.gotFilter.ActiveOnly {
		t.Fatalf("public listing must be active-only")
	}
}

func TestCreateProductValidation(t *testing.T) {
	handler := CreateProduct(&stubCatalog{}, nil)
	cases := []string{
		`{}`,
		`{"name":"Widget"}`,
		`{"price":"9.99"}`,
		`{"name":"Widget","price":"9.99","stockQuantity":-1}`,
	}
	for _, body := range cases {
		req := httptest.NewRequest(http.MethodPost, "/admin/products", strings.NewReader(body))
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400 got %d", body, resp.Code)
		}
	}
}

func TestCreateProductSuccess(t *testing.T) {
	stub := &stubCatalog{product: &models.Product{ID: 1, Name: "Widget"}}
	handler := CreateProduct(stub, nil)

	body := `{"name":"  Widget  ","price":"9.99","stockQuantity":3,"category":"tools"}`
	req := httptest.NewRequest(http.MethodPost, "/admin/products", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if stub.gotInput.Name != "Widget" {
		t.Fatalf("expected sanitized name, got %q", stub.gotInput.Name)
	}
	if !stub.gotInput.IsActive {
		t.Fatalf("isActive should default to true")
	}
}

func TestDeleteProductSuccess(t *testing.T) {
	handler := DeleteProduct(&stubCatalog{}, nil)
	req := withProductID(httptest.NewRequest(http.MethodDelete, "/admin/products/42", nil), "42")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}
