package catalog

import (
	"context"
	"testing"

	pkgerrors "github.com/luismarin/cartbase-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

func testCatalogService(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(NewRepository(openTestDB(t)))
	if err != nil {
		t.Fatalf("building service: %v", err)
	}
	return svc
}

func TestServiceCreateValidatesInput(t *testing.T) {
	svc := testCatalogService(t)
	cases := []struct {
		name  string
		input ProductInput
	}{
		{"empty name", ProductInput{Name: "  ", Price: decimal.NewFromInt(1)}},
		{"negative price", ProductInput{Name: "Widget", Price: decimal.NewFromInt(-1)}},
		{"negative stock", ProductInput{Name: "Widget", Price: decimal.NewFromInt(1), StockQuantity: -1}},
	}
	for _, tc := range cases {
		_, err := svc.CreateProduct(context.Background(), tc.input)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestServiceCRUDLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := testCatalogService(t)

	created, err := svc.CreateProduct(ctx, ProductInput{
		Name:          "Widget",
		Price:         decimal.RequireFromString("9.99"),
		ImageURL:      "/w.png",
		StockQuantity: 5,
		Category:      "tools",
		IsActive:      true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	loaded, err := svc.GetProduct(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.Name != "Widget" || !loaded.Price.Equal(decimal.RequireFromString("9.99")) {
		t.Fatalf("unexpected product: %+v", loaded)
	}

	updated, err := svc.UpdateProduct(ctx, created.ID, ProductInput{
		Name:          "Widget XL",
		Price:         decimal.RequireFromString("14.99"),
		StockQuantity: 2,
		IsActive:      true,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Widget XL" {
		t.Fatalf("update not applied: %+v", updated)
	}

	if err := svc.DeleteProduct(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err = svc.GetProduct(ctx, created.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found after delete, got %v", err)
	}
}

func TestServiceRejectsNonPositiveIDs(t *testing.T) {
	ctx := context.Background()
	svc := testCatalogService(t)
	for _, id := range []int64{0, -5} {
		_, err := svc.GetProduct(ctx, id)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("id %d: expected validation error, got %v", id, err)
		}
	}
}

func TestServiceUpdateMissingProduct(t *testing.T) {
	svc := testCatalogService(t)
	_, err := svc.UpdateProduct(context.Background(), 9999, ProductInput{
		Name:  "Ghost",
		Price: decimal.NewFromInt(1),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
}
