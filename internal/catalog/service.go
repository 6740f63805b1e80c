package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/luismarin/cartbase-backend/pkg/db/models"
	pkgerrors "github.com/luismarin/cartbase-backend/pkg/errors"
	"github.com/luismarin/cartbase-backend/pkg/pagination"
	"github.com/shopspring/decimal"
)

// ProductInput carries the fields admins may set on a listing.
type ProductInput struct {
	Name          string
	Description   string
	Price         decimal.Decimal
	ImageURL      string
	StockQuantity int
	Category      string
	IsActive      bool
}

// Service exposes catalog reads plus the admin write surface.
type Service interface {
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	ListProducts(ctx context.Context, filter ListFilter) ([]models.Product, error)
	CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id int64, input ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

type service struct {
	repo ProductRepository
}

// NewService builds the catalog service.
func NewService(repo ProductRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	if id < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id must be positive")
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	return product, nil
}

func (s *service) ListProducts(ctx context.Context, filter ListFilter) ([]models.Product, error) {
	filter.Limit = pagination.NormalizeLimit(filter.Limit)
	filter.Offset = pagination.NormalizeOffset(filter.Offset)
	products, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing products")
	}
	return products, nil
}

func validateInput(input ProductInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if input.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if input.StockQuantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock quantity must not be negative")
	}
	return nil
}

func (s *service) CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	product := &models.Product{
		Name:          strings.TrimSpace(input.Name),
		Description:   input.Description,
		Price:         input.Price,
		ImageURL:      input.ImageURL,
		StockQuantity: input.StockQuantity,
		Category:      input.Category,
		IsActive:      input.IsActive,
	}
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating product")
	}
	return created, nil
}

func (s *service) UpdateProduct(ctx context.Context, id int64, input ProductInput) (*models.Product, error) {
	if id < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id must be positive")
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}
	product := &models.Product{
		ID:            id,
		Name:          strings.TrimSpace(input.Name),
		Description:   input.Description,
		Price:         input.Price,
		ImageURL:      input.ImageURL,
		StockQuantity: input.StockQuantity,
		Category:      input.Category,
		IsActive:      input.IsActive,
	}
	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating product")
	}
	return updated, nil
}

func (s *service) DeleteProduct(ctx context.Context, id int64) error {
	if id < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id must be positive")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting product")
	}
	return nil
}
