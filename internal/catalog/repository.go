package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/luismarin/cartbase-backend/pkg/db/models"
	"gorm.io/gorm"
)

// ErrNotFound reports that no product row exists for the requested id.
var ErrNotFound = errors.New("product not found")

// ListFilter narrows product listings.
type ListFilter struct {
	Category   string
	ActiveOnly bool
	Limit      int
	Offset     int
}

// ProductRepository defines persistence operations for catalog listings.
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) (*models.Product, error)
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*models.Product, error)
	List(ctx context.Context, filter ListFilter) ([]models.Product, error)
}

// Repository is the GORM-backed ProductRepository.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func (r *Repository) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]any{
			"name":           product.Name,
			"description":    product.Description,
			"price":          product.Price,
			"image_url":      product.ImageURL,
			"stock_quantity": product.StockQuantity,
			"category":       product.Category,
			"is_active":      product.IsActive,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.FindByID(ctx, product.ID)
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})
	if category := strings.TrimSpace(filter.Category); category != "" {
		query = query.Where("category = ?", category)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	var products []models.Product
	if err := query.Order("id ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}
