package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the canonical catalog listing baskets are enriched from.
type Product struct {
	ID            int64           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name          string          `gorm:"column:name;not null" json:"name"`
	Description   string          `gorm:"column:description" json:"description,omitempty"`
	Price         decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null" json:"price"`
	ImageURL      string          `gorm:"column:image_url" json:"imageUrl"`
	StockQuantity int             `gorm:"column:stock_quantity;not null;default:0" json:"stockQuantity"`
	Category      string          `gorm:"column:category" json:"category,omitempty"`
	IsActive      bool            `gorm:"column:is_active;not null;default:true" json:"isActive"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName keeps the table name stable across gorm naming strategies.
func (Product) TableName() string {
	return "products"
}
