package controllers

import (
	"time"

	"github.com/luismarin/cartbase-backend/internal/basket"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type basketItemResponse struct {
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	UnitPrice   decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	AddedAt     time.Time       `json:"addedAt"`
}

type basketResponse struct {
	ID             uuid.UUID            `json:"id"`
	UserID         uuid.UUID            `json:"userId"`
	Items          []basketItemResponse `json:"items"`
	TotalAmount    decimal.Decimal      `json:"totalAmount"`
	TotalItemCount int                  `json:"totalItemCount"`
	UpdatedAt      time.Time            `json:"updatedAt"`
}

func newBasketResponse(agg *basket.Aggregate) basketResponse {
	items := make([]basketItemResponse, 0, len(agg.Items))
	for _, item := range agg.Items {
		items = append(items, basketItemResponse{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			LineTotal:   item.LineTotal(),
			ImageURL:    item.ImageURL,
			AddedAt:     item.AddedAt,
		})
	}
	total, count := agg.Totals()
	return basketResponse{
		ID:             agg.ID,
		UserID:         agg.OwnerID,
		Items:          items,
		TotalAmount:    total,
		TotalItemCount: count,
		UpdatedAt:      agg.UpdatedAt,
	}
}
