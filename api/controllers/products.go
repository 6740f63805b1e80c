package controllers

import (
	"net/http"
	"strconv"

	"github.com/luismarin/cartbase-backend/api/responses"
	"github.com/luismarin/cartbase-backend/api/validators"
	"github.com/luismarin/cartbase-backend/internal/catalog"
	pkgerrors "github.com/luismarin/cartbase-backend/pkg/errors"
	"github.com/luismarin/cartbase-backend/pkg/logger"
	"github.com/luismarin/cartbase-backend/pkg/pagination"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type productRequest struct {
	Name          string          `json:"name" validate:"required,min=1,max=200"`
	Description   string          `json:"description" validate:"max=5000"`
	Price         decimal.Decimal `json:"price" validate:"required"`
	ImageURL      string          `json:"imageUrl" validate:"max=2000"`
	StockQuantity int             `json:"stockQuantity" validate:"gte=0"`
	Category      string          `json:"category" validate:"max=100"`
	IsActive      *bool           `json:"isActive"`
}

func (p productRequest) toInput() catalog.ProductInput {
	active := true
	if p.IsActive != nil {
		active = *p.IsActive
	}
	return catalog.ProductInput{
		Name:          validators.SanitizeString(p.Name, 200),
		Description:   validators.SanitizeString(p.Description, 5000),
		Price:         p.Price,
		ImageURL:      validators.SanitizeString(p.ImageURL, 2000),
		StockQuantity: p.StockQuantity,
		Category:      validators.SanitizeString(p.Category, 100),
		IsActive:      active,
	}
}

// ListProducts returns catalog listings, optionally filtered by category.
func ListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offset, err := validators.ParseQueryInt(r, "offset", 0, 0, pagination.MaxOffset)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter := catalog.ListFilter{
			Category:   validators.SanitizeString(r.URL.Query().Get("category"), 100),
			ActiveOnly: true,
			Limit:      limit,
			Offset:     offset,
		}
		products, err := svc.ListProducts(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

// GetProduct returns one catalog listing.
func GetProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || id < 1 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product id must be a positive integer"))
			return
		}
		product, err := svc.GetProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// CreateProduct creates a catalog listing (admin only).
func CreateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload productRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.CreateProduct(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// UpdateProduct replaces a catalog listing (admin only).
func UpdateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || id < 1 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product id must be a positive integer"))
			return
		}
		var payload productRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.UpdateProduct(r.Context(), id, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// DeleteProduct removes a catalog listing (admin only).
func DeleteProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || id < 1 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product id must be a positive integer"))
			return
		}
		if err := svc.DeleteProduct(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}
