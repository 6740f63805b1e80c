package controllers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/luismarin/cartbase-backend/api/middleware"
	"github.com/luismarin/cartbase-backend/api/responses"
	"github.com/luismarin/cartbase-backend/api/validators"
	"github.com/luismarin/cartbase-backend/internal/basket"
	pkgerrors "github.com/luismarin/cartbase-backend/pkg/errors"
	"github.com/luismarin/cartbase-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type addItemRequest struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gte=1"`
}

type setQuantityRequest struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  *int  `json:"quantity" validate:"required,gte=0"`
}

func ownerFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user identity")
	}
	ownerID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user identity")
	}
	return ownerID, nil
}

func productIDFromURL(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "productId")
	productID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || productID < 1 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "product id must be a positive integer")
	}
	return productID, nil
}

// GetBasket returns the caller's basket, empty if nothing is stored.
func GetBasket(svc basket.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := ownerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		agg, err := svc.GetBasket(r.Context(), ownerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newBasketResponse(agg))
	}
}

// AddBasketItem adds a quantity of a catalog product to the basket.
func AddBasketItem(svc basket.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := ownerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		agg, err := svc.AddItem(r.Context(), ownerID, payload.ProductID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newBasketResponse(agg))
	}
}

// SetBasketItemQuantity replaces the stored quantity; zero removes the line.
func SetBasketItemQuantity(svc basket.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := ownerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload setQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		agg, err := svc.SetItemQuantity(r.Context(), ownerID, payload.ProductID, *payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newBasketResponse(agg))
	}
}

// RemoveBasketItem drops a line from the basket.
func RemoveBasketItem(svc basket.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := ownerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := productIDFromURL(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if _, err := svc.RemoveItem(r.Context(), ownerID, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"removed": true})
	}
}

// ClearBasket removes the caller's basket entirely.
func ClearBasket(svc basket.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := ownerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Clear(r.Context(), ownerID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"cleared": true})
	}
}

// BasketSummary returns the totals view of the caller's basket.
func BasketSummary(svc basket.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := ownerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		summary, err := svc.Summary(r.Context(), ownerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
