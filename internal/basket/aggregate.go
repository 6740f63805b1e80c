package basket

import (
	"time"

	pkgerrors "github.com/luismarin/cartbase-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is one line in a basket. Name, price and image are snapshots taken
// when the item was added and are never refreshed afterwards.
type Item struct {
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	UnitPrice   decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	ImageURL    string          `json:"imageUrl"`
	AddedAt     time.Time       `json:"addedAt"`
}

// LineTotal returns unit price times quantity for this line.
func (i Item) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Aggregate is one user's basket. Items are kept in insertion order; each
// product id appears at most once and every stored quantity is at least 1.
type Aggregate struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"userId"`
	Items     []Item    `json:"items"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewAggregate builds an empty basket for the owner.
func NewAggregate(ownerID uuid.UUID, now time.Time) *Aggregate {
	return &Aggregate{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Items:     nil,
		UpdatedAt: now,
	}
}

func (a *Aggregate) indexOf(productID int64) int {
	for i := range a.Items {
		if a.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// AddItem merges quantity into an existing line for the product or appends a
// new line. Quantities below 1 are rejected.
func (a *Aggregate) AddItem(productID int64, name string, unitPrice decimal.Decimal, quantity int, imageURL string, now time.Time) error {
	if quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if idx := a.indexOf(productID); idx >= 0 {
		a.Items[idx].Quantity += quantity
	} else {
		a.Items = append(a.Items, Item{
			ProductID:   productID,
			ProductName: name,
			UnitPrice:   unitPrice,
			Quantity:    quantity,
			ImageURL:    imageURL,
			AddedAt:     now,
		})
	}
	a.UpdatedAt = now
	return nil
}

// SetItemQuantity replaces the stored quantity for the product. A quantity of
// zero removes the line. Targeting an absent product is a no-op.
func (a *Aggregate) SetItemQuantity(productID int64, quantity int, now time.Time) error {
	if quantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative")
	}
	idx := a.indexOf(productID)
	if idx < 0 {
		return nil
	}
	if quantity == 0 {
		a.Items = append(a.Items[:idx], a.Items[idx+1:]...)
	} else {
		a.Items[idx].Quantity = quantity
	}
	a.UpdatedAt = now
	return nil
}

// RemoveItem drops the line for the product. Removing an absent product is a
// no-op and leaves UpdatedAt untouched.
func (a *Aggregate) RemoveItem(productID int64, now time.Time) {
	idx := a.indexOf(productID)
	if idx < 0 {
		return
	}
	a.Items = append(a.Items[:idx], a.Items[idx+1:]...)
	a.UpdatedAt = now
}

// Clear drops every line.
func (a *Aggregate) Clear(now time.Time) {
	a.Items = nil
	a.UpdatedAt = now
}

// Empty reports whether the basket holds no lines.
func (a *Aggregate) Empty() bool {
	return len(a.Items) == 0
}

// Totals computes the basket totals on demand.
func (a *Aggregate) Totals() (decimal.Decimal, int) {
	total := decimal.Zero
	count := 0
	for i := range a.Items {
		total = total.Add(a.Items[i].LineTotal())
		count += a.Items[i].Quantity
	}
	return total, count
}
