package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalogue entry. Inside a Basket it is a snapshot taken when the
// item was added, and Quantity is the quantity in the basket.
type Product struct {
	ID          int             `json:"id"`
	Name        string          `json:"name" validate:"required"`
	Description *string         `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
	ImageURL    *string         `json:"imageUrl,omitempty"`
	Quantity    int             `json:"quantity" validate:"gte=0"`
	CreatedAt   *time.Time      `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time      `json:"updatedAt,omitempty"`
}

// LineTotal is Price × Quantity.
func (p Product) LineTotal() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Quantity)))
}
