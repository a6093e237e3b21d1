package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Basket is a customer's collection of product snapshots.
type Basket struct {
	ID           int        `json:"basketId"`
	CustomerName string     `json:"customerName" validate:"required"`
	Products     []Product  `json:"products" validate:"dive"`
	CreatedAt    *time.Time `json:"createdAt,omitempty"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
}

// TotalPrice sums Price × Quantity over the current line items.
func (b Basket) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, p := range b.Products {
		total = total.Add(p.LineTotal())
	}
	return total
}

// MarshalJSON adds the derived totalPrice to the encoded basket.
func (b Basket) MarshalJSON() ([]byte, error) {
	type basket Basket
	return json.Marshal(struct {
		basket
		TotalPrice decimal.Decimal `json:"totalPrice"`
	}{basket(b), b.TotalPrice()})
}
