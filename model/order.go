package model

import "time"

// Order references a basket by id. OrderDate is set when the order is added.
type Order struct {
	ID           int       `json:"orderId"`
	CustomerName string    `json:"customerName" validate:"required"`
	BasketID     int       `json:"basketId" validate:"required"`
	OrderDate    time.Time `json:"orderDate"`
}
