// Package model defines the Product, Basket and Order aggregates.
//
// Money is represented with decimal.Decimal. A Basket's total is derived from
// its line items every time it is asked for and is never stored.
package model
