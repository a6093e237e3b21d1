package repository

import (
	"errors"
	"fmt"
	"strings"
)

// Entity tags an Error with the aggregate family it came from.
type Entity string

const (
	EntityProduct Entity = "product"
	EntityBasket  Entity = "basket"
	EntityOrder   Entity = "order"
)

var (
	// ErrNotFound is returned when an entity required by the operation does not exist.
	ErrNotFound = errors.New("justine: entity not found")

	// ErrStoreOperation is returned when an underlying store call fails.
	// The store's own error stays reachable through errors.Is/As.
	ErrStoreOperation = errors.New("justine: store operation failed")

	// ErrIDConflict is returned when strict allocation keeps colliding with concurrent writers.
	ErrIDConflict = errors.New("justine: could not allocate a unique id")
)

// Error is the error family returned by the repositories.
type Error struct {
	Entity Entity
	Op     string
	ID     int
	Scope  string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Entity))
	b.WriteByte(' ')
	b.WriteString(e.Op)
	if e.ID != 0 {
		fmt.Fprintf(&b, " id=%d", e.ID)
	}
	if e.Scope != "" {
		fmt.Fprintf(&b, " customer=%q", e.Scope)
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

func notFound(entity Entity, op string, id int) error {
	return &Error{Entity: entity, Op: op, ID: id, Err: ErrNotFound}
}

func storeFailure(entity Entity, op string, id int, err error) error {
	return &Error{Entity: entity, Op: op, ID: id, Err: storeCause(err)}
}

func storeCause(err error) error {
	return fmt.Errorf("%w: %w", ErrStoreOperation, err)
}
