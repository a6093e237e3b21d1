package store

import "errors"

var (
	// ErrAlreadyExists is returned by PutIfAbsent when an item with the same key exists.
	ErrAlreadyExists = errors.New("justine: item already exists")

	// ErrMissingKey is returned when an item lacks one of the table's key attributes.
	ErrMissingKey = errors.New("justine: item is missing a primary key attribute")

	// ErrUnknownIndex is returned when a query names an index the table does not define.
	ErrUnknownIndex = errors.New("justine: unknown secondary index")
)
