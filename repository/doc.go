// Package repository maps Product, Basket and Order operations onto a store.Client.
//
// # Identifiers
//
// Products carry caller-supplied ids. Baskets and orders get sequential ids per
// customer from an [IDAllocator]: the customer index is queried for the highest
// id in the customer's scope and one is added (1 for a new customer). Allocation
// is read-then-write and not atomic; enable [Config.StrictIDAllocation] to write
// with a conditional put and re-allocate on collision.
//
// # Results
//
// GetByID returns nil for a missing record; that is not an error. Update returns
// nil when its target is missing and otherwise returns the record as it was
// before the update. Delete fails with [ErrNotFound] when its target is missing.
//
// # Errors
//
// Every failure is an [*Error] tagged with the entity family, the operation and
// the id or customer involved:
//
//   - [ErrNotFound] - the record the operation needs does not exist
//   - [ErrStoreOperation] - a store call failed; the cause is wrapped
//   - [ErrIDConflict] - strict allocation ran out of attempts
package repository
