// Package store provides the key-value access layer the repositories are built on.
//
// The [Client] interface is the whole contract the repositories consume:
//
//	type Client interface {
//	    GetByKey(ctx, table, key)   // point lookup, nil Item when absent
//	    Put(ctx, table, item)       // unconditional upsert
//	    PutIfAbsent(ctx, table, item)
//	    Delete(ctx, table, item)    // by the item's primary key
//	    ScanAll(ctx, table)
//	    QueryByIndex(ctx, table, query)
//	}
//
// [Store] implements it on top of DynamoDB. The memstore subpackage provides an
// in-memory implementation for local development and tests.
//
// # Tables
//
// A [Table] names the partition key, optional sort key and the global secondary
// indexes of a DynamoDB table. When a table has a composite key, GetByKey may be
// called with the partition key alone; the store then queries the partition and
// returns its first item.
//
// # Errors
//
//   - [ErrAlreadyExists] - PutIfAbsent found an item with the same key
//   - [ErrMissingKey] - item lacks a primary key attribute
//   - [ErrUnknownIndex] - query names an index the table does not define
//
// Every other failure is the underlying SDK error, returned unchanged.
package store
