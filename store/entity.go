package store

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// PK represents a DynamoDB primary key.
type PK map[string]types.AttributeValue

// Item is a raw DynamoDB item.
type Item map[string]types.AttributeValue

// Table describes a DynamoDB table and the indexes the store may query.
type Table struct {
	// Name is the DynamoDB table name.
	Name string

	// PartitionKey is the hash key attribute (e.g., "BasketId").
	PartitionKey string

	// PartitionKeyType is the scalar type of the hash key. Default: N.
	PartitionKeyType types.ScalarAttributeType

	// SortKey is the optional range key attribute (e.g., "CustomerName").
	SortKey string

	// SortKeyType is the scalar type of the range key. Default: S.
	SortKeyType types.ScalarAttributeType

	// Indexes are the global secondary indexes defined on the table.
	Indexes []Index
}

// Index describes a global secondary index.
type Index struct {
	Name string

	// PartitionKey is the index hash key attribute (e.g., "CustomerName").
	PartitionKey string

	// PartitionKeyType defaults to S.
	PartitionKeyType types.ScalarAttributeType

	// SortKey orders results within a partition (e.g., "BasketId").
	SortKey string

	// SortKeyType defaults to N.
	SortKeyType types.ScalarAttributeType
}

// Index returns the named index and whether it exists.
func (t Table) Index(name string) (Index, bool) {
	for _, idx := range t.Indexes {
		if idx.Name == name {
			return idx, true
		}
	}
	return Index{}, false
}

// KeyOf extracts the primary key attributes from an item.
// Returns ErrMissingKey if any key attribute is absent.
func (t Table) KeyOf(item Item) (PK, error) {
	key := PK{}
	v, ok := item[t.PartitionKey]
	if !ok {
		return nil, ErrMissingKey
	}
	key[t.PartitionKey] = v
	if t.SortKey != "" {
		v, ok := item[t.SortKey]
		if !ok {
			return nil, ErrMissingKey
		}
		key[t.SortKey] = v
	}
	return key, nil
}

// IsFullKey reports whether key carries every primary key attribute of the table.
func (t Table) IsFullKey(key PK) bool {
	if _, ok := key[t.PartitionKey]; !ok {
		return false
	}
	if t.SortKey == "" {
		return true
	}
	_, ok := key[t.SortKey]
	return ok
}

// IndexQuery defines an equality query against a secondary index.
type IndexQuery struct {
	// IndexName is the GSI to query.
	IndexName string

	// Attribute is the index partition key attribute.
	Attribute string

	// Value is the Go value the attribute must equal (e.g., "Justine").
	Value any

	// Descending orders results by the index sort key, highest first.
	Descending bool

	// Limit is the maximum number of items to return (0 = no limit).
	Limit int32
}
