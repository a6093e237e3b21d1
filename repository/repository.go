package repository

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/justine/store"
)

// readBack re-reads a just-written item by its full primary key so callers
// see what the store actually holds.
func readBack(ctx context.Context, client store.Client, table store.Table, item store.Item) (store.Item, error) {
	key, err := table.KeyOf(item)
	if err != nil {
		return nil, err
	}
	return client.GetByKey(ctx, table, key)
}

// customerKey is the full primary key of a customer-scoped record.
func customerKey(table store.Table, id int, customer string) store.PK {
	return store.PK{
		table.PartitionKey: numberAttr(id),
		attrCustomerName:   stringAttr(customer),
	}
}

// replace overwrites current with next. When the sort key changed (a renamed
// product) the old item is removed so the id keeps a single record.
func replace(ctx context.Context, client store.Client, table store.Table, current, next store.Item) error {
	if err := client.Put(ctx, table, next); err != nil {
		return err
	}
	oldKey, err := table.KeyOf(current)
	if err != nil {
		return err
	}
	newKey, err := table.KeyOf(next)
	if err != nil {
		return err
	}
	if sameKey(oldKey, newKey) {
		return nil
	}
	return client.Delete(ctx, table, current)
}

func sameKey(a, b store.PK) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || !scalarEqual(av, bv) {
			return false
		}
	}
	return true
}

func scalarEqual(a, b types.AttributeValue) bool {
	switch av := a.(type) {
	case *types.AttributeValueMemberS:
		bv, ok := b.(*types.AttributeValueMemberS)
		return ok && av.Value == bv.Value
	case *types.AttributeValueMemberN:
		bv, ok := b.(*types.AttributeValueMemberN)
		return ok && av.Value == bv.Value
	}
	return false
}
