// Package memstore provides an in-memory store.Client for local development and tests.
//
// Items are kept per table name and keyed by their primary key. Secondary index
// queries are answered by filtering on the index partition attribute and sorting
// by the index sort attribute, which matches what DynamoDB returns for a GSI with
// ProjectionType ALL.
package memstore

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/justine/store"
)

// Op names a store operation for failure injection.
type Op string

const (
	OpGetByKey     Op = "GetByKey"
	OpPut          Op = "Put"
	OpPutIfAbsent  Op = "PutIfAbsent"
	OpDelete       Op = "Delete"
	OpScanAll      Op = "ScanAll"
	OpQueryByIndex Op = "QueryByIndex"
)

// Store is an in-memory store.Client. The zero value is not usable; call New.
type Store struct {
	mu     sync.RWMutex
	tables map[string]map[string]store.Item
	fail   map[Op]error
}

var _ store.Client = (*Store)(nil)

// New creates an empty Store.
func New() *Store {
	return &Store{
		tables: make(map[string]map[string]store.Item),
		fail:   make(map[Op]error),
	}
}

// FailWith makes every subsequent call of op return err. A nil err clears it.
func (s *Store) FailWith(op Op, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.fail, op)
		return
	}
	s.fail[op] = err
}

// Len returns the number of items held for a table.
func (s *Store) Len(table string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tables[table])
}

// GetByKey returns the item for key, or nil when absent.
func (s *Store) GetByKey(ctx context.Context, table store.Table, key store.PK) (store.Item, error) {
	if err := s.check(ctx, OpGetByKey); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if table.IsFullKey(key) {
		k, err := keyString(table, store.Item(key))
		if err != nil {
			return nil, err
		}
		item, ok := s.tables[table.Name][k]
		if !ok {
			return nil, nil
		}
		return clone(item), nil
	}

	pv, ok := key[table.PartitionKey]
	if !ok {
		return nil, store.ErrMissingKey
	}

	// Partition-only lookup: first item in sort key order, like a Query with Limit 1.
	var matches []store.Item
	for _, item := range s.tables[table.Name] {
		if equal(item[table.PartitionKey], pv) {
			matches = append(matches, item)
		}
	}
	if len(matches) == 0 {
		return nil, nil
	}
	sortItems(matches, table.SortKey, false)
	return clone(matches[0]), nil
}

// Put creates or overwrites the item.
func (s *Store) Put(ctx context.Context, table store.Table, item store.Item) error {
	if err := s.check(ctx, OpPut); err != nil {
		return err
	}
	k, err := keyString(table, item)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tableLocked(table.Name)[k] = clone(item)
	return nil
}

// PutIfAbsent creates the item unless its primary key is already taken.
func (s *Store) PutIfAbsent(ctx context.Context, table store.Table, item store.Item) error {
	if err := s.check(ctx, OpPutIfAbsent); err != nil {
		return err
	}
	k, err := keyString(table, item)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.tableLocked(table.Name)
	if _, exists := items[k]; exists {
		return store.ErrAlreadyExists
	}
	items[k] = clone(item)
	return nil
}

// Delete removes the item identified by the item's primary key.
func (s *Store) Delete(ctx context.Context, table store.Table, item store.Item) error {
	if err := s.check(ctx, OpDelete); err != nil {
		return err
	}
	k, err := keyString(table, item)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tables[table.Name], k)
	return nil
}

// ScanAll returns every item in the table.
func (s *Store) ScanAll(ctx context.Context, table store.Table) ([]store.Item, error) {
	if err := s.check(ctx, OpScanAll); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]store.Item, 0, len(s.tables[table.Name]))
	for _, item := range s.tables[table.Name] {
		items = append(items, clone(item))
	}
	return items, nil
}

// QueryByIndex answers an equality query against a secondary index.
func (s *Store) QueryByIndex(ctx context.Context, table store.Table, q store.IndexQuery) ([]store.Item, error) {
	if err := s.check(ctx, OpQueryByIndex); err != nil {
		return nil, err
	}
	idx, ok := table.Index(q.IndexName)
	if !ok {
		return nil, fmt.Errorf("%w: %s on %s", store.ErrUnknownIndex, q.IndexName, table.Name)
	}
	want, err := attributevalue.Marshal(q.Value)
	if err != nil {
		return nil, fmt.Errorf("marshal query value: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := []store.Item{}
	for _, item := range s.tables[table.Name] {
		if equal(item[q.Attribute], want) {
			matches = append(matches, clone(item))
		}
	}
	sortItems(matches, idx.SortKey, q.Descending)
	if q.Limit > 0 && int32(len(matches)) > q.Limit {
		matches = matches[:q.Limit]
	}
	return matches, nil
}

func (s *Store) check(ctx context.Context, op Op) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fail[op]
}

func (s *Store) tableLocked(name string) map[string]store.Item {
	items, ok := s.tables[name]
	if !ok {
		items = make(map[string]store.Item)
		s.tables[name] = items
	}
	return items
}

// keyString renders the primary key of an item as a map key.
func keyString(table store.Table, item store.Item) (string, error) {
	key, err := table.KeyOf(item)
	if err != nil {
		return "", err
	}
	parts := []string{scalar(key[table.PartitionKey])}
	if table.SortKey != "" {
		parts = append(parts, scalar(key[table.SortKey]))
	}
	return strings.Join(parts, "#"), nil
}

// scalar renders a scalar attribute value with its type tag.
func scalar(av types.AttributeValue) string {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		return "S:" + v.Value
	case *types.AttributeValueMemberN:
		if f, ok := new(big.Float).SetString(v.Value); ok {
			return "N:" + f.Text('g', -1)
		}
		return "N:" + v.Value
	case *types.AttributeValueMemberB:
		return fmt.Sprintf("B:%x", v.Value)
	case *types.AttributeValueMemberBOOL:
		return fmt.Sprintf("BOOL:%t", v.Value)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%T", av)
	}
}

func equal(a, b types.AttributeValue) bool {
	if a == nil || b == nil {
		return false
	}
	return scalar(a) == scalar(b)
}

// sortItems orders items by attr. Numbers compare numerically, everything else as strings.
func sortItems(items []store.Item, attr string, descending bool) {
	if attr == "" {
		return
	}
	sort.SliceStable(items, func(i, j int) bool {
		c := compare(items[i][attr], items[j][attr])
		if descending {
			return c > 0
		}
		return c < 0
	})
}

func compare(a, b types.AttributeValue) int {
	an, aok := a.(*types.AttributeValueMemberN)
	bn, bok := b.(*types.AttributeValueMemberN)
	if aok && bok {
		af, ok1 := new(big.Float).SetString(an.Value)
		bf, ok2 := new(big.Float).SetString(bn.Value)
		if ok1 && ok2 {
			return af.Cmp(bf)
		}
	}
	return strings.Compare(scalar(a), scalar(b))
}

// clone copies the top-level map so callers cannot mutate stored items.
func clone(item store.Item) store.Item {
	out := make(store.Item, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}
