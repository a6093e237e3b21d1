package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Client is the key-value contract the repositories consume.
type Client interface {
	// GetByKey returns the item for key, or a nil Item when absent.
	GetByKey(ctx context.Context, table Table, key PK) (Item, error)

	// Put creates the item or fully overwrites an existing one.
	Put(ctx context.Context, table Table, item Item) error

	// PutIfAbsent creates the item, failing with ErrAlreadyExists when the key is taken.
	PutIfAbsent(ctx context.Context, table Table, item Item) error

	// Delete removes the item identified by the item's primary key.
	Delete(ctx context.Context, table Table, item Item) error

	// ScanAll reads every item in the table, in no particular order.
	ScanAll(ctx context.Context, table Table) ([]Item, error)

	// QueryByIndex runs an equality query against a secondary index.
	QueryByIndex(ctx context.Context, table Table, q IndexQuery) ([]Item, error)
}

// API is the subset of the DynamoDB client used by Store.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Store implements Client on DynamoDB.
type Store struct {
	api    API
	config Config
}

var _ Client = (*Store)(nil)

// New creates a new Store instance.
func New(api API, config Config) *Store {
	config.validate()
	return &Store{
		api:    api,
		config: config,
	}
}

// GetByKey retrieves an item by key.
// With the full primary key this is a GetItem. With only the partition key of a
// composite-key table, the partition is queried and its first item returned.
func (s *Store) GetByKey(ctx context.Context, table Table, key PK) (Item, error) {
	if table.IsFullKey(key) {
		result, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
			TableName:      aws.String(table.Name),
			Key:            key,
			ConsistentRead: aws.Bool(s.config.ConsistentRead),
		})
		if err != nil {
			return nil, err
		}
		if len(result.Item) == 0 {
			return nil, nil
		}
		return Item(result.Item), nil
	}

	pv, ok := key[table.PartitionKey]
	if !ok {
		return nil, ErrMissingKey
	}

	result, err := s.api.Query(ctx, &dynamodb.QueryInput{
		TableName:                aws.String(table.Name),
		KeyConditionExpression:   aws.String("#pk = :pk"),
		ExpressionAttributeNames: map[string]string{"#pk": table.PartitionKey},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": pv,
		},
		ConsistentRead: aws.Bool(s.config.ConsistentRead),
		Limit:          aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(result.Items) == 0 {
		return nil, nil
	}
	return Item(result.Items[0]), nil
}

// Put writes the item unconditionally.
func (s *Store) Put(ctx context.Context, table Table, item Item) error {
	if _, err := table.KeyOf(item); err != nil {
		return err
	}
	_, err := s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(table.Name),
		Item:      item,
	})
	return err
}

// PutIfAbsent writes the item only if no item with the same primary key exists.
func (s *Store) PutIfAbsent(ctx context.Context, table Table, item Item) error {
	if _, err := table.KeyOf(item); err != nil {
		return err
	}

	expr, err := expression.NewBuilder().
		WithCondition(expression.Name(table.PartitionKey).AttributeNotExists()).
		Build()
	if err != nil {
		return fmt.Errorf("build condition: %w", err)
	}

	_, err = s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(table.Name),
		Item:                      item,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Delete removes the item by its primary key.
func (s *Store) Delete(ctx context.Context, table Table, item Item) error {
	key, err := table.KeyOf(item)
	if err != nil {
		return err
	}
	_, err = s.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(table.Name),
		Key:       key,
	})
	return err
}

// ScanAll reads the whole table, following pagination to the end.
func (s *Store) ScanAll(ctx context.Context, table Table) ([]Item, error) {
	input := &dynamodb.ScanInput{
		TableName:      aws.String(table.Name),
		ConsistentRead: aws.Bool(s.config.ConsistentRead),
	}
	if s.config.PageSize > 0 {
		input.Limit = aws.Int32(s.config.PageSize)
	}

	items := []Item{}
	paginator := dynamodb.NewScanPaginator(s.api, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, raw := range page.Items {
			items = append(items, Item(raw))
		}
	}
	return items, nil
}

// QueryByIndex queries a secondary index for items whose partition attribute equals q.Value.
func (s *Store) QueryByIndex(ctx context.Context, table Table, q IndexQuery) ([]Item, error) {
	if _, ok := table.Index(q.IndexName); !ok {
		return nil, fmt.Errorf("%w: %s on %s", ErrUnknownIndex, q.IndexName, table.Name)
	}

	expr, err := expression.NewBuilder().
		WithKeyCondition(expression.Key(q.Attribute).Equal(expression.Value(q.Value))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build key condition: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(table.Name),
		IndexName:                 aws.String(q.IndexName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(!q.Descending),
	}
	switch {
	case q.Limit > 0:
		input.Limit = aws.Int32(q.Limit)
	case s.config.PageSize > 0:
		input.Limit = aws.Int32(s.config.PageSize)
	}

	items := []Item{}
	paginator := dynamodb.NewQueryPaginator(s.api, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, raw := range page.Items {
			items = append(items, Item(raw))
			if q.Limit > 0 && int32(len(items)) >= q.Limit {
				return items, nil
			}
		}
	}
	return items, nil
}
