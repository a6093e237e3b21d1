package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jacentio/justine/store"
)

var baskets = store.Table{
	Name:         "Baskets",
	PartitionKey: "BasketId",
	SortKey:      "CustomerName",
	Indexes: []store.Index{{
		Name:         "CustomerName-index",
		PartitionKey: "CustomerName",
		SortKey:      "BasketId",
	}},
}

func n(v string) types.AttributeValue { return &types.AttributeValueMemberN{Value: v} }
func s(v string) types.AttributeValue { return &types.AttributeValueMemberS{Value: v} }

func basketItem(id, customer string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"BasketId":     n(id),
		"CustomerName": s(customer),
		"Products":     &types.AttributeValueMemberL{},
	}
}

func TestNew_ClampsPageSize(t *testing.T) {
	api := new(mockAPI)
	st := store.New(api, store.Config{PageSize: -10})

	api.On("Scan", mock.Anything, mock.MatchedBy(func(in *dynamodb.ScanInput) bool {
		return in.Limit == nil
	})).Return(&dynamodb.ScanOutput{}, nil).Once()

	items, err := st.ScanAll(context.Background(), baskets)
	require.NoError(t, err)
	assert.Empty(t, items)
	api.AssertExpectations(t)
}

func TestGetByKey_FullKey(t *testing.T) {
	ctx := context.Background()
	api := new(mockAPI)
	st := store.New(api, store.DefaultConfig())

	key := store.PK{"BasketId": n("3"), "CustomerName": s("Justine")}
	api.On("GetItem", ctx, mock.MatchedBy(func(in *dynamodb.GetItemInput) bool {
		return aws.ToString(in.TableName) == "Baskets" &&
			aws.ToBool(in.ConsistentRead) &&
			len(in.Key) == 2
	})).Return(&dynamodb.GetItemOutput{Item: basketItem("3", "Justine")}, nil).Once()

	item, err := st.GetByKey(ctx, baskets, key)
	require.NoError(t, err)
	assert.Equal(t, s("Justine"), item["CustomerName"])
	api.AssertExpectations(t)
}

func TestGetByKey_FullKeyAbsent(t *testing.T) {
	ctx := context.Background()
	api := new(mockAPI)
	st := store.New(api, store.DefaultConfig())

	api.On("GetItem", ctx, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil).Once()

	item, err := st.GetByKey(ctx, baskets, store.PK{"BasketId": n("9"), "CustomerName": s("Joe")})
	require.NoError(t, err)
	assert.Nil(t, item)
}

func TestGetByKey_PartitionOnly(t *testing.T) {
	ctx := context.Background()
	api := new(mockAPI)
	st := store.New(api, store.DefaultConfig())

	api.On("Query", ctx, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		return in.IndexName == nil &&
			aws.ToString(in.KeyConditionExpression) == "#pk = :pk" &&
			in.ExpressionAttributeNames["#pk"] == "BasketId" &&
			aws.ToInt32(in.Limit) == 1
	})).Return(&dynamodb.QueryOutput{
		Items: []map[string]types.AttributeValue{basketItem("3", "Justine")},
	}, nil).Once()

	item, err := st.GetByKey(ctx, baskets, store.PK{"BasketId": n("3")})
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, n("3"), item["BasketId"])
	api.AssertExpectations(t)
}

func TestGetByKey_PartitionOnlyAbsent(t *testing.T) {
	ctx := context.Background()
	api := new(mockAPI)
	st := store.New(api, store.DefaultConfig())

	api.On("Query", ctx, mock.Anything).Return(&dynamodb.QueryOutput{}, nil).Once()

	item, err := st.GetByKey(ctx, baskets, store.PK{"BasketId": n("3")})
	require.NoError(t, err)
	assert.Nil(t, item)
}

func TestGetByKey_MissingPartition(t *testing.T) {
	api := new(mockAPI)
	st := store.New(api, store.DefaultConfig())

	_, err := st.GetByKey(context.Background(), baskets, store.PK{"CustomerName": s("Joe")})
	assert.ErrorIs(t, err, store.ErrMissingKey)
	api.AssertNotCalled(t, "Query", mock.Anything, mock.Anything)
}

func TestPut(t *testing.T) {
	ctx := context.Background()
	api := new(mockAPI)
	st := store.New(api, store.DefaultConfig())

	api.On("PutItem", ctx, mock.MatchedBy(func(in *dynamodb.PutItemInput) bool {
		return aws.ToString(in.TableName) == "Baskets" && in.ConditionExpression == nil
	})).Return(&dynamodb.PutItemOutput{}, nil).Once()

	require.NoError(t, st.Put(ctx, baskets, basketItem("1", "Joe")))
	api.AssertExpectations(t)
}

func TestPut_MissingSortKey(t *testing.T) {
	api := new(mockAPI)
	st := store.New(api, store.DefaultConfig())

	err := st.Put(context.Background(), baskets, store.Item{"BasketId": n("1")})
	assert.ErrorIs(t, err, store.ErrMissingKey)
	api.AssertNotCalled(t, "PutItem", mock.Anything, mock.Anything)
}

func TestPutIfAbsent(t *testing.T) {
	conditional := mock.MatchedBy(func(in *dynamodb.PutItemInput) bool {
		if in.ConditionExpression == nil {
			return false
		}
		for _, name := range in.ExpressionAttributeNames {
			if name == "BasketId" {
				return true
			}
		}
		return false
	})

	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{name: "written", err: nil, wantErr: nil},
		{
			name:    "key taken",
			err:     &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")},
			wantErr: store.ErrAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			api := new(mockAPI)
			st := store.New(api, store.DefaultConfig())
			api.On("PutItem", ctx, conditional).Return(&dynamodb.PutItemOutput{}, tt.err).Once()

			err := st.PutIfAbsent(ctx, baskets, basketItem("4", "Justine"))
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			api.AssertExpectations(t)
		})
	}
}

func TestPutIfAbsent_OtherErrorPassesThrough(t *testing.T) {
	ctx := context.Background()
	api := new(mockAPI)
	st := store.New(api, store.DefaultConfig())
	cause := errors.New("throttled")
	api.On("PutItem", ctx, mock.Anything).Return(nil, cause).Once()

	err := st.PutIfAbsent(ctx, baskets, basketItem("4", "Justine"))
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, store.ErrAlreadyExists)
}

func TestDelete_UsesKeyAttributesOnly(t *testing.T) {
	ctx := context.Background()
	api := new(mockAPI)
	st := store.New(api, store.DefaultConfig())

	api.On("DeleteItem", ctx, mock.MatchedBy(func(in *dynamodb.DeleteItemInput) bool {
		_, hasProducts := in.Key["Products"]
		return len(in.Key) == 2 && !hasProducts
	})).Return(&dynamodb.DeleteItemOutput{}, nil).Once()

	require.NoError(t, st.Delete(ctx, baskets, basketItem("2", "Jane")))
	api.AssertExpectations(t)
}

func TestScanAll_FollowsPages(t *testing.T) {
	ctx := context.Background()
	api := new(mockAPI)
	st := store.New(api, store.Config{ConsistentRead: true, PageSize: 2})

	lastKey := map[string]types.AttributeValue{"BasketId": n("2"), "CustomerName": s("Jane")}
	api.On("Scan", ctx, mock.MatchedBy(func(in *dynamodb.ScanInput) bool {
		return in.ExclusiveStartKey == nil && aws.ToInt32(in.Limit) == 2
	})).Return(&dynamodb.ScanOutput{
		Items:            []map[string]types.AttributeValue{basketItem("1", "Joe"), basketItem("2", "Jane")},
		LastEvaluatedKey: lastKey,
	}, nil).Once()
	api.On("Scan", ctx, mock.MatchedBy(func(in *dynamodb.ScanInput) bool {
		return in.ExclusiveStartKey != nil
	})).Return(&dynamodb.ScanOutput{
		Items: []map[string]types.AttributeValue{basketItem("3", "Justine")},
	}, nil).Once()

	items, err := st.ScanAll(ctx, baskets)
	require.NoError(t, err)
	assert.Len(t, items, 3)
	api.AssertExpectations(t)
}

func TestScanAll_Error(t *testing.T) {
	ctx := context.Background()
	api := new(mockAPI)
	st := store.New(api, store.DefaultConfig())
	cause := errors.New("access denied")
	api.On("Scan", ctx, mock.Anything).Return(nil, cause).Once()

	_, err := st.ScanAll(ctx, baskets)
	assert.ErrorIs(t, err, cause)
}

func TestQueryByIndex_LatestFirst(t *testing.T) {
	ctx := context.Background()
	api := new(mockAPI)
	st := store.New(api, store.DefaultConfig())

	api.On("Query", ctx, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		if aws.ToString(in.IndexName) != "CustomerName-index" {
			return false
		}
		if aws.ToBool(in.ScanIndexForward) || aws.ToInt32(in.Limit) != 1 {
			return false
		}
		for _, v := range in.ExpressionAttributeValues {
			if sv, ok := v.(*types.AttributeValueMemberS); ok && sv.Value == "Justine" {
				return true
			}
		}
		return false
	})).Return(&dynamodb.QueryOutput{
		Items: []map[string]types.AttributeValue{basketItem("3", "Justine"), basketItem("2", "Justine")},
	}, nil).Once()

	items, err := st.QueryByIndex(ctx, baskets, store.IndexQuery{
		IndexName:  "CustomerName-index",
		Attribute:  "CustomerName",
		Value:      "Justine",
		Descending: true,
		Limit:      1,
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, n("3"), items[0]["BasketId"])
	api.AssertExpectations(t)
}

func TestQueryByIndex_AllPages(t *testing.T) {
	ctx := context.Background()
	api := new(mockAPI)
	st := store.New(api, store.DefaultConfig())

	api.On("Query", ctx, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		return in.ExclusiveStartKey == nil && aws.ToBool(in.ScanIndexForward) && in.Limit == nil
	})).Return(&dynamodb.QueryOutput{
		Items:            []map[string]types.AttributeValue{basketItem("1", "Jane")},
		LastEvaluatedKey: map[string]types.AttributeValue{"BasketId": n("1")},
	}, nil).Once()
	api.On("Query", ctx, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		return in.ExclusiveStartKey != nil
	})).Return(&dynamodb.QueryOutput{
		Items: []map[string]types.AttributeValue{basketItem("2", "Jane")},
	}, nil).Once()

	items, err := st.QueryByIndex(ctx, baskets, store.IndexQuery{
		IndexName: "CustomerName-index",
		Attribute: "CustomerName",
		Value:     "Jane",
	})
	require.NoError(t, err)
	assert.Len(t, items, 2)
	api.AssertExpectations(t)
}

func TestQueryByIndex_UnknownIndex(t *testing.T) {
	api := new(mockAPI)
	st := store.New(api, store.DefaultConfig())

	_, err := st.QueryByIndex(context.Background(), baskets, store.IndexQuery{
		IndexName: "Missing-index",
		Attribute: "CustomerName",
		Value:     "Joe",
	})
	assert.ErrorIs(t, err, store.ErrUnknownIndex)
	api.AssertNotCalled(t, "Query", mock.Anything, mock.Anything)
}
