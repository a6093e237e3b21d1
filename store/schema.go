package store

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// TableAdmin is the subset of the DynamoDB client used to provision tables.
type TableAdmin interface {
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	DeleteTable(ctx context.Context, params *dynamodb.DeleteTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteTableOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// CreateTable creates the table with its secondary indexes in on-demand billing
// mode and waits up to maxWait for it to become ACTIVE.
// An already existing table is not an error.
func CreateTable(ctx context.Context, admin TableAdmin, table Table, maxWait time.Duration) error {
	_, err := admin.CreateTable(ctx, CreateTableInput(table))
	if err != nil {
		var inUse *types.ResourceInUseException
		if !errors.As(err, &inUse) {
			return err
		}
	}

	waiter := dynamodb.NewTableExistsWaiter(admin)
	return waiter.Wait(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(table.Name),
	}, maxWait)
}

// DeleteTable deletes the table and waits up to maxWait for it to disappear.
func DeleteTable(ctx context.Context, admin TableAdmin, name string, maxWait time.Duration) error {
	_, err := admin.DeleteTable(ctx, &dynamodb.DeleteTableInput{
		TableName: aws.String(name),
	})
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}

	waiter := dynamodb.NewTableNotExistsWaiter(admin)
	return waiter.Wait(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(name),
	}, maxWait)
}

// CreateTableInput builds the CreateTable request for a table description.
func CreateTableInput(table Table) *dynamodb.CreateTableInput {
	defs := attributeDefinitions{}
	defs.add(table.PartitionKey, table.PartitionKeyType, types.ScalarAttributeTypeN)

	keySchema := []types.KeySchemaElement{
		{AttributeName: aws.String(table.PartitionKey), KeyType: types.KeyTypeHash},
	}
	if table.SortKey != "" {
		defs.add(table.SortKey, table.SortKeyType, types.ScalarAttributeTypeS)
		keySchema = append(keySchema, types.KeySchemaElement{
			AttributeName: aws.String(table.SortKey),
			KeyType:       types.KeyTypeRange,
		})
	}

	input := &dynamodb.CreateTableInput{
		TableName:   aws.String(table.Name),
		KeySchema:   keySchema,
		BillingMode: types.BillingModePayPerRequest,
	}

	for _, idx := range table.Indexes {
		defs.add(idx.PartitionKey, idx.PartitionKeyType, types.ScalarAttributeTypeS)
		idxSchema := []types.KeySchemaElement{
			{AttributeName: aws.String(idx.PartitionKey), KeyType: types.KeyTypeHash},
		}
		if idx.SortKey != "" {
			defs.add(idx.SortKey, idx.SortKeyType, types.ScalarAttributeTypeN)
			idxSchema = append(idxSchema, types.KeySchemaElement{
				AttributeName: aws.String(idx.SortKey),
				KeyType:       types.KeyTypeRange,
			})
		}
		input.GlobalSecondaryIndexes = append(input.GlobalSecondaryIndexes, types.GlobalSecondaryIndex{
			IndexName:  aws.String(idx.Name),
			KeySchema:  idxSchema,
			Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
		})
	}

	input.AttributeDefinitions = defs.list
	return input
}

// attributeDefinitions collects key attribute definitions without duplicates.
type attributeDefinitions struct {
	seen map[string]bool
	list []types.AttributeDefinition
}

func (d *attributeDefinitions) add(name string, typ, fallback types.ScalarAttributeType) {
	if d.seen == nil {
		d.seen = make(map[string]bool)
	}
	if d.seen[name] {
		return
	}
	if typ == "" {
		typ = fallback
	}
	d.seen[name] = true
	d.list = append(d.list, types.AttributeDefinition{
		AttributeName: aws.String(name),
		AttributeType: typ,
	})
}
