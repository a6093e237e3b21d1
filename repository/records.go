package repository

import (
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"

	"github.com/jacentio/justine/model"
	"github.com/jacentio/justine/store"
)

// number persists a decimal as a DynamoDB N so no precision is lost.
type number struct {
	decimal.Decimal
}

func (n number) MarshalDynamoDBAttributeValue() (types.AttributeValue, error) {
	return &types.AttributeValueMemberN{Value: n.Decimal.String()}, nil
}

func (n *number) UnmarshalDynamoDBAttributeValue(av types.AttributeValue) error {
	var raw string
	switch v := av.(type) {
	case *types.AttributeValueMemberN:
		raw = v.Value
	case *types.AttributeValueMemberS:
		raw = v.Value
	case *types.AttributeValueMemberNULL:
		n.Decimal = decimal.Zero
		return nil
	default:
		return fmt.Errorf("unsupported attribute type %T for decimal", av)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("parse decimal %q: %w", raw, err)
	}
	n.Decimal = d
	return nil
}

func numberAttr(n int) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: strconv.Itoa(n)}
}

func stringAttr(s string) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: s}
}

type productRecord struct {
	ID          int        `dynamodbav:"Id"`
	Name        string     `dynamodbav:"Name"`
	Description *string    `dynamodbav:"Description,omitempty"`
	Price       number     `dynamodbav:"Price"`
	ImageURL    *string    `dynamodbav:"ImageUrl,omitempty"`
	Quantity    int        `dynamodbav:"Quantity"`
	CreatedAt   *time.Time `dynamodbav:"CreatedAt,omitempty"`
	UpdatedAt   *time.Time `dynamodbav:"UpdatedAt,omitempty"`
}

type basketRecord struct {
	ID           int             `dynamodbav:"BasketId"`
	CustomerName string          `dynamodbav:"CustomerName"`
	Products     []productRecord `dynamodbav:"Products"`
	CreatedAt    *time.Time      `dynamodbav:"CreatedAt,omitempty"`
	UpdatedAt    *time.Time      `dynamodbav:"UpdatedAt,omitempty"`
}

type orderRecord struct {
	ID           int       `dynamodbav:"OrderId"`
	CustomerName string    `dynamodbav:"CustomerName"`
	BasketID     int       `dynamodbav:"BasketId"`
	OrderDate    time.Time `dynamodbav:"OrderDate"`
}

func toProductRecord(p model.Product) productRecord {
	return productRecord{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       number{p.Price},
		ImageURL:    p.ImageURL,
		Quantity:    p.Quantity,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (r productRecord) model() model.Product {
	return model.Product{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price.Decimal,
		ImageURL:    r.ImageURL,
		Quantity:    r.Quantity,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func marshalProduct(p model.Product) (store.Item, error) {
	item, err := attributevalue.MarshalMap(toProductRecord(p))
	if err != nil {
		return nil, fmt.Errorf("marshal product: %w", err)
	}
	return item, nil
}

func unmarshalProduct(item store.Item) (*model.Product, error) {
	var rec productRecord
	if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal product: %w", err)
	}
	p := rec.model()
	return &p, nil
}

func marshalBasket(b model.Basket) (store.Item, error) {
	rec := basketRecord{
		ID:           b.ID,
		CustomerName: b.CustomerName,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
	if b.Products != nil {
		rec.Products = make([]productRecord, 0, len(b.Products))
		for _, p := range b.Products {
			rec.Products = append(rec.Products, toProductRecord(p))
		}
	}
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal basket: %w", err)
	}
	return item, nil
}

func unmarshalBasket(item store.Item) (*model.Basket, error) {
	var rec basketRecord
	if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal basket: %w", err)
	}
	b := &model.Basket{
		ID:           rec.ID,
		CustomerName: rec.CustomerName,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}
	if rec.Products != nil {
		b.Products = make([]model.Product, 0, len(rec.Products))
		for _, p := range rec.Products {
			b.Products = append(b.Products, p.model())
		}
	}
	return b, nil
}

func marshalOrder(o model.Order) (store.Item, error) {
	item, err := attributevalue.MarshalMap(orderRecord(o))
	if err != nil {
		return nil, fmt.Errorf("marshal order: %w", err)
	}
	return item, nil
}

func unmarshalOrder(item store.Item) (*model.Order, error) {
	var rec orderRecord
	if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal order: %w", err)
	}
	o := model.Order(rec)
	return &o, nil
}
