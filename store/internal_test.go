package store

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var products = Table{
	Name:         "Products",
	PartitionKey: "Id",
	SortKey:      "Name",
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		in   int32
		want int32
	}{
		{"zero stays", 0, 0},
		{"positive stays", 25, 25},
		{"negative reset", -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{PageSize: tt.in}
			cfg.validate()
			if cfg.PageSize != tt.want {
				t.Errorf("expected PageSize %d, got %d", tt.want, cfg.PageSize)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if !cfg.ConsistentRead {
		t.Error("expected ConsistentRead by default")
	}
	if cfg.PageSize != 0 {
		t.Errorf("expected PageSize 0, got %d", cfg.PageSize)
	}
}

func TestKeyOf(t *testing.T) {
	item := Item{
		"Id":    &types.AttributeValueMemberN{Value: "1"},
		"Name":  &types.AttributeValueMemberS{Value: "Pen"},
		"Price": &types.AttributeValueMemberN{Value: "1.5"},
	}

	key, err := products.KeyOf(item)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(key) != 2 {
		t.Errorf("expected 2 key attributes, got %d", len(key))
	}
	if _, ok := key["Price"]; ok {
		t.Error("non-key attribute leaked into key")
	}
}

func TestKeyOf_Missing(t *testing.T) {
	tests := []struct {
		name string
		item Item
	}{
		{"no partition", Item{"Name": &types.AttributeValueMemberS{Value: "Pen"}}},
		{"no sort", Item{"Id": &types.AttributeValueMemberN{Value: "1"}}},
		{"empty", Item{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := products.KeyOf(tt.item); err != ErrMissingKey {
				t.Errorf("expected ErrMissingKey, got %v", err)
			}
		})
	}
}

func TestIsFullKey(t *testing.T) {
	id := &types.AttributeValueMemberN{Value: "1"}
	name := &types.AttributeValueMemberS{Value: "Pen"}

	if !products.IsFullKey(PK{"Id": id, "Name": name}) {
		t.Error("expected full key")
	}
	if products.IsFullKey(PK{"Id": id}) {
		t.Error("partition only is not a full key")
	}
	hashOnly := Table{Name: "Sessions", PartitionKey: "Token"}
	if !hashOnly.IsFullKey(PK{"Token": name}) {
		t.Error("partition is the full key of a hash-only table")
	}
}

func TestTableIndex(t *testing.T) {
	table := Table{Indexes: []Index{{Name: "CustomerName-index"}}}
	if _, ok := table.Index("CustomerName-index"); !ok {
		t.Error("expected index to be found")
	}
	if _, ok := table.Index("other"); ok {
		t.Error("unexpected index")
	}
}

func TestAttributeDefinitions_Dedupe(t *testing.T) {
	var defs attributeDefinitions
	defs.add("CustomerName", "", types.ScalarAttributeTypeS)
	defs.add("CustomerName", types.ScalarAttributeTypeN, types.ScalarAttributeTypeN)
	defs.add("OrderId", "", types.ScalarAttributeTypeN)

	if len(defs.list) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(defs.list))
	}
	if defs.list[0].AttributeType != types.ScalarAttributeTypeS {
		t.Errorf("first definition wins, got %s", defs.list[0].AttributeType)
	}
}
