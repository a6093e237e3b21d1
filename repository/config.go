package repository

// Config holds table and allocation settings shared by the repositories.
type Config struct {
	// ProductsTable is the name of the products table.
	// Default: "Products"
	ProductsTable string

	// BasketsTable is the name of the baskets table.
	// Default: "Baskets"
	BasketsTable string

	// OrdersTable is the name of the orders table.
	// Default: "Orders"
	OrdersTable string

	// CustomerIndex is the GSI on CustomerName defined on baskets and orders.
	// Default: "CustomerName-index"
	CustomerIndex string

	// StrictIDAllocation writes new baskets and orders with a conditional put
	// and re-allocates when the id is already taken in the customer's scope.
	// When false, allocation is read-latest-then-increment followed by an
	// unconditional put, and two concurrent adds for the same customer may
	// produce the same id (the later write wins).
	// Default: false
	StrictIDAllocation bool

	// MaxAllocationAttempts bounds re-allocation in strict mode.
	// Default: 3
	// Max: 10
	MaxAllocationAttempts int
}

// DefaultConfig returns the standard table layout.
func DefaultConfig() Config {
	return Config{
		ProductsTable:         "Products",
		BasketsTable:          "Baskets",
		OrdersTable:           "Orders",
		CustomerIndex:         "CustomerName-index",
		StrictIDAllocation:    false,
		MaxAllocationAttempts: 3,
	}
}

// validate ensures config values are within acceptable bounds.
func (c *Config) validate() {
	if c.ProductsTable == "" {
		c.ProductsTable = "Products"
	}
	if c.BasketsTable == "" {
		c.BasketsTable = "Baskets"
	}
	if c.OrdersTable == "" {
		c.OrdersTable = "Orders"
	}
	if c.CustomerIndex == "" {
		c.CustomerIndex = "CustomerName-index"
	}
	if c.MaxAllocationAttempts < 1 {
		c.MaxAllocationAttempts = 3
	}
	if c.MaxAllocationAttempts > 10 {
		c.MaxAllocationAttempts = 10
	}
}
