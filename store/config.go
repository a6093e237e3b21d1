package store

// Config holds configuration for the Store.
type Config struct {
	// ConsistentRead requests strongly consistent reads for GetItem, table
	// queries and scans. Index queries are always eventually consistent.
	// Default: true
	ConsistentRead bool

	// PageSize caps the number of items DynamoDB evaluates per page during
	// scans and unlimited index queries. All pages are still read.
	// Default: 0 (let DynamoDB decide, up to 1 MB per page)
	PageSize int32
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ConsistentRead: true,
		PageSize:       0,
	}
}

// validate ensures config values are within acceptable bounds.
func (c *Config) validate() {
	if c.PageSize < 0 {
		c.PageSize = 0
	}
}
