// Package config loads the service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jacentio/justine/repository"
)

// Store backends.
const (
	BackendDynamoDB = "dynamodb"
	BackendMemory   = "memory"
)

// Config holds all application configuration.
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// AWS configuration
	AWSRegion        string
	DynamoDBEndpoint string // empty uses the regional endpoint

	// Lambda configuration
	LambdaFunctionName string

	// Storage
	StoreBackend string
	CreateTables bool
	Repository   repository.Config

	// Logging and features
	LogLevel      string
	EnableMetrics bool
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	repo := repository.DefaultConfig()
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),

		AWSRegion:        getEnv("AWS_REGION", "us-east-1"),
		DynamoDBEndpoint: getEnv("DYNAMODB_ENDPOINT", ""),

		LambdaFunctionName: getEnv("AWS_LAMBDA_FUNCTION_NAME", ""),

		StoreBackend: strings.ToLower(getEnv("STORE_BACKEND", BackendDynamoDB)),
		CreateTables: getEnvBool("CREATE_TABLES", false),
		Repository: repository.Config{
			ProductsTable:         getEnv("PRODUCTS_TABLE", repo.ProductsTable),
			BasketsTable:          getEnv("BASKETS_TABLE", repo.BasketsTable),
			OrdersTable:           getEnv("ORDERS_TABLE", repo.OrdersTable),
			CustomerIndex:         getEnv("CUSTOMER_INDEX", repo.CustomerIndex),
			StrictIDAllocation:    getEnvBool("STRICT_ID_ALLOCATION", repo.StrictIDAllocation),
			MaxAllocationAttempts: getEnvInt("MAX_ALLOCATION_ATTEMPTS", repo.MaxAllocationAttempts),
		},

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		EnableMetrics: getEnvBool("ENABLE_METRICS", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration can be used.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendDynamoDB, BackendMemory:
	default:
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendDynamoDB, BackendMemory, c.StoreBackend)
	}
	if c.StoreBackend == BackendMemory && c.IsProduction() {
		return fmt.Errorf("STORE_BACKEND %q is not allowed in production", BackendMemory)
	}
	if c.StoreBackend == BackendDynamoDB && c.AWSRegion == "" {
		return fmt.Errorf("AWS_REGION is required")
	}
	return nil
}

// IsLambda reports whether the process runs inside AWS Lambda.
func (c *Config) IsLambda() bool {
	return c.LambdaFunctionName != ""
}

// IsProduction checks if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
