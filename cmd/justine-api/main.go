// Command justine-api serves the products, baskets and orders API.
//
// Inside AWS Lambda (AWS_LAMBDA_FUNCTION_NAME set) it handles API Gateway HTTP
// API events; otherwise it listens on SERVER_ADDRESS. See internal/config for
// the environment variables.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/jacentio/justine/api"
	"github.com/jacentio/justine/internal/config"
	"github.com/jacentio/justine/internal/logging"
	"github.com/jacentio/justine/internal/metrics"
	"github.com/jacentio/justine/repository"
	"github.com/jacentio/justine/store"
	"github.com/jacentio/justine/store/memstore"
)

const tableWait = 2 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	router, err := setup(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("startup failed", zap.Error(err))
	}

	if cfg.IsLambda() {
		logger.Info("starting lambda handler", zap.String("function", cfg.LambdaFunctionName))
		adapter := chiadapter.NewV2(router)
		lambda.Start(func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
			return adapter.ProxyWithContextV2(ctx, req)
		})
		return
	}

	if err := serve(cfg, router, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

// setup builds the store, repositories and router.
func setup(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*chi.Mux, error) {
	var client store.Client
	switch cfg.StoreBackend {
	case config.BackendMemory:
		logger.Warn("using in-memory store, data is lost on restart")
		client = memstore.New()
	default:
		db, err := newDynamoDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if cfg.CreateTables {
			for _, table := range repository.Tables(cfg.Repository) {
				logger.Info("ensuring table", zap.String("table", table.Name))
				if err := store.CreateTable(ctx, db, table, tableWait); err != nil {
					return nil, fmt.Errorf("create table %s: %w", table.Name, err)
				}
			}
		}
		client = store.New(db, store.DefaultConfig())
	}

	var httpMetrics *metrics.HTTPMetrics
	if cfg.EnableMetrics {
		client = metrics.Instrument(client, metrics.NewStoreMetrics())
		httpMetrics = metrics.NewHTTPMetrics(nil, nil)
	}

	opts := []repository.Option{repository.WithLogger(logger)}
	return api.NewRouter(api.Config{
		Products: repository.NewProductRepository(client, cfg.Repository, opts...),
		Baskets:  repository.NewBasketRepository(client, cfg.Repository, opts...),
		Orders:   repository.NewOrderRepository(client, cfg.Repository, opts...),
		Logger:   logger,
		Metrics:  httpMetrics,
	}), nil
}

func newDynamoDB(ctx context.Context, cfg *config.Config) (*dynamodb.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.DynamoDBEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
		}
	}), nil
}

// serve runs the HTTP server until SIGINT or SIGTERM.
func serve(cfg *config.Config, handler http.Handler, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("address", cfg.ServerAddress))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
