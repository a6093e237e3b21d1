package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jacentio/justine/store"
)

// StoreMetrics records latency and failures of store operations per table.
type StoreMetrics struct {
	duration *prometheus.HistogramVec
	errors   *prometheus.CounterVec
}

// NewStoreMetrics registers the store collectors on the default registerer.
func NewStoreMetrics() *StoreMetrics {
	return NewStoreMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewStoreMetricsWithRegisterer registers the store collectors on registerer.
// Registering twice on the same registerer reuses the existing collectors.
func NewStoreMetricsWithRegisterer(registerer prometheus.Registerer) *StoreMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	return &StoreMetrics{
		duration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_operation_duration_seconds",
			Help:      "Duration of key-value store operations in seconds",
			Buckets:   durationBuckets,
		}, []string{"table", "operation"}),
		errors: registerCounterVec(registerer, prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operation_errors_total",
			Help:      "Total number of failed key-value store operations",
		}, []string{"table", "operation", "reason"}),
	}
}

// Observe records one operation. A nil err only records the duration.
func (m *StoreMetrics) Observe(table, op string, started time.Time, err error) {
	m.duration.WithLabelValues(table, op).Observe(time.Since(started).Seconds())
	if err != nil {
		m.errors.WithLabelValues(table, op, reason(err)).Inc()
	}
}

func reason(err error) string {
	switch {
	case errors.Is(err, store.ErrAlreadyExists):
		return "conflict"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}

// Client decorates a store.Client with StoreMetrics.
type Client struct {
	inner   store.Client
	metrics *StoreMetrics
}

var _ store.Client = (*Client)(nil)

// Instrument wraps inner so every call is observed by m.
func Instrument(inner store.Client, m *StoreMetrics) *Client {
	return &Client{inner: inner, metrics: m}
}

// GetByKey observes store.Client.GetByKey.
func (c *Client) GetByKey(ctx context.Context, table store.Table, key store.PK) (store.Item, error) {
	start := time.Now()
	item, err := c.inner.GetByKey(ctx, table, key)
	c.metrics.Observe(table.Name, "GetByKey", start, err)
	return item, err
}

// Put observes store.Client.Put.
func (c *Client) Put(ctx context.Context, table store.Table, item store.Item) error {
	start := time.Now()
	err := c.inner.Put(ctx, table, item)
	c.metrics.Observe(table.Name, "Put", start, err)
	return err
}

// PutIfAbsent observes store.Client.PutIfAbsent. A taken key is counted as a conflict.
func (c *Client) PutIfAbsent(ctx context.Context, table store.Table, item store.Item) error {
	start := time.Now()
	err := c.inner.PutIfAbsent(ctx, table, item)
	c.metrics.Observe(table.Name, "PutIfAbsent", start, err)
	return err
}

// Delete observes store.Client.Delete.
func (c *Client) Delete(ctx context.Context, table store.Table, item store.Item) error {
	start := time.Now()
	err := c.inner.Delete(ctx, table, item)
	c.metrics.Observe(table.Name, "Delete", start, err)
	return err
}

// ScanAll observes store.Client.ScanAll.
func (c *Client) ScanAll(ctx context.Context, table store.Table) ([]store.Item, error) {
	start := time.Now()
	items, err := c.inner.ScanAll(ctx, table)
	c.metrics.Observe(table.Name, "ScanAll", start, err)
	return items, err
}

// QueryByIndex observes store.Client.QueryByIndex.
func (c *Client) QueryByIndex(ctx context.Context, table store.Table, q store.IndexQuery) ([]store.Item, error) {
	start := time.Now()
	items, err := c.inner.QueryByIndex(ctx, table, q)
	c.metrics.Observe(table.Name, "QueryByIndex", start, err)
	return items, err
}
