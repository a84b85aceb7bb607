package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveCheckout("success", 20*time.Millisecond)
	m.ObserveCheckout("success", 30*time.Millisecond)
	m.ObserveCheckout("not_available", time.Millisecond)
	m.OrderNumberRetry()
	m.PublishFailed("OrderCreated")
	m.ObserveHTTP("POST", "/orders", 201, 5*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.checkouts.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.checkouts.WithLabelValues("not_available")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.numberRetries))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.publishFailures.WithLabelValues("OrderCreated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("POST", "/orders", "201")))

	n, err := testutil.GatherAndCount(reg, "checkout_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveCheckout("success", time.Second)
		m.OrderNumberRetry()
		m.PublishFailed("OrderCreated")
		m.ObserveHTTP("GET", "/orders", 200, time.Second)
		m.LowStock()
	})
}

// The inventory process serves its registry the same way.
func TestLowStockExposed(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.LowStock()
	m.LowStock()

	srv := httptest.NewServer(promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	defer srv.Close()

	res, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer res.Body.Close()
	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "listing_stock_low_total 2")
}
