package redisx

import "time"

const (
	// Checkout replay: idem:checkout:{customer_id}:{idempotency_key} -> order_id
	KeyIdemCheckout = "idem:checkout:%s:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"

	// One low-stock alert per listing per window: stock_low:{provider_set_id}
	KeyStockLow = "stock_low:%s"
)

var (
	TTLIdempotency = 24 * time.Hour
	TTLDedup       = 48 * time.Hour
	TTLStockLow    = time.Hour
)
