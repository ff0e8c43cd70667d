package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// lowStockAlertTTL caps how long a dedup key lives; a product stays muted
// for that window after an alert fires.
const lowStockAlertTTL = time.Hour

// LowStockWorker turns low-stock jobs into structured alerts. Alerts are
// deduplicated per product via a short-lived Redis key so a busy service
// does not emit one alert per order.
type LowStockWorker struct {
	rdb *redis.Client
}

func NewLowStockWorker(rdb *redis.Client) *LowStockWorker {
	return &LowStockWorker{rdb: rdb}
}

func (w *LowStockWorker) Handle(ctx context.Context, payload json.RawMessage) error {
	var p LowStockPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return err
	}

	dedupKey := "alerted:lowstock:" + p.ProductID
	set, err := w.rdb.SetNX(ctx, dedupKey, "1", lowStockAlertTTL).Result()
	if err == nil && !set {
		return nil // already alerted within the window
	}

	log.Warn().
		Str("product_id", p.ProductID).
		Str("organization_id", p.OrganizationID).
		Str("available", p.Available).
		Str("threshold", p.Threshold).
		Msg("low stock alert")
	return nil
}
