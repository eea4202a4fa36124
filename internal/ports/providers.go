package ports

import (
	"context"
	"time"

	"shipment-plan-service/internal/domain"
)

// Port: the latest aggregated cost cell per route. A nil cell with a nil
// error means the route has never been observed.
type AggregatesProvider interface {
	GetCostCell(ctx context.Context, key domain.RouteKey) (*domain.CostCell, error)
}

// Port: point-in-time aggregates. Implementations must return the
// aggregate in effect at or before asOf, never a future-looking value.
// A nil cell means the route had no observations at that time.
type SnapshotProvider interface {
	GetCostCellAsOf(ctx context.Context, key domain.RouteKey, asOf time.Time) (*domain.CostCell, error)
}
