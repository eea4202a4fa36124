package ports

import (
	"context"
	"time"

	"shipment-plan-service/internal/domain"
)

// Port: a boundary for reading the raw operational dataset. The dataset
// is finite and replayable; records are immutable.
type RecordRepository interface {
	// Retrieve all current records.
	ListRecords(ctx context.Context) ([]domain.OperationalRecord, error)
	// Retrieve all current records for one route.
	ListRouteRecords(ctx context.Context, key domain.RouteKey) ([]domain.OperationalRecord, error)
	// Retrieve records for one route observed at or before asOf.
	ListRouteRecordsAsOf(ctx context.Context, key domain.RouteKey, asOf time.Time) ([]domain.OperationalRecord, error)
}
