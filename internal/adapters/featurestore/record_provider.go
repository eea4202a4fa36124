package featurestore

import (
	"context"
	"fmt"
	"time"

	"shipment-plan-service/internal/domain"
	"shipment-plan-service/internal/platform/obs"
	"shipment-plan-service/internal/ports"
	"shipment-plan-service/internal/services"
)

// RecordAggregatesProvider computes aggregated cost cells on demand from
// the raw operational dataset. It implements both the current-aggregates
// and the snapshot provider ports: point-in-time semantics come from
// restricting the aggregation basis to records observed at or before the
// requested marker.
//
// The provider itself holds no session or cache state; wrap it in a
// caching decorator if lookup latency matters.
type RecordAggregatesProvider struct {
	Repo      ports.RecordRepository
	Model     services.CostModel
	Statistic domain.Statistic
}

func NewRecordAggregatesProvider(repo ports.RecordRepository, model services.CostModel, statistic domain.Statistic) *RecordAggregatesProvider {
	return &RecordAggregatesProvider{Repo: repo, Model: model, Statistic: statistic}
}

// Return the latest aggregate for one route, or nil when the route has
// never been observed.
func (p *RecordAggregatesProvider) GetCostCell(ctx context.Context, key domain.RouteKey) (cell *domain.CostCell, err error) {
	defer obs.Time(ctx, "featurestore.GetCostCell")(&err)

	records, err := p.Repo.ListRouteRecords(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("get cost cell %s: %w", key, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	aggregated, err := services.Aggregate(records, p.Model, p.Statistic)
	if err != nil {
		return nil, fmt.Errorf("get cost cell %s: %w", key, err)
	}
	return &aggregated, nil
}

// Return the aggregate in effect at or before asOf, or nil when the
// route had no observations by then.
func (p *RecordAggregatesProvider) GetCostCellAsOf(ctx context.Context, key domain.RouteKey, asOf time.Time) (cell *domain.CostCell, err error) {
	defer obs.Time(ctx, "featurestore.GetCostCellAsOf")(&err)

	records, err := p.Repo.ListRouteRecordsAsOf(ctx, key, asOf)
	if err != nil {
		return nil, fmt.Errorf("get cost cell %s as of %s: %w", key, asOf.Format(time.RFC3339), err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	aggregated, err := services.Aggregate(records, p.Model, p.Statistic)
	if err != nil {
		return nil, fmt.Errorf("get cost cell %s as of %s: %w", key, asOf.Format(time.RFC3339), err)
	}
	aggregated.Source = domain.SourceSnapshot
	return &aggregated, nil
}
