package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipment-plan-service/internal/adapters/featurestore"
	"shipment-plan-service/internal/domain"
	"shipment-plan-service/internal/services"
)

var (
	routeA1 = domain.RouteKey{Supply: "warehouse_a", Demand: "customer_1"}
	routeA2 = domain.RouteKey{Supply: "warehouse_a", Demand: "customer_2"}
)

func twoRouteScenario() *domain.Scenario {
	return &domain.Scenario{
		Name:       "base",
		Capacities: map[string]float64{"warehouse_a": 100},
		Demands:    map[string]float64{"customer_1": 70, "customer_2": 60},
	}
}

func TestResolveOverrideWinsWhenAggregatesDisabled(t *testing.T) {
	// The provider deliberately disagrees with the override; the override
	// must win regardless of what the provider returns.
	store := &featurestore.MockFeatureStore{
		Current: map[domain.RouteKey]domain.CostCell{
			routeA1: {Cost: 99, Source: domain.SourceCurrentAggregate},
			routeA2: {Cost: 12, Source: domain.SourceCurrentAggregate},
		},
	}

	sc := twoRouteScenario()
	sc.UseAggregateSource = false
	sc.Overrides = map[domain.RouteKey]float64{routeA1: 10}

	matrix, err := services.ResolveCostMatrix(context.Background(), sc, store, store)
	require.NoError(t, err)

	assert.InDelta(t, 10.0, matrix[routeA1].Cost, 1e-12)
	assert.Equal(t, domain.SourceOverride, matrix[routeA1].Source)

	// The uncovered cell falls through to current aggregates.
	assert.InDelta(t, 12.0, matrix[routeA2].Cost, 1e-12)
	assert.Equal(t, domain.SourceCurrentAggregate, matrix[routeA2].Source)

	assert.Equal(t, domain.SourceMixed, matrix.Provenance())
}

func TestResolveIgnoresOverridesWhenAggregatesEnabled(t *testing.T) {
	store := &featurestore.MockFeatureStore{
		Current: map[domain.RouteKey]domain.CostCell{
			routeA1: {Cost: 99, Source: domain.SourceCurrentAggregate},
			routeA2: {Cost: 12, Source: domain.SourceCurrentAggregate},
		},
	}

	sc := twoRouteScenario()
	sc.UseAggregateSource = true
	sc.Overrides = map[domain.RouteKey]float64{routeA1: 10}

	matrix, err := services.ResolveCostMatrix(context.Background(), sc, store, store)
	require.NoError(t, err)
	assert.InDelta(t, 99.0, matrix[routeA1].Cost, 1e-12)
	assert.Equal(t, domain.SourceCurrentAggregate, matrix.Provenance())
}

func TestResolveSnapshotIsPointInTime(t *testing.T) {
	day1 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	day3 := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)

	store := &featurestore.MockFeatureStore{
		Current: map[domain.RouteKey]domain.CostCell{
			routeA1: {Cost: 50, Source: domain.SourceCurrentAggregate},
			routeA2: {Cost: 60, Source: domain.SourceCurrentAggregate},
		},
		History: map[domain.RouteKey][]featurestore.SnapshotEntry{
			routeA1: {
				{At: day1, Cell: domain.CostCell{Cost: 40}},
				{At: day3, Cell: domain.CostCell{Cost: 45}},
			},
			routeA2: {
				{At: day1, Cell: domain.CostCell{Cost: 55}},
			},
		},
	}

	asOf := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	sc := twoRouteScenario()
	sc.UseAggregateSource = true
	sc.AsOf = &asOf

	matrix, err := services.ResolveCostMatrix(context.Background(), sc, store, store)
	require.NoError(t, err)

	// The day-3 value postdates the marker and must not leak in.
	assert.InDelta(t, 40.0, matrix[routeA1].Cost, 1e-12)
	assert.InDelta(t, 55.0, matrix[routeA2].Cost, 1e-12)
	assert.Equal(t, domain.SourceSnapshot, matrix.Provenance())
}

func TestResolveSnapshotMissDoesNotFallThroughToCurrent(t *testing.T) {
	day5 := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)

	// Current data exists for both routes, but at the requested marker
	// customer_2 had never been observed.
	store := &featurestore.MockFeatureStore{
		Current: map[domain.RouteKey]domain.CostCell{
			routeA1: {Cost: 50, Source: domain.SourceCurrentAggregate},
			routeA2: {Cost: 60, Source: domain.SourceCurrentAggregate},
		},
		History: map[domain.RouteKey][]featurestore.SnapshotEntry{
			routeA1: {{At: day5, Cell: domain.CostCell{Cost: 40}}},
			routeA2: {{At: day5.Add(48 * time.Hour), Cell: domain.CostCell{Cost: 55}}},
		},
	}

	asOf := day5.Add(24 * time.Hour)
	sc := twoRouteScenario()
	sc.UseAggregateSource = true
	sc.AsOf = &asOf

	_, err := services.ResolveCostMatrix(context.Background(), sc, store, store)
	require.Error(t, err)

	var unresolvable *services.UnresolvableError
	require.True(t, errors.As(err, &unresolvable))
	assert.Equal(t, "base", unresolvable.Scenario)
	assert.Equal(t, []domain.RouteKey{routeA2}, unresolvable.Missing)
}

func TestResolveUnresolvableListsAllMissingRoutes(t *testing.T) {
	store := &featurestore.MockFeatureStore{
		Current: map[domain.RouteKey]domain.CostCell{},
	}

	sc := twoRouteScenario()
	sc.UseAggregateSource = true

	_, err := services.ResolveCostMatrix(context.Background(), sc, store, store)
	var unresolvable *services.UnresolvableError
	require.True(t, errors.As(err, &unresolvable))
	assert.ElementsMatch(t, []domain.RouteKey{routeA1, routeA2}, unresolvable.Missing)
}

func TestResolveProviderErrorIsNotUnresolvable(t *testing.T) {
	providerErr := errors.New("feature store unreachable")
	store := &featurestore.MockFeatureStore{
		Current: map[domain.RouteKey]domain.CostCell{
			routeA2: {Cost: 12, Source: domain.SourceCurrentAggregate},
		},
		Errs: map[domain.RouteKey]error{routeA1: providerErr},
	}

	sc := twoRouteScenario()
	sc.UseAggregateSource = true

	_, err := services.ResolveCostMatrix(context.Background(), sc, store, store)
	require.Error(t, err)

	var unresolvable *services.UnresolvableError
	assert.False(t, errors.As(err, &unresolvable))
	assert.True(t, errors.Is(err, providerErr))
}
