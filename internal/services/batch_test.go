package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipment-plan-service/internal/adapters/featurestore"
	"shipment-plan-service/internal/domain"
	"shipment-plan-service/internal/services"
)

func fullStore() *featurestore.MockFeatureStore {
	return &featurestore.MockFeatureStore{
		Current: map[domain.RouteKey]domain.CostCell{
			{Supply: "warehouse_a", Demand: "customer_1"}: {Cost: 10, Source: domain.SourceCurrentAggregate},
			{Supply: "warehouse_a", Demand: "customer_2"}: {Cost: 12, Source: domain.SourceCurrentAggregate},
			{Supply: "warehouse_b", Demand: "customer_1"}: {Cost: 15, Source: domain.SourceCurrentAggregate},
			{Supply: "warehouse_b", Demand: "customer_2"}: {Cost: 8, Source: domain.SourceCurrentAggregate},
		},
	}
}

func aggregateScenario(name string, capA, capB, dem1, dem2 float64) *domain.Scenario {
	return &domain.Scenario{
		Name:               name,
		Capacities:         map[string]float64{"warehouse_a": capA, "warehouse_b": capB},
		Demands:            map[string]float64{"customer_1": dem1, "customer_2": dem2},
		UseAggregateSource: true,
	}
}

func TestRunBatchIsolatesFailures(t *testing.T) {
	store := fullStore()

	unresolvable := aggregateScenario("new_route", 100, 80, 70, 60)
	unresolvable.Demands["customer_3"] = 10 // no data for this customer yet

	invalid := aggregateScenario("bad_input", 100, 80, 70, 60)
	invalid.Capacities["warehouse_a"] = -5

	scenarios := []*domain.Scenario{
		aggregateScenario("base_case", 100, 80, 70, 60),
		aggregateScenario("impossible_demand", 50, 40, 70, 60),
		unresolvable,
		invalid,
		aggregateScenario("reduced_capacity", 60, 70, 70, 60),
	}

	items := services.RunBatch(context.Background(), scenarios, store, store)
	require.Len(t, items, len(scenarios))

	// Input order is preserved regardless of completion order.
	for i, sc := range scenarios {
		assert.Equal(t, sc.Name, items[i].ScenarioName, "item %d out of order", i)
	}

	base := items[0]
	require.NotNil(t, base.Solution)
	require.True(t, base.Solution.Feasible)
	assert.InDelta(t, 1180.0, base.Solution.TotalCost, 1e-6)

	impossible := items[1]
	require.NotNil(t, impossible.Solution)
	assert.False(t, impossible.Solution.Feasible)

	require.NotNil(t, items[2].Unresolvable)
	assert.Nil(t, items[2].Solution)
	assert.Contains(t, items[2].Unresolvable.Error(), "customer_3")

	require.Error(t, items[3].Err)
	assert.Nil(t, items[3].Solution)

	// The sibling after the failures still solves correctly:
	// 60*10 + 10*15 + 60*8 = 1230.
	reduced := items[4]
	require.NotNil(t, reduced.Solution)
	require.True(t, reduced.Solution.Feasible)
	assert.InDelta(t, 1230.0, reduced.Solution.TotalCost, 1e-6)
}

func TestRunBatchProviderFaultScopedToScenario(t *testing.T) {
	// A corrupted record group surfaces as a provider error for one
	// route; only scenarios touching that route are affected.
	store := fullStore()
	store.Errs = map[domain.RouteKey]error{
		{Supply: "warehouse_b", Demand: "customer_1"}: errors.New("aggregate failed: invalid operational record"),
	}

	onlyA := &domain.Scenario{
		Name:               "only_warehouse_a",
		Capacities:         map[string]float64{"warehouse_a": 100},
		Demands:            map[string]float64{"customer_1": 70, "customer_2": 20},
		UseAggregateSource: true,
	}

	items := services.RunBatch(context.Background(), []*domain.Scenario{
		aggregateScenario("touches_bad_route", 100, 80, 70, 60),
		onlyA,
	}, store, store)

	require.Len(t, items, 2)
	require.Error(t, items[0].Err)

	require.NotNil(t, items[1].Solution)
	require.True(t, items[1].Solution.Feasible)
	assert.InDelta(t, 70*10+20*12, items[1].Solution.TotalCost, 1e-6)
}

func TestRunBatchOverrideScenario(t *testing.T) {
	store := fullStore()

	sc := aggregateScenario("override_case", 100, 80, 70, 60)
	sc.UseAggregateSource = false
	sc.Overrides = map[domain.RouteKey]float64{
		{Supply: "warehouse_a", Demand: "customer_1"}: 1,
		{Supply: "warehouse_a", Demand: "customer_2"}: 1,
	}

	items := services.RunBatch(context.Background(), []*domain.Scenario{sc}, store, store)
	require.Len(t, items, 1)
	sol := items[0].Solution
	require.NotNil(t, sol)
	require.True(t, sol.Feasible)

	// Cheap overrides saturate warehouse_a (70+30 units at cost 1); the
	// remaining 30 units of customer_2 ship from warehouse_b at the
	// aggregate cost of 8: 100*1 + 30*8 = 340.
	assert.InDelta(t, 340.0, sol.TotalCost, 1e-6)
	assert.Equal(t, domain.SourceMixed, sol.Source)
}

func TestRunBatchEmpty(t *testing.T) {
	items := services.RunBatch(context.Background(), nil, fullStore(), fullStore())
	assert.Empty(t, items)
}
