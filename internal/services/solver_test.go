package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipment-plan-service/internal/domain"
	"shipment-plan-service/internal/services"
)

func costMatrix2x2(a1, a2, b1, b2 float64) domain.CostMatrix {
	return domain.CostMatrix{
		{Supply: "warehouse_a", Demand: "customer_1"}: {Cost: a1, Source: domain.SourceCurrentAggregate},
		{Supply: "warehouse_a", Demand: "customer_2"}: {Cost: a2, Source: domain.SourceCurrentAggregate},
		{Supply: "warehouse_b", Demand: "customer_1"}: {Cost: b1, Source: domain.SourceCurrentAggregate},
		{Supply: "warehouse_b", Demand: "customer_2"}: {Cost: b2, Source: domain.SourceCurrentAggregate},
	}
}

// assertFlowsRespectConstraints checks every feasible-solution invariant:
// nonnegative flows, capacity ceilings, demand floors.
func assertFlowsRespectConstraints(t *testing.T, sol *domain.Solution, capacities, demands map[string]float64) {
	t.Helper()

	sent := map[string]float64{}
	received := map[string]float64{}
	for key, f := range sol.Flows {
		assert.GreaterOrEqual(t, f, 0.0, "flow %s is negative", key)
		sent[key.Supply] += f
		received[key.Demand] += f
	}
	for node, cap := range capacities {
		assert.LessOrEqual(t, sent[node], cap+1e-6, "capacity of %s exceeded", node)
	}
	for node, dem := range demands {
		assert.GreaterOrEqual(t, received[node], dem-1e-6, "demand of %s unmet", node)
	}
}

func TestSolveTransportationOptimal(t *testing.T) {
	capacities := map[string]float64{"warehouse_a": 100, "warehouse_b": 80}
	demands := map[string]float64{"customer_1": 70, "customer_2": 60}
	matrix := costMatrix2x2(10, 12, 15, 8)

	sol, err := services.SolveTransportation(capacities, demands, matrix)
	require.NoError(t, err)
	require.True(t, sol.Feasible)

	// Checked against all extreme points of the 2x2 polytope:
	// a->1 = 70, b->2 = 60 is uniquely optimal.
	assert.InDelta(t, 1180.0, sol.TotalCost, 1e-6)
	assert.InDelta(t, 70.0, sol.Flows[domain.RouteKey{Supply: "warehouse_a", Demand: "customer_1"}], 1e-6)
	assert.InDelta(t, 0.0, sol.Flows[domain.RouteKey{Supply: "warehouse_a", Demand: "customer_2"}], 1e-6)
	assert.InDelta(t, 0.0, sol.Flows[domain.RouteKey{Supply: "warehouse_b", Demand: "customer_1"}], 1e-6)
	assert.InDelta(t, 60.0, sol.Flows[domain.RouteKey{Supply: "warehouse_b", Demand: "customer_2"}], 1e-6)

	assert.InDelta(t, 0.70, sol.Utilization["warehouse_a"], 1e-6)
	assert.InDelta(t, 0.75, sol.Utilization["warehouse_b"], 1e-6)
	assert.Equal(t, domain.SourceCurrentAggregate, sol.Source)

	assertFlowsRespectConstraints(t, sol, capacities, demands)
}

func TestSolveTransportationSplitShipment(t *testing.T) {
	// warehouse_a can no longer cover customer_1 alone; the optimum
	// tops up from warehouse_b: 50*10 + 20*15 + 60*8 = 1280.
	capacities := map[string]float64{"warehouse_a": 50, "warehouse_b": 100}
	demands := map[string]float64{"customer_1": 70, "customer_2": 60}
	matrix := costMatrix2x2(10, 12, 15, 8)

	sol, err := services.SolveTransportation(capacities, demands, matrix)
	require.NoError(t, err)
	require.True(t, sol.Feasible)

	assert.InDelta(t, 1280.0, sol.TotalCost, 1e-6)
	assert.InDelta(t, 50.0, sol.Flows[domain.RouteKey{Supply: "warehouse_a", Demand: "customer_1"}], 1e-6)
	assert.InDelta(t, 20.0, sol.Flows[domain.RouteKey{Supply: "warehouse_b", Demand: "customer_1"}], 1e-6)
	assert.InDelta(t, 60.0, sol.Flows[domain.RouteKey{Supply: "warehouse_b", Demand: "customer_2"}], 1e-6)

	assertFlowsRespectConstraints(t, sol, capacities, demands)
}

func TestSolveTransportationInfeasible(t *testing.T) {
	// Total capacity 90 < total demand 130.
	capacities := map[string]float64{"warehouse_a": 50, "warehouse_b": 40}
	demands := map[string]float64{"customer_1": 70, "customer_2": 60}

	sol, err := services.SolveTransportation(capacities, demands, costMatrix2x2(10, 12, 15, 8))
	require.NoError(t, err)

	assert.False(t, sol.Feasible)
	assert.Empty(t, sol.Flows)
	assert.Zero(t, sol.Utilization["warehouse_a"])
	assert.Zero(t, sol.Utilization["warehouse_b"])
}

func TestSolveTransportationDegenerateCosts(t *testing.T) {
	// All routes priced identically: many optimal vertices exist, any is
	// acceptable, but the total cost is pinned.
	capacities := map[string]float64{"warehouse_a": 100, "warehouse_b": 80}
	demands := map[string]float64{"customer_1": 70, "customer_2": 60}

	sol, err := services.SolveTransportation(capacities, demands, costMatrix2x2(5, 5, 5, 5))
	require.NoError(t, err)
	require.True(t, sol.Feasible)
	assert.InDelta(t, 650.0, sol.TotalCost, 1e-6)
	assertFlowsRespectConstraints(t, sol, capacities, demands)
}

func TestSolveTransportationZeroCapacityUtilization(t *testing.T) {
	capacities := map[string]float64{"warehouse_a": 0, "warehouse_b": 130}
	demands := map[string]float64{"customer_1": 70, "customer_2": 60}

	sol, err := services.SolveTransportation(capacities, demands, costMatrix2x2(10, 12, 15, 8))
	require.NoError(t, err)
	require.True(t, sol.Feasible)

	// Division fault must not occur; idle node reports zero utilization.
	assert.Zero(t, sol.Utilization["warehouse_a"])
	assert.InDelta(t, 1.0, sol.Utilization["warehouse_b"], 1e-6)
	assert.InDelta(t, 70*15+60*8, sol.TotalCost, 1e-6)
}

func TestSolveTransportationValidation(t *testing.T) {
	good := costMatrix2x2(10, 12, 15, 8)

	t.Run("negative demand", func(t *testing.T) {
		_, err := services.SolveTransportation(
			map[string]float64{"warehouse_a": 100, "warehouse_b": 80},
			map[string]float64{"customer_1": -70, "customer_2": 60},
			good,
		)
		require.Error(t, err)
	})

	t.Run("missing matrix cell", func(t *testing.T) {
		partial := costMatrix2x2(10, 12, 15, 8)
		delete(partial, domain.RouteKey{Supply: "warehouse_b", Demand: "customer_2"})
		_, err := services.SolveTransportation(
			map[string]float64{"warehouse_a": 100, "warehouse_b": 80},
			map[string]float64{"customer_1": 70, "customer_2": 60},
			partial,
		)
		require.Error(t, err)
	})

	t.Run("negative cost", func(t *testing.T) {
		_, err := services.SolveTransportation(
			map[string]float64{"warehouse_a": 100, "warehouse_b": 80},
			map[string]float64{"customer_1": 70, "customer_2": 60},
			costMatrix2x2(10, -1, 15, 8),
		)
		require.Error(t, err)
	})

	t.Run("no supply nodes", func(t *testing.T) {
		_, err := services.SolveTransportation(nil, map[string]float64{"customer_1": 70}, good)
		require.Error(t, err)
	})
}
