package domain

import (
	"fmt"
	"strings"
)

// RouteKey identifies one supply->demand pair.
type RouteKey struct {
	Supply string
	Demand string
}

func (k RouteKey) String() string { return k.Supply + "->" + k.Demand }

// ParseRouteKey inverts String. Node names must be non-empty and the
// separator must appear exactly once.
func ParseRouteKey(s string) (RouteKey, error) {
	supply, demand, ok := strings.Cut(s, "->")
	if !ok || supply == "" || demand == "" || strings.Contains(demand, "->") {
		return RouteKey{}, fmt.Errorf("malformed route key %q, want \"supply->demand\"", s)
	}
	return RouteKey{Supply: supply, Demand: demand}, nil
}

// CostSource tags the channel a resolved cost cell came from.
type CostSource string

const (
	SourceOverride         CostSource = "override"
	SourceSnapshot         CostSource = "snapshot"
	SourceCurrentAggregate CostSource = "current_aggregate"

	// SourceMixed is a matrix-level provenance value for matrices whose
	// cells resolved from different channels. Never set on a single cell.
	SourceMixed CostSource = "mixed"
)

// Statistic selects the reduction applied across repeated observations
// of the same route.
type Statistic string

const (
	StatMean   Statistic = "mean"
	StatMedian Statistic = "median"
	StatMin    Statistic = "min"
	StatMax    Statistic = "max"
)

// CellDiagnostics carries the per-group measures emitted alongside an
// aggregated cost cell: the average of each additive cost component,
// fuel price spread across the samples, and the group size.
type CellDiagnostics struct {
	AvgDistanceCost     float64
	AvgFuelCost         float64
	AvgTimeCost         float64
	FuelPriceVolatility float64
	MinFuelPrice        float64
	MaxFuelPrice        float64
	SampleCount         int
}

// CostCell is the resolved unit cost for one route at a point in time.
// Exactly one source per cell; Statistic and Diagnostics are populated
// only when the source is an aggregate.
type CostCell struct {
	Cost        float64
	Source      CostSource
	Statistic   Statistic
	Diagnostics *CellDiagnostics
}

// CostMatrix maps every route required by a scenario to its resolved cell.
type CostMatrix map[RouteKey]CostCell

// Provenance reports the matrix-level source: the single channel all
// cells share, or SourceMixed when cells disagree.
func (m CostMatrix) Provenance() CostSource {
	var src CostSource
	for _, cell := range m {
		if src == "" {
			src = cell.Source
			continue
		}
		if cell.Source != src {
			return SourceMixed
		}
	}
	return src
}
