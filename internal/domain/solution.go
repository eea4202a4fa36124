package domain

// Solution is the output of solving one scenario. It is computed once
// and never mutated afterwards.
//
// TotalCost is meaningful only when Feasible is true; an infeasible
// solution carries an empty flow matrix and zero utilization.
type Solution struct {
	Feasible    bool
	TotalCost   float64
	Flows       map[RouteKey]float64
	Utilization map[string]float64
	Source      CostSource
}
