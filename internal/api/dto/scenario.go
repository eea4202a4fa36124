package dto

import "time"

// ScenarioRequest describes one optimization scenario. Capacities and
// demands are merged over the server's constraints template, so a
// request may override only the nodes it cares about.
//
// CostOverrides keys use the "<supply>-><demand>" route notation, the
// same notation Shipments uses in the response.
type ScenarioRequest struct {
	ScenarioName       string             `json:"scenario_name"`
	Capacities         map[string]float64 `json:"capacities"`
	Demands            map[string]float64 `json:"demands"`
	CostOverrides      map[string]float64 `json:"cost_overrides"`
	UseAggregateSource *bool              `json:"use_aggregate_source"`
	FeatureTimestamp   *time.Time         `json:"feature_timestamp"`
}

type OptimizeRequest struct {
	Scenarios []ScenarioRequest `json:"scenarios"`
}

type ScenarioResult struct {
	ScenarioName     string             `json:"scenario_name"`
	Feasible         bool               `json:"feasible"`
	Unresolvable     bool               `json:"unresolvable"`
	MissingRoutes    []string           `json:"missing_routes,omitempty"`
	OptimalCost      *float64           `json:"optimal_cost"`
	Shipments        map[string]float64 `json:"shipments,omitempty"`
	Utilization      map[string]float64 `json:"utilization,omitempty"`
	CostMatrixSource string             `json:"cost_matrix_source,omitempty"`
	Error            string             `json:"error,omitempty"`
}

type OptimizeResponse struct {
	Results []ScenarioResult `json:"results"`
}
