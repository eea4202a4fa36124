package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"shipment-plan-service/internal/api/dto"
	"shipment-plan-service/internal/config"
	"shipment-plan-service/internal/domain"
	"shipment-plan-service/internal/ports"
	"shipment-plan-service/internal/services"
)

const maxScenariosPerRequest = 50

// OptimizeHandler accepts a batch of scenarios and returns one result
// per scenario in input order. Per-scenario failures land in the result
// item, never in the HTTP status; only malformed requests are rejected.
type OptimizeHandler struct {
	Current   ports.AggregatesProvider
	Snapshots ports.SnapshotProvider
	Defaults  config.Constraints
}

func (h *OptimizeHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.OptimizeRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	if len(req.Scenarios) == 0 {
		writeError(w, r, http.StatusBadRequest, "scenarios is required")
		return
	}
	if len(req.Scenarios) > maxScenariosPerRequest {
		writeError(w, r, http.StatusBadRequest,
			fmt.Sprintf("at most %d scenarios per request", maxScenariosPerRequest))
		return
	}

	scenarios := make([]*domain.Scenario, 0, len(req.Scenarios))
	for i, item := range req.Scenarios {
		sc, err := h.buildScenario(item)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, fmt.Sprintf("scenario %d: %v", i, err))
			return
		}
		scenarios = append(scenarios, sc)
	}

	items := services.RunBatch(r.Context(), scenarios, h.Current, h.Snapshots)

	res := dto.OptimizeResponse{Results: make([]dto.ScenarioResult, 0, len(items))}
	for _, item := range items {
		res.Results = append(res.Results, toScenarioResult(item))
	}

	writeJSON(w, r, http.StatusOK, res)
}

// buildScenario merges a request item over the constraints template.
// Aggregates are the default source; overrides take effect only when
// the request opts out of them explicitly.
func (h *OptimizeHandler) buildScenario(item dto.ScenarioRequest) (*domain.Scenario, error) {
	name := strings.TrimSpace(item.ScenarioName)
	if name == "" {
		return nil, fmt.Errorf("scenario_name is required")
	}

	sc := &domain.Scenario{
		Name:               name,
		Capacities:         mergeNodes(h.Defaults.Capacities, item.Capacities),
		Demands:            mergeNodes(h.Defaults.Demands, item.Demands),
		UseAggregateSource: true,
		AsOf:               item.FeatureTimestamp,
	}
	if item.UseAggregateSource != nil {
		sc.UseAggregateSource = *item.UseAggregateSource
	}

	if len(item.CostOverrides) > 0 {
		sc.Overrides = make(map[domain.RouteKey]float64, len(item.CostOverrides))
		for raw, cost := range item.CostOverrides {
			key, err := domain.ParseRouteKey(raw)
			if err != nil {
				return nil, fmt.Errorf("cost_overrides: %w", err)
			}
			sc.Overrides[key] = cost
		}
	}

	return sc, nil
}

func mergeNodes(defaults, overrides map[string]float64) map[string]float64 {
	merged := make(map[string]float64, len(defaults)+len(overrides))
	for node, v := range defaults {
		merged[node] = v
	}
	for node, v := range overrides {
		merged[node] = v
	}
	return merged
}

func toScenarioResult(item services.BatchItem) dto.ScenarioResult {
	res := dto.ScenarioResult{ScenarioName: item.ScenarioName}

	switch {
	case item.Unresolvable != nil:
		res.Unresolvable = true
		res.Error = item.Unresolvable.Error()
		for _, key := range item.Unresolvable.Missing {
			res.MissingRoutes = append(res.MissingRoutes, key.String())
		}
	case item.Err != nil:
		log.Printf("scenario failed name=%s err=%v", item.ScenarioName, item.Err)
		res.Error = item.Err.Error()
	case item.Solution != nil:
		sol := item.Solution
		res.Feasible = sol.Feasible
		res.Utilization = sol.Utilization
		res.CostMatrixSource = string(sol.Source)
		if sol.Feasible {
			cost := sol.TotalCost
			res.OptimalCost = &cost
			res.Shipments = make(map[string]float64, len(sol.Flows))
			for key, units := range sol.Flows {
				res.Shipments[key.String()] = units
			}
		} else {
			res.Error = "total capacity is insufficient for total demand"
		}
	}

	return res
}
