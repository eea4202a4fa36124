package domain

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// Scenario is one optimization request: supply capacities, demand
// requirements, and the knobs controlling cost-matrix resolution.
// Scenarios are independent and share no mutable state.
type Scenario struct {
	Name       string
	Capacities map[string]float64
	Demands    map[string]float64

	// Overrides are caller-supplied per-route unit costs. They are
	// honored only when UseAggregateSource is false, so a single solve
	// never mixes stale overrides with live aggregates.
	Overrides map[RouteKey]float64

	// UseAggregateSource permits aggregate-sourced cells (snapshot or
	// current) and disables Overrides.
	UseAggregateSource bool

	// AsOf, when set, routes aggregate lookups through the point-in-time
	// snapshot channel instead of current aggregates.
	AsOf *time.Time
}

// SupplyNodes returns the supply node names in deterministic order.
func (s *Scenario) SupplyNodes() []string { return sortedKeys(s.Capacities) }

// DemandNodes returns the demand node names in deterministic order.
func (s *Scenario) DemandNodes() []string { return sortedKeys(s.Demands) }

// Routes enumerates every supply x demand pair the scenario requires,
// in deterministic order.
func (s *Scenario) Routes() []RouteKey {
	supplies := s.SupplyNodes()
	demands := s.DemandNodes()

	routes := make([]RouteKey, 0, len(supplies)*len(demands))
	for _, sup := range supplies {
		for _, dem := range demands {
			routes = append(routes, RouteKey{Supply: sup, Demand: dem})
		}
	}
	return routes
}

// Validate rejects malformed scenarios before any resolution work.
// A validation failure is scoped to this scenario and must not block
// siblings in a batch.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return errors.New("validate scenario: name must be non-empty")
	}
	if len(s.Capacities) == 0 {
		return fmt.Errorf("validate scenario %q: at least one supply node is required", s.Name)
	}
	if len(s.Demands) == 0 {
		return fmt.Errorf("validate scenario %q: at least one demand node is required", s.Name)
	}

	for node, c := range s.Capacities {
		if c < 0 || math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("validate scenario %q: capacity of %q must be a finite nonnegative number, got %v", s.Name, node, c)
		}
	}
	for node, d := range s.Demands {
		if d < 0 || math.IsNaN(d) || math.IsInf(d, 0) {
			return fmt.Errorf("validate scenario %q: demand of %q must be a finite nonnegative number, got %v", s.Name, node, d)
		}
	}

	for key, c := range s.Overrides {
		if c < 0 || math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("validate scenario %q: override cost for %s must be a finite nonnegative number, got %v", s.Name, key, c)
		}
		if _, ok := s.Capacities[key.Supply]; !ok {
			return fmt.Errorf("validate scenario %q: override %s references unknown supply node", s.Name, key)
		}
		if _, ok := s.Demands[key.Demand]; !ok {
			return fmt.Errorf("validate scenario %q: override %s references unknown demand node", s.Name, key)
		}
	}

	return nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
