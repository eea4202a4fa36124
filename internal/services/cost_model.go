package services

import (
	"errors"
	"fmt"
	"math"

	"shipment-plan-service/internal/domain"
)

// CostModel selects the mathematical model used to derive a unit cost
// from one operational record. Adding a model means adding a constant
// and its pure function here, not a new type hierarchy.
type CostModel string

const (
	// ModelTime prices a route purely on travel time.
	ModelTime CostModel = "time"
	// ModelComposite decomposes the cost into distance, fuel and time
	// components before scaling. This is the default model.
	ModelComposite CostModel = "composite"
)

// Fixed constants of the reference cost model. They are properties of
// the engine, not of individual records.
const (
	hourlyRate         = 25.0
	baseFuelEfficiency = 8.0
	referenceCapacity  = 10.0
	timeWeight         = 0.3
)

// ErrInvalidRecord marks a record that cannot yield a finite unit cost
// (zero or negative capacity or road factor, non-finite field). Such a
// record is never coerced to a default cost.
var ErrInvalidRecord = errors.New("invalid operational record")

// CostComponents is the additive decomposition of a composite unit cost
// before capacity, seasonal and priority scaling.
type CostComponents struct {
	DistanceCost float64
	FuelCost     float64
	TimeCost     float64
}

// ComputeUnitCost derives the scalar unit cost of one record under the
// selected model. Pure: no side effects, no defaulting of bad input.
func ComputeUnitCost(rec domain.OperationalRecord, model CostModel) (float64, error) {
	cost, _, err := unitCost(rec, model)
	return cost, err
}

// unitCost returns the cost together with its composite component
// breakdown, which the aggregation layer averages into diagnostics.
func unitCost(rec domain.OperationalRecord, model CostModel) (float64, CostComponents, error) {
	if err := validateRecord(rec); err != nil {
		return 0, CostComponents{}, err
	}

	comp := CostComponents{
		DistanceCost: rec.DistanceKm * rec.BaseRatePerKm * rec.RoadConditionFactor,
		FuelCost:     rec.DistanceKm / effectiveFuelEfficiency(rec) * rec.FuelPricePerLiter,
		TimeCost:     rec.TravelTimeHours * hourlyRate * timeWeight,
	}

	var cost float64
	switch model {
	case ModelTime:
		cost = rec.TravelTimeHours * hourlyRate * rec.SeasonalFactor * rec.PriorityMultiplier
	case ModelComposite, "":
		capacityFactor := referenceCapacity / rec.VehicleCapacityTons
		cost = (comp.DistanceCost + comp.FuelCost + comp.TimeCost) *
			capacityFactor * rec.SeasonalFactor * rec.PriorityMultiplier
	default:
		return 0, CostComponents{}, fmt.Errorf("compute unit cost: unknown cost model %q", model)
	}

	if math.IsNaN(cost) || math.IsInf(cost, 0) {
		return 0, CostComponents{}, fmt.Errorf("compute unit cost: route %s->%s: non-finite result: %w",
			rec.Supply, rec.Demand, ErrInvalidRecord)
	}
	return cost, comp, nil
}

// effectiveFuelEfficiency scales the base efficiency by vehicle size and
// degrades it on poor roads. Positive whenever the record is valid.
func effectiveFuelEfficiency(rec domain.OperationalRecord) float64 {
	return baseFuelEfficiency * (rec.VehicleCapacityTons / referenceCapacity) * (1 / rec.RoadConditionFactor)
}

func validateRecord(rec domain.OperationalRecord) error {
	if rec.VehicleCapacityTons <= 0 {
		return fmt.Errorf("route %s->%s: vehicle capacity must be positive, got %v: %w",
			rec.Supply, rec.Demand, rec.VehicleCapacityTons, ErrInvalidRecord)
	}
	if rec.RoadConditionFactor <= 0 {
		return fmt.Errorf("route %s->%s: road condition factor must be positive, got %v: %w",
			rec.Supply, rec.Demand, rec.RoadConditionFactor, ErrInvalidRecord)
	}

	fields := []struct {
		name string
		v    float64
	}{
		{"distance_km", rec.DistanceKm},
		{"fuel_price_per_liter", rec.FuelPricePerLiter},
		{"vehicle_capacity_tons", rec.VehicleCapacityTons},
		{"base_rate_per_km", rec.BaseRatePerKm},
		{"travel_time_hours", rec.TravelTimeHours},
		{"road_condition_factor", rec.RoadConditionFactor},
		{"seasonal_factor", rec.SeasonalFactor},
		{"priority_multiplier", rec.PriorityMultiplier},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("route %s->%s: field %s is not finite: %w",
				rec.Supply, rec.Demand, f.name, ErrInvalidRecord)
		}
	}
	return nil
}
