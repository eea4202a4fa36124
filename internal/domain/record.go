package domain

import "time"

// A single observed shipment-cost sample for one supply->demand route.
// Records are produced by the external dataset and are immutable once
// recorded; the aggregation layer consumes them read-only.
type OperationalRecord struct {
	Supply              string
	Demand              string
	DistanceKm          float64
	FuelPricePerLiter   float64
	VehicleCapacityTons float64
	BaseRatePerKm       float64
	TravelTimeHours     float64
	RoadConditionFactor float64
	SeasonalFactor      float64
	PriorityMultiplier  float64
	ObservedAt          time.Time
}
