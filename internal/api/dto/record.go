package dto

import "time"

type RecordResponse struct {
	Supply              string    `json:"supply"`
	Demand              string    `json:"demand"`
	DistanceKm          float64   `json:"distance_km"`
	FuelPricePerLiter   float64   `json:"fuel_price_per_liter"`
	VehicleCapacityTons float64   `json:"vehicle_capacity_tons"`
	BaseRatePerKm       float64   `json:"base_rate_per_km"`
	TravelTimeHours     float64   `json:"travel_time_hours"`
	RoadConditionFactor float64   `json:"road_condition_factor"`
	SeasonalFactor      float64   `json:"seasonal_factor"`
	PriorityMultiplier  float64   `json:"priority_multiplier"`
	ObservedAt          time.Time `json:"observed_at"`
}

type ListRecordsResponse struct {
	Records []RecordResponse `json:"records"`
}
