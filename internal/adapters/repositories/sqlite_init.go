package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"
)

// Initialize the SQLite database schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createRecordsQuery := `
	CREATE TABLE IF NOT EXISTS operational_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		supply TEXT NOT NULL,
		demand TEXT NOT NULL,
		distance_km REAL NOT NULL,
		fuel_price_per_liter REAL NOT NULL,
		vehicle_capacity_tons REAL NOT NULL,
		base_rate_per_km REAL NOT NULL,
		travel_time_hours REAL NOT NULL,
		road_condition_factor REAL NOT NULL,
		seasonal_factor REAL NOT NULL,
		priority_multiplier REAL NOT NULL,
		observed_at TEXT NOT NULL
	);
	`

	// Point-in-time lookups filter by route then timestamp.
	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_operational_records_route_observed
	ON operational_records(supply, demand, observed_at);
	`

	statements := []string{
		createRecordsQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type RecordSeed struct {
	Supply              string  `json:"supply"`
	Demand              string  `json:"demand"`
	DistanceKm          float64 `json:"distance_km"`
	FuelPricePerLiter   float64 `json:"fuel_price_per_liter"`
	VehicleCapacityTons float64 `json:"vehicle_capacity_tons"`
	BaseRatePerKm       float64 `json:"base_rate_per_km"`
	TravelTimeHours     float64 `json:"travel_time_hours"`
	RoadConditionFactor float64 `json:"road_condition_factor"`
	SeasonalFactor      float64 `json:"seasonal_factor"`
	PriorityMultiplier  float64 `json:"priority_multiplier"`
	ObservedAt          string  `json:"observed_at"`
}

// Populate the database with operational records from a JSON file.
// Seeding replaces the dataset so repeated local runs stay deterministic.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed records: read %q: %w", jsonPath, err)
	}

	var data []RecordSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed records: parse json: %w", err)
	}

	for i, item := range data {
		if err := validateSeed(item); err != nil {
			return fmt.Errorf("seed records: item at index %d: %w", i, err)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed records: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM operational_records;`); err != nil {
		return fmt.Errorf("seed records: clear table: %w", err)
	}

	query := `
	INSERT INTO operational_records (
		supply,
		demand,
		distance_km,
		fuel_price_per_liter,
		vehicle_capacity_tons,
		base_rate_per_km,
		travel_time_hours,
		road_condition_factor,
		seasonal_factor,
		priority_multiplier,
		observed_at
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("seed records: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range data {
		observedAt, err := time.Parse(time.RFC3339, r.ObservedAt)
		if err != nil {
			return fmt.Errorf("seed records: item at index %d: parse observed_at %q: %w", i, r.ObservedAt, err)
		}

		_, err = stmt.Exec(
			strings.TrimSpace(r.Supply),
			strings.TrimSpace(r.Demand),
			r.DistanceKm,
			r.FuelPricePerLiter,
			r.VehicleCapacityTons,
			r.BaseRatePerKm,
			r.TravelTimeHours,
			r.RoadConditionFactor,
			r.SeasonalFactor,
			r.PriorityMultiplier,
			observedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("seed records: insert item %d (%s->%s): %w", i, r.Supply, r.Demand, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed records: commit tx: %w", err)
	}

	return nil
}

func validateSeed(r RecordSeed) error {
	if strings.TrimSpace(r.Supply) == "" {
		return errors.New("supply cannot be empty")
	}
	if strings.TrimSpace(r.Demand) == "" {
		return errors.New("demand cannot be empty")
	}
	if r.VehicleCapacityTons <= 0 {
		return fmt.Errorf("vehicle_capacity_tons must be positive, got %v", r.VehicleCapacityTons)
	}
	if r.RoadConditionFactor <= 0 {
		return fmt.Errorf("road_condition_factor must be positive, got %v", r.RoadConditionFactor)
	}
	for name, v := range map[string]float64{
		"distance_km":          r.DistanceKm,
		"fuel_price_per_liter": r.FuelPricePerLiter,
		"base_rate_per_km":     r.BaseRatePerKm,
		"travel_time_hours":    r.TravelTimeHours,
		"seasonal_factor":      r.SeasonalFactor,
		"priority_multiplier":  r.PriorityMultiplier,
	} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s must be finite and nonnegative, got %v", name, v)
		}
	}
	return nil
}
