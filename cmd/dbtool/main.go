package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"shipment-plan-service/internal/config"
	"shipment-plan-service/internal/platform/db"
)

// dbtool provisions a shared Postgres dataset for deployments that
// outgrow the server's embedded SQLite store. Schema and seed format
// match the embedded store so seed files are interchangeable.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	conn, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	seedPath := config.Get("SEED_PATH", "data/seeds/records.json")
	if err := initAndSeed(conn, seedPath); err != nil {
		log.Fatal(err)
	}
}

func initAndSeed(conn *sql.DB, seedPath string) error {
	log.Println("Initializing database schema...")
	if err := initSchema(conn); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}
	log.Println("Schema ready.")

	log.Println("Seeding database...")
	if err := seedFromJSON(conn, seedPath); err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	log.Println("Seeding complete.")

	return nil
}

func initSchema(conn *sql.DB) error {
	statements := []string{
		`
		CREATE TABLE IF NOT EXISTS operational_records (
			id BIGSERIAL PRIMARY KEY,
			supply TEXT NOT NULL,
			demand TEXT NOT NULL,
			distance_km DOUBLE PRECISION NOT NULL,
			fuel_price_per_liter DOUBLE PRECISION NOT NULL,
			vehicle_capacity_tons DOUBLE PRECISION NOT NULL,
			base_rate_per_km DOUBLE PRECISION NOT NULL,
			travel_time_hours DOUBLE PRECISION NOT NULL,
			road_condition_factor DOUBLE PRECISION NOT NULL,
			seasonal_factor DOUBLE PRECISION NOT NULL,
			priority_multiplier DOUBLE PRECISION NOT NULL,
			observed_at TIMESTAMPTZ NOT NULL
		);
		`,
		`
		CREATE INDEX IF NOT EXISTS idx_operational_records_route_observed
		ON operational_records(supply, demand, observed_at);
		`,
	}

	tx, err := conn.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	return tx.Commit()
}

type recordSeed struct {
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

func seedFromJSON(conn *sql.DB, jsonPath string) error {
	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed records: read %q: %w", jsonPath, err)
	}

	var data []recordSeed
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("seed records: parse json: %w", err)
	}

	tx, err := conn.Begin()
	if err != nil {
		return fmt.Errorf("seed records: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM operational_records;`); err != nil {
		return fmt.Errorf("seed records: clear table: %w", err)
	}

	stmt, err := tx.Prepare(`
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
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`)
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
			observedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("seed records: insert item %d (%s->%s): %w", i, r.Supply, r.Demand, err)
		}
	}

	return tx.Commit()
}
