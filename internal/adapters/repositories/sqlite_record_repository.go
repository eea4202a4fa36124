package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shipment-plan-service/internal/domain"
	"shipment-plan-service/internal/platform/obs"
)

// SQLite-backed implementation of the RecordRepository port.
type SqliteRecordRepository struct{ DB *sql.DB }

func NewSqliteRecordRepository(db *sql.DB) *SqliteRecordRepository {
	return &SqliteRecordRepository{DB: db}
}

const recordColumns = `
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
`

// Return all operational records in the dataset.
func (s *SqliteRecordRepository) ListRecords(ctx context.Context) (recs []domain.OperationalRecord, err error) {
	defer obs.Time(ctx, "records.ListRecords")(&err)

	if s.DB == nil {
		return nil, errors.New("sqlite record repository: DB is nil")
	}

	query := `SELECT ` + recordColumns + ` FROM operational_records ORDER BY observed_at;`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list records: query operational_records table: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Return all records for one route.
func (s *SqliteRecordRepository) ListRouteRecords(ctx context.Context, key domain.RouteKey) (recs []domain.OperationalRecord, err error) {
	defer obs.Time(ctx, "records.ListRouteRecords")(&err)

	if s.DB == nil {
		return nil, errors.New("sqlite record repository: DB is nil")
	}

	query := `
	SELECT ` + recordColumns + `
	FROM operational_records
	WHERE supply = ? AND demand = ?
	ORDER BY observed_at;
	`
	rows, err := s.DB.QueryContext(ctx, query, key.Supply, key.Demand)
	if err != nil {
		return nil, fmt.Errorf("list route records %s: %w", key, err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Return records for one route observed at or before asOf.
func (s *SqliteRecordRepository) ListRouteRecordsAsOf(ctx context.Context, key domain.RouteKey, asOf time.Time) (recs []domain.OperationalRecord, err error) {
	defer obs.Time(ctx, "records.ListRouteRecordsAsOf")(&err)

	if s.DB == nil {
		return nil, errors.New("sqlite record repository: DB is nil")
	}

	query := `
	SELECT ` + recordColumns + `
	FROM operational_records
	WHERE supply = ? AND demand = ? AND observed_at <= ?
	ORDER BY observed_at;
	`
	rows, err := s.DB.QueryContext(ctx, query, key.Supply, key.Demand, asOf.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("list route records %s as of %s: %w", key, asOf.Format(time.RFC3339), err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]domain.OperationalRecord, error) {
	records := make([]domain.OperationalRecord, 0, 64)
	for rows.Next() {
		var rec domain.OperationalRecord
		var observedAt string
		err := rows.Scan(
			&rec.Supply,
			&rec.Demand,
			&rec.DistanceKm,
			&rec.FuelPricePerLiter,
			&rec.VehicleCapacityTons,
			&rec.BaseRatePerKm,
			&rec.TravelTimeHours,
			&rec.RoadConditionFactor,
			&rec.SeasonalFactor,
			&rec.PriorityMultiplier,
			&observedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan record row: %w", err)
		}

		rec.ObservedAt, err = time.Parse(time.RFC3339, observedAt)
		if err != nil {
			return nil, fmt.Errorf("parse observed_at %q: %w", observedAt, err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("record row iteration: %w", err)
	}

	return records, nil
}
