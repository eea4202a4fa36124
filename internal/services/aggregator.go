package services

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"gonum.org/v1/gonum/stat"

	"shipment-plan-service/internal/domain"
)

// ErrEmptyGroup marks an aggregation requested over zero records. This
// is a caller error and is surfaced immediately.
var ErrEmptyGroup = errors.New("empty record group")

// GroupByRoute partitions raw records by supply->demand pair. Membership
// order within a group is not significant.
func GroupByRoute(records []domain.OperationalRecord) map[domain.RouteKey][]domain.OperationalRecord {
	groups := make(map[domain.RouteKey][]domain.OperationalRecord)
	for _, rec := range records {
		key := domain.RouteKey{Supply: rec.Supply, Demand: rec.Demand}
		groups[key] = append(groups[key], rec)
	}
	return groups
}

// Aggregate reduces repeated observations of one route to a single cost
// cell under the chosen statistic (default mean), with component and
// volatility diagnostics computed over the whole group.
//
// One invalid record rejects the group as a whole; partial aggregation
// would silently bias the statistics.
func Aggregate(records []domain.OperationalRecord, model CostModel, statistic domain.Statistic) (domain.CostCell, error) {
	if len(records) == 0 {
		return domain.CostCell{}, ErrEmptyGroup
	}
	if statistic == "" {
		statistic = domain.StatMean
	}

	costs := make([]float64, 0, len(records))
	fuelPrices := make([]float64, 0, len(records))
	var distanceCosts, fuelCosts, timeCosts []float64

	for i, rec := range records {
		cost, comp, err := unitCost(rec, model)
		if err != nil {
			return domain.CostCell{}, fmt.Errorf("aggregate %s->%s: record %d: %w", rec.Supply, rec.Demand, i, err)
		}
		costs = append(costs, cost)
		fuelPrices = append(fuelPrices, rec.FuelPricePerLiter)
		distanceCosts = append(distanceCosts, comp.DistanceCost)
		fuelCosts = append(fuelCosts, comp.FuelCost)
		timeCosts = append(timeCosts, comp.TimeCost)
	}

	reduced, err := reduce(costs, statistic)
	if err != nil {
		return domain.CostCell{}, fmt.Errorf("aggregate %s->%s: %w", records[0].Supply, records[0].Demand, err)
	}

	// Sample standard deviation; a single observation has no spread.
	volatility := 0.0
	if len(fuelPrices) > 1 {
		volatility = stat.StdDev(fuelPrices, nil)
	}

	return domain.CostCell{
		Cost:      reduced,
		Source:    domain.SourceCurrentAggregate,
		Statistic: statistic,
		Diagnostics: &domain.CellDiagnostics{
			AvgDistanceCost:     stat.Mean(distanceCosts, nil),
			AvgFuelCost:         stat.Mean(fuelCosts, nil),
			AvgTimeCost:         stat.Mean(timeCosts, nil),
			FuelPriceVolatility: volatility,
			MinFuelPrice:        slices.Min(fuelPrices),
			MaxFuelPrice:        slices.Max(fuelPrices),
			SampleCount:         len(records),
		},
	}, nil
}

func reduce(costs []float64, statistic domain.Statistic) (float64, error) {
	switch statistic {
	case domain.StatMean:
		return stat.Mean(costs, nil), nil
	case domain.StatMedian:
		return median(costs), nil
	case domain.StatMin:
		return slices.Min(costs), nil
	case domain.StatMax:
		return slices.Max(costs), nil
	default:
		return 0, fmt.Errorf("unknown aggregation statistic %q", statistic)
	}
}

// median returns the conventional midpoint median (average of the two
// middle values for even-sized input).
func median(xs []float64) float64 {
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
