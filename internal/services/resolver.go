package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shipment-plan-service/internal/domain"
	"shipment-plan-service/internal/ports"
)

// UnresolvableError reports a scenario whose cost matrix cannot be fully
// populated. It is an expected business outcome for routes without
// history, reported per scenario rather than raised as a process fault.
type UnresolvableError struct {
	Scenario string
	Missing  []domain.RouteKey
}

func (e *UnresolvableError) Error() string {
	routes := make([]string, 0, len(e.Missing))
	for _, k := range e.Missing {
		routes = append(routes, k.String())
	}
	return fmt.Sprintf("scenario %q unresolvable: no cost for routes [%s]", e.Scenario, strings.Join(routes, ", "))
}

// cellLookup resolves one route to a cost cell, or nil when this
// strategy has no value for it.
type cellLookup func(ctx context.Context, key domain.RouteKey) (*domain.CostCell, error)

// ResolveCostMatrix assembles the complete cost matrix for a scenario by
// evaluating lookup strategies per cell, short-circuiting on the first
// hit. Precedence, highest first:
//
//  1. scenario override, only when aggregate sourcing is disabled;
//  2. point-in-time snapshot, when the scenario carries an as-of marker
//     (a route unobserved at that time stays unresolved — it does not
//     fall through to current data);
//  3. current aggregates.
//
// A scenario with any unresolved route returns *UnresolvableError.
func ResolveCostMatrix(
	ctx context.Context,
	sc *domain.Scenario,
	current ports.AggregatesProvider,
	snapshots ports.SnapshotProvider,
) (domain.CostMatrix, error) {
	var strategies []cellLookup

	if !sc.UseAggregateSource {
		strategies = append(strategies, overrideLookup(sc))
	}
	if sc.AsOf != nil {
		asOf := *sc.AsOf
		strategies = append(strategies, func(ctx context.Context, key domain.RouteKey) (*domain.CostCell, error) {
			cell, err := snapshots.GetCostCellAsOf(ctx, key, asOf)
			if err != nil {
				return nil, fmt.Errorf("snapshot lookup %s as of %s: %w", key, asOf.Format(time.RFC3339), err)
			}
			return cell, nil
		})
	} else {
		strategies = append(strategies, func(ctx context.Context, key domain.RouteKey) (*domain.CostCell, error) {
			cell, err := current.GetCostCell(ctx, key)
			if err != nil {
				return nil, fmt.Errorf("current aggregate lookup %s: %w", key, err)
			}
			return cell, nil
		})
	}

	matrix := make(domain.CostMatrix)
	var missing []domain.RouteKey

	for _, key := range sc.Routes() {
		cell, err := resolveCell(ctx, key, strategies)
		if err != nil {
			return nil, fmt.Errorf("resolve cost matrix for scenario %q: %w", sc.Name, err)
		}
		if cell == nil {
			missing = append(missing, key)
			continue
		}
		matrix[key] = *cell
	}

	if len(missing) > 0 {
		return nil, &UnresolvableError{Scenario: sc.Name, Missing: missing}
	}
	return matrix, nil
}

func resolveCell(ctx context.Context, key domain.RouteKey, strategies []cellLookup) (*domain.CostCell, error) {
	for _, lookup := range strategies {
		cell, err := lookup(ctx, key)
		if err != nil {
			return nil, err
		}
		if cell != nil {
			return cell, nil
		}
	}
	return nil, nil
}

func overrideLookup(sc *domain.Scenario) cellLookup {
	return func(_ context.Context, key domain.RouteKey) (*domain.CostCell, error) {
		cost, ok := sc.Overrides[key]
		if !ok {
			return nil, nil
		}
		return &domain.CostCell{Cost: cost, Source: domain.SourceOverride}, nil
	}
}
