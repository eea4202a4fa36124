package services

import (
	"context"
	"errors"
	"fmt"

	"shipment-plan-service/internal/domain"
	"shipment-plan-service/internal/ports"
)

// batchWorkers bounds concurrent scenario solves. Scenarios are
// mutually independent, so parallel execution cannot change outcomes,
// only wall-clock time.
const batchWorkers = 4

// BatchItem is the outcome of one scenario, at the same position as its
// scenario in the input. Exactly one of Solution, Unresolvable or Err
// is set.
type BatchItem struct {
	ScenarioName string
	Solution     *domain.Solution
	Unresolvable *UnresolvableError
	Err          error
}

// RunBatch resolves and solves every scenario independently. A failure
// in one scenario (unresolvable matrix, validation error, corrupt
// record group downstream) never aborts or affects its siblings, and
// results preserve scenario input order.
func RunBatch(
	ctx context.Context,
	scenarios []*domain.Scenario,
	current ports.AggregatesProvider,
	snapshots ports.SnapshotProvider,
) []BatchItem {
	items := make([]BatchItem, len(scenarios))

	sem := make(chan struct{}, batchWorkers)
	done := make(chan int, len(scenarios))

	for i, sc := range scenarios {
		go func(i int, sc *domain.Scenario) {
			sem <- struct{}{}
			defer func() { <-sem }()
			defer func() { done <- i }()

			items[i] = runScenario(ctx, sc, current, snapshots)
		}(i, sc)
	}

	for range scenarios {
		<-done
	}

	return items
}

func runScenario(
	ctx context.Context,
	sc *domain.Scenario,
	current ports.AggregatesProvider,
	snapshots ports.SnapshotProvider,
) BatchItem {
	item := BatchItem{ScenarioName: sc.Name}

	if err := sc.Validate(); err != nil {
		item.Err = err
		return item
	}

	matrix, err := ResolveCostMatrix(ctx, sc, current, snapshots)
	if err != nil {
		var unresolvable *UnresolvableError
		if errors.As(err, &unresolvable) {
			item.Unresolvable = unresolvable
		} else {
			item.Err = err
		}
		return item
	}

	solution, err := SolveTransportation(sc.Capacities, sc.Demands, matrix)
	if err != nil {
		item.Err = fmt.Errorf("scenario %q: %w", sc.Name, err)
		return item
	}

	item.Solution = solution
	return item
}
