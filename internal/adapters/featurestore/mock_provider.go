package featurestore

import (
	"context"
	"sync"
	"time"

	"shipment-plan-service/internal/domain"
)

// SnapshotEntry is one historical aggregate value, effective from At.
type SnapshotEntry struct {
	At   time.Time
	Cell domain.CostCell
}

// MockFeatureStore serves canned cost cells for tests. It implements
// both provider ports and counts lookups so caching layers can be
// verified. Safe for concurrent use.
type MockFeatureStore struct {
	mu           sync.Mutex
	Current      map[domain.RouteKey]domain.CostCell
	History      map[domain.RouteKey][]SnapshotEntry
	Errs         map[domain.RouteKey]error
	CurrentCalls int
}

func (m *MockFeatureStore) GetCostCell(_ context.Context, key domain.RouteKey) (*domain.CostCell, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CurrentCalls++
	if err := m.Errs[key]; err != nil {
		return nil, err
	}
	cell, ok := m.Current[key]
	if !ok {
		return nil, nil
	}
	c := cell
	return &c, nil
}

func (m *MockFeatureStore) GetCostCellAsOf(_ context.Context, key domain.RouteKey, asOf time.Time) (*domain.CostCell, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.Errs[key]; err != nil {
		return nil, err
	}

	// Latest entry effective at or before asOf, never a future value.
	var found *domain.CostCell
	for _, entry := range m.History[key] {
		if entry.At.After(asOf) {
			continue
		}
		c := entry.Cell
		c.Source = domain.SourceSnapshot
		found = &c
	}
	return found, nil
}

// Calls reports how many current-aggregate lookups were served.
func (m *MockFeatureStore) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CurrentCalls
}
