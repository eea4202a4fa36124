package api

import (
	"net/http"

	"shipment-plan-service/internal/api/handlers"
	"shipment-plan-service/internal/config"
	"shipment-plan-service/internal/ports"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(
	repo ports.RecordRepository,
	current ports.AggregatesProvider,
	snapshots ports.SnapshotProvider,
	defaults config.Constraints,
) http.Handler {
	mux := http.NewServeMux()

	recordHandler := &handlers.RecordHandler{Repo: repo}
	optimizeHandler := &handlers.OptimizeHandler{
		Current:   current,
		Snapshots: snapshots,
		Defaults:  defaults,
	}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/records", recordHandler.List)
	mux.HandleFunc("/optimize", optimizeHandler.Optimize)

	return loggingMiddleware(mux)
}
