package handlers

import (
	"log"
	"net/http"

	"shipment-plan-service/internal/api/dto"
	"shipment-plan-service/internal/ports"
)

// RecordHandler exposes a read-only view of the operational dataset.
type RecordHandler struct {
	Repo ports.RecordRepository
}

func (h *RecordHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	records, err := h.Repo.ListRecords(r.Context())
	if err != nil {
		log.Printf("list records failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListRecordsResponse{
		Records: make([]dto.RecordResponse, 0, len(records)),
	}
	for _, rec := range records {
		res.Records = append(res.Records, dto.RecordResponse{
			Supply:              rec.Supply,
			Demand:              rec.Demand,
			DistanceKm:          rec.DistanceKm,
			FuelPricePerLiter:   rec.FuelPricePerLiter,
			VehicleCapacityTons: rec.VehicleCapacityTons,
			BaseRatePerKm:       rec.BaseRatePerKm,
			TravelTimeHours:     rec.TravelTimeHours,
			RoadConditionFactor: rec.RoadConditionFactor,
			SeasonalFactor:      rec.SeasonalFactor,
			PriorityMultiplier:  rec.PriorityMultiplier,
			ObservedAt:          rec.ObservedAt,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}
