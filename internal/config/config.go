package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Get reads an environment variable with a fallback for local runs.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Constraints is the default capacity/demand template. Scenario
// requests merge over it, so a request only names the nodes it changes.
type Constraints struct {
	Capacities map[string]float64 `json:"capacities"`
	Demands    map[string]float64 `json:"demands"`
}

func LoadConstraints(path string) (Constraints, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Constraints{}, fmt.Errorf("load constraints: read %q: %w", path, err)
	}

	var c Constraints
	if err := json.Unmarshal(raw, &c); err != nil {
		return Constraints{}, fmt.Errorf("load constraints: parse %q: %w", path, err)
	}
	if len(c.Capacities) == 0 || len(c.Demands) == 0 {
		return Constraints{}, fmt.Errorf("load constraints: %q must define capacities and demands", path)
	}
	return c, nil
}
