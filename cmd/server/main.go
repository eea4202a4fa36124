package main

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"

	"shipment-plan-service/internal/adapters/cache"
	"shipment-plan-service/internal/adapters/featurestore"
	"shipment-plan-service/internal/adapters/repositories"
	"shipment-plan-service/internal/api"
	"shipment-plan-service/internal/config"
	"shipment-plan-service/internal/domain"
	"shipment-plan-service/internal/ports"
	"shipment-plan-service/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (SQLite, optional Redis) behind ports and
// starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	dbPath := config.Get("DB_PATH", "data/app.db")
	seedPath := config.Get("SEED_PATH", "data/seeds/records.json")
	constraintsPath := config.Get("CONSTRAINTS_PATH", "configs/constraints.json")
	statistic := domain.Statistic(config.Get("AGGREGATE_STATISTIC", string(domain.StatMean)))
	model := services.CostModel(config.Get("COST_MODEL", string(services.ModelComposite)))
	port := config.Get("PORT", "8080")

	constraints, err := config.LoadConstraints(constraintsPath)
	if err != nil {
		log.Fatal(err)
	}

	db, err := openDB(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	// Initialize schema and seed demo data on startup for local runs.
	if err := initAndSeed(db, seedPath); err != nil {
		log.Fatal(err)
	}

	repo := repositories.NewSqliteRecordRepository(db)
	provider := featurestore.NewRecordAggregatesProvider(repo, model, statistic)

	// Aggregate lookups recompute from raw records on every call; a Redis
	// instance, when configured, absorbs the repeated per-route queries.
	var current ports.AggregatesProvider = provider
	if addr := strings.TrimSpace(os.Getenv("REDIS_ADDR")); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		current = cache.NewRedisCellCache(client, provider, 5*time.Minute)
		log.Printf("Cell cache enabled addr=%s", addr)
	}

	router := api.NewRouter(repo, current, provider, constraints)

	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

func openDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("openDB: open sqlite database %q: %w", dbPath, err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("openDB: verify sqlite connection to %q: %w", dbPath, err)
	}

	return db, nil
}

func initAndSeed(db *sql.DB, seedPath string) error {
	if err := repositories.InitSchema(db); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if err := repositories.SeedFromJSON(db, seedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	return nil
}
