package api

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"

	offersapp "github.com/Apurer/supplier-offers/internal/domains/offers/application"
	offerstypes "github.com/Apurer/supplier-offers/internal/domains/offers/application/types"
)

// defaultRepairRatePerSecond caps sweeps at 20 products per second. REPAIR_RATE_PER_SECOND=0 lifts the cap.
const defaultRepairRatePerSecond = 20

// Config carries environment-driven settings shared by the API, worker and repair processes.
type Config struct {
	Port                 string
	PostgresDSN          string
	PostgresMaxOpenConns int
	TemporalAddress      string
	TemporalNamespace    string
	TemporalDisabled     bool
	DefaultCurrency      string
	RepairBatchSize      int
	RepairRatePerSecond  float64
}

// LoadConfig reads an optional .env file, then environment variables, applies
// defaults, and validates basic constraints. Real environment variables win
// over .env entries.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	cfg := Config{
		Port:                envDefault("PORT", "8080"),
		PostgresDSN:         strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		TemporalAddress:     envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace:   envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:    isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		DefaultCurrency:     strings.ToUpper(envDefault("DEFAULT_CURRENCY", offersapp.DefaultCurrency)),
		RepairBatchSize:     offersapp.DefaultRepairBatchSize,
		RepairRatePerSecond: defaultRepairRatePerSecond,
	}
	var err error
	if cfg.PostgresMaxOpenConns, err = positiveInt("POSTGRES_MAX_OPEN_CONNS", 0); err != nil {
		return Config{}, err
	}
	if cfg.RepairBatchSize, err = positiveInt("REPAIR_BATCH_SIZE", cfg.RepairBatchSize); err != nil {
		return Config{}, err
	}
	if raw := strings.TrimSpace(os.Getenv("REPAIR_RATE_PER_SECOND")); raw != "" {
		rate, err := strconv.ParseFloat(raw, 64)
		if err != nil || rate < 0 {
			return Config{}, fmt.Errorf("REPAIR_RATE_PER_SECOND must be a non-negative number")
		}
		cfg.RepairRatePerSecond = rate
	}
	if len(cfg.DefaultCurrency) != 3 {
		return Config{}, fmt.Errorf("DEFAULT_CURRENCY must be a three-letter ISO 4217 code")
	}
	return cfg, nil
}

// RepairDefaults fills repair requests that omit batch size or rate.
func (c Config) RepairDefaults() offerstypes.RepairCatalogInput {
	return offerstypes.RepairCatalogInput{BatchSize: c.RepairBatchSize, RatePerSecond: c.RepairRatePerSecond}
}

func positiveInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	return n, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
