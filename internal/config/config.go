package config

import (
	"os"
	"strconv"

	"switchlens/domain/survey"
)

// Config holds the disclosure thresholds and statistical tuning constants
// for the analytics core. Values come from the governance policy, not from
// per-query input, so they are loaded once by the composition root.
type Config struct {
	// Minimum sample sizes for disclosure control
	MinBasePublishable int // insurer-level statistics
	MinBaseIndicative  int // lower tier, shown with a caveat
	MinBaseMarket      int // market aggregates, shown unconditionally
	MinBaseFlowCell    int // individual switching-matrix cells

	// Advisory threshold for the multi-filter warning message
	MinEligibleInsurersWarning int

	// Statistical tuning
	PriorStrength float64 // equivalent prior observations for smoothing
	ZScore        float64 // Wilson interval z (1.96 = 95%)

	// Cache precompute dimensions
	Products    []survey.Product
	TimeWindows []int // months
}

// Default returns the governance defaults
func Default() Config {
	return Config{
		MinBasePublishable:         50,
		MinBaseIndicative:          30,
		MinBaseMarket:              100,
		MinBaseFlowCell:            10,
		MinEligibleInsurersWarning: 3,
		PriorStrength:              30,
		ZScore:                     1.96,
		Products:                   []survey.Product{survey.ProductMotor, survey.ProductHome},
		TimeWindows:                []int{6, 12, 24},
	}
}

// Load reads configuration from environment variables, falling back to the
// governance defaults for anything unset.
func Load() Config {
	cfg := Default()
	cfg.MinBasePublishable = getEnvIntOrDefault("MIN_BASE_PUBLISHABLE", cfg.MinBasePublishable)
	cfg.MinBaseIndicative = getEnvIntOrDefault("MIN_BASE_INDICATIVE", cfg.MinBaseIndicative)
	cfg.MinBaseMarket = getEnvIntOrDefault("MIN_BASE_MARKET", cfg.MinBaseMarket)
	cfg.MinBaseFlowCell = getEnvIntOrDefault("MIN_BASE_FLOW_CELL", cfg.MinBaseFlowCell)
	cfg.MinEligibleInsurersWarning = getEnvIntOrDefault("MIN_ELIGIBLE_INSURERS_WARNING", cfg.MinEligibleInsurersWarning)
	cfg.PriorStrength = getEnvFloatOrDefault("PRIOR_STRENGTH", cfg.PriorStrength)
	cfg.ZScore = getEnvFloatOrDefault("Z_SCORE", cfg.ZScore)
	return cfg
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
