package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"agrisentry/pkg/simulation"
)

type AppConfig struct {
	Port       string `env:"PORT" envDefault:"8080"`
	Timezone   string `env:"TZ" envDefault:"Asia/Kolkata"`
	DBPath     string `env:"DB_PATH" envDefault:"agrisentry.db"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat  string `env:"LOG_FORMAT" envDefault:"json"`
	EnableAuth bool   `env:"ENABLE_AUTH" envDefault:"false"`

	LLMEndpoint       string `env:"LLM_ENDPOINT"`
	LLMAPIKey         string `env:"LLM_API_KEY"`
	LLMModel          string `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	GeminiAPIKey      string `env:"GEMINI_API_KEY"`
	GeminiModel       string `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"`
	GeminiVisionModel string `env:"GEMINI_VISION_MODEL" envDefault:"gemini-1.5-flash"`

	EmbEndpoint       string   `env:"EMB_ENDPOINT"`
	EmbAPIKey         string   `env:"EMB_API_KEY"`
	EmbModel          string   `env:"EMB_MODEL"`
	KBAllowedDomains  []string `env:"KB_ALLOWED_DOMAINS" envSeparator:","`
	KBMaxBytesPerPage int64    `env:"KB_MAX_BYTES_PER_PAGE" envDefault:"2097152"`

	MarketAPIURL string `env:"MARKET_API_URL" envDefault:"http://localhost:8000"`
	GeocoderURL  string `env:"GEOCODER_URL" envDefault:"https://nominatim.openstreetmap.org"`
	FarmLocation string `env:"FARM_LOCATION" envDefault:"Guntur, Andhra Pradesh, India"`

	SimFields         []string      `env:"SIM_FIELDS" envSeparator:"," envDefault:"wheat-a,corn-b,rice-c,soybean-d"`
	SimTickInterval   time.Duration `env:"SIM_TICK_INTERVAL" envDefault:"1s"`
	SimTickAdvance    time.Duration `env:"SIM_TICK_ADVANCE" envDefault:"15m"`
	SimStartHour      int           `env:"SIM_START_HOUR" envDefault:"6"`
	SimMoistureFloor  float64       `env:"SIM_MOISTURE_FLOOR" envDefault:"10"`
	SimHistoryCap     int           `env:"SIM_HISTORY_CAPACITY" envDefault:"20"`
	SimReferenceField string        `env:"SIM_REFERENCE_FIELD"`
	SimSeed           uint64        `env:"SIM_SEED"` // 0 seeds from the wall clock

	CropRulesCSV  string `env:"CROP_RULES_CSV"`
	CropRulesXLSX string `env:"CROP_RULES_XLSX"`
}

// Load reads .env if present, then the process environment. The returned
// bool reports whether a .env file was loaded.
func Load() (AppConfig, bool, error) {
	dotenv := godotenv.Load() == nil

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		return AppConfig{}, dotenv, fmt.Errorf("parse env: %w", err)
	}
	return cfg, dotenv, nil
}

// Location resolves Timezone, falling back to UTC.
func (c AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Simulation builds the engine config. Validation happens in
// simulation.NewEngine.
func (c AppConfig) Simulation() simulation.Config {
	return simulation.Config{
		FieldIDs:        c.SimFields,
		TickInterval:    c.SimTickInterval,
		TickAdvance:     c.SimTickAdvance,
		StartHour:       c.SimStartHour,
		MoistureFloor:   c.SimMoistureFloor,
		HistoryCapacity: c.SimHistoryCap,
		ReferenceField:  c.SimReferenceField,
		Location:        c.Location(),
		Physics:         simulation.DefaultPhysics(),
	}
}

// Redacted is safe to log.
func (c AppConfig) Redacted() AppConfig {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "***"
	}
	c.LLMAPIKey = mask(c.LLMAPIKey)
	c.GeminiAPIKey = mask(c.GeminiAPIKey)
	c.EmbAPIKey = mask(c.EmbAPIKey)
	return c
}
