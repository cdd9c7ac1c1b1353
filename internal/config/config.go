package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/weather-notifier/internal/common"
	"github.com/i474232898/weather-notifier/internal/weather"
)

const (
	ProviderGrid    = "grid"
	ProviderUnified = "unified"
)

// AppConfig is the validated service configuration.
type AppConfig struct {
	// Provider selects the upstream family: "grid" (api.weather.gov) or
	// "unified" (OpenWeather One Call).
	Provider string `validate:"required,oneof=grid unified"`

	Lat   float64 `validate:"latitude"`
	Lon   float64 `validate:"longitude"`
	Units string  `validate:"oneof=standard metric imperial"`

	NOAAAPIBase   string `validate:"required,url"`
	NOAAStationID string `validate:"omitempty,alphanum"`
	UserAgent     string `validate:"required"`

	OWMAPIURL string   `validate:"required,url"`
	OWMAppID  string   `validate:"required_if=Provider unified"`
	Exclude   []string `validate:"dive,oneof=current minutely hourly daily alerts"`

	// Poll cadence.
	UpdateInterval   time.Duration `validate:"gt=0"`
	RetryDelay       time.Duration `validate:"gt=0"`
	InitialLoadDelay time.Duration `validate:"gte=0"`
	CycleTimeout     time.Duration `validate:"gt=0"`

	HTTPTimeout    time.Duration `validate:"gt=0"`
	HTTPMaxRetries int           `validate:"gte=0,lte=10"`

	StoreMaxCycles int `validate:"gte=0"` // recent cycle summaries kept for /status (0 = unlimited)

	MQTTBrokerURL   string
	MQTTTopicPrefix string `validate:"required_with=MQTTBrokerURL"`
	MQTTClientID    string

	RedisAddr    string `validate:"omitempty,hostname_port"`
	RedisChannel string `validate:"required_with=RedisAddr"`

	Port      string `validate:"required,numeric"`
	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"oneof=json console"`
}

var (
	errMissingCoordinates = errors.New("WEATHER_LAT and WEATHER_LON must be set")

	validate = validator.New()
)

// Location returns the configured coordinate pair.
func (c *AppConfig) Location() weather.Location {
	return weather.Location{Lat: c.Lat, Lon: c.Lon}
}

// Validate checks every field against its constraints.
func (c *AppConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.Provider = getenvDefault("WEATHER_PROVIDER", ProviderGrid)

	lat, lon := os.Getenv("WEATHER_LAT"), os.Getenv("WEATHER_LON")
	if lat == "" || lon == "" {
		return nil, errMissingCoordinates
	}
	var err error
	if cfg.Lat, err = strconv.ParseFloat(lat, 64); err != nil {
		return nil, fmt.Errorf("invalid WEATHER_LAT: %w", err)
	}
	if cfg.Lon, err = strconv.ParseFloat(lon, 64); err != nil {
		return nil, fmt.Errorf("invalid WEATHER_LON: %w", err)
	}
	cfg.Units = getenvDefault("WEATHER_UNITS", "imperial")

	cfg.NOAAAPIBase = getenvDefault("NOAA_API_BASE", "https://api.weather.gov")
	cfg.NOAAStationID = os.Getenv("NOAA_STATION_ID")
	cfg.UserAgent = getenvDefault("NOAA_USER_AGENT", "weather-notifier/1.0")

	cfg.OWMAPIURL = getenvDefault("OWM_API_URL", "https://api.openweathermap.org/data/3.0/onecall")
	cfg.OWMAppID = os.Getenv("OWM_APPID")
	cfg.Exclude = common.SplitList(os.Getenv("OWM_EXCLUDE"))

	durations := []struct {
		key string
		def string
		dst *time.Duration
	}{
		{"UPDATE_INTERVAL", "10m", &cfg.UpdateInterval},
		{"RETRY_DELAY", "2.5s", &cfg.RetryDelay},
		{"INITIAL_LOAD_DELAY", "0s", &cfg.InitialLoadDelay},
		{"CYCLE_TIMEOUT", "30s", &cfg.CycleTimeout},
		{"HTTP_TIMEOUT", "10s", &cfg.HTTPTimeout},
	}
	for _, d := range durations {
		v, err := getenvDuration(d.key, d.def)
		if err != nil {
			return nil, err
		}
		*d.dst = v
	}

	cfg.HTTPMaxRetries = getenvInt("HTTP_MAX_RETRIES", 2)
	cfg.StoreMaxCycles = getenvInt("STORE_MAX_CYCLES", 20)

	cfg.MQTTBrokerURL = os.Getenv("MQTT_BROKER_URL")
	cfg.MQTTTopicPrefix = getenvDefault("MQTT_TOPIC_PREFIX", "weather")
	cfg.MQTTClientID = getenvDefault("MQTT_CLIENT_ID", "weather-notifier")

	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisChannel = getenvDefault("REDIS_CHANNEL", "weather")

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")
	cfg.LogFormat = getenvDefault("LOG_FORMAT", "json")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
