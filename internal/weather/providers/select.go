package providers

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/i474232898/weather-notifier/internal/config"
	"github.com/i474232898/weather-notifier/internal/weather"
)

// New builds the provider strategy cfg.Provider names.
func New(cfg *config.AppConfig, client *http.Client, logger *zap.Logger) (weather.Provider, error) {
	backoff := WithBackoff(BackoffConfig{
		MaxRetries:      cfg.HTTPMaxRetries,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
	})

	switch cfg.Provider {
	case config.ProviderGrid:
		return NewNWSProvider(client, NWSConfig{
			BaseURL:   cfg.NOAAAPIBase,
			Location:  cfg.Location(),
			StationID: cfg.NOAAStationID,
			UserAgent: cfg.UserAgent,
		}, logger, backoff), nil
	case config.ProviderUnified:
		return NewOneCallProvider(client, OneCallConfig{
			APIURL:   cfg.OWMAPIURL,
			AppID:    cfg.OWMAppID,
			Location: cfg.Location(),
			Units:    cfg.Units,
			Exclude:  cfg.Exclude,
		}, logger, backoff), nil
	default:
		return nil, fmt.Errorf("unknown weather provider %q", cfg.Provider)
	}
}
