package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/i474232898/weather-notifier/internal/common"
	"github.com/i474232898/weather-notifier/internal/weather"
)

// OneCallConfig configures the unified OpenWeather One Call provider.
type OneCallConfig struct {
	APIURL   string
	AppID    string
	Location weather.Location
	Units    string
	Exclude  []string
}

// OneCallProvider fetches the unified payload in a single request and
// enriches it before it is emitted.
type OneCallProvider struct {
	name    string
	cfg     OneCallConfig
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewOneCallProvider creates the unified provider. The API key travels only
// in the outgoing request.
func NewOneCallProvider(client *http.Client, cfg OneCallConfig, logger *zap.Logger, opts ...Option) *OneCallProvider {
	if logger == nil {
		logger = zap.NewNop()
	}

	httpCfg := defaultHTTPConfig(client)
	httpCfg.Header.Set("Accept", "application/json")
	httpCfg.SecretQuery = url.Values{"appid": []string{cfg.AppID}}
	for _, opt := range opts {
		opt(&httpCfg)
	}

	return &OneCallProvider{
		name:    "onecall",
		cfg:     cfg,
		httpCfg: httpCfg,
		circuit: newCircuitBreaker("onecall", httpCfg.BreakerTimeout),
		logger:  logger.Named("onecall"),
	}
}

func (p *OneCallProvider) Name() string {
	return p.name
}

// ResolveEndpoints needs no upstream lookup: the single endpoint is built
// from configuration.
func (p *OneCallProvider) ResolveEndpoints(_ context.Context) (weather.Resolution, error) {
	if p.cfg.AppID == "" {
		return weather.Resolution{}, fmt.Errorf("onecall api key is not configured")
	}

	u, err := p.requestURL()
	if err != nil {
		return weather.Resolution{}, err
	}
	return weather.Resolution{
		Endpoints: []weather.Endpoint{{Dataset: weather.DatasetWeatherRefreshed, URL: u}},
	}, nil
}

// requestURL builds the query without the API key, which is added at send time.
func (p *OneCallProvider) requestURL() (string, error) {
	base, err := url.Parse(p.cfg.APIURL)
	if err != nil {
		return "", fmt.Errorf("invalid onecall api url: %w", err)
	}

	values := base.Query()
	values.Set("lat", common.FormatCoord(p.cfg.Location.Lat))
	values.Set("lon", common.FormatCoord(p.cfg.Location.Lon))
	if len(p.cfg.Exclude) > 0 {
		values.Set("exclude", strings.Join(p.cfg.Exclude, ","))
	}
	if p.cfg.Units != "" {
		values.Set("units", p.cfg.Units)
	}
	base.RawQuery = values.Encode()
	return base.String(), nil
}

func (p *OneCallProvider) FetchDataset(ctx context.Context, ep weather.Endpoint) (weather.Dataset, error) {
	if ep.Dataset != weather.DatasetWeatherRefreshed {
		return weather.Dataset{}, fmt.Errorf("onecall: unsupported dataset %q", ep.Dataset)
	}

	body, err := fetchBody(ctx, p.httpCfg, p.circuit, ep.URL)
	if err != nil {
		return weather.Dataset{}, err
	}

	var payload weather.OneCall
	if err := decodeDocument("onecall", ep.URL, body, oneCallSchema, &payload); err != nil {
		return weather.Dataset{}, err
	}

	weather.Enrich(&payload)
	payload.Config = &weather.RequestParams{
		Lat:     p.cfg.Location.Lat,
		Lon:     p.cfg.Location.Lon,
		Units:   p.cfg.Units,
		Exclude: p.cfg.Exclude,
	}

	if payload.Minutely != nil {
		p.logger.Debug("minutely data received", zap.Int("elements", len(payload.Minutely)))
	}
	p.logger.Info("weather refreshed",
		zap.Bool("current", payload.Current != nil),
		zap.Int("hourly", len(payload.Hourly)),
		zap.Int("daily", len(payload.Daily)))

	return weather.Dataset{Name: weather.DatasetWeatherRefreshed, Payload: &payload}, nil
}
