package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/i474232898/weather-notifier/internal/weather"
)

// NWSConfig configures the grid-based api.weather.gov provider.
type NWSConfig struct {
	BaseURL  string
	Location weather.Location

	// StationID pins the observation station. When empty the first station
	// listed for the grid point is used.
	StationID string

	UserAgent string
}

// NWSProvider resolves coordinates to a grid point and fetches the forecast
// and observation datasets that depend on it.
type NWSProvider struct {
	name    string
	cfg     NWSConfig
	httpCfg HTTPClientConfig
	logger  *zap.Logger

	// One breaker for grid-point resolution and one per dataset branch.
	points   *gobreaker.CircuitBreaker
	circuits map[weather.DatasetName]*gobreaker.CircuitBreaker
}

// NewNWSProvider creates the grid-based provider.
func NewNWSProvider(client *http.Client, cfg NWSConfig, logger *zap.Logger, opts ...Option) *NWSProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")

	httpCfg := defaultHTTPConfig(client)
	httpCfg.Header.Set("Accept", "application/geo+json")
	if cfg.UserAgent != "" {
		httpCfg.Header.Set("User-Agent", cfg.UserAgent)
	}
	for _, opt := range opts {
		opt(&httpCfg)
	}

	circuits := make(map[weather.DatasetName]*gobreaker.CircuitBreaker, 4)
	for _, ds := range []weather.DatasetName{
		weather.DatasetGridpointCurrent,
		weather.DatasetHourly,
		weather.DatasetForecast,
		weather.DatasetCurrent,
	} {
		circuits[ds] = newCircuitBreaker("nws/"+string(ds), httpCfg.BreakerTimeout)
	}

	return &NWSProvider{
		name:     "nws",
		cfg:      cfg,
		httpCfg:  httpCfg,
		logger:   logger.Named("nws"),
		points:   newCircuitBreaker("nws/points", httpCfg.BreakerTimeout),
		circuits: circuits,
	}
}

func (p *NWSProvider) Name() string {
	return p.name
}

type pointsDocument struct {
	Properties struct {
		GridID              string `json:"gridId"`
		GridX               int    `json:"gridX"`
		GridY               int    `json:"gridY"`
		ForecastGridData    string `json:"forecastGridData"`
		ForecastHourly      string `json:"forecastHourly"`
		Forecast            string `json:"forecast"`
		ObservationStations string `json:"observationStations"`
	} `json:"properties"`
}

type stationsDocument struct {
	Features []struct {
		ID         string `json:"id"`
		Properties struct {
			StationIdentifier string `json:"stationIdentifier"`
			Name              string `json:"name"`
		} `json:"properties"`
	} `json:"features"`
}

// ResolveEndpoints resolves the configured coordinates to a grid point. The
// raw points document is returned as the gridpoint dataset; the gridded,
// hourly, daily and station branches all depend on it.
func (p *NWSProvider) ResolveEndpoints(ctx context.Context) (weather.Resolution, error) {
	pointsURL := fmt.Sprintf("%s/points/%s", p.cfg.BaseURL, p.cfg.Location.Key())
	p.logger.Debug("resolving grid point", zap.String("url", pointsURL))

	body, err := fetchBody(ctx, p.httpCfg, p.points, pointsURL)
	if err != nil {
		return weather.Resolution{}, fmt.Errorf("resolve grid point for %s: %w", p.cfg.Location.Key(), err)
	}

	var doc pointsDocument
	if err := decodeDocument("points", pointsURL, body, pointsSchema, &doc); err != nil {
		return weather.Resolution{}, fmt.Errorf("resolve grid point for %s: %w", p.cfg.Location.Key(), err)
	}

	gp := weather.GridPoint{
		Office:                 doc.Properties.GridID,
		GridX:                  doc.Properties.GridX,
		GridY:                  doc.Properties.GridY,
		ForecastGridDataURL:    doc.Properties.ForecastGridData,
		ForecastHourlyURL:      doc.Properties.ForecastHourly,
		ForecastURL:            doc.Properties.Forecast,
		ObservationStationsURL: doc.Properties.ObservationStations,
	}
	p.logger.Info("grid point resolved",
		zap.String("office", gp.Office), zap.Int("gridX", gp.GridX), zap.Int("gridY", gp.GridY))

	return weather.Resolution{
		Datasets: []weather.Dataset{{
			Name:    weather.DatasetGridpoint,
			Payload: json.RawMessage(body),
		}},
		Endpoints: p.endpoints(gp),
	}, nil
}

func (p *NWSProvider) endpoints(gp weather.GridPoint) []weather.Endpoint {
	station := weather.Endpoint{
		Dataset:  weather.DatasetCurrent,
		URL:      gp.ObservationStationsURL,
		Discover: true,
	}
	if p.cfg.StationID != "" {
		station = weather.Endpoint{
			Dataset: weather.DatasetCurrent,
			URL:     p.stationURL(p.cfg.StationID),
		}
	}

	return []weather.Endpoint{
		{Dataset: weather.DatasetGridpointCurrent, URL: gp.ForecastGridDataURL},
		{Dataset: weather.DatasetHourly, URL: gp.ForecastHourlyURL},
		{Dataset: weather.DatasetForecast, URL: gp.ForecastURL},
		station,
	}
}

func (p *NWSProvider) stationURL(id string) string {
	return p.cfg.BaseURL + "/stations/" + url.PathEscape(id)
}

// FetchDataset retrieves the dataset planned for ep. The current-data branch
// first discovers its station when ep.Discover is set.
func (p *NWSProvider) FetchDataset(ctx context.Context, ep weather.Endpoint) (weather.Dataset, error) {
	switch ep.Dataset {
	case weather.DatasetCurrent:
		return p.fetchLatestObservation(ctx, ep)
	case weather.DatasetGridpointCurrent:
		return p.fetchDocument(ctx, ep, "gridpoint", gridDataSchema)
	case weather.DatasetHourly, weather.DatasetForecast:
		return p.fetchDocument(ctx, ep, "forecast", forecastSchema)
	default:
		return weather.Dataset{}, fmt.Errorf("nws: unsupported dataset %q", ep.Dataset)
	}
}

func (p *NWSProvider) fetchDocument(ctx context.Context, ep weather.Endpoint, document string, schema *jsonschema.Schema) (weather.Dataset, error) {
	body, err := fetchBody(ctx, p.httpCfg, p.circuits[ep.Dataset], ep.URL)
	if err != nil {
		return weather.Dataset{}, err
	}
	if err := decodeDocument(document, ep.URL, body, schema, nil); err != nil {
		return weather.Dataset{}, err
	}
	return weather.Dataset{Name: ep.Dataset, Payload: json.RawMessage(body)}, nil
}

func (p *NWSProvider) fetchLatestObservation(ctx context.Context, ep weather.Endpoint) (weather.Dataset, error) {
	station := weather.ObservationStation{ID: p.cfg.StationID, URL: ep.URL}
	if ep.Discover {
		var err error
		station, err = p.discoverStation(ctx, ep.URL)
		if err != nil {
			return weather.Dataset{}, err
		}
	}

	obsURL := station.LatestObservationURL()
	body, err := fetchBody(ctx, p.httpCfg, p.circuits[weather.DatasetCurrent], obsURL)
	if err != nil {
		return weather.Dataset{}, fmt.Errorf("latest observation for station %s: %w", station.ID, err)
	}
	if err := decodeDocument("observation", obsURL, body, observationSchema, nil); err != nil {
		return weather.Dataset{}, err
	}

	p.logger.Debug("latest observation loaded", zap.String("station", station.ID))
	return weather.Dataset{Name: weather.DatasetCurrent, Payload: json.RawMessage(body)}, nil
}

func (p *NWSProvider) discoverStation(ctx context.Context, listURL string) (weather.ObservationStation, error) {
	body, err := fetchBody(ctx, p.httpCfg, p.circuits[weather.DatasetCurrent], listURL)
	if err != nil {
		return weather.ObservationStation{}, fmt.Errorf("discover observation station: %w", err)
	}

	var doc stationsDocument
	if err := decodeDocument("stations", listURL, body, stationsSchema, &doc); err != nil {
		return weather.ObservationStation{}, fmt.Errorf("discover observation station: %w", err)
	}

	first := doc.Features[0]
	station := weather.ObservationStation{ID: first.Properties.StationIdentifier, URL: first.ID}
	p.logger.Debug("observation station discovered",
		zap.String("station", station.ID), zap.String("name", first.Properties.Name))
	return station, nil
}
