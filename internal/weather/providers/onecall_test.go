package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-notifier/internal/weather"
)

const oneCallBody = `{
  "lat": 47.61, "lon": -122.33, "timezone": "America/Los_Angeles",
  "current": {"dt": 100, "sunrise": 50, "sunset": 200, "feels_like": 95, "wind_deg": 5,
              "weather": [{"id": 800, "main": "Clear"}]},
  "minutely": [{"dt": 100, "precipitation": 0}],
  "hourly": [{"dt": 300, "feels_like": 10, "wind_deg": 11.25, "weather": [{"id": 800}]}],
  "daily": [{"dt": 100, "sunrise": 50, "sunset": 60, "feels_like": {"day": 70}, "weather": [{"id": 321}]}]
}`

func newTestOneCallProvider(serverURL, appID string) *OneCallProvider {
	return NewOneCallProvider(http.DefaultClient, OneCallConfig{
		APIURL:   serverURL + "/data/3.0/onecall",
		AppID:    appID,
		Location: weather.Location{Lat: 47.61, Lon: -122.33},
		Units:    "imperial",
		Exclude:  []string{"alerts"},
	}, nil, noRetry)
}

func TestOneCallFetchEnrichesPayload(t *testing.T) {
	var query url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		fmt.Fprint(w, oneCallBody)
	}))
	defer srv.Close()

	p := newTestOneCallProvider(srv.URL, "secret-key")
	res, err := p.ResolveEndpoints(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Endpoints, 1)
	assert.NotContains(t, res.Endpoints[0].URL, "secret-key")

	ds, err := p.FetchDataset(context.Background(), res.Endpoints[0])
	require.NoError(t, err)

	assert.Equal(t, "secret-key", query.Get("appid"))
	assert.Equal(t, "47.61", query.Get("lat"))
	assert.Equal(t, "-122.33", query.Get("lon"))
	assert.Equal(t, "imperial", query.Get("units"))
	assert.Equal(t, "alerts", query.Get("exclude"))

	assert.Equal(t, weather.DatasetWeatherRefreshed, ds.Name)
	data, ok := ds.Payload.(*weather.OneCall)
	require.True(t, ok)
	assert.Equal(t, weather.IconHot, data.Current.Weather[0].WeatherClass)
	assert.Equal(t, "N", data.Current.WindDirection)
	assert.Equal(t, weather.IconStars, data.Hourly[0].Weather[0].WeatherClass)
	assert.Equal(t, "NNE", data.Hourly[0].WindDirection)
	assert.Equal(t, weather.IconShowers, data.Daily[0].Weather[0].WeatherClass)
	require.NotNil(t, data.Config)
	assert.Equal(t, "imperial", data.Config.Units)
}

func TestOneCallErrorsDoNotLeakKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "invalid key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := newTestOneCallProvider(srv.URL, "secret-key")
	res, err := p.ResolveEndpoints(context.Background())
	require.NoError(t, err)

	_, err = p.FetchDataset(context.Background(), res.Endpoints[0])
	require.Error(t, err)
	assert.Equal(t, "http_status", weather.ErrorKind(err))
	assert.NotContains(t, err.Error(), "secret-key")
}

func TestOneCallRequiresKey(t *testing.T) {
	p := newTestOneCallProvider("http://127.0.0.1:0", "")
	_, err := p.ResolveEndpoints(context.Background())
	assert.Error(t, err)
}

func TestOneCallMissingConditionsIsSchemaError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"lat": 1, "lon": 2, "current": {"dt": 100}}`)
	}))
	defer srv.Close()

	p := newTestOneCallProvider(srv.URL, "k")
	res, err := p.ResolveEndpoints(context.Background())
	require.NoError(t, err)

	_, err = p.FetchDataset(context.Background(), res.Endpoints[0])
	assert.Equal(t, "schema", weather.ErrorKind(err))
}
