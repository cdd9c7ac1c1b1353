package weather

import (
	"strings"
	"time"

	"github.com/i474232898/weather-notifier/internal/common"
)

// DatasetName identifies one logical dataset emitted by a fetch cycle.
type DatasetName string

const (
	DatasetGridpoint        DatasetName = "gridpoint-data"
	DatasetGridpointCurrent DatasetName = "gridpoint-current-data"
	DatasetCurrent          DatasetName = "current-data"
	DatasetHourly           DatasetName = "hourly-data"
	DatasetForecast         DatasetName = "forecast-data"

	// DatasetWeatherRefreshed carries the whole enriched unified payload.
	DatasetWeatherRefreshed DatasetName = "weather-refreshed"
)

// DatasetNames lists every dataset the service can emit, in a stable order.
var DatasetNames = []DatasetName{
	DatasetGridpoint,
	DatasetGridpointCurrent,
	DatasetCurrent,
	DatasetHourly,
	DatasetForecast,
	DatasetWeatherRefreshed,
}

// KnownDataset reports whether name is one of DatasetNames.
func KnownDataset(name string) bool {
	for _, n := range DatasetNames {
		if string(n) == name {
			return true
		}
	}
	return false
}

// Location is the coordinate pair a cycle fetches weather for.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Key returns the "lat,lon" form used in grid-point URLs and log fields.
func (l Location) Key() string {
	return common.FormatCoord(l.Lat) + "," + common.FormatCoord(l.Lon)
}

// GridPoint is the forecast office grid cell resolved for a Location.
// It is only valid for the cycle that resolved it.
type GridPoint struct {
	Office                 string `json:"office"`
	GridX                  int    `json:"gridX"`
	GridY                  int    `json:"gridY"`
	ForecastGridDataURL    string `json:"forecastGridData"`
	ForecastHourlyURL      string `json:"forecastHourly"`
	ForecastURL            string `json:"forecast"`
	ObservationStationsURL string `json:"observationStations"`
}

// ObservationStation is a reporting site with a latest-observation endpoint.
type ObservationStation struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// LatestObservationURL returns the station's latest observation endpoint.
func (s ObservationStation) LatestObservationURL() string {
	return strings.TrimSuffix(s.URL, "/") + "/observations/latest"
}

// Dataset is one unit of outward emission.
type Dataset struct {
	Name      DatasetName `json:"name"`
	CycleID   string      `json:"cycleId"`
	FetchedAt time.Time   `json:"fetchedAt"` // always UTC
	Payload   any         `json:"payload"`
}

// Endpoint is one request branch planned by a provider. When Discover is set,
// URL points at a listing whose first entry must be resolved before the
// dataset itself can be fetched.
type Endpoint struct {
	Dataset  DatasetName
	URL      string
	Discover bool
}

// Resolution is the outcome of a provider's resolution step: datasets that the
// resolution itself produced plus the endpoints that depend on it.
type Resolution struct {
	Datasets  []Dataset
	Endpoints []Endpoint
}

// BranchFailure records a branch that did not produce its dataset.
type BranchFailure struct {
	Dataset DatasetName `json:"dataset"`
	Kind    string      `json:"kind"`
	Error   string      `json:"error"`
}

// CycleResult is everything a single fetch cycle produced.
type CycleResult struct {
	ID         string          `json:"id"`
	Provider   string          `json:"provider"`
	StartedAt  time.Time       `json:"startedAt"`
	Duration   time.Duration   `json:"duration"`
	Datasets   []Dataset       `json:"-"`
	Failures   []BranchFailure `json:"failures,omitempty"`
	ResolveErr error           `json:"-"`
}

// AnyFailure reports whether resolution or any branch failed.
func (r CycleResult) AnyFailure() bool {
	return r.ResolveErr != nil || len(r.Failures) > 0
}

// Dataset returns the named dataset if the cycle produced it.
func (r CycleResult) Dataset(name DatasetName) (Dataset, bool) {
	for _, ds := range r.Datasets {
		if ds.Name == name {
			return ds, true
		}
	}
	return Dataset{}, false
}

// Names returns the produced dataset names in emission order.
func (r CycleResult) Names() []DatasetName {
	names := make([]DatasetName, 0, len(r.Datasets))
	for _, ds := range r.Datasets {
		names = append(names, ds.Name)
	}
	return names
}
