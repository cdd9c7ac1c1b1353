package weather

// OneCall is the unified provider payload. Any collection may be absent when
// it was excluded from the request. WeatherClass and WindDirection fields are
// filled in by Enrich; everything else is upstream data.
type OneCall struct {
	Lat            float64           `json:"lat"`
	Lon            float64           `json:"lon"`
	Timezone       string            `json:"timezone"`
	TimezoneOffset int               `json:"timezone_offset"`
	Current        *CurrentWeather   `json:"current,omitempty"`
	Minutely       []MinutelyWeather `json:"minutely,omitempty"`
	Hourly         []HourlyWeather   `json:"hourly,omitempty"`
	Daily          []DailyWeather    `json:"daily,omitempty"`
	Alerts         []Alert           `json:"alerts,omitempty"`

	// Config echoes the request parameters the payload was fetched with.
	Config *RequestParams `json:"config,omitempty"`
}

// RequestParams are the unified provider query parameters, minus the API key.
type RequestParams struct {
	Lat     float64  `json:"lat"`
	Lon     float64  `json:"lon"`
	Units   string   `json:"units"`
	Exclude []string `json:"exclude,omitempty"`
}

// Condition is one embedded weather condition entry.
type Condition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`

	WeatherClass IconClass `json:"weatherClass,omitempty"`
}

// Precipitation is the hourly rain/snow volume block.
type Precipitation struct {
	OneHour float64 `json:"1h"`
}

// CurrentWeather is the observation for the request time.
type CurrentWeather struct {
	Dt         int64          `json:"dt"`
	Sunrise    int64          `json:"sunrise"`
	Sunset     int64          `json:"sunset"`
	Temp       float64        `json:"temp"`
	FeelsLike  float64        `json:"feels_like"`
	Pressure   float64        `json:"pressure"`
	Humidity   float64        `json:"humidity"`
	DewPoint   float64        `json:"dew_point"`
	UVI        float64        `json:"uvi"`
	Clouds     float64        `json:"clouds"`
	Visibility float64        `json:"visibility"`
	WindSpeed  float64        `json:"wind_speed"`
	WindDeg    float64        `json:"wind_deg"`
	WindGust   float64        `json:"wind_gust,omitempty"`
	Rain       *Precipitation `json:"rain,omitempty"`
	Snow       *Precipitation `json:"snow,omitempty"`
	Weather    []Condition    `json:"weather"`

	WindDirection string `json:"windDirection,omitempty"`
}

// MinutelyWeather is one minute of the precipitation nowcast.
type MinutelyWeather struct {
	Dt            int64   `json:"dt"`
	Precipitation float64 `json:"precipitation"`
}

// HourlyWeather is one hour of the 48-hour forecast.
type HourlyWeather struct {
	Dt         int64          `json:"dt"`
	Temp       float64        `json:"temp"`
	FeelsLike  float64        `json:"feels_like"`
	Pressure   float64        `json:"pressure"`
	Humidity   float64        `json:"humidity"`
	DewPoint   float64        `json:"dew_point"`
	UVI        float64        `json:"uvi"`
	Clouds     float64        `json:"clouds"`
	Visibility float64        `json:"visibility"`
	WindSpeed  float64        `json:"wind_speed"`
	WindDeg    float64        `json:"wind_deg"`
	WindGust   float64        `json:"wind_gust,omitempty"`
	Pop        float64        `json:"pop"`
	Rain       *Precipitation `json:"rain,omitempty"`
	Snow       *Precipitation `json:"snow,omitempty"`
	Weather    []Condition    `json:"weather"`

	WindDirection string `json:"windDirection,omitempty"`
}

// DailyTemp holds per-period temperatures of a daily record.
type DailyTemp struct {
	Day   float64 `json:"day"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Night float64 `json:"night"`
	Eve   float64 `json:"eve"`
	Morn  float64 `json:"morn"`
}

// DailyFeelsLike holds per-period feels-like temperatures of a daily record.
type DailyFeelsLike struct {
	Day   float64 `json:"day"`
	Night float64 `json:"night"`
	Eve   float64 `json:"eve"`
	Morn  float64 `json:"morn"`
}

// DailyWeather is one day of the daily forecast.
type DailyWeather struct {
	Dt        int64          `json:"dt"`
	Sunrise   int64          `json:"sunrise"`
	Sunset    int64          `json:"sunset"`
	Moonrise  int64          `json:"moonrise"`
	Moonset   int64          `json:"moonset"`
	MoonPhase float64        `json:"moon_phase"`
	Summary   string         `json:"summary,omitempty"`
	Temp      DailyTemp      `json:"temp"`
	FeelsLike DailyFeelsLike `json:"feels_like"`
	Pressure  float64        `json:"pressure"`
	Humidity  float64        `json:"humidity"`
	DewPoint  float64        `json:"dew_point"`
	WindSpeed float64        `json:"wind_speed"`
	WindDeg   float64        `json:"wind_deg"`
	WindGust  float64        `json:"wind_gust,omitempty"`
	Clouds    float64        `json:"clouds"`
	Pop       float64        `json:"pop"`
	Rain      float64        `json:"rain,omitempty"`
	Snow      float64        `json:"snow,omitempty"`
	UVI       float64        `json:"uvi"`
	Weather   []Condition    `json:"weather"`

	WindDirection string `json:"windDirection,omitempty"`
}

// Alert is a government weather alert for the location.
type Alert struct {
	SenderName  string   `json:"sender_name"`
	Event       string   `json:"event"`
	Start       int64    `json:"start"`
	End         int64    `json:"end"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
}
