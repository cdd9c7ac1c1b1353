package weather

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var (
	t0   = time.Unix(0, 0)
	t50  = time.Unix(50, 0)
	t100 = time.Unix(100, 0)
	t150 = time.Unix(150, 0)
)

func TestClassifyConditionTable(t *testing.T) {
	tests := map[int]IconClass{
		200: "wi-storm-showers", 210: "wi-storm-showers", 221: "wi-storm-showers", 230: "wi-storm-showers", 231: "wi-storm-showers",
		201: "wi-thunderstorm", 202: "wi-thunderstorm", 211: "wi-thunderstorm", 212: "wi-thunderstorm", 232: "wi-thunderstorm",
		300: "wi-showers", 301: "wi-showers", 310: "wi-showers", 313: "wi-showers", 321: "wi-showers",
		302: "wi-rain", 311: "wi-rain", 312: "wi-rain", 314: "wi-rain",
		500: "wi-sprinkle", 501: "wi-sprinkle", 520: "wi-sprinkle", 521: "wi-sprinkle", 531: "wi-sprinkle",
		502: "wi-raindrops", 503: "wi-raindrops", 504: "wi-raindrops", 522: "wi-raindrops",
		511: "wi-rain-mix", 615: "wi-rain-mix", 616: "wi-rain-mix",
		600: "wi-snow", 601: "wi-snow", 620: "wi-snow", 621: "wi-snow",
		602: "wi-snowflake-cold", 622: "wi-snowflake-cold",
		611: "wi-sleet", 612: "wi-sleet", 613: "wi-sleet",
		701: "wi-fog", 741: "wi-fog",
		711: "wi-smoke", 721: "wi-smoke",
		731: "wi-dust", 751: "wi-dust", 761: "wi-dust", 762: "wi-dust",
		771: "wi-hail",
		781: "wi-tornado",
		803: "wi-cloudy",
		804: "wi-cloud",
	}
	for code, want := range tests {
		for _, feelsLike := range []float64{-40, 10, 60, 100} {
			assert.Equal(t, want, ClassifyCondition(code, feelsLike, t0, t100, t50), "code %d day", code)
			assert.Equal(t, want, ClassifyCondition(code, feelsLike, t0, t100, t150), "code %d night", code)
		}
	}

	// Every code the classifier knows is covered above.
	assert.Len(t, conditionTable, len(tests))
}

func TestClassifyConditionClear(t *testing.T) {
	tests := []struct {
		name      string
		feelsLike float64
		at        time.Time
		want      IconClass
	}{
		{"hot day", 95, t50, IconHot},
		{"mild day", 70, t50, IconDaySunny},
		{"threshold is exclusive by day", hotThreshold, t50, IconDaySunny},
		{"starry night", 10, t150, IconStars},
		{"clear night", 40, t150, IconNightClear},
		{"threshold is exclusive by night", coldThreshold, t150, IconNightClear},
		{"sunset itself is night", 10, t100, IconStars},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyCondition(codeClear, tt.feelsLike, t0, t100, tt.at))
		})
	}
}

func TestClassifyConditionPartlyCloudy(t *testing.T) {
	for _, code := range []int{codeFewClouds, codeScatteredClds} {
		assert.Equal(t, IconDayCloudy, ClassifyCondition(code, 60, t0, t100, t50))
		assert.Equal(t, IconNightCloudy, ClassifyCondition(code, 60, t0, t100, t150))
	}
}

func TestClassifyConditionFallback(t *testing.T) {
	for _, code := range []int{0, -1, 199, 233, 805, 900, 10000} {
		assert.Equal(t, IconFallback, ClassifyCondition(code, 60, t0, t100, t50), "code %d", code)
	}
}

func TestClassifyWindDirection(t *testing.T) {
	tests := []struct {
		degrees float64
		want    string
	}{
		{0, "N"},
		{5, "N"},
		{11.25, "NNE"},
		{22.5, "NE"},
		{45, "ENE"},
		{90, "ESE"},
		{180, "SSW"},
		{200, "SSW"},
		{270, "WNW"},
		{337.5, "N"},
		{359.9, "N"},
		{360, "N"},
		{370, "N"},
		{450, "ESE"},
		{-5, "N"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyWindDirection(tt.degrees), "degrees %v", tt.degrees)
	}

	assert.Empty(t, ClassifyWindDirection(math.NaN()))
	assert.Empty(t, ClassifyWindDirection(math.Inf(1)))
}

func TestClassifiersAreDeterministic(t *testing.T) {
	for code := 190; code < 820; code++ {
		assert.Equal(t, ClassifyCondition(code, 75, t0, t100, t50), ClassifyCondition(code, 75, t0, t100, t50))
	}
	for deg := -10.0; deg < 400; deg += 0.75 {
		assert.Equal(t, ClassifyWindDirection(deg), ClassifyWindDirection(deg))
	}
}
