package weather

import (
	"math"
	"time"
)

// IconClass is a weather-icons CSS class summarizing a condition.
type IconClass string

const (
	IconStormShowers  IconClass = "wi-storm-showers"
	IconThunderstorm  IconClass = "wi-thunderstorm"
	IconShowers       IconClass = "wi-showers"
	IconRain          IconClass = "wi-rain"
	IconSprinkle      IconClass = "wi-sprinkle"
	IconRaindrops     IconClass = "wi-raindrops"
	IconRainMix       IconClass = "wi-rain-mix"
	IconSnow          IconClass = "wi-snow"
	IconSnowflakeCold IconClass = "wi-snowflake-cold"
	IconSleet         IconClass = "wi-sleet"
	IconFog           IconClass = "wi-fog"
	IconSmoke         IconClass = "wi-smoke"
	IconDust          IconClass = "wi-dust"
	IconHail          IconClass = "wi-hail"
	IconTornado       IconClass = "wi-tornado"
	IconHot           IconClass = "wi-hot"
	IconDaySunny      IconClass = "wi-day-sunny"
	IconStars         IconClass = "wi-stars"
	IconNightClear    IconClass = "wi-night-clear"
	IconDayCloudy     IconClass = "wi-day-cloudy"
	IconNightCloudy   IconClass = "wi-night-alt-cloudy"
	IconCloudy        IconClass = "wi-cloudy"
	IconCloud         IconClass = "wi-cloud"

	// IconFallback is returned for codes the table does not know.
	IconFallback IconClass = "wi-meteor"
)

const (
	codeClear         = 800
	codeFewClouds     = 801
	codeScatteredClds = 802

	// Feels-like thresholds, in the units the payload was requested in.
	hotThreshold  = 90.0
	coldThreshold = 20.0
)

// conditionGroups maps condition codes to their icon. A code listed in more
// than one group upstream (321) belongs to the first one.
var conditionGroups = []struct {
	icon  IconClass
	codes []int
}{
	{IconStormShowers, []int{200, 210, 221, 230, 231}},
	{IconThunderstorm, []int{201, 202, 211, 212, 232}},
	{IconShowers, []int{300, 301, 310, 313, 321}},
	{IconRain, []int{302, 311, 312, 314}},
	{IconSprinkle, []int{500, 501, 520, 521, 531}},
	{IconRaindrops, []int{502, 503, 504, 522}},
	{IconRainMix, []int{511, 615, 616}},
	{IconSnow, []int{600, 601, 620, 621}},
	{IconSnowflakeCold, []int{602, 622}},
	{IconSleet, []int{611, 612, 613}},
	{IconFog, []int{701, 741}},
	{IconSmoke, []int{711, 721}},
	{IconDust, []int{731, 751, 761, 762}},
	{IconHail, []int{771}},
	{IconTornado, []int{781}},
	{IconCloudy, []int{803}},
	{IconCloud, []int{804}},
}

var conditionTable = buildConditionTable()

func buildConditionTable() map[int]IconClass {
	table := make(map[int]IconClass)
	for _, g := range conditionGroups {
		for _, code := range g.codes {
			if _, seen := table[code]; !seen {
				table[code] = g.icon
			}
		}
	}
	return table
}

// ClassifyCondition maps a provider condition code to an icon class. Clear and
// partly cloudy codes depend on whether at falls before sunset; clear skies
// additionally depend on the feels-like temperature. sunrise is accepted for
// symmetry with the payload but does not influence the result.
func ClassifyCondition(code int, feelsLike float64, sunrise, sunset, at time.Time) IconClass {
	day := at.Before(sunset)

	switch code {
	case codeClear:
		if day {
			if feelsLike > hotThreshold {
				return IconHot
			}
			return IconDaySunny
		}
		if feelsLike < coldThreshold {
			return IconStars
		}
		return IconNightClear
	case codeFewClouds, codeScatteredClds:
		if day {
			return IconDayCloudy
		}
		return IconNightCloudy
	}

	if icon, ok := conditionTable[code]; ok {
		return icon
	}
	return IconFallback
}

// compassPoints is indexed by floor(degrees/22.5). Index 0 is NNE and the
// sub-11.25 band is answered with "N" before the lookup.
var compassPoints = [16]string{
	"NNE", "NE", "ENE", "E", "ESE", "SE", "SSE", "S",
	"SSW", "SW", "WSW", "W", "WNW", "NW", "NNW", "N",
}

const northBand = 11.25

// ClassifyWindDirection renders a wind bearing as a 16-point compass label.
func ClassifyWindDirection(degrees float64) string {
	if math.IsNaN(degrees) || math.IsInf(degrees, 1) {
		return ""
	}
	if degrees < northBand {
		return "N"
	}
	if degrees >= 360 {
		degrees = math.Mod(degrees, 360)
		if degrees < northBand {
			return "N"
		}
	}
	return compassPoints[int(math.Floor(degrees/22.5))]
}
