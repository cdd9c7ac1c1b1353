package weather

import "time"

// Daily records are classified against a fixed window in which the record
// always falls before sunset.
var (
	dailySunrise = time.Unix(0, 0)
	dailySunset  = time.Unix(2, 0)
	dailyAt      = time.Unix(1, 0)

	noSunset = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)
)

// Enrich attaches icon classes and compass directions to every record of
// data. Collections that are absent are skipped; upstream fields are never
// modified.
func Enrich(data *OneCall) {
	if data == nil {
		return
	}

	if cur := data.Current; cur != nil {
		sunrise, sunset := time.Unix(cur.Sunrise, 0), time.Unix(cur.Sunset, 0)
		at := time.Unix(cur.Dt, 0)
		for i := range cur.Weather {
			w := &cur.Weather[i]
			w.WeatherClass = ClassifyCondition(w.ID, cur.FeelsLike, sunrise, sunset, at)
		}
		cur.WindDirection = ClassifyWindDirection(cur.WindDeg)
	}

	if len(data.Hourly) > 0 {
		sunrise, sunset := hourlyWindow(data)
		for i := range data.Hourly {
			h := &data.Hourly[i]
			at := time.Unix(h.Dt, 0)
			for j := range h.Weather {
				w := &h.Weather[j]
				w.WeatherClass = ClassifyCondition(w.ID, h.FeelsLike, sunrise, sunset, at)
			}
			h.WindDirection = ClassifyWindDirection(h.WindDeg)
		}
	}

	for i := range data.Daily {
		d := &data.Daily[i]
		for j := range d.Weather {
			w := &d.Weather[j]
			w.WeatherClass = ClassifyCondition(w.ID, d.FeelsLike.Day, dailySunrise, dailySunset, dailyAt)
		}
		d.WindDirection = ClassifyWindDirection(d.WindDeg)
	}
}

// hourlyWindow picks the sunrise/sunset every hourly record is judged
// against: the current record's, else the first day's, else the daily window.
func hourlyWindow(data *OneCall) (time.Time, time.Time) {
	switch {
	case data.Current != nil:
		return time.Unix(data.Current.Sunrise, 0), time.Unix(data.Current.Sunset, 0)
	case len(data.Daily) > 0:
		return time.Unix(data.Daily[0].Sunrise, 0), time.Unix(data.Daily[0].Sunset, 0)
	default:
		// No sunset reference: every hour counts as daytime.
		return dailySunrise, noSunset
	}
}
