package domain

import "strconv"

// NotAvailable is how a missing temperature or weather code is displayed.
const NotAvailable = "N/A"

// WeatherReading is the current weather at a point.
// A reading with Available set to false carries no data.
type WeatherReading struct {
	Temperature float64 `json:"temperature"`
	WeatherCode int     `json:"weather_code"`
	Available   bool    `json:"available"`
}

// Unavailable returns the reading used when weather could not be fetched.
func Unavailable() WeatherReading {
	return WeatherReading{}
}

// TemperatureText formats the temperature in °C, or N/A.
func (w WeatherReading) TemperatureText() string {
	if !w.Available {
		return NotAvailable
	}
	return strconv.FormatFloat(w.Temperature, 'f', -1, 64)
}

// WeatherCodeText formats the WMO weather code, or N/A.
func (w WeatherReading) WeatherCodeText() string {
	if !w.Available {
		return NotAvailable
	}
	return strconv.Itoa(w.WeatherCode)
}
