package view

import (
	"fmt"

	"country-weather/internal/domain"
)

// UnavailableText is shown for countries without capital coordinates.
const UnavailableText = "Weather data not available for this country."

// capitalFallback labels a country that has coordinates but no capital name.
const capitalFallback = "Capital"

// PopupText renders the weather popup for a country.
func PopupText(country domain.Country, reading domain.WeatherReading) string {
	capital := country.Capital()
	if capital == "" {
		capital = capitalFallback
	}
	return fmt.Sprintf("Weather in %s: %s°C, Code: %s", capital, reading.TemperatureText(), reading.WeatherCodeText())
}
