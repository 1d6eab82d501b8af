package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"country-weather/internal/domain"
	"country-weather/internal/metrics"
)

const defaultWeatherURL = "https://api.open-meteo.com/v1/forecast"

// OpenMeteoClient fetches current weather from the Open-Meteo forecast API.
type OpenMeteoClient struct {
	getter  JSONGetter
	metrics *metrics.Metrics
	BaseURL string
}

// NewOpenMeteoClient creates a new client for the Open-Meteo API.
func NewOpenMeteoClient(getter JSONGetter, m *metrics.Metrics) *OpenMeteoClient {
	return &OpenMeteoClient{
		getter:  getter,
		metrics: m,
		BaseURL: defaultWeatherURL,
	}
}

// FetchWeather fetches the current weather at the given coordinates.
func (c *OpenMeteoClient) FetchWeather(ctx context.Context, latitude, longitude float64) (reading domain.WeatherReading, err error) {
	ctx, span := otel.Tracer("OpenMeteoClient").Start(ctx, "FetchWeather")
	defer span.End()
	span.SetAttributes(attribute.Float64("latitude", latitude), attribute.Float64("longitude", longitude))

	start := time.Now()
	defer func() {
		c.metrics.ObserveUpstream(metrics.UpstreamWeather, start, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "fetch weather failed")
		}
	}()

	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return domain.WeatherReading{}, fmt.Errorf("invalid weather url %q: %w", c.BaseURL, err)
	}
	q := u.Query()
	q.Set("latitude", formatCoord(latitude))
	q.Set("longitude", formatCoord(longitude))
	q.Set("current_weather", "true")
	u.RawQuery = q.Encode()

	var payload struct {
		CurrentWeather *struct {
			Temperature *float64 `json:"temperature"`
			WeatherCode *int     `json:"weathercode"`
		} `json:"current_weather"`
	}
	if err := c.getter.Get(ctx, u.String(), &payload); err != nil {
		return domain.WeatherReading{}, fmt.Errorf("failed to fetch weather: %w", err)
	}

	cw := payload.CurrentWeather
	if cw == nil || cw.Temperature == nil || cw.WeatherCode == nil {
		return domain.WeatherReading{}, errors.New("missing 'current_weather' data in API response")
	}

	return domain.WeatherReading{
		Temperature: *cw.Temperature,
		WeatherCode: *cw.WeatherCode,
		Available:   true,
	}, nil
}

// formatCoord writes the shortest decimal that round-trips, so 7.19 stays "7.19".
func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
