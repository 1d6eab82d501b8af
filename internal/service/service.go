package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"country-weather/internal/cache"
	"country-weather/internal/domain"
)

// ErrViewNotFound is returned when a view ID or list index does not resolve
// to a rendered entry.
var ErrViewNotFound = errors.New("view entry not found")

// CountryClient defines the interface for an external country data source.
// This allows us to mock the client in tests.
type CountryClient interface {
	FetchCountries(ctx context.Context) ([]domain.Country, error)
}

// WeatherClient defines the interface for an external weather source.
type WeatherClient interface {
	FetchWeather(ctx context.Context, latitude, longitude float64) (domain.WeatherReading, error)
}

// ContentService is the fail-soft boundary between the API clients and the views.
// None of its methods surface upstream errors.
type ContentService interface {
	FetchCountries(ctx context.Context) []domain.Country
	FetchWeather(ctx context.Context, latitude, longitude float64) domain.WeatherReading
	Window(countries []domain.Country) []domain.Country
	SaveView(countries []domain.Country) string
	LookupEntry(viewID string, index int) (domain.Country, error)
}

// Window bounds the slice of countries that is rendered.
// A Limit of zero or less means no upper bound.
type Window struct {
	Offset int
	Limit  int
}

type contentService struct {
	views     cache.Cache
	countries CountryClient
	weather   WeatherClient
	window    Window
	logger    *slog.Logger
}

// NewContentService creates a new instance of the content service.
func NewContentService(views cache.Cache, countries CountryClient, weather WeatherClient, window Window, logger *slog.Logger) ContentService {
	return &contentService{
		views:     views,
		countries: countries,
		weather:   weather,
		window:    window,
		logger:    logger,
	}
}

// FetchCountries returns the full country list, or an empty list when the
// upstream call fails for any reason.
func (s *contentService) FetchCountries(ctx context.Context) []domain.Country {
	ctx, span := otel.Tracer("ContentService").Start(ctx, "FetchCountries")
	defer span.End()

	countries, err := s.countries.FetchCountries(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error fetching countries", slog.Any("error", err))
		return []domain.Country{}
	}
	span.SetAttributes(attribute.Int("countries.count", len(countries)))
	return countries
}

// FetchWeather returns the current weather, or domain.Unavailable() when the
// upstream call fails for any reason.
func (s *contentService) FetchWeather(ctx context.Context, latitude, longitude float64) domain.WeatherReading {
	ctx, span := otel.Tracer("ContentService").Start(ctx, "FetchWeather")
	defer span.End()

	reading, err := s.weather.FetchWeather(ctx, latitude, longitude)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error fetching weather",
			slog.Float64("latitude", latitude),
			slog.Float64("longitude", longitude),
			slog.Any("error", err))
		return domain.Unavailable()
	}
	return reading
}

// Window selects the configured sub-range, clamped to the list bounds.
func (s *contentService) Window(countries []domain.Country) []domain.Country {
	start := s.window.Offset
	if start < 0 {
		start = 0
	}
	if start > len(countries) {
		start = len(countries)
	}
	end := len(countries)
	if s.window.Limit > 0 && s.window.Limit < end-start {
		end = start + s.window.Limit
	}
	return countries[start:end]
}

// SaveView stores a rendered list and returns the ID clicks refer to it by.
func (s *contentService) SaveView(countries []domain.Country) string {
	viewID := uuid.NewString()
	entries := make([]domain.Country, len(countries))
	copy(entries, countries)
	s.views.Set(viewID, entries)
	s.logger.Debug("View saved", slog.String("view_id", viewID), slog.Int("entries", len(entries)))
	return viewID
}

// LookupEntry resolves a list entry of a previously saved view.
func (s *contentService) LookupEntry(viewID string, index int) (domain.Country, error) {
	cached, found := s.views.Get(viewID)
	if !found {
		return domain.Country{}, fmt.Errorf("view %q: %w", viewID, ErrViewNotFound)
	}
	entries, ok := cached.([]domain.Country)
	if !ok {
		return domain.Country{}, fmt.Errorf("view %q has unexpected type %T: %w", viewID, cached, ErrViewNotFound)
	}
	if index < 0 || index >= len(entries) {
		return domain.Country{}, fmt.Errorf("view %q index %d: %w", viewID, index, ErrViewNotFound)
	}
	return entries[index], nil
}
