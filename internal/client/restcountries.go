package client

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"country-weather/internal/domain"
	"country-weather/internal/metrics"
)

const (
	defaultCountriesURL    = "https://restcountries.com/v3.1/all"
	defaultCountriesFields = "name,capital,capitalInfo"
)

// JSONGetter performs a GET and decodes the JSON body into out.
type JSONGetter interface {
	Get(ctx context.Context, url string, out interface{}) error
}

// RestCountriesClient interacts with the REST Countries API.
type RestCountriesClient struct {
	getter  JSONGetter
	metrics *metrics.Metrics
	BaseURL string
	// Fields is sent as the fields query parameter; empty sends none.
	Fields string
}

// NewRestCountriesClient creates a new client for the REST Countries API.
func NewRestCountriesClient(getter JSONGetter, m *metrics.Metrics) *RestCountriesClient {
	return &RestCountriesClient{
		getter:  getter,
		metrics: m,
		BaseURL: defaultCountriesURL,
		Fields:  defaultCountriesFields,
	}
}

// restCountry is the subset of a REST Countries v3.1 entry we read.
type restCountry struct {
	Name *struct {
		Common string `json:"common"`
	} `json:"name"`
	Capital     []string `json:"capital"`
	CapitalInfo struct {
		LatLng []float64 `json:"latlng"`
	} `json:"capitalInfo"`
}

// FetchCountries fetches the full country list, in API order.
func (c *RestCountriesClient) FetchCountries(ctx context.Context) (countries []domain.Country, err error) {
	ctx, span := otel.Tracer("RestCountriesClient").Start(ctx, "FetchCountries")
	defer span.End()

	start := time.Now()
	defer func() {
		c.metrics.ObserveUpstream(metrics.UpstreamCountries, start, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "fetch countries failed")
		}
	}()

	u, err := c.requestURL()
	if err != nil {
		return nil, err
	}

	var apiResponse []restCountry
	if err := c.getter.Get(ctx, u, &apiResponse); err != nil {
		return nil, fmt.Errorf("failed to fetch countries: %w", err)
	}

	countries = make([]domain.Country, 0, len(apiResponse))
	for i, rc := range apiResponse {
		country, err := mapToDomain(rc)
		if err != nil {
			return nil, fmt.Errorf("country at index %d: %w", i, err)
		}
		countries = append(countries, country)
	}

	span.SetAttributes(attribute.Int("countries.count", len(countries)))
	return countries, nil
}

func (c *RestCountriesClient) requestURL() (string, error) {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid countries url %q: %w", c.BaseURL, err)
	}
	if c.Fields != "" {
		q := u.Query()
		q.Set("fields", c.Fields)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// mapToDomain converts an API entry to our domain model.
func mapToDomain(data restCountry) (domain.Country, error) {
	if data.Name == nil {
		return domain.Country{}, fmt.Errorf("invalid 'name' field in API response")
	}
	if data.Name.Common == "" {
		return domain.Country{}, fmt.Errorf("invalid 'common' name in API response")
	}

	country := domain.Country{
		Name:     data.Name.Common,
		Capitals: data.Capital,
	}
	if latlng := data.CapitalInfo.LatLng; len(latlng) >= 2 {
		country.CapitalCoords = &domain.Coordinates{Latitude: latlng[0], Longitude: latlng[1]}
	}
	return country, nil
}
