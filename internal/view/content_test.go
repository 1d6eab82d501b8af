package view

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html/atom"

	"country-weather/internal/cache"
	"country-weather/internal/domain"
	"country-weather/internal/metrics"
	"country-weather/internal/service"
)

// MockCountryClient satisfies service.CountryClient.
type MockCountryClient struct {
	FetchCountriesFunc func(ctx context.Context) ([]domain.Country, error)
}

func (m *MockCountryClient) FetchCountries(ctx context.Context) ([]domain.Country, error) {
	return m.FetchCountriesFunc(ctx)
}

// MockWeatherClient satisfies service.WeatherClient.
type MockWeatherClient struct {
	FetchWeatherFunc func(ctx context.Context, latitude, longitude float64) (domain.WeatherReading, error)
}

func (m *MockWeatherClient) FetchWeather(ctx context.Context, latitude, longitude float64) (domain.WeatherReading, error) {
	return m.FetchWeatherFunc(ctx, latitude, longitude)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestContent(countries service.CountryClient, weather service.WeatherClient, window service.Window, m *metrics.Metrics) *Content {
	svc := service.NewContentService(cache.NewInMemoryCache(time.Minute), countries, weather, window, discardLogger())
	return NewContent(svc, m, discardLogger())
}

func staticCountries(countries ...domain.Country) *MockCountryClient {
	return &MockCountryClient{
		FetchCountriesFunc: func(ctx context.Context) ([]domain.Country, error) {
			return countries, nil
		},
	}
}

func TestContent_Build(t *testing.T) {
	var countries []domain.Country
	for i := 0; i < 15; i++ {
		countries = append(countries, domain.Country{Name: "Country " + strconv.Itoa(i)})
	}
	content := newTestContent(staticCountries(countries...), nil, service.Window{Offset: 2, Limit: 10}, nil)

	root := content.Build(context.Background())

	assert.Equal(t, atom.Main, root.DataAtom)
	assert.Equal(t, "content", attrOf(root, "class"))
	uls := findAll(root, atom.Ul)
	require.Len(t, uls, 1)
	viewID := attrOf(uls[0], "data-view-id")
	require.NotEmpty(t, viewID)

	items := findAll(root, atom.Li)
	require.Len(t, items, 10)
	for i, li := range items {
		assert.Equal(t, "Country "+strconv.Itoa(i+2), textOf(li))
		assert.Equal(t, PopupPath(viewID, i), attrOf(li, "data-popup-url"))
	}
}

func TestContent_Build_EscapesNames(t *testing.T) {
	content := newTestContent(staticCountries(domain.Country{Name: "<b>Bold</b> & Co"}), nil, service.Window{Limit: 10}, nil)

	out := render(t, content.Build(context.Background()))
	assert.Contains(t, out, "&lt;b&gt;Bold&lt;/b&gt; &amp; Co")
	assert.NotContains(t, out, "<b>")
}

func TestContent_Click_Weather(t *testing.T) {
	weather := &MockWeatherClient{
		FetchWeatherFunc: func(ctx context.Context, latitude, longitude float64) (domain.WeatherReading, error) {
			assert.Equal(t, 7.19, latitude)
			assert.Equal(t, 5.13, longitude)
			return domain.WeatherReading{Temperature: 21.5, WeatherCode: 1, Available: true}, nil
		},
	}
	wakanda := domain.Country{
		Name:          "Wakanda",
		Capitals:      []string{"Birnin Zana"},
		CapitalCoords: &domain.Coordinates{Latitude: 7.19, Longitude: 5.13},
	}
	m := metrics.New(prometheus.NewRegistry())
	content := newTestContent(staticCountries(wakanda), weather, service.Window{Limit: 10}, m)

	viewID := attrOf(findAll(content.Build(context.Background()), atom.Ul)[0], "data-view-id")
	popup := <-content.Click(context.Background(), viewID, 0)

	assert.True(t, popup.Found)
	assert.Equal(t, "Weather in Birnin Zana: 21.5°C, Code: 1", popup.Message)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Popups.WithLabelValues(PopupWeather)))
}

func TestContent_Click_NoCoordinates(t *testing.T) {
	var weatherCalls int32
	weather := &MockWeatherClient{
		FetchWeatherFunc: func(ctx context.Context, latitude, longitude float64) (domain.WeatherReading, error) {
			atomic.AddInt32(&weatherCalls, 1)
			return domain.WeatherReading{}, nil
		},
	}
	content := newTestContent(staticCountries(domain.Country{Name: "Atlantis"}), weather, service.Window{Limit: 10}, nil)

	viewID := attrOf(findAll(content.Build(context.Background()), atom.Ul)[0], "data-view-id")
	popup := <-content.Click(context.Background(), viewID, 0)

	assert.True(t, popup.Found)
	assert.Equal(t, "Weather data not available for this country.", popup.Message)
	assert.Equal(t, int32(0), atomic.LoadInt32(&weatherCalls))
}

func TestContent_Click_UnknownEntry(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	content := newTestContent(staticCountries(), nil, service.Window{Limit: 10}, m)

	popup := <-content.Click(context.Background(), "missing", 0)
	assert.False(t, popup.Found)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Popups.WithLabelValues(PopupNotFound)))
}

func TestContent_Click_ChannelClosedAfterOnePopup(t *testing.T) {
	content := newTestContent(staticCountries(domain.Country{Name: "Atlantis"}), nil, service.Window{Limit: 10}, nil)
	viewID := attrOf(findAll(content.Build(context.Background()), atom.Ul)[0], "data-view-id")

	ch := content.Click(context.Background(), viewID, 0)
	_, ok := <-ch
	assert.True(t, ok)
	_, ok = <-ch
	assert.False(t, ok)
}

func TestContent_ConcurrentClicks(t *testing.T) {
	var countries []domain.Country
	for i := 0; i < 5; i++ {
		countries = append(countries, domain.Country{
			Name:          "Country " + strconv.Itoa(i),
			Capitals:      []string{"Capital " + strconv.Itoa(i)},
			CapitalCoords: &domain.Coordinates{Latitude: float64(i), Longitude: float64(i)},
		})
	}
	var weatherCalls int32
	weather := &MockWeatherClient{
		FetchWeatherFunc: func(ctx context.Context, latitude, longitude float64) (domain.WeatherReading, error) {
			atomic.AddInt32(&weatherCalls, 1)
			time.Sleep(10 * time.Millisecond)
			return domain.WeatherReading{Temperature: latitude, WeatherCode: int(longitude), Available: true}, nil
		},
	}
	content := newTestContent(staticCountries(countries...), weather, service.Window{Limit: 10}, nil)
	viewID := attrOf(findAll(content.Build(context.Background()), atom.Ul)[0], "data-view-id")

	// Each entry is clicked twice; every click gets its own popup.
	var wg sync.WaitGroup
	popups := make([]Popup, 10)
	for i := range popups {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			popups[i] = <-content.Click(context.Background(), viewID, i%5)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(10), atomic.LoadInt32(&weatherCalls), "clicks are not de-duplicated")
	for i, p := range popups {
		n := strconv.Itoa(i % 5)
		assert.Equal(t, "Weather in Capital "+n+": "+n+"°C, Code: "+n, p.Message)
	}
}
