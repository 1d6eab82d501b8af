package view

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"country-weather/internal/metrics"
	"country-weather/internal/service"
)

// Popup kinds, used as metric labels.
const (
	PopupWeather     = "weather"
	PopupUnavailable = "unavailable"
	PopupNotFound    = "not_found"
)

// Popup is what a click on a list entry displays.
// Found is false when the click referred to an unknown view or entry.
type Popup struct {
	Message string
	Found   bool
}

// Content builds the country list and answers clicks on its entries.
type Content struct {
	service service.ContentService
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewContent creates the content view.
func NewContent(svc service.ContentService, m *metrics.Metrics, logger *slog.Logger) *Content {
	return &Content{service: svc, metrics: m, logger: logger}
}

// PopupPath is the URL a list entry's click is sent to.
func PopupPath(viewID string, index int) string {
	return fmt.Sprintf("/api/views/%s/countries/%d/popup", viewID, index)
}

// Build fetches the countries and renders the windowed list. It never fails:
// an upstream failure renders an empty list.
func (c *Content) Build(ctx context.Context) *html.Node {
	countries := c.service.Window(c.service.FetchCountries(ctx))
	viewID := c.service.SaveView(countries)

	root := element(atom.Main, attr("class", "content"))
	list := element(atom.Ul, attr("class", "country-list"), attr("data-view-id", viewID))
	for i, country := range countries {
		li := element(atom.Li,
			attr("data-index", strconv.Itoa(i)),
			attr("data-popup-url", PopupPath(viewID, i)),
		)
		li.AppendChild(text(country.Name))
		list.AppendChild(li)
	}
	root.AppendChild(list)

	c.logger.DebugContext(ctx, "Content built", slog.String("view_id", viewID), slog.Int("entries", len(countries)))
	return root
}

// Click starts one independent lookup for the entry and returns a channel
// that receives exactly one Popup. Concurrent clicks are not coordinated.
func (c *Content) Click(ctx context.Context, viewID string, index int) <-chan Popup {
	out := make(chan Popup, 1)
	go func() {
		defer close(out)
		out <- c.popup(ctx, viewID, index)
	}()
	return out
}

func (c *Content) popup(ctx context.Context, viewID string, index int) Popup {
	country, err := c.service.LookupEntry(viewID, index)
	if err != nil {
		c.logger.WarnContext(ctx, "Click on unknown entry", slog.Any("error", err))
		c.metrics.ObservePopup(PopupNotFound)
		return Popup{}
	}

	if !country.HasCapitalCoords() {
		c.metrics.ObservePopup(PopupUnavailable)
		return Popup{Message: UnavailableText, Found: true}
	}

	coords := country.CapitalCoords
	reading := c.service.FetchWeather(ctx, coords.Latitude, coords.Longitude)
	c.metrics.ObservePopup(PopupWeather)
	return Popup{Message: PopupText(country, reading), Found: true}
}
