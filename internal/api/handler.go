package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"country-weather/internal/service"
	"country-weather/internal/view"
)

// Handler handles HTTP requests for the page and its API.
type Handler struct {
	service   service.ContentService
	content   *view.Content
	bootstrap *view.Bootstrap
	logger    *slog.Logger
}

// NewHandler creates a new handler over the content service and views.
func NewHandler(s service.ContentService, content *view.Content, bootstrap *view.Bootstrap, logger *slog.Logger) *Handler {
	return &Handler{
		service:   s,
		content:   content,
		bootstrap: bootstrap,
		logger:    logger,
	}
}

// Page renders the full document for GET /.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.bootstrap.Render(r.Context(), &buf); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to render page", slog.Any("error", err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to write page", slog.Any("error", err))
	}
}

// ListCountries is the handler for the /api/countries endpoint.
func (h *Handler) ListCountries(w http.ResponseWriter, r *http.Request) {
	countries := h.service.Window(h.service.FetchCountries(r.Context()))
	h.writeJSON(w, r, http.StatusOK, countries)
}

// GetWeather is the handler for the /api/weather endpoint.
func (h *Handler) GetWeather(w http.ResponseWriter, r *http.Request) {
	lat, err := parseCoord(r.URL.Query().Get("latitude"), 90)
	if err != nil {
		http.Error(w, `{"error": "Query parameter 'latitude' must be a number between -90 and 90"}`, http.StatusBadRequest)
		return
	}
	lon, err := parseCoord(r.URL.Query().Get("longitude"), 180)
	if err != nil {
		http.Error(w, `{"error": "Query parameter 'longitude' must be a number between -180 and 180"}`, http.StatusBadRequest)
		return
	}

	reading := h.service.FetchWeather(r.Context(), lat, lon)
	h.writeJSON(w, r, http.StatusOK, weatherResponse{
		Temperature: reading.TemperatureText(),
		WeatherCode: reading.WeatherCodeText(),
		Available:   reading.Available,
	})
}

type weatherResponse struct {
	Temperature string `json:"temperature"`
	WeatherCode string `json:"weather_code"`
	Available   bool   `json:"available"`
}

type popupResponse struct {
	Message string `json:"message"`
}

// Popup answers a click on a rendered list entry.
func (h *Handler) Popup(w http.ResponseWriter, r *http.Request) {
	viewID := chi.URLParam(r, "viewID")
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, `{"error": "Path parameter 'index' must be an integer"}`, http.StatusBadRequest)
		return
	}

	select {
	case popup := <-h.content.Click(r.Context(), viewID, index):
		if !popup.Found {
			http.Error(w, `{"error": "Country not found"}`, http.StatusNotFound)
			return
		}
		h.writeJSON(w, r, http.StatusOK, popupResponse{Message: popup.Message})
	case <-r.Context().Done():
		h.logger.WarnContext(r.Context(), "Client went away before the popup was ready", slog.String("view_id", viewID))
	}
}

// Health reports liveness for /healthz and /readyz.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to encode response", slog.Any("error", err))
	}
}

var errCoordRange = errors.New("coordinate out of range")

func parseCoord(s string, limit float64) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f < -limit || f > limit {
		return 0, errCoordRange
	}
	return f, nil
}
