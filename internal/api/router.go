package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"country-weather/internal/metrics"
	"country-weather/internal/view"
)

// RouterOptions carries the cross-cutting dependencies of the router.
type RouterOptions struct {
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	CORSOrigins []string
}

// NewRouter creates and configures the HTTP router.
func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestID)
	r.Use(Instrument(opts.Logger, opts.Metrics))

	r.Get("/", h.Page)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(view.Assets()))))
	r.Get("/healthz", h.Health)
	r.Get("/readyz", h.Health)
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(api chi.Router) {
		api.Use(cors.New(cors.Options{
			AllowedOrigins: opts.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
			ExposedHeaders: []string{requestIDHeader},
		}).Handler)
		api.Get("/countries", h.ListCountries)
		api.Get("/weather", h.GetWeather)
		api.Get("/views/{viewID}/countries/{index}/popup", h.Popup)
	})

	return otelhttp.NewHandler(r, "country-weather")
}
