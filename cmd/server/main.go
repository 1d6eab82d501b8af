package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"country-weather/internal/api"
	"country-weather/internal/cache"
	"country-weather/internal/client"
	"country-weather/internal/config"
	"country-weather/internal/httpclient"
	"country-weather/internal/metrics"
	"country-weather/internal/service"
	"country-weather/internal/view"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		slog.Error("Server failed", slog.Any("error", err))
		os.Exit(1)
	}
}

// run sets up and runs the application until ctx is canceled.
func run(ctx context.Context, args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}
	logger := cfg.NewLogger(os.Stdout)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	// Initialize dependencies
	getter := httpclient.New(cfg.UpstreamTimeout)
	countriesClient := client.NewRestCountriesClient(getter, m)
	countriesClient.BaseURL = cfg.CountriesURL
	countriesClient.Fields = cfg.CountriesFields
	weatherClient := client.NewOpenMeteoClient(getter, m)
	weatherClient.BaseURL = cfg.WeatherURL

	views := cache.NewInMemoryCache(cfg.ViewTTL)
	window := service.Window{Offset: cfg.ListOffset, Limit: cfg.ListLimit}
	contentService := service.NewContentService(views, countriesClient, weatherClient, window, logger)

	content := view.NewContent(contentService, m, logger)
	handler := api.NewHandler(contentService, content, view.NewBootstrap(content), logger)
	router := api.NewRouter(handler, api.RouterOptions{
		Logger:      logger,
		Metrics:     m,
		Gatherer:    reg,
		CORSOrigins: cfg.CORSOrigins,
	})

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.WriteTimeout(),
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error starting server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		logger.Info("Server gracefully stopped")
		return nil
	})

	return g.Wait()
}
