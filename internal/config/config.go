package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the server settings.
type Config struct {
	Port            int
	CountriesURL    string
	CountriesFields string
	WeatherURL      string
	ListOffset      int
	ListLimit       int
	ViewTTL         time.Duration
	UpstreamTimeout time.Duration
	CORSOrigins     []string
	LogLevel        string
	LogFormat       string
}

// Addr is the listen address for the configured port.
func (c Config) Addr() string { return ":" + strconv.Itoa(c.Port) }

// WriteTimeout bounds a response write. It leaves room for one upstream call
// when UpstreamTimeout is set and is unbounded otherwise, so a slow upstream
// never cuts off a page that is still being built.
func (c Config) WriteTimeout() time.Duration {
	if c.UpstreamTimeout <= 0 {
		return 0
	}
	return c.UpstreamTimeout + 10*time.Second
}

// Load reads the configuration. Later sources win: defaults, the env file
// named by ENV_FILE (default .env, optional), the process environment, then
// command-line flags in args.
func Load(args []string) (Config, error) {
	env, err := newEnv(os.Getenv("ENV_FILE"))
	if err != nil {
		return Config{}, err
	}

	c := Config{
		Port:            env.getInt("PORT", 8080),
		CountriesURL:    env.getString("COUNTRIES_URL", "https://restcountries.com/v3.1/all"),
		CountriesFields: env.getString("COUNTRIES_FIELDS", "name,capital,capitalInfo"),
		WeatherURL:      env.getString("WEATHER_URL", "https://api.open-meteo.com/v1/forecast"),
		ListOffset:      env.getInt("LIST_OFFSET", 0),
		ListLimit:       env.getInt("LIST_LIMIT", 10),
		ViewTTL:         env.getDuration("VIEW_TTL", 30*time.Minute),
		UpstreamTimeout: env.getDuration("UPSTREAM_TIMEOUT", 0),
		LogLevel:        env.getString("LOG_LEVEL", "info"),
		LogFormat:       env.getString("LOG_FORMAT", "json"),
	}
	origins := env.getString("CORS_ORIGINS", "http://localhost:5173")
	if len(env.errs) > 0 {
		return Config{}, fmt.Errorf("invalid config: %w", errors.Join(env.errs...))
	}

	// Use a custom flag set to avoid interfering with the global one during tests.
	flags := flag.NewFlagSet("server", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	flags.IntVar(&c.Port, "port", c.Port, "Port to listen on")
	flags.StringVar(&c.CountriesURL, "countries-url", c.CountriesURL, "Country list endpoint")
	flags.StringVar(&c.CountriesFields, "countries-fields", c.CountriesFields, "Comma-separated fields requested from the country list endpoint")
	flags.StringVar(&c.WeatherURL, "weather-url", c.WeatherURL, "Weather forecast endpoint")
	flags.IntVar(&c.ListOffset, "list-offset", c.ListOffset, "Index of the first rendered country")
	flags.IntVar(&c.ListLimit, "list-limit", c.ListLimit, "Number of rendered countries (0 renders all)")
	flags.DurationVar(&c.ViewTTL, "view-ttl", c.ViewTTL, "How long a rendered list stays clickable")
	flags.DurationVar(&c.UpstreamTimeout, "upstream-timeout", c.UpstreamTimeout, "Timeout for outbound API calls (0 disables)")
	flags.StringVar(&origins, "cors-origins", origins, "Comma-separated origins allowed to call /api")
	flags.StringVar(&c.LogLevel, "log-level", c.LogLevel, "debug, info, warn or error")
	flags.StringVar(&c.LogFormat, "log-format", c.LogFormat, "json or text")
	if err := flags.Parse(args); err != nil {
		return Config{}, fmt.Errorf("failed to parse flags: %w", err)
	}
	c.CORSOrigins = splitList(origins)

	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) validate() error {
	var errs []error
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.ListOffset < 0 {
		errs = append(errs, fmt.Errorf("list offset must not be negative, got %d", c.ListOffset))
	}
	if c.ListLimit < 0 {
		errs = append(errs, fmt.Errorf("list limit must not be negative, got %d", c.ListLimit))
	}
	if c.UpstreamTimeout < 0 {
		errs = append(errs, fmt.Errorf("upstream timeout must not be negative, got %s", c.UpstreamTimeout))
	}
	if c.CountriesURL == "" || c.WeatherURL == "" {
		errs = append(errs, errors.New("countries and weather urls are required"))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// NewLogger builds the structured logger described by the config.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}

// env resolves keys from the process environment first, then the env file.
// Malformed values are collected in errs.
type env struct {
	file map[string]string
	errs []error
}

func newEnv(path string) (*env, error) {
	if path == "" {
		path = ".env"
	}
	file, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &env{file: map[string]string{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	return &env{file: file}, nil
}

func (e *env) lookup(k string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return e.file[k]
}

func (e *env) getString(k, def string) string {
	if v := e.lookup(k); v != "" {
		return v
	}
	return def
}

func (e *env) getInt(k string, def int) int {
	v := e.lookup(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: invalid integer %q", k, v))
		return def
	}
	return n
}

func (e *env) getDuration(k string, def time.Duration) time.Duration {
	v := e.lookup(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: invalid duration %q", k, v))
		return def
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
