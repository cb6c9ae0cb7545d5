package config

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Load applies the first environment file found among names, each searched
// upward from the working directory (".env" when none is given). Variables
// already set in the process win over the file. The configuration is then
// read from the environment and validated.
func Load(names ...string) (*App, error) {
	logger := slog.Default()
	if len(names) == 0 {
		names = []string{".env"}
	}

	loaded := false
	for _, name := range names {
		path, err := FindEnvFile(name)
		if err != nil {
			logger.Debug("Environment file not found", "name", name)
			continue
		}
		if err := godotenv.Load(path); err != nil {
			logger.Warn("Skipping unreadable environment file", "path", path, "error", err)
			continue
		}
		logger.Debug("Loaded environment file", "path", path)
		loaded = true
		break
	}
	if !loaded {
		logger.Debug("No environment file loaded, using process environment only")
	}

	var cfg App
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	logger.Info("Configuration loaded",
		"env", cfg.Env,
		"server_port", cfg.Server.Port,
		"rate_limit", cfg.RateLimit.MaxRequests,
		"rate_limit_window", cfg.RateLimit.Window,
		"exchange_api_url", cfg.ExchangeRateApi.ApiUrl,
		"exchange_api_key", maskValue(cfg.ExchangeRateApi.ApiKey),
		"exchange_http_timeout", cfg.ExchangeRateApi.HTTPTimeout,
		"quote_cache_ttl", cfg.ExchangeRateCache.TTL,
		"redis", maskValue(cfg.Redis.URL),
		"session_idle_ttl", cfg.Session.IdleTTL,
	)
	return &cfg, nil
}

func (c *App) validate() error {
	var errs []error
	if c.Env == "" {
		c.Env = "development"
	}
	if c.ExchangeRateApi.ApiUrl == "" {
		errs = append(errs, errors.New("EXCHANGE_RATE_API_URL must not be empty"))
	}
	if c.ExchangeRateApi.HTTPTimeout < 0 {
		errs = append(errs, errors.New("EXCHANGE_RATE_HTTP_TIMEOUT must not be negative"))
	}
	if c.ExchangeRateCache.TTL < 0 {
		errs = append(errs, errors.New("EXCHANGE_RATE_CACHE_TTL must not be negative"))
	}
	if c.Session.IdleTTL < 0 {
		errs = append(errs, errors.New("SESSION_IDLE_TTL must not be negative"))
	}
	if c.RateLimit.MaxRequests < 0 {
		errs = append(errs, errors.New("RATE_LIMIT_MAX_REQUESTS must not be negative"))
	}
	switch c.Log.Format {
	case "text", "json", "logfmt":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT %q is not one of text, json, logfmt", c.Log.Format))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// maskValue keeps secrets out of logs.
func maskValue(v string) string {
	switch {
	case v == "":
		return ""
	case len(v) <= 6:
		return "****"
	default:
		return v[:2] + "****" + v[len(v)-4:]
	}
}
