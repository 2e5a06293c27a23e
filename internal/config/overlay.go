// config/overlay.go
package config

import (
	"os"
	"strconv"
	"strings"
)

// OverlayEnv applies REVIEWHUNT_* environment variables on top of cfg.
// Unparseable values are ignored so a typo in .env never blocks startup.
func OverlayEnv(cfg *Config) {
	if v := env("DATA_DIR"); v != "" {
		cfg.App.DataDir = v
	}
	if v := env("OUTPUT_DIR"); v != "" {
		cfg.App.OutputDir = v
	}
	if v := env("BASE_URL"); v != "" {
		cfg.Site.BaseURL = strings.TrimRight(v, "/")
	}
	if v := env("SESSION_BACKEND"); v != "" {
		cfg.Session.Backend = strings.ToLower(v)
	}
	if v := env("BROWSER_DRIVER"); v != "" {
		cfg.Browser.Driver = strings.ToLower(v)
	}
	if v := env("BROWSER_BIN"); v != "" {
		cfg.Browser.Bin = v
	}
	if v, err := strconv.ParseBool(env("HEADLESS")); err == nil {
		cfg.Browser.Headless = v
	}
	if v, err := strconv.Atoi(env("CACHE_TTL_HOURS")); err == nil {
		cfg.Cache.TTLHours = v
	}
	if v, err := strconv.Atoi(env("WORKERS")); err == nil {
		cfg.Scrape.Workers = v
	}
	if v := env("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

func env(name string) string {
	return strings.TrimSpace(os.Getenv("REVIEWHUNT_" + name))
}
