// engine/internal/config/config.go
package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"reviewhunt-engine/internal/logger"
)

type Config struct {
	App struct {
		DataDir   string `yaml:"data_dir"`
		OutputDir string `yaml:"output_dir"`
	} `yaml:"app"`

	Site struct {
		BaseURL    string   `yaml:"base_url"`
		EntryURL   string   `yaml:"entry_url"`
		ProbeURL   string   `yaml:"probe_url"`
		AccountURL string   `yaml:"account_url"`
		UserAgent  string   `yaml:"user_agent"`
		SignIn     []string `yaml:"sign_in_markers"`
	} `yaml:"site"`

	Session struct {
		Backend        string `yaml:"backend"` // file | keyring
		CookiesFile    string `yaml:"cookies_file"`
		KeyringAccount string `yaml:"keyring_account"`
	} `yaml:"session"`

	Browser struct {
		Driver    string `yaml:"driver"` // rod | static
		Headless  bool   `yaml:"headless"`
		Bin       string `yaml:"bin"`
		NoSandbox bool   `yaml:"no_sandbox"`
	} `yaml:"browser"`

	Timeouts struct {
		PageLoadMS     int `yaml:"page_load_ms"`
		SelectorWaitMS int `yaml:"selector_wait_ms"`
	} `yaml:"timeouts"`

	Pacing struct {
		MinDelayMS int     `yaml:"min_delay_ms"`
		MaxDelayMS int     `yaml:"max_delay_ms"`
		HostRPS    float64 `yaml:"host_rps"`
		HostBurst  int     `yaml:"host_burst"`
	} `yaml:"pacing"`

	Cache struct {
		Dir      string `yaml:"dir"`
		TTLHours int    `yaml:"ttl_hours"`
	} `yaml:"cache"`

	Scrape struct {
		Limit      int  `yaml:"limit"`
		Pages      int  `yaml:"pages"`
		Workers    int  `yaml:"workers"`
		MaxWorkers int  `yaml:"max_workers"`
		Parallel   bool `yaml:"parallel"`
	} `yaml:"scrape"`

	Output struct {
		JSON       bool   `yaml:"json"`
		SQLite     bool   `yaml:"sqlite"`
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"output"`

	Logging logger.Config `yaml:"logging"`
}

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Default returns the built-in configuration. Load overlays the YAML file on
// top of it, so a partial file keeps every other default.
func Default() Config {
	var cfg Config
	cfg.App.DataDir = "."
	cfg.App.OutputDir = "output"

	cfg.Site.BaseURL = "https://www.amazon.com"
	cfg.Site.EntryURL = "https://www.amazon.com"
	cfg.Site.ProbeURL = "https://www.amazon.com"
	cfg.Site.AccountURL = "https://www.amazon.com/gp/css/homepage.html"
	cfg.Site.UserAgent = defaultUserAgent
	cfg.Site.SignIn = []string{"signin", "/ap/"}

	cfg.Session.Backend = "file"
	cfg.Session.CookiesFile = "cookies.json"
	cfg.Session.KeyringAccount = "default"

	cfg.Browser.Driver = "rod"
	cfg.Browser.Headless = true

	cfg.Timeouts.PageLoadMS = 30000
	cfg.Timeouts.SelectorWaitMS = 10000

	cfg.Pacing.MinDelayMS = 2000
	cfg.Pacing.MaxDelayMS = 5000
	cfg.Pacing.HostRPS = 1.0
	cfg.Pacing.HostBurst = 2

	cfg.Cache.Dir = "cache"
	cfg.Cache.TTLHours = 24

	cfg.Scrape.Limit = 3
	cfg.Scrape.Pages = 2
	cfg.Scrape.Workers = 3
	cfg.Scrape.MaxWorkers = 10
	cfg.Scrape.Parallel = true

	cfg.Output.JSON = true
	cfg.Output.SQLite = true
	cfg.Output.SQLitePath = "reviewhunt.db"

	cfg.Logging.Level = "info"
	return cfg
}

func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}

func (c Config) PageLoadTimeout() time.Duration {
	return time.Duration(c.Timeouts.PageLoadMS) * time.Millisecond
}

func (c Config) SelectorTimeout() time.Duration {
	return time.Duration(c.Timeouts.SelectorWaitMS) * time.Millisecond
}

func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLHours) * time.Hour
}

func (c Config) MinDelay() time.Duration {
	return time.Duration(c.Pacing.MinDelayMS) * time.Millisecond
}

func (c Config) MaxDelay() time.Duration {
	return time.Duration(c.Pacing.MaxDelayMS) * time.Millisecond
}

// Path resolves p against the data dir unless it is already absolute.
func (c Config) Path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.App.DataDir, p)
}
