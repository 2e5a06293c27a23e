package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"reviewhunt-engine/internal/browser"
	"reviewhunt-engine/internal/cache"
	"reviewhunt-engine/internal/config"
	"reviewhunt-engine/internal/logger"
	"reviewhunt-engine/internal/output"
	"reviewhunt-engine/internal/scrape/util"
	"reviewhunt-engine/internal/session"
	"reviewhunt-engine/internal/store"
)

// deps lets tests swap the browser and the login signal.
type deps struct {
	Launcher browser.Launcher
	Signal   session.Signal
	Now      func() time.Time
}

type app struct {
	cfg  config.Config
	path string
	log  logger.Logger
	out  io.Writer
	d    deps
}

// loadConfig resolves the data dir, bootstraps and loads the config file and
// applies the environment, without validating.
func loadConfig(rf *rootFlags) (config.Config, string, error) {
	dataDir := rf.dataDir
	if dataDir == "" {
		dataDir = strings.TrimSpace(os.Getenv("REVIEWHUNT_DATA_DIR"))
	}
	if dataDir == "" {
		dataDir = "."
	}

	path := rf.configPath
	if path == "" {
		p, err := config.EnsureUserConfig(dataDir)
		if err != nil {
			return config.Config{}, "", fmt.Errorf("config bootstrap failed: %w", err)
		}
		path = p
	}

	cfg, err := config.Load(path)
	if err != nil {
		return cfg, path, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if cfg.App.DataDir == "" || cfg.App.DataDir == "." {
		cfg.App.DataDir = dataDir
	}
	config.OverlayEnv(&cfg)
	if rf.debug {
		cfg.Logging.Level = "debug"
		cfg.Logging.Development = true
	}
	return cfg, path, nil
}

func newApp(rf *rootFlags, d deps, out io.Writer) (*app, error) {
	cfg, path, err := loadConfig(rf)
	if err != nil {
		return nil, err
	}
	cfg, v := config.NormalizeAndValidate(cfg)
	if !v.OK() {
		return nil, v.Err()
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, err
	}
	for _, w := range v.Warnings {
		log.Warn("config warning", logger.String("detail", w))
	}
	return &app{cfg: cfg, path: path, log: log, out: out, d: d}, nil
}

func (a *app) close() {
	_ = a.log.Sync()
}

func (a *app) cache() *cache.Cache {
	return cache.New(cache.Options{
		Dir: a.cfg.Path(a.cfg.Cache.Dir),
		TTL: a.cfg.CacheTTL(),
		Now: a.d.Now,
		Log: a.log,
	})
}

func (a *app) pacer() *util.Pacer {
	hosts := util.NewHostLimiter(a.cfg.Pacing.HostRPS, a.cfg.Pacing.HostBurst)
	return util.NewPacer(hosts, a.cfg.MinDelay(), a.cfg.MaxDelay())
}

func (a *app) launcher() browser.Launcher {
	if a.d.Launcher != nil {
		return a.d.Launcher
	}
	if a.cfg.Browser.Driver == "static" {
		return &browser.StaticLauncher{Fetcher: &browser.CollyFetcher{
			UserAgent: a.cfg.Site.UserAgent,
			Timeout:   a.cfg.PageLoadTimeout(),
		}}
	}
	return &browser.RodLauncher{
		Bin:       a.cfg.Browser.Bin,
		NoSandbox: a.cfg.Browser.NoSandbox,
		Log:       a.log,
	}
}

func (a *app) browserOptions() browser.Options {
	return browser.Options{
		Headless:    a.cfg.Browser.Headless,
		UserAgent:   a.cfg.Site.UserAgent,
		PageTimeout: a.cfg.PageLoadTimeout(),
	}
}

func (a *app) backend() session.Backend {
	if a.cfg.Session.Backend == "keyring" {
		return session.KeyringBackend{Account: a.cfg.Session.KeyringAccount}
	}
	return session.FileBackend{Path: a.cfg.Path(a.cfg.Session.CookiesFile)}
}

func (a *app) sessions(l browser.Launcher) *session.Store {
	sig := a.d.Signal
	if sig == nil {
		sig = session.StdinSignal{Out: os.Stderr}
	}
	return session.NewStore(a.backend(), l, sig, session.Options{
		Probe: session.ProbeConfig{
			ProbeURL:      a.cfg.Site.ProbeURL,
			AccountURL:    a.cfg.Site.AccountURL,
			SignInMarkers: a.cfg.Site.SignIn,
			Timeout:       a.cfg.PageLoadTimeout(),
		},
		EntryURL:    a.cfg.Site.EntryURL,
		UserAgent:   a.cfg.Site.UserAgent,
		Headless:    a.cfg.Browser.Headless,
		PageTimeout: a.cfg.PageLoadTimeout(),
	}, a.log)
}

// persisters opens every enabled output. The returned func closes them.
func (a *app) persisters() (output.Persister, func(), error) {
	var ps output.Multi
	closers := []func(){}
	if a.cfg.Output.JSON {
		w := output.NewJSONWriter(a.cfg.Path(a.cfg.App.OutputDir))
		if a.d.Now != nil {
			w.Now = a.d.Now
		}
		ps = append(ps, w)
	}
	if a.cfg.Output.SQLite {
		db, err := store.Open(a.cfg.Path(a.cfg.Output.SQLitePath))
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite output: %w", err)
		}
		ps = append(ps, store.NewSink(db))
		closers = append(closers, func() { _ = db.Close() })
	}
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}
	return ps, closeAll, nil
}
