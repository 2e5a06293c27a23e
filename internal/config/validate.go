package config

import (
	"fmt"
	"net/url"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

func (v Validation) Err() error {
	if v.OK() {
		return nil
	}
	return fmt.Errorf("config validation failed:\n- %s", strings.Join(v.Errors, "\n- "))
}

// Hard bounds shared with the CLI flag checks.
const (
	MaxWorkersCeiling = 10
	MaxPages          = 10
	MaxLimit          = 50
)

// NormalizeAndValidate returns a normalized copy of cfg and the problems found.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, key)
		}
		return ys
	}

	out.Site.BaseURL = strings.TrimRight(strings.TrimSpace(out.Site.BaseURL), "/")
	out.Site.SignIn = trimList(out.Site.SignIn)
	out.Session.Backend = strings.ToLower(strings.TrimSpace(out.Session.Backend))
	out.Browser.Driver = strings.ToLower(strings.TrimSpace(out.Browser.Driver))
	if out.Site.EntryURL == "" {
		out.Site.EntryURL = out.Site.BaseURL
	}
	if out.Site.ProbeURL == "" {
		out.Site.ProbeURL = out.Site.BaseURL
	}

	// ---- site ----
	for name, raw := range map[string]string{
		"site.base_url":  out.Site.BaseURL,
		"site.entry_url": out.Site.EntryURL,
		"site.probe_url": out.Site.ProbeURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			res.addErr("%s must be an absolute URL, got %q", name, raw)
		}
	}
	if len(out.Site.SignIn) == 0 {
		res.addWarn("site.sign_in_markers is empty; expired sessions will only be caught by the account heuristic.")
	}

	// ---- session / browser ----
	switch out.Session.Backend {
	case "file":
		if strings.TrimSpace(out.Session.CookiesFile) == "" {
			res.addErr("session.cookies_file is required when session.backend=file")
		}
	case "keyring":
		if strings.TrimSpace(out.Session.KeyringAccount) == "" {
			res.addErr("session.keyring_account is required when session.backend=keyring")
		}
	default:
		res.addErr("session.backend must be file or keyring, got %q", out.Session.Backend)
	}
	switch out.Browser.Driver {
	case "rod", "static":
	default:
		res.addErr("browser.driver must be rod or static, got %q", out.Browser.Driver)
	}

	// ---- timeouts / pacing ----
	if out.Timeouts.PageLoadMS <= 0 {
		res.addErr("timeouts.page_load_ms must be > 0")
	}
	if out.Timeouts.SelectorWaitMS <= 0 {
		res.addErr("timeouts.selector_wait_ms must be > 0")
	}
	if out.Pacing.MinDelayMS < 0 || out.Pacing.MaxDelayMS < out.Pacing.MinDelayMS {
		res.addErr("pacing requires 0 <= min_delay_ms <= max_delay_ms")
	} else if out.Pacing.MaxDelayMS < 1000 {
		res.addWarn("pacing.max_delay_ms is very low (%d) and may trigger rate limits.", out.Pacing.MaxDelayMS)
	}
	if out.Pacing.HostRPS <= 0 {
		res.addErr("pacing.host_rps must be > 0")
	}
	if out.Pacing.HostBurst < 1 {
		res.addErr("pacing.host_burst must be >= 1")
	}

	// ---- cache ----
	if out.Cache.TTLHours <= 0 {
		res.addErr("cache.ttl_hours must be > 0")
	}
	if strings.TrimSpace(out.Cache.Dir) == "" {
		res.addErr("cache.dir is required")
	}

	// ---- scrape ----
	if out.Scrape.MaxWorkers < 1 || out.Scrape.MaxWorkers > MaxWorkersCeiling {
		res.addErr("scrape.max_workers must be 1..%d", MaxWorkersCeiling)
	}
	if out.Scrape.Workers < 1 || out.Scrape.Workers > out.Scrape.MaxWorkers {
		res.addErr("scrape.workers must be 1..scrape.max_workers")
	}
	if out.Scrape.Pages < 1 || out.Scrape.Pages > MaxPages {
		res.addErr("scrape.pages must be 1..%d", MaxPages)
	}
	if out.Scrape.Limit < 1 || out.Scrape.Limit > MaxLimit {
		res.addErr("scrape.limit must be 1..%d", MaxLimit)
	}

	// ---- output ----
	if !out.Output.JSON && !out.Output.SQLite {
		res.addWarn("both output.json and output.sqlite are disabled; results will only live in the cache.")
	}
	if out.Output.SQLite && strings.TrimSpace(out.Output.SQLitePath) == "" {
		res.addErr("output.sqlite_path is required when output.sqlite=true")
	}

	return out, res
}
