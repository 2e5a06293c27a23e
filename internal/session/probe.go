package session

import (
	"context"
	"strings"
	"time"

	"reviewhunt-engine/internal/browser"
	"reviewhunt-engine/internal/logger"
	"reviewhunt-engine/internal/scrape/util"
)

// ProbeConfig describes how to tell a logged-in page from a logged-out one.
type ProbeConfig struct {
	ProbeURL      string
	AccountURL    string
	SignInMarkers []string
	Timeout       time.Duration
}

var (
	accountMenuSelectors = []string{`#nav-link-accountList`, `[data-nav-role="signin"]`}
	loggedInSelectors    = []string{`#nav-orders`}
	loggedInLinkTexts    = []string{"your account", "returns", "account & lists"}
)

// Probe reports whether page carries an authenticated session. It is
// conservative: anything short of positive evidence is false.
func Probe(ctx context.Context, page browser.Page, cfg ProbeConfig, log logger.Logger) bool {
	if !navigate(ctx, page, cfg.ProbeURL, cfg.Timeout) {
		log.Debug("probe navigation failed", logger.String("url", cfg.ProbeURL))
		return false
	}
	if hasSignInMarker(page.URL(), cfg.SignInMarkers) {
		log.Debug("probe redirected to sign-in", logger.String("url", page.URL()))
		return false
	}

	for _, sel := range accountMenuSelectors {
		els, err := page.Find(ctx, sel)
		if err != nil || len(els) == 0 {
			continue
		}
		txt, err := els[0].Text(ctx)
		if err != nil {
			continue
		}
		txt = strings.ToLower(txt)
		if strings.Contains(txt, "hello") && !strings.Contains(txt, "sign in") {
			return true
		}
		if strings.Contains(txt, "sign in") {
			return false
		}
	}

	for _, sel := range loggedInSelectors {
		if els, err := page.Find(ctx, sel); err == nil && len(els) > 0 {
			return true
		}
	}
	if links, err := page.Find(ctx, "a"); err == nil {
		for _, a := range links {
			txt, err := a.Text(ctx)
			if err != nil {
				continue
			}
			if util.ContainsAny(txt, loggedInLinkTexts...) {
				return true
			}
		}
	}

	if cfg.AccountURL != "" && navigate(ctx, page, cfg.AccountURL, cfg.Timeout) {
		return !hasSignInMarker(page.URL(), cfg.SignInMarkers)
	}
	return false
}

func navigate(ctx context.Context, page browser.Page, url string, timeout time.Duration) bool {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return page.Navigate(ctx, url) == nil
}

func hasSignInMarker(url string, markers []string) bool {
	lu := strings.ToLower(url)
	for _, m := range markers {
		if m != "" && strings.Contains(lu, strings.ToLower(m)) {
			return true
		}
	}
	return false
}
