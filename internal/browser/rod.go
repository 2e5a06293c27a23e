package browser

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"reviewhunt-engine/internal/logger"
)

// RodLauncher starts a dedicated Chromium per session.
type RodLauncher struct {
	Bin       string
	NoSandbox bool
	Log       logger.Logger
}

func (r *RodLauncher) Launch(ctx context.Context, opts Options) (Session, error) {
	l := launcher.New().
		Context(ctx).
		Headless(opts.Headless).
		NoSandbox(r.NoSandbox).
		Set("disable-dev-shm-usage")
	if r.Bin != "" {
		l = l.Bin(r.Bin)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	b := rod.New().ControlURL(u).Context(ctx)
	if err := b.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	s := &rodSession{launcher: l, browser: b}

	page, err := stealth.Page(b)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("create page: %w", err)
	}
	s.page = page

	if opts.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: opts.UserAgent}); err != nil && r.Log != nil {
			r.Log.Warn("set user agent failed", logger.Error(err))
		}
	}
	if len(opts.Cookies) > 0 {
		if err := s.SetCookies(ctx, opts.Cookies); err != nil {
			_ = s.Close()
			return nil, err
		}
	}
	return s, nil
}

type rodSession struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
}

func (s *rodSession) Navigate(ctx context.Context, url string) error {
	p := s.page.Context(ctx)
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("load %s: %w", url, err)
	}
	return nil
}

func (s *rodSession) URL() string {
	info, err := s.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (s *rodSession) HTML(ctx context.Context) (string, error) {
	return s.page.Context(ctx).HTML()
}

func (s *rodSession) Find(ctx context.Context, selector string) ([]Element, error) {
	els, err := s.page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, err
	}
	return wrapRod(els), nil
}

func (s *rodSession) WaitVisible(ctx context.Context, selector string) error {
	el, err := s.page.Context(ctx).Element(selector)
	if err != nil {
		return fmt.Errorf("wait %q: %w: %w", selector, ErrNotFound, err)
	}
	if err := el.Context(ctx).WaitVisible(); err != nil {
		return fmt.Errorf("wait %q: %w: %w", selector, ErrNotFound, err)
	}
	return nil
}

// WaitReplaced waits for old to be detached or hidden, then for the load of
// whatever replaced it. A vanished node fails WaitInvisible with a lookup
// error, which counts as replaced.
func (s *rodSession) WaitReplaced(ctx context.Context, old Element) error {
	el, ok := old.(rodElement)
	if !ok {
		return fmt.Errorf("wait replaced: %T: %w", old, ErrNotClickable)
	}
	if err := el.el.Context(ctx).WaitInvisible(); err != nil && ctx.Err() != nil {
		return fmt.Errorf("wait replaced: %w: %w", ErrNotFound, ctx.Err())
	}
	if err := s.page.Context(ctx).WaitLoad(); err != nil {
		return fmt.Errorf("wait replaced: load: %w", err)
	}
	return nil
}

func (s *rodSession) Scripted() bool { return true }

func (s *rodSession) Cookies(ctx context.Context) ([]Cookie, error) {
	cs, err := s.browser.Context(ctx).GetCookies()
	if err != nil {
		return nil, fmt.Errorf("get cookies: %w", err)
	}
	return fromProto(cs), nil
}

// SetCookies is a no-op for an empty slice; rod treats nil as "clear all".
func (s *rodSession) SetCookies(ctx context.Context, cookies []Cookie) error {
	if len(cookies) == 0 {
		return nil
	}
	if err := s.browser.Context(ctx).SetCookies(toProto(cookies)); err != nil {
		return fmt.Errorf("set cookies: %w", err)
	}
	return nil
}

func (s *rodSession) Close() error {
	var err error
	if s.page != nil {
		_ = s.page.Close()
	}
	if s.browser != nil {
		err = s.browser.Close()
	}
	if s.launcher != nil {
		s.launcher.Cleanup()
	}
	return err
}

type rodElement struct {
	el *rod.Element
}

func wrapRod(els rod.Elements) []Element {
	out := make([]Element, 0, len(els))
	for _, el := range els {
		out = append(out, rodElement{el: el})
	}
	return out
}

func (e rodElement) Find(ctx context.Context, selector string) ([]Element, error) {
	els, err := e.el.Context(ctx).Elements(selector)
	if err != nil {
		return nil, err
	}
	return wrapRod(els), nil
}

func (e rodElement) Text(ctx context.Context) (string, error) {
	return e.el.Context(ctx).Text()
}

func (e rodElement) Attr(ctx context.Context, name string) (string, bool, error) {
	v, err := e.el.Context(ctx).Attribute(name)
	if err != nil {
		return "", false, err
	}
	if v == nil {
		return "", false, nil
	}
	return *v, true, nil
}

func (e rodElement) Visible(ctx context.Context) (bool, error) {
	return e.el.Context(ctx).Visible()
}

func (e rodElement) Click(ctx context.Context) error {
	return e.el.Context(ctx).Click(proto.InputMouseButtonLeft, 1)
}
