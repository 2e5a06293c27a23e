package browser

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/proto"
)

// Cookie is the persisted form of a browser cookie. Expires is seconds since
// the epoch; zero or negative means a session cookie.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite,omitempty"`
}

func fromProto(cs []*proto.NetworkCookie) []Cookie {
	out := make([]Cookie, 0, len(cs))
	for _, c := range cs {
		if c == nil {
			continue
		}
		out = append(out, Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  float64(c.Expires),
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: string(c.SameSite),
		})
	}
	return out
}

func toProto(cs []Cookie) []*proto.NetworkCookieParam {
	out := make([]*proto.NetworkCookieParam, 0, len(cs))
	for _, c := range cs {
		p := &proto.NetworkCookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: proto.NetworkCookieSameSite(c.SameSite),
		}
		if c.Expires > 0 {
			p.Expires = proto.TimeSinceEpoch(c.Expires)
		}
		out = append(out, p)
	}
	return out
}

func toHTTP(cs []Cookie) []*http.Cookie {
	out := make([]*http.Cookie, 0, len(cs))
	for _, c := range cs {
		hc := &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   strings.TrimPrefix(c.Domain, "."),
			Path:     c.Path,
			HttpOnly: c.HTTPOnly,
			Secure:   c.Secure,
		}
		if c.Expires > 0 {
			hc.Expires = time.Unix(int64(c.Expires), 0)
		}
		out = append(out, hc)
	}
	return out
}

func fromHTTP(cs []*http.Cookie, domain string) []Cookie {
	out := make([]Cookie, 0, len(cs))
	for _, c := range cs {
		d := c.Domain
		if d == "" {
			d = domain
		}
		path := c.Path
		if path == "" {
			path = "/"
		}
		var exp float64
		if !c.Expires.IsZero() {
			exp = float64(c.Expires.Unix())
		}
		out = append(out, Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   d,
			Path:     path,
			Expires:  exp,
			HTTPOnly: c.HttpOnly,
			Secure:   c.Secure,
		})
	}
	return out
}

// mergeCookies overlays next onto prev keyed by name, domain and path.
func mergeCookies(prev, next []Cookie) []Cookie {
	type k struct{ name, domain, path string }
	idx := make(map[k]int, len(prev))
	out := append([]Cookie(nil), prev...)
	for i, c := range out {
		idx[k{c.Name, c.Domain, c.Path}] = i
	}
	for _, c := range next {
		key := k{c.Name, c.Domain, c.Path}
		if i, ok := idx[key]; ok {
			out[i] = c
			continue
		}
		idx[key] = len(out)
		out = append(out, c)
	}
	return out
}
