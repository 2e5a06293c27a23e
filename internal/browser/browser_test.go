package browser_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviewhunt-engine/internal/browser"
)

const listingHTML = `<html><body>
<div id="a" class="item">First <span>one</span></div>
<div id="b" class="item" style="display: none">Hidden</div>
<div hidden><p class="item">Inside hidden</p></div>
<ul class="a-pagination"><li class="a-last"><a href="/page2">Next</a></li></ul>
<button id="expand">Read more</button>
</body></html>`

func launchStatic(t *testing.T, f browser.Fetcher, cookies ...browser.Cookie) browser.Session {
	t.Helper()
	s, err := (&browser.StaticLauncher{Fetcher: f}).Launch(context.Background(), browser.Options{Cookies: cookies})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStaticFindTextAndVisibility(t *testing.T) {
	ctx := context.Background()
	f := &browser.MemoryFetcher{Pages: map[string]string{"https://shop.test/list": listingHTML}}
	s := launchStatic(t, f)

	require.NoError(t, s.Navigate(ctx, "https://shop.test/list"))
	assert.Equal(t, "https://shop.test/list", s.URL())

	items, err := s.Find(ctx, ".item")
	require.NoError(t, err)
	require.Len(t, items, 3)

	txt, err := items[0].Text(ctx)
	require.NoError(t, err)
	assert.Equal(t, "First one", txt)

	id, ok, err := items[0].Attr(ctx, "id")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a", id)
	_, ok, _ = items[0].Attr(ctx, "data-missing")
	assert.False(t, ok)

	vis := make([]bool, len(items))
	for i, el := range items {
		vis[i], _ = el.Visible(ctx)
	}
	assert.Equal(t, []bool{true, false, false}, vis)

	require.NoError(t, s.WaitVisible(ctx, "#a"))
	assert.ErrorIs(t, s.WaitVisible(ctx, "#b"), browser.ErrNotFound)

	el, ok := browser.FirstVisible(ctx, s, "#b", ".missing", "#a")
	require.True(t, ok)
	id, _, _ = el.Attr(ctx, "id")
	assert.Equal(t, "a", id)
}

func TestStaticClickFollowsLink(t *testing.T) {
	ctx := context.Background()
	f := &browser.MemoryFetcher{Pages: map[string]string{
		"https://shop.test/list":  listingHTML,
		"https://shop.test/page2": `<html><body><p id="p2">two</p></body></html>`,
	}}
	s := launchStatic(t, f)
	require.NoError(t, s.Navigate(ctx, "https://shop.test/list"))

	btn, err := s.Find(ctx, "#expand")
	require.NoError(t, err)
	require.Len(t, btn, 1)
	assert.ErrorIs(t, btn[0].Click(ctx), browser.ErrNotClickable)

	li, err := s.Find(ctx, ".a-pagination .a-last")
	require.NoError(t, err)
	require.Len(t, li, 1)
	require.NoError(t, li[0].Click(ctx))

	assert.Equal(t, "https://shop.test/page2", s.URL())
	p, _ := s.Find(ctx, "#p2")
	assert.Len(t, p, 1)
	assert.Equal(t, 1, f.Calls("https://shop.test/page2"))
	assert.Equal(t, 2, f.Total())
}

func TestStaticWaitReplaced(t *testing.T) {
	ctx := context.Background()
	f := &browser.MemoryFetcher{Pages: map[string]string{
		"https://shop.test/list":  listingHTML,
		"https://shop.test/page2": `<html><body><p id="p2">two</p></body></html>`,
	}}
	s := launchStatic(t, f)
	assert.False(t, s.Scripted())
	require.NoError(t, s.Navigate(ctx, "https://shop.test/list"))

	items, err := s.Find(ctx, ".item")
	require.NoError(t, err)
	require.NotEmpty(t, items)
	inner, err := items[0].Find(ctx, "span")
	require.NoError(t, err)
	require.Len(t, inner, 1)

	assert.ErrorIs(t, s.WaitReplaced(ctx, items[0]), browser.ErrNotFound, "same document")
	assert.ErrorIs(t, s.WaitReplaced(ctx, inner[0]), browser.ErrNotFound, "nested element keeps its document")

	next, err := s.Find(ctx, ".a-pagination .a-last a")
	require.NoError(t, err)
	require.NoError(t, next[0].Click(ctx))
	assert.NoError(t, s.WaitReplaced(ctx, items[0]))
	assert.NoError(t, s.WaitReplaced(ctx, inner[0]))

	// reloading the same URL still yields a new document
	fresh, _ := s.Find(ctx, "#p2")
	require.NoError(t, s.Navigate(ctx, "https://shop.test/page2"))
	assert.NoError(t, s.WaitReplaced(ctx, fresh[0]))
}

func TestStaticRedirectAndCookies(t *testing.T) {
	ctx := context.Background()
	f := &browser.MemoryFetcher{
		Pages:     map[string]string{"https://shop.test/ap/signin": "<html></html>"},
		Redirects: map[string]string{"https://shop.test/account": "https://shop.test/ap/signin"},
		SetCookie: map[string][]browser.Cookie{
			"https://shop.test/ap/signin": {{Name: "session-id", Value: "new", Domain: ".shop.test", Path: "/"}},
		},
	}
	s := launchStatic(t, f, browser.Cookie{Name: "session-id", Value: "old", Domain: ".shop.test", Path: "/"},
		browser.Cookie{Name: "ubid", Value: "1", Domain: ".shop.test", Path: "/"})

	require.NoError(t, s.Navigate(ctx, "https://shop.test/account"))
	assert.Equal(t, "https://shop.test/ap/signin", s.URL())

	cs, err := s.Cookies(ctx)
	require.NoError(t, err)
	require.Len(t, cs, 2)
	assert.Equal(t, "new", cs[0].Value)
	assert.Equal(t, "ubid", cs[1].Name)
}

func TestStaticNavigateError(t *testing.T) {
	s := launchStatic(t, &browser.MemoryFetcher{})
	assert.Error(t, s.Navigate(context.Background(), "https://shop.test/nope"))
	els, err := s.Find(context.Background(), "div")
	assert.NoError(t, err)
	assert.Empty(t, els)
}

func TestCollyFetcher(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/landing", http.StatusFound)
	})
	mux.HandleFunc("/landing", func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("token")
		if err != nil || c.Value != "abc" {
			http.Error(w, "no cookie", http.StatusForbidden)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "seen", Value: "1", Path: "/"})
		_, _ = w.Write([]byte(`<html><body><h1>hello</h1></body></html>`))
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := &browser.CollyFetcher{UserAgent: "reviewhunt-test", Timeout: 5 * time.Second}
	ctx := context.Background()

	res, err := f.Fetch(ctx, srv.URL+"/start", []browser.Cookie{{Name: "token", Value: "abc", Path: "/"}})
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/landing", res.URL)
	assert.Contains(t, string(res.Body), "hello")

	names := map[string]string{}
	for _, c := range res.Cookies {
		names[c.Name] = c.Value
	}
	assert.Equal(t, "1", names["seen"])

	_, err = f.Fetch(ctx, srv.URL+"/start", nil)
	assert.Error(t, err)

	_, err = f.Fetch(ctx, srv.URL+"/broken", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}
