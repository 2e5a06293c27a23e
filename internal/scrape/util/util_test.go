package util

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviewhunt-engine/internal/domain"
)

func TestExtractIdentifier(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://www.amazon.com/Desk-Lamp/dp/B0ABCDEF12/ref=sr_1_1", "B0ABCDEF12"},
		{"/gp/product/B0ABCDEF12?th=1", "B0ABCDEF12"},
		{"/some/product/B0ABCDEF12", "B0ABCDEF12"},
		{"/gp/aw/d?asin=B0ABCDEF12&ref=x", "B0ABCDEF12"},
		{"/dp/short", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractIdentifier(tt.in), tt.in)
	}
}

func TestURLs(t *testing.T) {
	base := "https://www.amazon.com/"
	assert.Equal(t, "https://www.amazon.com/dp/X1", AbsoluteURL(base, "/dp/X1"))
	assert.Equal(t, "https://cdn.example/x", AbsoluteURL(base, "https://cdn.example/x"))
	assert.Equal(t, "", AbsoluteURL(base, "  "))

	assert.Equal(t, "https://www.amazon.com/s?k=desk+lamp", SearchURL(base, "  desk   lamp "))
	assert.Equal(t, "https://www.amazon.com/product-reviews/X1", ReviewsURL(base, "X1", domain.NoFilter))
	assert.Equal(t, "https://www.amazon.com/product-reviews/X1?filterByStar=five_star", ReviewsURL(base, "X1", 5))
	assert.Equal(t, "www.amazon.com", Host("https://WWW.amazon.com/s"))
}

func TestTextHelpers(t *testing.T) {
	assert.Equal(t, "a b c", CleanText(" a  b\n\tc "))
	assert.Equal(t, "desk lamp", NormalizeQuery("  Desk \t LAMP "))
	assert.True(t, ContainsAny("Be the first to review", "no reviews yet", "be the first to review"))
	assert.False(t, ContainsAny("Great lamp"))
	assert.Equal(t, "abc...", Truncate("abcdef", 3))
	assert.Equal(t, "ab", Truncate("ab", 3))
}

func TestPacerDelayWithinBounds(t *testing.T) {
	p := NewPacer(nil, 10*time.Millisecond, 20*time.Millisecond)
	for i := 0; i < 100; i++ {
		d := p.Delay()
		assert.GreaterOrEqual(t, d, 10*time.Millisecond)
		assert.LessOrEqual(t, d, 20*time.Millisecond)
	}
	assert.Equal(t, 5*time.Millisecond, NewPacer(nil, 5*time.Millisecond, time.Millisecond).Delay())
}

func TestPacerWaitUsesSleepAndLimiter(t *testing.T) {
	var slept []time.Duration
	p := NewPacer(NewHostLimiter(1000, 10), time.Second, time.Second)
	p.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	require.NoError(t, p.Wait(context.Background(), "https://www.amazon.com/s"))
	assert.Equal(t, []time.Duration{time.Second}, slept)
}

func TestPacerWaitHonoursCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := NewPacer(nil, time.Hour, time.Hour)
	assert.ErrorIs(t, p.Wait(ctx, "https://x"), context.Canceled)

	assert.NoError(t, NoPacing().Wait(context.Background(), "https://x"))
	var nilPacer *Pacer
	assert.NoError(t, nilPacer.Wait(context.Background(), "https://x"))
}
