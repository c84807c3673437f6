package advice

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

type stubGenerator struct {
	mu      sync.Mutex
	text    string
	err     error
	block   bool
	prompts []string
}

func (g *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	g.mu.Unlock()
	if g.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return g.text, g.err
}

func (g *stubGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

type mapCache struct {
	values map[string]string
	err    error
}

func (c *mapCache) Get(_ context.Context, key string) (string, bool, error) {
	if c.err != nil {
		return "", false, c.err
	}
	v, ok := c.values[key]
	return v, ok, nil
}

func (c *mapCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	if c.err != nil {
		return c.err
	}
	c.values[key] = value
	return nil
}

func TestParseLocale(t *testing.T) {
	assert.Equal(t, French, ParseLocale("FR"))
	assert.Equal(t, Kinyarwanda, ParseLocale(" rw "))
	assert.Equal(t, English, ParseLocale(""))
	assert.Equal(t, English, ParseLocale("de"))
}

func TestAdviceFallbacks(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		generator Generator
		locale    Locale
		want      string
	}{
		{"no generator", nil, English, adviceFallbacks[English]},
		{"generator error", &stubGenerator{err: errors.New("quota")}, French, adviceFallbacks[French]},
		{"empty text", &stubGenerator{text: "   "}, Kinyarwanda, adviceFallbacks[Kinyarwanda]},
		{"timeout", &stubGenerator{block: true}, English, adviceFallbacks[English]},
		{"success", &stubGenerator{text: " Save a little every day. "}, English, "Save a little every day."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService("Twangumugayo", tt.generator, WithTimeout(20*time.Millisecond))
			got := svc.Advice(ctx, "Aline", 5000, "RWF", tt.locale)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAdvicePromptNamesLanguage(t *testing.T) {
	gen := &stubGenerator{text: "ok"}
	svc := NewService("Twangumugayo", gen)

	svc.Advice(context.Background(), "Aline", 5000, "RWF", Kinyarwanda)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Aline")
	assert.Contains(t, gen.prompts[0], "5000 RWF")
	assert.Contains(t, gen.prompts[0], "Kinyarwanda")
}

func TestDraftAnnouncementFallbacks(t *testing.T) {
	ctx := context.Background()
	svc := NewService("Twangumugayo", &stubGenerator{err: errors.New("down")})

	seen := map[string]bool{}
	for _, locale := range []Locale{English, French, Kinyarwanda} {
		t.Run(string(locale), func(t *testing.T) {
			got := svc.DraftAnnouncement(ctx, "meeting", locale)
			assert.NotEmpty(t, got)
			assert.Equal(t, draftFallbacks[locale], got)
			assert.False(t, seen[got], "each locale has its own fallback")
			seen[got] = true
		})
	}

	assert.Equal(t, draftFallbacks[English], NewService("Twangumugayo", nil).DraftAnnouncement(ctx, "meeting", English))
}

func TestCacheHitSkipsGenerator(t *testing.T) {
	ctx := context.Background()
	gen := &stubGenerator{text: "Keep going"}
	cache := &mapCache{values: map[string]string{}}
	svc := NewService("Twangumugayo", gen, WithCache(cache, time.Hour))

	first := svc.Advice(ctx, "Aline", 5000, "RWF", English)
	second := svc.Advice(ctx, "Aline", 5000, "RWF", English)

	assert.Equal(t, "Keep going", first)
	assert.Equal(t, "Keep going", second)
	assert.Equal(t, 1, gen.calls())

	// A different locale is a different key
	svc.Advice(ctx, "Aline", 5000, "RWF", French)
	assert.Equal(t, 2, gen.calls())
}

func TestCacheErrorsAreIgnored(t *testing.T) {
	gen := &stubGenerator{text: "Keep going"}
	cache := &mapCache{values: map[string]string{}, err: errors.New("redis down")}
	svc := NewService("Twangumugayo", gen, WithCache(cache, time.Hour))

	assert.Equal(t, "Keep going", svc.Advice(context.Background(), "Aline", 5000, "RWF", English))
}

func TestFallbacksAreNotCached(t *testing.T) {
	ctx := context.Background()
	gen := &stubGenerator{err: errors.New("quota")}
	cache := &mapCache{values: map[string]string{}}
	svc := NewService("Twangumugayo", gen, WithCache(cache, time.Hour))

	svc.Advice(ctx, "Aline", 5000, "RWF", English)
	assert.Empty(t, cache.values)
}

func TestGeminiGenerator(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Save "},{"text":"daily."}]}}]}`))
	}))
	defer srv.Close()

	ctx := context.Background()
	gen, err := NewGeminiGenerator(ctx, "test-key", "gemini-test", option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)

	text, err := gen.Generate(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, "Save daily.", text)
	assert.True(t, strings.HasSuffix(gotPath, "models/gemini-test:generateContent"), "path %q", gotPath)
}

func TestGeminiGeneratorNoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	ctx := context.Background()
	gen, err := NewGeminiGenerator(ctx, "test-key", "gemini-test", option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)

	_, err = gen.Generate(ctx, "hello")
	assert.Error(t, err)
}
