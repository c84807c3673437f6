// Package advice produces short member-facing texts with an external text
// generator. It never fails: on timeout, error or empty output it returns a
// static locale fallback.
package advice

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/models"
)

// Locale selects the output language.
type Locale string

const (
	English     Locale = "en"
	French      Locale = "fr"
	Kinyarwanda Locale = "rw"
)

// ParseLocale maps s to a known locale, defaulting to English.
func ParseLocale(s string) Locale {
	switch Locale(strings.ToLower(strings.TrimSpace(s))) {
	case French:
		return French
	case Kinyarwanda:
		return Kinyarwanda
	default:
		return English
	}
}

func (l Locale) languageName() string {
	switch l {
	case French:
		return "French"
	case Kinyarwanda:
		return "Kinyarwanda"
	default:
		return "English"
	}
}

var adviceFallbacks = map[Locale]string{
	English:     "Keep saving consistently to reach your financial goals with Ishyirahamwe Twangumugayo!",
	French:      "Continuez à épargner régulièrement pour atteindre vos objectifs financiers avec Ishyirahamwe Twangumugayo !",
	Kinyarwanda: "Komeza uzigame neza kugira ngo ugere ku ntego zawe muri Ishyirahamwe Twangumugayo!",
}

var draftFallbacks = map[Locale]string{
	English:     "Dear members, please take note of this update from the committee. Thank you for your continued commitment to our group.",
	French:      "Chers membres, veuillez prendre note de cette information du comité. Merci pour votre engagement constant envers notre groupe.",
	Kinyarwanda: "Banyamuryango, turabamenyesha iri tangazo rya komite. Murakoze ku bwitange bwanyu mu itsinda ryacu.",
}

// Generator turns a prompt into text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Cache stores generated texts. Implementations report a miss as ok=false.
type Cache interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Service wraps a Generator with a timeout, an optional cache and fallbacks.
type Service struct {
	group     string
	generator Generator
	cache     Cache
	timeout   time.Duration
	ttl       time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithCache enables caching of successful generations for ttl.
func WithCache(c Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		s.ttl = ttl
	}
}

// WithTimeout bounds every generator call.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// NewService creates a Service for the named group. A nil generator always
// yields fallbacks.
func NewService(group string, generator Generator, opts ...Option) *Service {
	s := &Service{
		group:     group,
		generator: generator,
		timeout:   8 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Advice returns a short encouraging tip for a member contributing amount.
func (s *Service) Advice(ctx context.Context, name string, amount models.Money, currency string, locale Locale) string {
	prompt := fmt.Sprintf(
		"Provide a short, encouraging financial tip for %s who is part of the %q (a Rwandan savings group / Ibimina) "+
			"contributing %d %s weekly. The advice MUST be written in %s. Keep it under 50 words and culturally relevant.",
		name, s.group, amount, currency, locale.languageName(),
	)
	return s.generate(ctx, "advice", locale, prompt, adviceFallbacks[locale])
}

// DraftAnnouncement drafts an admin announcement about topic.
func (s *Service) DraftAnnouncement(ctx context.Context, topic string, locale Locale) string {
	prompt := fmt.Sprintf(
		"Draft a professional and friendly announcement for the %q savings group admin regarding this topic: %q. "+
			"The message MUST be written in %s. The message should be polite, community-focused, and clear.",
		s.group, topic, locale.languageName(),
	)
	return s.generate(ctx, "draft", locale, prompt, draftFallbacks[locale])
}

func (s *Service) generate(ctx context.Context, op string, locale Locale, prompt, fallback string) string {
	if s.generator == nil {
		return fallback
	}

	key := cacheKey(op, locale, prompt)
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			slog.Warn("Advice cache read failed", "op", op, "error", err)
		} else if ok {
			return cached
		}
	}

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.generator.Generate(genCtx, prompt)
	if err != nil {
		slog.Warn("Advice generation failed, using fallback", "op", op, "locale", locale, "error", err)
		return fallback
	}
	text = strings.TrimSpace(text)
	if text == "" {
		slog.Warn("Advice generation returned no text, using fallback", "op", op, "locale", locale)
		return fallback
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, text, s.ttl); err != nil {
			slog.Warn("Advice cache write failed", "op", op, "error", err)
		}
	}
	return text
}

func cacheKey(op string, locale Locale, prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return fmt.Sprintf("advice:%s:%s:%s", op, locale, hex.EncodeToString(sum[:8]))
}
