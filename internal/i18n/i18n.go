// Package i18n resolves the operator's locale and translates interface text.
// English text is the message key; the catalog carries the Arabic strings.
package i18n

import (
	"net/http"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Supported locales.
const (
	English = "en"
	Arabic  = "ar"
)

// CookieName is the cookie remembering the chosen locale.
const CookieName = "lang"

var tags = map[string]language.Tag{
	English: language.English,
	Arabic:  language.Arabic,
}

// Bundle holds the message catalog and locale matcher.
type Bundle struct {
	def     string
	order   []string
	matcher language.Matcher
	cat     *catalog.Builder
}

// New builds a bundle whose fallback locale is def.
func New(def string) *Bundle {
	if !IsSupported(def) {
		def = English
	}
	order := []string{def}
	for _, l := range Locales() {
		if l != def {
			order = append(order, l)
		}
	}
	matchTags := make([]language.Tag, len(order))
	for i, l := range order {
		matchTags[i] = tags[l]
	}

	cat := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, ar := range arabic {
		_ = cat.SetString(language.Arabic, key, ar)
	}

	return &Bundle{
		def:     def,
		order:   order,
		matcher: language.NewMatcher(matchTags),
		cat:     cat,
	}
}

// Locales lists the supported locales in display order.
func Locales() []string {
	return []string{English, Arabic}
}

// IsSupported reports whether locale is one of the dashboard locales.
func IsSupported(locale string) bool {
	_, ok := tags[locale]
	return ok
}

// Dir is the text direction of locale.
func Dir(locale string) string {
	if locale == Arabic {
		return "rtl"
	}
	return "ltr"
}

// Default is the fallback locale.
func (b *Bundle) Default() string {
	return b.def
}

// Match picks the best supported locale for the given preferences,
// each either a bare tag or an Accept-Language value.
func (b *Bundle) Match(prefs ...string) string {
	_, idx := language.MatchStrings(b.matcher, prefs...)
	if idx < 0 || idx >= len(b.order) {
		return b.def
	}
	return b.order[idx]
}

// Resolve returns the locale for r: a supported URL prefix wins, then the
// lang cookie, then Accept-Language.
func (b *Bundle) Resolve(r *http.Request, prefix string) string {
	if IsSupported(prefix) {
		return prefix
	}
	if c, err := r.Cookie(CookieName); err == nil && IsSupported(c.Value) {
		return c.Value
	}
	if accept := r.Header.Get("Accept-Language"); accept != "" {
		return b.Match(accept)
	}
	return b.def
}

// Printer returns a message printer for locale.
func (b *Bundle) Printer(locale string) *message.Printer {
	tag, ok := tags[locale]
	if !ok {
		tag = tags[b.def]
	}
	return message.NewPrinter(tag, message.Catalog(b.cat))
}

// T translates key for locale, formatting args into it.
func (b *Bundle) T(locale, key string, args ...any) string {
	return b.Printer(locale).Sprintf(key, args...)
}

// Translator returns T bound to locale.
func (b *Bundle) Translator(locale string) func(key string, args ...any) string {
	p := b.Printer(locale)
	return func(key string, args ...any) string {
		return p.Sprintf(key, args...)
	}
}

// Title title-cases s for locale. Scripts without case are returned unchanged.
func Title(locale, s string) string {
	tag, ok := tags[locale]
	if !ok {
		tag = language.English
	}
	return cases.Title(tag).String(strings.ReplaceAll(s, "_", " "))
}
