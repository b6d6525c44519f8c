// Package i18n selects the page language and formats copy, amounts and
// month labels for it.
package i18n

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"charitytracker/internal/core"
)

const (
	// CookieName remembers an explicit language choice.
	CookieName = "ct_lang"
	// QueryParam switches the language for one request and sets the cookie.
	QueryParam = "lang"
)

// Catalog holds the copy for every supported language.
type Catalog struct {
	supported []language.Tag
	matcher   language.Matcher
	builder   *catalog.Builder
}

// Locale is a resolved language ready to render one page.
type Locale struct {
	Tag     language.Tag
	Code    string
	RTL     bool
	printer *message.Printer
	title   cases.Caser
}

// NewCatalog builds the catalog. defaultCode is used when nothing in the
// request matches; unknown codes fall back to English.
func NewCatalog(defaultCode string) (*Catalog, error) {
	def := english
	if defaultCode != "" {
		tag, err := language.Parse(defaultCode)
		if err != nil {
			return nil, fmt.Errorf("default locale %q: %w", defaultCode, err)
		}
		def = tag
	}

	supported := []language.Tag{english, arabic, italian}
	// the matcher falls back to the first tag
	for i, t := range supported {
		base, _ := t.Base()
		defBase, _ := def.Base()
		if base == defBase {
			supported[0], supported[i] = supported[i], supported[0]
			break
		}
	}

	b := catalog.NewBuilder(catalog.Fallback(english))
	for tag, strs := range copyStrings {
		for key, msg := range strs {
			if err := b.SetString(tag, key, msg); err != nil {
				return nil, fmt.Errorf("catalog %s/%s: %w", tag, key, err)
			}
		}
	}

	return &Catalog{
		supported: supported,
		matcher:   language.NewMatcher(supported),
		builder:   b,
	}, nil
}

// Supported lists the language codes in preference order.
func (c *Catalog) Supported() []string {
	out := make([]string, len(c.supported))
	for i, t := range c.supported {
		out[i] = t.String()
	}
	return out
}

// Default returns the fallback locale.
func (c *Catalog) Default() Locale {
	return c.locale(c.supported[0])
}

// Match returns the best supported locale for the given preferences,
// highest priority first.
func (c *Catalog) Match(prefs ...language.Tag) Locale {
	if len(prefs) == 0 {
		return c.Default()
	}
	_, idx, conf := c.matcher.Match(prefs...)
	if conf == language.No {
		return c.Default()
	}
	return c.locale(c.supported[idx])
}

// Lookup resolves a single language code such as "ar" or "it-CH".
func (c *Catalog) Lookup(code string) (Locale, bool) {
	tag, err := language.Parse(strings.TrimSpace(code))
	if err != nil {
		return c.Default(), false
	}
	_, idx, conf := c.matcher.Match(tag)
	if conf == language.No {
		return c.Default(), false
	}
	return c.locale(c.supported[idx]), true
}

// Resolve picks the locale for r from the query parameter, then the
// cookie, then Accept-Language.
func (c *Catalog) Resolve(r *http.Request) Locale {
	if code := r.URL.Query().Get(QueryParam); code != "" {
		if l, ok := c.Lookup(code); ok {
			return l
		}
	}
	if ck, err := r.Cookie(CookieName); err == nil && ck.Value != "" {
		if l, ok := c.Lookup(ck.Value); ok {
			return l
		}
	}
	prefs, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err != nil {
		return c.Default()
	}
	return c.Match(prefs...)
}

func (c *Catalog) locale(tag language.Tag) Locale {
	base, _ := tag.Base()
	return Locale{
		Tag:     tag,
		Code:    base.String(),
		RTL:     base.String() == "ar",
		printer: message.NewPrinter(tag, message.Catalog(c.builder)),
		title:   cases.Title(tag),
	}
}

// Dir is the HTML dir attribute for the locale.
func (l Locale) Dir() string {
	if l.RTL {
		return "rtl"
	}
	return "ltr"
}

// T translates key, formatting args into the message.
func (l Locale) T(key string, args ...any) string {
	return l.printer.Sprintf(key, args...)
}

// Amount formats m with the locale's grouping and decimal separators.
func (l Locale) Amount(m core.Money) string {
	return l.printer.Sprintf("%.2f", m.Units())
}

// Count formats n with the locale's digit grouping.
func (l Locale) Count(n int) string {
	return l.printer.Sprintf("%d", n)
}

// Month renders a YYYY-MM key as a localized "Month Year" label. Keys that
// do not parse are returned unchanged.
func (l Locale) Month(key string) string {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return key
	}
	names, ok := monthNames[l.Tag]
	if !ok {
		names = monthNames[english]
	}
	return l.title.String(names[t.Month()-1]) + " " + strconv.Itoa(t.Year())
}

// Date formats t as a short numeric date and time.
func (l Locale) Date(t time.Time) string {
	if l.Code == "en" {
		return t.Format("Jan 2, 2006 15:04")
	}
	return t.Format("02/01/2006 15:04")
}
