package i18n

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"charitytracker/internal/core"
)

func newCatalog(t *testing.T, def string) *Catalog {
	t.Helper()
	c, err := NewCatalog(def)
	require.NoError(t, err)
	return c
}

func TestNewCatalog_DefaultFirst(t *testing.T) {
	assert.Equal(t, []string{"en", "ar", "it"}, newCatalog(t, "").Supported())
	assert.Equal(t, "ar", newCatalog(t, "ar").Default().Code)
	assert.Equal(t, "en", newCatalog(t, "fr").Default().Code)

	_, err := NewCatalog("not a locale!")
	assert.Error(t, err)
}

func TestCatalog_Resolve(t *testing.T) {
	c := newCatalog(t, "en")

	tests := []struct {
		name   string
		target string
		cookie string
		accept string
		want   string
	}{
		{"default", "/", "", "", "en"},
		{"accept language", "/", "", "ar-EG,ar;q=0.9,en;q=0.5", "ar"},
		{"regional variant", "/", "", "it-CH", "it"},
		{"cookie beats header", "/", "it", "ar", "it"},
		{"query beats cookie", "/?lang=ar", "it", "en", "ar"},
		{"unsupported query falls through", "/?lang=xx", "", "it", "it"},
		{"unsupported header", "/", "", "ja", "en"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.cookie != "" {
				r.AddCookie(&http.Cookie{Name: CookieName, Value: tt.cookie})
			}
			if tt.accept != "" {
				r.Header.Set("Accept-Language", tt.accept)
			}
			assert.Equal(t, tt.want, c.Resolve(r).Code)
		})
	}
}

func TestLocale_Direction(t *testing.T) {
	c := newCatalog(t, "en")
	ar, ok := c.Lookup("ar")
	require.True(t, ok)
	assert.True(t, ar.RTL)
	assert.Equal(t, "rtl", ar.Dir())
	assert.Equal(t, "ltr", c.Default().Dir())
}

func TestLocale_Translate(t *testing.T) {
	c := newCatalog(t, "en")
	en := c.Default()
	it, _ := c.Lookup("it")
	ar, _ := c.Lookup("ar")

	assert.Equal(t, "Donations dashboard", en.T("admin.title"))
	assert.Equal(t, "Riepilogo donazioni", it.T("admin.title"))
	assert.Equal(t, "لوحة التبرعات", ar.T("admin.title"))
	assert.Equal(t, "Thank you, Alice! 25.00 recorded.", en.T("form.thanks", "Alice", "25.00"))
}

func TestLocale_Numbers(t *testing.T) {
	c := newCatalog(t, "en")
	en := c.Default()
	it, _ := c.Lookup("it")

	assert.Equal(t, "25.00", en.Amount(core.Money{Cents: 2500}))
	assert.Equal(t, "25,50", it.Amount(core.Money{Cents: 2550}))
	assert.Equal(t, "1,234", en.Count(1234))
}

func TestLocale_Month(t *testing.T) {
	c := newCatalog(t, "en")
	it, _ := c.Lookup("it")
	ar, _ := c.Lookup("ar")

	assert.Equal(t, "March 2024", c.Default().Month("2024-03"))
	assert.Equal(t, "Marzo 2024", it.Month("2024-03"))
	assert.Equal(t, "مارس 2024", ar.Month("2024-03"))
	assert.Equal(t, "bogus", c.Default().Month("bogus"))
}
