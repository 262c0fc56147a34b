package i18n

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMatch(t *testing.T) {
	b := New(English)

	tests := []struct {
		prefs []string
		want  string
	}{
		{[]string{"ar-EG"}, Arabic},
		{[]string{"ar"}, Arabic},
		{[]string{"en-GB"}, English},
		{[]string{"fr-FR"}, English},
		{[]string{"fr;q=0.9, ar;q=0.8"}, Arabic},
		{nil, English},
	}
	for _, tt := range tests {
		if got := b.Match(tt.prefs...); got != tt.want {
			t.Errorf("Match(%v) = %q, want %q", tt.prefs, got, tt.want)
		}
	}
}

func TestNewFallsBackToEnglish(t *testing.T) {
	if got := New("de").Default(); got != English {
		t.Errorf("expected default en, got %q", got)
	}
	if got := New(Arabic).Default(); got != Arabic {
		t.Errorf("expected default ar, got %q", got)
	}
}

func TestDir(t *testing.T) {
	if Dir(Arabic) != "rtl" {
		t.Error("expected rtl for Arabic")
	}
	if Dir(English) != "ltr" {
		t.Error("expected ltr for English")
	}
}

func TestTranslate(t *testing.T) {
	b := New(English)

	if got := b.T(Arabic, "Agents"); got != "الوكلاء" {
		t.Errorf("unexpected Arabic text %q", got)
	}
	if got := b.T(English, "Agents"); got != "Agents" {
		t.Errorf("expected English key passthrough, got %q", got)
	}
	if got := b.T(English, "%d of %d items processed successfully", 2, 3); got != "2 of 3 items processed successfully" {
		t.Errorf("unexpected formatted text %q", got)
	}
	if got := b.T(Arabic, "Not in the catalog"); got != "Not in the catalog" {
		t.Errorf("expected missing key to fall back to English, got %q", got)
	}

	tr := b.Translator(Arabic)
	if got := tr("Create %s", tr("Agents")); got != "إنشاء الوكلاء" {
		t.Errorf("unexpected translator output %q", got)
	}
}

func TestResolve(t *testing.T) {
	b := New(English)

	newReq := func(cookie, accept string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if cookie != "" {
			r.AddCookie(&http.Cookie{Name: CookieName, Value: cookie})
		}
		if accept != "" {
			r.Header.Set("Accept-Language", accept)
		}
		return r
	}

	if got := b.Resolve(newReq(English, "ar"), Arabic); got != Arabic {
		t.Errorf("expected URL prefix to win, got %q", got)
	}
	if got := b.Resolve(newReq(Arabic, "en"), "static"); got != Arabic {
		t.Errorf("expected cookie to win over header, got %q", got)
	}
	if got := b.Resolve(newReq("xx", "ar-SA,en;q=0.5"), ""); got != Arabic {
		t.Errorf("expected Accept-Language match, got %q", got)
	}
	if got := b.Resolve(newReq("", ""), ""); got != English {
		t.Errorf("expected default, got %q", got)
	}
}

func TestTitle(t *testing.T) {
	if got := Title(English, "property_listings"); got != "Property Listings" {
		t.Errorf("unexpected title %q", got)
	}
}
