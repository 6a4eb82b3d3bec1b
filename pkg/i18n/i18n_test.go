package i18n

import "testing"

func TestMatcher_Match(t *testing.T) {
	m := NewMatcher(AllLanguages)

	tests := []struct {
		path     string
		wantLang Language
		wantRest string
		wantOK   bool
	}{
		{"/de", LangDE, "", true},
		{"/de/", LangDE, "", true},
		{"/de/merge-pdf", LangDE, "merge-pdf", true},
		{"/de/tools/merge-pdf.html", LangDE, "tools/merge-pdf.html", true},
		{"/zh-TW/split-pdf", LangZHTW, "split-pdf", true},
		{"/zh/split-pdf", LangZH, "split-pdf", true},
		{"/xx/merge-pdf", "", "", false},
		{"/dex/merge-pdf", "", "", false},
		{"/DE/merge-pdf", "", "", false},
		{"/", "", "", false},
		{"/merge-pdf", "", "", false},
	}

	for _, tt := range tests {
		lang, rest, ok := m.Match(tt.path)
		if ok != tt.wantOK || lang != tt.wantLang || rest != tt.wantRest {
			t.Errorf("Match(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tt.path, lang, rest, ok, tt.wantLang, tt.wantRest, tt.wantOK)
		}
	}
}

func TestMatcher_OnlyConfiguredLanguages(t *testing.T) {
	m := NewMatcher([]Language{LangEN, LangFR})
	if _, _, ok := m.Match("/de/merge-pdf"); ok {
		t.Fatal("expected de to be ignored when not whitelisted")
	}
	if lang, _, ok := m.Match("/fr"); !ok || lang != LangFR {
		t.Fatalf("expected fr match, got %q %v", lang, ok)
	}
}

func TestMatcher_Empty(t *testing.T) {
	m := NewMatcher(nil)
	if _, _, ok := m.Match("/en/"); ok {
		t.Fatal("empty whitelist must never match")
	}
}

func TestMatcher_HasPrefix(t *testing.T) {
	m := NewMatcher(AllLanguages)

	tests := []struct {
		path string
		base string
		want bool
	}{
		{"/de/merge-pdf", "", true},
		{"/de", "", true},
		{"/de?x=1", "", true},
		{"/pdf/de/merge-pdf", "/pdf/", true},
		{"/pdf/merge-pdf", "/pdf/", false},
		{"/merge-pdf", "", false},
		{"/design", "", false},
	}
	for _, tt := range tests {
		if got := m.HasPrefix(tt.path, tt.base); got != tt.want {
			t.Errorf("HasPrefix(%q, %q) = %v, want %v", tt.path, tt.base, got, tt.want)
		}
	}
}

func TestParseLanguages(t *testing.T) {
	langs, err := ParseLanguages("en, de,fr,de", AllLanguages)
	if err != nil {
		t.Fatal(err)
	}
	if len(langs) != 3 || langs[0] != LangEN || langs[1] != LangDE || langs[2] != LangFR {
		t.Fatalf("unexpected languages: %v", langs)
	}

	if _, err := ParseLanguages("en,klingon", AllLanguages); err == nil {
		t.Fatal("expected error for unsupported language")
	}
}

func TestCountryToLanguage(t *testing.T) {
	if lang, ok := CountryToLanguage("br"); !ok || lang != LangPT {
		t.Fatalf("expected pt for BR, got %q %v", lang, ok)
	}
	if lang, ok := CountryToLanguage("AQ"); ok || lang != DefaultLanguage {
		t.Fatalf("expected default for unmapped country, got %q %v", lang, ok)
	}
}

func TestDetector_Priority(t *testing.T) {
	m := NewMatcher(AllLanguages)
	d := NewDetector(m, LangEN, true)

	tests := []struct {
		name string
		s    Signals
		want Language
	}{
		{"url prefix wins", Signals{Path: "/fr/merge-pdf", Cookie: "de", AcceptLanguage: "es"}, LangFR},
		{"cookie", Signals{Path: "/merge-pdf", Cookie: "de", AcceptLanguage: "es"}, LangDE},
		{"unknown cookie ignored", Signals{Path: "/", Cookie: "xx", Country: "IT"}, LangIT},
		{"country", Signals{Path: "/", Country: "NL", AcceptLanguage: "es"}, LangNL},
		{"accept language", Signals{Path: "/", AcceptLanguage: "es-MX,es;q=0.9,en;q=0.5"}, LangES},
		{"unsupported accept language", Signals{Path: "/", AcceptLanguage: "ko-KR"}, LangEN},
		{"nothing", Signals{Path: "/"}, LangEN},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.Detect(tt.s); got != tt.want {
				t.Fatalf("Detect() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetector_NoNegotiation(t *testing.T) {
	d := NewDetector(NewMatcher(AllLanguages), LangEN, false)
	got := d.Detect(Signals{Path: "/", Country: "DE", AcceptLanguage: "de"})
	if got != LangEN {
		t.Fatalf("expected default without negotiation, got %q", got)
	}
}
