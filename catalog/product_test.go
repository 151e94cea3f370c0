package catalog

import (
	"strings"
	"testing"
)

func TestTruncate(t *testing.T) {
	long := strings.Repeat("a", 250)
	got := truncate(long, 200)
	if len(got) != 203 || !strings.HasSuffix(got, "...") {
		t.Errorf("expected 200 chars + ellipsis, got %d chars", len(got))
	}

	short := "Coton 100%"
	if got := truncate(short, 200); got != short {
		t.Errorf("under-budget value must be returned verbatim, got %q", got)
	}

	multiline := "ligne une\r\nligne  deux"
	if got := truncate(multiline, 500); got != "ligne une ligne deux" {
		t.Errorf("expected flattened whitespace, got %q", got)
	}

	// Fields without a budget keep their line breaks, only outer
	// whitespace is trimmed.
	if got := truncate("  20 x 30\ncm  ", 0); got != "20 x 30\ncm" {
		t.Errorf("zero-budget value must be returned verbatim after trimming, got %q", got)
	}

	accented := strings.Repeat("é", 210)
	got = truncate(accented, 200)
	if !strings.HasSuffix(got, "...") || len([]rune(got)) != 203 {
		t.Errorf("truncation must count characters, not bytes: %d runes", len([]rune(got)))
	}
}

func TestCleanHTML(t *testing.T) {
	cases := map[string]string{
		"<p>Bonjour <b>madame</b></p>":     "Bonjour madame",
		"Fish &amp; Chips":                 "Fish & Chips",
		"  déjà   propre  ":                "déjà propre",
		"":                                 "",
		"   ":                              "",
		"<div><span>imbriqué</span></div>": "imbriqué",
	}
	for in, want := range cases {
		if got := cleanHTML(in); got != want {
			t.Errorf("cleanHTML(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHeadersAndMappingsAligned(t *testing.T) {
	if len(displayHeaders) != len(technicalMappings) {
		t.Fatalf("display headers (%d) and technical mappings (%d) must have the same width",
			len(displayHeaders), len(technicalMappings))
	}
	p := Product{}
	if len(p.Row()) != len(displayHeaders) {
		t.Errorf("product row width %d does not match header width %d", len(p.Row()), len(displayHeaders))
	}
}

func TestEmptyRow(t *testing.T) {
	row := emptyRow("3001234567890", ModeEAN)
	if row[eanColumn] != "3001234567890" {
		t.Errorf("EAN code not placed in EAN column")
	}
	for i, cell := range row {
		if i != eanColumn && cell != "" {
			t.Errorf("expected empty cell at %d, got %q", i, cell)
		}
	}

	row = emptyRow("REF-1", ModeREF)
	if row[skuColumn] != "REF-1" {
		t.Errorf("REF code not placed in Shop sku column")
	}
}

func TestRefMatches(t *testing.T) {
	cases := []struct {
		input, candidate string
		want             bool
	}{
		{"100", "1005", true}, // historical looseness, both directions
		{"1005", "100", true},
		{"ABC", "abc-12", true},
		{"XYZ", "ABC", false},
	}
	for _, c := range cases {
		if got := refMatches(c.input, c.candidate); got != c.want {
			t.Errorf("refMatches(%q, %q) = %v, want %v", c.input, c.candidate, got, c.want)
		}
	}
}

func TestCleanCodes(t *testing.T) {
	got := CleanCodes([]string{" 111 ", "", "222", "   "})
	if len(got) != 2 || got[0] != "111" || got[1] != "222" {
		t.Errorf("unexpected cleaned codes: %v", got)
	}
}
