package utils

import "testing"

// TestSlugify checks user-facing names collapse to URL-safe slugs.
func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Leduc Night #3":   "leduc-night-3",
		"friday night uno": "friday-night-uno",
		"Café Royale":      "cafe-royale",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Fatalf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

// TestDisplayName checks catalog machine names turn into titles.
func TestDisplayName(t *testing.T) {
	cases := map[string]string{
		"leduc-holdem":    "Leduc Holdem",
		"no-limit-holdem": "No Limit Holdem",
		"uno":             "Uno",
	}
	for in, want := range cases {
		if got := DisplayName(in); got != want {
			t.Fatalf("DisplayName(%q) = %q, want %q", in, got, want)
		}
	}
}
