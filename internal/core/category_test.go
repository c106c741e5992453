package core

import (
	"errors"
	"strings"
	"testing"
)

func TestCustomCategoryKey(t *testing.T) {
	cases := map[string]string{
		"Pets":             "CUSTOM_PETS",
		"  home   office ": "CUSTOM_HOME_OFFICE",
		"Kids\tschool":     "CUSTOM_KIDS_SCHOOL",
		"gym":              "CUSTOM_GYM",
	}
	for in, want := range cases {
		if got := CustomCategoryKey(in); got != want {
			t.Fatalf("CustomCategoryKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCustomCategoryKeyIsStableForSameLabel(t *testing.T) {
	a := CustomCategoryKey("Home Office")
	b := CustomCategoryKey("home office")
	if a != b {
		t.Fatalf("expected same key, got %q and %q", a, b)
	}
}

func TestLabel(t *testing.T) {
	customs := []CustomCategory{{Value: "CUSTOM_PETS", Label: "Pets"}}
	cases := []struct {
		key, want string
	}{
		{"FOOD", "Food"},
		{"UTILITY", "Utilities"},
		{"CUSTOM_PETS", "⭐ Pets"},
		{"CUSTOM_UNKNOWN", "CUSTOM_UNKNOWN"},
		{"WHATEVER", "WHATEVER"},
	}
	for _, tc := range cases {
		if got := Label(tc.key, customs); got != tc.want {
			t.Fatalf("Label(%q) = %q, want %q", tc.key, got, tc.want)
		}
	}
}

func TestIsKnownCategory(t *testing.T) {
	for _, c := range StandardCategories() {
		if !IsKnownCategory(c.Value) {
			t.Fatalf("%s should be known", c.Value)
		}
	}
	if !IsKnownCategory("CUSTOM_ANYTHING") {
		t.Fatalf("custom prefix should be accepted")
	}
	if IsKnownCategory("custom_lower") || IsKnownCategory("") {
		t.Fatalf("unexpected acceptance")
	}
}

func TestNormalizeCustomLabel(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"  Pets ", "Pets", true},
		{"ab", "ab", true},
		{" a ", "", false},
		{"", "", false},
		{strings.Repeat("x", 50), strings.Repeat("x", 50), true},
		{strings.Repeat("x", 51), "", false},
	}
	for _, tc := range cases {
		got, err := NormalizeCustomLabel(tc.in)
		if tc.ok {
			if err != nil || got != tc.want {
				t.Fatalf("%q expected %q, got %q (err=%v)", tc.in, tc.want, got, err)
			}
			continue
		}
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("%q expected validation error, got %v", tc.in, err)
		}
	}
}

func TestOptions(t *testing.T) {
	customs := []CustomCategory{{Value: "CUSTOM_PETS", Label: "Pets"}}
	opts := Options(customs)
	std := StandardCategories()
	if len(opts) != len(std)+1 {
		t.Fatalf("expected %d options, got %d", len(std)+1, len(opts))
	}
	last := opts[len(opts)-1]
	if !last.Custom || last.Value != "CUSTOM_PETS" || last.Label != "⭐ Pets" {
		t.Fatalf("unexpected custom option %+v", last)
	}
	if !HasLabel(customs, "PETS") {
		t.Fatalf("HasLabel should ignore case")
	}
}
