package core

import (
	"strings"
	"time"
	"unicode/utf8"
)

// CustomCategoryPrefix marks user-defined category keys.
const CustomCategoryPrefix = "CUSTOM_"

const (
	customLabelMin = 2
	customLabelMax = 50
	customMarker   = "⭐ "
)

type (
	// CustomCategory is a user-defined category owned by a single user.
	CustomCategory struct {
		OwnerID   string    `json:"-"`
		Value     string    `json:"value"`
		Label     string    `json:"label"`
		CreatedAt time.Time `json:"createdAt"`
	}

	// CategoryOption is what category pickers display.
	CategoryOption struct {
		Value  string `json:"value"`
		Label  string `json:"label"`
		Custom bool   `json:"custom"`
	}
)

var standardCategories = []CategoryOption{
	{Value: "EDUCATION", Label: "Education"},
	{Value: "ENTERTAINMENT", Label: "Entertainment"},
	{Value: "FOOD", Label: "Food"},
	{Value: "HEALTH", Label: "Health"},
	{Value: "HOUSING", Label: "Housing"},
	{Value: "OTHER", Label: "Other"},
	{Value: "SALARY", Label: "Salary"},
	{Value: "TRANSPORTATION", Label: "Transportation"},
	{Value: "UTILITY", Label: "Utilities"},
}

var standardLabels = func() map[string]string {
	m := make(map[string]string, len(standardCategories))
	for _, c := range standardCategories {
		m[c.Value] = c.Label
	}
	return m
}()

// StandardCategories returns the fixed category set in display order.
func StandardCategories() []CategoryOption {
	out := make([]CategoryOption, len(standardCategories))
	copy(out, standardCategories)
	return out
}

func IsStandardCategory(key string) bool {
	_, ok := standardLabels[key]
	return ok
}

func IsCustomCategory(key string) bool {
	return strings.HasPrefix(key, CustomCategoryPrefix)
}

// IsKnownCategory accepts standard keys and anything carrying the custom
// prefix. Custom keys are not checked against the owner's list.
func IsKnownCategory(key string) bool {
	return IsStandardCategory(key) || IsCustomCategory(key)
}

// Label resolves a category key to its display label. Standard keys win,
// then the owner's custom categories, then the raw key itself.
func Label(key string, customs []CustomCategory) string {
	if l, ok := standardLabels[key]; ok {
		return l
	}
	for _, c := range customs {
		if c.Value == key {
			return customMarker + c.Label
		}
	}
	return key
}

// CustomCategoryKey derives the storage key for a custom label: trimmed,
// whitespace runs collapsed to "_", upper-cased and prefixed. Applying it to
// a label twice yields the same key.
func CustomCategoryKey(label string) string {
	return CustomCategoryPrefix + strings.ToUpper(strings.Join(strings.Fields(label), "_"))
}

// NormalizeCustomLabel trims the label and checks its length.
func NormalizeCustomLabel(label string) (string, error) {
	label = strings.TrimSpace(label)
	n := utf8.RuneCountInString(label)
	if n < customLabelMin {
		return "", NewValidationError("label", "must have at least 2 characters")
	}
	if n > customLabelMax {
		return "", NewValidationError("label", "must have at most 50 characters")
	}
	return label, nil
}

// HasLabel reports whether customs already contains label, ignoring case.
func HasLabel(customs []CustomCategory, label string) bool {
	for _, c := range customs {
		if strings.EqualFold(c.Label, label) {
			return true
		}
	}
	return false
}

// Options lists standard categories followed by the owner's custom ones.
func Options(customs []CustomCategory) []CategoryOption {
	out := StandardCategories()
	for _, c := range customs {
		out = append(out, CategoryOption{Value: c.Value, Label: customMarker + c.Label, Custom: true})
	}
	return out
}
