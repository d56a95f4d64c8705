package service

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestClassifyKeywordMatch(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		name        string
		title       string
		description string
		want        string
	}{
		{"keyword in title", "Pothole on Main St", "deep and dangerous", "pothole"},
		{"keyword in description", "Dangerous hole", "it is a pothole", "pothole"},
		{"case insensitive", "POTHOLE", "HUGE", "pothole"},
		{"mixed case", "StreetLight flickering", "corner of 5th", "streetlight"},
		{"substring match", "megapothole!", "", "pothole"},
		{"two words", "broken public property", "vandalized sign", "public property"},
		{"no match falls back", "bench broken", "cracked slats", DefaultCategoryName},
		{"empty input falls back", "", "", DefaultCategoryName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.title, tt.description)
			if got.Name != tt.want {
				t.Errorf("Classify(%q, %q) = %q, want %q", tt.title, tt.description, got.Name, tt.want)
			}
		})
	}
}

func TestClassifyPrecedence(t *testing.T) {
	c := NewClassifier()

	// "pothole" precedes "road" in the keyword order, so text mentioning
	// both must classify as pothole regardless of word position.
	tests := []struct {
		title string
		want  string
	}{
		{"road damage caused a pothole", "pothole"},
		{"pothole in the road", "pothole"},
		{"streetlight down, electrical hazard", "streetlight"},
		{"electrical fault in water pump", "electrical"},
	}

	for _, tt := range tests {
		got := c.Classify(tt.title, "")
		if got.Name != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.title, got.Name, tt.want)
		}
	}
}

func TestClassifyBracketsArePositive(t *testing.T) {
	c := NewClassifier()
	for _, cat := range append(c.Categories(), c.Fallback()) {
		if cat.Lo <= 0 || cat.Hi < cat.Lo {
			t.Errorf("category %q has invalid bracket [%d, %d]", cat.Name, cat.Lo, cat.Hi)
		}
	}
}

// Property: classification always returns the first keyword, in list order,
// contained in the lowercased text.
func TestClassifyFirstMatchProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	c := NewClassifier()
	categories := c.Categories()

	properties.Property("result matches manual first-match scan", prop.ForAll(
		func(first int, second int) bool {
			title := categories[first%len(categories)].Name
			description := categories[second%len(categories)].Name
			text := strings.ToLower(title + " " + description)

			var want string
			for _, cat := range categories {
				if strings.Contains(text, cat.Name) {
					want = cat.Name
					break
				}
			}
			if want == "" {
				want = DefaultCategoryName
			}

			return c.Classify(title, description).Name == want
		},
		gen.IntRange(0, 7),
		gen.IntRange(0, 7),
	))

	properties.TestingRun(t)
}
