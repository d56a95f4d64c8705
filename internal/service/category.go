package service

import "strings"

// Category is a keyword-derived damage bucket with its USD cost bracket
type Category struct {
	Name string
	Lo   int
	Hi   int
}

// DefaultCategoryName is used when no keyword matches
const DefaultCategoryName = "default"

// defaultCategories is the ordered keyword list. Order matters: the classifier
// is strictly first-match-wins, and the matched category selects the price
// bracket, so reordering this slice changes observable estimates.
var defaultCategories = []Category{
	{Name: "pothole", Lo: 400, Hi: 900},
	{Name: "streetlight", Lo: 200, Hi: 500},
	{Name: "sanitation", Lo: 300, Hi: 800},
	{Name: "electrical", Lo: 350, Hi: 1000},
	{Name: "road", Lo: 600, Hi: 2000},
	{Name: "water", Lo: 450, Hi: 1200},
	{Name: "drainage", Lo: 500, Hi: 1400},
	{Name: "public property", Lo: 250, Hi: 700},
}

// defaultFallback is the bracket for text matching no keyword
var defaultFallback = Category{Name: DefaultCategoryName, Lo: 500, Hi: 1500}

// Classifier maps free-text damage descriptions to a category
type Classifier struct {
	categories []Category
	fallback   Category
}

// NewClassifier creates a classifier with the built-in keyword list
func NewClassifier() *Classifier {
	return &Classifier{
		categories: defaultCategories,
		fallback:   defaultFallback,
	}
}

// NewClassifierWithCategories creates a classifier with a custom ordered list
func NewClassifierWithCategories(categories []Category, fallback Category) *Classifier {
	return &Classifier{
		categories: categories,
		fallback:   fallback,
	}
}

// Classify returns the first category whose keyword is a substring of the
// lowercased "title description" concatenation, or the fallback.
func (c *Classifier) Classify(title, description string) Category {
	text := strings.ToLower(title + " " + description)
	for _, cat := range c.categories {
		if strings.Contains(text, cat.Name) {
			return cat
		}
	}
	return c.fallback
}

// Categories returns the ordered keyword list
func (c *Classifier) Categories() []Category {
	return c.categories
}

// Fallback returns the default category
func (c *Classifier) Fallback() Category {
	return c.fallback
}
