package domain

import (
	"fmt"
	"time"
)

// Category is the closed classification of a project.
type Category string

const (
	CategoryResidential Category = "Residential"
	CategoryCommercial  Category = "Commercial"
	CategoryIndustrial  Category = "Industrial"
)

// CategoryAll is the facet sentinel that disables category filtering.
const CategoryAll = "All"

// Categories lists every valid category, in the order the portfolio page
// shows its facets.
var Categories = []Category{CategoryCommercial, CategoryResidential, CategoryIndustrial}

func (c Category) Valid() bool {
	switch c {
	case CategoryResidential, CategoryCommercial, CategoryIndustrial:
		return true
	}
	return false
}

// ParseCategory accepts only the exact enumerated spellings.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
	}
	return c, nil
}

// Project is a portfolio entry. It is created once by the submission
// workflow and never modified afterwards.
type Project struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURLs   []string  `json:"imageUrls"`
	Category    Category  `json:"category"`
	Tags        []string  `json:"tags"`
	Featured    bool      `json:"featured"`
	CreatedAt   time.Time `json:"createdAt"`
	AuthorUID   string    `json:"authorUid"`
}

// Flag names a field that QueryByFlag may filter on with equality.
type Flag string

const (
	FlagFeatured Flag = "featured"
	FlagCategory Flag = "category"
)

// CheckFlagValue verifies value has the type the flag's field stores and
// returns it normalised for storage queries.
func CheckFlagValue(flag Flag, value any) (any, error) {
	switch flag {
	case FlagFeatured:
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: featured expects a bool, got %T", ErrInvalidFlag, value)
		}
		return b, nil
	case FlagCategory:
		var c Category
		switch v := value.(type) {
		case Category:
			c = v
		case string:
			c = Category(v)
		default:
			return nil, fmt.Errorf("%w: category expects a string, got %T", ErrInvalidFlag, value)
		}
		if !c.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, string(c))
		}
		return string(c), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidFlag, string(flag))
}
