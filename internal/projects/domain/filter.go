package domain

import "strings"

// Filter returns the projects that pass both the category facet and the
// free-text query, in input order. category "All" admits every project; an
// empty query admits every project. Text matching is a case-insensitive
// substring test against title, description and each tag.
func Filter(projects []Project, query, category string) []Project {
	q := strings.ToLower(query)
	out := make([]Project, 0, len(projects))
	for _, p := range projects {
		if category != CategoryAll && string(p.Category) != category {
			continue
		}
		if q != "" && !matchesQuery(p, q) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// matchesQuery expects q already lower-cased.
func matchesQuery(p Project, q string) bool {
	if strings.Contains(strings.ToLower(p.Title), q) ||
		strings.Contains(strings.ToLower(p.Description), q) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}
