package domain

import (
	"strings"
	"time"
)

// FilterByDateRange keeps records created within [from, to]. A zero bound
// leaves that side open. Records without a timestamp never match.
func FilterByDateRange(list []Enquiry, from, to time.Time) []Enquiry {
	out := make([]Enquiry, 0, len(list))
	for _, e := range list {
		if e.CreatedAt == nil {
			continue
		}
		at := *e.CreatedAt
		if !from.IsZero() && at.Before(from) {
			continue
		}
		if !to.IsZero() && at.After(to) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterByText keeps records whose name, email, phone, subject or message
// contains query, ignoring case. An empty query keeps everything.
func FilterByText(list []Enquiry, query string) []Enquiry {
	q := strings.ToLower(query)
	out := make([]Enquiry, 0, len(list))
	for _, e := range list {
		if q == "" || matchesQuery(e, q) {
			out = append(out, e)
		}
	}
	return out
}

func matchesQuery(e Enquiry, q string) bool {
	for _, field := range [...]string{e.Name, e.Email, e.Phone, e.Subject, e.Message} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}
