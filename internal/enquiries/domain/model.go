package domain

import (
	"slices"
	"strings"
	"time"
)

// Enquiry is a contact-form submission.
type Enquiry struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Subject string `json:"subject"`
	Message string `json:"message"`
	// CreatedAt is nil for records written without a server timestamp.
	CreatedAt *time.Time `json:"createdAt"`
	Read      bool       `json:"read"`
}

// NewEnquiry is the public contact form payload. Rules apply to the
// trimmed values, so call Normalize before validating.
type NewEnquiry struct {
	Name    string `json:"name" validate:"required,min=2,max=200"`
	Email   string `json:"email" validate:"required,email,max=320"`
	Phone   string `json:"phone" validate:"omitempty,max=40"`
	Subject string `json:"subject" validate:"required,min=2,max=200"`
	Message string `json:"message" validate:"required,min=10,max=5000"`
}

// Normalize trims surrounding whitespace from every field.
func (n *NewEnquiry) Normalize() {
	n.Name = strings.TrimSpace(n.Name)
	n.Email = strings.TrimSpace(n.Email)
	n.Phone = strings.TrimSpace(n.Phone)
	n.Subject = strings.TrimSpace(n.Subject)
	n.Message = strings.TrimSpace(n.Message)
}

// UnreadIDs returns the ids of records not yet marked read, in list order.
func UnreadIDs(list []Enquiry) []string {
	var ids []string
	for _, e := range list {
		if !e.Read && e.ID != "" {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

// SortNewestFirst orders list by CreatedAt descending in place. Records
// without a timestamp go last. Ties keep their input order.
func SortNewestFirst(list []Enquiry) {
	slices.SortStableFunc(list, func(a, b Enquiry) int {
		switch {
		case a.CreatedAt == nil && b.CreatedAt == nil:
			return 0
		case a.CreatedAt == nil:
			return 1
		case b.CreatedAt == nil:
			return -1
		}
		return b.CreatedAt.Compare(*a.CreatedAt)
	})
}
