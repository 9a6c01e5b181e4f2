// Package export renders the admin inbox as downloadable files.
package export

import (
	"bufio"
	"io"
	"strings"
	"time"

	"github.com/dreamspace-builders/site-backend/internal/enquiries/domain"
)

// DateLayout is how timestamps appear in every export.
const DateLayout = "Jan 2, 2006, 3:04 PM"

// Columns is the fixed export column order.
var Columns = []string{"Date", "Name", "Email", "Phone", "Subject", "Message"}

// Filename returns a dated download name such as enquiries-2026-10-17.csv.
func Filename(ext string, now time.Time) string {
	return "enquiries-" + now.Format("2006-01-02") + "." + ext
}

func formatDate(t *time.Time, loc *time.Location) string {
	if t == nil {
		return "N/A"
	}
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateLayout)
}

func record(e domain.Enquiry, loc *time.Location) []string {
	return []string{formatDate(e.CreatedAt, loc), e.Name, e.Email, e.Phone, e.Subject, e.Message}
}

// WriteCSV writes a header line followed by one line per enquiry. Every
// field is double-quoted and inner quotes are doubled.
func WriteCSV(w io.Writer, list []domain.Enquiry, loc *time.Location) error {
	bw := bufio.NewWriter(w)
	writeLine(bw, Columns)
	for _, e := range list {
		writeLine(bw, record(e, loc))
	}
	return bw.Flush()
}

func writeLine(w *bufio.Writer, fields []string) {
	for i, f := range fields {
		if i > 0 {
			w.WriteByte(',')
		}
		w.WriteByte('"')
		w.WriteString(strings.ReplaceAll(f, `"`, `""`))
		w.WriteByte('"')
	}
	w.WriteString("\r\n")
}
