// Package export serializes a document into the downloadable CSV table.
package export

import (
	"strconv"
	"strings"

	"tempo/internal/core"
)

// Header is the fixed first row of every export.
const Header = `"Project","Date","Hours","Rate","Earned"`

// BuildCSV produces the export table: one row per (project, entry) pair
// passing both filters, in document order, entries in project order. Every
// field is quoted and numeric fields carry exactly two decimals. There is
// no aggregate footer. An empty projectID matches all projects, archived
// ones included.
func BuildCSV(doc *core.Document, projectID string, r *core.DateRange) string {
	var sb strings.Builder
	sb.WriteString(Header)
	sb.WriteString("\n")

	for i := range doc.Projects {
		p := &doc.Projects[i]
		if projectID != "" && p.ID != projectID {
			continue
		}
		rate := core.EffectiveRate(p, doc.Profile)
		for _, e := range p.Entries {
			if !r.Contains(e.Date) {
				continue
			}
			hours := e.Hours
			sb.WriteString(quote(p.Name))
			sb.WriteString(",")
			sb.WriteString(quote(e.Date))
			sb.WriteString(",")
			sb.WriteString(quote(formatAmount(hours)))
			sb.WriteString(",")
			sb.WriteString(quote(formatAmount(rate)))
			sb.WriteString(",")
			sb.WriteString(quote(formatAmount(hours * rate)))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// Filename returns the suggested download filename for an export covering
// the given range.
func Filename(r *core.DateRange) string {
	return "timesheet-" + r.Label() + ".csv"
}

// quote wraps a field in double quotes, doubling any embedded quotes. Every
// field is quoted unconditionally so the output shape is stable.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func formatAmount(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}
