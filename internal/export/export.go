// Package export renders saved leads, search history and keyword lists as
// CSV, JSON or XLSX downloads.
package export

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/intentiq/intentiq/internal/domain"
)

// Format selects the output encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// ParseFormat validates a user-supplied format string. Empty defaults to CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", domain.InvalidInputf("unknown export format %q", s)
	}
}

// Kind selects which dataset is exported.
type Kind string

const (
	KindLeads    Kind = "leads"
	KindSearches Kind = "searches"
	KindKeywords Kind = "keywords"
)

// ParseKind validates a user-supplied export type. Empty defaults to leads.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(s)) {
	case "", KindLeads:
		return KindLeads, nil
	case KindSearches:
		return KindSearches, nil
	case KindKeywords:
		return KindKeywords, nil
	default:
		return "", domain.InvalidInputf("unknown export type %q", s)
	}
}

// ContentType is the HTTP content type for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv"
	}
}

// Filename builds the attachment name for a lead export.
func (f Format) Filename(now time.Time) string {
	return f.FilenameFor(KindLeads, now)
}

// FilenameFor builds the attachment name for an export of the given kind.
func (f Format) FilenameFor(kind Kind, now time.Time) string {
	return fmt.Sprintf("%s-%s.%s", kind, now.Format("2006-01-02"), f)
}

// Column order shared by all lead encoders.
var headers = []string{
	"id", "platform", "author", "content", "url", "engagement",
	"intent_label", "confidence", "keywords", "signals",
	"is_contacted", "contacted_at", "notes", "tags", "posted_at", "created_at",
}

func leadTable(leads []domain.Lead) table {
	t := table{headers: headers}
	for _, lead := range leads {
		t.rows = append(t.rows, row(lead))
	}
	return t
}

func row(lead domain.Lead) []string {
	contactedAt := ""
	if lead.ContactedAt != nil {
		contactedAt = lead.ContactedAt.UTC().Format(time.RFC3339)
	}
	return []string{
		lead.ID,
		string(lead.Platform),
		lead.Author,
		lead.Content,
		lead.URL,
		strconv.Itoa(lead.Engagement),
		string(lead.IntentLabel),
		strconv.Itoa(lead.Confidence),
		strings.Join(lead.Keywords, "; "),
		strings.Join(lead.Signals, "; "),
		strconv.FormatBool(lead.IsContacted),
		contactedAt,
		lead.Notes,
		strings.Join(lead.Tags, "; "),
		lead.PostedAt.UTC().Format(time.RFC3339),
		lead.CreatedAt.UTC().Format(time.RFC3339),
	}
}
