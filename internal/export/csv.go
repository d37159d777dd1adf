package export

import (
	"github.com/intentiq/intentiq/internal/domain"
)

// CSV renders leads as RFC 4180 CSV with a header row. An empty lead set
// still yields the header.
func CSV(leads []domain.Lead) ([]byte, error) {
	return csvTable(leadTable(leads))
}
