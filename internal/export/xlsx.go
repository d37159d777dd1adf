package export

import (
	"github.com/intentiq/intentiq/internal/domain"
)

const sheetName = "Leads"

// XLSX renders leads as a single-sheet workbook with a header row.
func XLSX(leads []domain.Lead) ([]byte, error) {
	return xlsxTable(leadTable(leads))
}

// Render encodes leads in the requested format.
func Render(format Format, leads []domain.Lead) ([]byte, error) {
	switch format {
	case FormatJSON:
		return JSON(leads)
	case FormatXLSX:
		return XLSX(leads)
	default:
		return CSV(leads)
	}
}
