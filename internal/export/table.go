package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/intentiq/intentiq/internal/domain"
)

// table is a format-independent export: a header row plus data rows, in the
// column order the encoders share.
type table struct {
	headers []string
	rows    [][]string
}

func csvTable(t table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(t.headers); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for _, r := range t.rows {
		if err := w.Write(r); err != nil {
			return nil, fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func xlsxTable(t table) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for i, h := range t.headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	for rowIdx, r := range t.rows {
		for colIdx, value := range r {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return nil, fmt.Errorf("data cell: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return nil, fmt.Errorf("write row: %w", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func jsonValue(v any) ([]byte, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal export: %w", err)
	}
	return out, nil
}

var runHeaders = []string{
	"id", "keywords", "platforms", "result_count", "high_intent_count",
	"medium_intent_count", "low_intent_count", "duration_ms", "created_at",
}

func runTable(runs []domain.SearchRun) table {
	t := table{headers: runHeaders}
	for _, run := range runs {
		t.rows = append(t.rows, []string{
			run.ID,
			strings.Join(run.Keywords, "; "),
			strings.Join(run.Platforms, "; "),
			strconv.Itoa(run.ResultCount),
			strconv.Itoa(run.HighIntentCount),
			strconv.Itoa(run.MediumIntentCount),
			strconv.Itoa(run.LowIntentCount),
			strconv.FormatInt(run.DurationMs, 10),
			run.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return t
}

var keywordHeaders = []string{"id", "keyword", "category", "is_active", "created_at"}

func keywordTable(keywords []domain.UserKeyword) table {
	t := table{headers: keywordHeaders}
	for _, kw := range keywords {
		t.rows = append(t.rows, []string{
			kw.ID,
			kw.Keyword,
			kw.Category,
			strconv.FormatBool(kw.IsActive),
			kw.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return t
}

// Runs encodes search-run history in the requested format.
func Runs(format Format, runs []domain.SearchRun) ([]byte, error) {
	switch format {
	case FormatJSON:
		if runs == nil {
			runs = []domain.SearchRun{}
		}
		return jsonValue(runs)
	case FormatXLSX:
		return xlsxTable(runTable(runs))
	default:
		return csvTable(runTable(runs))
	}
}

// Keywords encodes registered keywords in the requested format.
func Keywords(format Format, keywords []domain.UserKeyword) ([]byte, error) {
	switch format {
	case FormatJSON:
		if keywords == nil {
			keywords = []domain.UserKeyword{}
		}
		return jsonValue(keywords)
	case FormatXLSX:
		return xlsxTable(keywordTable(keywords))
	default:
		return csvTable(keywordTable(keywords))
	}
}
