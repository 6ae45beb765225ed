package normalizer

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ColumnMap gives the zero-based column index of each panel attribute.
// Weight set to -1 means the sheet carries no weight column.
type ColumnMap struct {
	Type   int
	Length int
	Height int
	Depth  int
	Weight int
}

// ReadOptions configure the file readers. HeaderRow is the zero-based row
// holding the column headers; every row up to and including it is skipped.
type ReadOptions struct {
	Delimiter rune
	HeaderRow int
	Columns   ColumnMap
}

// DefaultReadOptions matches the layout of the cast unit sheets this tool
// is usually fed: semicolon-delimited, headers on the third row, columns
// in type/length/height/depth/weight order.
func DefaultReadOptions() ReadOptions {
	return ReadOptions{
		Delimiter: ';',
		HeaderRow: 2,
		Columns:   ColumnMap{Type: 0, Length: 1, Height: 2, Depth: 3, Weight: 4},
	}
}

// ReadCSV reads raw panel rows from delimited text.
func ReadCSV(r io.Reader, opts ReadOptions) ([]RawPanel, error) {
	reader := csv.NewReader(r)
	reader.Comma = opts.Delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	return rowsToRawPanels(records, opts), nil
}

// ReadXLSX reads raw panel rows from the first sheet of an xlsx workbook.
func ReadXLSX(r io.Reader, opts ReadOptions) ([]RawPanel, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	return rowsToRawPanels(rows, opts), nil
}

func rowsToRawPanels(rows [][]string, opts ReadOptions) []RawPanel {
	var out []RawPanel
	for i, row := range rows {
		if i <= opts.HeaderRow {
			continue
		}
		out = append(out, RawPanel{
			Type:   cell(row, opts.Columns.Type),
			Length: cell(row, opts.Columns.Length),
			Height: cell(row, opts.Columns.Height),
			Depth:  cell(row, opts.Columns.Depth),
			Weight: cell(row, opts.Columns.Weight),
		})
	}
	return out
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
