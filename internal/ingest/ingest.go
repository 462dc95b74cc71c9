// Package ingest turns tabular sources (delimited text files, spreadsheet
// workbooks, shared-spreadsheet export URLs) into a uniform
// (rows, headers) dataset for the decision pipeline.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/cdirx/decision-tool/internal/domain"
)

// File ingests an uploaded file, dispatching on its extension. CSV is
// parsed as delimited text with a header row; .xlsx/.xls are read as a
// workbook. Anything else is ErrUnsupportedFormat.
func File(filename string, r io.Reader) (*domain.Dataset, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return CSV(r)
	case ".xlsx", ".xls":
		return Workbook(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}
}

// CSV parses delimited text with the first line as headers. Blank lines
// are skipped; a record with the wrong field count is a *ParseError.
func CSV(r io.Reader) (*domain.Dataset, error) {
	reader := csv.NewReader(r)

	headers, err := reader.Read()
	if err != nil {
		return nil, &ParseError{Format: "csv", Err: fmt.Errorf("read header: %w", err)}
	}
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}

	var rows []domain.Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Format: "csv", Err: err}
		}
		row := make(domain.Row, len(headers))
		for i, h := range headers {
			row[h] = record[i]
		}
		rows = append(rows, row)
	}

	return &domain.Dataset{Headers: headers, Rows: rows}, nil
}

// Workbook reads the first sheet of a spreadsheet binary. Row 0 becomes
// the header list; later rows are zipped against it, with missing trailing
// cells defaulting to the empty string.
func Workbook(r io.Reader) (*domain.Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &ParseError{Format: "workbook", Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ParseError{Format: "workbook", Err: fmt.Errorf("workbook has no sheets")}
	}

	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &ParseError{Format: "workbook", Err: err}
	}
	if len(cells) == 0 {
		return nil, &ParseError{Format: "workbook", Err: fmt.Errorf("sheet %s is empty", sheets[0])}
	}

	headers := make([]string, len(cells[0]))
	for i, h := range cells[0] {
		headers[i] = strings.TrimSpace(h)
	}

	rows := make([]domain.Row, 0, len(cells)-1)
	for _, record := range cells[1:] {
		row := make(domain.Row, len(headers))
		for i, h := range headers {
			if i < len(record) {
				row[h] = record[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}

	return &domain.Dataset{Headers: headers, Rows: rows}, nil
}
