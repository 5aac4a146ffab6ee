// Package spreadsheet turns an uploaded recipient file (CSV or XLSX) into
// ordered rows of header-keyed string values.
package spreadsheet

import (
	"encoding/csv"
	"io"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

var (
	// ErrEmptySheet is returned when the file decodes but has no data rows.
	ErrEmptySheet = errors.New("spreadsheet contains no data rows")
	// ErrMissingEmailColumn is returned when no header matches "email" or "e-mail".
	ErrMissingEmailColumn = errors.New("no email column found in header row")
)

// ParseError wraps a decode failure so handlers can classify it as a client error.
type ParseError struct {
	cause error
}

func (e *ParseError) Error() string {
	return "failed to parse spreadsheet: " + e.cause.Error()
}

func (e *ParseError) Unwrap() error {
	return e.cause
}

// Row is one data row of the uploaded file. Number is the 1-based position
// in the file, counting the header row as row 1.
type Row struct {
	Number int
	Values map[string]string
}

// Email returns the value of the resolved email column for this row.
func (r Row) Email(emailColumn string) string {
	return strings.TrimSpace(r.Values[emailColumn])
}

// Sheet is the parsed recipient file.
type Sheet struct {
	Headers     []string
	EmailColumn string
	Rows        []Row
}

// Parse decodes the uploaded file into a Sheet, choosing the decoder from the
// filename extension (.xlsx via excelize, everything else as CSV). The first
// record is the header row; missing trailing cells default to the empty
// string and every value is kept as its literal text.
func Parse(r io.Reader, filename string) (*Sheet, error) {
	var records [][]string
	var err error

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm", ".xls":
		records, err = readExcel(r)
	default:
		records, err = readCSV(r)
	}
	if err != nil {
		return nil, &ParseError{cause: err}
	}

	if len(records) == 0 {
		return nil, &ParseError{cause: errors.New("file has no header row")}
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(h)
	}

	emailColumn, err := resolveEmailColumn(headers)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(records)-1)
	for i, record := range records[1:] {
		values := make(map[string]string, len(headers))
		for j, header := range headers {
			if header == "" {
				continue
			}
			if j < len(record) {
				values[header] = record[j]
			} else {
				values[header] = ""
			}
		}
		rows = append(rows, Row{Number: i + 2, Values: values})
	}

	if len(rows) == 0 {
		return nil, ErrEmptySheet
	}

	return &Sheet{Headers: headers, EmailColumn: emailColumn, Rows: rows}, nil
}

// resolveEmailColumn scans the header row for the column that carries the
// destination address. Matching is on trimmed, lower-cased header text; there
// is no positional fallback.
func resolveEmailColumn(headers []string) (string, error) {
	for _, h := range headers {
		switch strings.ToLower(h) {
		case "email", "e-mail":
			return h, nil
		}
	}
	return "", ErrMissingEmailColumn
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "invalid CSV content")
	}
	return records, nil
}

func readExcel(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "invalid XLSX content")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrap(err, "failed to read rows")
	}
	return rows, nil
}
