// Package importer loads invoices in bulk from CSV exports.
package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/MrJamesThe3rd/dashboard/internal/encoding"
	"github.com/MrJamesThe3rd/dashboard/internal/invoice"
)

// Row is one data line of an import file, shaped like a submitted invoice form.
type Row struct {
	Line int
	Form url.Values
}

// headers maps accepted column titles, lowercased, to form fields.
var headers = map[string]string{
	"customerid":  invoice.FieldCustomerID,
	"customer_id": invoice.FieldCustomerID,
	"customer":    invoice.FieldCustomerID,
	"amount":      invoice.FieldAmount,
	"status":      invoice.FieldStatus,
}

var requiredFields = []string{invoice.FieldCustomerID, invoice.FieldAmount, invoice.FieldStatus}

// Parse decodes r to UTF-8 and reads it as CSV with a header row. Both
// comma and semicolon separated files are accepted; in the latter amounts
// may use a decimal comma ("1.234,56").
func Parse(r io.Reader) ([]Row, encoding.Charset, error) {
	utf8r, charset, err := encoding.Decode(r)
	if err != nil {
		return nil, "", err
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, charset, fmt.Errorf("reading import: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	cols, err := readHeader(reader)
	if err != nil {
		return nil, charset, err
	}

	var rows []Row

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, charset, fmt.Errorf("reading csv: %w", err)
		}

		if blank(record) {
			continue
		}

		line, _ := reader.FieldPos(0)

		form := url.Values{}
		for field, idx := range cols {
			form.Set(field, cellValue(record, idx))
		}

		if reader.Comma == ';' {
			form.Set(invoice.FieldAmount, normalizeDecimalComma(form.Get(invoice.FieldAmount)))
		}

		rows = append(rows, Row{Line: line, Form: form})
	}

	return rows, charset, nil
}

func readHeader(reader *csv.Reader) (map[string]int, error) {
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil, errors.New("import has no header row")
		}

		if err != nil {
			return nil, fmt.Errorf("reading csv header: %w", err)
		}

		if blank(record) {
			continue
		}

		cols := make(map[string]int, len(requiredFields))

		for i, cell := range record {
			if field, ok := headers[strings.ToLower(strings.TrimSpace(cell))]; ok {
				cols[field] = i
			}
		}

		for _, field := range requiredFields {
			if _, ok := cols[field]; !ok {
				return nil, fmt.Errorf("import header is missing a %q column", field)
			}
		}

		return cols, nil
	}
}

// delimiter picks ';' when the first non-blank line has more semicolons than commas.
func delimiter(data []byte) rune {
	for line := range bytes.Lines(data) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
			return ';'
		}

		break
	}

	return ','
}

func normalizeDecimalComma(s string) string {
	if !strings.Contains(s, ",") {
		return s
	}

	s = strings.ReplaceAll(s, ".", "")

	return strings.ReplaceAll(s, ",", ".")
}

func blank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}

	return true
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
