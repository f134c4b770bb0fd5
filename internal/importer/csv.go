// Package importer turns loosely-typed contact records (JSON objects or CSV
// rows from LinkedIn, Google Contacts, spreadsheets) into contacts.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Record is one loosely-typed input row, keyed by its original field name.
type Record map[string]any

// ParseLine splits a single CSV line. Quoted fields keep embedded commas.
func ParseLine(line string) ([]string, error) {
	r := newReader(strings.NewReader(line))
	fields, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	return fields, err
}

// ParseCSV reads a CSV document whose first row is the header. Blank
// header cells get positional names so no column is lost.
func ParseCSV(src io.Reader) ([]Record, error) {
	r := newReader(src)
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if header[i] == "" {
			header[i] = fmt.Sprintf("column_%d", i+1)
		}
	}

	var records []Record
	for line := 2; ; line++ {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return records, fmt.Errorf("line %d: %w", line, err)
		}
		if blank(row) {
			continue
		}
		rec := make(Record, len(header))
		for i, h := range header {
			if i < len(row) {
				rec[h] = strings.TrimSpace(row[i])
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func newReader(src io.Reader) *csv.Reader {
	r := csv.NewReader(src)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.LazyQuotes = true
	return r
}

func blank(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
