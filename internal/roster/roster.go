package roster

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Record is one imported row, keyed by canonical field name.
type Record map[string]string

// Entry is a participant row extracted from a Record.
type Entry struct {
	Name        string
	Phone       string
	Affiliation string
	StudentID   string
}

// Canonical field names produced by Parse.
const (
	FieldName        = "name"
	FieldPhone       = "phone"
	FieldAffiliation = "affiliation"
	FieldStudentID   = "student_id"
)

// headerAliases maps accepted column headers to canonical field names. The
// Korean headers are the ones the original spreadsheet templates use.
var headerAliases = map[string]string{
	"name":        FieldName,
	"이름":          FieldName,
	"phone":       FieldPhone,
	"전화번호":        FieldPhone,
	"affiliation": FieldAffiliation,
	"소속":          FieldAffiliation,
	"studentid":   FieldStudentID,
	"student_id":  FieldStudentID,
	"학번":          FieldStudentID,
}

// Parse reads a comma-delimited roster into ordered Records. The first row is
// the header; unknown columns are ignored and rows whose column count does
// not match the header are skipped.
func Parse(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("roster is empty")
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = headerAliases[strings.ToLower(strings.TrimSpace(h))]
	}

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) != len(header) {
			continue
		}
		record := Record{}
		for i, value := range row {
			if header[i] == "" {
				continue
			}
			record[header[i]] = strings.TrimSpace(value)
		}
		if len(record) == 0 {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// Entries converts Records into Entry values, enforcing the required fields.
func Entries(records []Record) ([]Entry, error) {
	entries := make([]Entry, 0, len(records))
	for i, record := range records {
		entry := Entry{
			Name:        record[FieldName],
			Phone:       record[FieldPhone],
			Affiliation: record[FieldAffiliation],
			StudentID:   record[FieldStudentID],
		}
		if entry.Name == "" || entry.Phone == "" {
			return nil, fmt.Errorf("roster row %d: name and phone are required", i+1)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
