package attendance

import (
	"strings"
)

const headerScanRows = 10

var columnAliases = map[string][]string{
	"dateTime":       {"date/time", "datetime", "date time", "time", "timestamp", "punch time", "check time", "date and time"},
	"name":           {"name", "employee name", "full name", "emp name"},
	"employeeNumber": {"no.", "no", "ac-no.", "ac-no", "ac no", "employee no", "employee no.", "employee number", "emp no", "emp no.", "employee id", "id", "user id", "enroll no", "badge"},
	"status":         {"status", "state", "type", "in/out", "check type", "punch state"},
	"department":     {"department", "dept", "dept.", "division"},
}

var summaryColumns = []string{
	"total hours", "total hour", "days worked", "work days", "working days", "absent", "absence",
	"late (min)", "late minutes", "early (min)", "overtime", "ot hours", "attended",
}

// RowsFromTable maps a spreadsheet-like table onto raw rows. It fails with a
// FileShapeError when the table is a summary report or has no recognisable
// attendance header.
func RowsFromTable(table [][]string) ([]RawRow, error) {
	headerIdx, columns := findHeader(table)
	if headerIdx < 0 {
		if cols := summaryHeader(table); len(cols) > 0 {
			return nil, &FileShapeError{Reason: "summary report columns found without a date/time column", Columns: cols}
		}
		return nil, &FileShapeError{Reason: "no header with date/time, name, number and status columns"}
	}

	rows := make([]RawRow, 0, len(table)-headerIdx-1)
	for _, record := range table[headerIdx+1:] {
		if blankRecord(record) {
			continue
		}
		rows = append(rows, RawRow{
			DateTime:       cell(record, columnIndex(columns, "dateTime")),
			Name:           cell(record, columnIndex(columns, "name")),
			EmployeeNumber: cell(record, columnIndex(columns, "employeeNumber")),
			Status:         cell(record, columnIndex(columns, "status")),
			Department:     cell(record, columnIndex(columns, "department")),
		})
	}
	if len(rows) == 0 {
		return nil, ErrEmptyImport
	}
	return rows, nil
}

func findHeader(table [][]string) (int, map[string]int) {
	for idx := 0; idx < len(table) && idx < headerScanRows; idx++ {
		columns := mapColumns(table[idx])
		_, hasTime := columns["dateTime"]
		_, hasName := columns["name"]
		_, hasNumber := columns["employeeNumber"]
		_, hasStatus := columns["status"]
		if hasTime && hasName && hasNumber && hasStatus {
			return idx, columns
		}
	}
	return -1, nil
}

func mapColumns(header []string) map[string]int {
	columns := map[string]int{}
	for idx, raw := range header {
		name := normalizeHeader(raw)
		for field, aliases := range columnAliases {
			if _, taken := columns[field]; taken {
				continue
			}
			for _, alias := range aliases {
				if name == alias {
					columns[field] = idx
					break
				}
			}
		}
	}
	return columns
}

func summaryHeader(table [][]string) []string {
	var found []string
	for idx := 0; idx < len(table) && idx < headerScanRows; idx++ {
		for _, raw := range table[idx] {
			name := normalizeHeader(raw)
			for _, col := range summaryColumns {
				if name == col {
					found = append(found, strings.TrimSpace(raw))
				}
			}
		}
		if len(found) > 0 {
			return found
		}
	}
	return nil
}

func normalizeHeader(header string) string {
	return strings.ToLower(strings.Join(strings.Fields(header), " "))
}

func columnIndex(columns map[string]int, field string) int {
	if idx, ok := columns[field]; ok {
		return idx
	}
	return -1
}

func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func blankRecord(record []string) bool {
	for _, value := range record {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}
