package attendance

import "sort"

// Assemble sorts employees by name, then employee number, sorts each
// employee's days and sets TotalDays.
func Assemble(employees []EmployeeRecord) []EmployeeRecord {
	out := append([]EmployeeRecord(nil), employees...)
	for i := range out {
		days := append([]DailyRecord(nil), out[i].Days...)
		sortDays(days)
		out[i].Days = days
		out[i].TotalDays = len(days)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].EmployeeNumber < out[j].EmployeeNumber
	})
	return out
}
