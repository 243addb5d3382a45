package display

import (
	"stealthcompany.com/wardconsole/internal/resources"
)

// BedsInDepartment keeps the available beds of one department, ordered by room then bed number.
// departmentID 0 keeps every available bed.
func BedsInDepartment(beds []resources.Bed, departmentID int64) []resources.Bed {
	available := FilterBy(beds, func(b resources.Bed) bool {
		return b.Status == "" || normaliseStatus(b.Status) == "AVAILABLE"
	})
	inDept := InDepartment(available, departmentID, func(b resources.Bed) int64 { return b.DepartmentID })
	return SortBy(inDept, func(a, b resources.Bed) bool {
		if a.RoomNumber != b.RoomNumber {
			return a.RoomNumber < b.RoomNumber
		}
		return a.BedNumber < b.BedNumber
	})
}
