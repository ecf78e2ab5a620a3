package domain

// Department is the municipal unit owning a complaint.
type Department string

const (
	DepartmentRoads      Department = "Roads & Infrastructure"
	DepartmentSanitation Department = "Sanitation & Waste"
	DepartmentLighting   Department = "Street Lighting"
	DepartmentWater      Department = "Water Supply"
	DepartmentParks      Department = "Parks & Gardens"
	DepartmentGeneral    Department = "General"
)

// Departments lists the fixed enumeration.
var Departments = []Department{
	DepartmentRoads,
	DepartmentSanitation,
	DepartmentLighting,
	DepartmentWater,
	DepartmentParks,
	DepartmentGeneral,
}

// Valid reports whether d belongs to the enumeration.
func (d Department) Valid() bool {
	for _, candidate := range Departments {
		if candidate == d {
			return true
		}
	}
	return false
}
