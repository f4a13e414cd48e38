package dashboard

// DashboardResponse is the snapshot behind the main dashboard. It is computed
// on every request and never stored.
type DashboardResponse struct {
	TotalEmployees int               `json:"total_employees"`
	PresentToday   int               `json:"present_today"`
	AbsentToday    int               `json:"absent_today"`
	Departments    []DepartmentCount `json:"departments"`
	Date           string            `json:"date"` // Format: "YYYY-MM-DD", the day counted as today
}

// DepartmentCount is the headcount of one department value, empty string included
type DepartmentCount struct {
	Department string `json:"department"`
	Count      int    `json:"count"`
}
