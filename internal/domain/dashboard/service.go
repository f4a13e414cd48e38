package dashboard

import "context"

// DashboardService defines the interface for dashboard operations
type DashboardService interface {
	// GetDashboard returns the current snapshot. Employees without a record for
	// today are counted in neither present_today nor absent_today.
	GetDashboard(ctx context.Context) (*DashboardResponse, error)
}
