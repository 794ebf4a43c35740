package domain

// DashboardStats are the aggregate counters the dashboard header shows.
// DerivedToday counts `derived` ledger entries since local midnight.
type DashboardStats struct {
	TotalDocuments   int `json:"total_documents"`
	PendingDocuments int `json:"pending_documents"`
	ActiveUsers      int `json:"active_users"`
	DerivedToday     int `json:"derived_today"`
}
