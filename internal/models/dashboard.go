package models

// DashboardStats are the platform-wide counters shown to admin and staff.
type DashboardStats struct {
	TotalStores    int `json:"totalStores" db:"total_stores"`
	ApprovedStores int `json:"approvedStores" db:"approved_stores"`
	PendingStores  int `json:"pendingStores" db:"pending_stores"`
	TotalProducts  int `json:"totalProducts" db:"total_products"`
	TotalUsers     int `json:"totalUsers" db:"total_users"`
	StaffUsers     int `json:"staffUsers" db:"staff_users"`
	TotalOrders    int `json:"totalOrders" db:"total_orders"`
	LiveOrders     int `json:"liveOrders" db:"live_orders"`
}
