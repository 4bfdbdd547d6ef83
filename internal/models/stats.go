package models

// DateCount — количество записей за день.
type DateCount struct {
	Date  string `bson:"_id" json:"date"`
	Count int64  `bson:"count" json:"count"`
}

// DashboardStats сводная статистика для панели администратора.
type DashboardStats struct {
	TotalUsers     int64            `json:"totalUsers"`
	TotalContacts  int64            `json:"totalContacts"`
	UsersByPlan    map[string]int64 `json:"usersByPlan"`
	ContactsByDate []DateCount      `json:"contactsByDate"`
}
