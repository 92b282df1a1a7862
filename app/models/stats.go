package models

// DailyStats is the number of records created on one day (YYYY-MM-DD).
type DailyStats struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}
