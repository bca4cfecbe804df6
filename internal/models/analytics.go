package models

// HourBucket is one point in the messages-per-hour series.
type HourBucket struct {
	Hour  string `json:"hour"`
	Count int    `json:"count"`
}

// AnalyticsSnapshot is computed on demand and never stored.
type AnalyticsSnapshot struct {
	ActiveUsers     int          `json:"active_users"`
	TotalMessages   int          `json:"total_messages"`
	MessagesPerHour []HourBucket `json:"messages_per_hour"`
}
