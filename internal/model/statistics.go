package model

// ActionCount is a per-action aggregate row for activity statistics.
type ActionCount struct {
	Action string `json:"action"`
	Count  int64  `json:"count"`
}

// EntityCount is a per-entity-type aggregate row for activity statistics.
type EntityCount struct {
	EntityType string `json:"entity_type"`
	Count      int64  `json:"count"`
}

// PerformerCount ranks a performer by recorded action count.
type PerformerCount struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// ActivityStats aggregates activity log counts over a rolling window.
type ActivityStats struct {
	TotalActivities int64            `json:"total_activities"`
	TodayActivities int64            `json:"today_activities"`
	ActionStats     []ActionCount    `json:"action_stats"`
	EntityStats     []EntityCount    `json:"entity_stats"`
	TopAdminUsers   []PerformerCount `json:"top_admin_users"`
	TopCustomUsers  []PerformerCount `json:"top_custom_users"`
	DateRangeDays   int              `json:"date_range_days"`
}

// EventTypeBreakdown aggregates bookings grouped by event type.
type EventTypeBreakdown struct {
	EventType    string `json:"event_type"`
	Count        int64  `json:"count"`
	TotalAdvance string `json:"total_advance"`
}

// BookingReportStats summarizes a filtered booking report.
type BookingReportStats struct {
	TotalBookings  int64                `json:"total_bookings"`
	TotalAdvance   string               `json:"total_advance"`
	EventBreakdown []EventTypeBreakdown `json:"event_breakdown"`
}
