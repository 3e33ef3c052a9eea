package model

// Deadline kinds in the dashboard and reminder feeds.
const (
	DeadlineApplication = "application"
	DeadlineReport      = "report"
	DeadlineCompliance  = "compliance"
)

type Deadline struct {
	Type       string `json:"type"`
	ReportType string `json:"report_type,omitempty"`
	ID         string `json:"id"`
	GrantID    string `json:"grant_id"`
	Title      string `json:"title"`
	Date       string `json:"date"`
	DaysLeft   int    `json:"days_left"`
}

type Dashboard struct {
	Pipeline          map[string]int `json:"pipeline"`
	TotalPending      float64        `json:"total_pending"`
	TotalAwarded      float64        `json:"total_awarded"`
	ActiveGrants      int            `json:"active_grants"`
	InProgress        int            `json:"in_progress"`
	UpcomingDeadlines []Deadline     `json:"upcoming_deadlines"`
	OverdueCount      int            `json:"overdue_count"`
	SuccessRate       int            `json:"success_rate"`
}

// CalendarEvent is one all-day entry in the calendar export.
type CalendarEvent struct {
	UID         string `json:"-"`
	Title       string `json:"title"`
	Date        string `json:"date"`
	Description string `json:"description"`
}
