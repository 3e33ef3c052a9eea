package mq

const EventDeadlineReminder = "deadline.reminder"

// DeadlineReminderPayload announces an upcoming or overdue date.
// Kind is one of "grant", "report" or "compliance".
type DeadlineReminderPayload struct {
	Kind     string `json:"kind"`
	ID       string `json:"id"`
	GrantID  string `json:"grant_id"`
	Title    string `json:"title"`
	Date     string `json:"date"`
	DaysLeft int    `json:"days_left"`
	Overdue  bool   `json:"overdue"`
}
