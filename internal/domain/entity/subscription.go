package entity

// Subscription holds the notification recipients of a project.
type Subscription struct {
	Project      string   `json:"project"`
	Emails       []string `json:"emails"`
	DailySummary bool     `json:"daily_summary"`
}
