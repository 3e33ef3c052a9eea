package model

import "time"

// Collection names in the document store.
const (
	CollContent    = "content"
	CollFunders    = "funders"
	CollGrants     = "grants"
	CollReporting  = "reporting"
	CollCompliance = "compliance"
	CollBudgets    = "budgets"
	CollOutcomes   = "outcomes"
	CollSettings   = "settings"
)

// Collections lists every collection in export order.
var Collections = []string{
	CollContent,
	CollFunders,
	CollGrants,
	CollReporting,
	CollCompliance,
	CollBudgets,
	CollOutcomes,
	CollSettings,
}

// Stamper is implemented by records that receive a server-generated id and
// creation timestamps.
type Stamper interface {
	Stamp(id string, now time.Time)
}

// Toucher is implemented by records that refresh derived fields on update.
type Toucher interface {
	Touch(now time.Time)
}

// Timestamp formats now the way every record stores it.
func Timestamp(now time.Time) string {
	return now.UTC().Format(time.RFC3339)
}

// DateLayout is the fixed-width date format used for all deadlines.
const DateLayout = "2006-01-02"

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
