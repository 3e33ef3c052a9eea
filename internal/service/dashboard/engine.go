// Package dashboard computes pipeline totals and deadline urgency from the
// grant, reporting and compliance collections.
package dashboard

import (
	"math"
	"slices"
	"sort"
	"time"

	"grantpilot/internal/model"
)

// MaxUpcoming caps the upcoming deadline list.
const MaxUpcoming = 10

// Snapshot is the input to every deadline computation.
type Snapshot struct {
	Grants     []model.Grant
	Reports    []model.ReportingRequirement
	Compliance []model.ComplianceItem
}

// Compute builds the dashboard for the UTC calendar day of today.
func Compute(snap Snapshot, today time.Time) model.Dashboard {
	d := model.Dashboard{
		Pipeline:          make(map[string]int, len(model.Stages)),
		UpcomingDeadlines: []model.Deadline{},
	}
	for _, stage := range model.Stages {
		d.Pipeline[stage] = 0
	}

	// Only the pipeline counts a missing stage as researching; totals and
	// application deadlines need a stored stage.
	for _, g := range snap.Grants {
		d.Pipeline[NormalizeStage(g.Stage)]++
		if model.IsOpenStage(g.Stage) {
			d.TotalPending += g.AmountRequested
		}
		if g.Stage == model.StageAwarded {
			d.TotalAwarded += g.AmountAwarded
		}
	}

	upcoming, overdue := Deadlines(snap, today)
	if len(upcoming) > MaxUpcoming {
		upcoming = upcoming[:MaxUpcoming]
	}
	d.UpcomingDeadlines = append(d.UpcomingDeadlines, upcoming...)
	for _, dl := range overdue {
		if dl.Type != model.DeadlineApplication {
			d.OverdueCount++
		}
	}

	awarded := d.Pipeline[model.StageAwarded]
	declined := d.Pipeline[model.StageDeclined]
	d.ActiveGrants = awarded
	d.InProgress = d.Pipeline[model.StageResearching] + d.Pipeline[model.StageWriting] +
		d.Pipeline[model.StageSubmitted] + d.Pipeline[model.StagePending]
	d.SuccessRate = int(math.Round(float64(awarded) / float64(max(awarded+declined, 1)) * 100))

	return d
}

// Deadlines returns every dated open item split into upcoming (date on or
// after today, sorted by days left) and overdue (strictly before today).
// Application deadlines only apply to grants still being prepared.
func Deadlines(snap Snapshot, today time.Time) (upcoming, overdue []model.Deadline) {
	day := truncateDay(today)
	add := func(dl model.Deadline, date string) {
		t, ok := ParseDate(date)
		if !ok {
			return
		}
		dl.Date = date
		dl.DaysLeft = int(t.Sub(day).Hours() / 24)
		if dl.DaysLeft >= 0 {
			upcoming = append(upcoming, dl)
		} else {
			overdue = append(overdue, dl)
		}
	}

	for _, g := range snap.Grants {
		if g.Stage != model.StageResearching && g.Stage != model.StageWriting {
			continue
		}
		add(model.Deadline{
			Type:    model.DeadlineApplication,
			ID:      g.ID,
			GrantID: g.ID,
			Title:   g.Title,
		}, g.Deadline)
	}

	for _, r := range snap.Reports {
		if !model.IsOpenReport(r.Status) {
			continue
		}
		add(model.Deadline{
			Type:       model.DeadlineReport,
			ReportType: r.ReportType,
			ID:         r.ID,
			GrantID:    r.GrantID,
			Title:      r.Title,
		}, r.DueDate)
	}

	for _, c := range snap.Compliance {
		if c.IsCompleted {
			continue
		}
		add(model.Deadline{
			Type:    model.DeadlineCompliance,
			ID:      c.ID,
			GrantID: c.GrantID,
			Title:   c.Requirement,
		}, c.Deadline)
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].DaysLeft < upcoming[j].DaysLeft
	})
	return upcoming, overdue
}

// NormalizeStage maps empty or unknown stages to researching for pipeline
// counts.
func NormalizeStage(stage string) string {
	if slices.Contains(model.Stages, stage) {
		return stage
	}
	return model.StageResearching
}

// ParseDate parses a YYYY-MM-DD date as UTC midnight.
func ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
