// Package calendar exports open deadlines as events and iCalendar feeds.
package calendar

import (
	"context"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"grantpilot/internal/model"
	"grantpilot/internal/repository"
	"grantpilot/internal/service/dashboard"
)

const (
	productID       = "-//GrantPilot//Deadline Calendar//EN"
	maxSummaryRunes = 50
)

type Service struct {
	repos  *repository.Repositories
	logger *zap.Logger
	now    func() time.Time
}

func NewService(repos *repository.Repositories, logger *zap.Logger) *Service {
	return &Service{repos: repos, logger: logger, now: time.Now}
}

// Events loads the deadline collections and returns one event per open item.
func (s *Service) Events(ctx context.Context) ([]model.CalendarEvent, error) {
	snap, err := dashboard.Load(ctx, s.repos)
	if err != nil {
		s.logger.Error("Failed to load calendar inputs", zap.Error(err))
		return nil, err
	}
	return BuildEvents(snap), nil
}

// ICS renders the same events as an iCalendar document.
func (s *Service) ICS(ctx context.Context) (string, error) {
	events, err := s.Events(ctx)
	if err != nil {
		return "", err
	}
	return RenderICS(events, s.now()), nil
}

// BuildEvents covers grants still before a decision, open reports and
// incomplete compliance items. Undated items are skipped.
func BuildEvents(snap dashboard.Snapshot) []model.CalendarEvent {
	events := []model.CalendarEvent{}

	for _, g := range snap.Grants {
		if g.Deadline == "" || !model.IsOpenStage(g.Stage) {
			continue
		}
		funder := g.FunderName
		if funder == "" {
			funder = "Unknown Funder"
		}
		events = append(events, model.CalendarEvent{
			UID:   "grant-" + g.ID,
			Title: "DEADLINE: " + g.Title,
			Date:  g.Deadline,
			Description: fmt.Sprintf("Grant application deadline for %s. Amount: $%s",
				funder, humanize.Commaf(g.AmountRequested)),
		})
	}

	for _, r := range snap.Reports {
		if r.DueDate == "" || !model.IsOpenReport(r.Status) {
			continue
		}
		events = append(events, model.CalendarEvent{
			UID:         "report-" + r.ID,
			Title:       "REPORT DUE: " + r.Title,
			Date:        r.DueDate,
			Description: fmt.Sprintf("Type: %s. %s", r.ReportType, r.Description),
		})
	}

	for _, c := range snap.Compliance {
		if c.Deadline == "" || c.IsCompleted {
			continue
		}
		events = append(events, model.CalendarEvent{
			UID:         "compliance-" + c.ID,
			Title:       "COMPLIANCE: " + firstRunes(c.Requirement, maxSummaryRunes),
			Date:        c.Deadline,
			Description: c.Requirement,
		})
	}

	return events
}

// RenderICS writes all-day VEVENTs. Events whose date does not parse are
// left out of the feed.
func RenderICS(events []model.CalendarEvent, now time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)

	for _, ev := range events {
		day, ok := dashboard.ParseDate(ev.Date)
		if !ok {
			continue
		}
		vevent := cal.AddEvent(ev.UID + "@grantpilot")
		vevent.SetDtStampTime(now.UTC())
		vevent.SetAllDayStartAt(day)
		vevent.SetAllDayEndAt(day.AddDate(0, 0, 1))
		vevent.SetSummary(ev.Title)
		vevent.SetDescription(ev.Description)
	}
	return cal.Serialize()
}

func firstRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
