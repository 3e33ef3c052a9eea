package calendar

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"grantpilot/internal/model"
	"grantpilot/internal/repository"
	"grantpilot/internal/service/dashboard"
	"grantpilot/internal/store"
)

func TestBuildEvents(t *testing.T) {
	long := strings.Repeat("r", 80)
	snap := dashboard.Snapshot{
		Grants: []model.Grant{
			{ID: "g1", Title: "Arts", Stage: model.StageSubmitted, Deadline: "2025-05-01", AmountRequested: 1234567},
			{ID: "g2", Title: "Won", Stage: model.StageAwarded, Deadline: "2025-05-01"},
			{ID: "g3", Title: "Undated", Stage: model.StageWriting},
		},
		Reports: []model.ReportingRequirement{
			{ID: "r1", Title: "Q2", ReportType: "financial", Description: "Budget vs actual", Status: model.ReportInProgress, DueDate: "2025-07-15"},
			{ID: "r2", Title: "Q1", Status: model.ReportApproved, DueDate: "2025-04-15"},
		},
		Compliance: []model.ComplianceItem{
			{ID: "c1", Requirement: long, Deadline: "2025-12-31"},
			{ID: "c2", Requirement: "done", Deadline: "2025-12-31", IsCompleted: true},
		},
	}

	events := BuildEvents(snap)
	require.Len(t, events, 3)

	assert.Equal(t, "DEADLINE: Arts", events[0].Title)
	assert.Equal(t, "Grant application deadline for Unknown Funder. Amount: $1,234,567", events[0].Description)
	assert.Equal(t, "REPORT DUE: Q2", events[1].Title)
	assert.Equal(t, "Type: financial. Budget vs actual", events[1].Description)
	assert.Equal(t, "COMPLIANCE: "+strings.Repeat("r", 50), events[2].Title)
	assert.Equal(t, long, events[2].Description)
}

func TestRenderICS(t *testing.T) {
	events := []model.CalendarEvent{
		{UID: "grant-g1", Title: "DEADLINE: Arts", Date: "2025-05-01", Description: "Amount: $10"},
		{UID: "grant-bad", Title: "DEADLINE: Bad", Date: "soon"},
	}

	out := RenderICS(events, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))

	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "METHOD:PUBLISH")
	assert.Contains(t, out, productID)
	assert.Contains(t, out, "UID:grant-g1@grantpilot")
	assert.Contains(t, out, "SUMMARY:DEADLINE: Arts")
	assert.Contains(t, out, "20250501")
	assert.Contains(t, out, "20250502")
	assert.NotContains(t, out, "grant-bad")
	assert.Equal(t, 1, strings.Count(out, "BEGIN:VEVENT"))
}

func TestService_Events(t *testing.T) {
	ctx := context.Background()
	repos := repository.NewRepositories(store.NewMemory(), zap.NewNop())
	require.NoError(t, repos.Grants.Create(ctx, &model.Grant{Title: "Pilot", FunderName: "Kresge", Deadline: "2025-09-01", AmountRequested: 50000}))

	svc := NewService(repos, zap.NewNop())
	events, err := svc.Events(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Grant application deadline for Kresge. Amount: $50,000", events[0].Description)

	feed, err := svc.ICS(ctx)
	require.NoError(t, err)
	assert.Contains(t, feed, "SUMMARY:DEADLINE: Pilot")
}
