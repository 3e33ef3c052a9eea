package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	mqcontracts "grantpilot/contracts/mq"
	"grantpilot/internal/apperr"
	"grantpilot/internal/model"
	"grantpilot/internal/store"
)

func ptr[T any](v T) *T { return &v }

func newRepos(t *testing.T) (*Repositories, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	return NewRepositories(mem, zap.NewNop()), mem
}

func TestRepository_CreateStampsRecord(t *testing.T) {
	repos, _ := newRepos(t)
	ctx := context.Background()

	g := &model.Grant{Title: "Youth Arts", AmountRequested: 50000}
	require.NoError(t, repos.Grants.Create(ctx, g))

	assert.NotEmpty(t, g.ID)
	assert.Equal(t, model.StageResearching, g.Stage)
	assert.NotEmpty(t, g.CreatedAt)

	got, err := repos.Grants.Get(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, *g, *got)
}

func TestRepository_UpdateMergesOnlyPresentFields(t *testing.T) {
	repos, _ := newRepos(t)
	ctx := context.Background()

	g := &model.Grant{Title: "Capacity", FunderName: "Ford", Notes: "keep", AmountRequested: 10}
	require.NoError(t, repos.Grants.Create(ctx, g))

	updated, err := repos.Grants.Update(ctx, g.ID, model.GrantUpdate{
		Stage:           ptr(model.StageAwarded),
		AmountAwarded:   ptr(8.0),
		AmountRequested: ptr(0.0),
	})
	require.NoError(t, err)

	assert.Equal(t, g.ID, updated.ID)
	assert.Equal(t, g.CreatedAt, updated.CreatedAt)
	assert.Equal(t, "Capacity", updated.Title)
	assert.Equal(t, "keep", updated.Notes)
	assert.Equal(t, model.StageAwarded, updated.Stage)
	assert.Equal(t, 8.0, updated.AmountAwarded)
	assert.Zero(t, updated.AmountRequested)
}

func TestRepository_UpdateUnknownID(t *testing.T) {
	repos, _ := newRepos(t)
	_, err := repos.Funders.Update(context.Background(), "nope", model.FunderUpdate{Name: ptr("x")})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRepository_ListFilter(t *testing.T) {
	repos, _ := newRepos(t)
	ctx := context.Background()

	for _, c := range []string{"mission", "history", "mission"} {
		require.NoError(t, repos.Content.Create(ctx, &model.ContentItem{Category: c, Title: c}))
	}

	mission, err := repos.Content.List(ctx, "category", "mission")
	require.NoError(t, err)
	assert.Len(t, mission, 2)
	for _, item := range mission {
		assert.Equal(t, []string{}, item.Tags)
	}

	all, err := repos.Content.List(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRepository_BudgetTotalFollowsLineItems(t *testing.T) {
	repos, _ := newRepos(t)
	ctx := context.Background()

	b := &model.BudgetTemplate{Name: "Program", LineItems: []model.LineItem{
		{Category: "personnel", Amount: 1200.5},
		{Category: "supplies", Amount: 300},
	}}
	require.NoError(t, repos.Budgets.Create(ctx, b))
	assert.Equal(t, 1500.5, b.Total)

	updated, err := repos.Budgets.Update(ctx, b.ID, model.BudgetUpdate{
		LineItems: &[]model.LineItem{{Category: "travel", Amount: 99}},
	})
	require.NoError(t, err)
	require.Len(t, updated.LineItems, 1)
	assert.Equal(t, 99.0, updated.Total)

	renamed, err := repos.Budgets.Update(ctx, b.ID, model.BudgetUpdate{Name: ptr("Renamed")})
	require.NoError(t, err)
	assert.Equal(t, 99.0, renamed.Total)
	assert.Equal(t, model.SumLineItems(renamed.LineItems), renamed.Total)
}

func TestRepository_DeleteIsIdempotent(t *testing.T) {
	repos, _ := newRepos(t)
	ctx := context.Background()

	o := &model.OutcomeMetric{Program: "p", MetricType: "output", Title: "served", Value: "120"}
	require.NoError(t, repos.Outcomes.Create(ctx, o))
	require.NoError(t, repos.Outcomes.Delete(ctx, o.ID))
	require.NoError(t, repos.Outcomes.Delete(ctx, o.ID))

	_, err := repos.Outcomes.Get(ctx, o.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRepositories_DeleteGrantCascades(t *testing.T) {
	repos, mem := newRepos(t)
	ctx := context.Background()

	keep := &model.Grant{Title: "keep"}
	drop := &model.Grant{Title: "drop"}
	require.NoError(t, repos.Grants.Create(ctx, keep))
	require.NoError(t, repos.Grants.Create(ctx, drop))
	for _, g := range []*model.Grant{keep, drop} {
		require.NoError(t, repos.Reporting.Create(ctx, &model.ReportingRequirement{GrantID: g.ID, Title: "r"}))
		require.NoError(t, repos.Compliance.Create(ctx, &model.ComplianceItem{GrantID: g.ID, Requirement: "c"}))
	}

	var hooks int
	repos.OnDeadlineWrite(func(context.Context) { hooks++ })

	require.NoError(t, repos.DeleteGrant(ctx, drop.ID))
	assert.Positive(t, hooks)

	reports, err := repos.Reporting.List(ctx, "grant_id", drop.ID)
	require.NoError(t, err)
	assert.Empty(t, reports)
	items, err := repos.Compliance.List(ctx, "grant_id", drop.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	reports, _ = repos.Reporting.List(ctx, "grant_id", keep.ID)
	assert.Len(t, reports, 1)

	events := mem.Events()
	require.Len(t, events, 1)
	assert.Equal(t, mqcontracts.EventGrantDeleted, events[0].RoutingKey)
	assert.Equal(t, drop.ID, events[0].AggregateID)
}

func TestSettings_DefaultAndUpsert(t *testing.T) {
	repos, _ := newRepos(t)
	ctx := context.Background()

	s, err := repos.Settings.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, &model.OrgSettings{ID: model.SettingsID}, s)

	require.NoError(t, repos.Settings.Put(ctx, &model.OrgSettings{ID: "ignored", OrgName: "Helping Hands"}))
	s, err = repos.Settings.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.SettingsID, s.ID)
	assert.Equal(t, "Helping Hands", s.OrgName)
}

func TestRepository_TouchRefreshesUpdatedAt(t *testing.T) {
	repos, _ := newRepos(t)
	ctx := context.Background()
	clock := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	repos.Outcomes.now = func() time.Time { return clock }

	o := &model.OutcomeMetric{Program: "p", MetricType: "outcome", Title: "t"}
	require.NoError(t, repos.Outcomes.Create(ctx, o))
	assert.Equal(t, "2025-03-01T09:00:00Z", o.UpdatedAt)

	clock = clock.Add(time.Hour)
	updated, err := repos.Outcomes.Update(ctx, o.ID, model.OutcomeUpdate{Value: ptr("42")})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01T10:00:00Z", updated.UpdatedAt)
}
