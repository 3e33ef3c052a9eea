package portability

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"grantpilot/internal/apperr"
	"grantpilot/internal/model"
	"grantpilot/internal/repository"
	"grantpilot/internal/store"
)

func newRepos(t *testing.T) *repository.Repositories {
	t.Helper()
	return repository.NewRepositories(store.NewMemory(), zap.NewNop())
}

func ids(t *testing.T, docs []store.Document) []string {
	t.Helper()
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		id, err := store.DocumentID(d)
		require.NoError(t, err)
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func seedSome(t *testing.T, repos *repository.Repositories) {
	t.Helper()
	ctx := context.Background()
	g := &model.Grant{Title: "Capacity", AmountRequested: 10000}
	require.NoError(t, repos.Grants.Create(ctx, g))
	require.NoError(t, repos.Reporting.Create(ctx, &model.ReportingRequirement{GrantID: g.ID, Title: "Q1"}))
	require.NoError(t, repos.Funders.Create(ctx, &model.FunderProfile{Name: "Ford"}))
	require.NoError(t, repos.Settings.Put(ctx, &model.OrgSettings{OrgName: "Helping Hands"}))
}

func TestExport_AllCollectionsPresent(t *testing.T) {
	repos := newRepos(t)
	seedSome(t, repos)

	b, err := NewService(repos, zap.NewNop()).Export(context.Background())
	require.NoError(t, err)

	for _, coll := range model.Collections {
		assert.Contains(t, b, coll)
	}
	assert.Len(t, b[model.CollGrants], 1)
	assert.Len(t, b[model.CollReporting], 1)
	assert.Empty(t, b[model.CollBudgets])
	assert.Equal(t, []string{model.SettingsID}, ids(t, b[model.CollSettings]))
}

func TestImport_RoundTripPreservesIDs(t *testing.T) {
	ctx := context.Background()
	src := newRepos(t)
	seedSome(t, src)
	exported, err := NewService(src, zap.NewNop()).Export(ctx)
	require.NoError(t, err)

	raw, err := json.Marshal(exported)
	require.NoError(t, err)
	var decoded Bundle
	require.NoError(t, json.Unmarshal(raw, &decoded))

	dst := newRepos(t)
	require.NoError(t, dst.Grants.Create(ctx, &model.Grant{Title: "stale"}))
	svc := NewService(dst, zap.NewNop())
	counts, err := svc.Import(ctx, decoded)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[model.CollGrants])

	again, err := svc.Export(ctx)
	require.NoError(t, err)
	for _, coll := range model.Collections {
		assert.Equal(t, ids(t, exported[coll]), ids(t, again[coll]), coll)
	}
}

func TestImport_EmptyListsLeaveCollectionsAlone(t *testing.T) {
	ctx := context.Background()
	repos := newRepos(t)
	require.NoError(t, repos.Grants.Create(ctx, &model.Grant{Title: "keep"}))

	_, err := NewService(repos, zap.NewNop()).Import(ctx, Bundle{
		model.CollGrants:  {},
		model.CollFunders: {json.RawMessage(`{"name":"New Funder"}`)},
	})
	require.NoError(t, err)

	grants, err := repos.Grants.List(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, grants, 1)

	funders, err := repos.Funders.List(ctx, "", "")
	require.NoError(t, err)
	require.Len(t, funders, 1)
	assert.NotEmpty(t, funders[0].ID)
}

func TestImport_RejectsNonObjects(t *testing.T) {
	repos := newRepos(t)
	_, err := NewService(repos, zap.NewNop()).Import(context.Background(), Bundle{
		model.CollGrants: {json.RawMessage(`[1,2]`)},
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestImport_RejectsRepeatedIDs(t *testing.T) {
	ctx := context.Background()
	repos := newRepos(t)
	seedSome(t, repos)
	before, err := repos.Grants.List(ctx, "", "")
	require.NoError(t, err)

	svc := NewService(repos, zap.NewNop())
	_, err = svc.Import(ctx, Bundle{
		model.CollGrants: {
			json.RawMessage(`{"id":"g1","title":"First"}`),
			json.RawMessage(`{"id":"g1","title":"Second"}`),
		},
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	after, err := repos.Grants.List(ctx, "", "")
	require.NoError(t, err)
	assert.Equal(t, before, after)

	// two settings without ids both resolve to the singleton id
	_, err = svc.Import(ctx, Bundle{
		model.CollSettings: {
			json.RawMessage(`{"org_name":"A"}`),
			json.RawMessage(`{"org_name":"B"}`),
		},
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestXLSX_OneSheetPerCollection(t *testing.T) {
	repos := newRepos(t)
	seedSome(t, repos)
	b, err := NewService(repos, zap.NewNop()).Export(context.Background())
	require.NoError(t, err)

	data, err := XLSX(b)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, model.Collections, f.GetSheetList())

	rows, err := f.GetRows(model.CollGrants)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "id", rows[0][0])
	assert.Contains(t, rows[0], "title")
}
