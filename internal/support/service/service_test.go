package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/crm/internal/clock"
	"github.com/smallbiznis/crm/internal/companycontext"
	"github.com/smallbiznis/crm/internal/config"
	"github.com/smallbiznis/crm/internal/numbering"
	"github.com/smallbiznis/crm/internal/support/domain"
	"github.com/smallbiznis/crm/internal/support/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	cases     *CaseService
	solutions *SolutionService
	ctx       context.Context
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Case{}, &domain.Solution{}, &numbering.DocumentSequence{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	log := zap.NewNop()
	fake := clock.NewFakeClock(time.Date(2025, 7, 21, 15, 0, 0, 0, time.UTC))
	numbers := numbering.New(numbering.Params{
		Log:      log,
		GenID:    node,
		Settings: config.NewStaticSettings(config.DefaultSettings()),
	})
	caseRepo := repository.ProvideCases()
	return fixture{
		cases: &CaseService{
			db: db, log: log, genID: node, clock: fake, repo: caseRepo, numbers: numbers,
		},
		solutions: &SolutionService{
			db: db, log: log, genID: node, clock: fake, repo: repository.ProvideSolutions(), cases: caseRepo, numbers: numbers,
		},
		ctx: companycontext.WithCompanyID(context.Background(), node.Generate().Int64()),
	}
}

func TestCreateCaseDefaults(t *testing.T) {
	f := newFixture(t)

	view, err := f.cases.Create(f.ctx, domain.CreateCaseRequest{Title: "Display flickers", CustomerName: "Initech"})
	require.NoError(t, err)

	assert.Equal(t, "CASE-2025-001", view.CaseNumber)
	assert.Equal(t, domain.CaseStatusOpen, view.Status)
	assert.Equal(t, domain.DefaultCaseCategory, view.CaseCategory)
	assert.Equal(t, domain.DefaultSeverity, view.Severity)
	assert.True(t, view.ResolutionRequired)
	assert.True(t, view.IsOpen)

	_, err = f.cases.Create(f.ctx, domain.CreateCaseRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidTitle)
}

func TestResolveCaseStampsDate(t *testing.T) {
	f := newFixture(t)

	created, err := f.cases.Create(f.ctx, domain.CreateCaseRequest{Title: "Display flickers"})
	require.NoError(t, err)

	updated, err := f.cases.Update(f.ctx, created.ID.String(), map[string]any{
		"status":             "resolved",
		"follow_up_required": true,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.CaseStatusResolved, updated.Status)
	assert.True(t, updated.FollowUpRequired)
	require.NotNil(t, updated.ResolvedDate)
	assert.False(t, updated.IsOpen)

	_, err = f.cases.Update(f.ctx, created.ID.String(), map[string]any{"follow_up_required": "yes"})
	assert.ErrorIs(t, err, domain.ErrInvalidFlag)
}

func TestSolutionFromCase(t *testing.T) {
	f := newFixture(t)

	linked, err := f.cases.Create(f.ctx, domain.CreateCaseRequest{
		Title:        "Display flickers",
		CustomerName: "Initech",
		ProductName:  "Panel X2",
	})
	require.NoError(t, err)

	reusable := false
	view, err := f.solutions.Create(f.ctx, domain.CreateSolutionRequest{
		Title:    "Replace inverter board",
		CaseID:   &linked.ID,
		Status:   "published",
		Reusable: &reusable,
	})
	require.NoError(t, err)

	assert.Equal(t, "SOL-2025-001", view.SolutionNumber)
	assert.Equal(t, linked.CaseNumber, view.CaseNumber)
	assert.Equal(t, "Initech", view.CustomerName)
	assert.Equal(t, "Panel X2", view.ProductName)
	assert.Equal(t, domain.SolutionStatusPublished, view.Status)
	assert.False(t, view.Reusable)
	assert.True(t, view.KnowledgeBaseEntry)

	missing := snowflake.ID(99)
	_, err = f.solutions.Create(f.ctx, domain.CreateSolutionRequest{Title: "x", CaseID: &missing})
	assert.ErrorIs(t, err, domain.ErrCaseMissing)
}

func TestListReusableSolutions(t *testing.T) {
	f := newFixture(t)

	no := false
	_, err := f.solutions.Create(f.ctx, domain.CreateSolutionRequest{Title: "One-off fix", Reusable: &no})
	require.NoError(t, err)
	_, err = f.solutions.Create(f.ctx, domain.CreateSolutionRequest{Title: "Firmware reflash"})
	require.NoError(t, err)

	yes := true
	page, err := f.solutions.List(f.ctx, domain.ListSolutionRequest{Reusable: &yes})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Firmware reflash", page.Items[0].Title)

	updated, err := f.solutions.Update(f.ctx, page.Items[0].ID.String(), map[string]any{"version": "", "status": "Archived"})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultVersion, updated.Version)
	assert.Equal(t, domain.SolutionStatusArchived, updated.Status)
}
