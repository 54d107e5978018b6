package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	activitydomain "github.com/smallbiznis/crm/internal/activity/domain"
	activityrepository "github.com/smallbiznis/crm/internal/activity/repository"
	activityservice "github.com/smallbiznis/crm/internal/activity/service"
	"github.com/smallbiznis/crm/internal/clock"
	"github.com/smallbiznis/crm/internal/companycontext"
	"github.com/smallbiznis/crm/internal/lead/domain"
	"github.com/smallbiznis/crm/internal/lead/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc        *Service
	activities activitydomain.Service
	clock      *clock.FakeClock
	ctx        context.Context
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Lead{}, &activitydomain.Activity{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	activities := activityservice.New(activityservice.Params{
		DB: db, Log: log, GenID: node, Clock: fake, Repo: activityrepository.Provide(),
	})
	svc := &Service{
		db:         db,
		log:        log,
		genID:      node,
		clock:      fake,
		repo:       repository.Provide(),
		activities: activities,
	}
	return fixture{
		svc:        svc,
		activities: activities,
		clock:      fake,
		ctx:        companycontext.WithCompanyID(context.Background(), node.Generate().Int64()),
	}
}

func TestDecodeCreateRequestSplitsCustomFields(t *testing.T) {
	req, err := domain.DecodeCreateRequest(map[string]any{
		"lead_name":       "RO plant for school",
		"assigned_to":     "Priya",
		"estimated_value": "125000.50",
		"tags":            []any{"hot", "school"},
		"job_title":       "Principal",
		"company_id":      "forged",
		"notes":           "  ",
	})
	require.NoError(t, err)
	assert.Equal(t, "RO plant for school", req.LeadName)
	assert.Equal(t, "125000.5", req.EstimatedValue.String())
	assert.Equal(t, []string{"hot", "school"}, req.Tags)
	assert.Equal(t, map[string]any{"job_title": "Principal"}, req.CustomFields)
	assert.Empty(t, req.Notes)

	_, err = domain.DecodeCreateRequest(map[string]any{"next_followup_date": "soon"})
	assert.ErrorIs(t, err, domain.ErrInvalidDate)
}

func TestCreateLeadDefaultsAndView(t *testing.T) {
	f := newFixture(t)

	req, err := domain.DecodeCreateRequest(map[string]any{
		"lead_name":    "Water softener",
		"contact_name": "Anand",
		"assigned_to":  "Hari",
		"budget_band":  "B",
	})
	require.NoError(t, err)

	view, err := f.svc.Create(f.ctx, req)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSalesStage, view.SalesStage)
	assert.Equal(t, domain.DefaultPriority, view.Priority)
	assert.Equal(t, domain.StatusNew, view.LeadStatus)

	f.clock.Advance(5 * 24 * time.Hour)
	got, err := f.svc.Get(f.ctx, view.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 5, got.DaysSinceCreation)

	raw, err := json.Marshal(got)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "B", decoded["budget_band"])
	assert.NotContains(t, decoded, "custom_fields")
	assert.Equal(t, view.ID.String(), decoded["id"])
	assert.Equal(t, float64(5), decoded["days_since_creation"])
}

func TestCreateLeadRequiresOwner(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(f.ctx, domain.CreateLeadRequest{LeadName: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidAssignedTo)

	_, err = f.svc.Create(context.Background(), domain.CreateLeadRequest{AssignedTo: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidCompany)
}

func TestCreateLeadWithFollowUpSchedulesActivity(t *testing.T) {
	f := newFixture(t)

	req, err := domain.DecodeCreateRequest(map[string]any{
		"lead_name":          "Hospital RO",
		"contact_name":       "Dr. Rao",
		"assigned_to":        "Hari",
		"priority":           "High",
		"next_followup_date": "2025-04-05",
	})
	require.NoError(t, err)
	view, err := f.svc.Create(f.ctx, req)
	require.NoError(t, err)

	page, err := f.activities.List(f.ctx, activitydomain.ListActivityRequest{EntityID: view.ID.String()})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Follow up with Dr. Rao", page.Items[0].Title)
	assert.Equal(t, activitydomain.PriorityHigh, page.Items[0].Priority)
	assert.Equal(t, "lead", page.Items[0].EntityType)
}

func TestUpdateLeadMergesCustomFields(t *testing.T) {
	f := newFixture(t)

	req, err := domain.DecodeCreateRequest(map[string]any{
		"contact_name": "Meena",
		"assigned_to":  "Raj",
		"source_page":  "landing",
	})
	require.NoError(t, err)
	view, err := f.svc.Create(f.ctx, req)
	require.NoError(t, err)

	updated, err := f.svc.Update(f.ctx, view.ID.String(), map[string]any{
		"lead_status":        "Contacted",
		"estimated_value":    float64(5000),
		"campaign":           "spring",
		"next_followup_date": "2025-04-09",
	})
	require.NoError(t, err)
	assert.Equal(t, "Contacted", updated.LeadStatus)
	assert.Equal(t, "5000", updated.EstimatedValue.String())
	assert.Equal(t, "landing", updated.CustomFields["source_page"])
	assert.Equal(t, "spring", updated.CustomFields["campaign"])

	page, err := f.activities.List(f.ctx, activitydomain.ListActivityRequest{EntityID: view.ID.String()})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, activitydomain.TypeFollowUp, page.Items[0].ActivityType)

	_, err = f.svc.Update(f.ctx, view.ID.String(), map[string]any{"assigned_to": ""})
	assert.ErrorIs(t, err, domain.ErrInvalidAssignedTo)
	_, err = f.svc.Update(f.ctx, view.ID.String(), map[string]any{"estimated_value": float64(-3)})
	assert.ErrorIs(t, err, domain.ErrInvalidValue)
}

func TestListLeadsFilters(t *testing.T) {
	f := newFixture(t)
	for _, status := range []string{"New", "Qualified", "Qualified"} {
		_, err := f.svc.Create(f.ctx, domain.CreateLeadRequest{AssignedTo: "Hari", LeadStatus: status, LeadName: "Lead " + status})
		require.NoError(t, err)
	}

	page, err := f.svc.List(f.ctx, domain.ListLeadRequest{Status: "Qualified"})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)

	page, err = f.svc.List(f.ctx, domain.ListLeadRequest{Search: "lead new"})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)

	page, err = f.svc.List(f.ctx, domain.ListLeadRequest{PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.True(t, page.HasMore)

	next, err := f.svc.List(f.ctx, domain.ListLeadRequest{PageSize: 2, PageToken: page.NextPageToken})
	require.NoError(t, err)
	assert.Len(t, next.Items, 1)
	assert.False(t, next.HasMore)
}

func TestDeleteLead(t *testing.T) {
	f := newFixture(t)
	view, err := f.svc.Create(f.ctx, domain.CreateLeadRequest{AssignedTo: "Hari"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(f.ctx, view.ID.String()))
	assert.ErrorIs(t, f.svc.Delete(f.ctx, view.ID.String()), domain.ErrNotFound)
	assert.ErrorIs(t, f.svc.Delete(f.ctx, "abc"), domain.ErrInvalidID)
}
