package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	activitydomain "github.com/smallbiznis/crm/internal/activity/domain"
)

type listActivitiesQuery struct {
	listQuery
	EntityType   string `form:"entity_type"`
	EntityID     string `form:"entity_id"`
	Status       string `form:"status"`
	ActivityType string `form:"activity_type"`
	AssignedTo   string `form:"assigned_to"`
}

func (s *Server) CreateActivity(c *gin.Context) {
	var req activitydomain.CreateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	resp, err := s.activitySvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordCreated(c, "activity")
	s.recordAudit(c, "activity.create", "activity", resp.ID.String(), map[string]any{
		"activity_type": resp.ActivityType,
		"title":         resp.Title,
	})

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListActivities(c *gin.Context) {
	var query listActivitiesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	createdFrom, createdTo, err := query.createdRange()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.activitySvc.List(c.Request.Context(), activitydomain.ListActivityRequest{
		PageToken:    query.pageToken(),
		PageSize:     query.PageSize,
		EntityType:   strings.TrimSpace(query.EntityType),
		EntityID:     strings.TrimSpace(query.EntityID),
		Status:       strings.TrimSpace(query.Status),
		ActivityType: strings.TrimSpace(query.ActivityType),
		AssignedTo:   strings.TrimSpace(query.AssignedTo),
		CreatedFrom:  createdFrom,
		CreatedTo:    createdTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetActivityByID(c *gin.Context) {
	resp, err := s.activitySvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateActivity(c *gin.Context) {
	fields, err := bindFields(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.activitySvc.Update(c.Request.Context(), strings.TrimSpace(c.Param("id")), fields)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "activity.update", "activity", resp.ID.String(), map[string]any{
		"fields": fieldKeys(fields),
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteActivity(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.activitySvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "activity.delete", "activity", id, nil)

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": id, "deleted": true}})
}

// DeleteAllActivities clears every activity of the company. The explicit
// delete_all=true flag guards against accidental calls.
func (s *Server) DeleteAllActivities(c *gin.Context) {
	confirm, err := parseOptionalBool(c.Query("delete_all"))
	if err != nil || confirm == nil || !*confirm {
		AbortWithError(c, newValidationError("delete_all", "confirmation_required", "delete_all=true is required"))
		return
	}

	deleted, err := s.activitySvc.DeleteAll(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "activity.delete_all", "activity", "", map[string]any{
		"deleted": deleted,
	})

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": deleted}})
}
