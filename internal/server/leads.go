package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	leaddomain "github.com/smallbiznis/crm/internal/lead/domain"
)

type listLeadsQuery struct {
	listQuery
	Status     string `form:"status"`
	SalesStage string `form:"sales_stage"`
	AssignedTo string `form:"assigned_to"`
	LeadSource string `form:"lead_source"`
}

// CreateLead accepts the standard lead fields plus arbitrary custom fields.
func (s *Server) CreateLead(c *gin.Context) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req, err := leaddomain.DecodeCreateRequest(payload)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.leadSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordCreated(c, "lead")
	s.recordAudit(c, "lead.create", "lead", resp.ID.String(), map[string]any{
		"lead_name":   resp.LeadName,
		"assigned_to": resp.AssignedTo,
	})

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListLeads(c *gin.Context) {
	var query listLeadsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	createdFrom, createdTo, err := query.createdRange()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.leadSvc.List(c.Request.Context(), leaddomain.ListLeadRequest{
		PageToken:   query.pageToken(),
		PageSize:    query.PageSize,
		Status:      strings.TrimSpace(query.Status),
		SalesStage:  strings.TrimSpace(query.SalesStage),
		AssignedTo:  strings.TrimSpace(query.AssignedTo),
		LeadSource:  strings.TrimSpace(query.LeadSource),
		Search:      query.search(),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetLeadByID(c *gin.Context) {
	resp, err := s.leadSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateLead(c *gin.Context) {
	fields, err := bindFields(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.leadSvc.Update(c.Request.Context(), strings.TrimSpace(c.Param("id")), fields)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "lead.update", "lead", resp.ID.String(), map[string]any{
		"fields": fieldKeys(fields),
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteLead(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.leadSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "lead.delete", "lead", id, nil)

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": id, "deleted": true}})
}
