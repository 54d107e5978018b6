package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	complaintdomain "github.com/smallbiznis/crm/internal/complaint/domain"
)

type listComplaintsQuery struct {
	listQuery
	Status        string `form:"status"`
	Priority      string `form:"priority"`
	ComplaintType string `form:"complaint_type"`
	AssignedTo    string `form:"assigned_to"`
}

func (s *Server) CreateComplaint(c *gin.Context) {
	var req complaintdomain.CreateComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	resp, err := s.complaintSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordCreated(c, "complaint")
	s.recordAudit(c, "complaint.create", "complaint", resp.ID.String(), map[string]any{
		"complaint_number": resp.ComplaintNumber,
		"complaint_type":   resp.ComplaintType,
	})

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListComplaints(c *gin.Context) {
	var query listComplaintsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	createdFrom, createdTo, err := query.createdRange()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.complaintSvc.List(c.Request.Context(), complaintdomain.ListComplaintRequest{
		PageToken:     query.pageToken(),
		PageSize:      query.PageSize,
		Status:        strings.TrimSpace(query.Status),
		Priority:      strings.TrimSpace(query.Priority),
		ComplaintType: strings.TrimSpace(query.ComplaintType),
		AssignedTo:    strings.TrimSpace(query.AssignedTo),
		Search:        query.search(),
		CreatedFrom:   createdFrom,
		CreatedTo:     createdTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetComplaintByID(c *gin.Context) {
	resp, err := s.complaintSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateComplaint(c *gin.Context) {
	fields, err := bindFields(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.complaintSvc.Update(c.Request.Context(), strings.TrimSpace(c.Param("id")), fields)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "complaint.update", "complaint", resp.ID.String(), map[string]any{
		"fields": fieldKeys(fields),
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteComplaint(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.complaintSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "complaint.delete", "complaint", id, nil)

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": id, "deleted": true}})
}
