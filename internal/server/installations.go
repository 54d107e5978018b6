package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	installationdomain "github.com/smallbiznis/crm/internal/installation/domain"
)

type listInstallationsQuery struct {
	listQuery
	Status             string `form:"status"`
	AssignedTechnician string `form:"assigned_technician"`
}

func (s *Server) CreateInstallation(c *gin.Context) {
	var req installationdomain.CreateInstallationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	resp, err := s.installationSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordCreated(c, "installation")
	s.recordAudit(c, "installation.create", "installation", resp.ID.String(), map[string]any{
		"installation_number": resp.InstallationNumber,
		"customer_name":       resp.CustomerName,
	})

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListInstallations(c *gin.Context) {
	var query listInstallationsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	createdFrom, createdTo, err := query.createdRange()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.installationSvc.List(c.Request.Context(), installationdomain.ListInstallationRequest{
		PageToken:          query.pageToken(),
		PageSize:           query.PageSize,
		Status:             strings.TrimSpace(query.Status),
		AssignedTechnician: strings.TrimSpace(query.AssignedTechnician),
		Search:             query.search(),
		CreatedFrom:        createdFrom,
		CreatedTo:          createdTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetInstallationByID(c *gin.Context) {
	resp, err := s.installationSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateInstallation(c *gin.Context) {
	fields, err := bindFields(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.installationSvc.Update(c.Request.Context(), strings.TrimSpace(c.Param("id")), fields)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "installation.update", "installation", resp.ID.String(), map[string]any{
		"fields": fieldKeys(fields),
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteInstallation(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.installationSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "installation.delete", "installation", id, nil)

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": id, "deleted": true}})
}
