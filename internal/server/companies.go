package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	companydomain "github.com/smallbiznis/crm/internal/company/domain"
)

type listCompaniesQuery struct {
	PageToken string `form:"page_token"`
	PageSize  int32  `form:"page_size"`
	Search    string `form:"search"`
}

func (s *Server) CreateCompany(c *gin.Context) {
	var req companydomain.CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.companySvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "company.create", "company", resp.Company.ID, map[string]any{
		"name":        resp.Company.Name,
		"max_users":   resp.Company.MaxUsers,
		"admin_email": resp.Admin.Email,
	})

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListCompanies(c *gin.Context) {
	var query listCompaniesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.companySvc.List(c.Request.Context(), companydomain.ListCompaniesRequest{
		PageToken: strings.TrimSpace(query.PageToken),
		PageSize:  query.PageSize,
		Search:    strings.TrimSpace(query.Search),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCompanyByID(c *gin.Context) {
	resp, err := s.companySvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateCompany(c *gin.Context) {
	fields, err := bindFields(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.companySvc.Update(c.Request.Context(), strings.TrimSpace(c.Param("id")), fields)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "company.update", "company", resp.ID, map[string]any{
		"fields": fieldKeys(fields),
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteCompany(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.companySvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "company.delete", "company", id, nil)

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": id, "deleted": true}})
}

func (s *Server) ListCompanyUsers(c *gin.Context) {
	users, err := s.companySvc.ListUsers(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if users == nil {
		users = []companydomain.UserView{}
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"items": users}})
}

func (s *Server) CreateCompanyUser(c *gin.Context) {
	var req companydomain.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	companyID := strings.TrimSpace(c.Param("id"))
	resp, err := s.companySvc.CreateUser(c.Request.Context(), companyID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "user.create", "user", resp.ID, map[string]any{
		"company_id": companyID,
		"email":      resp.Email,
		"role":       resp.Role,
	})

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}
