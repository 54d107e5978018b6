package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	supportdomain "github.com/smallbiznis/crm/internal/support/domain"
)

type listCasesQuery struct {
	listQuery
	Status       string `form:"status"`
	CaseCategory string `form:"case_category"`
	AssignedTo   string `form:"assigned_to"`
}

type listSolutionsQuery struct {
	PageToken        string `form:"page_token"`
	PageSize         int32  `form:"page_size"`
	Search           string `form:"search"`
	Status           string `form:"status"`
	SolutionCategory string `form:"solution_category"`
	Reusable         string `form:"reusable"`
}

func (s *Server) CreateCase(c *gin.Context) {
	var req supportdomain.CreateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	resp, err := s.caseSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordCreated(c, "case")
	s.recordAudit(c, "case.create", "case", resp.ID.String(), map[string]any{
		"case_number": resp.CaseNumber,
		"title":       resp.Title,
	})

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListCases(c *gin.Context) {
	var query listCasesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	createdFrom, createdTo, err := query.createdRange()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.caseSvc.List(c.Request.Context(), supportdomain.ListCaseRequest{
		PageToken:    query.pageToken(),
		PageSize:     query.PageSize,
		Status:       strings.TrimSpace(query.Status),
		CaseCategory: strings.TrimSpace(query.CaseCategory),
		AssignedTo:   strings.TrimSpace(query.AssignedTo),
		Search:       query.search(),
		CreatedFrom:  createdFrom,
		CreatedTo:    createdTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCaseByID(c *gin.Context) {
	resp, err := s.caseSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateCase(c *gin.Context) {
	fields, err := bindFields(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.caseSvc.Update(c.Request.Context(), strings.TrimSpace(c.Param("id")), fields)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "case.update", "case", resp.ID.String(), map[string]any{
		"fields": fieldKeys(fields),
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteCase(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.caseSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "case.delete", "case", id, nil)

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": id, "deleted": true}})
}

func (s *Server) CreateSolution(c *gin.Context) {
	var req supportdomain.CreateSolutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	resp, err := s.solutionSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordCreated(c, "solution")
	s.recordAudit(c, "solution.create", "solution", resp.ID.String(), map[string]any{
		"solution_number": resp.SolutionNumber,
		"title":           resp.Title,
	})

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListSolutions(c *gin.Context) {
	var query listSolutionsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	reusable, err := parseOptionalBool(query.Reusable)
	if err != nil {
		AbortWithError(c, newValidationError("reusable", "invalid_reusable", "invalid reusable"))
		return
	}

	resp, err := s.solutionSvc.List(c.Request.Context(), supportdomain.ListSolutionRequest{
		PageToken:        strings.TrimSpace(query.PageToken),
		PageSize:         query.PageSize,
		Status:           strings.TrimSpace(query.Status),
		SolutionCategory: strings.TrimSpace(query.SolutionCategory),
		Reusable:         reusable,
		Search:           strings.TrimSpace(query.Search),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetSolutionByID(c *gin.Context) {
	resp, err := s.solutionSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateSolution(c *gin.Context) {
	fields, err := bindFields(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.solutionSvc.Update(c.Request.Context(), strings.TrimSpace(c.Param("id")), fields)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "solution.update", "solution", resp.ID.String(), map[string]any{
		"fields": fieldKeys(fields),
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteSolution(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.solutionSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "solution.delete", "solution", id, nil)

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": id, "deleted": true}})
}
