package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	dealdomain "github.com/smallbiznis/crm/internal/deal/domain"
)

type listDealsQuery struct {
	listQuery
	Stage      string `form:"stage"`
	AccountID  string `form:"account_id"`
	AssignedTo string `form:"assigned_to"`
}

func (s *Server) CreateDeal(c *gin.Context) {
	var req dealdomain.CreateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	resp, err := s.dealSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordCreated(c, "deal")
	s.recordAudit(c, "deal.create", "deal", resp.ID.String(), map[string]any{
		"deal_name": resp.DealName,
		"stage":     resp.Stage,
	})

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListDeals(c *gin.Context) {
	var query listDealsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	createdFrom, createdTo, err := query.createdRange()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.dealSvc.List(c.Request.Context(), dealdomain.ListDealRequest{
		PageToken:   query.pageToken(),
		PageSize:    query.PageSize,
		Stage:       strings.TrimSpace(query.Stage),
		AccountID:   strings.TrimSpace(query.AccountID),
		AssignedTo:  strings.TrimSpace(query.AssignedTo),
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

func (s *Server) GetDealByID(c *gin.Context) {
	resp, err := s.dealSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateDeal(c *gin.Context) {
	fields, err := bindFields(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.dealSvc.Update(c.Request.Context(), strings.TrimSpace(c.Param("id")), fields)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "deal.update", "deal", resp.ID.String(), map[string]any{
		"fields": fieldKeys(fields),
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteDeal(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.dealSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "deal.delete", "deal", id, nil)

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": id, "deleted": true}})
}
