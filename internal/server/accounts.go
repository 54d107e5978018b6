package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	accountdomain "github.com/smallbiznis/crm/internal/account/domain"
)

type listAccountsQuery struct {
	listQuery
	Industry string `form:"industry"`
	City     string `form:"city"`
}

func (s *Server) CreateAccount(c *gin.Context) {
	var req accountdomain.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	resp, err := s.accountSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordCreated(c, "account")
	s.recordAudit(c, "account.create", "account", resp.ID.String(), map[string]any{
		"account_name": resp.AccountName,
	})

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListAccounts(c *gin.Context) {
	var query listAccountsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	createdFrom, createdTo, err := query.createdRange()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.accountSvc.List(c.Request.Context(), accountdomain.ListAccountRequest{
		PageToken:   query.pageToken(),
		PageSize:    query.PageSize,
		Industry:    strings.TrimSpace(query.Industry),
		City:        strings.TrimSpace(query.City),
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

func (s *Server) GetAccountByID(c *gin.Context) {
	resp, err := s.accountSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateAccount(c *gin.Context) {
	fields, err := bindFields(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.accountSvc.Update(c.Request.Context(), strings.TrimSpace(c.Param("id")), fields)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "account.update", "account", resp.ID.String(), map[string]any{
		"fields": fieldKeys(fields),
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteAccount(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.accountSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "account.delete", "account", id, nil)

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": id, "deleted": true}})
}
