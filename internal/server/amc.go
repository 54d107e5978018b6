package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	amcdomain "github.com/smallbiznis/crm/internal/amc/domain"
)

type listAMCContractsQuery struct {
	listQuery
	Status     string `form:"status"`
	ExpiringIn string `form:"expiring_in"`
}

func (s *Server) CreateAMCContract(c *gin.Context) {
	var req amcdomain.CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	resp, err := s.amcSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordCreated(c, "amc_contract")
	s.recordAudit(c, "amc_contract.create", "amc_contract", resp.ID.String(), map[string]any{
		"contract_number": resp.ContractNumber,
		"customer_name":   resp.CustomerName,
	})

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListAMCContracts(c *gin.Context) {
	var query listAMCContractsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	createdFrom, createdTo, err := query.createdRange()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	expiringIn, err := parseOptionalInt64(query.ExpiringIn)
	if err != nil || (expiringIn != nil && *expiringIn < 0) {
		AbortWithError(c, newValidationError("expiring_in", "invalid_expiring_in", "expiring_in must be a non-negative number of days"))
		return
	}
	var days int
	if expiringIn != nil {
		days = int(*expiringIn)
	}

	resp, err := s.amcSvc.List(c.Request.Context(), amcdomain.ListContractRequest{
		PageToken:   query.pageToken(),
		PageSize:    query.PageSize,
		Status:      strings.TrimSpace(query.Status),
		Search:      query.search(),
		ExpiringIn:  days,
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetAMCContractByID(c *gin.Context) {
	resp, err := s.amcSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateAMCContract(c *gin.Context) {
	fields, err := bindFields(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.amcSvc.Update(c.Request.Context(), strings.TrimSpace(c.Param("id")), fields)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "amc_contract.update", "amc_contract", resp.ID.String(), map[string]any{
		"fields": fieldKeys(fields),
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteAMCContract(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.amcSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "amc_contract.delete", "amc_contract", id, nil)

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": id, "deleted": true}})
}

// RenewAMCContract creates the follow-on contract and marks the current one
// renewed.
func (s *Server) RenewAMCContract(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.amcSvc.Renew(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordCreated(c, "amc_contract")
	s.recordAudit(c, "amc_contract.renew", "amc_contract", resp.ID.String(), map[string]any{
		"renewed_from":    id,
		"contract_number": resp.ContractNumber,
	})

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}
