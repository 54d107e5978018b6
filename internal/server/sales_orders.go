package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	salesorderdomain "github.com/smallbiznis/crm/internal/salesorder/domain"
)

type listSalesOrdersQuery struct {
	listQuery
	Status      string `form:"status"`
	AccountID   string `form:"account_id"`
	QuotationID string `form:"quotation_id"`
}

func (s *Server) CreateSalesOrder(c *gin.Context) {
	var req salesorderdomain.CreateSalesOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	resp, err := s.salesOrderSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordCreated(c, "sales_order")
	s.recordAudit(c, "sales_order.create", "sales_order", resp.ID.String(), map[string]any{
		"order_number": resp.OrderNumber,
		"total_amount": resp.TotalAmount.StringFixed(2),
	})

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListSalesOrders(c *gin.Context) {
	var query listSalesOrdersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	createdFrom, createdTo, err := query.createdRange()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.salesOrderSvc.List(c.Request.Context(), salesorderdomain.ListSalesOrderRequest{
		PageToken:   query.pageToken(),
		PageSize:    query.PageSize,
		Status:      strings.TrimSpace(query.Status),
		AccountID:   strings.TrimSpace(query.AccountID),
		QuotationID: strings.TrimSpace(query.QuotationID),
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

func (s *Server) GetSalesOrderByID(c *gin.Context) {
	resp, err := s.salesOrderSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateSalesOrder(c *gin.Context) {
	fields, err := bindFields(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.salesOrderSvc.Update(c.Request.Context(), strings.TrimSpace(c.Param("id")), fields)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "sales_order.update", "sales_order", resp.ID.String(), map[string]any{
		"fields": fieldKeys(fields),
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteSalesOrder(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.salesOrderSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "sales_order.delete", "sales_order", id, nil)

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": id, "deleted": true}})
}
