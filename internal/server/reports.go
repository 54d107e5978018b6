package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	reportdomain "github.com/smallbiznis/crm/internal/report/domain"
)

var errReportFailed = errors.New("report_failed")

type reportQuery struct {
	Type   string `form:"type"`
	Period string `form:"period"`
	Format string `form:"format"`
}

func (s *Server) GetReport(c *gin.Context) {
	var query reportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req := query.request()
	c.Set("report_type", req.Type)

	report, err := s.reportSvc.Generate(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, reportError(err))
		return
	}

	c.JSON(http.StatusOK, report)
}

func (s *Server) ExportReport(c *gin.Context) {
	var query reportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req := query.request()
	c.Set("report_type", req.Type)

	file, err := s.reportSvc.Export(c.Request.Context(), req, strings.ToLower(strings.TrimSpace(query.Format)))
	if err != nil {
		AbortWithError(c, reportError(err))
		return
	}

	s.recordAudit(c, "report.export", "report", "", map[string]any{
		"type":   req.Type,
		"period": req.Period,
		"format": query.Format,
		"file":   file.Name,
	})

	sendAttachment(c, file.Name, file.ContentType, file.Content)
}

func (q reportQuery) request() reportdomain.Request {
	return reportdomain.Request{
		Type:   strings.TrimSpace(q.Type),
		Period: strings.TrimSpace(q.Period),
	}
}

// reportError keeps request and tenancy errors as they are and collapses
// everything else into errReportFailed.
func reportError(err error) error {
	switch {
	case matches(err, reportRequestErrors),
		errors.Is(err, reportdomain.ErrInvalidCompany),
		errors.Is(err, reportdomain.ErrRateLimited),
		errors.Is(err, reportdomain.ErrExportInProgress):
		return err
	default:
		return fmt.Errorf("%w: %v", errReportFailed, err)
	}
}
