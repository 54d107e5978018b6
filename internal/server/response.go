package server

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

// bindFields decodes a partial JSON object for update endpoints. An empty
// object is rejected.
func bindFields(c *gin.Context) (map[string]any, error) {
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		return nil, invalidRequestError()
	}
	if len(fields) == 0 {
		return nil, newValidationError("request", "empty_update", "no fields to update")
	}
	return fields, nil
}

// recordAudit writes an audit entry for a successful mutation. Failures are
// logged and never fail the request.
func (s *Server) recordAudit(c *gin.Context, action, targetType, targetID string, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	var target *string
	if targetID != "" {
		target = &targetID
	}
	if err := s.auditSvc.AuditLog(c.Request.Context(), nil, "", nil, action, targetType, target, metadata); err != nil && s.log != nil {
		s.log.Warn("audit log write failed", zap.String("action", action), zap.Error(err))
	}
}

func (s *Server) recordCreated(c *gin.Context, entity string) {
	s.obsMetrics.RecordDocumentCreated(c.Request.Context(), entity)
}

func sendAttachment(c *gin.Context, name, contentType string, content []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, contentType, content)
}

func fieldKeys(fields map[string]any) []string {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// pdfFileName prefers the document number and falls back to the record ID.
func pdfFileName(kind, number, id string) string {
	name := strings.TrimSpace(number)
	if name == "" {
		name = id
	}
	return kind + "-" + slug.Make(name) + ".pdf"
}
