package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/crm/internal/authorization"
	"github.com/smallbiznis/crm/internal/companycontext"
	"github.com/smallbiznis/crm/internal/wizard"
)

func (s *Server) authorize(object string, verb string) gin.HandlerFunc {
	action := authorization.Action(object, verb)
	return func(c *gin.Context) {
		if err := s.authorizeAction(c, object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

// authorizeWizardSubmit checks create permission on the entity the wizard
// produces.
func (s *Server) authorizeWizardSubmit() gin.HandlerFunc {
	return func(c *gin.Context) {
		object, ok := wizardObject(c.Param("kind"))
		if !ok {
			AbortWithError(c, ErrNotFound)
			return
		}
		if err := s.authorizeAction(c, object, authorization.Action(object, authorization.VerbCreate)); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

func (s *Server) authorizeAction(c *gin.Context, object string, action string) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return ErrUnauthorized
	}
	if s.authzSvc == nil {
		return ErrForbidden
	}

	companyID, ok := companycontext.CompanyIDFromContext(c.Request.Context())
	if !ok || companyID == 0 {
		return authorization.ErrInvalidCompany
	}

	return s.authzSvc.Authorize(c.Request.Context(), actorSubject(userID), companyID.String(), object, action)
}

func actorSubject(userID string) string {
	return "user:" + strings.TrimSpace(userID)
}

func wizardObject(kind string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case wizard.KindLead:
		return authorization.ObjectLead, true
	case wizard.KindAccount:
		return authorization.ObjectAccount, true
	case wizard.KindProduct:
		return authorization.ObjectProduct, true
	default:
		return "", false
	}
}
