package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	accountdomain "github.com/smallbiznis/crm/internal/account/domain"
	leaddomain "github.com/smallbiznis/crm/internal/lead/domain"
	productdomain "github.com/smallbiznis/crm/internal/product/domain"
	"github.com/smallbiznis/crm/internal/wizard"
)

const (
	wizardActionNext     = "next"
	wizardActionPrevious = "previous"
)

type wizardRequest struct {
	Values map[string]any    `json:"values"`
	Step   int               `json:"step"`
	Action string            `json:"action"`
	Errors map[string]string `json:"errors"`
}

// createdEntity is what a wizard submission produced.
type createdEntity struct {
	ID     string
	Entity string
	Data   any
}

func (s *Server) GetWizard(c *gin.Context) {
	def, ok := lookupWizard(c)
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"definition": def,
		"state":      wizard.NewController(def).State(),
	}})
}

// ValidateWizard replays one navigation step against the submitted draft.
// A step that fails validation is not an error: the returned state stays on
// the same step and carries the field errors.
func (s *Server) ValidateWizard(c *gin.Context) {
	def, ok := lookupWizard(c)
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}

	var req wizardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	ctrl := wizard.Restore(def, req.Values, req.Step, req.Errors)
	switch strings.ToLower(strings.TrimSpace(req.Action)) {
	case wizardActionNext, "":
		if err := ctrl.Next(); err != nil && !errors.Is(err, wizard.ErrStepIncomplete) {
			AbortWithError(c, err)
			return
		}
	case wizardActionPrevious:
		ctrl.Previous()
	default:
		AbortWithError(c, newValidationError("action", "invalid_action", "action must be next or previous"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": ctrl.State()})
}

func (s *Server) SubmitWizard(c *gin.Context) {
	def, ok := lookupWizard(c)
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}

	var req wizardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	ctrl := wizard.Restore(def, req.Values, req.Step, req.Errors)

	var created createdEntity
	err := ctrl.Submit(c.Request.Context(), func(ctx context.Context, values map[string]any) error {
		result, err := s.persistWizard(ctx, def, values)
		if err != nil {
			return err
		}
		created = result
		return nil
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordCreated(c, created.Entity)
	s.recordAudit(c, created.Entity+".create", created.Entity, created.ID, map[string]any{
		"source": "wizard",
	})

	c.JSON(http.StatusCreated, gin.H{"data": created.Data})
}

func (s *Server) persistWizard(ctx context.Context, def wizard.Definition, values map[string]any) (createdEntity, error) {
	payload := wizard.Payload(def, values)

	switch def.Kind {
	case wizard.KindLead:
		req, err := leaddomain.DecodeCreateRequest(payload)
		if err != nil {
			return createdEntity{}, err
		}
		resp, err := s.leadSvc.Create(ctx, req)
		if err != nil {
			return createdEntity{}, err
		}
		return createdEntity{ID: resp.ID.String(), Entity: "lead", Data: resp}, nil

	case wizard.KindAccount:
		var req accountdomain.CreateAccountRequest
		if err := decodePayload(payload, &req); err != nil {
			return createdEntity{}, err
		}
		resp, err := s.accountSvc.Create(ctx, req)
		if err != nil {
			return createdEntity{}, err
		}
		return createdEntity{ID: resp.ID.String(), Entity: "account", Data: resp}, nil

	case wizard.KindProduct:
		var req productdomain.CreateRequest
		if err := decodePayload(payload, &req); err != nil {
			return createdEntity{}, err
		}
		resp, err := s.productSvc.Create(ctx, req)
		if err != nil {
			return createdEntity{}, err
		}
		return createdEntity{ID: resp.ID.String(), Entity: "product", Data: resp}, nil
	}

	return createdEntity{}, ErrNotFound
}

// decodePayload converts wizard output into a typed create request using the
// same JSON rules as the create endpoints.
func decodePayload(payload map[string]any, out any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return invalidRequestError()
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return bindError(err)
	}
	return nil
}

func lookupWizard(c *gin.Context) (wizard.Definition, bool) {
	return wizard.Lookup(c.Param("kind"))
}
