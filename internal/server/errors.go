package server

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	accountdomain "github.com/smallbiznis/crm/internal/account/domain"
	activitydomain "github.com/smallbiznis/crm/internal/activity/domain"
	amcdomain "github.com/smallbiznis/crm/internal/amc/domain"
	auditdomain "github.com/smallbiznis/crm/internal/audit/domain"
	"github.com/smallbiznis/crm/internal/authorization"
	companydomain "github.com/smallbiznis/crm/internal/company/domain"
	complaintdomain "github.com/smallbiznis/crm/internal/complaint/domain"
	contactdomain "github.com/smallbiznis/crm/internal/contact/domain"
	dealdomain "github.com/smallbiznis/crm/internal/deal/domain"
	installationdomain "github.com/smallbiznis/crm/internal/installation/domain"
	invoicedomain "github.com/smallbiznis/crm/internal/invoice/domain"
	leaddomain "github.com/smallbiznis/crm/internal/lead/domain"
	productdomain "github.com/smallbiznis/crm/internal/product/domain"
	quotationdomain "github.com/smallbiznis/crm/internal/quotation/domain"
	reportdomain "github.com/smallbiznis/crm/internal/report/domain"
	salesorderdomain "github.com/smallbiznis/crm/internal/salesorder/domain"
	supportdomain "github.com/smallbiznis/crm/internal/support/domain"
	"github.com/smallbiznis/crm/internal/wizard"
	"github.com/smallbiznis/crm/pkg/timeutil"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

// validationErrors are the domain sentinels reported as 400 with the sentinel
// text as the error code.
var validationErrors = []error{
	ErrInvalidRequest,
	timeutil.ErrInvalidTime,
	leaddomain.ErrInvalidCompany, leaddomain.ErrInvalidID, leaddomain.ErrInvalidAssignedTo,
	leaddomain.ErrInvalidValue, leaddomain.ErrInvalidDate, leaddomain.ErrInvalidRequest,
	accountdomain.ErrInvalidCompany, accountdomain.ErrInvalidID, accountdomain.ErrInvalidName,
	accountdomain.ErrInvalidAmount,
	contactdomain.ErrInvalidCompany, contactdomain.ErrInvalidID, contactdomain.ErrInvalidEmail,
	contactdomain.ErrInvalidPhone, contactdomain.ErrInvalidAccount,
	productdomain.ErrInvalidCompany, productdomain.ErrInvalidID, productdomain.ErrInvalidName,
	productdomain.ErrInvalidPrice, productdomain.ErrInvalidTaxRate, productdomain.ErrInvalidStatus,
	quotationdomain.ErrInvalidCompany, quotationdomain.ErrInvalidID, quotationdomain.ErrInvalidCustomer,
	quotationdomain.ErrInvalidLineItems, quotationdomain.ErrInvalidDate,
	invoicedomain.ErrInvalidCompany, invoicedomain.ErrInvalidID, invoicedomain.ErrInvalidCustomer,
	invoicedomain.ErrInvalidLineItems, invoicedomain.ErrInvalidDate, invoicedomain.ErrInvalidAmount,
	installationdomain.ErrInvalidCompany, installationdomain.ErrInvalidID, installationdomain.ErrInvalidCustomer,
	installationdomain.ErrInvalidStatus, installationdomain.ErrInvalidQuantity, installationdomain.ErrInvalidAmount,
	installationdomain.ErrInvalidDate,
	amcdomain.ErrInvalidCompany, amcdomain.ErrInvalidID, amcdomain.ErrInvalidCustomer, amcdomain.ErrInvalidStatus,
	amcdomain.ErrInvalidDate, amcdomain.ErrInvalidValue, amcdomain.ErrInvalidDuration,
	complaintdomain.ErrInvalidCompany, complaintdomain.ErrInvalidID, complaintdomain.ErrInvalidCustomer,
	complaintdomain.ErrInvalidStatus, complaintdomain.ErrInvalidDate,
	dealdomain.ErrInvalidCompany, dealdomain.ErrInvalidID, dealdomain.ErrInvalidName, dealdomain.ErrInvalidStage,
	dealdomain.ErrInvalidValue, dealdomain.ErrInvalidProbability, dealdomain.ErrInvalidDate,
	activitydomain.ErrInvalidCompany, activitydomain.ErrInvalidID, activitydomain.ErrInvalidType,
	activitydomain.ErrInvalidTitle, activitydomain.ErrInvalidDate,
	salesorderdomain.ErrInvalidCompany, salesorderdomain.ErrInvalidID, salesorderdomain.ErrInvalidAmount,
	salesorderdomain.ErrInvalidDate,
	supportdomain.ErrInvalidCompany, supportdomain.ErrInvalidID, supportdomain.ErrInvalidTitle,
	supportdomain.ErrInvalidStatus, supportdomain.ErrInvalidDate, supportdomain.ErrInvalidFlag,
	companydomain.ErrInvalidID, companydomain.ErrInvalidName, companydomain.ErrInvalidAdminName,
	companydomain.ErrInvalidEmail, companydomain.ErrInvalidPassword, companydomain.ErrInvalidMaxUsers,
	companydomain.ErrInvalidRole,
	auditdomain.ErrInvalidCompany, auditdomain.ErrInvalidPageToken, auditdomain.ErrInvalidTimeRange,
	reportdomain.ErrInvalidCompany,
	authorization.ErrInvalidCompany,
	wizard.ErrNotFinalStep,
}

var notFoundErrors = []error{
	ErrNotFound,
	leaddomain.ErrNotFound,
	accountdomain.ErrNotFound,
	contactdomain.ErrNotFound,
	productdomain.ErrNotFound,
	quotationdomain.ErrNotFound,
	invoicedomain.ErrNotFound,
	invoicedomain.ErrQuotationMissing,
	installationdomain.ErrNotFound,
	amcdomain.ErrNotFound,
	complaintdomain.ErrNotFound,
	dealdomain.ErrNotFound,
	activitydomain.ErrNotFound,
	salesorderdomain.ErrNotFound,
	supportdomain.ErrNotFound,
	supportdomain.ErrCaseMissing,
	companydomain.ErrNotFound,
	companydomain.ErrUserNotFound,
	gorm.ErrRecordNotFound,
}

var conflictErrors = []error{
	ErrConflict,
	accountdomain.ErrDuplicate,
	productdomain.ErrCodeTaken,
	quotationdomain.ErrNumberTaken,
	invoicedomain.ErrNumberTaken,
	installationdomain.ErrNumberTaken,
	amcdomain.ErrNumberTaken,
	amcdomain.ErrAlreadyRenewed,
	complaintdomain.ErrNumberTaken,
	salesorderdomain.ErrNumberTaken,
	supportdomain.ErrNumberTaken,
	companydomain.ErrEmailTaken,
	companydomain.ErrDomainTaken,
	companydomain.ErrUserLimitReached,
	reportdomain.ErrExportInProgress,
	gorm.ErrDuplicatedKey,
}

// reportRequestErrors carry their user-facing message verbatim.
var reportRequestErrors = []error{
	reportdomain.ErrTypeRequired,
	reportdomain.ErrInvalidType,
	reportdomain.ErrUnsupportedFormat,
}

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

// bindError turns a JSON decoding failure into a validation error, keeping
// date parsing failures distinguishable.
func bindError(err error) error {
	if errors.Is(err, timeutil.ErrInvalidTime) {
		return newValidationError("date", "invalid_date", "invalid date")
	}
	return invalidRequestError()
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	var stepErr *wizard.ValidationError
	if errors.As(err, &stepErr) {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  stepValidationErrors(stepErr),
		}
	}

	var missingErr *contactdomain.MissingFieldError
	if errors.As(err, &missingErr) {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{Field: missingErr.Field, Code: "required", Message: missingErr.Error()},
			},
		}
	}

	var dupErr *accountdomain.DuplicateError
	if errors.As(err, &dupErr) {
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: dupErr.Error(),
		}
	}

	if target := firstMatch(err, reportRequestErrors); target != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: target.Error(),
		}
	}

	if matches(err, validationErrors) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authorization.ErrInvalidActor),
		errors.Is(err, authorization.ErrUnknownActor):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authorization.ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case matches(err, notFoundErrors):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case matches(err, conflictErrors):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: conflictMessage(err),
		}
	case errors.Is(err, reportdomain.ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
		}
	case errors.Is(err, errReportFailed):
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "Failed to generate report",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyErrorForLog reports the response type and code for request logs.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	if len(payload.Errors) > 0 {
		return payload.Type, payload.Errors[0].Code
	}
	if status >= http.StatusInternalServerError {
		return payload.Type, "internal_error"
	}
	return payload.Type, payload.Type
}

func matches(err error, targets []error) bool {
	return firstMatch(err, targets) != nil
}

func firstMatch(err error, targets []error) error {
	for _, target := range targets {
		if errors.Is(err, target) {
			return target
		}
	}
	return nil
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func stepValidationErrors(err *wizard.ValidationError) []ValidationError {
	out := make([]ValidationError, 0, len(err.Errors))
	for field, message := range err.Errors {
		out = append(out, ValidationError{
			Field:   field,
			Code:    "required",
			Message: message,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

func conflictMessage(err error) string {
	switch {
	case errors.Is(err, companydomain.ErrUserLimitReached):
		return "company user limit reached"
	case errors.Is(err, reportdomain.ErrExportInProgress):
		return "an export of this report is already running"
	default:
		return "conflict"
	}
}

func validationErrorCode(err error) string {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return "invalid_request"
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	case "invalid_company":
		return "company context is required"
	case "invalid_email_primary":
		return "invalid email format"
	case "invalid_phone_mobile":
		return "invalid phone number format"
	case "invalid_account_id":
		return "account does not exist"
	case "not_final_step":
		return "submit is only allowed from the last step"
	default:
		return "invalid value"
	}
}
