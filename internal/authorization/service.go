// Package authorization decides whether a user may act on a company's records.
// Roles come from the users table and are bound per company domain
// ("company:<id>") in a casbin enforcer.
package authorization

import (
	"context"
	"errors"
)

type Service interface {
	Authorize(ctx context.Context, actor string, companyID string, object string, action string) error
}

var (
	ErrInvalidActor   = errors.New("invalid_actor")
	ErrUnknownActor   = errors.New("unknown_actor")
	ErrInvalidCompany = errors.New("invalid_company")
	ErrInvalidObject  = errors.New("invalid_object")
	ErrInvalidAction  = errors.New("invalid_action")
	ErrForbidden      = errors.New("forbidden")
)

const (
	ObjectLead         = "lead"
	ObjectAccount      = "account"
	ObjectContact      = "contact"
	ObjectProduct      = "product"
	ObjectQuotation    = "quotation"
	ObjectInvoice      = "invoice"
	ObjectInstallation = "installation"
	ObjectAMCContract  = "amc_contract"
	ObjectComplaint    = "complaint"
	ObjectDeal         = "deal"
	ObjectActivity     = "activity"
	ObjectSalesOrder   = "sales_order"
	ObjectCase         = "case"
	ObjectSolution     = "solution"
	ObjectCompany      = "company"
	ObjectUser         = "user"
	ObjectReport       = "report"
	ObjectAuditLog     = "audit_log"
)

const (
	VerbView   = "view"
	VerbCreate = "create"
	VerbUpdate = "update"
	VerbDelete = "delete"
	VerbExport = "export"
)

// Action names a verb on an object, e.g. "lead.view".
func Action(object, verb string) string {
	return object + "." + verb
}

var (
	ActionReportView    = Action(ObjectReport, VerbView)
	ActionReportExport  = Action(ObjectReport, VerbExport)
	ActionAuditLogView  = Action(ObjectAuditLog, VerbView)
	ActionCompanyCreate = Action(ObjectCompany, VerbCreate)
)
