package authorization

import (
	companydomain "github.com/smallbiznis/crm/internal/company/domain"
)

var crud = []string{VerbView, VerbCreate, VerbUpdate, VerbDelete}

var (
	salesObjects   = []string{ObjectLead, ObjectAccount, ObjectContact, ObjectDeal, ObjectQuotation, ObjectSalesOrder, ObjectActivity}
	serviceObjects = []string{ObjectInstallation, ObjectAMCContract, ObjectComplaint, ObjectCase, ObjectSolution, ObjectActivity}
	catalogObjects = []string{ObjectProduct, ObjectInvoice}
)

func roleSubject(role string) string {
	return "role:" + role
}

// rolePolicies expands the role matrix into casbin (subject, object, action)
// rules.
func rolePolicies() [][]string {
	var policies [][]string
	grant := func(role string, objects []string, verbs ...string) {
		for _, object := range objects {
			for _, verb := range verbs {
				policies = append(policies, []string{roleSubject(role), object, Action(object, verb)})
			}
		}
	}

	business := append(append(append([]string{}, salesObjects...), serviceObjects...), catalogObjects...)

	grant(companydomain.RoleSuperAdmin, business, crud...)
	grant(companydomain.RoleSuperAdmin, []string{ObjectCompany, ObjectUser}, crud...)
	grant(companydomain.RoleSuperAdmin, []string{ObjectReport}, VerbView, VerbExport)
	grant(companydomain.RoleSuperAdmin, []string{ObjectAuditLog}, VerbView)

	grant(companydomain.RoleCompanyAdmin, business, crud...)
	grant(companydomain.RoleCompanyAdmin, []string{ObjectUser}, crud...)
	grant(companydomain.RoleCompanyAdmin, []string{ObjectCompany}, VerbView, VerbUpdate)
	grant(companydomain.RoleCompanyAdmin, []string{ObjectReport}, VerbView, VerbExport)
	grant(companydomain.RoleCompanyAdmin, []string{ObjectAuditLog}, VerbView)

	grant(companydomain.RoleManager, business, crud...)
	grant(companydomain.RoleManager, []string{ObjectCompany, ObjectUser}, VerbView)
	grant(companydomain.RoleManager, []string{ObjectReport}, VerbView, VerbExport)
	grant(companydomain.RoleManager, []string{ObjectAuditLog}, VerbView)

	grant(companydomain.RoleSalesRep, salesObjects, VerbView, VerbCreate, VerbUpdate)
	grant(companydomain.RoleSalesRep, catalogObjects, VerbView)
	grant(companydomain.RoleSalesRep, []string{ObjectReport}, VerbView)

	grant(companydomain.RoleServiceEngineer, serviceObjects, VerbView, VerbCreate, VerbUpdate)
	grant(companydomain.RoleServiceEngineer, []string{ObjectAccount, ObjectContact, ObjectProduct}, VerbView)
	grant(companydomain.RoleServiceEngineer, []string{ObjectReport}, VerbView)

	grant(companydomain.RoleViewer, business, VerbView)
	grant(companydomain.RoleViewer, []string{ObjectReport}, VerbView)

	return policies
}
