package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/crm/internal/authorization"
	companydomain "github.com/smallbiznis/crm/internal/company/domain"
	"github.com/smallbiznis/crm/internal/companycontext"
	contactdomain "github.com/smallbiznis/crm/internal/contact/domain"
	leaddomain "github.com/smallbiznis/crm/internal/lead/domain"
	reportdomain "github.com/smallbiznis/crm/internal/report/domain"
	"github.com/smallbiznis/crm/pkg/db/pagination"
)

type fakeCompanyService struct {
	users map[string]*companydomain.User
}

func newFakeCompanyService(users ...*companydomain.User) *fakeCompanyService {
	f := &fakeCompanyService{users: map[string]*companydomain.User{}}
	for _, u := range users {
		f.users[u.ID.String()] = u
	}
	return f
}

func (f *fakeCompanyService) Create(ctx context.Context, req companydomain.CreateCompanyRequest) (companydomain.CreateCompanyResponse, error) {
	return companydomain.CreateCompanyResponse{}, nil
}

func (f *fakeCompanyService) Get(ctx context.Context, id string) (companydomain.CompanyView, error) {
	return companydomain.CompanyView{ID: id}, nil
}

func (f *fakeCompanyService) List(ctx context.Context, req companydomain.ListCompaniesRequest) (pagination.Page[companydomain.CompanyView], error) {
	return pagination.Page[companydomain.CompanyView]{Items: []companydomain.CompanyView{}}, nil
}

func (f *fakeCompanyService) Update(ctx context.Context, id string, fields map[string]any) (companydomain.CompanyView, error) {
	return companydomain.CompanyView{ID: id}, nil
}

func (f *fakeCompanyService) Delete(ctx context.Context, id string) error {
	return nil
}

func (f *fakeCompanyService) CreateUser(ctx context.Context, companyID string, req companydomain.CreateUserRequest) (companydomain.UserView, error) {
	return companydomain.UserView{CompanyID: companyID, Email: req.Email}, nil
}

func (f *fakeCompanyService) ListUsers(ctx context.Context, companyID string) ([]companydomain.UserView, error) {
	return nil, nil
}

func (f *fakeCompanyService) GetCompany(ctx context.Context, id string) (*companydomain.Company, error) {
	return nil, companydomain.ErrNotFound
}

func (f *fakeCompanyService) GetUser(ctx context.Context, id string) (*companydomain.User, error) {
	if _, err := snowflake.ParseString(id); err != nil {
		return nil, companydomain.ErrInvalidID
	}
	user, ok := f.users[id]
	if !ok {
		return nil, companydomain.ErrUserNotFound
	}
	return user, nil
}

type fakeAuthzService struct {
	err        error
	lastActor  string
	lastDomain string
	lastAction string
}

func (f *fakeAuthzService) Authorize(ctx context.Context, actor string, companyID string, object string, action string) error {
	f.lastActor = actor
	f.lastDomain = companyID
	f.lastAction = action
	return f.err
}

type fakeLeadService struct {
	created  []leaddomain.CreateLeadRequest
	lastList leaddomain.ListLeadRequest
}

func (f *fakeLeadService) Create(ctx context.Context, req leaddomain.CreateLeadRequest) (leaddomain.LeadView, error) {
	f.created = append(f.created, req)
	return leaddomain.LeadView{Lead: leaddomain.Lead{ID: snowflake.ID(900), LeadName: req.LeadName}}, nil
}

func (f *fakeLeadService) List(ctx context.Context, req leaddomain.ListLeadRequest) (pagination.Page[leaddomain.LeadView], error) {
	f.lastList = req
	return pagination.Page[leaddomain.LeadView]{Items: []leaddomain.LeadView{}}, nil
}

func (f *fakeLeadService) Get(ctx context.Context, id string) (leaddomain.LeadView, error) {
	return leaddomain.LeadView{}, leaddomain.ErrNotFound
}

func (f *fakeLeadService) Update(ctx context.Context, id string, fields map[string]any) (leaddomain.LeadView, error) {
	return leaddomain.LeadView{}, nil
}

func (f *fakeLeadService) Delete(ctx context.Context, id string) error {
	return nil
}

type fakeContactService struct {
	createErr error
	created   []contactdomain.CreateContactRequest
	lastList  contactdomain.ListContactRequest
}

func (f *fakeContactService) Create(ctx context.Context, req contactdomain.CreateContactRequest) (contactdomain.ContactView, error) {
	if f.createErr != nil {
		return contactdomain.ContactView{}, f.createErr
	}
	f.created = append(f.created, req)
	return contactdomain.ContactView{
		Contact:  contactdomain.Contact{ID: snowflake.ID(901), FirstName: req.FirstName, LastName: req.LastName},
		FullName: req.FirstName + " " + req.LastName,
	}, nil
}

func (f *fakeContactService) List(ctx context.Context, req contactdomain.ListContactRequest) (pagination.Page[contactdomain.ContactView], error) {
	f.lastList = req
	return pagination.Page[contactdomain.ContactView]{Items: []contactdomain.ContactView{}}, nil
}

func (f *fakeContactService) Get(ctx context.Context, id string) (contactdomain.ContactView, error) {
	return contactdomain.ContactView{}, contactdomain.ErrNotFound
}

func (f *fakeContactService) Update(ctx context.Context, id string, fields map[string]any) (contactdomain.ContactView, error) {
	return contactdomain.ContactView{}, nil
}

func (f *fakeContactService) Delete(ctx context.Context, id string) error {
	return nil
}

type fakeReportService struct {
	err error
}

func (f *fakeReportService) Generate(ctx context.Context, req reportdomain.Request) (reportdomain.Report, error) {
	if f.err != nil {
		return reportdomain.Report{}, f.err
	}
	return reportdomain.Report{ReportType: req.Type, Period: "current-month", Data: map[string]any{}}, nil
}

func (f *fakeReportService) Export(ctx context.Context, req reportdomain.Request, format string) (reportdomain.File, error) {
	if f.err != nil {
		return reportdomain.File{}, f.err
	}
	return reportdomain.File{Name: req.Type + ".csv", ContentType: "text/csv", Content: []byte("a,b\n")}, nil
}

func testUser(id int64, companyID int64) *companydomain.User {
	company := snowflake.ID(companyID)
	return &companydomain.User{
		ID:        snowflake.ID(id),
		CompanyID: &company,
		Role:      companydomain.RoleSalesRep,
		IsActive:  true,
	}
}

func newTestRouter(srv *Server) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	srv.engine = router
	srv.registerAPIRoutes()
	srv.registerFallback()
	return router
}

func doRequest(router http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func decodeBody(t *testing.T, resp *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v (%s)", err, resp.Body.String())
	}
	return body
}

func errorMessage(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	body := decodeBody(t, resp)
	payload, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error payload, got %s", resp.Body.String())
	}
	msg, _ := payload["message"].(string)
	return msg
}

func TestTenantContextRequiresUser(t *testing.T) {
	srv := &Server{companySvc: newFakeCompanyService(), authzSvc: &fakeAuthzService{}, leadSvc: &fakeLeadService{}}
	router := newTestRouter(srv)

	resp := doRequest(router, http.MethodGet, "/api/leads", "", nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}

	resp = doRequest(router, http.MethodGet, "/api/leads", "", map[string]string{HeaderUserID: "12345"})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 for unknown user, got %d", resp.Code)
	}

	resp = doRequest(router, http.MethodGet, "/api/leads", "", map[string]string{HeaderUserID: "not-an-id"})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 for malformed user id, got %d", resp.Code)
	}
}

func TestTenantContextRejectsInactiveUser(t *testing.T) {
	user := testUser(10, 100)
	user.IsActive = false
	srv := &Server{companySvc: newFakeCompanyService(user), authzSvc: &fakeAuthzService{}, leadSvc: &fakeLeadService{}}
	router := newTestRouter(srv)

	resp := doRequest(router, http.MethodGet, "/api/leads", "", map[string]string{HeaderUserID: "10"})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}
}

func TestTenantContextResolvesCompany(t *testing.T) {
	gin.SetMode(gin.TestMode)

	srv := &Server{companySvc: newFakeCompanyService(testUser(10, 100))}
	router := gin.New()
	router.Use(ErrorHandlingMiddleware())

	var resolved snowflake.ID
	router.GET("/whoami", srv.TenantContext(), func(c *gin.Context) {
		resolved, _ = companycontext.CompanyIDFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	resp := doRequest(router, http.MethodGet, "/whoami", "", map[string]string{HeaderUserID: "10"})
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", resp.Code)
	}
	if resolved != 100 {
		t.Fatalf("expected company 100 from user, got %d", resolved)
	}

	resp = doRequest(router, http.MethodGet, "/whoami?company_id=200", "", map[string]string{HeaderUserID: "10"})
	if resp.Code != http.StatusNoContent || resolved != 200 {
		t.Fatalf("expected company 200 from query, got %d (%d)", resolved, resp.Code)
	}

	resp = doRequest(router, http.MethodGet, "/whoami", "", map[string]string{HeaderUserID: "10", HeaderCompanyID: "300"})
	if resp.Code != http.StatusNoContent || resolved != 300 {
		t.Fatalf("expected company 300 from header, got %d (%d)", resolved, resp.Code)
	}

	resp = doRequest(router, http.MethodGet, "/whoami", "", map[string]string{HeaderUserID: "10", HeaderCompanyID: "abc"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for malformed company, got %d", resp.Code)
	}
}

func TestAuthorizeForbidden(t *testing.T) {
	authz := &fakeAuthzService{err: authorization.ErrForbidden}
	srv := &Server{companySvc: newFakeCompanyService(testUser(10, 100)), authzSvc: authz, leadSvc: &fakeLeadService{}}
	router := newTestRouter(srv)

	resp := doRequest(router, http.MethodDelete, "/api/leads/5", "", map[string]string{HeaderUserID: "10"})
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", resp.Code)
	}
	if authz.lastActor != "user:10" {
		t.Fatalf("unexpected actor %q", authz.lastActor)
	}
	if authz.lastDomain != "100" {
		t.Fatalf("unexpected company %q", authz.lastDomain)
	}
	if authz.lastAction != authorization.Action(authorization.ObjectLead, authorization.VerbDelete) {
		t.Fatalf("unexpected action %q", authz.lastAction)
	}
}

func TestListLeadsReturnsEnvelope(t *testing.T) {
	leads := &fakeLeadService{}
	srv := &Server{companySvc: newFakeCompanyService(testUser(10, 100)), authzSvc: &fakeAuthzService{}, leadSvc: leads}
	router := newTestRouter(srv)

	resp := doRequest(router, http.MethodGet, "/api/leads?status=New&search=+acme+&page_size=5", "", map[string]string{HeaderUserID: "10"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	body := decodeBody(t, resp)
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object, got %s", resp.Body.String())
	}
	items, ok := data["items"].([]any)
	if !ok || len(items) != 0 {
		t.Fatalf("expected empty items array, got %v", data["items"])
	}
	if hasMore, _ := data["has_more"].(bool); hasMore {
		t.Fatalf("expected has_more=false")
	}
	if leads.lastList.Status != "New" || leads.lastList.Search != "acme" || leads.lastList.PageSize != 5 {
		t.Fatalf("unexpected list request %+v", leads.lastList)
	}
}

func TestListLeadsRejectsInvertedDateRange(t *testing.T) {
	srv := &Server{companySvc: newFakeCompanyService(testUser(10, 100)), authzSvc: &fakeAuthzService{}, leadSvc: &fakeLeadService{}}
	router := newTestRouter(srv)

	resp := doRequest(router, http.MethodGet, "/api/leads?created_from=2024-05-10&created_to=2024-05-01", "", map[string]string{HeaderUserID: "10"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestGetLeadNotFound(t *testing.T) {
	srv := &Server{companySvc: newFakeCompanyService(testUser(10, 100)), authzSvc: &fakeAuthzService{}, leadSvc: &fakeLeadService{}}
	router := newTestRouter(srv)

	resp := doRequest(router, http.MethodGet, "/api/leads/42", "", map[string]string{HeaderUserID: "10"})
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}

func TestUpdateLeadRejectsEmptyBody(t *testing.T) {
	srv := &Server{companySvc: newFakeCompanyService(testUser(10, 100)), authzSvc: &fakeAuthzService{}, leadSvc: &fakeLeadService{}}
	router := newTestRouter(srv)

	resp := doRequest(router, http.MethodPatch, "/api/leads/42", `{}`, map[string]string{HeaderUserID: "10"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestGetReportErrorMapping(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{name: "missing type", err: reportdomain.ErrTypeRequired, status: http.StatusBadRequest, message: "Report type is required"},
		{name: "unknown type", err: reportdomain.ErrInvalidType, status: http.StatusBadRequest, message: "Invalid report type"},
		{name: "rate limited", err: reportdomain.ErrRateLimited, status: http.StatusTooManyRequests, message: "too many requests"},
		{name: "internal", err: errors.New("db down"), status: http.StatusInternalServerError, message: "Failed to generate report"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := &Server{
				companySvc: newFakeCompanyService(testUser(10, 100)),
				authzSvc:   &fakeAuthzService{},
				reportSvc:  &fakeReportService{err: tc.err},
			}
			router := newTestRouter(srv)

			resp := doRequest(router, http.MethodGet, "/api/reports?type=sales-pipeline", "", map[string]string{HeaderUserID: "10"})
			if resp.Code != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, resp.Code)
			}
			if msg := errorMessage(t, resp); msg != tc.message {
				t.Fatalf("expected message %q, got %q", tc.message, msg)
			}
		})
	}
}

func TestGetReportReturnsBareBody(t *testing.T) {
	srv := &Server{
		companySvc: newFakeCompanyService(testUser(10, 100)),
		authzSvc:   &fakeAuthzService{},
		reportSvc:  &fakeReportService{},
	}
	router := newTestRouter(srv)

	resp := doRequest(router, http.MethodGet, "/api/reports?type=sales-pipeline", "", map[string]string{HeaderUserID: "10"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	body := decodeBody(t, resp)
	if body["reportType"] != "sales-pipeline" {
		t.Fatalf("expected reportType at top level, got %v", body)
	}
}

func TestExportReportSendsAttachment(t *testing.T) {
	srv := &Server{
		companySvc: newFakeCompanyService(testUser(10, 100)),
		authzSvc:   &fakeAuthzService{},
		reportSvc:  &fakeReportService{},
	}
	router := newTestRouter(srv)

	resp := doRequest(router, http.MethodGet, "/api/reports/export?type=knowledge-base&format=CSV", "", map[string]string{HeaderUserID: "10"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if got := resp.Header().Get("Content-Disposition"); got != `attachment; filename="knowledge-base.csv"` {
		t.Fatalf("unexpected content disposition %q", got)
	}
	if resp.Body.String() != "a,b\n" {
		t.Fatalf("unexpected body %q", resp.Body.String())
	}
}

func TestValidateWizardKeepsStepOnMissingFields(t *testing.T) {
	srv := &Server{companySvc: newFakeCompanyService(testUser(10, 100)), authzSvc: &fakeAuthzService{}}
	router := newTestRouter(srv)

	resp := doRequest(router, http.MethodPost, "/api/wizards/lead/validate", `{"values":{"leadName":"Acme"},"step":1,"action":"next"}`, map[string]string{HeaderUserID: "10"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	data := decodeBody(t, resp)["data"].(map[string]any)
	if step := data["step"].(float64); step != 1 {
		t.Fatalf("expected to stay on step 1, got %v", step)
	}
	errs := data["errors"].(map[string]any)
	if _, ok := errs["industry"]; !ok {
		t.Fatalf("expected industry error, got %v", errs)
	}
	if _, ok := errs["leadName"]; ok {
		t.Fatalf("did not expect leadName error")
	}
}

func TestValidateWizardUnknownKind(t *testing.T) {
	srv := &Server{companySvc: newFakeCompanyService(testUser(10, 100)), authzSvc: &fakeAuthzService{}}
	router := newTestRouter(srv)

	resp := doRequest(router, http.MethodGet, "/api/wizards/spaceship", "", map[string]string{HeaderUserID: "10"})
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}

// leadWizardBody is a lead draft with every required field filled in.
func leadWizardBody(step int, extra string) string {
	return fmt.Sprintf(`{"step":%d,%s"values":{
		"leadName":"Acme expansion",
		"industry":"Manufacturing",
		"leadSource":"Referral",
		"leadOwner":"alice",
		"contactName":"Bob",
		"email":"bob@acme.test",
		"salesStage":"Prospecting",
		"estimatedValue":"50000",
		"primaryProduct":"Pumps",
		"secondaryProducts":["Valves"],
		"tags":["priority"]
	}}`, step, extra)
}

func TestValidateWizardDropsCorrectedErrors(t *testing.T) {
	srv := &Server{companySvc: newFakeCompanyService(testUser(10, 100)), authzSvc: &fakeAuthzService{}}
	router := newTestRouter(srv)

	body := leadWizardBody(1, `"action":"next","errors":{"leadName":"Lead name is required"},`)
	resp := doRequest(router, http.MethodPost, "/api/wizards/lead/validate", body, map[string]string{HeaderUserID: "10"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	data := decodeBody(t, resp)["data"].(map[string]any)
	if step := data["step"].(float64); step != 2 {
		t.Fatalf("expected step 2, got %v", step)
	}
	if errs := data["errors"].(map[string]any); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestSubmitWizardCreatesLead(t *testing.T) {
	leads := &fakeLeadService{}
	srv := &Server{companySvc: newFakeCompanyService(testUser(10, 100)), authzSvc: &fakeAuthzService{}, leadSvc: leads}
	router := newTestRouter(srv)

	resp := doRequest(router, http.MethodPost, "/api/wizards/lead/submit", leadWizardBody(4, ""), map[string]string{HeaderUserID: "10"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}
	if len(leads.created) != 1 {
		t.Fatalf("expected one lead created, got %d", len(leads.created))
	}

	req := leads.created[0]
	if req.LeadName != "Acme expansion" || req.AssignedTo != "alice" {
		t.Fatalf("unexpected request %+v", req)
	}
	if req.EstimatedValue.String() != "50000" {
		t.Fatalf("expected estimated value 50000, got %s", req.EstimatedValue)
	}
	if len(req.SecondaryProducts) != 1 || req.SecondaryProducts[0] != "Valves" {
		t.Fatalf("unexpected secondary products %v", req.SecondaryProducts)
	}
}

func TestSubmitWizardRejectsIncompleteDraft(t *testing.T) {
	leads := &fakeLeadService{}
	srv := &Server{companySvc: newFakeCompanyService(testUser(10, 100)), authzSvc: &fakeAuthzService{}, leadSvc: leads}
	router := newTestRouter(srv)

	resp := doRequest(router, http.MethodPost, "/api/wizards/lead/submit", `{"step":4,"values":{"leadName":"Acme"}}`, map[string]string{HeaderUserID: "10"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
	if len(leads.created) != 0 {
		t.Fatalf("expected no lead to be created")
	}
}

func TestSubmitWizardRejectsEarlyStep(t *testing.T) {
	leads := &fakeLeadService{}
	srv := &Server{companySvc: newFakeCompanyService(testUser(10, 100)), authzSvc: &fakeAuthzService{}, leadSvc: leads}
	router := newTestRouter(srv)

	resp := doRequest(router, http.MethodPost, "/api/wizards/lead/submit", leadWizardBody(1, ""), map[string]string{HeaderUserID: "10"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", resp.Code, resp.Body.String())
	}
	if len(leads.created) != 0 {
		t.Fatalf("expected no lead to be created, got %d", len(leads.created))
	}
}

func TestCreateContactReturnsCreated(t *testing.T) {
	contacts := &fakeContactService{}
	authz := &fakeAuthzService{}
	srv := &Server{companySvc: newFakeCompanyService(testUser(10, 100)), authzSvc: authz, leadSvc: &fakeLeadService{}, contactSvc: contacts}
	router := newTestRouter(srv)

	body := `{"first_name":"Priya","last_name":"Raman","email_primary":"priya@example.com","phone_mobile":"9840012345","lifecycle_stage":"Lead","account_id":"555"}`
	resp := doRequest(router, http.MethodPost, "/api/contacts", body, map[string]string{HeaderUserID: "10"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}
	if len(contacts.created) != 1 || contacts.created[0].AccountID == nil || *contacts.created[0].AccountID != 555 {
		t.Fatalf("unexpected create request %+v", contacts.created)
	}
	if authz.lastAction != authorization.VerbCreate {
		t.Fatalf("unexpected action %q", authz.lastAction)
	}
	data, _ := decodeBody(t, resp)["data"].(map[string]any)
	if data["full_name"] != "Priya Raman" {
		t.Fatalf("unexpected data %v", data)
	}
}

func TestCreateContactMapsMissingField(t *testing.T) {
	contacts := &fakeContactService{createErr: &contactdomain.MissingFieldError{Field: "email_primary"}}
	srv := &Server{companySvc: newFakeCompanyService(testUser(10, 100)), authzSvc: &fakeAuthzService{}, leadSvc: &fakeLeadService{}, contactSvc: contacts}
	router := newTestRouter(srv)

	resp := doRequest(router, http.MethodPost, "/api/contacts", `{"first_name":"Priya"}`, map[string]string{HeaderUserID: "10"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
	payload, _ := decodeBody(t, resp)["error"].(map[string]any)
	errs, _ := payload["errors"].([]any)
	if len(errs) != 1 {
		t.Fatalf("expected one field error, got %v", payload)
	}
	first, _ := errs[0].(map[string]any)
	if first["field"] != "email_primary" || first["message"] != "email_primary is required" {
		t.Fatalf("unexpected field error %v", first)
	}

	contacts.createErr = contactdomain.ErrInvalidPhone
	resp = doRequest(router, http.MethodPost, "/api/contacts", `{"first_name":"Priya"}`, map[string]string{HeaderUserID: "10"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
	payload, _ = decodeBody(t, resp)["error"].(map[string]any)
	errs, _ = payload["errors"].([]any)
	first, _ = errs[0].(map[string]any)
	if first["field"] != "phone_mobile" || first["message"] != "invalid phone number format" {
		t.Fatalf("unexpected field error %v", first)
	}
}

func TestListContactsPassesFilters(t *testing.T) {
	contacts := &fakeContactService{}
	srv := &Server{companySvc: newFakeCompanyService(testUser(10, 100)), authzSvc: &fakeAuthzService{}, leadSvc: &fakeLeadService{}, contactSvc: contacts}
	router := newTestRouter(srv)

	resp := doRequest(router, http.MethodGet, "/api/contacts?account_id=555&lifecycle_stage=Customer&status=Active", "", map[string]string{HeaderUserID: "10"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if contacts.lastList.AccountID != "555" || contacts.lastList.LifecycleStage != "Customer" || contacts.lastList.Status != "Active" {
		t.Fatalf("unexpected list request %+v", contacts.lastList)
	}

	resp = doRequest(router, http.MethodGet, "/api/contacts/42", "", map[string]string{HeaderUserID: "10"})
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}

func TestUnknownRouteReturns404(t *testing.T) {
	srv := &Server{companySvc: newFakeCompanyService()}
	router := newTestRouter(srv)

	resp := doRequest(router, http.MethodGet, "/nope", "", nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}

func TestCorsConfigAllowsAllWhenUnset(t *testing.T) {
	cfg := corsConfig(nil)
	if !cfg.AllowAllOrigins || cfg.AllowCredentials {
		t.Fatalf("expected wildcard origins without credentials")
	}

	cfg = corsConfig([]string{"https://crm.example.com"})
	if cfg.AllowAllOrigins || len(cfg.AllowOrigins) != 1 {
		t.Fatalf("expected explicit origin list, got %+v", cfg.AllowOrigins)
	}
}
