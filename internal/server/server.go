package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/crm/internal/account"
	accountdomain "github.com/smallbiznis/crm/internal/account/domain"
	"github.com/smallbiznis/crm/internal/activity"
	activitydomain "github.com/smallbiznis/crm/internal/activity/domain"
	"github.com/smallbiznis/crm/internal/amc"
	amcdomain "github.com/smallbiznis/crm/internal/amc/domain"
	"github.com/smallbiznis/crm/internal/audit"
	auditdomain "github.com/smallbiznis/crm/internal/audit/domain"
	"github.com/smallbiznis/crm/internal/authorization"
	"github.com/smallbiznis/crm/internal/company"
	companydomain "github.com/smallbiznis/crm/internal/company/domain"
	"github.com/smallbiznis/crm/internal/complaint"
	complaintdomain "github.com/smallbiznis/crm/internal/complaint/domain"
	"github.com/smallbiznis/crm/internal/config"
	"github.com/smallbiznis/crm/internal/contact"
	contactdomain "github.com/smallbiznis/crm/internal/contact/domain"
	"github.com/smallbiznis/crm/internal/deal"
	dealdomain "github.com/smallbiznis/crm/internal/deal/domain"
	"github.com/smallbiznis/crm/internal/installation"
	installationdomain "github.com/smallbiznis/crm/internal/installation/domain"
	"github.com/smallbiznis/crm/internal/invoice"
	invoicedomain "github.com/smallbiznis/crm/internal/invoice/domain"
	"github.com/smallbiznis/crm/internal/lead"
	leaddomain "github.com/smallbiznis/crm/internal/lead/domain"
	obslogger "github.com/smallbiznis/crm/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/crm/internal/observability/metrics"
	obstracing "github.com/smallbiznis/crm/internal/observability/tracing"
	"github.com/smallbiznis/crm/internal/product"
	productdomain "github.com/smallbiznis/crm/internal/product/domain"
	"github.com/smallbiznis/crm/internal/quotation"
	quotationdomain "github.com/smallbiznis/crm/internal/quotation/domain"
	"github.com/smallbiznis/crm/internal/report"
	reportdomain "github.com/smallbiznis/crm/internal/report/domain"
	"github.com/smallbiznis/crm/internal/salesorder"
	salesorderdomain "github.com/smallbiznis/crm/internal/salesorder/domain"
	"github.com/smallbiznis/crm/internal/support"
	supportdomain "github.com/smallbiznis/crm/internal/support/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	authorization.Module,
	audit.Module,
	company.Module,
	lead.Module,
	account.Module,
	contact.Module,
	product.Module,
	quotation.Module,
	invoice.Module,
	installation.Module,
	amc.Module,
	complaint.Module,
	deal.Module,
	activity.Module,
	salesorder.Module,
	support.Module,
	report.Module,
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(corsConfig(cfg.CORSAllowedOrigins)))
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:    cfg.Debug(),
		Classify: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", HeaderUserID, HeaderCompanyID, "X-Request-Id"},
		ExposeHeaders:    []string{"Content-Disposition", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}

func registerGin(cfg config.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	return NewEngine(cfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	log             *zap.Logger
	authzSvc        authorization.Service
	auditSvc        auditdomain.Service
	companySvc      companydomain.Service
	leadSvc         leaddomain.Service
	accountSvc      accountdomain.Service
	contactSvc      contactdomain.Service
	productSvc      productdomain.Service
	quotationSvc    quotationdomain.Service
	invoiceSvc      invoicedomain.Service
	installationSvc installationdomain.Service
	amcSvc          amcdomain.Service
	complaintSvc    complaintdomain.Service
	dealSvc         dealdomain.Service
	activitySvc     activitydomain.Service
	salesOrderSvc   salesorderdomain.Service
	caseSvc         supportdomain.CaseService
	solutionSvc     supportdomain.SolutionService
	reportSvc       reportdomain.Service
	obsMetrics      *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	Log             *zap.Logger
	AuthzSvc        authorization.Service
	AuditSvc        auditdomain.Service
	CompanySvc      companydomain.Service
	LeadSvc         leaddomain.Service
	AccountSvc      accountdomain.Service
	ContactSvc      contactdomain.Service
	ProductSvc      productdomain.Service
	QuotationSvc    quotationdomain.Service
	InvoiceSvc      invoicedomain.Service
	InstallationSvc installationdomain.Service
	AMCSvc          amcdomain.Service
	ComplaintSvc    complaintdomain.Service
	DealSvc         dealdomain.Service
	ActivitySvc     activitydomain.Service
	SalesOrderSvc   salesorderdomain.Service
	CaseSvc         supportdomain.CaseService
	SolutionSvc     supportdomain.SolutionService
	ReportSvc       reportdomain.Service
	ObsMetrics      *obsmetrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		log:             p.Log.Named("http.server"),
		authzSvc:        p.AuthzSvc,
		auditSvc:        p.AuditSvc,
		companySvc:      p.CompanySvc,
		leadSvc:         p.LeadSvc,
		accountSvc:      p.AccountSvc,
		contactSvc:      p.ContactSvc,
		productSvc:      p.ProductSvc,
		quotationSvc:    p.QuotationSvc,
		invoiceSvc:      p.InvoiceSvc,
		installationSvc: p.InstallationSvc,
		amcSvc:          p.AMCSvc,
		complaintSvc:    p.ComplaintSvc,
		dealSvc:         p.DealSvc,
		activitySvc:     p.ActivitySvc,
		salesOrderSvc:   p.SalesOrderSvc,
		caseSvc:         p.CaseSvc,
		solutionSvc:     p.SolutionSvc,
		reportSvc:       p.ReportSvc,
		obsMetrics:      p.ObsMetrics,
	}

	svc.registerAPIRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.TenantContext())

	// -------- Leads --------
	api.GET("/leads", s.authorize(authorization.ObjectLead, authorization.VerbView), s.ListLeads)
	api.POST("/leads", s.authorize(authorization.ObjectLead, authorization.VerbCreate), s.CreateLead)
	api.GET("/leads/:id", s.authorize(authorization.ObjectLead, authorization.VerbView), s.GetLeadByID)
	api.PATCH("/leads/:id", s.authorize(authorization.ObjectLead, authorization.VerbUpdate), s.UpdateLead)
	api.PUT("/leads/:id", s.authorize(authorization.ObjectLead, authorization.VerbUpdate), s.UpdateLead)
	api.DELETE("/leads/:id", s.authorize(authorization.ObjectLead, authorization.VerbDelete), s.DeleteLead)

	// -------- Accounts --------
	api.GET("/accounts", s.authorize(authorization.ObjectAccount, authorization.VerbView), s.ListAccounts)
	api.POST("/accounts", s.authorize(authorization.ObjectAccount, authorization.VerbCreate), s.CreateAccount)
	api.GET("/accounts/:id", s.authorize(authorization.ObjectAccount, authorization.VerbView), s.GetAccountByID)
	api.PATCH("/accounts/:id", s.authorize(authorization.ObjectAccount, authorization.VerbUpdate), s.UpdateAccount)
	api.PUT("/accounts/:id", s.authorize(authorization.ObjectAccount, authorization.VerbUpdate), s.UpdateAccount)
	api.DELETE("/accounts/:id", s.authorize(authorization.ObjectAccount, authorization.VerbDelete), s.DeleteAccount)

	// -------- Contacts --------
	api.GET("/contacts", s.authorize(authorization.ObjectContact, authorization.VerbView), s.ListContacts)
	api.POST("/contacts", s.authorize(authorization.ObjectContact, authorization.VerbCreate), s.CreateContact)
	api.GET("/contacts/:id", s.authorize(authorization.ObjectContact, authorization.VerbView), s.GetContactByID)
	api.PATCH("/contacts/:id", s.authorize(authorization.ObjectContact, authorization.VerbUpdate), s.UpdateContact)
	api.PUT("/contacts/:id", s.authorize(authorization.ObjectContact, authorization.VerbUpdate), s.UpdateContact)
	api.DELETE("/contacts/:id", s.authorize(authorization.ObjectContact, authorization.VerbDelete), s.DeleteContact)

	// -------- Products --------
	api.GET("/products", s.authorize(authorization.ObjectProduct, authorization.VerbView), s.ListProducts)
	api.POST("/products", s.authorize(authorization.ObjectProduct, authorization.VerbCreate), s.CreateProduct)
	api.GET("/products/:id", s.authorize(authorization.ObjectProduct, authorization.VerbView), s.GetProductByID)
	api.PATCH("/products/:id", s.authorize(authorization.ObjectProduct, authorization.VerbUpdate), s.UpdateProduct)
	api.PUT("/products/:id", s.authorize(authorization.ObjectProduct, authorization.VerbUpdate), s.UpdateProduct)
	api.DELETE("/products/:id", s.authorize(authorization.ObjectProduct, authorization.VerbDelete), s.DeleteProduct)

	// -------- Quotations --------
	api.GET("/quotations", s.authorize(authorization.ObjectQuotation, authorization.VerbView), s.ListQuotations)
	api.POST("/quotations", s.authorize(authorization.ObjectQuotation, authorization.VerbCreate), s.CreateQuotation)
	api.GET("/quotations/:id", s.authorize(authorization.ObjectQuotation, authorization.VerbView), s.GetQuotationByID)
	api.GET("/quotations/:id/pdf", s.authorize(authorization.ObjectQuotation, authorization.VerbView), s.RenderQuotationPDF)
	api.PATCH("/quotations/:id", s.authorize(authorization.ObjectQuotation, authorization.VerbUpdate), s.UpdateQuotation)
	api.PUT("/quotations/:id", s.authorize(authorization.ObjectQuotation, authorization.VerbUpdate), s.UpdateQuotation)
	api.DELETE("/quotations/:id", s.authorize(authorization.ObjectQuotation, authorization.VerbDelete), s.DeleteQuotation)

	// -------- Invoices --------
	api.GET("/invoices", s.authorize(authorization.ObjectInvoice, authorization.VerbView), s.ListInvoices)
	api.POST("/invoices", s.authorize(authorization.ObjectInvoice, authorization.VerbCreate), s.CreateInvoice)
	api.GET("/invoices/:id", s.authorize(authorization.ObjectInvoice, authorization.VerbView), s.GetInvoiceByID)
	api.GET("/invoices/:id/pdf", s.authorize(authorization.ObjectInvoice, authorization.VerbView), s.RenderInvoicePDF)
	api.PATCH("/invoices/:id", s.authorize(authorization.ObjectInvoice, authorization.VerbUpdate), s.UpdateInvoice)
	api.PUT("/invoices/:id", s.authorize(authorization.ObjectInvoice, authorization.VerbUpdate), s.UpdateInvoice)
	api.DELETE("/invoices/:id", s.authorize(authorization.ObjectInvoice, authorization.VerbDelete), s.DeleteInvoice)

	// -------- Installations --------
	api.GET("/installations", s.authorize(authorization.ObjectInstallation, authorization.VerbView), s.ListInstallations)
	api.POST("/installations", s.authorize(authorization.ObjectInstallation, authorization.VerbCreate), s.CreateInstallation)
	api.GET("/installations/:id", s.authorize(authorization.ObjectInstallation, authorization.VerbView), s.GetInstallationByID)
	api.PATCH("/installations/:id", s.authorize(authorization.ObjectInstallation, authorization.VerbUpdate), s.UpdateInstallation)
	api.PUT("/installations/:id", s.authorize(authorization.ObjectInstallation, authorization.VerbUpdate), s.UpdateInstallation)
	api.DELETE("/installations/:id", s.authorize(authorization.ObjectInstallation, authorization.VerbDelete), s.DeleteInstallation)

	// -------- AMC contracts --------
	api.GET("/amc", s.authorize(authorization.ObjectAMCContract, authorization.VerbView), s.ListAMCContracts)
	api.POST("/amc", s.authorize(authorization.ObjectAMCContract, authorization.VerbCreate), s.CreateAMCContract)
	api.GET("/amc/:id", s.authorize(authorization.ObjectAMCContract, authorization.VerbView), s.GetAMCContractByID)
	api.PATCH("/amc/:id", s.authorize(authorization.ObjectAMCContract, authorization.VerbUpdate), s.UpdateAMCContract)
	api.PUT("/amc/:id", s.authorize(authorization.ObjectAMCContract, authorization.VerbUpdate), s.UpdateAMCContract)
	api.POST("/amc/:id/renew", s.authorize(authorization.ObjectAMCContract, authorization.VerbCreate), s.RenewAMCContract)
	api.DELETE("/amc/:id", s.authorize(authorization.ObjectAMCContract, authorization.VerbDelete), s.DeleteAMCContract)

	// -------- Complaints --------
	api.GET("/complaints", s.authorize(authorization.ObjectComplaint, authorization.VerbView), s.ListComplaints)
	api.POST("/complaints", s.authorize(authorization.ObjectComplaint, authorization.VerbCreate), s.CreateComplaint)
	api.GET("/complaints/:id", s.authorize(authorization.ObjectComplaint, authorization.VerbView), s.GetComplaintByID)
	api.PATCH("/complaints/:id", s.authorize(authorization.ObjectComplaint, authorization.VerbUpdate), s.UpdateComplaint)
	api.PUT("/complaints/:id", s.authorize(authorization.ObjectComplaint, authorization.VerbUpdate), s.UpdateComplaint)
	api.DELETE("/complaints/:id", s.authorize(authorization.ObjectComplaint, authorization.VerbDelete), s.DeleteComplaint)

	// -------- Deals --------
	api.GET("/deals", s.authorize(authorization.ObjectDeal, authorization.VerbView), s.ListDeals)
	api.POST("/deals", s.authorize(authorization.ObjectDeal, authorization.VerbCreate), s.CreateDeal)
	api.GET("/deals/:id", s.authorize(authorization.ObjectDeal, authorization.VerbView), s.GetDealByID)
	api.PATCH("/deals/:id", s.authorize(authorization.ObjectDeal, authorization.VerbUpdate), s.UpdateDeal)
	api.PUT("/deals/:id", s.authorize(authorization.ObjectDeal, authorization.VerbUpdate), s.UpdateDeal)
	api.DELETE("/deals/:id", s.authorize(authorization.ObjectDeal, authorization.VerbDelete), s.DeleteDeal)

	// -------- Activities --------
	api.GET("/activities", s.authorize(authorization.ObjectActivity, authorization.VerbView), s.ListActivities)
	api.POST("/activities", s.authorize(authorization.ObjectActivity, authorization.VerbCreate), s.CreateActivity)
	api.DELETE("/activities", s.authorize(authorization.ObjectActivity, authorization.VerbDelete), s.DeleteAllActivities)
	api.GET("/activities/:id", s.authorize(authorization.ObjectActivity, authorization.VerbView), s.GetActivityByID)
	api.PATCH("/activities/:id", s.authorize(authorization.ObjectActivity, authorization.VerbUpdate), s.UpdateActivity)
	api.PUT("/activities/:id", s.authorize(authorization.ObjectActivity, authorization.VerbUpdate), s.UpdateActivity)
	api.DELETE("/activities/:id", s.authorize(authorization.ObjectActivity, authorization.VerbDelete), s.DeleteActivity)

	// -------- Sales orders --------
	api.GET("/sales-orders", s.authorize(authorization.ObjectSalesOrder, authorization.VerbView), s.ListSalesOrders)
	api.POST("/sales-orders", s.authorize(authorization.ObjectSalesOrder, authorization.VerbCreate), s.CreateSalesOrder)
	api.GET("/sales-orders/:id", s.authorize(authorization.ObjectSalesOrder, authorization.VerbView), s.GetSalesOrderByID)
	api.PATCH("/sales-orders/:id", s.authorize(authorization.ObjectSalesOrder, authorization.VerbUpdate), s.UpdateSalesOrder)
	api.PUT("/sales-orders/:id", s.authorize(authorization.ObjectSalesOrder, authorization.VerbUpdate), s.UpdateSalesOrder)
	api.DELETE("/sales-orders/:id", s.authorize(authorization.ObjectSalesOrder, authorization.VerbDelete), s.DeleteSalesOrder)

	// -------- Support --------
	api.GET("/cases", s.authorize(authorization.ObjectCase, authorization.VerbView), s.ListCases)
	api.POST("/cases", s.authorize(authorization.ObjectCase, authorization.VerbCreate), s.CreateCase)
	api.GET("/cases/:id", s.authorize(authorization.ObjectCase, authorization.VerbView), s.GetCaseByID)
	api.PATCH("/cases/:id", s.authorize(authorization.ObjectCase, authorization.VerbUpdate), s.UpdateCase)
	api.PUT("/cases/:id", s.authorize(authorization.ObjectCase, authorization.VerbUpdate), s.UpdateCase)
	api.DELETE("/cases/:id", s.authorize(authorization.ObjectCase, authorization.VerbDelete), s.DeleteCase)

	api.GET("/solutions", s.authorize(authorization.ObjectSolution, authorization.VerbView), s.ListSolutions)
	api.POST("/solutions", s.authorize(authorization.ObjectSolution, authorization.VerbCreate), s.CreateSolution)
	api.GET("/solutions/:id", s.authorize(authorization.ObjectSolution, authorization.VerbView), s.GetSolutionByID)
	api.PATCH("/solutions/:id", s.authorize(authorization.ObjectSolution, authorization.VerbUpdate), s.UpdateSolution)
	api.PUT("/solutions/:id", s.authorize(authorization.ObjectSolution, authorization.VerbUpdate), s.UpdateSolution)
	api.DELETE("/solutions/:id", s.authorize(authorization.ObjectSolution, authorization.VerbDelete), s.DeleteSolution)

	// -------- Wizards --------
	api.GET("/wizards/:kind", s.GetWizard)
	api.POST("/wizards/:kind/validate", s.ValidateWizard)
	api.POST("/wizards/:kind/submit", s.authorizeWizardSubmit(), s.SubmitWizard)

	// -------- Reports --------
	api.GET("/reports", s.authorize(authorization.ObjectReport, authorization.VerbView), s.GetReport)
	api.GET("/reports/export", s.authorize(authorization.ObjectReport, authorization.VerbExport), s.ExportReport)

	// -------- Audit logs --------
	api.GET("/audit-logs", s.authorize(authorization.ObjectAuditLog, authorization.VerbView), s.ListAuditLogs)

	// -------- Companies --------
	api.GET("/companies", s.authorize(authorization.ObjectCompany, authorization.VerbCreate), s.ListCompanies)
	api.POST("/companies", s.authorize(authorization.ObjectCompany, authorization.VerbCreate), s.CreateCompany)

	companies := api.Group("/companies/:id", s.CompanyFromPath())
	{
		companies.GET("", s.authorize(authorization.ObjectCompany, authorization.VerbView), s.GetCompanyByID)
		companies.PATCH("", s.authorize(authorization.ObjectCompany, authorization.VerbUpdate), s.UpdateCompany)
		companies.DELETE("", s.authorize(authorization.ObjectCompany, authorization.VerbDelete), s.DeleteCompany)
		companies.GET("/users", s.authorize(authorization.ObjectUser, authorization.VerbView), s.ListCompanyUsers)
		companies.POST("/users", s.authorize(authorization.ObjectUser, authorization.VerbCreate), s.CreateCompanyUser)
	}
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
