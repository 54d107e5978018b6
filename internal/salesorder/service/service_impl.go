package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/crm/internal/clock"
	"github.com/smallbiznis/crm/internal/companycontext"
	"github.com/smallbiznis/crm/internal/numbering"
	"github.com/smallbiznis/crm/internal/salesorder/domain"
	"github.com/smallbiznis/crm/pkg/db/pagination"
	"github.com/smallbiznis/crm/pkg/db/patch"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var updatableColumns = patch.Allow(
	"order_date", "account_id", "account_name", "quotation_id", "total_amount",
	"currency", "status", "delivery_date", "assigned_to", "notes",
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.Repository
	Numbers numbering.Generator
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	numbers numbering.Generator
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("salesorder.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		numbers: p.Numbers,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateSalesOrderRequest) (domain.SalesOrderView, error) {
	companyID, ok := companycontext.CompanyIDFromContext(ctx)
	if !ok || companyID == 0 {
		return domain.SalesOrderView{}, domain.ErrInvalidCompany
	}
	if req.TotalAmount.IsNegative() {
		return domain.SalesOrderView{}, domain.ErrInvalidAmount
	}

	now := s.clock.Now()
	orderDate := now
	if d := req.OrderDate.Ptr(); d != nil {
		orderDate = *d
	}
	status := strings.TrimSpace(req.Status)
	if status == "" {
		status = domain.StatusPending
	}

	order := domain.SalesOrder{
		ID:           s.genID.Generate(),
		CompanyID:    companyID,
		OrderDate:    orderDate,
		AccountID:    req.AccountID,
		AccountName:  strings.TrimSpace(req.AccountName),
		QuotationID:  req.QuotationID,
		TotalAmount:  req.TotalAmount.Round(2),
		Currency:     strings.TrimSpace(req.Currency),
		Status:       status,
		DeliveryDate: req.DeliveryDate.Ptr(),
		AssignedTo:   strings.TrimSpace(req.AssignedTo),
		Notes:        strings.TrimSpace(req.Notes),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := numbering.Assign(ctx, tx, s.numbers, companyID, numbering.DocSalesOrder, req.OrderNumber, orderDate, s.numberTaken(companyID))
		if err != nil {
			return err
		}
		order.OrderNumber = number
		return s.repo.Insert(ctx, tx, &order)
	})
	if errors.Is(err, numbering.ErrNumberTaken) {
		return domain.SalesOrderView{}, domain.ErrNumberTaken
	}
	if err != nil {
		return domain.SalesOrderView{}, err
	}

	return domain.ToView(&order, now), nil
}

func (s *Service) List(ctx context.Context, req domain.ListSalesOrderRequest) (pagination.Page[domain.SalesOrderView], error) {
	companyID, ok := companycontext.CompanyIDFromContext(ctx)
	if !ok || companyID == 0 {
		return pagination.Page[domain.SalesOrderView]{}, domain.ErrInvalidCompany
	}

	filter := domain.ListSalesOrderFilter{
		Status:      strings.TrimSpace(req.Status),
		Search:      strings.TrimSpace(req.Search),
		CreatedFrom: req.CreatedFrom,
		CreatedTo:   req.CreatedTo,
	}
	if v := strings.TrimSpace(req.AccountID); v != "" {
		id, err := parseID(v)
		if err != nil {
			return pagination.Page[domain.SalesOrderView]{}, err
		}
		filter.AccountID = &id
	}
	if v := strings.TrimSpace(req.QuotationID); v != "" {
		id, err := parseID(v)
		if err != nil {
			return pagination.Page[domain.SalesOrderView]{}, err
		}
		filter.QuotationID = &id
	}

	size := pagination.NormalizeSize(req.PageSize)
	items, err := s.repo.List(ctx, s.db, companyID, filter, pagination.Pagination{PageToken: req.PageToken, PageSize: int(size)})
	if err != nil {
		return pagination.Page[domain.SalesOrderView]{}, err
	}

	now := s.clock.Now()
	return pagination.BuildPage(items, size,
		func(o *domain.SalesOrder) (string, time.Time) { return o.ID.String(), o.CreatedAt },
		func(o *domain.SalesOrder) domain.SalesOrderView { return domain.ToView(o, now) },
	), nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.SalesOrderView, error) {
	order, err := s.find(ctx, id)
	if err != nil {
		return domain.SalesOrderView{}, err
	}
	return domain.ToView(order, s.clock.Now()), nil
}

func (s *Service) Update(ctx context.Context, id string, fields map[string]any) (domain.SalesOrderView, error) {
	order, err := s.find(ctx, id)
	if err != nil {
		return domain.SalesOrderView{}, err
	}

	updates := updatableColumns.Apply(fields)
	if v, ok := updates["status"]; ok && v == nil {
		updates["status"] = domain.StatusPending
	}
	if v, ok := updates["order_date"]; ok && v == nil {
		delete(updates, "order_date")
	}
	if err := patch.Decimals(updates, "total_amount"); err != nil {
		return domain.SalesOrderView{}, domain.ErrInvalidAmount
	}
	if err := patch.Times(updates, "order_date", "delivery_date"); err != nil {
		return domain.SalesOrderView{}, domain.ErrInvalidDate
	}
	for _, column := range []string{"account_id", "quotation_id"} {
		raw, ok := updates[column]
		if !ok || raw == nil {
			continue
		}
		str, isString := raw.(string)
		if !isString {
			return domain.SalesOrderView{}, domain.ErrInvalidID
		}
		ref, err := parseID(str)
		if err != nil {
			return domain.SalesOrderView{}, err
		}
		updates[column] = ref
	}
	if len(updates) == 0 {
		return domain.ToView(order, s.clock.Now()), nil
	}

	updates["updated_at"] = s.clock.Now()
	if _, err := s.repo.Update(ctx, s.db, order.CompanyID, order.ID, updates); err != nil {
		return domain.SalesOrderView{}, err
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	order, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	_, err = s.repo.Delete(ctx, s.db, order.CompanyID, order.ID)
	return err
}

func (s *Service) numberTaken(companyID snowflake.ID) numbering.TakenFunc {
	return func(ctx context.Context, db *gorm.DB, number string) (bool, error) {
		existing, err := s.repo.FindByNumber(ctx, db, companyID, number)
		return existing != nil, err
	}
}

func (s *Service) find(ctx context.Context, id string) (*domain.SalesOrder, error) {
	companyID, ok := companycontext.CompanyIDFromContext(ctx)
	if !ok || companyID == 0 {
		return nil, domain.ErrInvalidCompany
	}
	orderID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	order, err := s.repo.FindByID(ctx, s.db, companyID, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
