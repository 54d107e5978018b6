package authorization

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	auditdomain "github.com/smallbiznis/crm/internal/audit/domain"
	companydomain "github.com/smallbiznis/crm/internal/company/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	actorSystem = "system"
	actorUser   = "user:"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
	AuditSvc auditdomain.Service `optional:"true"`
}

type ServiceImpl struct {
	db       *gorm.DB
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
	auditSvc auditdomain.Service
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	if err := enforcer.BuildRoleLinks(); err != nil {
		return nil, err
	}
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		db:       p.DB,
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
		auditSvc: p.AuditSvc,
	}
}

// Authorize checks actor ("system" or "user:<id>") against object/action in
// the company's domain. Unknown users fail with ErrUnknownActor; members of
// another company, and roles without the permission, with ErrForbidden.
// Super admins may act on any company.
func (s *ServiceImpl) Authorize(ctx context.Context, actor string, companyID string, object string, action string) error {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return ErrInvalidActor
	}
	parsedCompanyID, err := snowflake.ParseString(strings.TrimSpace(companyID))
	if err != nil || parsedCompanyID == 0 {
		return ErrInvalidCompany
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	if actor == actorSystem {
		return nil
	}

	user, err := s.resolveUser(ctx, actor)
	if err != nil {
		return err
	}
	userID := user.ID.String()

	if user.Role != companydomain.RoleSuperAdmin && !user.BelongsTo(parsedCompanyID) {
		s.audit(ctx, "authorization.denied", parsedCompanyID, userID, object, action)
		return ErrForbidden
	}

	domain := fmt.Sprintf("company:%s", parsedCompanyID)
	if err := s.ensureGrouping(actor, roleSubject(user.Role), domain); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(actor, domain, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.audit(ctx, "authorization.denied", parsedCompanyID, userID, object, action)
		return ErrForbidden
	}
	return nil
}

func (s *ServiceImpl) resolveUser(ctx context.Context, actor string) (companydomain.User, error) {
	if !strings.HasPrefix(actor, actorUser) {
		return companydomain.User{}, ErrInvalidActor
	}
	userID, err := snowflake.ParseString(strings.TrimPrefix(actor, actorUser))
	if err != nil || userID == 0 {
		return companydomain.User{}, ErrInvalidActor
	}

	var user companydomain.User
	err = s.db.WithContext(ctx).Where("id = ?", userID).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return companydomain.User{}, ErrUnknownActor
	}
	if err != nil {
		return companydomain.User{}, err
	}
	if !user.IsActive || strings.TrimSpace(user.Role) == "" {
		return companydomain.User{}, ErrUnknownActor
	}
	user.Role = strings.ToLower(strings.TrimSpace(user.Role))
	return user, nil
}

// ensureGrouping binds subject to exactly one role in domain, replacing a
// stale binding after a role change.
func (s *ServiceImpl) ensureGrouping(subject string, roleName string, domain string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject, "", domain)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 || rule[1] == roleName {
			continue
		}
		params := make([]any, 0, len(rule))
		for _, value := range rule {
			params = append(params, value)
		}
		if _, err := s.enforcer.RemoveGroupingPolicy(params...); err != nil {
			s.log.Warn("failed to drop stale role binding", zap.String("subject", subject), zap.Error(err))
		}
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, roleName, domain)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, roleName, domain)
	return err
}

func (s *ServiceImpl) audit(ctx context.Context, event string, companyID snowflake.ID, userID string, object string, action string) {
	if s.auditSvc == nil {
		return
	}
	targetID := "capability"
	_ = s.auditSvc.AuditLog(ctx, &companyID, string(auditdomain.ActorTypeUser), &userID, event, "authorization", &targetID, map[string]any{
		"object": object,
		"action": action,
	})
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	for _, policy := range rolePolicies() {
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}
