package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	accountdomain "github.com/smallbiznis/crm/internal/account/domain"
	activitydomain "github.com/smallbiznis/crm/internal/activity/domain"
	amcdomain "github.com/smallbiznis/crm/internal/amc/domain"
	auditdomain "github.com/smallbiznis/crm/internal/audit/domain"
	companydomain "github.com/smallbiznis/crm/internal/company/domain"
	complaintdomain "github.com/smallbiznis/crm/internal/complaint/domain"
	contactdomain "github.com/smallbiznis/crm/internal/contact/domain"
	dealdomain "github.com/smallbiznis/crm/internal/deal/domain"
	installationdomain "github.com/smallbiznis/crm/internal/installation/domain"
	invoicedomain "github.com/smallbiznis/crm/internal/invoice/domain"
	leaddomain "github.com/smallbiznis/crm/internal/lead/domain"
	"github.com/smallbiznis/crm/internal/numbering"
	productdomain "github.com/smallbiznis/crm/internal/product/domain"
	quotationdomain "github.com/smallbiznis/crm/internal/quotation/domain"
	salesorderdomain "github.com/smallbiznis/crm/internal/salesorder/domain"
	supportdomain "github.com/smallbiznis/crm/internal/support/domain"
	"gorm.io/gorm"
)

// RunMigrations applies the embedded SQL migrations to a postgres database.
// It opens its own connection so closing the migrator leaves the shared pool
// untouched.
func RunMigrations(dsn string) error {
	if dsn == "" {
		return errors.New("migration dsn is required")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("create migrator: %w", err)
	}
	defer migrator.Close()

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Models lists every table owned by the application.
func Models() []any {
	return []any{
		&companydomain.Company{},
		&companydomain.User{},
		&leaddomain.Lead{},
		&accountdomain.Account{},
		&contactdomain.Contact{},
		&productdomain.Product{},
		&quotationdomain.Quotation{},
		&invoicedomain.Invoice{},
		&installationdomain.Installation{},
		&amcdomain.Contract{},
		&complaintdomain.Complaint{},
		&dealdomain.Deal{},
		&activitydomain.Activity{},
		&salesorderdomain.SalesOrder{},
		&supportdomain.Case{},
		&supportdomain.Solution{},
		&auditdomain.AuditLog{},
		&numbering.DocumentSequence{},
	}
}

// AutoMigrate creates the schema from the models for databases without SQL
// migrations (mysql, sqlite).
func AutoMigrate(conn *gorm.DB) error {
	if conn == nil {
		return errors.New("migration database handle is required")
	}
	return conn.AutoMigrate(Models()...)
}
