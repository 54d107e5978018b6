// Package numbering allocates human-readable document numbers such as
// QTN-2025-001 from a per-company, per-document-type sequence.
package numbering

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/crm/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DocQuotation    = "quotation"
	DocInvoice      = "invoice"
	DocInstallation = "installation"
	DocAMC          = "amc"
	DocComplaint    = "complaint"
	DocSalesOrder   = "sales_order"
	DocCase         = "case"
	DocSolution     = "solution"
)

const maxAttempts = 5

var ErrSequenceContention = errors.New("sequence_contention")

// DocumentSequence stores the last issued value per company, document type and period.
type DocumentSequence struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	CompanyID snowflake.ID `gorm:"column:company_id;not null;uniqueIndex:ux_document_sequences_scope"`
	DocType   string       `gorm:"column:doc_type;type:text;not null;uniqueIndex:ux_document_sequences_scope"`
	Period    string       `gorm:"column:period;type:text;not null;uniqueIndex:ux_document_sequences_scope"`
	LastValue int64        `gorm:"column:last_value;not null"`
	UpdatedAt time.Time    `gorm:"not null"`
}

func (DocumentSequence) TableName() string { return "document_sequences" }

// Generator issues document numbers.
type Generator interface {
	Next(ctx context.Context, db *gorm.DB, companyID snowflake.ID, docType string, issuedAt time.Time) (string, error)
}

type Params struct {
	fx.In

	Log      *zap.Logger
	GenID    *snowflake.Node
	Settings *config.SettingsHolder
}

type sequencer struct {
	log      *zap.Logger
	genID    *snowflake.Node
	settings *config.SettingsHolder
}

var Module = fx.Module("numbering",
	fx.Provide(New),
)

func New(p Params) Generator {
	return &sequencer{
		log:      p.Log.Named("numbering"),
		genID:    p.GenID,
		settings: p.Settings,
	}
}

// Next advances the sequence with a compare-and-set on last_value and
// formats the result. Callers pass their transaction handle so the number is
// only consumed when the document is stored.
func (s *sequencer) Next(ctx context.Context, db *gorm.DB, companyID snowflake.ID, docType string, issuedAt time.Time) (string, error) {
	template := s.settings.Get().NumberTemplate(docType)
	if template == "" {
		return "", fmt.Errorf("no number template for %q", docType)
	}
	period := PeriodKey(template, issuedAt)

	for attempt := 0; attempt < maxAttempts; attempt++ {
		seq, err := s.advance(ctx, db, companyID, docType, period)
		if errors.Is(err, ErrSequenceContention) {
			s.log.Debug("sequence contention, retrying",
				zap.String("doc_type", docType),
				zap.Int("attempt", attempt+1),
			)
			continue
		}
		if err != nil {
			return "", err
		}
		return Format(template, issuedAt, seq)
	}
	return "", ErrSequenceContention
}

func (s *sequencer) advance(ctx context.Context, db *gorm.DB, companyID snowflake.ID, docType, period string) (int64, error) {
	row := DocumentSequence{
		ID:        s.genID.Generate(),
		CompanyID: companyID,
		DocType:   docType,
		Period:    period,
		UpdatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error; err != nil {
		return 0, err
	}

	var current DocumentSequence
	if err := db.WithContext(ctx).
		Where("company_id = ? AND doc_type = ? AND period = ?", companyID, docType, period).
		Take(&current).Error; err != nil {
		return 0, err
	}

	next := current.LastValue + 1
	res := db.WithContext(ctx).
		Model(&DocumentSequence{}).
		Where("id = ? AND last_value = ?", current.ID, current.LastValue).
		Updates(map[string]any{"last_value": next, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrSequenceContention
	}
	return next, nil
}
