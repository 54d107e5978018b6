package numbering

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/crm/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestFormat(t *testing.T) {
	issued := time.Date(2025, 3, 7, 10, 0, 0, 0, time.UTC)
	cases := []struct {
		template string
		seq      int64
		want     string
	}{
		{"QTN-{YYYY}-{SEQ3}", 1, "QTN-2025-001"},
		{"COMP-{YYYY}-{SEQ4}", 42, "COMP-2025-0042"},
		{"INV{YY}{MM}{DD}-{SEQ}", 7, "INV250307-7"},
		{"SO-{SEQ2}", 123, "SO-123"},
	}
	for _, tc := range cases {
		t.Run(tc.template, func(t *testing.T) {
			got, err := Format(tc.template, issued, tc.seq)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := Format("", issued, 1)
	assert.Error(t, err)
	_, err = Format("X-{SEQ}", issued, 0)
	assert.Error(t, err)
	_, err = Format("X-{NOPE}-{SEQ}", issued, 1)
	assert.Error(t, err)
}

func TestPeriodKey(t *testing.T) {
	issued := time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025", PeriodKey("QTN-{YYYY}-{SEQ3}", issued))
	assert.Equal(t, "all", PeriodKey("SO-{SEQ4}", issued))
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:numbering?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&DocumentSequence{}))
	require.NoError(t, db.Exec("DELETE FROM document_sequences").Error)
	return db
}

func TestNextIsSequentialPerCompanyAndType(t *testing.T) {
	db := setupDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	gen := New(Params{
		Log:      zap.NewNop(),
		GenID:    node,
		Settings: config.NewStaticSettings(config.DefaultSettings()),
	})

	ctx := context.Background()
	issued := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	first, err := gen.Next(ctx, db, 10, DocQuotation, issued)
	require.NoError(t, err)
	second, err := gen.Next(ctx, db, 10, DocQuotation, issued)
	require.NoError(t, err)
	other, err := gen.Next(ctx, db, 20, DocQuotation, issued)
	require.NoError(t, err)
	complaint, err := gen.Next(ctx, db, 10, DocComplaint, issued)
	require.NoError(t, err)
	nextYear, err := gen.Next(ctx, db, 10, DocQuotation, issued.AddDate(1, 0, 0))
	require.NoError(t, err)

	assert.Equal(t, "QTN-2025-001", first)
	assert.Equal(t, "QTN-2025-002", second)
	assert.Equal(t, "QTN-2025-001", other)
	assert.Equal(t, "COMP-2025-0001", complaint)
	assert.Equal(t, "QTN-2026-001", nextYear)
}

func TestNextWithinRolledBackTransaction(t *testing.T) {
	db := setupDB(t)
	node, _ := snowflake.NewNode(1)
	gen := New(Params{Log: zap.NewNop(), GenID: node, Settings: config.NewStaticSettings(config.DefaultSettings())})
	issued := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	_ = db.Transaction(func(tx *gorm.DB) error {
		_, err := gen.Next(context.Background(), tx, 1, DocInvoice, issued)
		require.NoError(t, err)
		return assert.AnError
	})

	number, err := gen.Next(context.Background(), db, 1, DocInvoice, issued)
	require.NoError(t, err)
	assert.Equal(t, "INV-2025-001", number)
}
