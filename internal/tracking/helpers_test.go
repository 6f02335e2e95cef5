package tracking

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/xnapps/purchase-tracking/pkg/clock"
	"github.com/xnapps/purchase-tracking/pkg/config"
	"github.com/xnapps/purchase-tracking/pkg/db"
	"github.com/xnapps/purchase-tracking/pkg/db/models"
	"github.com/xnapps/purchase-tracking/pkg/enums"
	"github.com/xnapps/purchase-tracking/pkg/logger"
)

var testNow = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

type harness struct {
	db        *gorm.DB
	clock     *clock.Fixed
	repo      Repository
	query     QueryService
	numbering NumberingService
	svc       Service
	logs      *strings.Builder
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, conn.AutoMigrate(models.All()...))
	return conn
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	conn := newTestDB(t)
	clk := clock.NewFixed(testNow)
	numbering, err := NewNumberingService(config.NumberingConfig{Strategy: config.NumberingMax}, conn, nil)
	require.NoError(t, err)

	logs := &strings.Builder{}
	logg := logger.New(logger.Options{ServiceName: "tracking-test", Output: logs})
	repo := NewRepository(conn, clk)
	svc, err := NewService(db.NewFromGorm(conn), repo, numbering, nil, logg)
	require.NoError(t, err)

	return &harness{
		db:        conn,
		clock:     clk,
		repo:      repo,
		query:     NewQueryService(conn),
		numbering: numbering,
		svc:       svc,
		logs:      logs,
	}
}

func (h *harness) seedPurchaseOrder(t *testing.T, order models.PurchaseOrder) {
	t.Helper()
	require.NoError(t, h.db.Create(&order).Error)
}

func (h *harness) countRows(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, h.db.Model(model).Count(&n).Error)
	return n
}

func sampleHeader(code string, sourceOrderID int64) Header {
	return Header{
		CounterpartyCode:  code,
		CounterpartyName:  "Supplier " + code,
		ExternalReference: "REF-" + code,
		DocumentDate:      time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC),
		Status:            enums.DocumentStatusOpen,
		SourceOrderID:     sourceOrderID,
		SourceOrderNumber: sourceOrderID + 1000,
	}
}

func statusAt(minutes int) *time.Time {
	at := testNow.Add(time.Duration(minutes) * time.Minute)
	return &at
}

func mustAdd(t *testing.T, h *harness, header Header, lines ...Line) Header {
	t.Helper()
	saved, err := h.svc.TryAdd(context.Background(), header, lines)
	require.NoError(t, err)
	return saved
}
