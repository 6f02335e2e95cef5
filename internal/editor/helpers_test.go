package editor

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/xnapps/purchase-tracking/internal/tracking"
	"github.com/xnapps/purchase-tracking/pkg/clock"
	"github.com/xnapps/purchase-tracking/pkg/config"
	"github.com/xnapps/purchase-tracking/pkg/db"
	"github.com/xnapps/purchase-tracking/pkg/db/models"
	"github.com/xnapps/purchase-tracking/pkg/enums"
)

var testNow = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

type fakeSurface struct {
	frozen    bool
	freezes   int
	closed    bool
	snapshots []Snapshot
	notices   []Notice
}

func (s *fakeSurface) Freeze(frozen bool) {
	s.frozen = frozen
	if frozen {
		s.freezes++
	}
}

func (s *fakeSurface) Refresh(snapshot Snapshot) {
	s.snapshots = append(s.snapshots, snapshot)
}

func (s *fakeSurface) Notify(notice Notice) {
	s.notices = append(s.notices, notice)
}

func (s *fakeSurface) Close() {
	s.closed = true
}

func (s *fakeSurface) lastSnapshot() Snapshot {
	if len(s.snapshots) == 0 {
		return Snapshot{}
	}
	return s.snapshots[len(s.snapshots)-1]
}

func (s *fakeSurface) lastNotice() Notice {
	if len(s.notices) == 0 {
		return Notice{}
	}
	return s.notices[len(s.notices)-1]
}

type fakePrompter struct {
	choice CloseChoice
	asked  []Mode
}

func (p *fakePrompter) ConfirmClose(mode Mode) CloseChoice {
	p.asked = append(p.asked, mode)
	return p.choice
}

type recordingLog struct {
	lines []string
}

func (l *recordingLog) Log(msg string) {
	l.lines = append(l.lines, msg)
}

// brokenDocumentQuery fails every document load and delegates the rest.
type brokenDocumentQuery struct {
	tracking.QueryService
}

func (brokenDocumentQuery) Document(context.Context, int64) (*tracking.Document, error) {
	return nil, errors.New("connection reset")
}

type harness struct {
	conn     *gorm.DB
	clock    *clock.Fixed
	svc      tracking.Service
	query    tracking.QueryService
	surface  *fakeSurface
	prompter *fakePrompter
	diag     *recordingLog
	editor   *Editor
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

type harnessOption func(*Deps)

func withQuery(q tracking.QueryService) harnessOption {
	return func(d *Deps) { d.Query = q }
}

func withDefaultSaveAction(a enums.SaveAction) harnessOption {
	return func(d *Deps) { d.DefaultSaveAction = a }
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()
	conn := newTestDB(t)
	clk := clock.NewFixed(testNow)
	numbering, err := tracking.NewNumberingService(config.NumberingConfig{Strategy: config.NumberingMax}, conn, nil)
	require.NoError(t, err)
	svc, err := tracking.NewService(db.NewFromGorm(conn), tracking.NewRepository(conn, clk), numbering, nil, nil)
	require.NoError(t, err)

	h := &harness{
		conn:     conn,
		clock:    clk,
		svc:      svc,
		query:    tracking.NewQueryService(conn),
		surface:  &fakeSurface{},
		prompter: &fakePrompter{},
		diag:     &recordingLog{},
	}
	deps := Deps{
		Service:   svc,
		Query:     h.query,
		Numbering: numbering,
		Surface:   h.surface,
		Prompter:  h.prompter,
		Log:       h.diag,
		Clock:     clk,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	h.editor, err = New(context.Background(), deps)
	require.NoError(t, err)
	return h
}

func (h *harness) countDocuments(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, h.conn.Model(&models.TrackingDocument{}).Count(&n).Error)
	return n
}

// fill types a counterparty and one described line into the editor.
func (h *harness) fill(t *testing.T, code string, descriptions ...string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, h.editor.SetField(ctx, FieldCounterpartyCode, code))
	require.NoError(t, h.editor.SetField(ctx, FieldCounterpartyName, "Supplier "+code))
	for i, desc := range descriptions {
		require.NoError(t, h.editor.SetCell(ctx, i, ColumnDescription, desc))
		require.NoError(t, h.editor.SetCell(ctx, i, ColumnStatus, "0"))
	}
}

func (h *harness) seedDocument(t *testing.T, code string, sourceOrderID int64) tracking.Header {
	t.Helper()
	saved, err := h.svc.TryAdd(context.Background(), tracking.Header{
		CounterpartyCode:  code,
		CounterpartyName:  "Supplier " + code,
		DocumentDate:      testNow,
		Status:            enums.DocumentStatusOpen,
		SourceOrderID:     sourceOrderID,
		SourceOrderNumber: sourceOrderID + 1000,
	}, []tracking.Line{{Order: 1, Description: "Order placed", Status: "0"}})
	require.NoError(t, err)
	return saved
}
