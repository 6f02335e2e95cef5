package tracking

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/xnapps/purchase-tracking/pkg/db"
	"github.com/xnapps/purchase-tracking/pkg/db/models"
	pkgerrors "github.com/xnapps/purchase-tracking/pkg/errors"
)

func TestServiceAddThenGet(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	header := sampleHeader("S001", 0)
	lines := []Line{
		{Order: 1, Description: "Called supplier", Status: "Pending", StatusAt: statusAt(2)},
		{Order: 2},
	}
	saved, err := h.svc.TryAdd(ctx, header, lines)
	require.NoError(t, err)
	assert.Positive(t, saved.ID)
	assert.Equal(t, int64(1), saved.DisplayNumber)

	doc, err := h.svc.TryGet(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "S001", doc.Header.CounterpartyCode)
	require.Len(t, doc.Lines, 1, "trailing blank line is never persisted")
	assert.Equal(t, 1, doc.Lines[0].Order)
	assert.Equal(t, "Pending", doc.Lines[0].Status)
	assert.NotNil(t, doc.Lines[0].StatusAt)

	second, err := h.svc.TryAdd(ctx, sampleHeader("S001", 0), lines)
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.DisplayNumber)
}

func TestServiceAddKeepsProvidedDisplayNumber(t *testing.T) {
	h := newHarness(t)
	header := sampleHeader("S001", 0)
	header.DisplayNumber = 100
	saved := mustAdd(t, h, header, oneLine)
	assert.Equal(t, int64(100), saved.DisplayNumber)
}

func TestServiceAddRejectsMissingCounterparty(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.TryAdd(context.Background(), sampleHeader("", 0), []Line{oneLine})
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Contains(t, typed.Message(), "counterparty")
	assert.Zero(t, h.countRows(t, &models.TrackingDocument{}))
}

func TestServiceAddRejectsDescriptionWithoutStatus(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.TryAdd(context.Background(), sampleHeader("S001", 0), []Line{{Order: 1, Description: "Called supplier"}})
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
	assert.Zero(t, h.countRows(t, &models.TrackingDocument{}))
}

func TestServiceAddConflictOnSameSourceOrder(t *testing.T) {
	h := newHarness(t)
	mustAdd(t, h, sampleHeader("S001", 42), oneLine)

	_, err := h.svc.TryAdd(context.Background(), sampleHeader("S001", 42), []Line{oneLine})
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeConflict))
	assert.Equal(t, int64(1), h.countRows(t, &models.TrackingDocument{}))
}

func TestServiceUpdateReplacesLines(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	saved := mustAdd(t, h, sampleHeader("S001", 0),
		Line{Order: 1, Description: "one", Status: "0"},
		Line{Order: 2, Description: "two", Status: "0"},
	)

	saved.ExternalReference = "REF-NEW"
	err := h.svc.TryUpdate(ctx, saved, []Line{
		{Order: 1, Description: "only", Status: "1"},
		{Order: 2},
	})
	require.NoError(t, err)

	lines, err := h.query.Lines(ctx, saved.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "only", lines[0].Description)

	header, err := h.query.Header(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "REF-NEW", header.ExternalReference)
}

func TestServiceUpdateErrors(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	err := h.svc.TryUpdate(ctx, sampleHeader("S001", 0), []Line{oneLine})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation), "id is required")

	missing := sampleHeader("S001", 0)
	missing.ID = 77
	err = h.svc.TryUpdate(ctx, missing, []Line{oneLine})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))

	saved := mustAdd(t, h, sampleHeader("S001", 0), oneLine)
	err = h.svc.TryUpdate(ctx, saved, []Line{{Order: 1}})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))

	lines, err := h.query.Lines(ctx, saved.ID)
	require.NoError(t, err)
	assert.Len(t, lines, 1, "rejected update leaves stored lines untouched")
}

func TestServiceGetAndDelete(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	saved := mustAdd(t, h, sampleHeader("S001", 0), oneLine)

	require.NoError(t, h.svc.TryDelete(ctx, saved.ID))

	_, err := h.svc.TryGet(ctx, saved.ID)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))

	err = h.svc.TryDelete(ctx, saved.ID)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))

	_, err = h.svc.TryGet(ctx, 0)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
	assert.True(t, pkgerrors.Is(h.svc.TryDelete(ctx, -1), pkgerrors.CodeValidation))
}

func TestServiceNeverLeaksUntypedErrors(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	svc, err := NewService(db.NewFromGorm(h.db), &stubRepo{err: errors.New("socket closed")}, h.numbering, nil, nil)
	require.NoError(t, err)
	err = svc.TryDelete(ctx, 1)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInternal, typed.Code())
	assert.Equal(t, "tracking delete failed", typed.Message())

	svc, err = NewService(db.NewFromGorm(h.db), &stubRepo{panicWith: "nil map"}, h.numbering, nil, nil)
	require.NoError(t, err)
	_, err = svc.TryGet(ctx, 1)
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeInternal))
}

func TestServiceLogsFailures(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.TryGet(context.Background(), 12345)
	require.Error(t, err)
	logs := h.logs.String()
	assert.True(t, strings.Contains(logs, "tracking get rejected"), logs)
	assert.Contains(t, logs, `"error_code":"NOT_FOUND"`)
}

func TestNewServiceRequiresCollaborators(t *testing.T) {
	h := newHarness(t)
	tx := db.NewFromGorm(h.db)
	_, err := NewService(nil, h.repo, h.numbering, nil, nil)
	require.Error(t, err)
	_, err = NewService(tx, nil, h.numbering, nil, nil)
	require.Error(t, err)
	_, err = NewService(tx, h.repo, nil, nil, nil)
	require.Error(t, err)
}

type stubRepo struct {
	err       error
	panicWith string
}

func (s *stubRepo) WithTx(*gorm.DB) Repository { return s }

func (s *stubRepo) Create(context.Context, Header, []Line) (int64, error) {
	return 0, s.fail()
}

func (s *stubRepo) Replace(context.Context, Header, []Line) error { return s.fail() }

func (s *stubRepo) Delete(context.Context, int64) error { return s.fail() }

func (s *stubRepo) FindByID(context.Context, int64) (*Document, error) {
	return nil, s.fail()
}

func (s *stubRepo) fail() error {
	if s.panicWith != "" {
		panic(s.panicWith)
	}
	return s.err
}
