package tracking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xnapps/purchase-tracking/pkg/db/models"
	"github.com/xnapps/purchase-tracking/pkg/enums"
	pkgerrors "github.com/xnapps/purchase-tracking/pkg/errors"
	"github.com/xnapps/purchase-tracking/pkg/pagination"
)

var oneLine = Line{Order: 1, Description: "Called supplier", Status: "0"}

func TestFindBySourceOrder(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.seedPurchaseOrder(t, models.PurchaseOrder{ID: 10, DocNumber: 1010, CounterpartyCode: "S001", DocDate: testNow, DocStatus: enums.PurchaseOrderStatusOpen})
	h.seedPurchaseOrder(t, models.PurchaseOrder{ID: 11, DocNumber: 1011, CounterpartyCode: "S001", DocDate: testNow, DocStatus: enums.PurchaseOrderStatusOpen})

	saved := mustAdd(t, h, sampleHeader("S001", 10), oneLine)

	id, err := h.query.FindBySourceOrder(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, id)

	id, err = h.query.FindBySourceOrder(ctx, 11)
	require.NoError(t, err)
	assert.Zero(t, id)

	id, err = h.query.FindBySourceOrder(ctx, 0)
	require.NoError(t, err)
	assert.Zero(t, id, "source order 0 means none and never matches")
}

func TestFindByDisplayNumber(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	saved := mustAdd(t, h, sampleHeader("S001", 0), oneLine)

	id, err := h.query.FindByDisplayNumber(ctx, saved.DisplayNumber)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, id)

	id, err = h.query.FindByDisplayNumber(ctx, saved.DisplayNumber+1)
	require.NoError(t, err)
	assert.Zero(t, id)
}

func TestDocumentHeaderAndLines(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	saved := mustAdd(t, h, sampleHeader("S001", 0),
		Line{Order: 2, Description: "second", Status: "1"},
		Line{Order: 1, Description: "first", Status: "0"},
	)

	doc, err := h.query.Document(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, doc.Header.ID)
	require.Len(t, doc.Lines, 2)
	assert.Equal(t, "first", doc.Lines[0].Description)
	assert.Equal(t, "second", doc.Lines[1].Description)

	_, err = h.query.Document(ctx, saved.ID+100)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))

	lines, err := h.query.Lines(ctx, saved.ID+100)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestFindByCounterpartyAndPaging(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	var ids []int64
	for i := 0; i < 3; i++ {
		ids = append(ids, mustAdd(t, h, sampleHeader("S001", 0), oneLine).ID)
	}
	mustAdd(t, h, sampleHeader("S002", 0), oneLine)

	headers, err := h.query.FindByCounterparty(ctx, "S001")
	require.NoError(t, err)
	require.Len(t, headers, 3)
	assert.Equal(t, ids[2], headers[0].ID, "newest first")
	assert.Equal(t, ids[0], headers[2].ID)

	page, err := h.query.PageByCounterparty(ctx, "S001", pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Headers, 2)
	require.NotEmpty(t, page.NextCursor)
	assert.Equal(t, ids[2], page.Headers[0].ID)

	_, err = h.query.PageByCounterparty(ctx, "S002", pagination.Params{Limit: 2, Cursor: page.NextCursor})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation), "cursor is bound to its counterparty")

	page, err = h.query.PageByCounterparty(ctx, " S001 ", pagination.Params{Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, page.Headers, 1)
	assert.Equal(t, ids[0], page.Headers[0].ID)
	assert.Empty(t, page.NextCursor)

	all, err := h.query.PageByCounterparty(ctx, "", pagination.Params{})
	require.NoError(t, err)
	assert.Len(t, all.Headers, 4)

	_, err = h.query.PageByCounterparty(ctx, "S001", pagination.Params{Cursor: "not-a-cursor"})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}

func TestOpenSourceOrders(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	day := func(d int) time.Time { return time.Date(2026, 2, d, 0, 0, 0, 0, time.UTC) }

	h.seedPurchaseOrder(t, models.PurchaseOrder{ID: 1, DocNumber: 501, CounterpartyCode: "S001", DocDate: day(1), DocStatus: enums.PurchaseOrderStatusOpen})
	h.seedPurchaseOrder(t, models.PurchaseOrder{ID: 2, DocNumber: 502, CounterpartyCode: "S001", DocDate: day(3), DocStatus: enums.PurchaseOrderStatusOpen, ExternalReference: "PO-2"})
	h.seedPurchaseOrder(t, models.PurchaseOrder{ID: 3, DocNumber: 503, CounterpartyCode: "S001", DocDate: day(5), DocStatus: enums.PurchaseOrderStatusClosed})
	h.seedPurchaseOrder(t, models.PurchaseOrder{ID: 4, DocNumber: 504, CounterpartyCode: "S002", DocDate: day(4), DocStatus: enums.PurchaseOrderStatusOpen})

	orders, err := h.query.OpenSourceOrders(ctx, "S001")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, int64(2), orders[0].ID, "newest first")
	assert.Equal(t, int64(502), orders[0].Number)
	assert.Equal(t, "PO-2", orders[0].ExternalReference)
	assert.True(t, day(3).Equal(orders[0].Date))
	assert.Equal(t, int64(1), orders[1].ID)

	order, err := h.query.SourceOrder(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, enums.PurchaseOrderStatusClosed, order.Status)

	_, err = h.query.SourceOrder(ctx, 99)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))
}

func TestLineStatuses(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	statuses, err := h.query.LineStatuses(ctx)
	require.NoError(t, err)
	assert.Equal(t, FallbackLineStatuses, statuses, "empty catalogue falls back")

	require.NoError(t, h.db.Create(&[]models.LineStatus{{Code: "B", Name: "Booked"}, {Code: "A", Name: "Asked"}}).Error)
	statuses, err = h.query.LineStatuses(ctx)
	require.NoError(t, err)
	assert.Equal(t, []LineStatus{{Code: "A", Name: "Asked"}, {Code: "B", Name: "Booked"}}, statuses)

	require.NoError(t, h.db.Migrator().DropTable(&models.LineStatus{}))
	statuses, err = h.query.LineStatuses(ctx)
	require.NoError(t, err)
	assert.Equal(t, FallbackLineStatuses, statuses, "unreadable catalogue falls back")
}
