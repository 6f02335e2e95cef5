package tracking

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/xnapps/purchase-tracking/internal/repo"
	"github.com/xnapps/purchase-tracking/pkg/db/models"
	"github.com/xnapps/purchase-tracking/pkg/enums"
	pkgerrors "github.com/xnapps/purchase-tracking/pkg/errors"
	"github.com/xnapps/purchase-tracking/pkg/pagination"
)

// FallbackLineStatuses is served when the status catalogue is empty or unreadable.
var FallbackLineStatuses = []LineStatus{
	{Code: "0", Name: "Pending"},
	{Code: "1", Name: "Finished"},
	{Code: "2", Name: "On hold"},
}

type queryService struct {
	repo.Base
}

// NewQueryService builds the read-only lookups over the provided DB.
func NewQueryService(conn *gorm.DB) QueryService {
	return &queryService{Base: repo.NewBase(conn)}
}

func (q *queryService) Header(ctx context.Context, id int64) (*Header, error) {
	var doc models.TrackingDocument
	if err := q.DB(ctx).Where("id = ?", id).First(&doc).Error; err != nil {
		return nil, storeError(err, fmt.Sprintf("load tracking header (id=%d)", id))
	}
	header := headerFromModel(doc)
	return &header, nil
}

func (q *queryService) Lines(ctx context.Context, id int64) ([]Line, error) {
	var rows []models.TrackingLine
	err := q.DB(ctx).
		Where("tracking_id = ?", id).
		Order("line_order ASC").
		Find(&rows).Error
	if err != nil {
		return nil, storeError(err, fmt.Sprintf("load tracking lines (id=%d)", id))
	}
	return linesFromModels(rows), nil
}

func (q *queryService) Document(ctx context.Context, id int64) (*Document, error) {
	header, err := q.Header(ctx, id)
	if err != nil {
		return nil, err
	}
	lines, err := q.Lines(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Document{Header: *header, Lines: lines}, nil
}

func (q *queryService) FindBySourceOrder(ctx context.Context, sourceOrderID int64) (int64, error) {
	if sourceOrderID <= 0 {
		return 0, nil
	}
	return q.firstID(ctx, "source_order_id = ?", sourceOrderID,
		fmt.Sprintf("find tracking document by source order (source_order=%d)", sourceOrderID))
}

func (q *queryService) FindByDisplayNumber(ctx context.Context, displayNumber int64) (int64, error) {
	if displayNumber <= 0 {
		return 0, nil
	}
	return q.firstID(ctx, "display_number = ?", displayNumber,
		fmt.Sprintf("find tracking document by number (display_number=%d)", displayNumber))
}

func (q *queryService) firstID(ctx context.Context, cond string, arg any, op string) (int64, error) {
	var ids []int64
	err := q.DB(ctx).
		Model(&models.TrackingDocument{}).
		Where(cond, arg).
		Order("id ASC").
		Limit(1).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, storeError(err, op)
	}
	if len(ids) == 0 {
		return 0, nil
	}
	return ids[0], nil
}

func (q *queryService) FindByCounterparty(ctx context.Context, code string) ([]Header, error) {
	var docs []models.TrackingDocument
	err := q.DB(ctx).
		Where("counterparty_code = ?", strings.TrimSpace(code)).
		Order("id DESC").
		Find(&docs).Error
	if err != nil {
		return nil, storeError(err, fmt.Sprintf("find tracking documents (counterparty=%s)", code))
	}
	return headersFromModels(docs), nil
}

func (q *queryService) PageByCounterparty(ctx context.Context, code string, params pagination.Params) (*HeaderPage, error) {
	code = strings.TrimSpace(code)
	cursor, err := pagination.ParseCursorFor(params.Cursor, code)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	query := q.DB(ctx).Model(&models.TrackingDocument{})
	if code != "" {
		query = query.Where("counterparty_code = ?", code)
	}
	if cursor != nil {
		query = query.Where("id < ?", cursor.ID)
	}

	var docs []models.TrackingDocument
	if err := query.Order("id DESC").Limit(pagination.LimitWithBuffer(limit)).Find(&docs).Error; err != nil {
		return nil, storeError(err, fmt.Sprintf("page tracking documents (counterparty=%s)", code))
	}

	page := &HeaderPage{}
	if len(docs) > limit {
		docs = docs[:limit]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{ID: docs[len(docs)-1].ID, Counterparty: code})
	}
	page.Headers = headersFromModels(docs)
	return page, nil
}

func (q *queryService) OpenSourceOrders(ctx context.Context, counterpartyCode string) ([]SourceOrder, error) {
	var orders []models.PurchaseOrder
	err := q.DB(ctx).
		Where("counterparty_code = ? AND doc_status = ?", strings.TrimSpace(counterpartyCode), enums.PurchaseOrderStatusOpen).
		Order("doc_date DESC").
		Order("id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, storeError(err, fmt.Sprintf("list open source orders (counterparty=%s)", counterpartyCode))
	}
	out := make([]SourceOrder, 0, len(orders))
	for _, order := range orders {
		out = append(out, sourceOrderFromModel(order))
	}
	return out, nil
}

func (q *queryService) SourceOrder(ctx context.Context, id int64) (*SourceOrder, error) {
	var order models.PurchaseOrder
	if err := q.DB(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, storeError(err, fmt.Sprintf("load source order (id=%d)", id))
	}
	out := sourceOrderFromModel(order)
	return &out, nil
}

// LineStatuses never fails: an unreadable or empty catalogue yields the fallback set.
func (q *queryService) LineStatuses(ctx context.Context) ([]LineStatus, error) {
	var rows []models.LineStatus
	if err := q.DB(ctx).Order("code ASC").Find(&rows).Error; err != nil || len(rows) == 0 {
		return fallbackStatuses(), nil
	}
	out := make([]LineStatus, 0, len(rows))
	for _, row := range rows {
		out = append(out, LineStatus{Code: row.Code, Name: row.Name})
	}
	return out, nil
}

func fallbackStatuses() []LineStatus {
	out := make([]LineStatus, len(FallbackLineStatuses))
	copy(out, FallbackLineStatuses)
	return out
}

func headersFromModels(docs []models.TrackingDocument) []Header {
	out := make([]Header, 0, len(docs))
	for _, doc := range docs {
		out = append(out, headerFromModel(doc))
	}
	return out
}
