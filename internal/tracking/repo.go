package tracking

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"github.com/xnapps/purchase-tracking/internal/repo"
	"github.com/xnapps/purchase-tracking/pkg/clock"
	"github.com/xnapps/purchase-tracking/pkg/db"
	"github.com/xnapps/purchase-tracking/pkg/db/models"
	pkgerrors "github.com/xnapps/purchase-tracking/pkg/errors"
)

const sourceOrderConstraint = "ux_tracking_documents_source_order"

// headerColumns are overwritten by Replace. id and display_number never change.
var headerColumns = []string{
	"counterparty_code",
	"counterparty_name",
	"external_reference",
	"document_date",
	"status",
	"source_order_id",
	"source_order_number",
	"updated_at",
}

type repository struct {
	repo.Base
	clock clock.Clock
}

// NewRepository builds a tracking repository bound to the provided DB. A nil clock
// falls back to the system clock.
func NewRepository(conn *gorm.DB, clk clock.Clock) Repository {
	return &repository{Base: repo.NewBase(conn), clock: clock.OrSystem(clk)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil || r.Bound(tx) {
		return r
	}
	return &repository{Base: r.Rebind(tx), clock: r.clock}
}

func (r *repository) Create(ctx context.Context, header Header, lines []Line) (int64, error) {
	doc := headerToModel(header)
	doc.ID = 0
	now := r.clock.Now()
	if doc.DocumentDate.IsZero() {
		doc.DocumentDate = now
	}

	err := r.DB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines").Create(&doc).Error; err != nil {
			return err
		}
		rows := lineRows(doc.ID, sortedByOrder(lines), now)
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return 0, storeError(err, fmt.Sprintf("create tracking document (counterparty=%s source_order=%d)",
			header.CounterpartyCode, header.SourceOrderID))
	}
	return doc.ID, nil
}

func (r *repository) Replace(ctx context.Context, header Header, lines []Line) error {
	op := fmt.Sprintf("update tracking document (id=%d counterparty=%s)", header.ID, header.CounterpartyCode)
	now := r.clock.Now()

	err := r.DB(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.TrackingDocument
		if err := tx.Where("id = ?", header.ID).First(&existing).Error; err != nil {
			return err
		}

		updated := headerToModel(header)
		updated.ID = existing.ID
		updated.DisplayNumber = existing.DisplayNumber
		if updated.DocumentDate.IsZero() {
			updated.DocumentDate = existing.DocumentDate
		}
		updated.UpdatedAt = now
		if err := tx.Model(&existing).Select(headerColumns).Updates(&updated).Error; err != nil {
			return err
		}

		if err := tx.Where("tracking_id = ?", existing.ID).Delete(&models.TrackingLine{}).Error; err != nil {
			return err
		}
		rows := lineRows(existing.ID, sortedByOrder(lines), now)
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return storeError(err, op)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	op := fmt.Sprintf("delete tracking document (id=%d)", id)
	err := r.DB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tracking_id = ?", id).Delete(&models.TrackingLine{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.TrackingDocument{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return storeError(err, op)
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, id int64) (*Document, error) {
	var doc models.TrackingDocument
	err := r.DB(ctx).
		Preload("Lines", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("line_order ASC")
		}).
		Where("id = ?", id).
		First(&doc).Error
	if err != nil {
		return nil, storeError(err, fmt.Sprintf("load tracking document (id=%d)", id))
	}
	return &Document{Header: headerFromModel(doc), Lines: linesFromModels(doc.Lines)}, nil
}

// storeError maps driver failures onto the error taxonomy. The operation string carries
// the key fields; the driver error stays in the chain for diagnostics only.
func storeError(err error, op string) error {
	switch {
	case pkgerrors.As(err) != nil:
		return err
	case db.IsNotFound(err):
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, op+": not found")
	case db.IsUniqueViolation(err, sourceOrderConstraint), db.IsUniqueViolation(err, "tracking_documents.source_order_id"):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, op+": source order already has a tracking document")
	case db.IsUniqueViolation(err, ""):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, op+": duplicate key")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
	}
}

func sortedByOrder(lines []Line) []Line {
	out := make([]Line, len(lines))
	copy(out, lines)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}
