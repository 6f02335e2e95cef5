package tracking

import (
	"context"

	"gorm.io/gorm"

	"github.com/xnapps/purchase-tracking/pkg/pagination"
)

// Repository writes tracking documents. Create, Replace and Delete are atomic: header
// and lines are committed together or not at all.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, header Header, lines []Line) (int64, error)
	Replace(ctx context.Context, header Header, lines []Line) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*Document, error)
}

// QueryService holds the read-only lookups used by the editor and the HTTP API.
type QueryService interface {
	Header(ctx context.Context, id int64) (*Header, error)
	Lines(ctx context.Context, id int64) ([]Line, error)
	Document(ctx context.Context, id int64) (*Document, error)
	// FindBySourceOrder returns the id of the document following the source order, or 0.
	FindBySourceOrder(ctx context.Context, sourceOrderID int64) (int64, error)
	// FindByDisplayNumber returns the id of the document with that number, or 0.
	FindByDisplayNumber(ctx context.Context, displayNumber int64) (int64, error)
	FindByCounterparty(ctx context.Context, code string) ([]Header, error)
	PageByCounterparty(ctx context.Context, code string, params pagination.Params) (*HeaderPage, error)
	OpenSourceOrders(ctx context.Context, counterpartyCode string) ([]SourceOrder, error)
	SourceOrder(ctx context.Context, id int64) (*SourceOrder, error)
	LineStatuses(ctx context.Context) ([]LineStatus, error)
}

// NumberingService issues display numbers for new documents. PeekDisplayNumber previews
// the next number without consuming it.
type NumberingService interface {
	WithTx(tx *gorm.DB) NumberingService
	NextDisplayNumber(ctx context.Context) (int64, error)
	PeekDisplayNumber(ctx context.Context) (int64, error)
}

// Service is the application boundary. Every failure it returns is a *pkg/errors.Error.
type Service interface {
	TryAdd(ctx context.Context, header Header, lines []Line) (Header, error)
	TryUpdate(ctx context.Context, header Header, lines []Line) error
	TryGet(ctx context.Context, id int64) (*Document, error)
	TryDelete(ctx context.Context, id int64) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}
