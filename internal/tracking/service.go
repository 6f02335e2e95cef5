package tracking

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	pkgerrors "github.com/xnapps/purchase-tracking/pkg/errors"
	"github.com/xnapps/purchase-tracking/pkg/logger"
	"github.com/xnapps/purchase-tracking/pkg/metrics"
)

const (
	opAdd    = "add"
	opUpdate = "update"
	opGet    = "get"
	opDelete = "delete"
)

type service struct {
	tx        txRunner
	repo      Repository
	numbering NumberingService
	metrics   *metrics.TrackingMetrics
	logg      *logger.Logger
}

// NewService wires the application boundary. metrics and logg may be nil.
func NewService(
	tx txRunner,
	repo Repository,
	numbering NumberingService,
	m *metrics.TrackingMetrics,
	logg *logger.Logger,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("tracking repository required")
	}
	if numbering == nil {
		return nil, fmt.Errorf("numbering service required")
	}
	return &service{
		tx:        tx,
		repo:      repo,
		numbering: numbering,
		metrics:   m,
		logg:      logg,
	}, nil
}

// TryAdd validates and persists a new document. The returned header carries the store
// id and the display number; a display number already set on the input is kept.
func (s *service) TryAdd(ctx context.Context, header Header, lines []Line) (Header, error) {
	var saved Header
	err := s.run(ctx, opAdd, 0, func(ctx context.Context) error {
		lines = MeaningfulLines(lines)
		if err := Validate(header, lines); err != nil {
			return err
		}
		candidate := header
		return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			if candidate.DisplayNumber <= 0 {
				next, err := s.numbering.WithTx(tx).NextDisplayNumber(ctx)
				if err != nil {
					return err
				}
				candidate.DisplayNumber = next
			}
			id, err := s.repo.WithTx(tx).Create(ctx, candidate, lines)
			if err != nil {
				return err
			}
			candidate.ID = id
			saved = candidate
			return nil
		})
	})
	if err != nil {
		return Header{}, err
	}
	return saved, nil
}

// TryUpdate overwrites the header of an existing document and replaces all of its lines.
func (s *service) TryUpdate(ctx context.Context, header Header, lines []Line) error {
	return s.run(ctx, opUpdate, header.ID, func(ctx context.Context) error {
		if header.ID <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "document id is required").
				WithDetails(map[string]any{"field": "id"})
		}
		lines = MeaningfulLines(lines)
		if err := Validate(header, lines); err != nil {
			return err
		}
		return s.repo.Replace(ctx, header, lines)
	})
}

func (s *service) TryGet(ctx context.Context, id int64) (*Document, error) {
	var doc *Document
	err := s.run(ctx, opGet, id, func(ctx context.Context) error {
		if err := requireID(id); err != nil {
			return err
		}
		found, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		doc = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *service) TryDelete(ctx context.Context, id int64) error {
	return s.run(ctx, opDelete, id, func(ctx context.Context) error {
		if err := requireID(id); err != nil {
			return err
		}
		return s.repo.Delete(ctx, id)
	})
}

// run executes fn and guarantees a typed error: panics become internal errors and
// untyped failures are normalized. Every call is counted and timed.
func (s *service) run(ctx context.Context, op string, id int64, fn func(ctx context.Context) error) (err error) {
	if s.logg != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{"operation": op, "tracking_id": id})
	}
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			err = pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("tracking %s failed unexpectedly", op)).
				WithDetails(map[string]any{"panic": fmt.Sprint(r)})
		}
		outcome := ""
		if err != nil {
			typed := pkgerrors.Normalize(err, pkgerrors.CodeInternal, fmt.Sprintf("tracking %s failed", op))
			err = typed
			outcome = string(typed.Code())
			s.report(ctx, op, typed)
		}
		s.metrics.Observe(op, outcome, time.Since(start))
	}()

	return fn(ctx)
}

func (s *service) report(ctx context.Context, op string, err *pkgerrors.Error) {
	if s.logg == nil {
		return
	}
	ctx = s.logg.WithFields(ctx, pkgerrors.Dump(err).Fields())
	switch err.Code() {
	case pkgerrors.CodeValidation, pkgerrors.CodeNotFound:
		s.logg.Info(ctx, "tracking "+op+" rejected")
	case pkgerrors.CodeConflict:
		s.logg.Warn(ctx, "tracking "+op+" conflict")
	default:
		s.logg.Error(ctx, "tracking "+op+" failed", err)
	}
}

func requireID(id int64) error {
	if id <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "document id is required").
			WithDetails(map[string]any{"field": "id"})
	}
	return nil
}
