package tracking

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/xnapps/purchase-tracking/pkg/config"
	"github.com/xnapps/purchase-tracking/pkg/db/models"
	pkgerrors "github.com/xnapps/purchase-tracking/pkg/errors"
	"github.com/xnapps/purchase-tracking/pkg/redis"
)

// CounterStore is the subset of pkg/redis used by the redis numbering strategy.
type CounterStore interface {
	Get(ctx context.Context, key string) (string, error)
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Incr(ctx context.Context, key string) (int64, error)
	DisplayNumberKey(sequence string) string
}

// NewNumberingService picks the strategy configured in cfg. The redis strategy needs a
// non-nil counter store.
func NewNumberingService(cfg config.NumberingConfig, conn *gorm.DB, counter CounterStore) (NumberingService, error) {
	maxSvc := &maxNumbering{db: conn}
	if !cfg.UsesRedis() {
		return maxSvc, nil
	}
	if counter == nil {
		return nil, fmt.Errorf("redis numbering requires a redis client")
	}
	return &redisNumbering{store: maxSvc, counter: counter, key: counter.DisplayNumberKey(cfg.CounterKey)}, nil
}

// maxNumbering hands out max(display_number)+1. Two editors creating at the same time can
// read the same maximum; the unique index on display_number rejects the second insert.
type maxNumbering struct {
	db *gorm.DB
}

func (m *maxNumbering) WithTx(tx *gorm.DB) NumberingService {
	if tx == nil {
		return m
	}
	return &maxNumbering{db: tx}
}

func (m *maxNumbering) NextDisplayNumber(ctx context.Context) (int64, error) {
	current, err := m.currentMax(ctx)
	if err != nil {
		return 0, err
	}
	return current + 1, nil
}

func (m *maxNumbering) PeekDisplayNumber(ctx context.Context) (int64, error) {
	return m.NextDisplayNumber(ctx)
}

func (m *maxNumbering) currentMax(ctx context.Context) (int64, error) {
	var current int64
	err := m.db.WithContext(ctx).
		Model(&models.TrackingDocument{}).
		Select("COALESCE(MAX(display_number), 0)").
		Scan(&current).Error
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read highest display number")
	}
	return current, nil
}

// redisNumbering advances an atomic counter seeded once from the store maximum.
type redisNumbering struct {
	store   *maxNumbering
	counter CounterStore
	key     string
}

func (r *redisNumbering) WithTx(tx *gorm.DB) NumberingService {
	if tx == nil {
		return r
	}
	return &redisNumbering{store: &maxNumbering{db: tx}, counter: r.counter, key: r.key}
}

func (r *redisNumbering) NextDisplayNumber(ctx context.Context) (int64, error) {
	if err := r.seed(ctx); err != nil {
		return 0, err
	}
	next, err := r.counter.Incr(ctx, r.key)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "advance display number counter")
	}
	return next, nil
}

func (r *redisNumbering) PeekDisplayNumber(ctx context.Context) (int64, error) {
	raw, err := r.counter.Get(ctx, r.key)
	switch {
	case errors.Is(err, redis.Nil):
		return r.store.NextDisplayNumber(ctx)
	case err != nil:
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read display number counter")
	}
	current, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "display number counter is not numeric")
	}
	return current + 1, nil
}

func (r *redisNumbering) seed(ctx context.Context) error {
	raw, err := r.counter.Get(ctx, r.key)
	switch {
	case err == nil:
		if _, convErr := strconv.ParseInt(raw, 10, 64); convErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, convErr, "display number counter is not numeric")
		}
		return nil
	case !errors.Is(err, redis.Nil):
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read display number counter")
	}

	current, err := r.store.currentMax(ctx)
	if err != nil {
		return err
	}
	// a concurrent seed may win; either value is the same store maximum
	if _, err := r.counter.SetNX(ctx, r.key, current, 0); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "seed display number counter")
	}
	return nil
}
