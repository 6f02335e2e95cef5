package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base carries the connection a repository issues queries on. Repositories embed it and
// rebind it to a transaction handle when a service runs them inside a unit of work.
type Base struct {
	db *gorm.DB
}

func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the connection scoped to ctx. A nil ctx yields the raw handle.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Rebind returns a copy bound to tx, or b unchanged when tx is nil.
func (b Base) Rebind(tx *gorm.DB) Base {
	if tx == nil {
		return b
	}
	return Base{db: tx}
}

// Bound reports whether b runs on tx.
func (b Base) Bound(tx *gorm.DB) bool {
	return b.db == tx
}
