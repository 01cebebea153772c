// Package postgres implements syncer.Storage on a PostgreSQL replica of
// the drebedengi budget.
package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/mishamsk/drebedengi-go/pkg/db"
	"github.com/mishamsk/drebedengi-go/syncer"
)

type Storage struct {
	db *db.DB
}

func New(db *db.DB) *Storage {
	return &Storage{
		db: db,
	}
}

func (s *Storage) WithinTransaction(ctx context.Context, f func(ctx context.Context, tx syncer.Storage) error) error {
	return s.db.RunInTransaction(ctx, func(ctx context.Context, txDB *db.DB) error {
		return f(ctx, New(txDB))
	})
}

func (s *Storage) deleteByID(ctx context.Context, table string, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	query := sq.Delete(table).Where(sq.Eq{"id": ids})

	if err := s.db.Delete(ctx, query, nil); err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}

	return nil
}
