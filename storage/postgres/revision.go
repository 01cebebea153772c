package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/mishamsk/drebedengi-go/pkg/db"
)

// The replica tracks a single budget, so sync state is one row.

func revisionQuery() sq.SelectBuilder {
	return sq.Select("revision").From("sync_state").Where(sq.Eq{"id": 1})
}

func (s *Storage) Revision(ctx context.Context) (int64, error) {
	var revision int64
	err := s.db.Select(ctx, revisionQuery(), db.ScanOnce(&revision))
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("db select: %w", err)
	}

	return revision, nil
}

func (s *Storage) SetRevision(ctx context.Context, revision int64) error {
	query := sq.
		Insert("sync_state").
		Columns("id", "revision", "synced_at").
		Values(1, revision, time.Now()).
		Suffix("on conflict (id) do update set revision = excluded.revision, synced_at = excluded.synced_at")

	if err := s.db.Insert(ctx, query, nil); err != nil {
		return fmt.Errorf("upsert sync state: %w", err)
	}

	return nil
}
