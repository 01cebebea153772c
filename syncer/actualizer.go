package syncer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	timeutils "github.com/mishamsk/drebedengi-go/pkg/time"
)

// actualizer compares the local revision with the server one and, when
// the replica is behind, enqueues a task for the updater queue.
// Actualizer never fails.
func (s *Syncer) actualizer(ctx context.Context) {
	time.Sleep(s.cfg.ActualizerStartDelay)
	for range timeutils.TickWithCtx(ctx, s.cfg.RevisionCheckInterval) {
		err := s.iteration(ctx)
		if err != nil {
			s.logger.Error("actualizer worker failed", zap.Error(err)) // if one fail we continue
		}
	}
}

func (s *Syncer) iteration(ctx context.Context) error {
	local, err := s.storage.Revision(ctx)
	if err != nil {
		return fmt.Errorf("storage revision: %w", err)
	}

	remote, err := s.api.GetCurrentRevision(ctx)
	if err != nil {
		return fmt.Errorf("get current revision: %w", err)
	}

	if remote <= local {
		s.logger.Debug("actualizer: replica is up to date", zap.Int64("revision", local))
		return nil
	}

	s.logger.Info(
		"actualizer: replica is behind, enqueueing sync",
		zap.Int64("local_revision", local),
		zap.Int64("remote_revision", remote),
	)

	// duplicate jobs are harmless: the updater only upserts and the
	// revision is set to the same target either way
	if err := s.enqueue(ctx, local, remote); err != nil {
		return fmt.Errorf("enqueue: %w", err)
	}

	return nil
}
