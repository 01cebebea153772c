package syncer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/pool"
	"github.com/vgarvardt/gue/v5"
	adapter "github.com/vgarvardt/gue/v5/adapter/zap"
	"go.uber.org/zap"

	"github.com/mishamsk/drebedengi-go/drebedengi"
)

// Syncer keeps a local replica of a drebedengi budget up to date by
// polling the server revision and applying change lists to the storage.
type Syncer struct {
	cfg     Config
	storage Storage
	q       *gue.Client
	api     API
	logger  *zap.Logger
}

// API is the part of the drebedengi client the syncer needs.
type API interface {
	GetCurrentRevision(ctx context.Context) (int64, error)
	GetChanges(ctx context.Context, revision int64) ([]drebedengi.ChangeRecord, error)
	GetTransactions(ctx context.Context, req drebedengi.TransactionsRequest) ([]drebedengi.Transaction, error)
	GetExpenseCategories(ctx context.Context, ids []int64) ([]drebedengi.ExpenseCategory, error)
	GetIncomeSources(ctx context.Context, ids []int64) ([]drebedengi.IncomeSource, error)
	GetTags(ctx context.Context, ids []int64) ([]drebedengi.Tag, error)
	GetCurrencies(ctx context.Context, ids []int64) ([]drebedengi.Currency, error)
	GetAccounts(ctx context.Context, ids []int64) ([]drebedengi.Account, error)
}

type Storage interface {
	// WithinTransaction runs f against a transactional view of the storage,
	// so a sync plan and its revision bump are applied atomically.
	WithinTransaction(ctx context.Context, f func(ctx context.Context, tx Storage) error) error

	// Revision returns the last synced server revision, 0 before the first sync.
	Revision(ctx context.Context) (int64, error)
	SetRevision(ctx context.Context, revision int64) error

	UpsertTransactions(ctx context.Context, txs []drebedengi.Transaction) error
	DeleteTransactions(ctx context.Context, ids []int64) error
	UpsertExpenseCategories(ctx context.Context, categories []drebedengi.ExpenseCategory) error
	DeleteExpenseCategories(ctx context.Context, ids []int64) error
	UpsertIncomeSources(ctx context.Context, sources []drebedengi.IncomeSource) error
	DeleteIncomeSources(ctx context.Context, ids []int64) error
	UpsertTags(ctx context.Context, tags []drebedengi.Tag) error
	DeleteTags(ctx context.Context, ids []int64) error
	UpsertCurrencies(ctx context.Context, currencies []drebedengi.Currency) error
	DeleteCurrencies(ctx context.Context, ids []int64) error
	UpsertAccounts(ctx context.Context, accounts []drebedengi.Account) error
	DeleteAccounts(ctx context.Context, ids []int64) error
}

func New(
	s Storage,
	q *gue.Client,
	api API,
	l *zap.Logger,
	cfg Config,
) *Syncer {
	return &Syncer{
		storage: s,
		q:       q,
		api:     api,
		logger:  l,
		cfg:     cfg,
	}
}

const queueType = "sync"

// Sync panics if it can't initialize the worker queue.
func (s *Syncer) Sync(ctx context.Context) {
	newCtx, cancel := context.WithCancel(ctx)

	actualizers := pool.New().WithMaxGoroutines(s.cfg.WorkerPoolSize)
	for i := 0; i < s.cfg.WorkerPoolSize; i++ {
		actualizers.Go(func() { s.actualizer(newCtx) })
	}

	updaters, err := gue.NewWorkerPool(
		s.q,
		gue.WorkMap{queueType: s.updater},
		s.cfg.WorkerPoolSize,
		gue.WithPoolLogger(adapter.New(s.logger)),
	)
	if err != nil {
		s.logger.Fatal("gue new worker pool", zap.Error(err))
	}

	s.logger.Info("syncer has started")

	// run actualizers and updaters concurrently and cancel ctx as soon one of them exit so another exit too
	var wg conc.WaitGroup
	wg.Go(func() {
		defer cancel()
		actualizers.Wait()
	})
	wg.Go(func() {
		defer cancel()
		if err := updaters.Run(newCtx); err != nil {
			s.logger.Fatal("updaters run", zap.Error(err))
		}
	})
	wg.Wait()
}

type jobArgs struct {
	FromRevision int64 `json:"fromRevision"`
	ToRevision   int64 `json:"toRevision"`
}

func (s *Syncer) enqueue(ctx context.Context, from, to int64) error {
	args := jobArgs{
		FromRevision: from,
		ToRevision:   to,
	}

	bb, err := json.Marshal(&args)
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}

	if err := s.q.Enqueue(ctx, &gue.Job{Type: queueType, Args: bb}); err != nil {
		return fmt.Errorf("gue enqueue: %w", err)
	}

	return nil
}

// nolint:lll
type Config struct {
	WorkerPoolSize        int           `env:"WORKER_POOL_SIZE, default=1"`         // How many actualizers and updaters to spawn
	RevisionCheckInterval time.Duration `env:"REVISION_CHECK_INTERVAL, default=1m"` // How long one actualizer waits before the next revision lookup
	ActualizerStartDelay  time.Duration `env:"ACTUALIZER_START_DELAY, default=1s"`  // How much time to wait before spawning the next actualizer in a pool
}
