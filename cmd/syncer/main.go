package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/sourcegraph/conc/panics"
	"github.com/vgarvardt/gue/v5"
	"github.com/vgarvardt/gue/v5/adapter/pgxv5"
	adapter "github.com/vgarvardt/gue/v5/adapter/zap"
	"go.uber.org/zap"

	"github.com/mishamsk/drebedengi-go/config"
	"github.com/mishamsk/drebedengi-go/drebedengi"
	"github.com/mishamsk/drebedengi-go/pkg/db"
	"github.com/mishamsk/drebedengi-go/pkg/logger"
	"github.com/mishamsk/drebedengi-go/pkg/postgres"
	storage "github.com/mishamsk/drebedengi-go/storage/postgres"
	"github.com/mishamsk/drebedengi-go/syncer"
)

func main() {
	ctx := context.Background()
	log := logger.New(true)

	cfg, err := config.ParseEnv(ctx)
	if err != nil {
		log.Fatal("can't parse configuration", zap.Error(err))
	}

	log = logger.New(cfg.Debug)

	pool, err := postgres.Connect(ctx, cfg.DB)
	if err != nil {
		log.Fatal("can't connect to db", zap.Error(err))
	}
	defer pool.Close()

	database := db.NewDB(pool, log)
	store := storage.New(database)

	poolAdapter := pgxv5.NewConnPool(pool)
	q, err := gue.NewClient(poolAdapter, gue.WithClientLogger(adapter.New(log.Logger)))
	if err != nil {
		log.Fatal("pgx adapter for gue", zap.Error(err))
	}

	api := drebedengi.New(cfg.Drebedengi, log.Logger)
	budgetSyncer := syncer.New(store, q, api, log.Logger, cfg.Syncer)

	runForever(
		log,
		func() { budgetSyncer.Sync(ctx) },
	)

	exit := make(chan os.Signal, 1)
	signal.Notify(exit, os.Interrupt, syscall.SIGTERM)
	<-exit
	log.Info("syncer has been stopped")
}

// runForever spawns goroutine for every f in ff. Each f is logged and restarted if panic occurs. It's non-blocking.
func runForever(log *logger.Logger, ff ...func()) {
	for i := range ff {
		f := ff[i]
		go func() {
			var pc panics.Catcher
			pc.Try(f)
			if err := pc.Recovered().AsError(); err != nil {
				log.Error("panic", zap.Error(err))
				time.Sleep(time.Minute)
				runForever(log, f)
			}
		}()
	}
}
