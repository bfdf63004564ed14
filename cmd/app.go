package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"paisometer/internal/alerts"
	"paisometer/internal/categorizer"
	"paisometer/internal/config"
	"paisometer/internal/dedup"
	"paisometer/internal/ledger"
	"paisometer/internal/logger"
	"paisometer/internal/notify"
	"paisometer/internal/parser"
	"paisometer/internal/pipeline"
	"paisometer/internal/queue"
	"paisometer/internal/store"
	"paisometer/internal/ui"
)

// app holds every wired component for one command run.
type app struct {
	cfg      config.Config
	log      zerolog.Logger
	store    store.Store
	parser   *parser.Parser
	queue    *queue.Queue
	repo     *ledger.Repository
	monitor  *alerts.Monitor
	ingestor *pipeline.Ingestor
	syncer   *ledger.Syncer
	out      *ui.Printer
}

// newApp loads configuration and wires the pipeline. Alerts go to notifier,
// or to the terminal when notifier is nil.
func newApp(ctx context.Context, out io.Writer, notifier alerts.Notifier) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	log := logger.New(cfg.Log.Level, logger.Format(cfg.Log.Format))

	vocab := parser.DefaultVocabulary()
	if cfg.VocabularyFile != "" {
		if vocab, err = parser.LoadVocabulary(cfg.VocabularyFile); err != nil {
			return nil, err
		}
	}

	kv, err := store.Open(ctx, cfg.StoreOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	log.Debug().Str("driver", cfg.Store.Driver).Msg("store opened")

	a := &app{
		cfg:    cfg,
		log:    log,
		store:  kv,
		parser: parser.New(vocab),
		queue:  queue.New(kv, log),
		repo:   ledger.NewRepository(kv),
		out:    ui.New(out),
	}
	if notifier == nil {
		notifier = alerts.NotifierFunc(func(_ context.Context, alert alerts.Alert) { a.out.Alert(alert) })
	}
	a.monitor = alerts.NewMonitor(kv, notifier, log)

	a.ingestor = pipeline.NewIngestor(
		notify.NewFilter(cfg.Notify.DefaultSMSApp, cfg.Notify.Allowlist...),
		a.parser,
		dedup.New(kv, cfg.Dedup.Window, log),
		a.queue,
		a.monitor,
		log,
	)

	var guesser ledger.CategoryGuesser
	if cfg.Sync.AutoCategorize {
		guesser = categorizer.New()
	}
	a.syncer = ledger.NewSyncer(a.queue, a.repo, guesser, log)

	return a, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.Error().Err(err).Msg("failed to close store")
	}
}
