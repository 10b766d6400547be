package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/svwadmin/reservations-tracker/internal/archive"
	"github.com/svwadmin/reservations-tracker/internal/classify"
	"github.com/svwadmin/reservations-tracker/internal/common"
	"github.com/svwadmin/reservations-tracker/internal/document/textdoc"
	"github.com/svwadmin/reservations-tracker/internal/ingest"
	"github.com/svwadmin/reservations-tracker/internal/mailbox"
	"github.com/svwadmin/reservations-tracker/internal/notify"
	"github.com/svwadmin/reservations-tracker/internal/pipeline"
	"github.com/svwadmin/reservations-tracker/internal/redact"
	"github.com/svwadmin/reservations-tracker/internal/reminder"
	"github.com/svwadmin/reservations-tracker/internal/store"
	"github.com/svwadmin/reservations-tracker/internal/subscription"
)

func main() {
	// Loggers: zap for process bootstrap, slog for the components.
	zl, _ := zap.NewProduction()
	defer zl.Sync()
	fatal := zl.Sugar()
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	// Env
	_ = godotenv.Load()
	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		fatal.Fatalf("config: %v", err)
	}

	tz, err := time.LoadLocation(cfg.Reminder.Timezone)
	if err != nil {
		fatal.Fatalf("load timezone %s: %v", cfg.Reminder.Timezone, err)
	}

	// Context with signal
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Registry over its SQLite store
	sqlStore, err := subscription.OpenSQLStore(cfg.Registry.DatabasePath)
	if err != nil {
		fatal.Fatalf("open registry store: %v", err)
	}
	defer sqlStore.Close()
	registry, err := subscription.NewRegistry(ctx, sqlStore, log)
	if err != nil {
		fatal.Fatalf("load registry: %v", err)
	}

	// Pipeline over the local filesystem store and text-backed renderer.
	// The cloud drive and mailbox adapters replace these two in the hosted
	// deployment.
	factory := textdoc.Factory{}
	docStore := store.NewFSStore(".")
	archiver := archive.NewArchiver(docStore, factory, cfg.Archive.BasePath, cfg.Archive.RedactedBasePath, log)
	sender := notify.NewSender(&logSender{log: log}, notify.Config{
		SupportAddress: cfg.Notification.SupportAddress,
		SubjectPrefix:  cfg.Notification.SubjectPrefix,
	}, log)
	processor := pipeline.NewProcessor(
		factory,
		classify.NewClassifier(log),
		redact.NewRedactor(factory, log),
		archiver,
		registry,
		sender,
		log,
	)

	// Reminder scheduling
	runState := reminder.NewRunState(cfg.Reminder.RunStatePath, tz)
	scheduler := reminder.NewScheduler(registry, archiver, sender, runState, tz, cfg.Reminder.EarliestHour, log)

	// Inbox watcher: every document dropped into the inbox directory runs
	// the full pipeline.
	events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Root:        cfg.Archive.InboxDir,
		InitialScan: true,
		Debounce:    cfg.Archive.InboxDebounce,
	}, log)
	if err != nil {
		fatal.Fatalf("start inbox watcher: %v", err)
	}

	go func() {
		for path := range events {
			ingestFile(ctx, processor, path, log)
		}
	}()
	go func() {
		for err := range errs {
			log.Warn("watcher.error", "err", err)
		}
	}()

	// Reminder gate check on a cron; the gate itself keeps it to one pass
	// per day.
	c := cron.New(cron.WithLocation(tz))
	if _, err := c.AddFunc(cfg.Reminder.CronSpec, func() {
		if err := scheduler.RunIfDue(ctx); err != nil {
			log.Warn("reminder.run_failed", "err", err)
		}
	}); err != nil {
		fatal.Fatalf("add reminder cron job: %v", err)
	}
	c.Start()

	log.Info("trackerd.started", "inbox", cfg.Archive.InboxDir, "reminder_cron", cfg.Reminder.CronSpec)
	<-ctx.Done()
	log.Info("trackerd.shutting_down")
	<-c.Stop().Done()
	fmt.Println("stopped.")
}

func ingestFile(ctx context.Context, processor *pipeline.Processor, path string, log *slog.Logger) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn("ingest.read_failed", "path", path, "err", err)
		return
	}
	att := mailbox.Attachment{Name: filepath.Base(path), Content: data}
	if _, err := processor.ProcessAttachment(ctx, att); err != nil {
		log.Warn("ingest.failed", "path", path, "err", err)
		return
	}
	if err := os.Remove(path); err != nil {
		log.Warn("ingest.cleanup_failed", "path", path, "err", err)
	}
	log.Info("ingest.done", "path", path)
}
