package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexanderramin/reqplan/internal/backend"
	"github.com/alexanderramin/reqplan/internal/cli"
	"github.com/alexanderramin/reqplan/internal/cli/formatter"
	"github.com/alexanderramin/reqplan/internal/config"
	"github.com/alexanderramin/reqplan/internal/db"
	"github.com/alexanderramin/reqplan/internal/logging"
	"github.com/alexanderramin/reqplan/internal/repository"
	"github.com/alexanderramin/reqplan/internal/runstore"
	"github.com/alexanderramin/reqplan/internal/service"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	interactive := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	formatter.ConfigureColor(interactive)

	markdownStyle := "notty"
	if interactive {
		markdownStyle = "dark"
	}

	var database *sql.DB
	defer func() {
		if database != nil {
			database.Close()
		}
	}()

	app := &cli.App{
		IsInteractive: func() bool { return interactive },
		MarkdownStyle: markdownStyle,
		Now:           time.Now,
	}
	app.Setup = func(cmd *cobra.Command, flags *pflag.FlagSet) error {
		if database != nil {
			return nil
		}
		v := config.NewViper(cli.ConfigFile(flags))
		if err := cli.BindGlobalFlags(v, flags); err != nil {
			return err
		}
		cfg, err := config.Load(v)
		if err != nil {
			return err
		}

		logger := logging.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
		if used := v.ConfigFileUsed(); used != "" {
			logger.Debug("config loaded", "file", used)
		}

		database, err = db.OpenDB(cfg.Storage.DBPath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}

		// Wire repositories and the run cache
		stateRepo := repository.NewSQLiteStateRepo(database)
		cacheRepo := repository.NewSQLiteDecompositionCacheRepo(database)
		uow := db.NewSQLiteUnitOfWork(database)

		store := runstore.New(stateRepo, logger)
		if err := store.Load(cmd.Context()); err != nil {
			return fmt.Errorf("loading run cache: %w", err)
		}

		var observer backend.Observer = backend.NoopObserver{}
		if cfg.API.LogCalls {
			observer = backend.NewLogObserver(logger)
		}
		client := backend.New(backend.ConfigFromMillis(
			cfg.API.BaseURL, cfg.API.TimeoutMs, cfg.API.LongTimeoutMs, cfg.API.MaxRetries,
		), observer)

		// Wire services
		useCases := service.NewLogUseCaseObserver(logger)
		decompositions := service.NewDecompositionService(client, cacheRepo, store, logger, useCases)

		app.Logger = logger
		app.Backend = client
		app.Runs = service.NewRunService(client, store, uow, useCases)
		app.Uploads = service.NewUploadService(client, store, service.UploadOptions{
			MaxBytes:        cfg.Upload.MaxBytes,
			Extensions:      cfg.Upload.Extensions,
			PollInterval:    time.Duration(cfg.Upload.PollIntervalMs) * time.Millisecond,
			MaxPollAttempts: cfg.Upload.MaxPollAttempts,
		}, useCases)
		app.Summaries = service.NewSummaryService(client, store)
		app.Decompositions = decompositions
		app.Timelines = service.NewTimelineService(decompositions, client)
		app.Assignments = service.NewAssignmentService(client, decompositions, useCases)
		app.Sync = service.NewSyncService(client, store, useCases)
		return nil
	}

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}
