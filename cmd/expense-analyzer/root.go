package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/animus-labs/expense-tracker/internal/config"
	"github.com/animus-labs/expense-tracker/internal/platform/logging"
	"github.com/animus-labs/expense-tracker/internal/platform/postgres"
	"github.com/animus-labs/expense-tracker/internal/repo"
	pgrepo "github.com/animus-labs/expense-tracker/internal/repo/postgres"
	"github.com/animus-labs/expense-tracker/internal/report"
)

// errReported means the command already told the user what went wrong.
var errReported = errors.New("reported")

type app struct {
	configPath string
	logLevel   string

	stdout io.Writer
	stderr io.Writer

	cfg    config.Config
	logger *slog.Logger

	openStore func(ctx context.Context) (repo.ExpenseRepository, func(), error)
	launcher  report.Launcher
}

func newApp(stdout, stderr io.Writer) *app {
	a := &app{stdout: stdout, stderr: stderr}
	a.openStore = a.openPostgres
	return a
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "expense-analyzer",
		Short:         "Export expenses and run the trend analyzer",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML config file (default $EXPENSE_ANALYZER_CONFIG)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newRunCmd(a),
		newExportCmd(a),
		newListCmd(a),
		newAddCmd(a),
		newEditCmd(a),
		newDeleteCmd(a),
		newPublishCmd(a),
	)
	return root
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if strings.TrimSpace(a.logLevel) != "" {
		cfg.LogLevel = a.logLevel
	}
	logger, err := logging.New(a.stderr, logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *app) openPostgres(ctx context.Context) (repo.ExpenseRepository, func(), error) {
	dbCfg, err := postgres.ConfigFromEnv()
	if err != nil {
		return nil, nil, fmt.Errorf("database config: %w", err)
	}
	db, err := postgres.Open(ctx, dbCfg)
	if err != nil {
		return nil, nil, err
	}
	return pgrepo.NewExpenseStore(db), func() { _ = db.Close() }, nil
}

func (a *app) withStore(ctx context.Context, fn func(store repo.ExpenseRepository) error) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()
	return fn(store)
}
