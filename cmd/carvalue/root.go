package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	carvalue "github.com/goliatone/go-carvalue"
	"github.com/goliatone/go-carvalue/internal/config"
	"github.com/goliatone/go-carvalue/internal/history"
	"github.com/goliatone/go-carvalue/pkg/estimator"
	"github.com/goliatone/go-carvalue/pkg/orchestrator"
	"github.com/goliatone/go-carvalue/pkg/renderers/vanilla"
	"github.com/goliatone/go-carvalue/pkg/schema"
)

// version is set at build time via -ldflags.
var version = "dev"

const assetBase = "/runtime"

type rootOptions struct {
	modelPath    string
	schemaPath   string
	templatesDir string
	historyDB    string
	logLevel     string
	baseYear     int

	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "carvalue",
		Short: "Estimate used car market prices from a trained model",
		Long: "carvalue renders the vehicle input form, serves it over HTTP and runs\n" +
			"submissions through a pre-trained price model.\n\n" +
			"Settings come from CARVALUE_* environment variables; flags override them.",
		Version:      version,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd)
		},
	}

	f := cmd.PersistentFlags()
	f.StringVar(&opts.modelPath, "model", "", "model artifact path (CARVALUE_MODEL_PATH)")
	f.StringVar(&opts.schemaPath, "schema", "", "vehicle schema document; the embedded schema is used when empty (CARVALUE_SCHEMA_PATH)")
	f.StringVar(&opts.templatesDir, "templates", "", "directory overriding the embedded HTML templates (CARVALUE_TEMPLATES_DIR)")
	f.StringVar(&opts.historyDB, "history-db", "", "SQLite file recording successful estimates (CARVALUE_HISTORY_DB)")
	f.IntVar(&opts.baseYear, "base-year", 0, "reference year for derived ages (CARVALUE_BASE_YEAR)")
	f.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error (CARVALUE_LOG_LEVEL)")

	cmd.AddCommand(
		newServeCmd(opts),
		newEstimateCmd(opts),
		newOpenAPICmd(opts),
		newHistoryCmd(opts),
	)
	return cmd
}

func (o *rootOptions) load(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("model") {
		cfg.ModelPath = o.modelPath
	}
	if flags.Changed("schema") {
		cfg.SchemaPath = o.schemaPath
	}
	if flags.Changed("templates") {
		cfg.TemplatesDir = o.templatesDir
	}
	if flags.Changed("history-db") {
		cfg.HistoryDB = o.historyDB
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("base-year") {
		if o.baseYear <= 0 {
			return errors.New("--base-year must be positive")
		}
		cfg.BaseYear = o.baseYear
	}

	o.cfg = cfg
	o.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.Level()}))
	return nil
}

func (o *rootOptions) loadSchema() (schema.Schema, error) {
	if o.cfg.SchemaPath == "" {
		return schema.Default()
	}
	return schema.LoadFile(o.cfg.SchemaPath)
}

// app holds the wired components one command invocation needs.
type app struct {
	schema schema.Schema
	loader *estimator.Loader
	store  *history.Store
	orch   *orchestrator.Orchestrator
}

func (o *rootOptions) build(ctx context.Context) (*app, error) {
	s, err := o.loadSchema()
	if err != nil {
		return nil, err
	}

	var htmlOptions []vanilla.Option
	if o.cfg.TemplatesDir != "" {
		htmlOptions = append(htmlOptions, vanilla.WithTemplatesDir(o.cfg.TemplatesDir))
	}
	registry, err := carvalue.NewRegistry(htmlOptions...)
	if err != nil {
		return nil, err
	}

	a := &app{
		schema: s,
		loader: estimator.NewLoader(o.cfg.ModelPath,
			estimator.WithColumns(s.Columns()),
			estimator.WithLogger(o.logger),
		),
	}

	options := []orchestrator.Option{
		orchestrator.WithSchema(s),
		orchestrator.WithModelSource(a.loader),
		orchestrator.WithRegistry(registry),
		orchestrator.WithLogger(o.logger),
		orchestrator.WithBaseYear(o.cfg.BaseYear),
		orchestrator.WithDerivedFields(o.cfg.DeriveFields),
		orchestrator.WithAssetBase(assetBase),
		carvalue.WithDefaultTheme(assetBase, o.cfg.ThemeVariant),
	}
	if o.cfg.HistoryDB != "" {
		store, err := history.Open(ctx, o.cfg.HistoryDB)
		if err != nil {
			return nil, err
		}
		a.store = store
		options = append(options, orchestrator.WithRecorder(store))
	}

	a.orch = orchestrator.New(options...)
	return a, nil
}

func (a *app) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}
