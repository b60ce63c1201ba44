package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/Abdul-Razack/docpreview"
	"github.com/Abdul-Razack/docpreview/internal/config"
)

// Sentinel errors for export operations.
var (
	ErrWriteArtifact      = errors.New("failed to write artifact")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrInvalidTimeout     = errors.New("invalid timeout")
)

// runExportCmd runs export or print and returns the exit code.
func runExportCmd(mode string, args []string, env *Environment) int {
	flags, inputs, err := parseExportFlags(mode, args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintln(env.Stderr, err)
		return ExitUsage
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	if err := runExport(ctx, mode, inputs, flags, env); err != nil {
		printError(env.Stderr, err)
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// runExport loads configuration, reads every document and exports them
// in parallel through the exporter pool.
func runExport(ctx context.Context, mode string, inputs []string, flags *exportFlags, env *Environment) error {
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	warnUnknownEnvVars(env.Stderr)
	envCfg := loadEnvConfig()

	cfg, err := resolveConfig(flags.common.config, envCfg)
	if err != nil {
		return err
	}
	if err := mergeFlags(flags, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(cfg.Log, flags.common, env.Stderr)
	defer func() { _ = logger.Sync() }()

	files, err := discoverDocuments(inputs)
	if err != nil {
		return err
	}

	now := env.Now()
	jobs := make([]exportJob, 0, len(files))
	for _, path := range files {
		doc, err := loadDocument(path, cfg, now)
		if err != nil {
			return err
		}
		jobs = append(jobs, exportJob{InputPath: path, Doc: doc})
	}

	size := docpreview.ResolvePoolSize(cfg.Workers)
	if size > len(jobs) {
		size = len(jobs)
	}
	logger.Debug("starting exports",
		zap.String("mode", mode),
		zap.Int("documents", len(jobs)),
		zap.Int("workers", size))

	sink := newBatchSink(cfg.Output.Dir)
	pool := env.NewPool(size, exporterOptions(cfg, logger, env.Now, sink)...)
	defer func() {
		if err := pool.Close(); err != nil {
			logger.Warn("closing exporters", zap.Error(err))
		}
	}()

	results := exportBatch(ctx, pool, mode, jobs)
	return printResults(results, flags.common, env)
}

// resolveConfig loads the config named by --config or DOCPREVIEW_CONFIG,
// applies environment overrides and falls back to defaults.
func resolveConfig(flagConfig string, envCfg *envConfig) (*config.Config, error) {
	name := flagConfig
	if name == "" {
		name = envCfg.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		var err error
		if cfg, err = config.LoadConfig(name); err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}
	applyEnvConfig(envCfg, cfg)
	return cfg, nil
}

// mergeFlags applies explicitly set CLI flags over the config.
func mergeFlags(flags *exportFlags, cfg *config.Config) error {
	if flags.output != "" {
		cfg.Output.Dir = flags.output
	}
	if flags.workers > 0 {
		cfg.Workers = flags.workers
	}
	if flags.timeout != "" {
		d, err := time.ParseDuration(flags.timeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("%w: %q (use e.g. 30s or 2m)", ErrInvalidTimeout, flags.timeout)
		}
		cfg.Timeout = d.String()
	}

	if flags.page.oversampling != 0 {
		cfg.Page.Oversampling = flags.page.oversampling
	}
	if flags.page.legacyBand {
		cfg.Page.LegacyTrailingBand = true
	}
	if flags.page.encoding != "" {
		cfg.Page.BandEncoding = flags.page.encoding
	}
	if flags.page.jpegQuality != 0 {
		cfg.Page.JPEGQuality = flags.page.jpegQuality
	}

	if flags.assets.style != "" {
		cfg.Assets.Style = flags.assets.style
	}
	if flags.assets.template != "" {
		cfg.Assets.TemplateSet = flags.assets.template
	}
	if flags.assets.assetPath != "" {
		cfg.Assets.BasePath = flags.assets.assetPath
	}

	if flags.document.lang != "" {
		cfg.Document.Lang = flags.document.lang
	}
	if flags.document.note != "" {
		cfg.Document.Note = flags.document.note
	}
	return nil
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > docpreview.MaxPoolSize {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, docpreview.MaxPoolSize)
	}
	return nil
}

// exporterOptions maps the resolved config onto exporter options.
func exporterOptions(cfg *config.Config, logger *zap.Logger, now func() time.Time, sink docpreview.ArtifactSink) []docpreview.Option {
	return []docpreview.Option{
		docpreview.WithTimeout(cfg.TimeoutDuration()),
		docpreview.WithLogger(logger),
		docpreview.WithOversampling(cfg.Page.Oversampling),
		docpreview.WithLegacyTrailingBand(cfg.Page.LegacyTrailingBand),
		docpreview.WithBandEncoding(docpreview.BandEncoding(cfg.Page.BandEncoding), cfg.Page.JPEGQuality),
		docpreview.WithBudgetDefaults(docpreview.BudgetDefaults{
			HeaderPx:          cfg.Budget.HeaderPx,
			FooterPx:          cfg.Budget.FooterPx,
			FirstPageMarginPx: cfg.Budget.FirstPageMarginPx,
			PageMarginPx:      cfg.Budget.PageMarginPx,
		}),
		docpreview.WithDebounce(cfg.DebounceDuration()),
		docpreview.WithMountTimeout(cfg.MountTimeoutDuration()),
		docpreview.WithTemplateSet(cfg.Assets.TemplateSet),
		docpreview.WithAssetPath(cfg.Assets.BasePath),
		docpreview.WithStyle(cfg.Assets.Style),
		docpreview.WithLang(cfg.Document.Lang),
		docpreview.WithNote(cfg.Document.Note),
		docpreview.WithClock(now),
		docpreview.WithSink(sink),
	}
}
