// Package pipeline runs one full check: resolve paths, classify files,
// dispatch checkers and render the report.
package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/dkoosis/puppetcheck/pkg/checkers"
	"github.com/dkoosis/puppetcheck/pkg/classify"
	"github.com/dkoosis/puppetcheck/pkg/config"
	"github.com/dkoosis/puppetcheck/pkg/diag"
	"github.com/dkoosis/puppetcheck/pkg/dispatch"
	"github.com/dkoosis/puppetcheck/pkg/report"
	"github.com/dkoosis/puppetcheck/pkg/resolve"
)

// Options configures a run.
type Options struct {
	Settings  diag.Settings
	Discovery resolve.Options
	// Jobs bounds concurrent bucket checkers; below 2 runs sequentially.
	Jobs int
	// Registry overrides the checker table. Nil uses checkers.Registry(Runner).
	Registry dispatch.Registry
	// Runner executes external tools for the default registry.
	Runner checkers.CommandRunner
	// Color paints the text report headers.
	Color bool
	// Logger receives progress lines. Nil discards.
	Logger *zap.SugaredLogger
}

// FromConfig maps loaded configuration onto run options.
func FromConfig(cfg config.Config) Options {
	return Options{
		Settings: diag.Settings{
			FutureParser:   cfg.FutureParser,
			StyleCheck:     cfg.Style,
			PuppetLintArgs: cfg.PuppetLintArgs,
			RubocopArgs:    cfg.RubocopArgs,
		},
		Discovery: resolve.Options{
			IncludeHidden:  cfg.Discovery.IncludeHidden,
			FollowSymlinks: cfg.Discovery.FollowSymlinks,
			Exclude:        cfg.Discovery.Exclude,
		},
		Jobs: cfg.Jobs,
	}
}

// Result is everything a run produced.
type Result struct {
	Files   []string
	Buckets classify.Buckets
	Store   *diag.Store
}

// Check resolves, classifies and dispatches paths. It fails with a
// *resolve.NoFilesError when nothing resolves, or with the first checker
// failure; no partial result is returned in either case.
func Check(ctx context.Context, paths []string, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	files, err := resolve.Resolve(paths, opts.Discovery)
	if err != nil {
		return nil, err
	}
	logger.Infof("resolved %d file(s) from %d path(s)", len(files), len(paths))

	buckets := classify.Classify(files)
	for _, b := range append(append([]classify.Bucket{}, classify.Order...), classify.Ignored) {
		if n := len(buckets[b]); n > 0 {
			logger.Infof("classified %d %s file(s)", n, b)
		}
	}

	registry := opts.Registry
	if registry == nil {
		registry = checkers.Registry(opts.Runner)
	}

	store := diag.NewStore(opts.Settings)
	if err := dispatch.Dispatch(ctx, buckets, registry, store, dispatch.Options{Jobs: opts.Jobs, Logger: logger}); err != nil {
		return nil, err
	}

	return &Result{Files: files, Buckets: buckets, Store: store}, nil
}

// Run checks paths and returns the text report, colored when opts.Color is set.
func Run(ctx context.Context, paths []string, opts Options) (string, error) {
	res, err := Check(ctx, paths, opts)
	if err != nil {
		return "", err
	}
	return report.New(report.Options{Color: opts.Color}).Render(res.Store), nil
}
