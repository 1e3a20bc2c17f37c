// Package dispatch routes classified files to their checkers.
package dispatch

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dkoosis/puppetcheck/pkg/classify"
	"github.com/dkoosis/puppetcheck/pkg/diag"
)

// Checker validates the files of one bucket. Content problems are recorded in
// store; a returned error means the checker itself failed and aborts the run.
type Checker interface {
	Check(ctx context.Context, files []string, store *diag.Store) error
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context, files []string, store *diag.Store) error

// Check calls f.
func (f CheckerFunc) Check(ctx context.Context, files []string, store *diag.Store) error {
	return f(ctx, files, store)
}

// Registry maps each checked bucket to its checker.
type Registry map[classify.Bucket]Checker

// Options tunes dispatch.
type Options struct {
	// Jobs is the number of bucket checkers run at once. Values below 2 run
	// buckets sequentially.
	Jobs int
	// Logger receives one line per checker invocation. Nil discards.
	Logger *zap.SugaredLogger
}

// Dispatch runs the registered checker for every non-empty bucket in
// classify.Order, then records ignored files. Diagnostics land in store in
// bucket order regardless of Jobs.
func Dispatch(ctx context.Context, buckets classify.Buckets, registry Registry, store *diag.Store, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	var pending []classify.Bucket
	for _, b := range classify.Order {
		if len(buckets[b]) == 0 {
			continue
		}
		if registry[b] == nil {
			return fmt.Errorf("no checker registered for %s files", b)
		}
		pending = append(pending, b)
	}

	var err error
	if opts.Jobs > 1 && len(pending) > 1 {
		err = dispatchParallel(ctx, pending, buckets, registry, store, opts.Jobs, logger)
	} else {
		err = dispatchSequential(ctx, pending, buckets, registry, store, logger)
	}
	if err != nil {
		return err
	}

	for _, f := range buckets[classify.Ignored] {
		store.Ignore(f)
	}
	return nil
}

func dispatchSequential(ctx context.Context, pending []classify.Bucket, buckets classify.Buckets, registry Registry, store *diag.Store, logger *zap.SugaredLogger) error {
	for _, b := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}
		logger.Infof("checking %d %s file(s)", len(buckets[b]), b)
		if err := registry[b].Check(ctx, buckets[b], store); err != nil {
			return fmt.Errorf("%s checker: %w", b, err)
		}
	}
	return nil
}

// dispatchParallel gives each bucket a private store and merges them in
// order after every checker returned.
func dispatchParallel(ctx context.Context, pending []classify.Bucket, buckets classify.Buckets, registry Registry, store *diag.Store, jobs int, logger *zap.SugaredLogger) error {
	partial := make([]*diag.Store, len(pending))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(pending)))

	for i, b := range pending {
		partial[i] = diag.NewStore(store.Settings)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			logger.Infof("checking %d %s file(s)", len(buckets[b]), b)
			if err := registry[b].Check(gctx, buckets[b], partial[i]); err != nil {
				return fmt.Errorf("%s checker: %w", b, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	for _, p := range partial {
		store.Merge(p)
	}
	return nil
}
