package checkers

import (
	"context"

	"github.com/dkoosis/puppetcheck/pkg/diag"
)

const puppetLintFormat = "%{line}:%{column}: %{kind}: %{message} (%{check})"

// Manifest validates .pp files with `puppet parser validate` and, when style
// checks are on, puppet-lint.
type Manifest struct {
	Runner CommandRunner
}

// Check implements dispatch.Checker.
func (m Manifest) Check(ctx context.Context, files []string, store *diag.Store) error {
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}

		args := []string{"parser", "validate"}
		if store.Settings.FutureParser {
			args = append(args, "--parser", "future")
		}
		args = append(args, f)

		ok, err := syntax(ctx, m.Runner, store, f, nil, "puppet", args...)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		if store.Settings.StyleCheck {
			lintArgs := append(append([]string{}, store.Settings.PuppetLintArgs...), "--log-format", puppetLintFormat, f)
			warned, err := style(ctx, m.Runner, store, f, "puppet-lint", lintArgs...)
			if err != nil {
				return err
			}
			if warned {
				continue
			}
		}
		store.Clean(f)
	}
	return nil
}

// Template validates .epp files with `puppet epp validate`.
type Template struct {
	Runner CommandRunner
}

// Check implements dispatch.Checker.
func (t Template) Check(ctx context.Context, files []string, store *diag.Store) error {
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		ok, err := syntax(ctx, t.Runner, store, f, nil, "puppet", "epp", "validate", f)
		if err != nil {
			return err
		}
		if ok {
			store.Clean(f)
		}
	}
	return nil
}
