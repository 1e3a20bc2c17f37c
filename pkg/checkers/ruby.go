package checkers

import (
	"context"
	"fmt"

	"github.com/dkoosis/puppetcheck/pkg/diag"
)

// Script validates .rb files with `ruby -c` and, when style checks are on,
// rubocop.
type Script struct {
	Runner CommandRunner
}

// Check implements dispatch.Checker.
func (s Script) Check(ctx context.Context, files []string, store *diag.Store) error {
	return rubyWithStyle(ctx, s.Runner, files, store)
}

// ScriptTemplate validates .erb files by compiling them with erb and
// syntax-checking the generated Ruby.
type ScriptTemplate struct {
	Runner CommandRunner
}

// Check implements dispatch.Checker.
func (s ScriptTemplate) Check(ctx context.Context, files []string, store *diag.Store) error {
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}

		out, err := s.Runner.Run(ctx, nil, "erb", "-P", "-x", "-T", "-", f)
		if err != nil {
			return err
		}
		if out.ExitCode != 0 {
			msg := out.Text()
			if msg == "" {
				msg = fmt.Sprintf("erb exited with status %d", out.ExitCode)
			}
			store.Error(f, msg)
			continue
		}

		ok, err := syntax(ctx, s.Runner, store, f, out.Stdout, "ruby", "-c")
		if err != nil {
			return err
		}
		if ok {
			store.Clean(f)
		}
	}
	return nil
}

// Librarian validates Puppetfile and Modulefile, which are Ruby DSL files.
type Librarian struct {
	Runner CommandRunner
}

// Check implements dispatch.Checker.
func (l Librarian) Check(ctx context.Context, files []string, store *diag.Store) error {
	return rubyWithStyle(ctx, l.Runner, files, store)
}

func rubyWithStyle(ctx context.Context, r CommandRunner, files []string, store *diag.Store) error {
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}

		ok, err := syntax(ctx, r, store, f, nil, "ruby", "-c", f)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		if store.Settings.StyleCheck {
			args := append(append([]string{}, store.Settings.RubocopArgs...), "--format", "emacs", "--force-exclusion", f)
			warned, err := style(ctx, r, store, f, "rubocop", args...)
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
