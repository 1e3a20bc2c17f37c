// Command puppetcheck validates Puppet manifests, templates, Ruby, data files
// and Puppetfiles under the given paths and prints a grouped report.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/dkoosis/puppetcheck/pkg/config"
	"github.com/dkoosis/puppetcheck/pkg/pipeline"
	"github.com/dkoosis/puppetcheck/pkg/report"
)

// version is overridden at build time via -ldflags.
var version = "dev"

// errContentErrors signals a completed run whose report lists errors.
var errContentErrors = errors.New("files with errors found")

const (
	exitOK          = 0
	exitFailure     = 1
	exitContentErrs = 2
)

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errContentErrors):
		return exitContentErrs
	default:
		fmt.Fprintf(stderr, "puppetcheck: %v\n", err)
		return exitFailure
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "puppetcheck [flags] <path>...",
		Short:         "Validate Puppet, Ruby and data files",
		Long:          "puppetcheck finds every file under the given paths, runs the syntax and optional style checker for its type, and prints files grouped into errors, warnings, clean and unrecognized.",
		Args:          cobra.MinimumNArgs(1),
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	f := cmd.Flags()
	f.BoolP("style", "s", false, "run puppet-lint and rubocop after syntax checks")
	f.Bool("future", false, "validate manifests with the future parser")
	f.StringSlice("puppet-lint", nil, "extra puppet-lint arguments (comma-separated)")
	f.StringSlice("rubocop", nil, "extra rubocop arguments (comma-separated)")
	f.IntP("jobs", "j", 1, "number of file types checked concurrently")
	f.String("format", config.FormatText, "output format (text|sarif)")
	f.String("color", config.ColorAuto, "colorize output (auto|on|off)")
	f.Bool("include-hidden", false, "check files and directories whose name starts with a dot")
	f.Bool("follow-symlinks", false, "follow symlinks found while walking directories")
	f.StringArray("exclude", nil, "glob of paths to skip (repeatable)")
	f.BoolP("verbose", "v", false, "log progress to stderr")

	return cmd
}

func runCheck(cmd *cobra.Command, paths []string, stdout, stderr io.Writer) error {
	cfg, err := config.Load(".")
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, &cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	opts := pipeline.FromConfig(cfg)
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return fmt.Errorf("failed to get verbose flag: %w", err)
	}
	if verbose {
		logger := newLogger(stderr)
		defer func() { _ = logger.Sync() }()
		opts.Logger = logger.Sugar()
		if cfg.Path != "" {
			opts.Logger.Infof("using config %s", cfg.Path)
		}
	}

	res, err := pipeline.Check(cmd.Context(), paths, opts)
	if err != nil {
		return err
	}

	switch cfg.Format {
	case config.FormatSARIF:
		err = report.WriteSARIF(stdout, res.Store, version)
	default:
		err = report.New(report.Options{Color: useColor(cfg.Color, stdout)}).Write(stdout, res.Store)
	}
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if res.Store.HasErrors() {
		return errContentErrors
	}
	return nil
}

// newLogger returns a development-style console logger writing to w.
func newLogger(w io.Writer) *zap.Logger {
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(w),
		zapcore.DebugLevel,
	)
	return zap.New(core, zap.Development()).Named("puppetcheck")
}

// applyFlags overrides cfg with flags given on the command line.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()

	bools := map[string]*bool{
		"style":           &cfg.Style,
		"future":          &cfg.FutureParser,
		"include-hidden":  &cfg.Discovery.IncludeHidden,
		"follow-symlinks": &cfg.Discovery.FollowSymlinks,
	}
	for name, dst := range bools {
		if !f.Changed(name) {
			continue
		}
		v, err := f.GetBool(name)
		if err != nil {
			return fmt.Errorf("failed to get %s flag: %w", name, err)
		}
		*dst = v
	}

	slices := map[string]*[]string{
		"puppet-lint": &cfg.PuppetLintArgs,
		"rubocop":     &cfg.RubocopArgs,
	}
	for name, dst := range slices {
		if !f.Changed(name) {
			continue
		}
		v, err := f.GetStringSlice(name)
		if err != nil {
			return fmt.Errorf("failed to get %s flag: %w", name, err)
		}
		*dst = v
	}

	if f.Changed("exclude") {
		v, err := f.GetStringArray("exclude")
		if err != nil {
			return fmt.Errorf("failed to get exclude flag: %w", err)
		}
		cfg.Discovery.Exclude = v
	}
	if f.Changed("jobs") {
		v, err := f.GetInt("jobs")
		if err != nil {
			return fmt.Errorf("failed to get jobs flag: %w", err)
		}
		cfg.Jobs = v
	}
	if f.Changed("format") {
		v, err := f.GetString("format")
		if err != nil {
			return fmt.Errorf("failed to get format flag: %w", err)
		}
		cfg.Format = v
	}
	if f.Changed("color") {
		v, err := f.GetString("color")
		if err != nil {
			return fmt.Errorf("failed to get color flag: %w", err)
		}
		cfg.Color = v
	}
	return nil
}

// useColor resolves the color mode; auto means a terminal without NO_COLOR.
func useColor(mode string, w io.Writer) bool {
	switch mode {
	case config.ColorOn:
		return true
	case config.ColorOff:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
