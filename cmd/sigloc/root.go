package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phyten/sigloc/internal/lang"
	applog "github.com/phyten/sigloc/internal/log"
	"github.com/phyten/sigloc/internal/termcolor"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitUsage   = 2
)

// exitError carries the process exit code alongside the cause.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func usageError(err error) error {
	if err == nil {
		return nil
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return err
	}
	return &exitError{code: exitUsage, err: err}
}

func usageErrorf(format string, args ...any) error {
	return usageError(fmt.Errorf(format, args...))
}

// exitCode: 未対応言語と引数・フラグの誤りは 2、それ以外の失敗は 1。
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	if errors.Is(err, lang.ErrUnsupportedLanguage) {
		return exitUsage
	}
	// cobra 自身が返す未知のサブコマンド
	if strings.HasPrefix(err.Error(), "unknown command") {
		return exitUsage
	}
	return exitRuntime
}

// app はサブコマンド間で共有する入出力と環境です。
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	env    map[string]string

	configPath string
	logLevel   string
	log        *slog.Logger
}

func newApp(stdin io.Reader, stdout, stderr io.Writer, environ []string) *app {
	return &app{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		env:    termcolor.EnvMap(environ),
		log:    applog.Discard(),
	}
}

func (a *app) getenv(key string) string { return a.env[key] }

// stdoutFile は色や進捗の TTY 判定に使います。テストのバッファなら nil です。
func (a *app) stdoutFile() *os.File {
	if f, ok := a.stdout.(*os.File); ok {
		return f
	}
	return nil
}

func (a *app) setupLogger() {
	cfg := applog.FromEnv()
	cfg.Output = a.stderr
	if lvl := strings.TrimSpace(a.logLevel); lvl != "" {
		cfg.Level = strings.ToLower(lvl)
	}
	a.log = applog.New(cfg)
}

func (a *app) newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sigloc",
		Short: "Report which lines of source code carry code",
		Long: `sigloc classifies every line of a source file as code, comment or blank.

Use 'sigloc lines' for a single file or snippet, 'sigloc scan' for a whole
repository, and 'sigloc serve' for the HTTP API and web UI.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			a.setupLogger()
		},
	}
	cmd.SetIn(a.stdin)
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default: .sigloc.* searched upwards, then XDG and HOME)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug|info|warn|error (overrides SIGLOC_LOG_LEVEL)")

	cmd.AddCommand(
		a.newLinesCommand(),
		a.newCountCommand(),
		a.newCleanCommand(),
		a.newScanCommand(),
		a.newServeCommand(),
		a.newWatchCommand(),
		a.newLangsCommand(),
		a.newVersionCommand(),
	)
	return cmd
}

// args は cobra の位置引数チェックを使い方の誤り（終了コード 2）に変換します。
func args(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, argv []string) error {
		return usageError(check(cmd, argv))
	}
}

func (a *app) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(a.stdout, "sigloc %s (commit %s, built %s)\n", version, commit, buildDate)
			return err
		},
	}
}

func run(ctx context.Context, argv []string, stdin io.Reader, stdout, stderr io.Writer, environ []string) int {
	a := newApp(stdin, stdout, stderr, environ)
	root := a.newRootCommand()
	root.SetArgs(argv)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	fmt.Fprintln(stderr, "Error:", err)
	return exitCode(err)
}
