package execx

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
)

// Runner は外部コマンド（主に git）を実行する最小インターフェースです。テストでは差し替えます。
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (stdout []byte, stderr []byte, err error)
}

// CommandRunner は exec.CommandContext による実装です。
type CommandRunner struct{}

// Run は dir を作業ディレクトリとしてコマンドを実行し、標準出力と標準エラーを返します。
func (CommandRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// DefaultRunner は CommandRunner を返します。
func DefaultRunner() Runner {
	return CommandRunner{}
}

// IsNotFound はコマンド自体が見つからない（起動できない）エラーかを判定します。
func IsNotFound(err error) bool {
	var execErr *exec.Error
	return errors.As(err, &execErr)
}

// ExitCode は終了コードを返します。終了コードを持たないエラーでは -1 です。
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	return -1
}

// CommandError は stderr の内容を添えて失敗を報告します。
type CommandError struct {
	Name   string
	Args   []string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		return e.Name + " " + strings.Join(e.Args, " ") + ": " + e.Err.Error()
	}
	return e.Name + " " + strings.Join(e.Args, " ") + ": " + msg
}

func (e *CommandError) Unwrap() error { return e.Err }
