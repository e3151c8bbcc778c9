package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/phyten/sigloc/internal/execx"
)

// errNotRepo は git 管理外のディレクトリであることを示します。
var errNotRepo = errors.New("not a git repository")

func gitListArgs(pathspecs []string) []string {
	args := []string{"-c", "core.quotePath=false", "ls-files", "-z", "--cached", "--others", "--exclude-standard", "--"}
	return append(args, pathspecs...)
}

// gitListFiles は追跡中および未追跡（.gitignore 対象外）のファイルを repo 相対で返します。
func gitListFiles(ctx context.Context, runner execx.Runner, repo string, pathspecs []string) ([]string, error) {
	args := gitListArgs(pathspecs)
	stdout, stderr, err := runner.Run(ctx, repo, "git", args...)
	if err != nil {
		if execx.IsNotFound(err) {
			return nil, fmt.Errorf("git: %w", err)
		}
		if execx.ExitCode(err) == 128 && bytes.Contains(stderr, []byte("not a git repository")) {
			return nil, errNotRepo
		}
		return nil, &execx.CommandError{Name: "git", Args: args, Stderr: string(stderr), Err: err}
	}
	seen := make(map[string]struct{})
	var files []string
	for _, raw := range bytes.Split(stdout, []byte{0}) {
		if len(raw) == 0 {
			continue
		}
		f := filepath.ToSlash(string(raw))
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		files = append(files, f)
	}
	sort.Strings(files)
	return files, nil
}

// walkListFiles は git を使わずにディレクトリを走査します。隠しディレクトリ（.git 等）は辿りません。
func walkListFiles(ctx context.Context, root string, filter pathFilter) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if p != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if filter.match(rel) {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// listFiles は git を優先し、使えない場合は WalkDir にフォールバックします。
func (e *Engine) listFiles(ctx context.Context) ([]string, error) {
	o := e.opts
	if !o.NoGit {
		files, err := gitListFiles(ctx, o.Runner, o.RepoDir, buildPathspecs(o.Paths, o.Excludes, o.ExcludeTypical))
		switch {
		case err == nil:
			return filterByPathRegex(files, o.PathRegexCompiled), nil
		case errors.Is(err, errNotRepo) || execx.IsNotFound(err):
			e.log.Debug("git unavailable, walking directory", "repo", o.RepoDir, "err", err)
		default:
			return nil, err
		}
	}
	files, err := walkListFiles(ctx, o.RepoDir, newPathFilter(o.Paths, o.Excludes, o.ExcludeTypical))
	if err != nil {
		return nil, err
	}
	return filterByPathRegex(files, o.PathRegexCompiled), nil
}

// Matches は rel（repo 相対、"/" 区切り）が --path / --exclude / --path-regex を満たすかを返します。
// watch のように一覧を経由せずにファイルを受け取る経路で使います。隠しディレクトリ配下は常に対象外です。
func (e *Engine) Matches(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, seg := range strings.Split(rel, "/") {
		if strings.HasPrefix(seg, ".") && seg != "." && seg != ".." {
			return false
		}
	}
	o := e.opts
	if !newPathFilter(o.Paths, o.Excludes, o.ExcludeTypical).match(rel) {
		return false
	}
	return len(filterByPathRegex([]string{rel}, o.PathRegexCompiled)) == 1
}
