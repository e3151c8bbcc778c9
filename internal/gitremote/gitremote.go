// Package gitremote は git のリモート設定を読み、ホスティング先の閲覧用 URL を組み立てるための情報を返します。
package gitremote

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"regexp"
	"strings"

	"github.com/phyten/sigloc/internal/execx"
)

// Info はリモート URL から取り出したホスト・オーナー・リポジトリです。
type Info struct {
	Host   string
	Owner  string
	Repo   string
	Scheme string
}

var shaPattern = regexp.MustCompile(`^[0-9a-f]{40}([0-9a-f]{24})?$`)

// Detect は repoDir のリモート（既定は origin、SIGLOC_LINK_REMOTE で変更可）を解析します。
func Detect(ctx context.Context, runner execx.Runner, repoDir string) (Info, error) {
	if runner == nil {
		runner = execx.DefaultRunner()
	}
	remote := strings.TrimSpace(os.Getenv("SIGLOC_LINK_REMOTE"))
	if remote == "" {
		remote = "origin"
	}
	key := "remote." + remote + ".url"
	raw, err := gitOutput(ctx, runner, repoDir, "config", "--get", key)
	if err != nil {
		return Info{}, err
	}
	if raw == "" {
		return Info{}, fmt.Errorf("%s is empty", key)
	}
	return Parse(raw)
}

// Head は HEAD のコミット SHA を返します。リンクはブランチ名ではなく SHA に固定します。
func Head(ctx context.Context, runner execx.Runner, repoDir string) (string, error) {
	if runner == nil {
		runner = execx.DefaultRunner()
	}
	sha, err := gitOutput(ctx, runner, repoDir, "rev-parse", "--verify", "HEAD")
	if err != nil {
		return "", err
	}
	sha = strings.ToLower(sha)
	if !shaPattern.MatchString(sha) {
		return "", fmt.Errorf("unexpected rev-parse output: %q", sha)
	}
	return sha, nil
}

func gitOutput(ctx context.Context, runner execx.Runner, dir string, args ...string) (string, error) {
	stdout, stderr, err := runner.Run(ctx, dir, "git", args...)
	if err != nil {
		if msg := strings.TrimSpace(string(stderr)); msg != "" {
			return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, msg)
		}
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(stdout)), nil
}

// Parse は scp 形式（git@host:owner/repo.git）と ssh/git/http/https の URL を受け付けます。
// http(s) 以外はリンク生成時に https 扱いになります。
func Parse(raw string) (Info, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Info{}, errors.New("empty remote url")
	}
	if rest, ok := strings.CutPrefix(raw, "git@"); ok {
		host, p, found := strings.Cut(rest, ":")
		if !found {
			return Info{}, fmt.Errorf("invalid ssh remote: %s", raw)
		}
		return build(host, p, "")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Info{}, fmt.Errorf("invalid remote url: %w", err)
	}
	scheme := strings.ToLower(u.Scheme)
	switch scheme {
	case "ssh", "git":
		scheme = ""
	case "http", "https":
	default:
		return Info{}, fmt.Errorf("unsupported remote url: %s", raw)
	}
	p, err := url.PathUnescape(u.Path)
	if err != nil {
		return Info{}, fmt.Errorf("invalid remote path: %w", err)
	}
	return build(u.Host, p, scheme)
}

func build(host, p, scheme string) (Info, error) {
	owner, repo, err := splitPath(p)
	if err != nil {
		return Info{}, err
	}
	return Info{Host: strings.ToLower(strings.TrimSpace(host)), Owner: owner, Repo: repo, Scheme: scheme}, nil
}

// splitPath は最後の要素を repo、それより前をすべて owner とします（GitLab のサブグループ対応）。
func splitPath(p string) (string, string, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(p), "\\", "/")
	cleaned = strings.Trim(cleaned, "/")
	cleaned = strings.TrimSuffix(cleaned, ".git")
	if cleaned == "" {
		return "", "", errors.New("missing owner/repo in remote url")
	}
	segments := strings.Split(cleaned, "/")
	if len(segments) < 2 {
		return "", "", errors.New("remote url must include owner and repo")
	}
	owner, repo := strings.Join(segments[:len(segments)-1], "/"), segments[len(segments)-1]
	if owner == "" || repo == "" || strings.Contains(owner, "//") {
		return "", "", errors.New("invalid owner or repo in remote url")
	}
	return owner, repo, nil
}

// WebURL はリポジトリのトップページです。
func (i Info) WebURL() string {
	return fmt.Sprintf("%s://%s/%s/%s", i.NormalizedScheme(), strings.TrimSuffix(i.Host, "/"), BlobPath(i.Owner), url.PathEscape(i.Repo))
}

// BlobPath escapes each segment of a repo-relative path.
func BlobPath(file string) string {
	parts := strings.Split(strings.ReplaceAll(file, "\\", "/"), "/")
	for idx, part := range parts {
		parts[idx] = url.PathEscape(part)
	}
	return path.Join(parts...)
}

// NormalizedScheme は http か https を返します。SIGLOC_LINK_SCHEME が有効な値なら優先します。
func (i Info) NormalizedScheme() string {
	switch override := strings.ToLower(strings.TrimSpace(os.Getenv("SIGLOC_LINK_SCHEME"))); override {
	case "http", "https":
		return override
	}
	if strings.EqualFold(strings.TrimSpace(i.Scheme), "http") {
		return "http"
	}
	return "https"
}
