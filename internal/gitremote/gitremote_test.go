package gitremote

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestParseRemotes(t *testing.T) {
	cases := []struct {
		raw    string
		host   string
		owner  string
		repo   string
		scheme string
	}{
		{"git@github.com:owner/repo.git", "github.com", "owner", "repo", "https"},
		{"https://example.com/org/project.git", "example.com", "org", "project", "https"},
		{"https://ghes.local:8443/org/project.git", "ghes.local:8443", "org", "project", "https"},
		{"http://git.example.com:8080/org/project.git", "git.example.com:8080", "org", "project", "http"},
		{"ssh://git@ghes.local:2222/org/project.git", "ghes.local:2222", "org", "project", "https"},
		{"git://mirror.example.org/org/project", "mirror.example.org", "org", "project", "https"},
		{"https://deploy@github.example.com/team/repo/", "github.example.com", "team", "repo", "https"},
		{"https://gitlab.com/group/sub/repo.git", "gitlab.com", "group/sub", "repo", "https"},
		{"https://example.com/org\\repo.git", "example.com", "org", "repo", "https"},
	}
	for _, tc := range cases {
		info, err := Parse(tc.raw)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", tc.raw, err)
		}
		if info.Host != tc.host || info.Owner != tc.owner || info.Repo != tc.repo {
			t.Fatalf("Parse(%q) = %+v", tc.raw, info)
		}
		if got := info.NormalizedScheme(); got != tc.scheme {
			t.Fatalf("Parse(%q) scheme = %s want %s", tc.raw, got, tc.scheme)
		}
	}
}

func TestParseRejects(t *testing.T) {
	for _, raw := range []string{"", "git@github.com", "ftp://example.com/a/b", "https://example.com/onlyone", "/local/path/repo"} {
		if _, err := Parse(raw); err == nil {
			t.Fatalf("Parse(%q) should fail", raw)
		}
	}
}

func TestWebURLAndBlobPath(t *testing.T) {
	info := Info{Host: "example.com/", Owner: "my org", Repo: "repo"}
	if got := info.WebURL(); got != "https://example.com/my%20org/repo" {
		t.Fatalf("WebURL mismatch: %s", got)
	}
	nested := Info{Host: "gitlab.com", Owner: "group/sub", Repo: "repo"}
	if got := nested.WebURL(); got != "https://gitlab.com/group/sub/repo" {
		t.Fatalf("subgroup WebURL mismatch: %s", got)
	}
	if got := BlobPath("dir/sub dir/file name.go"); got != "dir/sub%20dir/file%20name.go" {
		t.Fatalf("BlobPath mismatch: %s", got)
	}
}

func TestDetectRespectsRemoteEnv(t *testing.T) {
	t.Setenv("SIGLOC_LINK_REMOTE", "upstream")
	info, err := Detect(context.Background(), fakeGit{}, ".")
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if info.Host != "github.example.com:2222" || info.Owner != "team" || info.Repo != "demo" {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestDetectAppliesSchemeOverride(t *testing.T) {
	t.Setenv("SIGLOC_LINK_REMOTE", "")
	t.Setenv("SIGLOC_LINK_SCHEME", "http")
	info, err := Detect(context.Background(), fakeGit{}, ".")
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if info.NormalizedScheme() != "http" {
		t.Fatalf("scheme override not applied: %+v", info)
	}
}

func TestNormalizedSchemeIgnoresInvalidOverride(t *testing.T) {
	t.Setenv("SIGLOC_LINK_SCHEME", "ftp")
	if got := (Info{Scheme: "http"}).NormalizedScheme(); got != "http" {
		t.Fatalf("invalid override should be ignored, got %s", got)
	}
}

func TestDetectMissingRemote(t *testing.T) {
	t.Setenv("SIGLOC_LINK_REMOTE", "nope")
	_, err := Detect(context.Background(), fakeGit{}, ".")
	if err == nil || !strings.Contains(err.Error(), "remote.nope.url") {
		t.Fatalf("expected error naming the key, got %v", err)
	}
}

func TestHead(t *testing.T) {
	sha, err := Head(context.Background(), fakeGit{}, ".")
	if err != nil {
		t.Fatalf("Head failed: %v", err)
	}
	if sha != strings.Repeat("ab", 20) {
		t.Fatalf("unexpected sha: %s", sha)
	}
	if _, err := Head(context.Background(), fakeGit{head: "not-a-sha"}, "."); err == nil {
		t.Fatal("garbage rev-parse output should fail")
	}
}

type fakeGit struct {
	head string
}

func (f fakeGit) Run(_ context.Context, _ string, name string, args ...string) ([]byte, []byte, error) {
	if name != "git" {
		return nil, nil, fmt.Errorf("unexpected command: %s", name)
	}
	switch strings.Join(args, " ") {
	case "rev-parse --verify HEAD":
		if f.head != "" {
			return []byte(f.head + "\n"), nil, nil
		}
		return []byte(strings.Repeat("AB", 20) + "\n"), nil, nil
	case "config --get remote.origin.url":
		return []byte("https://github.com/example/default.git\n"), nil, nil
	case "config --get remote.upstream.url":
		return []byte("ssh://git@github.example.com:2222/team/demo.git\n"), nil, nil
	default:
		return nil, []byte("exit status 1"), errors.New("exit status 1")
	}
}
