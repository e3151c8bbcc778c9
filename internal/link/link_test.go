package link

import (
	"testing"

	"github.com/phyten/sigloc/internal/gitremote"
)

func TestBlob(t *testing.T) {
	gh := gitremote.Info{Host: "github.com", Owner: "owner", Repo: "repo"}
	ghes := gitremote.Info{Host: "ghes.local:8443", Owner: "team", Repo: "demo", Scheme: "http"}
	cases := []struct {
		name string
		info gitremote.Info
		ref  string
		file string
		line int
		want string
	}{
		{"with line", gh, "abc123", "src/main.go", 3, "https://github.com/owner/repo/blob/abc123/src/main.go#L3"},
		{"without line", gh, "abc123", "src/main.go", 0, "https://github.com/owner/repo/blob/abc123/src/main.go"},
		{"markdown is plain", gh, "abc123", "docs/readme.md", 10, "https://github.com/owner/repo/blob/abc123/docs/readme.md?plain=1#L10"},
		{"scheme and port", ghes, "abc123", "a b.go", 1, "http://ghes.local:8443/team/demo/blob/abc123/a%20b.go#L1"},
		{"missing ref", gh, "", "file.go", 1, ""},
		{"missing file", gh, "abc123", "", 1, ""},
		{"missing host", gitremote.Info{}, "abc123", "file.go", 1, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("SIGLOC_LINK_SCHEME", "")
			if got := Blob(tc.info, tc.ref, tc.file, tc.line); got != tc.want {
				t.Fatalf("Blob() = %s want %s", got, tc.want)
			}
		})
	}
}
