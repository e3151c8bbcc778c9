package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Location tells where Find picked the config file up.
type Location string

const (
	LocationNone     Location = ""
	LocationExplicit Location = "explicit"
	LocationRepo     Location = "repo"
	LocationXDG      Location = "xdg"
	LocationHome     Location = "home"
)

var (
	dotFilenames = []string{".sigloc.toml", ".sigloc.yaml", ".sigloc.yml", ".sigloc.json"}
	xdgFilenames = []string{"config.toml", "config.yaml", "config.yml", "config.json"}
)

// Find は設定ファイルを次の順に探します。
//
//  1. explicitPath（--config / SIGLOC_CONFIG）。存在しなければエラー
//  2. repoDir から上へ .sigloc.* を探す。.git のあるディレクトリ（作業ツリーの
//     ルート）で打ち切り、リポジトリ外の設定は拾わない
//  3. $XDG_CONFIG_HOME/sigloc/config.*（未設定なら ~/.config）
//  4. ~/.sigloc.*
//
// 見つからなければ ("", LocationNone, nil) を返します。
func Find(repoDir, explicitPath, xdgHome, home string) (string, Location, error) {
	if explicit := strings.TrimSpace(explicitPath); explicit != "" {
		p, err := filepath.Abs(explicit)
		if err != nil {
			return "", LocationNone, err
		}
		info, err := os.Stat(p)
		if err != nil {
			return "", LocationNone, err
		}
		if info.IsDir() {
			return "", LocationNone, fmt.Errorf("SIGLOC_CONFIG %q points to a directory", p)
		}
		return p, LocationExplicit, nil
	}

	if p, err := findInRepo(repoDir); err != nil || p != "" {
		return p, LocationRepo, err
	}

	homeDir := resolveHome(home)
	xdgRoot := strings.TrimSpace(xdgHome)
	if xdgRoot == "" && homeDir != "" {
		xdgRoot = filepath.Join(homeDir, ".config")
	}
	if xdgRoot != "" {
		if p := firstRegular(filepath.Join(xdgRoot, "sigloc"), xdgFilenames); p != "" {
			return p, LocationXDG, nil
		}
	}
	if homeDir != "" {
		if p := firstRegular(homeDir, dotFilenames); p != "" {
			return p, LocationHome, nil
		}
	}
	return "", LocationNone, nil
}

// findInRepo walks from repoDir towards the root and stops after the
// directory that holds .git. Outside any work tree it walks to "/".
func findInRepo(repoDir string) (string, error) {
	start := strings.TrimSpace(repoDir)
	if start == "" {
		start = "."
	}
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for {
		if p := firstRegular(dir, dotFilenames); p != "" {
			return p, nil
		}
		if isWorkTreeRoot(dir) {
			return "", nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// isWorkTreeRoot は .git がディレクトリでもファイル（worktree, submodule）でも true。
func isWorkTreeRoot(dir string) bool {
	_, err := os.Lstat(filepath.Join(dir, ".git"))
	return err == nil
}

func resolveHome(home string) string {
	if h := strings.TrimSpace(home); h != "" {
		return h
	}
	if h, err := os.UserHomeDir(); err == nil {
		return h
	}
	return ""
}

func firstRegular(dir string, names []string) string {
	for _, name := range names {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			return p
		}
	}
	return ""
}
