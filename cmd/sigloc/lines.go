package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phyten/sigloc"
	"github.com/phyten/sigloc/internal/config"
	"github.com/phyten/sigloc/internal/engine"
	"github.com/phyten/sigloc/internal/lang"
	"github.com/phyten/sigloc/internal/model"
	"github.com/phyten/sigloc/internal/scan"
)

// sourceFlags は lines / count / clean 共通のフラグです。
type sourceFlags struct {
	lang   string
	policy string
	format string
}

func (f *sourceFlags) register(cmd *cobra.Command, withFormat bool) {
	cmd.Flags().StringVarP(&f.lang, "lang", "l", "", "language (detected from the file name when omitted)")
	cmd.Flags().StringVar(&f.policy, "policy", "", "code|strict (default from config, else code)")
	if withFormat {
		cmd.Flags().StringVarP(&f.format, "format", "f", "plain", "plain|json")
	}
}

// snippet は分類対象として読み込んだ 1 つの入力です。
type snippet struct {
	name     string
	lang     lang.Language
	policy   scan.Policy
	source   string
	registry *lang.Registry
}

func (s *snippet) options() []sigloc.Option {
	return []sigloc.Option{sigloc.WithPolicy(s.policy), sigloc.WithRegistry(s.registry)}
}

// readSnippet は引数のファイル（省略時や "-" は標準入力）を読み、言語とポリシーを決めます。
func (a *app) readSnippet(cmd *cobra.Command, argv []string, f *sourceFlags) (*snippet, error) {
	flagLayer := config.EngineConfig{
		Lang:   changedString(cmd.Flags(), "lang", f.lang),
		Policy: changedString(cmd.Flags(), "policy", f.policy),
	}
	s, err := a.loadSettings(".", flagLayer, config.UIConfig{})
	if err != nil {
		return nil, err
	}

	name := "-"
	if len(argv) == 1 {
		name = argv[0]
	}
	var raw []byte
	if name == "-" {
		raw, err = io.ReadAll(a.stdin)
	} else {
		raw, err = os.ReadFile(name)
	}
	if err != nil {
		return nil, err
	}
	data, err := engine.DecodeSource(raw)
	if err != nil {
		return nil, err
	}

	policy, err := scan.ParsePolicy(s.Engine.Policy)
	if err != nil {
		return nil, usageError(err)
	}

	var l lang.Language
	switch {
	case strings.TrimSpace(s.Engine.Lang) != "":
		l = lang.Parse(s.Engine.Lang)
		if !s.Registry.Supports(l) {
			return nil, &lang.UnsupportedLanguageError{Name: s.Engine.Lang}
		}
	case name == "-":
		return nil, usageErrorf("--lang is required when reading from stdin")
	default:
		l = s.Detector.Detect(filepath.ToSlash(name), data)
		if l == "" {
			return nil, usageErrorf("cannot detect the language of %s; pass --lang", name)
		}
	}
	a.log.Debug("classifying", "file", name, "lang", l, "policy", policy)
	return &snippet{name: name, lang: l, policy: policy, source: string(data), registry: s.Registry}, nil
}

type linesOutput struct {
	File    string       `json:"file,omitempty"`
	Lang    string       `json:"lang"`
	Policy  string       `json:"policy"`
	Indices []int        `json:"indices"`
	Count   int          `json:"count"`
	Counts  model.Counts `json:"counts"`
}

func (a *app) newLinesCommand() *cobra.Command {
	var f sourceFlags
	cmd := &cobra.Command{
		Use:   "lines [file|-]",
		Short: "Print the 0-based indices of meaningful lines",
		Example: `  sigloc lines main.go
  cat snippet.py | sigloc lines --lang python --format json`,
		Args: args(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, argv []string) error {
			format := strings.ToLower(strings.TrimSpace(f.format))
			if format != "plain" && format != "json" {
				return usageErrorf("invalid --format: %s", f.format)
			}
			sn, err := a.readSnippet(cmd, argv, &f)
			if err != nil {
				return err
			}
			records, err := sigloc.Classify(sn.lang, sn.source, sn.options()...)
			if err != nil {
				return err
			}
			indices := scan.Indices(records)
			if format == "json" {
				out := linesOutput{
					Lang:    string(sn.lang),
					Policy:  string(sn.policy),
					Indices: indices,
					Count:   len(indices),
					Counts:  model.CountRecords(records),
				}
				if sn.name != "-" {
					out.File = sn.name
				}
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			var b strings.Builder
			for _, i := range indices {
				b.WriteString(strconv.Itoa(i))
				b.WriteByte('\n')
			}
			_, err = io.WriteString(a.stdout, b.String())
			return err
		},
	}
	f.register(cmd, true)
	return cmd
}

func (a *app) newCountCommand() *cobra.Command {
	var f sourceFlags
	cmd := &cobra.Command{
		Use:   "count [file|-]",
		Short: "Print the number of meaningful lines",
		Args:  args(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, argv []string) error {
			sn, err := a.readSnippet(cmd, argv, &f)
			if err != nil {
				return err
			}
			n, err := sigloc.Count(sn.lang, sn.source, sn.options()...)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.stdout, n)
			return err
		},
	}
	f.register(cmd, false)
	return cmd
}

func (a *app) newCleanCommand() *cobra.Command {
	var f sourceFlags
	cmd := &cobra.Command{
		Use:   "clean [file|-]",
		Short: "Print the source with comments and blank lines removed",
		Args:  args(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, argv []string) error {
			sn, err := a.readSnippet(cmd, argv, &f)
			if err != nil {
				return err
			}
			cleaned, err := sigloc.Clean(sn.lang, sn.source, sn.options()...)
			if err != nil {
				return err
			}
			_, err = io.WriteString(a.stdout, cleaned)
			return err
		},
	}
	f.register(cmd, false)
	return cmd
}
