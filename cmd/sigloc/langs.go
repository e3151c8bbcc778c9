package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phyten/sigloc/internal/config"
	"github.com/phyten/sigloc/internal/textutil"
)

type languageInfo struct {
	Name          string   `json:"name"`
	LineComments  []string `json:"line_comments"`
	BlockComments []string `json:"block_comments"`
}

func (a *app) newLangsCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "langs",
		Short: "List supported languages and their comment syntax",
		Args:  args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			format = strings.ToLower(strings.TrimSpace(format))
			if format != "plain" && format != "json" {
				return usageErrorf("invalid --format: %s", format)
			}
			s, err := a.loadSettings(".", config.EngineConfig{}, config.UIConfig{})
			if err != nil {
				return err
			}
			var infos []languageInfo
			width := 0
			for _, l := range s.Registry.Languages() {
				rule, err := s.Registry.RulesFor(l)
				if err != nil {
					continue
				}
				info := languageInfo{Name: string(l), LineComments: append([]string{}, rule.LineComments...), BlockComments: []string{}}
				for _, bc := range rule.BlockComments {
					info.BlockComments = append(info.BlockComments, bc.Start+" "+bc.End)
				}
				infos = append(infos, info)
				width = max(width, textutil.VisibleWidth(info.Name))
			}
			if format == "json" {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{"languages": infos})
			}
			for _, info := range infos {
				syntax := append(append([]string{}, info.LineComments...), info.BlockComments...)
				line := strings.TrimRight(textutil.PadRight(info.Name, width)+"  "+strings.Join(syntax, "  "), " ")
				if _, err := fmt.Fprintln(a.stdout, line); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "plain", "plain|json")
	return cmd
}
