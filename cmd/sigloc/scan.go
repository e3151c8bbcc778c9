package main

import (
	"github.com/spf13/cobra"

	"github.com/phyten/sigloc/internal/config"
	"github.com/phyten/sigloc/internal/engine"
	engineopts "github.com/phyten/sigloc/internal/engine/opts"
	"github.com/phyten/sigloc/internal/output"
	"github.com/phyten/sigloc/internal/progress"
	"github.com/phyten/sigloc/internal/termcolor"
)

type scanFlags struct {
	engineFlags
	output       string
	fields       string
	sort         string
	color        string
	progress     bool
	noProgress   bool
	summary      bool
	summaryOnly  bool
	maxFileWidth int
}

func (a *app) newScanCommand() *cobra.Command {
	var f scanFlags
	cmd := &cobra.Command{
		Use:   "scan [paths...]",
		Short: "Classify every source file in a repository",
		Long: `scan lists files with git ls-files (or a directory walk), detects each
file's language and reports code, comment and blank line counts.

Positional arguments are added to --path.`,
		Example: `  sigloc scan --exclude-typical --summary
  sigloc scan internal cmd -o json --with-indices
  sigloc scan --fields file,code,ratio --sort -code,file`,
		RunE: func(cmd *cobra.Command, argv []string) error {
			return a.runScan(cmd, argv, &f)
		},
	}
	fs := cmd.Flags()
	f.engineFlags.register(fs)
	fs.StringVarP(&f.output, "output", "o", "", "table|tsv|csv|json|ndjson|markdown")
	fs.StringVar(&f.fields, "fields", "", "comma-separated columns: file,lang,lines,code,comment,blank,ratio,indices")
	fs.StringVar(&f.sort, "sort", "", "sort keys, '-' for descending (e.g. -code,file)")
	fs.StringVar(&f.color, "color", "", "auto|always|never")
	fs.BoolVar(&f.progress, "progress", false, "force progress on stderr even when piped")
	fs.BoolVar(&f.noProgress, "no-progress", false, "disable progress")
	fs.BoolVar(&f.summary, "summary", false, "append per-language totals (table output)")
	fs.BoolVar(&f.summaryOnly, "summary-only", false, "print only per-language totals (table output)")
	fs.IntVar(&f.maxFileWidth, "max-file-width", 0, "truncate the file column to this display width (0 = unlimited)")
	return cmd
}

func (a *app) runScan(cmd *cobra.Command, argv []string, f *scanFlags) error {
	fs := cmd.Flags()
	layer := f.engineFlags.layer(fs)
	if len(argv) > 0 {
		paths := engineopts.SplitMulti(argv)
		if layer.Paths != nil {
			paths = append(*layer.Paths, paths...)
		}
		layer.Paths = &paths
	}
	layer.Output = changedString(fs, "output", f.output)
	layer.Color = changedString(fs, "color", f.color)
	uiLayer := config.UIConfig{
		Fields: changedString(fs, "fields", f.fields),
		Sort:   changedString(fs, "sort", f.sort),
	}

	s, err := a.loadSettings(f.repo, layer, uiLayer)
	if err != nil {
		return err
	}
	opts, err := a.engineOptions(s)
	if err != nil {
		return err
	}
	opts.Progress = progress.ShouldShowProgress(f.progress, f.noProgress)

	format, err := engineopts.NormalizeOutput(s.Engine.Output)
	if err != nil {
		return usageError(err)
	}
	// 未指定なら結果（indices / URL の有無）に合わせて output 側で既定列を選ぶ
	var fields output.FieldSelection
	if s.UI.Fields != "" {
		if fields, err = output.ResolveFields(s.UI.Fields, opts.WithIndices); err != nil {
			return usageError(err)
		}
	}
	sortSpec, err := output.ParseSortSpec(s.UI.Sort)
	if err != nil {
		return usageError(err)
	}
	color, err := termcolor.Resolve(s.Engine.Color, a.stdoutFile(), a.env)
	if err != nil {
		return usageError(err)
	}
	if f.maxFileWidth < 0 {
		return usageErrorf("--max-file-width must be >= 0")
	}

	res, err := engine.Run(cmd.Context(), opts)
	if err != nil {
		return err
	}
	if err := output.Write(a.stdout, res, output.Options{
		Format:      format,
		Fields:      fields,
		Sort:        sortSpec,
		Table:       output.TableOptions{Color: color, MaxFileWidth: f.maxFileWidth},
		Summary:     f.summary,
		SummaryOnly: f.summaryOnly,
	}); err != nil {
		return err
	}
	return output.WriteErrors(a.stderr, res)
}
