package output

import (
	"fmt"
	"io"

	"github.com/phyten/sigloc/internal/engine"
	engineopts "github.com/phyten/sigloc/internal/engine/opts"
)

// Options は Write の出力形式と列・並び順です。
type Options struct {
	Format string
	Fields FieldSelection
	Sort   SortSpec
	Table  TableOptions
	// Summary が true なら table 形式でファイル表の後に言語別の合計を付けます。
	Summary bool
	// SummaryOnly は table 形式でファイル表を省き、合計だけを出します。
	SummaryOnly bool
}

// Write renders res in the requested format. res.Files is sorted in place.
func Write(w io.Writer, res *engine.Result, opts Options) error {
	format, err := engineopts.NormalizeOutput(opts.Format)
	if err != nil {
		return err
	}
	if len(opts.Fields.Fields) == 0 {
		opts.Fields = DefaultFields(res)
	}
	ApplySort(res.Files, opts.Sort)

	switch format {
	case "json":
		return WriteJSON(w, res)
	case "ndjson":
		return WriteNDJSON(w, res.Files)
	case "csv":
		return WriteCSV(w, res.Files, opts.Fields)
	case "tsv":
		return WriteTSV(w, res.Files, opts.Fields)
	case "markdown":
		return WriteMarkdownTable(w, res.Files, opts.Fields)
	case "table":
		if !opts.SummaryOnly {
			if err := WriteTable(w, res.Files, opts.Fields, opts.Table); err != nil {
				return err
			}
		}
		if opts.Summary || opts.SummaryOnly {
			if !opts.SummaryOnly {
				if _, err := io.WriteString(w, "\n"); err != nil {
					return err
				}
			}
			return WriteSummary(w, res, opts.Table)
		}
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteErrors は Result.Errors を "file: stage: message" 形式で書き出します（通常は stderr）。
func WriteErrors(w io.Writer, res *engine.Result) error {
	for _, ie := range res.Errors {
		if _, err := fmt.Fprintf(w, "%s: %s: %s\n", ie.File, ie.Stage, ie.Message); err != nil {
			return err
		}
	}
	return nil
}
