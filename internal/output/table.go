package output

import (
	"io"
	"strconv"
	"strings"

	"github.com/phyten/sigloc/internal/engine"
	"github.com/phyten/sigloc/internal/model"
	"github.com/phyten/sigloc/internal/termcolor"
	"github.com/phyten/sigloc/internal/textutil"
)

// TableOptions は人間向けの表出力の見た目を決めます。
type TableOptions struct {
	Color termcolor.Settings
	// MaxFileWidth が正なら FILE 列をこの幅に収め、先頭側を "…" で省略します。
	MaxFileWidth int
}

const columnGap = "  "

// WriteTable は表示幅を揃えた表を書き出します。数値列は右寄せです。
func WriteTable(w io.Writer, files []engine.FileResult, sel FieldSelection, opts TableOptions) error {
	rows := make([][]string, 0, len(files))
	for _, fr := range files {
		row := RowValues(fr, sel.Fields)
		for i, f := range sel.Fields {
			if f.Key == "file" && opts.MaxFileWidth > 0 {
				row[i] = textutil.TruncateLeftByWidth(row[i], opts.MaxFileWidth, "…")
			}
		}
		rows = append(rows, row)
	}
	paint := func(col int, row int, cell string) string {
		if !opts.Color.Enabled {
			return cell
		}
		switch sel.Fields[col].Key {
		case "lang":
			return opts.Color.Paint(termcolor.LangStyle(files[row].Lang, opts.Color.Scheme, opts.Color.Profile), cell)
		case "ratio":
			return opts.Color.Paint(termcolor.RatioStyle(files[row].Ratio(), opts.Color.Scheme, opts.Color.Profile), cell)
		case "code", "comment", "blank":
			return paintKind(opts.Color, model.LineKind(sel.Fields[col].Key), cell)
		}
		return cell
	}
	return writeAligned(w, sel.Fields, rows, nil, paint, opts.Color)
}

var summaryFields = []Field{
	{Key: "lang", Header: "LANG"},
	{Key: "files", Header: "FILES"},
	{Key: "lines", Header: "LINES"},
	{Key: "code", Header: "CODE"},
	{Key: "comment", Header: "COMMENT"},
	{Key: "blank", Header: "BLANK"},
	{Key: "ratio", Header: "RATIO"},
}

// WriteSummary は言語ごとの合計と最終行の TOTAL を表で書き出します。
func WriteSummary(w io.Writer, res *engine.Result, opts TableOptions) error {
	rows := make([][]string, 0, len(res.Languages))
	for _, s := range res.Languages {
		rows = append(rows, []string{
			s.Lang,
			strconv.Itoa(s.Files),
			strconv.Itoa(s.Lines),
			strconv.Itoa(s.Code),
			strconv.Itoa(s.Comment),
			strconv.Itoa(s.Blank),
			FormatRatio(s.Ratio()),
		})
	}
	footer := []string{
		"TOTAL",
		strconv.Itoa(res.FileCount),
		strconv.Itoa(res.Totals.Lines),
		strconv.Itoa(res.Totals.Code),
		strconv.Itoa(res.Totals.Comment),
		strconv.Itoa(res.Totals.Blank),
		FormatRatio(res.Totals.Ratio()),
	}
	paint := func(col int, row int, cell string) string {
		if !opts.Color.Enabled {
			return cell
		}
		s := res.Languages[row]
		switch col {
		case 0:
			return opts.Color.Paint(termcolor.LangStyle(s.Lang, opts.Color.Scheme, opts.Color.Profile), cell)
		case 3, 4, 5:
			return paintKind(opts.Color, model.LineKind(summaryFields[col].Key), cell)
		case 6:
			return opts.Color.Paint(termcolor.RatioStyle(s.Ratio(), opts.Color.Scheme, opts.Color.Profile), cell)
		}
		return cell
	}
	return writeAligned(w, summaryFields, rows, footer, paint, opts.Color)
}

// paintKind colors a non-zero count by its line kind. Zeros stay plain.
func paintKind(color termcolor.Settings, kind model.LineKind, cell string) string {
	if strings.TrimSpace(cell) == "0" {
		return cell
	}
	return color.Paint(termcolor.KindStyle(kind, color.Scheme, color.Profile), cell)
}

func writeAligned(w io.Writer, fields []Field, rows [][]string, footer []string, paint func(col, row int, cell string) string, color termcolor.Settings) error {
	widths := make([]int, len(fields))
	for i, f := range fields {
		widths[i] = textutil.VisibleWidth(f.Header)
	}
	measure := func(row []string) {
		for i, cell := range row {
			if cw := textutil.VisibleWidth(cell); cw > widths[i] {
				widths[i] = cw
			}
		}
	}
	for _, row := range rows {
		measure(row)
	}
	if footer != nil {
		measure(footer)
	}
	numeric := func(i int) bool { return fields[i].Key == "files" || isNumeric(fields[i].Key) }
	line := func(cells []string, style func(i int, padded string) string) string {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			var padded string
			switch {
			case numeric(i):
				padded = textutil.PadLeft(cell, widths[i])
			case i == len(cells)-1:
				padded = cell
			default:
				padded = textutil.PadRight(cell, widths[i])
			}
			parts[i] = style(i, padded)
		}
		return strings.TrimRight(strings.Join(parts, columnGap), " ") + "\n"
	}

	header := line(Headers(fields), func(_ int, s string) string { return s })
	if color.Enabled {
		header = color.Paint(termcolor.HeaderStyle(), strings.TrimSuffix(header, "\n")) + "\n"
	}
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	for r, row := range rows {
		out := line(row, func(i int, s string) string { return paint(i, r, s) })
		if _, err := io.WriteString(w, out); err != nil {
			return err
		}
	}
	if footer != nil {
		out := line(footer, func(_ int, s string) string { return s })
		if color.Enabled {
			out = color.Paint(termcolor.Style{Bold: true}, strings.TrimSuffix(out, "\n")) + "\n"
		}
		if _, err := io.WriteString(w, out); err != nil {
			return err
		}
	}
	return nil
}
