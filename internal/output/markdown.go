package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/phyten/sigloc/internal/engine"
)

// WriteMarkdownTable renders files as a GitHub Flavored Markdown table.
// Numeric columns are right-aligned.
func WriteMarkdownTable(w io.Writer, files []engine.FileResult, sel FieldSelection) error {
	headers := Headers(sel.Fields)
	if _, err := fmt.Fprintf(w, "| %s |\n", strings.Join(headers, " | ")); err != nil {
		return err
	}
	sep := make([]string, len(sel.Fields))
	for i, f := range sel.Fields {
		sep[i] = "---"
		if isNumeric(f.Key) {
			sep[i] = "---:"
		}
	}
	if _, err := fmt.Fprintf(w, "| %s |\n", strings.Join(sep, " | ")); err != nil {
		return err
	}
	for _, fr := range files {
		row := RowValues(fr, sel.Fields)
		for i := range row {
			row[i] = escapeMarkdownCell(row[i])
		}
		if _, err := fmt.Fprintf(w, "| %s |\n", strings.Join(row, " | ")); err != nil {
			return err
		}
	}
	return nil
}

func escapeMarkdownCell(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", "<br>")
	s = strings.ReplaceAll(s, "|", "\\|")
	return s
}
