package output

import (
	"encoding/csv"
	"io"

	"github.com/phyten/sigloc/internal/engine"
)

// WriteCSV renders files as RFC 4180 compliant CSV (including CRLF endings).
func WriteCSV(w io.Writer, files []engine.FileResult, sel FieldSelection) error {
	writer := csv.NewWriter(w)
	writer.UseCRLF = true
	if err := writer.Write(Headers(sel.Fields)); err != nil {
		return err
	}
	for _, fr := range files {
		if err := writer.Write(RowValues(fr, sel.Fields)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
