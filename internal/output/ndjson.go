package output

import (
	"encoding/json"
	"io"

	"github.com/phyten/sigloc/internal/engine"
)

// WriteNDJSON streams one FileResult object per line.
func WriteNDJSON(w io.Writer, files []engine.FileResult) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, fr := range files {
		if err := enc.Encode(fr); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON は Result 全体（files, languages, totals, errors）を整形して書き出します。
func WriteJSON(w io.Writer, res *engine.Result) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
