package output

import (
	"io"
	"strings"

	"github.com/phyten/sigloc/internal/engine"
)

var tsvCellReplacer = strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ", "\r", " ")

// WriteTSV は 1 行 1 ファイルのタブ区切りで出力します。セル内のタブと改行は空白に置き換えます。
func WriteTSV(w io.Writer, files []engine.FileResult, sel FieldSelection) error {
	if err := writeTSVRow(w, Headers(sel.Fields)); err != nil {
		return err
	}
	for _, fr := range files {
		if err := writeTSVRow(w, RowValues(fr, sel.Fields)); err != nil {
			return err
		}
	}
	return nil
}

func writeTSVRow(w io.Writer, cells []string) error {
	for i := range cells {
		cells[i] = tsvCellReplacer.Replace(cells[i])
	}
	_, err := io.WriteString(w, strings.Join(cells, "\t")+"\n")
	return err
}
