// Package link はホスティング先（GitHub 互換）のファイル URL を作ります。
package link

import (
	"fmt"
	"strings"

	"github.com/phyten/sigloc/internal/gitremote"
)

// Blob は ref（コミット SHA）時点の file への URL を返します。line が正なら #L{line} を付けます。
// Markdown は描画結果ではなくソースを開くよう ?plain=1 を付けます。
func Blob(info gitremote.Info, ref, file string, line int) string {
	if ref == "" || file == "" || info.Host == "" {
		return ""
	}
	u := fmt.Sprintf("%s/blob/%s/%s", info.WebURL(), ref, gitremote.BlobPath(file))
	if line <= 0 {
		return u
	}
	if isMarkdown(file) {
		u += "?plain=1"
	}
	return fmt.Sprintf("%s#L%d", u, line)
}

func isMarkdown(file string) bool {
	lower := strings.ToLower(file)
	return strings.HasSuffix(lower, ".md") || strings.HasSuffix(lower, ".markdown")
}
