package engine

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// errSkipped は集計対象外（バイナリ・消失）として数えるだけのファイルです。
var errSkipped = errors.New("skipped")

// sizeError は MaxFileBytes を超えたファイルです。
type sizeError struct {
	size, max int64
}

func (e *sizeError) Error() string {
	return fmt.Sprintf("file size %d exceeds max_file_bytes %d", e.size, e.max)
}

// readSource はファイルを読み、BOM 付き UTF-16/UTF-8 を UTF-8 に揃えて返します。
// BOM の無い入力はそのまま返すので、不正な UTF-8 もバイト単位で分類されます。
func readSource(path string, maxBytes int) ([]byte, error) {
	st, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errSkipped
		}
		return nil, err
	}
	if !st.Mode().IsRegular() {
		return nil, errSkipped
	}
	if maxBytes > 0 && st.Size() > int64(maxBytes) {
		return nil, &sizeError{size: st.Size(), max: int64(maxBytes)}
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data, err := decodeBOM(raw)
	if err != nil {
		return nil, err
	}
	if bytes.IndexByte(data, 0) >= 0 {
		return nil, errSkipped
	}
	return data, nil
}

func decodeBOM(raw []byte) ([]byte, error) {
	if !hasBOM(raw) {
		return raw, nil
	}
	out, _, err := transform.Bytes(unicode.BOMOverride(transform.Nop), raw)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return out, nil
}

func hasBOM(b []byte) bool {
	return bytes.HasPrefix(b, []byte{0xEF, 0xBB, 0xBF}) ||
		bytes.HasPrefix(b, []byte{0xFE, 0xFF}) ||
		bytes.HasPrefix(b, []byte{0xFF, 0xFE})
}

// DecodeSource は走査を経ない入力（CLI の標準入力など）に同じ BOM 処理を適用します。
func DecodeSource(raw []byte) ([]byte, error) { return decodeBOM(raw) }
