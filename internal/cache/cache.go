// Package cache stores per-file line classifications on disk, keyed by
// content, language, policy and rule fingerprint.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/phyten/sigloc/internal/model"
)

// schemaVersion is bumped whenever Payload changes shape.
const schemaVersion uint16 = 2

// Key identifies one classification result.
type Key [sha256.Size]byte

// NewKey hashes everything that can change a file's classification.
func NewKey(language, policy, fingerprint string, content []byte) Key {
	h := sha256.New()
	fmt.Fprintf(h, "sigloc/%d\x00%s\x00%s\x00%s\x00", schemaVersion, language, policy, fingerprint)
	h.Write(content)
	var k Key
	copy(k[:], h.Sum(nil))
	return k
}

func (k Key) String() string { return hex.EncodeToString(k[:]) }

// Payload is the on-disk form. Line kinds are run-length encoded: Kinds[i]
// repeats Runs[i] times, and the runs sum to Lines.
type Payload struct {
	Schema uint16   `msgpack:"s"`
	Lang   string   `msgpack:"l"`
	Lines  uint32   `msgpack:"n"`
	Kinds  []byte   `msgpack:"k"`
	Runs   []uint32 `msgpack:"r"`
}

const (
	kindBlank byte = iota
	kindComment
	kindCode
)

// Cache is safe for concurrent use: entries are written to a temp file and
// renamed into place, so readers see a whole entry or none. A nil *Cache is a
// valid no-op cache.
type Cache struct {
	dir string
}

// DefaultDir は $XDG_CACHE_HOME/sigloc（未設定なら ~/.cache/sigloc）です。
func DefaultDir() (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, "sigloc"), nil
}

// Open creates dir if needed. An empty dir means DefaultDir.
func Open(dir string) (*Cache, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("cache dir: %w", err)
		}
		dir = d
	}
	if err := os.MkdirAll(filepath.Join(dir, "lines"), 0o755); err != nil {
		return nil, fmt.Errorf("cache dir: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *Cache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *Cache) pathFor(k Key) string {
	s := k.String()
	return filepath.Join(c.dir, "lines", s[:2], s+".mp")
}

// Put writes records atomically (temp file + rename).
func (c *Cache) Put(k Key, language string, records []model.LineRecord) error {
	if c == nil {
		return nil
	}
	n, err := safecast.Conv[uint32](len(records))
	if err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	payload := Payload{Schema: schemaVersion, Lang: language, Lines: n}
	for _, r := range records {
		kind := encodeKind(r.Kind)
		if last := len(payload.Kinds) - 1; last >= 0 && payload.Kinds[last] == kind {
			payload.Runs[last]++
			continue
		}
		payload.Kinds = append(payload.Kinds, kind)
		payload.Runs = append(payload.Runs, 1)
	}
	data, err := msgpack.Marshal(&payload)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}

	p := c.pathFor(k)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// Get returns the cached records. Missing, corrupt and old-schema entries are
// misses, not errors.
func (c *Cache) Get(k Key) ([]model.LineRecord, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	data, err := os.ReadFile(c.pathFor(k))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var payload Payload
	if err := msgpack.Unmarshal(data, &payload); err != nil {
		return nil, false, nil
	}
	if payload.Schema != schemaVersion {
		return nil, false, nil
	}
	records, ok := expandRuns(payload)
	if !ok {
		return nil, false, nil
	}
	return records, true, nil
}

// Clear removes every cached entry.
func (c *Cache) Clear() error {
	if c == nil {
		return nil
	}
	if err := os.RemoveAll(filepath.Join(c.dir, "lines")); err != nil {
		return err
	}
	return os.MkdirAll(filepath.Join(c.dir, "lines"), 0o755)
}

// expandRuns rejects payloads whose runs do not add up to Lines.
func expandRuns(p Payload) ([]model.LineRecord, bool) {
	n, err := safecast.Conv[int](p.Lines)
	if err != nil || len(p.Kinds) != len(p.Runs) {
		return nil, false
	}
	records := make([]model.LineRecord, 0, n)
	for i, kind := range p.Kinds {
		run, err := safecast.Conv[int](p.Runs[i])
		if err != nil || run == 0 || len(records)+run > n {
			return nil, false
		}
		k := decodeKind(kind)
		for j := 0; j < run; j++ {
			records = append(records, model.LineRecord{Index: len(records), Kind: k})
		}
	}
	if len(records) != n {
		return nil, false
	}
	return records, true
}

func encodeKind(k model.LineKind) byte {
	switch k {
	case model.LineCode:
		return kindCode
	case model.LineComment:
		return kindComment
	default:
		return kindBlank
	}
}

func decodeKind(b byte) model.LineKind {
	switch b {
	case kindCode:
		return model.LineCode
	case kindComment:
		return model.LineComment
	default:
		return model.LineBlank
	}
}
