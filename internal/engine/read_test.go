package engine

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestReadSource(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, data []byte) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, data, 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		return p
	}

	plain := write("plain.go", []byte("package a\n"))
	if got, err := readSource(plain, 0); err != nil || string(got) != "package a\n" {
		t.Fatalf("plain: got %q err %v", got, err)
	}

	invalid := write("bad.go", []byte("x := \"\xff\xfe\"\n"))
	if got, err := readSource(invalid, 0); err != nil || len(got) != 10 {
		t.Fatalf("invalid utf-8 must pass through byte-wise: got %q err %v", got, err)
	}

	u16be := write("be.py", []byte{0xFE, 0xFF, 0, 'x', 0, '\n'})
	if got, err := readSource(u16be, 0); err != nil || string(got) != "x\n" {
		t.Fatalf("utf-16be: got %q err %v", got, err)
	}

	bin := write("bin.dat", []byte{'a', 0, 'b'})
	if _, err := readSource(bin, 0); !errors.Is(err, errSkipped) {
		t.Fatalf("binary should be skipped, got %v", err)
	}

	if _, err := readSource(filepath.Join(dir, "missing.go"), 0); !errors.Is(err, errSkipped) {
		t.Fatalf("vanished file should be skipped, got %v", err)
	}

	_, err := readSource(plain, 4)
	var se *sizeError
	if !errors.As(err, &se) || se.size != 10 || se.max != 4 {
		t.Fatalf("expected sizeError, got %v", err)
	}
}
