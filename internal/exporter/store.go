package exporter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// ErrStoreUnavailable is returned when the save directory cannot take new files.
var ErrStoreUnavailable = errors.New("save directory unavailable")

// Store writes export files into one directory.
type Store struct {
	dir string
}

// NewStore creates the directory when needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create save directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory files are written to.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the full path of name inside the store.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Exists reports whether name is already present.
func (s *Store) Exists(name string) bool {
	_, err := os.Stat(s.Path(name))
	return err == nil
}

// WriteJSON writes raw re-indented with four spaces, keeping key order.
// With asciiOnly set, every non-ASCII character is written as a \u escape.
func (s *Store) WriteJSON(name string, raw json.RawMessage, asciiOnly bool) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "    "); err != nil {
		return fmt.Errorf("failed to format %s: %w", name, err)
	}
	b := buf.Bytes()
	if asciiOnly {
		b = escapeNonASCII(b)
	}
	return s.write(name, bytes.NewReader(b))
}

// WriteStream copies r into name. Nothing is left behind when the copy fails.
func (s *Store) WriteStream(name string, r io.Reader) (int64, error) {
	var n int64
	err := s.writeFunc(name, func(f *os.File) error {
		var err error
		n, err = io.Copy(f, r)
		return err
	})
	return n, err
}

func (s *Store) write(name string, r io.Reader) error {
	_, err := s.WriteStream(name, r)
	return err
}

func (s *Store) writeFunc(name string, fill func(*os.File) error) error {
	final := s.Path(name)
	tmp, err := os.CreateTemp(s.dir, ".partial-*")
	if err != nil {
		return fmt.Errorf("%w: failed to create %s: %w", ErrStoreUnavailable, name, err)
	}
	defer os.Remove(tmp.Name())

	if err := fill(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), final); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// Sanitize makes s safe as part of a file name by replacing path separators
// and NUL bytes with underscores.
func Sanitize(s string) string {
	return strings.NewReplacer("/", "_", "\x00", "_").Replace(s)
}

// escapeNonASCII rewrites every rune above 0x7f as \uXXXX, using surrogate
// pairs outside the basic plane. Non-ASCII bytes only occur inside JSON
// strings, so the document stays valid.
func escapeNonASCII(b []byte) []byte {
	var out bytes.Buffer
	out.Grow(len(b))
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		b = b[size:]
		if r < utf8.RuneSelf {
			out.WriteRune(r)
			continue
		}
		if r >= 0x10000 {
			r1, r2 := utf16.EncodeRune(r)
			fmt.Fprintf(&out, `\u%04x\u%04x`, r1, r2)
			continue
		}
		fmt.Fprintf(&out, `\u%04x`, r)
	}
	return out.Bytes()
}
