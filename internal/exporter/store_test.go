package exporter

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	assert.Equal(t, "Acme_Widgets_12", Sanitize("Acme/Widgets/12"))
	assert.Equal(t, "a_b", Sanitize("a\x00b"))
	assert.Equal(t, "Zoë Müller", Sanitize("Zoë Müller"))
}

func TestWriteJSONKeepsKeyOrderAndIndents(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.WriteJSON("a.json", []byte(`{"zeta":1,"alpha":{"b":[1,2]}}`), false))
	b, err := os.ReadFile(s.Path("a.json"))
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"zeta\": 1,\n    \"alpha\": {\n        \"b\": [\n            1,\n            2\n        ]\n    }\n}", string(b))
}

func TestWriteJSONEscaping(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	raw := []byte(`{"name":"Zoë 😀"}`)
	require.NoError(t, s.WriteJSON("ascii.json", raw, true))
	require.NoError(t, s.WriteJSON("utf8.json", raw, false))

	ascii, _ := os.ReadFile(s.Path("ascii.json"))
	assert.Contains(t, string(ascii), `"Zo\u00eb \ud83d\ude00"`)

	utf8, _ := os.ReadFile(s.Path("utf8.json"))
	assert.Contains(t, string(utf8), `"Zoë 😀"`)
}

func TestWriteJSONRejectsInvalidDocument(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, s.WriteJSON("bad.json", []byte(`{"a":`), false))
	assert.False(t, s.Exists("bad.json"))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestWriteStreamLeavesNothingOnFailure(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	require.NoError(t, err)

	_, err = s.WriteStream("resume.pdf", failingReader{})
	assert.Error(t, err)
	assert.False(t, s.Exists("resume.pdf"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	n, err := s.WriteStream("ok.txt", strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.True(t, s.Exists("ok.txt"))
}
