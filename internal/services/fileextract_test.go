package services

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_TXT(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("first line\r\n\r\n\r\n  second line  \n"), 0o644))

	text, err := NewTextExtractor().Extract(path)
	require.NoError(t, err)
	assert.Equal(t, "first line\n\nsecond line", text)
}

func TestExtract_EmptyTXT(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(path, []byte("   \n  \n"), 0o644))

	_, err := NewTextExtractor().Extract(path)
	assert.Error(t, err)
}

func TestExtract_DOCX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.docx")
	f, err := os.Create(path)
	require.NoError(t, err)

	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<w:document><w:body><w:p><w:r><w:t>Hello &amp; welcome</w:t></w:r></w:p><w:p><w:r><w:t>Second paragraph</w:t></w:r></w:p></w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	text, err := NewTextExtractor().Extract(path)
	require.NoError(t, err)
	assert.Contains(t, text, "Hello & welcome")
	assert.Contains(t, text, "Second paragraph")
}

func TestExtract_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.png")
	require.NoError(t, os.WriteFile(path, []byte("not text"), 0o644))

	_, err := NewTextExtractor().Extract(path)
	assert.ErrorContains(t, err, "unsupported file type")
}
