package document

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoaders_Text(t *testing.T) {
	path := writeFile(t, "policy.txt", "Annual   leave\tis 25 days.\n\n\nSick leave is separate.\n")

	text, err := NewLoaders(nil).Load(context.Background(), DataTypeText, path)
	require.NoError(t, err)
	assert.Equal(t, "Annual leave is 25 days.\nSick leave is separate.", text)
}

func TestLoaders_PDFRejectsNonPDF(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"png bytes", "photo.png", "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01IDATx\x9cc\x00\x00\x00IEND\xaeB`\x82"},
		{"plain text", "notes.pdf", "\x00\x01Remote work policy\x02 applies to all staff"},
		{"truncated pdf", "cut.pdf", "%PDF-1.4\n1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\nstream\nBT (Leave) Tj ET\nendstream\n%%EOF"},
		{"empty", "empty.pdf", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)

			text, err := NewLoaders(nil).Load(context.Background(), DataTypePDF, path)
			assert.ErrorIs(t, err, ErrUnreadablePDF)
			assert.Empty(t, text)
		})
	}
}

func TestLoaders_Empty(t *testing.T) {
	path := writeFile(t, "blank.txt", "  \n\t\n")

	_, err := NewLoaders(nil).Load(context.Background(), DataTypeText, path)
	assert.ErrorIs(t, err, ErrEmptyDocument)
}

func TestLoaders_Unsupported(t *testing.T) {
	_, err := NewLoaders(nil).Load(context.Background(), DataType("youtube_video"), "x")
	assert.ErrorIs(t, err, ErrUnsupportedDataType)
}

func TestLoaders_MissingFile(t *testing.T) {
	_, err := NewLoaders(nil).Load(context.Background(), DataTypePDF, filepath.Join(t.TempDir(), "nope.pdf"))
	assert.Error(t, err)
}

type stubLoader string

func (s stubLoader) Load(context.Context, string) (string, error) { return string(s), nil }

func TestLoaders_Register(t *testing.T) {
	l := NewLoaders(nil)
	l.Register("web_page", stubLoader("<p>hi</p>"))

	text, err := l.Load(context.Background(), "web_page", "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "<p>hi</p>", text)
}

func TestExtractPDFText_Empty(t *testing.T) {
	out, err := extractPDFText(nil)
	assert.ErrorIs(t, err, ErrUnreadablePDF)
	assert.Nil(t, out)
}

func TestSplitter(t *testing.T) {
	s, err := NewSplitter(50, 10)
	require.NoError(t, err)

	text := strings.Repeat("Employees must submit timesheets weekly. ", 10)
	chunks, err := s.Split(text)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.NotEmpty(t, c)
		assert.LessOrEqual(t, len(c), 50)
	}
}

func TestSplitter_ShortText(t *testing.T) {
	s, err := NewSplitter(0, -1)
	require.NoError(t, err)

	chunks, err := s.Split("One short paragraph.")
	require.NoError(t, err)
	assert.Equal(t, []string{"One short paragraph."}, chunks)
}

func TestNewSplitter_OverlapTooLarge(t *testing.T) {
	_, err := NewSplitter(100, 100)
	assert.Error(t, err)
}
