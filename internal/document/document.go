// Package document turns stored files into text chunks ready for indexing.
//
// A Loaders registry maps a data type tag ("pdf_file", "text_file") to the
// Loader that extracts plain text from a file location. Files are read
// through viant/afs, so a location may be a local path or any URL afs
// understands. A Splitter then cuts the text into overlapping chunks.
package document

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/viant/afs"
)

// DataType tags the kind of source a file holds.
type DataType string

// Supported data types.
const (
	DataTypePDF  DataType = "pdf_file"
	DataTypeText DataType = "text_file"
)

var (
	// ErrUnsupportedDataType is returned for a data type with no loader.
	ErrUnsupportedDataType = errors.New("unsupported data type")

	// ErrEmptyDocument is returned when a file yields no text.
	ErrEmptyDocument = errors.New("document contains no text")
)

// Loader extracts plain text from the file at location.
type Loader interface {
	Load(ctx context.Context, location string) (string, error)
}

// Loaders dispatches to a Loader by data type.
type Loaders struct {
	byType map[DataType]Loader
}

// NewLoaders returns a registry with the PDF and text loaders installed,
// both reading through fs. A nil fs uses afs.New().
func NewLoaders(fs afs.Service) *Loaders {
	if fs == nil {
		fs = afs.New()
	}
	return &Loaders{byType: map[DataType]Loader{
		DataTypePDF:  &pdfLoader{fs: fs},
		DataTypeText: &textLoader{fs: fs},
	}}
}

// Register installs or replaces the loader for a data type.
func (l *Loaders) Register(dataType DataType, loader Loader) {
	l.byType[dataType] = loader
}

// Load extracts text from location using the loader for dataType.
func (l *Loaders) Load(ctx context.Context, dataType DataType, location string) (string, error) {
	loader, ok := l.byType[dataType]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedDataType, dataType)
	}
	text, err := loader.Load(ctx, location)
	if err != nil {
		return "", err
	}
	text = clean(text)
	if text == "" {
		return "", fmt.Errorf("%s: %w", location, ErrEmptyDocument)
	}
	return text, nil
}

// clean collapses horizontal whitespace runs and drops blank lines.
func clean(text string) string {
	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
