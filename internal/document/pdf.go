package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
	"github.com/viant/afs"
)

// ErrUnreadablePDF is returned when a pdf_file cannot be parsed as a PDF.
var ErrUnreadablePDF = errors.New("unreadable pdf")

type pdfLoader struct {
	fs afs.Service
}

func (p *pdfLoader) Load(ctx context.Context, location string) (string, error) {
	data, err := p.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", location, err)
	}
	text, err := extractPDFText(data)
	if err != nil {
		return "", fmt.Errorf("%s: %w", location, err)
	}
	return string(text), nil
}

// extractPDFText returns the plain text of a PDF. A PDF without a text layer
// yields empty output; Loaders.Load reports that as ErrEmptyDocument.
func extractPDFText(data []byte) (out []byte, err error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrUnreadablePDF)
	}
	// The parser panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: %v", ErrUnreadablePDF, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadablePDF, err)
	}
	reader, err := r.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadablePDF, err)
	}
	out, err = io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadablePDF, err)
	}
	return out, nil
}
