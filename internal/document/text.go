package document

import (
	"context"
	"fmt"
	"strings"

	"github.com/viant/afs"
)

type textLoader struct {
	fs afs.Service
}

func (t *textLoader) Load(ctx context.Context, location string) (string, error) {
	data, err := t.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", location, err)
	}
	return strings.ToValidUTF8(string(data), ""), nil
}
