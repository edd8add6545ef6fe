// Package uploads writes client-supplied files into the uploads directory.
package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/viant/afs"
	"go.uber.org/zap"
)

const (
	dirMode  = 0o755
	fileMode = 0o644
)

var (
	// ErrEmptyFilename is returned when no filename was supplied.
	ErrEmptyFilename = errors.New("filename is empty")

	// ErrInvalidFilename is returned for names that would resolve outside
	// the uploads directory.
	ErrInvalidFilename = errors.New("invalid filename")
)

// Receiver stores uploaded files under a single directory.
type Receiver struct {
	fs     afs.Service
	dir    string
	logger *zap.Logger
}

// New returns a Receiver rooted at dir, creating the directory if needed.
func New(ctx context.Context, dir string, logger *zap.Logger) (*Receiver, error) {
	if dir == "" {
		return nil, errors.New("uploads directory is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", dir, err)
	}

	fs := afs.New()
	ok, err := fs.Exists(ctx, abs)
	if err != nil {
		return nil, fmt.Errorf("checking %s: %w", abs, err)
	}
	if !ok {
		if err := fs.Create(ctx, abs, dirMode, true); err != nil {
			return nil, fmt.Errorf("creating %s: %w", abs, err)
		}
		logger.Info("created uploads directory", zap.String("dir", abs))
	}
	return &Receiver{fs: fs, dir: abs, logger: logger}, nil
}

// Dir returns the absolute uploads directory.
func (r *Receiver) Dir() string { return r.dir }

// Save writes the contents of src to <dir>/<filename>, replacing any
// existing file of the same name, and returns the written path.
func (r *Receiver) Save(ctx context.Context, filename string, src io.Reader) (string, error) {
	if filename == "" {
		return "", ErrEmptyFilename
	}
	if err := validateName(filename); err != nil {
		return "", err
	}

	dest := filepath.Join(r.dir, filename)
	if err := r.fs.Upload(ctx, dest, fileMode, src); err != nil {
		return "", fmt.Errorf("writing %s: %w", dest, err)
	}
	r.logger.Debug("file saved", zap.String("path", dest))
	return dest, nil
}

func validateName(name string) error {
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return fmt.Errorf("%w: %q", ErrInvalidFilename, name)
	}
	return nil
}
