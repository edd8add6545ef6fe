package assistant

import "errors"

// ErrInvalidInput is the parent of every client input error. Handlers map
// it to 400.
var ErrInvalidInput = errors.New("invalid input")

// inputError carries the exact message shown to the client.
type inputError struct {
	msg string
}

func (e *inputError) Error() string { return e.msg }

func (e *inputError) Is(target error) bool { return target == ErrInvalidInput }

// Client input errors.
var (
	ErrNoFilePart      error = &inputError{msg: "No file part in the request"}
	ErrNoFileSelected  error = &inputError{msg: "No file selected for uploading"}
	ErrNoQuestion      error = &inputError{msg: "No question provided"}
	ErrInvalidFilename error = &inputError{msg: "Invalid file name"}
)

// DependencyError reports a failure in an external collaborator (file
// storage, document indexing, answer generation, relevance scoring).
type DependencyError struct {
	// Op names the failed step: save, index, query or relevance.
	Op  string
	Err error
}

func (e *DependencyError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *DependencyError) Unwrap() error { return e.Err }
