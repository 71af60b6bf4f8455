package extractor

import (
	"fmt"
	"strings"
)

// FileError records a fatal failure for one input.
type FileError struct {
	Path string
	Kind Kind
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Path, e.Kind.Label(), e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// BatchError lists the inputs that failed in a run.
type BatchError struct {
	Failures []*FileError
}

func (e *BatchError) Error() string {
	if len(e.Failures) == 1 {
		return "1 file failed: " + e.Failures[0].Error()
	}
	msgs := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		msgs[i] = f.Error()
	}
	return fmt.Sprintf("%d files failed: %s", len(e.Failures), strings.Join(msgs, "; "))
}

func (e *BatchError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}
