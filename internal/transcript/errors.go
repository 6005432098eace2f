package transcript

import (
	"errors"
	"fmt"
)

// ParseErrorKind discriminates parse failures callers may branch on.
type ParseErrorKind string

const (
	// KindEmptyDocument means the uploaded bytes yielded no extractable
	// text, whatever the container format claimed to be.
	KindEmptyDocument ParseErrorKind = "EMPTY_DOCUMENT"
)

// ParseError reports why a document could not be turned into a record.
type ParseError struct {
	Kind ParseErrorKind
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse transcript: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("parse transcript: %s", e.Kind)
}

// Unwrap exposes the cause for errors.Is and errors.As chains.
func (e *ParseError) Unwrap() error { return e.Err }

// IsEmptyDocument reports whether err wraps an empty-document parse failure.
func IsEmptyDocument(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe) && pe.Kind == KindEmptyDocument
}

func emptyDocumentError(err error) error {
	return &ParseError{Kind: KindEmptyDocument, Err: err}
}
