package extractor

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Kind is an input document type.
type Kind string

const (
	KindPDF  Kind = "pdf"
	KindEPUB Kind = "epub"
	KindTXT  Kind = "txt"
)

// ErrUnsupported is returned for inputs of an unknown type.
var ErrUnsupported = errors.New("unsupported file type")

// Label returns the upper-case name used in messages.
func (k Kind) Label() string {
	return strings.ToUpper(string(k))
}

// ParseKind parses a type name such as "epub" or ".EPUB".
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".")); k {
	case KindPDF, KindEPUB, KindTXT:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupported, s)
}

// Classify returns the kind of path from its extension. hint is used only
// when the extension is not recognized.
func Classify(path, hint string) (Kind, error) {
	if k, err := ParseKind(filepath.Ext(path)); err == nil {
		return k, nil
	}
	if hint != "" {
		return ParseKind(hint)
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupported, path)
}
