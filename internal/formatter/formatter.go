// Package formatter rewrites PS documents into canonical layout.
package formatter

import (
	"strings"

	"github.com/mcncl/psconv/internal/errors"
	"github.com/mcncl/psconv/internal/parser"
	"github.com/mcncl/psconv/internal/writer"
)

// Formatter rewrites PS documents into their canonical layout
type Formatter struct {
	indent int
}

// NewFormatter creates a new Formatter using indent spaces per level
func NewFormatter(indent int) *Formatter {
	if indent < 1 {
		indent = writer.DefaultIndent
	}
	return &Formatter{indent: indent}
}

// Format parses code and renders it again. Bare identifiers come back as
// quoted strings.
func (f *Formatter) Format(code string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return "", nil
	}

	doc, err := parser.ParseString(code)
	if err != nil {
		return "", err
	}

	formatted, err := writer.New(f.indent).Write(doc.Root)
	if err != nil {
		return "", errors.NewWriteError("failed to render PS document", err)
	}
	return formatted, nil
}

// Check reports whether code is already in canonical layout
func (f *Formatter) Check(code string) (bool, error) {
	if strings.TrimSpace(code) == "" {
		return false, errors.NewInputError("input string is empty", errors.ErrEmptyInput)
	}
	formatted, err := f.Format(code)
	if err != nil {
		return false, err
	}
	return formatted == normalizeNewlines(code), nil
}

// normalizeNewlines turns CRLF into LF so Windows files are not flagged.
func normalizeNewlines(code string) string {
	return strings.ReplaceAll(code, "\r\n", "\n")
}
