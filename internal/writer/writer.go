// Package writer renders value trees as PS notation.
package writer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mcncl/psconv/internal/errors"
	"github.com/mcncl/psconv/internal/models"
	"github.com/mcncl/psconv/internal/scanner"
)

// DefaultIndent is the number of spaces added per nesting level.
const DefaultIndent = 4

// WriteError reports a value that cannot be expressed in PS notation.
// Path locates it in the tree, e.g. "servers[1].name"; the root is "".
type WriteError struct {
	Err  error
	Path string
	Kind models.Kind
}

func (e *WriteError) Error() string {
	where := e.Path
	if where == "" {
		where = "root"
	}
	return fmt.Sprintf("%s at %s (%s)", e.Err, where, e.Kind)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Writer renders one value tree. The zero value uses DefaultIndent.
type Writer struct {
	Indent int

	buf   strings.Builder
	depth int
}

// New creates a Writer with the given indent width. Widths below one fall
// back to DefaultIndent.
func New(indent int) *Writer {
	return &Writer{Indent: indent}
}

// Write renders v with the default indent.
func Write(v models.Value) (string, error) {
	return New(DefaultIndent).Write(v)
}

// Write renders v followed by a newline. Null values and object keys that
// would not scan back as a single identifier are rejected.
func (w *Writer) Write(v models.Value) (string, error) {
	w.buf.Reset()
	w.depth = 0

	if err := w.writeValue(v, ""); err != nil {
		return "", err
	}
	w.buf.WriteByte('\n')
	return w.buf.String(), nil
}

func (w *Writer) step() int {
	if w.Indent < 1 {
		return DefaultIndent
	}
	return w.Indent
}

func (w *Writer) pad() {
	w.buf.WriteString(strings.Repeat(" ", w.depth*w.step()))
}

func (w *Writer) writeValue(v models.Value, path string) error {
	switch val := v.(type) {
	case *models.Object:
		return w.writeObject(val, path)
	case models.Array:
		return w.writeArray(val, path)
	case models.String:
		w.buf.WriteByte('"')
		w.buf.WriteString(string(val))
		w.buf.WriteByte('"')
	case models.Number:
		w.buf.WriteString(val.Text())
	case models.Bool:
		if val {
			w.buf.WriteString("$true")
		} else {
			w.buf.WriteString("$false")
		}
	case models.Null:
		return &WriteError{Err: errors.ErrUnsupportedValue, Path: path, Kind: models.KindNull}
	default:
		return &WriteError{Err: errors.ErrUnsupportedValue, Path: path}
	}
	return nil
}

func (w *Writer) writeObject(obj *models.Object, path string) error {
	if obj.Len() == 0 {
		w.buf.WriteString("@{}")
		return nil
	}

	w.buf.WriteString("@{\n")
	w.depth++
	var err error
	obj.Each(func(key string, v models.Value) bool {
		child := joinKey(path, key)
		if !scanner.IsIdentifier(key) {
			err = &WriteError{Err: errors.ErrInvalidKey, Path: child, Kind: kindOf(v)}
			return false
		}
		w.pad()
		w.buf.WriteString(key)
		w.buf.WriteString(" = ")
		if err = w.writeValue(v, child); err != nil {
			return false
		}
		w.buf.WriteByte('\n')
		return true
	})
	if err != nil {
		return err
	}
	w.depth--
	w.pad()
	w.buf.WriteByte('}')
	return nil
}

func (w *Writer) writeArray(arr models.Array, path string) error {
	if len(arr) == 0 {
		w.buf.WriteString("@()")
		return nil
	}

	w.buf.WriteString("@(\n")
	w.depth++
	for i, v := range arr {
		w.pad()
		if err := w.writeValue(v, path+"["+strconv.Itoa(i)+"]"); err != nil {
			return err
		}
		w.buf.WriteByte('\n')
	}
	w.depth--
	w.pad()
	w.buf.WriteByte(')')
	return nil
}

func kindOf(v models.Value) models.Kind {
	if v == nil {
		return models.KindNull
	}
	return v.Kind()
}

func joinKey(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
