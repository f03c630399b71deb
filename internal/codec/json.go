// Package codec converts between the value model and the JSON and YAML
// interchange formats, keeping object key order in both directions.
package codec

import (
	"bytes"
	"encoding/json"
	stderrors "errors" // Standard errors package
	"fmt"
	"io"
	"math"

	"github.com/mcncl/psconv/internal/errors" // Custom errors package
	"github.com/mcncl/psconv/internal/models"
)

// DecodeJSON reads exactly one JSON value from reader.
func DecodeJSON(reader io.Reader) (models.Value, error) {
	decoder := json.NewDecoder(reader)
	decoder.UseNumber() // keep digits until we pick the float conversion

	root, err := readJSONValue(decoder, 0)
	if err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, errors.NewDecodeError("input is empty or contains only whitespace", errors.ErrEmptyInput)
		}
		return nil, jsonError(decoder, err)
	}

	// Anything but EOF after the first value is either garbage or a second value.
	if _, err := decoder.Token(); err == nil {
		return nil, errors.NewDecodeError("multiple JSON values found at the root", errors.ErrMultipleValues)
	} else if !stderrors.Is(err, io.EOF) {
		return nil, errors.NewDecodeError("invalid trailing data after first JSON value", jsonError(decoder, err))
	}

	return root, nil
}

func jsonError(decoder *json.Decoder, err error) error {
	var syntaxError *json.SyntaxError
	if stderrors.As(err, &syntaxError) {
		return errors.NewDecodeError(
			fmt.Sprintf("JSON syntax error at offset %d", syntaxError.Offset),
			fmt.Errorf("%w: %v", errors.ErrInvalidJSON, err),
		)
	}
	if stderrors.Is(err, io.ErrUnexpectedEOF) {
		return errors.NewDecodeError(
			fmt.Sprintf("unexpected end of JSON input at offset %d", decoder.InputOffset()),
			errors.ErrInvalidJSON,
		)
	}
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return errors.NewDecodeError("failed to decode JSON", fmt.Errorf("%w: %v", errors.ErrInvalidJSON, err))
}

// readJSONValue consumes one value from the token stream. depth > 0 means
// we are inside a container, where EOF is never legitimate.
func readJSONValue(decoder *json.Decoder, depth int) (models.Value, error) {
	tok, err := decoder.Token()
	if err != nil {
		if depth > 0 && stderrors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		if depth >= models.MaxDepth && (t == '{' || t == '[') {
			return nil, errors.NewDecodeError(
				fmt.Sprintf("JSON nesting exceeds %d levels at offset %d", models.MaxDepth, decoder.InputOffset()),
				errors.ErrNestingTooDeep,
			)
		}
		switch t {
		case '{':
			return readJSONObject(decoder, depth+1)
		case '[':
			return readJSONArray(decoder, depth+1)
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", rune(t))
		}
	case string:
		return models.String(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil || math.IsInf(f, 0) {
			return nil, errors.NewDecodeError(fmt.Sprintf("number %s is out of range", t), errors.ErrInvalidJSON)
		}
		return models.Number(f), nil
	case bool:
		return models.Bool(t), nil
	case nil:
		return models.Null{}, nil
	default:
		return nil, fmt.Errorf("unexpected JSON token %v", tok)
	}
}

func readJSONObject(decoder *json.Decoder, depth int) (models.Value, error) {
	obj := models.NewObject()
	for decoder.More() {
		keyTok, err := decoder.Token()
		if err != nil {
			return nil, unexpectedEOF(err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("object key %v is not a string", keyTok)
		}
		v, err := readJSONValue(decoder, depth)
		if err != nil {
			return nil, err
		}
		obj.Set(key, v)
	}
	if err := closeDelim(decoder, '}'); err != nil {
		return nil, err
	}
	return obj, nil
}

func readJSONArray(decoder *json.Decoder, depth int) (models.Value, error) {
	arr := models.Array{}
	for decoder.More() {
		v, err := readJSONValue(decoder, depth)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
	if err := closeDelim(decoder, ']'); err != nil {
		return nil, err
	}
	return arr, nil
}

func closeDelim(decoder *json.Decoder, want json.Delim) error {
	tok, err := decoder.Token()
	if err != nil {
		return unexpectedEOF(err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", rune(want), tok)
	}
	return nil
}

func unexpectedEOF(err error) error {
	if stderrors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

// EncodeJSON renders v as JSON followed by a newline. Object keys keep
// their order. An empty indent produces compact output.
func EncodeJSON(v models.Value, indent string) ([]byte, error) {
	enc := &jsonEncoder{}
	if err := enc.value(v); err != nil {
		return nil, errors.NewEncodeError("failed to encode JSON", err)
	}

	compact := enc.out.Bytes()
	if indent == "" {
		return append(compact, '\n'), nil
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, compact, "", indent); err != nil {
		return nil, errors.NewEncodeError("failed to indent JSON", err)
	}
	pretty.WriteByte('\n')
	return pretty.Bytes(), nil
}

type jsonEncoder struct {
	out     bytes.Buffer
	scratch bytes.Buffer
	strings *json.Encoder
}

func (e *jsonEncoder) value(v models.Value) error {
	switch val := v.(type) {
	case *models.Object:
		e.out.WriteByte('{')
		var err error
		i := 0
		val.Each(func(key string, child models.Value) bool {
			if i > 0 {
				e.out.WriteByte(',')
			}
			i++
			if err = e.string(key); err != nil {
				return false
			}
			e.out.WriteByte(':')
			err = e.value(child)
			return err == nil
		})
		if err != nil {
			return err
		}
		e.out.WriteByte('}')
	case models.Array:
		e.out.WriteByte('[')
		for i, child := range val {
			if i > 0 {
				e.out.WriteByte(',')
			}
			if err := e.value(child); err != nil {
				return err
			}
		}
		e.out.WriteByte(']')
	case models.String:
		return e.string(string(val))
	case models.Number:
		f := float64(val)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("number %v has no JSON representation", f)
		}
		e.out.WriteString(val.Text())
	case models.Bool:
		if val {
			e.out.WriteString("true")
		} else {
			e.out.WriteString("false")
		}
	case models.Null, nil:
		e.out.WriteString("null")
	default:
		return fmt.Errorf("unsupported value %T", v)
	}
	return nil
}

// string writes s as a JSON string literal without HTML escaping.
func (e *jsonEncoder) string(s string) error {
	if e.strings == nil {
		e.strings = json.NewEncoder(&e.scratch)
		e.strings.SetEscapeHTML(false)
	}
	e.scratch.Reset()
	if err := e.strings.Encode(s); err != nil {
		return err
	}
	e.out.Write(bytes.TrimSuffix(e.scratch.Bytes(), []byte{'\n'}))
	return nil
}
