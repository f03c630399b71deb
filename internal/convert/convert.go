// Package convert wires the PS scanner, parser and writer to the JSON and
// YAML codecs and runs conversions for the CLI.
package convert

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mcncl/psconv/internal/codec"
	"github.com/mcncl/psconv/internal/config"
	"github.com/mcncl/psconv/internal/errors"
	"github.com/mcncl/psconv/internal/formatter"
	"github.com/mcncl/psconv/internal/models"
	"github.com/mcncl/psconv/internal/parser"
	"github.com/mcncl/psconv/internal/writer"
)

// Converter runs conversions according to a Config. It holds no per-call
// state and is safe for concurrent use.
type Converter struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewConverter creates a Converter. A nil cfg uses the defaults and a nil
// logger uses slog.Default().
func NewConverter(cfg *config.Config, logger *slog.Logger) *Converter {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Converter{cfg: cfg, logger: logger}
}

// Config returns the configuration the converter runs with.
func (c *Converter) Config() *config.Config {
	return c.cfg
}

// Convert runs one conversion of src in the given mode.
func (c *Converter) Convert(mode string, src []byte) ([]byte, error) {
	switch mode {
	case config.ModePSToJSON:
		return c.PSToJSON(src)
	case config.ModeJSONToPS:
		return c.JSONToPS(src)
	case config.ModePSToYAML:
		return c.PSToYAML(src)
	case config.ModeYAMLToPS:
		return c.YAMLToPS(src)
	case config.ModeFormat:
		return c.FormatPS(src)
	default:
		return nil, fmt.Errorf("mode '%s': %w", mode, errors.ErrInvalidMode)
	}
}

// Decode reads src in the source format of mode into a document, with key
// renaming applied.
func (c *Converter) Decode(mode string, src []byte) (models.Document, error) {
	var (
		root models.Value
		err  error
	)
	switch mode {
	case config.ModePSToJSON, config.ModePSToYAML, config.ModeFormat:
		var doc models.Document
		doc, err = parser.ParseString(string(src))
		root = doc.Root
	case config.ModeJSONToPS:
		root, err = codec.DecodeJSON(bytes.NewReader(src))
	case config.ModeYAMLToPS:
		root, err = codec.DecodeYAML(bytes.NewReader(src))
	default:
		err = fmt.Errorf("mode '%s': %w", mode, errors.ErrInvalidMode)
	}
	if err != nil {
		return models.Document{}, err
	}

	if c.cfg.RenamesKeys() {
		root = RenameKeys(root, c.cfg.KeyName)
	}
	doc := models.NewDocument(root)
	c.logger.Debug("decoded document", "mode", mode, "bytes", len(src), "root", root.Kind().String())
	return doc, nil
}

// PSToJSON converts a PS document to JSON.
func (c *Converter) PSToJSON(src []byte) ([]byte, error) {
	doc, err := c.Decode(config.ModePSToJSON, src)
	if err != nil {
		return nil, err
	}
	return codec.EncodeJSON(doc.Root, c.cfg.JSON.Indent)
}

// PSToYAML converts a PS document to YAML.
func (c *Converter) PSToYAML(src []byte) ([]byte, error) {
	doc, err := c.Decode(config.ModePSToYAML, src)
	if err != nil {
		return nil, err
	}
	return codec.EncodeYAML(doc.Root, c.cfg.YAML.Indent)
}

// JSONToPS converts a JSON document to PS notation.
func (c *Converter) JSONToPS(src []byte) ([]byte, error) {
	doc, err := c.Decode(config.ModeJSONToPS, src)
	if err != nil {
		return nil, err
	}
	return c.writePS(doc.Root)
}

// YAMLToPS converts a YAML document to PS notation.
func (c *Converter) YAMLToPS(src []byte) ([]byte, error) {
	doc, err := c.Decode(config.ModeYAMLToPS, src)
	if err != nil {
		return nil, err
	}
	return c.writePS(doc.Root)
}

// FormatPS rewrites a PS document in canonical layout. Key renaming
// applies here too.
func (c *Converter) FormatPS(src []byte) ([]byte, error) {
	if !c.cfg.RenamesKeys() {
		out, err := formatter.NewFormatter(c.cfg.PS.Indent).Format(string(src))
		if err != nil {
			return nil, err
		}
		if out == "" {
			return nil, errors.NewInputError("input is empty", errors.ErrEmptyInput)
		}
		return []byte(out), nil
	}

	doc, err := c.Decode(config.ModeFormat, src)
	if err != nil {
		return nil, err
	}
	return c.writePS(doc.Root)
}

// CheckPS reports whether src is already canonically formatted.
func (c *Converter) CheckPS(src []byte) (bool, error) {
	return formatter.NewFormatter(c.cfg.PS.Indent).Check(string(src))
}

func (c *Converter) writePS(root models.Value) ([]byte, error) {
	out, err := writer.New(c.cfg.PS.Indent).Write(root)
	if err != nil {
		return nil, errors.NewWriteError("cannot express document in PS notation", err)
	}
	c.logger.Debug("rendered PS", "bytes", len(out), "lines", strings.Count(out, "\n"))
	return []byte(out), nil
}

// RenameKeys returns a copy of v with every object key passed through
// rename. When two keys rename to the same name the later one wins.
func RenameKeys(v models.Value, rename func(string) string) models.Value {
	switch val := v.(type) {
	case *models.Object:
		out := models.NewObject()
		val.Each(func(key string, child models.Value) bool {
			out.Set(rename(key), RenameKeys(child, rename))
			return true
		})
		return out
	case models.Array:
		out := make(models.Array, len(val))
		for i, child := range val {
			out[i] = RenameKeys(child, rename)
		}
		return out
	default:
		return v
	}
}
