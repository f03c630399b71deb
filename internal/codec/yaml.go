package codec

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/mcncl/psconv/internal/errors"
	"github.com/mcncl/psconv/internal/models"
)

// Aliases may repeat a subtree many times. Decoding stops once the
// expanded tree passes expansionFloor nodes and is more than
// expansionFactor times the size of the document as written.
const (
	expansionFloor  = 400000
	expansionFactor = 100
)

// DecodeYAML reads exactly one YAML document from reader. Mapping order is
// preserved and scalar keys are taken by their text.
func DecodeYAML(reader io.Reader) (models.Value, error) {
	decoder := yaml.NewDecoder(reader)

	var doc yaml.Node
	if err := decoder.Decode(&doc); err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, errors.NewDecodeError("input is empty or contains only whitespace", errors.ErrEmptyInput)
		}
		return nil, errors.NewDecodeError("YAML syntax error", fmt.Errorf("%w: %v", errors.ErrInvalidYAML, err))
	}

	var extra yaml.Node
	if err := decoder.Decode(&extra); err == nil {
		return nil, errors.NewDecodeError("multiple YAML documents found", errors.ErrMultipleValues)
	} else if !stderrors.Is(err, io.EOF) {
		return nil, errors.NewDecodeError("invalid trailing YAML document", fmt.Errorf("%w: %v", errors.ErrInvalidYAML, err))
	}

	v, err := (&nodeDecoder{source: countNodes(&doc)}).value(&doc)
	if err != nil {
		return nil, errors.NewDecodeError(err.Error(), errors.ErrInvalidYAML)
	}
	return v, nil
}

// nodeDecoder turns a yaml.Node tree into values. source is the node
// count of the document as written, nodes counts every node visited
// including repeats through aliases.
type nodeDecoder struct {
	source int
	nodes  int
	depth  int
}

func (d *nodeDecoder) value(n *yaml.Node) (models.Value, error) {
	d.nodes++
	if d.nodes > expansionFloor && d.nodes > expansionFactor*d.source {
		return nil, fmt.Errorf("line %d: document contains excessive aliasing", n.Line)
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return models.Null{}, nil
		}
		return d.value(n.Content[0])
	case yaml.AliasNode:
		return d.nested(n, n.Alias)
	case yaml.MappingNode:
		return d.nested(n, n)
	case yaml.SequenceNode:
		return d.nested(n, n)
	case yaml.ScalarNode:
		return fromScalar(n)
	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node", n.Line)
	}
}

// nested decodes target one level deeper than at. Aliases count as a level
// so that a chain of them cannot recurse without bound.
func (d *nodeDecoder) nested(at, target *yaml.Node) (models.Value, error) {
	if d.depth >= models.MaxDepth {
		return nil, fmt.Errorf("line %d: %w", at.Line, errors.ErrNestingTooDeep)
	}
	d.depth++
	defer func() { d.depth-- }()

	switch target.Kind {
	case yaml.MappingNode:
		return d.mapping(target)
	case yaml.SequenceNode:
		arr := make(models.Array, 0, len(target.Content))
		for _, item := range target.Content {
			v, err := d.value(item)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	default:
		return d.value(target)
	}
}

// mapping keeps key order. Explicit keys override merged ones and an
// earlier merge source wins over a later one.
func (d *nodeDecoder) mapping(n *yaml.Node) (models.Value, error) {
	obj := models.NewObject()
	for i := 0; i+1 < len(n.Content); i += 2 {
		keyNode, valueNode := n.Content[i], n.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: mapping keys must be scalars", keyNode.Line)
		}
		if keyNode.ShortTag() == "!!merge" {
			if err := d.merge(obj, valueNode); err != nil {
				return nil, err
			}
			continue
		}
		v, err := d.value(valueNode)
		if err != nil {
			return nil, err
		}
		obj.Set(keyNode.Value, v)
	}
	return obj, nil
}

// merge copies the entries of a mapping, or of each mapping in a sequence,
// into obj without touching keys that are already set.
func (d *nodeDecoder) merge(obj *models.Object, n *yaml.Node) error {
	sources := []*yaml.Node{n}
	if resolveAlias(n).Kind == yaml.SequenceNode {
		sources = resolveAlias(n).Content
	}

	for _, src := range sources {
		if resolveAlias(src).Kind != yaml.MappingNode {
			return fmt.Errorf("line %d: merge value must be a mapping or a sequence of mappings", src.Line)
		}
		v, err := d.value(src)
		if err != nil {
			return err
		}
		v.(*models.Object).Each(func(key string, child models.Value) bool {
			if _, exists := obj.Get(key); !exists {
				obj.Set(key, child)
			}
			return true
		})
	}
	return nil
}

// countNodes counts the nodes of the document as written, without
// following aliases.
func countNodes(n *yaml.Node) int {
	count := 1
	for _, child := range n.Content {
		count += countNodes(child)
	}
	return count
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func fromScalar(n *yaml.Node) (models.Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return models.Null{}, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, fmt.Errorf("line %d: %v", n.Line, err)
		}
		return models.Bool(b), nil
	case "!!int", "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, fmt.Errorf("line %d: %v", n.Line, err)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("line %d: %s is not a finite number", n.Line, n.Value)
		}
		return models.Number(f), nil
	default:
		// !!str, !!timestamp, !!binary and custom tags keep their text
		return models.String(n.Value), nil
	}
}

// EncodeYAML renders v as a single YAML document using indent spaces per level.
func EncodeYAML(v models.Value, indent int) ([]byte, error) {
	node, err := toNode(v)
	if err != nil {
		return nil, errors.NewEncodeError("failed to encode YAML", err)
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	if indent > 0 {
		encoder.SetIndent(indent)
	}
	if err := encoder.Encode(node); err != nil {
		return nil, errors.NewEncodeError("failed to encode YAML", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, errors.NewEncodeError("failed to encode YAML", err)
	}
	return buf.Bytes(), nil
}

func toNode(v models.Value) (*yaml.Node, error) {
	switch val := v.(type) {
	case *models.Object:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		var err error
		val.Each(func(key string, child models.Value) bool {
			var childNode *yaml.Node
			childNode, err = toNode(child)
			if err != nil {
				return false
			}
			node.Content = append(node.Content, scalar("!!str", key), childNode)
			return true
		})
		if err != nil {
			return nil, err
		}
		return node, nil
	case models.Array:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, child := range val {
			childNode, err := toNode(child)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, childNode)
		}
		return node, nil
	case models.String:
		return scalar("!!str", string(val)), nil
	case models.Number:
		f := float64(val)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("number %v has no YAML representation", f)
		}
		if f == math.Trunc(f) && math.Abs(f) < 1e15 {
			return scalar("!!int", strconv.FormatInt(int64(f), 10)), nil
		}
		return scalar("!!float", strconv.FormatFloat(f, 'g', -1, 64)), nil
	case models.Bool:
		return scalar("!!bool", strconv.FormatBool(bool(val))), nil
	case models.Null, nil:
		return scalar("!!null", "null"), nil
	default:
		return nil, fmt.Errorf("unsupported value %T", v)
	}
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}
