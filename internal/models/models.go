// Package models holds the format-neutral value tree every converter
// reads and writes.
package models

import (
	"fmt"
	"strconv"
)

// MaxDepth is the deepest container nesting any decoder accepts.
const MaxDepth = 10000

// Kind identifies the variant of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is a node of the tree shared by PS notation, JSON and YAML.
// The concrete types are String, Number, Bool, Null, Array and *Object.
type Value interface {
	Kind() Kind
}

// String is a text value. Quoted strings and bare PS identifiers both
// become String.
type String string

// Number is a numeric value.
type Number float64

// Bool is a boolean value.
type Bool bool

// Null is the absent value. It has no PS notation.
type Null struct{}

// Array is an ordered sequence of values.
type Array []Value

func (String) Kind() Kind  { return KindString }
func (Number) Kind() Kind  { return KindNumber }
func (Bool) Kind() Kind    { return KindBool }
func (Null) Kind() Kind    { return KindNull }
func (Array) Kind() Kind   { return KindArray }
func (*Object) Kind() Kind { return KindObject }

// Text returns the shortest decimal form of n without an exponent.
func (n Number) Text() string {
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}

// Object maps unique string keys to values and remembers insertion order.
type Object struct {
	keys   []string
	values map[string]Value
}

// NewObject creates an empty Object.
func NewObject() *Object {
	return &Object{values: make(map[string]Value)}
}

// Set stores v under key. An existing key keeps its position.
func (o *Object) Set(key string, v Value) {
	if o.values == nil {
		o.values = make(map[string]Value)
	}
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.keys))
	copy(keys, o.keys)
	return keys
}

// Len returns the number of entries.
func (o *Object) Len() int {
	return len(o.keys)
}

// Each calls fn for every entry in insertion order until fn returns false.
func (o *Object) Each(fn func(key string, v Value) bool) {
	for _, k := range o.keys {
		if !fn(k, o.values[k]) {
			return
		}
	}
}

// Equal reports whether a and b hold the same tree. Object comparison
// ignores key order.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}

	switch av := a.(type) {
	case String, Number, Bool, Null:
		return a == b
	case Array:
		bv := b.(Array)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case *Object:
		bv := b.(*Object)
		if av.Len() != bv.Len() {
			return false
		}
		for _, k := range av.keys {
			other, ok := bv.values[k]
			if !ok || !Equal(av.values[k], other) {
				return false
			}
		}
		return true
	}
	return false
}

// Document holds a decoded value together with facts about its root,
// for the converter and its callers to inspect.
type Document struct {
	Root        Value
	RootIsArray bool
}

// NewDocument wraps root.
func NewDocument(root Value) Document {
	return Document{
		Root:        root,
		RootIsArray: root != nil && root.Kind() == KindArray,
	}
}
