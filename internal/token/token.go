// Package token defines the lexical categories of PS notation.
package token

import "fmt"

// Category is the lexical class of a token.
type Category int

const (
	String Category = iota
	Number
	Boolean
	Identifier

	At
	Equal
	LeftParen
	RightParen
	LeftBrace
	RightBrace
)

var categoryNames = map[Category]string{
	String:     "String",
	Number:     "Number",
	Boolean:    "Boolean",
	Identifier: "Identifier",
	At:         "@",
	Equal:      "=",
	LeftParen:  "(",
	RightParen: ")",
	LeftBrace:  "{",
	RightBrace: "}",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// Token is one classified unit of PS input. Text holds the payload of
// String and Identifier tokens, Num of Number tokens and Bool of Boolean
// tokens. Lexeme is the source text (string content without the quotes).
type Token struct {
	Category Category
	Lexeme   string
	Line     int

	Text string
	Num  float64
	Bool bool
}

// Fixed returns the single-character punctuation token for c.
func Fixed(c Category, line int) Token {
	return Token{Category: c, Lexeme: categoryNames[c], Line: line}
}

func (t Token) String() string {
	switch t.Category {
	case String:
		return fmt.Sprintf("String(%q)", t.Text)
	case Number:
		return fmt.Sprintf("Number(%s)", t.Lexeme)
	case Boolean:
		return fmt.Sprintf("Boolean(%t)", t.Bool)
	case Identifier:
		return fmt.Sprintf("Identifier(%s)", t.Text)
	default:
		return fmt.Sprintf("'%s'", t.Lexeme)
	}
}
