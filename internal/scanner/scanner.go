// Package scanner turns PS notation text into tokens.
package scanner

import (
	"fmt"
	"strconv"
	"unicode"

	"github.com/mcncl/psconv/internal/errors"
	"github.com/mcncl/psconv/internal/token"
)

const (
	literalTrue  = "$true"
	literalFalse = "$false"
)

// LexError reports a scanning failure at a source line.
// Err is one of errors.ErrUnterminatedString, errors.ErrUnexpectedCharacter
// or errors.ErrInvalidNumber.
type LexError struct {
	Err  error
	Char rune
	Line int
}

func (e *LexError) Error() string {
	if e.Err == errors.ErrUnexpectedCharacter {
		return fmt.Sprintf("line %d: %v %q", e.Line, e.Err, e.Char)
	}
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LexError) Unwrap() error {
	return e.Err
}

// Scanner holds the cursor and line counter for one pass over a source.
type Scanner struct {
	source []rune
	pos    int
	line   int
}

// New creates a Scanner positioned at the start of source.
func New(source string) *Scanner {
	return &Scanner{
		source: []rune(source),
		line:   1,
	}
}

// Scan tokenizes source in one pass.
func Scan(source string) ([]token.Token, error) {
	return New(source).ScanTokens()
}

// ScanTokens consumes the whole source and returns its tokens in order.
func (s *Scanner) ScanTokens() ([]token.Token, error) {
	tokens := make([]token.Token, 0, len(s.source)/4)
	for !s.isAtEnd() {
		tok, ok, err := s.scanToken()
		if err != nil {
			return nil, err
		}
		if ok {
			tokens = append(tokens, tok)
		}
	}
	return tokens, nil
}

// scanToken consumes one token, or one whitespace character when ok is false.
func (s *Scanner) scanToken() (tok token.Token, ok bool, err error) {
	c := s.advance()

	switch c {
	case ' ', '\t', '\r':
		return tok, false, nil
	case '\n':
		s.line++
		return tok, false, nil
	case '@':
		return token.Fixed(token.At, s.line), true, nil
	case '=':
		return token.Fixed(token.Equal, s.line), true, nil
	case '{':
		return token.Fixed(token.LeftBrace, s.line), true, nil
	case '}':
		return token.Fixed(token.RightBrace, s.line), true, nil
	case '(':
		return token.Fixed(token.LeftParen, s.line), true, nil
	case ')':
		return token.Fixed(token.RightParen, s.line), true, nil
	case '"':
		tok, err = s.scanString()
		return tok, err == nil, err
	}

	switch {
	case isIdentStart(c):
		return s.scanIdentifier(), true, nil
	case isDigit(c):
		tok, err = s.scanNumber(c)
		return tok, err == nil, err
	}
	return tok, false, &LexError{Err: errors.ErrUnexpectedCharacter, Char: c, Line: s.line}
}

// scanString reads up to the closing quote. Newlines inside the literal
// are kept verbatim and do not advance the line counter.
func (s *Scanner) scanString() (token.Token, error) {
	start := s.pos
	for !s.isAtEnd() && s.peek() != '"' {
		s.pos++
	}
	if s.isAtEnd() {
		return token.Token{}, &LexError{Err: errors.ErrUnterminatedString, Char: '"', Line: s.line}
	}
	text := string(s.source[start:s.pos])
	s.pos++ // closing quote

	return token.Token{Category: token.String, Lexeme: text, Text: text, Line: s.line}, nil
}

func (s *Scanner) scanIdentifier() token.Token {
	start := s.pos - 1
	for !s.isAtEnd() && isIdentContinue(s.peek()) {
		s.pos++
	}
	text := string(s.source[start:s.pos])

	switch text {
	case literalTrue:
		return token.Token{Category: token.Boolean, Lexeme: text, Bool: true, Line: s.line}
	case literalFalse:
		return token.Token{Category: token.Boolean, Lexeme: text, Bool: false, Line: s.line}
	}
	return token.Token{Category: token.Identifier, Lexeme: text, Text: text, Line: s.line}
}

func (s *Scanner) scanNumber(first rune) (token.Token, error) {
	start := s.pos - 1
	for !s.isAtEnd() && isDigit(s.peek()) {
		s.pos++
	}
	text := string(s.source[start:s.pos])

	n, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return token.Token{}, &LexError{Err: errors.ErrInvalidNumber, Char: first, Line: s.line}
	}
	return token.Token{Category: token.Number, Lexeme: text, Num: n, Line: s.line}, nil
}

func (s *Scanner) isAtEnd() bool {
	return s.pos >= len(s.source)
}

func (s *Scanner) peek() rune {
	if s.isAtEnd() {
		return 0
	}
	return s.source[s.pos]
}

func (s *Scanner) advance() rune {
	c := s.source[s.pos]
	s.pos++
	return c
}

func isIdentStart(c rune) bool {
	return unicode.IsLetter(c) || c == '_' || c == '$'
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}

func isIdentContinue(c rune) bool {
	return isIdentStart(c) || isDigit(c)
}

// IsIdentifier reports whether s scans as exactly one Identifier token.
// The boolean literals are not identifiers.
func IsIdentifier(s string) bool {
	if s == "" || s == literalTrue || s == literalFalse {
		return false
	}
	for i, c := range s {
		if i == 0 && !isIdentStart(c) {
			return false
		}
		if !isIdentContinue(c) {
			return false
		}
	}
	return true
}
