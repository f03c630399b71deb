// Package parser builds the value tree of a PS document from its tokens.
package parser

import (
	stderrors "errors" // Standard errors package
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mcncl/psconv/internal/errors" // Custom errors package
	"github.com/mcncl/psconv/internal/models"
	"github.com/mcncl/psconv/internal/scanner"
	"github.com/mcncl/psconv/internal/token"
)

// ParseError reports a grammar violation. Token is nil when the input
// ended where a token was required.
type ParseError struct {
	Err   error
	Token *token.Token
	Line  int
}

func (e *ParseError) Error() string {
	if e.Token == nil {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d: %v, got %s", e.Line, e.Err, e.Token)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parser is a single-pass recursive-descent parser over a token slice.
type Parser struct {
	tokens []token.Token
	pos    int
	depth  int
}

// New creates a Parser that owns tokens for the duration of parsing.
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse builds the value tree of one PS document from its tokens.
func Parse(tokens []token.Token) (models.Value, error) {
	return New(tokens).Parse()
}

// Parse reads exactly one value and rejects any tokens after it.
func (p *Parser) Parse() (models.Value, error) {
	v, err := p.value()
	if err != nil {
		return nil, err
	}
	if tok, ok := p.peek(); ok {
		return nil, p.errorAt(errors.ErrUnexpectedToken, tok)
	}
	return v, nil
}

// value := STRING | NUMBER | IDENTIFIER | BOOLEAN | '@' ( '{' object | '(' array )
func (p *Parser) value() (models.Value, error) {
	tok, ok := p.peek()
	if !ok {
		return nil, p.endOfInput()
	}

	switch tok.Category {
	case token.String:
		p.advance()
		return models.String(tok.Text), nil
	case token.Number:
		p.advance()
		return models.Number(tok.Num), nil
	case token.Identifier, token.Boolean:
		return p.identifier()
	case token.At:
		p.advance()
		if p.check(token.LeftBrace) || p.check(token.LeftParen) {
			return p.container(tok)
		}
		next, ok := p.peek()
		if !ok {
			return nil, p.endOfInput()
		}
		return nil, p.errorAt(errors.ErrUnexpectedToken, next)
	default:
		return nil, p.errorAt(errors.ErrUnexpectedToken, tok)
	}
}

// identifier resolves bare words: $true/$false become Bool, everything
// else collapses into String.
func (p *Parser) identifier() (models.Value, error) {
	tok, ok := p.peek()
	if !ok {
		return nil, p.endOfInput()
	}

	switch tok.Category {
	case token.Identifier:
		p.advance()
		return models.String(tok.Text), nil
	case token.Boolean:
		p.advance()
		return models.Bool(tok.Bool), nil
	default:
		return nil, p.errorAt(errors.ErrUnexpectedToken, tok)
	}
}

// container parses the object or array opened at tok, refusing to nest
// deeper than models.MaxDepth.
func (p *Parser) container(tok token.Token) (models.Value, error) {
	if p.depth >= models.MaxDepth {
		return nil, p.errorAt(errors.ErrNestingTooDeep, tok)
	}
	p.depth++
	defer func() { p.depth-- }()

	if p.match(token.LeftBrace) {
		return p.object()
	}
	p.advance() // (
	return p.array()
}

func (p *Parser) object() (models.Value, error) {
	obj := models.NewObject()

	for !p.check(token.RightBrace) {
		keyTok, ok := p.peek()
		if !ok {
			return nil, p.endOfInput()
		}

		key, err := p.identifier()
		if err != nil {
			return nil, err
		}
		name, isString := key.(models.String)
		if !isString {
			return nil, p.errorAt(errors.ErrNonStringKey, keyTok)
		}

		next, ok := p.peek()
		if !ok {
			return nil, p.endOfInput()
		}
		if next.Category != token.Equal {
			return nil, p.errorAt(errors.ErrExpectedEqual, next)
		}
		p.advance()

		v, err := p.value()
		if err != nil {
			return nil, err
		}
		obj.Set(string(name), v)
	}
	p.advance() // }

	return obj, nil
}

func (p *Parser) array() (models.Value, error) {
	arr := models.Array{}

	for !p.check(token.RightParen) {
		if p.isAtEnd() {
			return nil, p.endOfInput()
		}
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
	p.advance() // )

	return arr, nil
}

func (p *Parser) peek() (token.Token, bool) {
	if p.isAtEnd() {
		return token.Token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *Parser) advance() {
	if !p.isAtEnd() {
		p.pos++
	}
}

func (p *Parser) isAtEnd() bool {
	return p.pos >= len(p.tokens)
}

func (p *Parser) check(c token.Category) bool {
	tok, ok := p.peek()
	return ok && tok.Category == c
}

func (p *Parser) match(c token.Category) bool {
	if p.check(c) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) errorAt(err error, tok token.Token) *ParseError {
	return &ParseError{Err: err, Token: &tok, Line: tok.Line}
}

func (p *Parser) endOfInput() *ParseError {
	line := 1
	if n := len(p.tokens); n > 0 {
		line = p.tokens[n-1].Line
	}
	return &ParseError{Err: errors.ErrUnexpectedEndOfInput, Line: line}
}

// ParseString scans and parses a PS document held in a string.
func ParseString(source string) (models.Document, error) {
	if strings.TrimSpace(source) == "" {
		return models.Document{}, errors.NewInputError("input string is empty", errors.ErrEmptyInput)
	}

	tokens, err := scanner.Scan(source)
	if err != nil {
		return models.Document{}, errors.NewLexError("invalid PS document", err)
	}

	root, err := Parse(tokens)
	if err != nil {
		return models.Document{}, errors.NewParseError("invalid PS document", err)
	}
	return models.NewDocument(root), nil
}

// ParseReader reads a whole PS document from r and parses it.
func ParseReader(r io.Reader) (models.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return models.Document{}, errors.NewInputError("failed to read PS input", err)
	}
	return ParseString(string(data))
}

// ParseFile parses a PS document from a file path
func ParseFile(filePath string) (models.Document, error) {
	if strings.TrimSpace(filePath) == "" {
		return models.Document{}, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return models.Document{}, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return models.Document{}, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	if len(data) == 0 {
		return models.Document{}, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}

	return ParseString(string(data))
}
