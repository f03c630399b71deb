package parser

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/psconv/internal/errors"
	"github.com/mcncl/psconv/internal/models"
	"github.com/mcncl/psconv/internal/scanner"
	"github.com/mcncl/psconv/internal/token"
)

func parseSource(t *testing.T, src string) (models.Value, error) {
	t.Helper()
	tokens, err := scanner.Scan(src)
	require.NoError(t, err)
	return Parse(tokens)
}

func TestParse_NestedStructure(t *testing.T) {
	v, err := parseSource(t, `@{ a = @( 1 2 3 ) b = $true }`)
	require.NoError(t, err)

	obj, ok := v.(*models.Object)
	require.True(t, ok, "root is %T", v)
	assert.Equal(t, []string{"a", "b"}, obj.Keys())

	a, _ := obj.Get("a")
	assert.Equal(t, models.Array{models.Number(1), models.Number(2), models.Number(3)}, a)
	b, _ := obj.Get("b")
	assert.Equal(t, models.Bool(true), b)
}

func TestParse_Scalars(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		expected models.Value
	}{
		{"quoted string", `"hello world"`, models.String("hello world")},
		{"identifier collapses to string", `hello`, models.String("hello")},
		{"number", `42`, models.Number(42)},
		{"true", `$true`, models.Bool(true)},
		{"false", `$false`, models.Bool(false)},
		{"dollar identifier", `$truexyz`, models.String("$truexyz")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := parseSource(t, tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestParse_IdentifierAndStringAreIndistinguishable(t *testing.T) {
	bare, err := parseSource(t, `@{ level = debug }`)
	require.NoError(t, err)
	quoted, err := parseSource(t, `@{ level = "debug" }`)
	require.NoError(t, err)

	assert.True(t, models.Equal(bare, quoted))
}

func TestParse_EmptyContainers(t *testing.T) {
	obj, err := parseSource(t, `@{}`)
	require.NoError(t, err)
	require.IsType(t, &models.Object{}, obj)
	assert.Equal(t, 0, obj.(*models.Object).Len())

	arr, err := parseSource(t, `@( )`)
	require.NoError(t, err)
	assert.Equal(t, models.Array{}, arr)
}

func TestParse_ArrayOfMixedValues(t *testing.T) {
	v, err := parseSource(t, `@( "a" b 3 $false @{ k = v } @() )`)
	require.NoError(t, err)

	arr, ok := v.(models.Array)
	require.True(t, ok)
	require.Len(t, arr, 6)

	inner := models.NewObject()
	inner.Set("k", models.String("v"))
	assert.True(t, models.Equal(models.Array{
		models.String("a"),
		models.String("b"),
		models.Number(3),
		models.Bool(false),
		inner,
		models.Array{},
	}, arr))
}

func TestParse_DuplicateKeysLastWins(t *testing.T) {
	v, err := parseSource(t, `@{ a = 1 b = 2 a = 3 }`)
	require.NoError(t, err)

	obj := v.(*models.Object)
	assert.Equal(t, []string{"a", "b"}, obj.Keys())
	a, _ := obj.Get("a")
	assert.Equal(t, models.Number(3), a)
}

// A boolean key is rejected at the key itself instead of being dropped
// and failing later on the stray '='.
func TestParse_BooleanKeyIsRejected(t *testing.T) {
	_, err := parseSource(t, "@{\n  $true = 1\n}")
	require.Error(t, err)

	var parseErr *ParseError
	require.True(t, stderrors.As(err, &parseErr))
	assert.ErrorIs(t, err, errors.ErrNonStringKey)
	require.NotNil(t, parseErr.Token)
	assert.Equal(t, token.Boolean, parseErr.Token.Category)
	assert.Equal(t, "$true", parseErr.Token.Lexeme)
	assert.Equal(t, 2, parseErr.Line)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"missing equal", `@{ a 1 }`, errors.ErrExpectedEqual},
		{"string key", `@{ "a" = 1 }`, errors.ErrUnexpectedToken},
		{"number key", `@{ 1 = 1 }`, errors.ErrUnexpectedToken},
		{"bare brace", `{ a = 1 }`, errors.ErrUnexpectedToken},
		{"at without opener", `@ a`, errors.ErrUnexpectedToken},
		{"equal as value", `=`, errors.ErrUnexpectedToken},
		{"closing paren in object", `@{ a = 1 )`, errors.ErrUnexpectedToken},
		{"trailing value", `@{} @{}`, errors.ErrUnexpectedToken},
		{"unclosed object", `@{ a = 1`, errors.ErrUnexpectedEndOfInput},
		{"unclosed array", `@( 1 2`, errors.ErrUnexpectedEndOfInput},
		{"missing value", `@{ a = }`, errors.ErrUnexpectedToken},
		{"eof after key", `@{ a`, errors.ErrUnexpectedEndOfInput},
		{"eof after equal", `@{ a =`, errors.ErrUnexpectedEndOfInput},
		{"lone at", `@`, errors.ErrUnexpectedEndOfInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseSource(t, tt.src)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var parseErr *ParseError
			assert.True(t, stderrors.As(err, &parseErr))
		})
	}
}

func TestParse_NestingLimit(t *testing.T) {
	nested := func(depth int) string {
		return strings.Repeat("@(", depth) + strings.Repeat(")", depth)
	}

	_, err := parseSource(t, nested(models.MaxDepth))
	require.NoError(t, err)

	_, err = parseSource(t, nested(models.MaxDepth+1))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrNestingTooDeep)

	var parseErr *ParseError
	require.True(t, stderrors.As(err, &parseErr))
	require.NotNil(t, parseErr.Token)
	assert.Equal(t, token.At, parseErr.Token.Category)

	// Far past the limit still fails cleanly instead of exhausting the stack
	_, err = ParseString(strings.Repeat("@{ a = ", 1000000))
	assert.ErrorIs(t, err, errors.ErrNestingTooDeep)
	assert.ErrorIs(t, err, &errors.AppError{Type: errors.ErrorTypeParse})
}

func TestParse_NoTokens(t *testing.T) {
	_, err := Parse(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUnexpectedEndOfInput)
	assert.Equal(t, "line 1: unexpected end of input", err.Error())
}

func TestParse_ErrorMessageNamesToken(t *testing.T) {
	_, err := parseSource(t, "@{\n a 1\n}")
	require.Error(t, err)
	assert.Equal(t, "line 2: expected '=', got Number(1)", err.Error())
}

func TestParse_ErrorsCarryLines(t *testing.T) {
	_, err := parseSource(t, "@{\n  a = 1\n  b = 2\n  c = )\n}")
	require.Error(t, err)

	var parseErr *ParseError
	require.True(t, stderrors.As(err, &parseErr))
	assert.Equal(t, 4, parseErr.Line)
	assert.Equal(t, token.RightParen, parseErr.Token.Category)
}

func TestParseString(t *testing.T) {
	doc, err := ParseString(`@( 1 2 )`)
	require.NoError(t, err)
	assert.True(t, doc.RootIsArray)
	assert.Equal(t, models.Array{models.Number(1), models.Number(2)}, doc.Root)
}

func TestParseString_EmptyInput(t *testing.T) {
	for _, src := range []string{"", "   \n\t"} {
		_, err := ParseString(src)
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrEmptyInput)
		assert.Contains(t, err.Error(), "input string is empty")
	}
}

func TestParseString_WrapsLexAndParseErrors(t *testing.T) {
	_, err := ParseString(`@{ a = "unterminated`)
	require.Error(t, err)
	assert.ErrorIs(t, err, &errors.AppError{Type: errors.ErrorTypeLex})
	assert.ErrorIs(t, err, errors.ErrUnterminatedString)

	var lexErr *scanner.LexError
	assert.True(t, stderrors.As(err, &lexErr))

	_, err = ParseString(`@{ a 1 }`)
	require.Error(t, err)
	assert.ErrorIs(t, err, &errors.AppError{Type: errors.ErrorTypeParse})
	assert.ErrorIs(t, err, errors.ErrExpectedEqual)
}

func TestParseReader(t *testing.T) {
	doc, err := ParseReader(strings.NewReader(`@{ name = "x" }`))
	require.NoError(t, err)
	assert.False(t, doc.RootIsArray)
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.ps1")
	require.NoError(t, os.WriteFile(path, []byte("@{\n    port = 8080\n}\n"), 0644))

	doc, err := ParseFile(path)
	require.NoError(t, err)

	obj := doc.Root.(*models.Object)
	port, ok := obj.Get("port")
	require.True(t, ok)
	assert.Equal(t, models.Number(8080), port)
}

func TestParseFile_Errors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.ps1")
	require.NoError(t, os.WriteFile(empty, nil, 0644))

	_, err := ParseFile("")
	assert.ErrorIs(t, err, errors.ErrInvalidFilePath)

	_, err = ParseFile(filepath.Join(dir, "missing.ps1"))
	assert.ErrorIs(t, err, errors.ErrFileNotFound)
	assert.Contains(t, err.Error(), "not found")

	_, err = ParseFile(empty)
	assert.ErrorIs(t, err, errors.ErrFileEmpty)
}
