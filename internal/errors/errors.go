// Package errors defines the sentinel errors and typed AppError values
// shared by every stage of psconv.
package errors

import (
	"errors"
	"fmt"
)

// Standard application errors
var (
	ErrEmptyInput      = errors.New("input is empty or contains only whitespace")
	ErrInvalidJSON     = errors.New("invalid JSON format")
	ErrInvalidYAML     = errors.New("invalid YAML format")
	ErrMultipleValues  = errors.New("multiple values found at the root, only one is allowed")
	ErrFileNotFound    = errors.New("file not found")
	ErrFileEmpty       = errors.New("file is empty")
	ErrNoInput         = errors.New("no input provided: please specify a file with -i or pipe data to stdin")
	ErrInvalidFilePath = errors.New("invalid file path")
	ErrInvalidMode     = errors.New("invalid conversion mode")
	ErrNotFormatted    = errors.New("document is not canonically formatted")
)

// Lexical errors raised by the PS scanner
var (
	ErrUnterminatedString  = errors.New("unterminated string")
	ErrUnexpectedCharacter = errors.New("unexpected character")
	ErrInvalidNumber       = errors.New("number out of range")
)

// Syntax errors raised by the PS parser
var (
	ErrUnexpectedToken      = errors.New("unexpected token")
	ErrExpectedEqual        = errors.New("expected '='")
	ErrUnexpectedEndOfInput = errors.New("unexpected end of input")
	ErrNonStringKey         = errors.New("object key must be an identifier")
	ErrNestingTooDeep       = errors.New("nesting too deep")
)

// Rendering errors raised by the PS writer
var (
	ErrUnsupportedValue = errors.New("value has no PS notation")
	ErrInvalidKey       = errors.New("object key is not a valid PS identifier")
)

// ErrorType categorizes errors
type ErrorType string

const (
	ErrorTypeInput   ErrorType = "input"
	ErrorTypeLex     ErrorType = "lex"
	ErrorTypeParse   ErrorType = "parse"
	ErrorTypeWrite   ErrorType = "write"
	ErrorTypeDecode  ErrorType = "decode"
	ErrorTypeEncode  ErrorType = "encode"
	ErrorTypeConfig  ErrorType = "config"
	ErrorTypeOutput  ErrorType = "output"
	ErrorTypeUnknown ErrorType = "unknown"
)

// AppError is an application-specific error with context
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *AppError of the same type
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

func newAppError(t ErrorType, message string, err error) *AppError {
	return &AppError{
		Type:    t,
		Message: message,
		Err:     err,
	}
}

// NewInputError creates a new error related to input processing
func NewInputError(message string, err error) *AppError {
	return newAppError(ErrorTypeInput, message, err)
}

// NewLexError creates a new error related to PS tokenization
func NewLexError(message string, err error) *AppError {
	return newAppError(ErrorTypeLex, message, err)
}

// NewParseError creates a new error related to PS parsing
func NewParseError(message string, err error) *AppError {
	return newAppError(ErrorTypeParse, message, err)
}

// NewWriteError creates a new error related to PS rendering
func NewWriteError(message string, err error) *AppError {
	return newAppError(ErrorTypeWrite, message, err)
}

// NewDecodeError creates a new error related to JSON or YAML decoding
func NewDecodeError(message string, err error) *AppError {
	return newAppError(ErrorTypeDecode, message, err)
}

// NewEncodeError creates a new error related to JSON or YAML encoding
func NewEncodeError(message string, err error) *AppError {
	return newAppError(ErrorTypeEncode, message, err)
}

// NewConfigError creates a new error related to configuration
func NewConfigError(message string, err error) *AppError {
	return newAppError(ErrorTypeConfig, message, err)
}

// NewOutputError creates a new error related to output processing
func NewOutputError(message string, err error) *AppError {
	return newAppError(ErrorTypeOutput, message, err)
}

// UserFriendlyError returns a user-friendly error message
func UserFriendlyError(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		detail := appErr.Message
		if appErr.Err != nil {
			detail = fmt.Sprintf("%s: %v", appErr.Message, appErr.Err)
		}
		switch appErr.Type {
		case ErrorTypeInput:
			return fmt.Sprintf("Input error: %s", appErr.Message)
		case ErrorTypeLex:
			return fmt.Sprintf("PS syntax error: %s", detail)
		case ErrorTypeParse:
			return fmt.Sprintf("PS parse error: %s", detail)
		case ErrorTypeWrite:
			return fmt.Sprintf("PS output error: %s", detail)
		case ErrorTypeDecode:
			return fmt.Sprintf("Decoding error: %s", appErr.Message)
		case ErrorTypeEncode:
			return fmt.Sprintf("Encoding error: %s", appErr.Message)
		case ErrorTypeConfig:
			return fmt.Sprintf("Configuration error: %s", detail)
		case ErrorTypeOutput:
			return fmt.Sprintf("Output error: %s", appErr.Message)
		default:
			return fmt.Sprintf("Error: %s", appErr.Message)
		}
	}

	if errors.Is(err, ErrEmptyInput) {
		return "Error: The input is empty. Please provide a PS, JSON or YAML document."
	}
	if errors.Is(err, ErrInvalidJSON) {
		return "Error: The input contains invalid JSON. Please check your JSON syntax."
	}
	if errors.Is(err, ErrInvalidYAML) {
		return "Error: The input contains invalid YAML. Please check your YAML syntax."
	}
	if errors.Is(err, ErrMultipleValues) {
		return "Error: Multiple values found. Please provide a single document."
	}
	if errors.Is(err, ErrFileNotFound) {
		return "Error: The specified file could not be found. Please check the file path."
	}
	if errors.Is(err, ErrFileEmpty) {
		return "Error: The specified file is empty."
	}
	if errors.Is(err, ErrNoInput) {
		return "Error: No input provided. Please specify a file with -i or pipe data to stdin."
	}
	if errors.Is(err, ErrInvalidFilePath) {
		return "Error: Invalid file path. Please provide a valid file path."
	}
	if errors.Is(err, ErrInvalidMode) {
		return "Error: Invalid mode. Allowed: json2ps, ps2json, yaml2ps, ps2yaml, fmt."
	}
	if errors.Is(err, ErrNotFormatted) {
		return "Error: The document is not canonically formatted. Run with -m fmt to rewrite it."
	}

	return fmt.Sprintf("Error: %v", err)
}
