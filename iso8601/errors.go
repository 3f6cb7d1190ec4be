package iso8601

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// Sentinel errors classifying a *ParseError. Use errors.Is to test for them.
var (
	ErrTruncated        = errors.New("unexpected end of string")
	ErrInvalidCharacter = errors.New("invalid character")
	ErrInvalidValue     = errors.New("invalid calendar value")
	ErrFormat           = errors.New("inconsistent format")
	ErrZoneRange        = errors.New("timezone offset out of range")
	ErrDuration         = errors.New("invalid duration")
	ErrTrailing         = errors.New("trailing data")
)

// ParseError describes a failure to parse ISO-8601 text. Pos is the byte
// offset at which the problem was detected.
type ParseError struct {
	Pos   int
	Kind  error
	Field string
	Msg   string

	// Err is the underlying cause, a *RangeError for out of range values.
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("iso8601: %s (position %d)", e.Msg, e.Pos)
}

func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// RangeError reports a numeric field that lies outside its valid bounds.
type RangeError struct {
	Element string
	Value   int
	Min     int
	Max     int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s %d is out of range [%d, %d]", e.Element, e.Value, e.Min, e.Max)
}

func errTruncated(pos int, field string, missing int) *ParseError {
	return &ParseError{
		Pos:   pos,
		Kind:  ErrTruncated,
		Field: field,
		Msg:   fmt.Sprintf("unexpected end of string while parsing %s, expected %d more character(s)", field, missing),
	}
}

func errInvalidChar(s string, pos int, field string) *ParseError {
	r, _ := utf8.DecodeRuneInString(s[pos:])
	return &ParseError{
		Pos:   pos,
		Kind:  ErrInvalidCharacter,
		Field: field,
		Msg:   fmt.Sprintf("invalid character while parsing %s (%q index: %d)", field, r, pos),
	}
}

func errRange(pos int, kind error, element string, value, min, max int) *ParseError {
	re := &RangeError{Element: element, Value: value, Min: min, Max: max}
	return &ParseError{
		Pos:   pos,
		Kind:  kind,
		Field: element,
		Msg:   "invalid " + re.Error(),
		Err:   re,
	}
}

func errf(pos int, kind error, field, format string, args ...any) *ParseError {
	return &ParseError{
		Pos:   pos,
		Kind:  kind,
		Field: field,
		Msg:   fmt.Sprintf(format, args...),
	}
}
