package nova

import (
	"errors"
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	_ participle.Error = &LexError{}
	_ participle.Error = &ParseError{}
	_ participle.Error = &RuntimeError{}
)

// LexError is returned by Tokenize when the source contains text that
// matches none of the token rules.
type LexError struct {
	Char rune
	Pos  lexer.Position
	Msg  string
}

func (e *LexError) Message() string {
	if e.Msg != "" {
		return e.Msg
	}
	return fmt.Sprintf("unexpected character %q", e.Char)
}

func (e *LexError) Position() lexer.Position { return e.Pos }

func (e *LexError) Error() string { return participle.FormatError(e) }

// ParseError reports the token the parser wanted and what it found instead.
// EOF is set when the parser ran out of tokens.
type ParseError struct {
	Pos      lexer.Position
	Expected string
	Found    string
	EOF      bool
}

func (e *ParseError) Message() string {
	if e.Expected == "" {
		return "unexpected " + e.Found
	}
	return fmt.Sprintf("expected %v, got %v", e.Expected, e.Found)
}

func (e *ParseError) Position() lexer.Position { return e.Pos }

func (e *ParseError) Error() string { return participle.FormatError(e) }

type ErrorKind string

const (
	UnresolvedIdentifier  ErrorKind = "UnresolvedIdentifier"
	TypeMismatch          ErrorKind = "TypeMismatch"
	NotCallable           ErrorKind = "NotCallable"
	NotAnArray            ErrorKind = "NotAnArray"
	NotAssignable         ErrorKind = "NotAssignable"
	InvalidOperand        ErrorKind = "InvalidOperand"
	HostError             ErrorKind = "HostError"
	ReturnOutsideFunction ErrorKind = "ReturnOutsideFunction"
	StackOverflow         ErrorKind = "StackOverflow"
)

var (
	ErrUnresolvedIdentifier  = errors.New("unresolved identifier")
	ErrTypeMismatch          = errors.New("type mismatch")
	ErrNotCallable           = errors.New("not callable")
	ErrNotAnArray            = errors.New("not an array")
	ErrNotAssignable         = errors.New("not assignable")
	ErrInvalidOperand        = errors.New("invalid operand")
	ErrHost                  = errors.New("host error")
	ErrReturnOutsideFunction = errors.New("return outside function")
	ErrStackOverflow         = errors.New("stack overflow")
)

var sentinels = map[ErrorKind]error{
	UnresolvedIdentifier:  ErrUnresolvedIdentifier,
	TypeMismatch:          ErrTypeMismatch,
	NotCallable:           ErrNotCallable,
	NotAnArray:            ErrNotAnArray,
	NotAssignable:         ErrNotAssignable,
	InvalidOperand:        ErrInvalidOperand,
	HostError:             ErrHost,
	ReturnOutsideFunction: ErrReturnOutsideFunction,
	StackOverflow:         ErrStackOverflow,
}

// RuntimeError is raised while evaluating a program. It unwraps to the
// sentinel for its Kind, so errors.Is(err, ErrTypeMismatch) works.
type RuntimeError struct {
	Kind ErrorKind
	Pos  lexer.Position
	Msg  string
}

func runtimeError(kind ErrorKind, pos lexer.Position, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func (e *RuntimeError) Message() string { return e.Msg }

func (e *RuntimeError) Position() lexer.Position { return e.Pos }

func (e *RuntimeError) Error() string { return participle.FormatError(e) }

func (e *RuntimeError) Unwrap() error { return sentinels[e.Kind] }

// ThrownError carries an arbitrary script value raised by a host callable.
// A try block binds the value itself rather than a description of it.
type ThrownError struct {
	Value Value
}

// Throw wraps a value so that returning it from a native function raises it
// as a catchable script error.
func Throw(value Value) error {
	return &ThrownError{Value: value}
}

func (e *ThrownError) Error() string {
	return "thrown: " + inspect(e.Value)
}

// errorValue converts an error caught by a try block into the value bound
// to the catch identifier.
func errorValue(err error) Value {
	var thrown *ThrownError
	if errors.As(err, &thrown) {
		return thrown.Value
	}
	object := NewObject()
	var runtimeErr *RuntimeError
	if errors.As(err, &runtimeErr) {
		object.Set("kind", StringValue{Val: string(runtimeErr.Kind)})
		object.Set("message", StringValue{Val: runtimeErr.Msg})
		return object
	}
	object.Set("kind", StringValue{Val: string(HostError)})
	object.Set("message", StringValue{Val: err.Error()})
	return object
}
