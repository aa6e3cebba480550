// Package reporter defines the two error taxonomies described in
// spec.md §7: ParseError (tokenizer/grammar failures, always carrying a
// byte offset) and EvalError (evaluation-time type/arity/comparability
// failures). Both implement PositionedError, adapted from the teacher's
// ErrorWithPos/errorWithSourcePos pattern (reporter.Error/Errorf wrapping a
// SourcePosInfo) down to the single Pos byte-offset this grammar needs.
package reporter

import (
	"errors"
	"fmt"

	"github.com/go-pathql/pathql/ast"
)

// Sentinel errors so callers can errors.Is rather than string-match.
var (
	ErrSyntax           = errors.New("syntax error")
	ErrTypeMismatch     = errors.New("type mismatch")
	ErrUnknownTransform = errors.New("unknown transform")
	ErrBadTransformArgs = errors.New("bad transform arguments")
	ErrIncomparable     = errors.New("incomparable")
)

// PositionedError is implemented by both ParseError and EvalError, mirrors
// the teacher's ErrorWithPos contract (error + GetPosition + Unwrap).
type PositionedError interface {
	error
	Position() ast.Pos
	Unwrap() error
}

// ParseKind discriminates the kind of syntax failure, spec.md §7.
type ParseKind int8

const (
	UnexpectedChar ParseKind = iota
	UnterminatedString
	UnterminatedBracket
	BadNumber
	BadEscape
)

func (k ParseKind) String() string {
	switch k {
	case UnexpectedChar:
		return "unexpected character"
	case UnterminatedString:
		return "unterminated string"
	case UnterminatedBracket:
		return "unterminated bracket"
	case BadNumber:
		return "bad number"
	case BadEscape:
		return "bad escape"
	default:
		return "parse error"
	}
}

// ParseError carries the byte offset and kind of the first unrecoverable
// parse failure, spec.md §3 "parsing is total... a malformed suffix yields
// the longest valid prefix plus a parse error carrying the byte offset."
type ParseError struct {
	Offset  ast.Pos
	Kind    ParseKind
	Message string
}

func NewParseError(offset ast.Pos, kind ParseKind, format string, args ...interface{}) *ParseError {
	return &ParseError{Offset: offset, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at %d: %s", e.Kind, e.Offset, e.Message)
}

func (e *ParseError) Position() ast.Pos { return e.Offset }

func (e *ParseError) Unwrap() error { return ErrSyntax }

var _ PositionedError = (*ParseError)(nil)

// EvalKind discriminates the kind of evaluation failure, spec.md §7.
type EvalKind int8

const (
	TypeMismatch EvalKind = iota
	UnknownTransform
	BadTransformArgs
	Incomparable
	DivideByZero
)

// EvalError is returned by Evaluate/transform application. Evaluation
// stops at the first error (spec.md §7); partial results are never
// surfaced alongside it.
type EvalError struct {
	Offset  ast.Pos
	Kind    EvalKind
	Message string

	// Name is the segment/transform name of the failing AST element where
	// applicable, for host-side diagnostics.
	Name string
}

func NewEvalError(offset ast.Pos, kind EvalKind, name string, format string, args ...interface{}) *EvalError {
	return &EvalError{Offset: offset, Kind: kind, Name: name, Message: fmt.Sprintf(format, args...)}
}

func (e *EvalError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s: %s (%s)", e.sentinel(), e.Message, e.Name)
	}
	return fmt.Sprintf("%s: %s", e.sentinel(), e.Message)
}

func (e *EvalError) sentinel() string {
	switch e.Kind {
	case TypeMismatch:
		return ErrTypeMismatch.Error()
	case UnknownTransform:
		return ErrUnknownTransform.Error()
	case BadTransformArgs:
		return ErrBadTransformArgs.Error()
	case Incomparable:
		return ErrIncomparable.Error()
	case DivideByZero:
		return "divide by zero"
	default:
		return "eval error"
	}
}

func (e *EvalError) Position() ast.Pos { return e.Offset }

func (e *EvalError) Unwrap() error {
	switch e.Kind {
	case TypeMismatch:
		return ErrTypeMismatch
	case UnknownTransform:
		return ErrUnknownTransform
	case BadTransformArgs:
		return ErrBadTransformArgs
	case Incomparable:
		return ErrIncomparable
	default:
		return nil
	}
}

var _ PositionedError = (*EvalError)(nil)
