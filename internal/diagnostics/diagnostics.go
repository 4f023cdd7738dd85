// Package diagnostics defines the single error value type shared by every
// user-facing pass of the compiler (parser, scoping pass, typing pass),
// and the accumulation helpers around it.
//
// Internal invariant violations are a different taxonomy (spec.md §7):
// those panic with an "internal compiler error:" prefix instead of
// producing a DiagnosticError, since they indicate a bug in this compiler
// rather than a problem with the user's program.
package diagnostics

import (
	"fmt"

	"github.com/hetorus/tapl/internal/token"
)

// ErrorCode classifies a diagnostic by pass and kind, mirroring the
// P###/S###/T### families used for parser/scoping/typing errors.
type ErrorCode string

const (
	// Parser (AstError) codes.
	ErrUnexpectedToken     ErrorCode = "P001"
	ErrMissingNewline      ErrorCode = "P002"
	ErrIllegalReturn       ErrorCode = "P003"
	ErrIllegalThis         ErrorCode = "P004"
	ErrIllegalLoopControl  ErrorCode = "P005"
	ErrRecursionTooDeep    ErrorCode = "P006"
	ErrVoidArgument        ErrorCode = "P007"
	ErrDuplicateLifecycle  ErrorCode = "P008"
	ErrMalformedString     ErrorCode = "P009"
	ErrInvalidClassMember  ErrorCode = "P010"
	ErrInvalidAssignTarget ErrorCode = "P011"

	// Scoping pass codes.
	ErrUnknownIdentifier  ErrorCode = "S001"
	ErrIdentifierExists   ErrorCode = "S002"
	ErrUnknownFunction    ErrorCode = "S003"

	// Typing pass codes.
	ErrTypeMismatch      ErrorCode = "T001"
	ErrNumericOutOfRange ErrorCode = "T002"
	ErrNotCallable       ErrorCode = "T003"
	ErrArityMismatch     ErrorCode = "T004"
	ErrArgumentType      ErrorCode = "T005"
	ErrReturnMismatch    ErrorCode = "T006"
	ErrUncastableType    ErrorCode = "T007"
	ErrUnaryOperandType  ErrorCode = "T008"
)

// DiagnosticError is a single user-visible compiler error: what went
// wrong, where in the source, and which file.
type DiagnosticError struct {
	Code    ErrorCode
	Token   token.Token
	File    string
	Message string
}

// NewError constructs a DiagnosticError for the given token and message.
func NewError(code ErrorCode, tok token.Token, message string) *DiagnosticError {
	return &DiagnosticError{Code: code, Token: tok, Message: message}
}

func (e *DiagnosticError) Error() string {
	file := e.File
	if file == "" {
		file = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s", file, e.Token.Line, e.Token.Column, e.Code, e.Message)
}

// Bag accumulates diagnostics across a pass so that one bad statement does
// not prevent diagnostics from later, independent statements (spec.md §7).
type Bag struct {
	Errors []*DiagnosticError
}

// Add appends err to the bag, setting its File if unset.
func (b *Bag) Add(err *DiagnosticError, file string) {
	if err.File == "" {
		err.File = file
	}
	b.Errors = append(b.Errors, err)
}

// HasErrors reports whether any diagnostic was recorded.
func (b *Bag) HasErrors() bool { return len(b.Errors) > 0 }
