package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseLoad      Phase = "load"      // core loading and symbol binding
	PhaseLifecycle Phase = "lifecycle" // entry point ordering
	PhaseDispatch  Phase = "dispatch"  // environment command handling
	PhaseDecode    Phase = "decode"    // core memory to Go
	PhaseEncode    Phase = "encode"    // Go to core memory
	PhaseDriver    Phase = "driver"    // host driver calls
	PhaseContent   Phase = "content"   // content file loading
	PhaseEngine    Phase = "engine"    // native/wasm backend calls
)

// Kind categorizes the error
type Kind string

const (
	KindProtocolViolation Kind = "protocol_violation"
	KindUnsupported       Kind = "unsupported"
	KindInvalidData       Kind = "invalid_data"
	KindNilPointer        Kind = "nil_pointer"
	KindOutOfBounds       Kind = "out_of_bounds"
	KindVersionMismatch   Kind = "version_mismatch"
	KindNotFound          Kind = "not_found"
	KindInvalidEnum       Kind = "invalid_enum"
	KindMissingExport     Kind = "missing_export"
	KindClosed            Kind = "closed"
	KindAllocation        Kind = "allocation"
	KindInvalidInput      Kind = "invalid_input"
	KindCallFailed        Kind = "call_failed"
)

// Error is the structured error type used throughout the runtime
type Error struct {
	Value   any
	Cause   error
	Phase   Phase
	Kind    Kind
	Command string
	Symbol  string
	Detail  string
	Path    []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Command != "" || e.Symbol != "" {
		b.WriteString(": ")
		if e.Command != "" {
			b.WriteString("command ")
			b.WriteString(e.Command)
		}
		if e.Symbol != "" {
			if e.Command != "" {
				b.WriteString(", ")
			}
			b.WriteString("symbol ")
			b.WriteString(e.Symbol)
		}
	}

	if e.Detail != "" {
		if e.Command != "" || e.Symbol != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Command sets the environment command name
func (b *Builder) Command(name string) *Builder {
	b.err.Command = name
	return b
}

// Symbol sets the core export name
func (b *Builder) Symbol(name string) *Builder {
	b.err.Symbol = name
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// ProtocolViolation creates a lifecycle ordering error.
// Sessions treat these as fatal.
func ProtocolViolation(entry, state string) *Error {
	return &Error{
		Phase:  PhaseLifecycle,
		Kind:   KindProtocolViolation,
		Symbol: entry,
		Detail: fmt.Sprintf("not allowed in state %s", state),
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// NilPointer creates a nil pointer error for a required payload field
func NilPointer(phase Phase, path []string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNilPointer,
		Path:   path,
		Detail: "nil pointer",
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, addr uint64, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("address 0x%x length %d out of bounds", addr, length),
		Value:  addr,
	}
}

// VersionMismatch creates an error for an interface version the host does not understand
func VersionMismatch(phase Phase, what string, got, want uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindVersionMismatch,
		Detail: fmt.Sprintf("%s version %d, want %d", what, got, want),
		Value:  got,
	}
}

// InvalidEnum creates an invalid enum value error
func InvalidEnum(phase Phase, path []string, value any, enumType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidEnum,
		Path:   path,
		Detail: fmt.Sprintf("invalid enum value %v for %s", value, enumType),
		Value:  value,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Closed creates an error for use after close
func Closed(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindClosed,
		Detail: fmt.Sprintf("%s is closed", what),
	}
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(phase Phase, size, align uint32, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("failed to allocate %d bytes (align %d)", size, align),
		Cause:  cause,
	}
}

// CallFailed wraps a failed call into the core
func CallFailed(symbol string, cause error) *Error {
	return &Error{
		Phase:  PhaseEngine,
		Kind:   KindCallFailed,
		Symbol: symbol,
		Cause:  cause,
	}
}

// Load creates a core loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}

// MissingExportsError is returned when a core lacks required entry points
type MissingExportsError struct {
	Path    string
	Symbols []string
}

// NewMissingExportsError creates an error for the given core path and symbols
func NewMissingExportsError(path string, symbols []string) *MissingExportsError {
	return &MissingExportsError{Path: path, Symbols: symbols}
}

func (e *MissingExportsError) Error() string {
	if len(e.Symbols) == 0 {
		return "[load] missing_export: no symbols specified"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("[load] missing_export: %d required symbol(s)", len(e.Symbols)))
	if e.Path != "" {
		b.WriteString(" in ")
		b.WriteString(e.Path)
	}
	b.WriteByte(':')
	for _, s := range e.Symbols {
		b.WriteString("\n  - ")
		b.WriteString(s)
	}
	return b.String()
}

// Is reports whether target matches this error type
func (e *MissingExportsError) Is(target error) bool {
	if _, ok := target.(*MissingExportsError); ok {
		return true
	}
	if t, ok := target.(*Error); ok {
		return t.Phase == PhaseLoad && t.Kind == KindMissingExport
	}
	return false
}
