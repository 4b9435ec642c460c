package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseLoad    Phase = "load"    // reading component binaries and documents
	PhaseDecode  Phase = "decode"  // binary to interface catalog
	PhaseParse   Phase = "parse"   // YAML documents and interface names
	PhaseMerge   Phase = "merge"   // folding components into the graph
	PhaseResolve Phase = "resolve" // link resolution and validation
	PhaseEmit    Phase = "emit"    // manifest projection
	PhaseConfig  Phase = "config"  // command-line and environment configuration
)

// Kind categorizes the error
type Kind string

const (
	// KindComponent: a referenced component is missing, mismatched, or lacks
	// an image/application reference.
	KindComponent Kind = "component_error"
	// KindLink: a link constructor has a dangling source/target or is
	// structurally invalid.
	KindLink Kind = "link_error"
	// KindInterface: a target does not export the required interface, or
	// nothing does.
	KindInterface Kind = "interface_error"

	KindNotFound     Kind = "not_found"
	KindInvalidData  Kind = "invalid_data"
	KindInvalidInput Kind = "invalid_input"
	KindUnsupported  Kind = "unsupported"
)

// Error is the structured error type used throughout wail
type Error struct {
	Value     any
	Cause     error
	Phase     Phase
	Kind      Kind
	Component string
	Interface string
	Detail    string
	Path      []string
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

	if e.Component != "" || e.Interface != "" {
		b.WriteString(" (")
		if e.Component != "" {
			b.WriteString("component ")
			b.WriteString(e.Component)
		}
		if e.Interface != "" {
			if e.Component != "" {
				b.WriteString(", ")
			}
			b.WriteString("interface ")
			b.WriteString(e.Interface)
		}
		b.WriteByte(')')
	}

	if e.Detail != "" {
		b.WriteString(": ")
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

// Component sets the component the error is about
func (b *Builder) Component(name string) *Builder {
	b.err.Component = name
	return b
}

// Interface sets the interface triple the error is about
func (b *Builder) Interface(id string) *Builder {
	b.err.Interface = id
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

// Taxonomy constructors

// ComponentError creates a component error
func ComponentError(phase Phase, component, detail string) *Error {
	return &Error{
		Phase:     phase,
		Kind:      KindComponent,
		Component: component,
		Detail:    detail,
	}
}

// ComponentMismatch creates the error raised when a description attaches a
// link for an interface the component does not import.
func ComponentMismatch(component, iface string) *Error {
	return &Error{
		Phase:     PhaseMerge,
		Kind:      KindComponent,
		Component: component,
		Interface: iface,
		Detail:    fmt.Sprintf("component %s does not import interface %s", component, iface),
	}
}

// LinkError creates a link error
func LinkError(phase Phase, component, detail string) *Error {
	return &Error{
		Phase:     phase,
		Kind:      KindLink,
		Component: component,
		Detail:    detail,
	}
}

// InterfaceError creates an interface error
func InterfaceError(phase Phase, component, iface, detail string) *Error {
	return &Error{
		Phase:     phase,
		Kind:      KindInterface,
		Component: component,
		Interface: iface,
		Detail:    detail,
	}
}

// Generic constructors

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

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
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

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Load creates a document or binary loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}

// Decode creates a binary decoding error for the named component
func Decode(component string, cause error) *Error {
	return &Error{
		Phase:     PhaseDecode,
		Kind:      KindInvalidData,
		Component: component,
		Detail:    "decode component binary",
		Cause:     cause,
	}
}

// ParseFailed creates a parsing error
func ParseFailed(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindInvalidData,
		Detail: fmt.Sprintf("parse %s", what),
		Cause:  cause,
	}
}

// IsKind reports whether err is an *Error of the given kind, in any phase.
func IsKind(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Kind == kind {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
