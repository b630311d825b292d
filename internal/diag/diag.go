// Package diag carries the error taxonomy shared across the pipeline:
// parse errors, unsupported-feature errors raised by lowering, compile
// errors, type-stability warnings, and runtime VmErrors (spec.md §7).
package diag

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Kind classifies a diagnostic. Kinds are a taxonomy, not Go types:
// every diagnostic is a *Diagnostic, distinguished by Kind.
type Kind string

const (
	KindParseError       Kind = "ParseError"
	KindUnsupportedFeature Kind = "UnsupportedFeatureError"
	KindCompileError     Kind = "CompileError"
	KindTypeStability    Kind = "TypeStabilityWarning"
	KindVmError          Kind = "VmError"
	KindInternalError    Kind = "InternalError"
)

// VmErrorKind enumerates the runtime error kinds named in spec.md §7/§4.13.
type VmErrorKind string

const (
	VmStackUnderflow           VmErrorKind = "StackUnderflow"
	VmTypeError                VmErrorKind = "TypeError"
	VmBoundsError              VmErrorKind = "BoundsError"
	VmMethodError              VmErrorKind = "MethodError"
	VmDivisionByZero           VmErrorKind = "DivisionByZero"
	VmBroadcastDimensionMismatch VmErrorKind = "BroadcastDimensionMismatch"
	VmEmptyArrayPop            VmErrorKind = "EmptyArrayPop"
	VmInternalError            VmErrorKind = "InternalError"
)

// Span is a half-open byte range in a source buffer, carried by every
// CST/IR node for diagnostics (spec.md §4.1, §8 span containment).
type Span struct {
	Start, End int
	Line, Col  int
}

func (s Span) Contains(inner Span) bool {
	return s.Start <= inner.Start && inner.End <= s.End
}

// Merge returns the smallest span covering both s and other, keeping
// the line/col of whichever span starts first (the start position)
// for diagnostics.
func (s Span) Merge(other Span) Span {
	out := s
	if other.Start < out.Start {
		out.Start = other.Start
		out.Line, out.Col = other.Line, other.Col
	}
	if other.End > out.End {
		out.End = other.End
	}
	return out
}

// Diagnostic is the shared error/warning value threaded through every
// pipeline stage. It mirrors the teacher's SentraError: a kind, a
// message, a location, and an optional call stack / source excerpt.
type Diagnostic struct {
	Kind      Kind
	VmKind    VmErrorKind // populated only when Kind == KindVmError
	Message   string
	File      string
	Span      Span
	Hint      string // lowering's UnsupportedFeature hint
	CallStack []StackFrame
	Source    string
	Cause     error
}

type StackFrame struct {
	Function string
	File     string
	Line     int
}

func (d *Diagnostic) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s\n", d.Kind, d.Message)
	if d.File != "" {
		fmt.Fprintf(&sb, "  at %s:%d:%d\n", d.File, d.Span.Line, d.Span.Col)
		if d.Source != "" {
			fmt.Fprintf(&sb, "\n  %d | %s\n", d.Span.Line, d.Source)
			pad := strings.Repeat(" ", len(fmt.Sprintf("%d | ", d.Span.Line)))
			if d.Span.Col > 0 {
				pad += strings.Repeat(" ", d.Span.Col-1)
			}
			sb.WriteString(pad + "^\n")
		}
	}
	if d.Hint != "" {
		fmt.Fprintf(&sb, "hint: %s\n", d.Hint)
	}
	for _, f := range d.CallStack {
		if f.Function != "" {
			fmt.Fprintf(&sb, "  at %s (%s:%d)\n", f.Function, f.File, f.Line)
		} else {
			fmt.Fprintf(&sb, "  at %s:%d\n", f.File, f.Line)
		}
	}
	return sb.String()
}

func (d *Diagnostic) Unwrap() error { return d.Cause }

func NewParseError(msg, file string, sp Span) *Diagnostic {
	return &Diagnostic{Kind: KindParseError, Message: msg, File: file, Span: sp}
}

func NewUnsupportedFeature(kind, hint, file string, sp Span) *Diagnostic {
	return &Diagnostic{Kind: KindUnsupportedFeature, Message: "unsupported feature: " + kind, Hint: hint, File: file, Span: sp}
}

func NewCompileError(msg, file string, sp Span) *Diagnostic {
	return &Diagnostic{Kind: KindCompileError, Message: msg, File: file, Span: sp}
}

func NewVmError(kind VmErrorKind, msg string) *Diagnostic {
	return &Diagnostic{Kind: KindVmError, VmKind: kind, Message: msg}
}

// NewInternalError wraps an invariant violation; per spec.md §4.13 this
// "should never be raised by well-formed programs and indicates a
// compiler bug" so it always carries a cause chain for postmortem.
func NewInternalError(msg string, cause error) *Diagnostic {
	return &Diagnostic{Kind: KindInternalError, VmKind: VmInternalError, Message: msg, Cause: errors.WithStack(cause)}
}

func (d *Diagnostic) WithSource(src string) *Diagnostic     { d.Source = src; return d }
func (d *Diagnostic) WithStack(s []StackFrame) *Diagnostic  { d.CallStack = s; return d }
func (d *Diagnostic) AddFrame(fn, file string, line int) *Diagnostic {
	d.CallStack = append(d.CallStack, StackFrame{Function: fn, File: file, Line: line})
	return d
}

// Catchable reports whether a runtime error is catchable via try/catch;
// InternalError is the sole non-catchable kind (spec.md §4.13/§7).
func (d *Diagnostic) Catchable() bool {
	return d.Kind == KindVmError && d.VmKind != VmInternalError
}

// Bag accumulates non-fatal diagnostics (parse-error recovery, type
// stability warnings) alongside a primary result.
type Bag struct {
	items []*Diagnostic
}

func (b *Bag) Add(d *Diagnostic)        { b.items = append(b.items, d) }
func (b *Bag) Items() []*Diagnostic     { return b.items }
func (b *Bag) Empty() bool              { return len(b.items) == 0 }
func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.Kind != KindTypeStability {
			return true
		}
	}
	return false
}
