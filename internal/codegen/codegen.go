// Package codegen is the AoT code generator spec.md §4.12/§6 names as
// an external collaborator surface: given an internal/aotir.AotProgram,
// produce a standalone artifact runnable without this module's VM.
// Implemented here as a pluggable Emitter interface with one reference
// backend (GoSourceEmitter) so the module is self-testing without
// depending on an external native target the way a real JIT/LLVM
// backend would (spec.md's stated Non-goal).
//
// Grounded on the teacher's own internal/formatter package (reference
// only — not imported, since its gofmt-wrapping there operates on
// sentra source text, not generated Go) for the idea of a dedicated
// formatting step; the actual formatting call is stdlib go/format
// rather than golang.org/x/tools/imports, since single-file emission
// never needs import-path resolution — a deliberate, spec-sanctioned
// stdlib choice.
package codegen

import (
	"fmt"
	"go/format"
	"strconv"
	"strings"

	"juliavm/internal/aotir"
	"juliavm/internal/ir"
	"juliavm/internal/types"
)

// CodegenConfig is the external collaborator configuration spec.md §6
// names: Pure rejects any program containing a node the converter
// couldn't express in typed form instead of silently emitting a
// panic stub for it, and Comments controls whether the emitted source
// carries a provenance comment over each function.
type CodegenConfig struct {
	Pure     bool
	Comments bool
}

// Emitter turns one AotProgram into source text for some target.
// GoSourceEmitter is the only implementation this module ships, but
// the interface is the seam a real native backend would replace.
type Emitter interface {
	Emit(prog *aotir.AotProgram, cfg CodegenConfig) (string, error)
}

// GoSourceEmitter renders an AotProgram as a single gofmt'd Go source
// file: one function per AotFunction, typed parameters/return, and an
// `aotUnsupported[T]()` panic stub standing in for any node Build
// (internal/aotir) couldn't convert.
type GoSourceEmitter struct{ Package string }

func NewGoSourceEmitter(pkg string) *GoSourceEmitter {
	if pkg == "" {
		pkg = "main"
	}
	return &GoSourceEmitter{Package: pkg}
}

func (g *GoSourceEmitter) Emit(prog *aotir.AotProgram, cfg CodegenConfig) (string, error) {
	if cfg.Pure && !prog.Pure() {
		return "", fmt.Errorf("codegen: program contains dynamically-dispatched code, cannot emit pure output")
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "package %s\n\n", g.Package)
	sb.WriteString("import \"math\"\n\n")
	sb.WriteString("func aotUnsupported[T any]() T {\n\tpanic(\"dynamic node unsupported in ahead-of-time output\")\n}\n\n")

	for _, sd := range prog.Structs {
		emitStruct(&sb, sd)
	}
	for _, fn := range prog.Functions {
		e := &funcEmitter{cfg: cfg}
		e.emitFunction(&sb, fn)
	}

	out, err := format.Source([]byte(sb.String()))
	if err != nil {
		return sb.String(), fmt.Errorf("codegen: generated source failed to gofmt: %w", err)
	}
	return string(out), nil
}

func emitStruct(sb *strings.Builder, sd *ir.StructDef) {
	fmt.Fprintf(sb, "type %s struct {\n", sd.Name)
	for _, f := range sd.Fields {
		fmt.Fprintf(sb, "\t%s %s\n", exportedName(f.Name), goType(resolveFieldType(f)))
	}
	sb.WriteString("}\n\n")
}

// resolveFieldType mirrors aotir's own deliberately-narrow TypeRef
// resolution: a struct field without a primitive annotation widens to
// Any (emitted as `any`) rather than this package reimplementing
// internal/compiler's full name-table resolution.
func resolveFieldType(f ir.TypedParam) *types.JuliaType {
	if f.TypeAnnotation == nil {
		return types.AnyType()
	}
	if t, ok := primitiveGoTypes[f.TypeAnnotation.Name]; ok {
		return t
	}
	return types.AnyType()
}

var primitiveGoTypes = map[string]*types.JuliaType{
	"Int8": types.Primitive("Int8"), "Int16": types.Primitive("Int16"),
	"Int32": types.Primitive("Int32"), "Int64": types.Primitive("Int64"),
	"Float32": types.Primitive("Float32"), "Float64": types.Primitive("Float64"),
	"Bool": types.Primitive("Bool"), "String": types.Primitive("String"),
	"Char": types.Primitive("Char"),
}

// exportedName capitalizes a field/function name so the generated
// source is usable from outside its own package, matching ordinary Go
// convention for generated code (unlike this language's own
// lowercase-by-default identifiers).
func exportedName(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

func goType(t *types.JuliaType) string {
	if t == nil {
		return "any"
	}
	switch t.Name {
	case "Int8":
		return "int8"
	case "Int16":
		return "int16"
	case "Int32":
		return "int32"
	case "Int64":
		return "int64"
	case "Int128":
		return "int64"
	case "UInt8":
		return "uint8"
	case "UInt16":
		return "uint16"
	case "UInt32":
		return "uint32"
	case "UInt64":
		return "uint64"
	case "Float16", "Float32":
		return "float32"
	case "Float64":
		return "float64"
	case "Bool":
		return "bool"
	case "String":
		return "string"
	case "Char":
		return "rune"
	case "Symbol":
		return "string"
	default:
		return "any"
	}
}

func quoteString(s string) string { return strconv.Quote(s) }
func quoteRune(r rune) string     { return strconv.QuoteRune(r) }
