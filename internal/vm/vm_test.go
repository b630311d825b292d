package vm

import (
	"strings"
	"testing"

	"juliavm/internal/compiler"
	"juliavm/internal/lexer"
	"juliavm/internal/lowering"
	"juliavm/internal/parser"
	"juliavm/internal/value"
)

func runSrc(t *testing.T, src string) (value.Value, string) {
	t.Helper()
	toks := lexer.NewScanner(src).ScanTokens()
	root := parser.New(toks, "test.jl").Parse()
	l := lowering.New("test.jl")
	prog := l.LowerFile(root)
	if !l.Diags.Empty() {
		t.Fatalf("unexpected diagnostics lowering %q: %v", src, l.Diags.Items())
	}
	out := compiler.Compile(prog)

	machine := New(out)
	var sb strings.Builder
	machine.SetOutput(func(s string) { sb.WriteString(s) })
	result, err := machine.Run(out.Main)
	if err != nil {
		t.Fatalf("unexpected error running %q: %v", src, err)
	}
	return result, sb.String()
}

func TestArithmeticAndPrint(t *testing.T) {
	_, out := runSrc(t, "println(1 + 2 * 3)")
	if strings.TrimSpace(out) != "7" {
		t.Fatalf("expected 7, got %q", out)
	}
}

func TestFunctionDispatchCall(t *testing.T) {
	_, out := runSrc(t, "function add(x::Int64, y::Int64)\nreturn x + y\nend\nprintln(add(3, 4))")
	if strings.TrimSpace(out) != "7" {
		t.Fatalf("expected 7, got %q", out)
	}
}

func TestMultipleDispatchResolvesBySpecificity(t *testing.T) {
	src := `
function describe(x::Int64)
    return "int"
end
function describe(x::Float64)
    return "float"
end
println(describe(1))
println(describe(1.5))
`
	_, out := runSrc(t, src)
	lines := strings.Fields(out)
	if len(lines) != 2 || lines[0] != "int" || lines[1] != "float" {
		t.Fatalf("expected [int float], got %q", out)
	}
}

func TestClosureCapturesEnclosingLocal(t *testing.T) {
	src := `
function makeAdder(n::Int64)
    return x -> x + n
end
add5 = makeAdder(5)
println(add5(10))
`
	_, out := runSrc(t, src)
	if strings.TrimSpace(out) != "15" {
		t.Fatalf("expected 15, got %q", out)
	}
}

func TestStructConstructAndFieldAccess(t *testing.T) {
	src := `
struct Point
    x
    y
end
p = Point(3, 4)
println(p.x)
p.x = 9
println(p.x)
`
	_, out := runSrc(t, src)
	lines := strings.Fields(out)
	if len(lines) != 2 || lines[0] != "3" || lines[1] != "9" {
		t.Fatalf("expected [3 9], got %q", out)
	}
}

func TestArrayIndexingIsOneBased(t *testing.T) {
	src := `
a = [10, 20, 30]
println(a[1])
println(a[3])
`
	_, out := runSrc(t, src)
	lines := strings.Fields(out)
	if len(lines) != 2 || lines[0] != "10" || lines[1] != "30" {
		t.Fatalf("expected [10 30], got %q", out)
	}
}

func TestTryCatchPreservesThrownValue(t *testing.T) {
	src := `
try
    throw("boom")
catch e
    println(e)
end
`
	_, out := runSrc(t, src)
	if strings.TrimSpace(out) != "boom" {
		t.Fatalf("expected boom, got %q", out)
	}
}

func TestForEachOverRangeAccumulates(t *testing.T) {
	src := `
total = 0
for i in 1:4
    total = total + i
end
println(total)
`
	_, out := runSrc(t, src)
	if strings.TrimSpace(out) != "10" {
		t.Fatalf("expected 10, got %q", out)
	}
}

func TestPushMutatesArrayInPlace(t *testing.T) {
	src := `
a = [1, 2]
push!(a, 3)
println(length(a))
println(a[3])
`
	_, out := runSrc(t, src)
	lines := strings.Fields(out)
	if len(lines) != 2 || lines[0] != "3" || lines[1] != "3" {
		t.Fatalf("expected [3 3], got %q", out)
	}
}
