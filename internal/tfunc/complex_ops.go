package tfunc

import (
	"strings"

	"juliavm/internal/lattice"
	"juliavm/internal/types"
)

// registerComplexOps registers the Complex{T} accessor transfer
// functions (original_source/.../tfuncs/mod.rs's register_complex_ops,
// doc-commented there with the exact real/imag/conj/abs2/angle/reim
// set kept verbatim below).
//
// Includes accessor functions for complex numbers:
//   - real: extract real part (Complex{T} -> T)
//   - imag: extract imaginary part (Complex{T} -> T)
//   - conj: complex conjugate (Complex{T} -> Complex{T})
//   - abs2: squared magnitude (Complex{T} -> T)
//   - angle: phase/argument (Complex{T} -> Float64)
//   - reim: decompose into tuple (Complex{T} -> Tuple{T, T})
func registerComplexOps(r *Registry) {
	r.Register("real", tfuncComplexPart)
	r.Register("imag", tfuncComplexPart)
	r.Register("conj", tfuncConj)
	r.Register("abs2", tfuncComplexPart)
	r.Register("angle", tfuncAngle)
	r.Register("reim", tfuncReim)
}

// complexElemType recovers T from a struct-named "Complex{T}" concrete
// type, the representation internal/lowering/internal/value give a
// complex struct literal (there is no dedicated lattice Complex kind;
// Complex{T} is modeled as a Struct leaf like any other parametric
// struct, per spec.md §3.1's "Complex{T} <: Number but not <: Real"
// carve-out).
func complexElemType(l lattice.LatticeType) (lattice.LatticeType, bool) {
	if l.Kind != lattice.KConcrete || l.Concrete == nil || l.Concrete.StructName == "" {
		return lattice.Top, false
	}
	name := l.Concrete.StructName
	if !strings.HasPrefix(name, "Complex{") || !strings.HasSuffix(name, "}") {
		return lattice.Top, false
	}
	inner := name[len("Complex{") : len(name)-1]
	switch inner {
	case "Int64":
		return lattice.FromType(types.I64T), true
	case "Float64":
		return lattice.FromType(types.F64T), true
	case "Float32":
		return lattice.FromType(types.F32T), true
	default:
		return lattice.Top, true
	}
}

func tfuncComplexPart(args []lattice.LatticeType) lattice.LatticeType {
	if t, ok := complexElemType(arg(args, 0)); ok {
		return t
	}
	return lattice.Top
}

func tfuncConj(args []lattice.LatticeType) lattice.LatticeType {
	return arg(args, 0)
}

func tfuncAngle(args []lattice.LatticeType) lattice.LatticeType {
	return lattice.FromType(types.F64T)
}

func tfuncReim(args []lattice.LatticeType) lattice.LatticeType {
	t, ok := complexElemType(arg(args, 0))
	if !ok {
		return lattice.Top
	}
	return lattice.Tuple([]lattice.LatticeType{t, t})
}
