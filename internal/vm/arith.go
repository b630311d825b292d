// Numeric/comparison/display helpers, grounded on the teacher's
// performAdd/performSub/safeDivide family (internal/vm/vm.go): a type
// switch widening mixed operand kinds to a common representation
// before combining them, generalized here across this language's
// sized-integer/float Value variants instead of a single Go int/
// float64 pair.
package vm

import (
	"fmt"
	"math/big"

	"juliavm/internal/bytecode"
	"juliavm/internal/value"
)

// asInt64 reports whether v is one of the sized integer Value variants
// and, if so, its widened int64 representation.
func asInt64(v value.Value) (int64, bool) {
	switch n := v.(type) {
	case value.I8:
		return int64(n), true
	case value.I16:
		return int64(n), true
	case value.I32:
		return int64(n), true
	case value.I64:
		return int64(n), true
	case value.U8:
		return int64(n), true
	case value.U16:
		return int64(n), true
	case value.U32:
		return int64(n), true
	case value.U64:
		return int64(n), true
	}
	return 0, false
}

func asFloat64(v value.Value) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case value.F32:
		return float64(n), true
	case value.F16:
		return float64(n), true
	}
	if i, ok := asInt64(v); ok {
		return float64(i), true
	}
	return 0, false
}

func asBigInt(v value.Value) (*big.Int, bool) {
	if bi, ok := v.(value.BigInt); ok {
		return bi.V, true
	}
	if i, ok := asInt64(v); ok {
		return big.NewInt(i), true
	}
	return nil, false
}

func asBigFloat(v value.Value) (*big.Float, bool) {
	if bf, ok := v.(value.BigFloat); ok {
		return bf.V, true
	}
	if f, ok := asFloat64(v); ok {
		return big.NewFloat(f), true
	}
	return nil, false
}

// arith evaluates a + - * / % between two numeric (or, for + and
// strings, concatenable) operands, widening to the broadest
// representation either side needs: BigFloat > BigInt > float64 >
// int64, the same ladder the teacher's performAdd walks one rung at a
// time via its type switch.
func arith(op bytecode.OpCode, a, b value.Value) (value.Value, error) {
	if s, ok := a.(string); ok && op == bytecode.OpAdd {
		return s + toDisplayString(b), nil
	}
	if s, ok := b.(string); ok && op == bytecode.OpAdd {
		if _, aIsNum := asFloat64(a); aIsNum {
			return toDisplayString(a) + s, nil
		}
	}
	if _, aBF := a.(value.BigFloat); aBF {
		return arithBigFloat(op, a, b)
	}
	if _, bBF := b.(value.BigFloat); bBF {
		return arithBigFloat(op, a, b)
	}
	if _, aBI := a.(value.BigInt); aBI {
		if _, bIsFloat := asFloat64InexactOnly(b); bIsFloat {
			return arithBigFloat(op, a, b)
		}
		return arithBigInt(op, a, b)
	}
	if _, bBI := b.(value.BigInt); bBI {
		if _, aIsFloat := asFloat64InexactOnly(a); aIsFloat {
			return arithBigFloat(op, a, b)
		}
		return arithBigInt(op, a, b)
	}
	if af, aok := a.(float64); aok {
		bf, _ := asFloat64(b)
		return arithFloat(op, af, bf)
	}
	if bf, bok := b.(float64); bok {
		af, _ := asFloat64(a)
		return arithFloat(op, af, bf)
	}
	if af, aok := asFloat64(a); aok {
		if bf, bok := asFloat64(b); bok {
			if _, aIsInt := asInt64(a); aIsInt {
				if _, bIsInt := asInt64(b); bIsInt {
					ai, _ := asInt64(a)
					bi, _ := asInt64(b)
					return arithInt(op, ai, bi)
				}
			}
			return arithFloat(op, af, bf)
		}
	}
	return nil, fmt.Errorf("no method matching arithmetic operator for %T and %T", a, b)
}

// asFloat64InexactOnly reports a value as float64 only when it is
// already stored as a float kind, used to decide whether a BigInt
// combined with a plain float should widen to BigFloat instead of
// staying exact.
func asFloat64InexactOnly(v value.Value) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case value.F32:
		return float64(n), true
	case value.F16:
		return float64(n), true
	}
	return 0, false
}

func arithInt(op bytecode.OpCode, a, b int64) (value.Value, error) {
	switch op {
	case bytecode.OpAdd:
		return value.I64(a + b), nil
	case bytecode.OpSub:
		return value.I64(a - b), nil
	case bytecode.OpMul:
		return value.I64(a * b), nil
	case bytecode.OpDiv:
		if b == 0 {
			return nil, fmt.Errorf("DivideError: integer division error")
		}
		return float64(a) / float64(b), nil
	case bytecode.OpMod:
		if b == 0 {
			return nil, fmt.Errorf("DivideError: integer division error")
		}
		return value.I64(a % b), nil
	}
	return nil, fmt.Errorf("unsupported integer operator")
}

func arithFloat(op bytecode.OpCode, a, b float64) (value.Value, error) {
	switch op {
	case bytecode.OpAdd:
		return a + b, nil
	case bytecode.OpSub:
		return a - b, nil
	case bytecode.OpMul:
		return a * b, nil
	case bytecode.OpDiv:
		return a / b, nil
	case bytecode.OpMod:
		return fmodFloat(a, b), nil
	}
	return nil, fmt.Errorf("unsupported float operator")
}

func fmodFloat(a, b float64) float64 {
	m := a - b*float64(int64(a/b))
	return m
}

func arithBigInt(op bytecode.OpCode, a, b value.Value) (value.Value, error) {
	ai, _ := asBigInt(a)
	bi, _ := asBigInt(b)
	r := new(big.Int)
	switch op {
	case bytecode.OpAdd:
		r.Add(ai, bi)
	case bytecode.OpSub:
		r.Sub(ai, bi)
	case bytecode.OpMul:
		r.Mul(ai, bi)
	case bytecode.OpDiv:
		if bi.Sign() == 0 {
			return nil, fmt.Errorf("DivideError: integer division error")
		}
		r.Div(ai, bi)
	case bytecode.OpMod:
		if bi.Sign() == 0 {
			return nil, fmt.Errorf("DivideError: integer division error")
		}
		r.Mod(ai, bi)
	default:
		return nil, fmt.Errorf("unsupported BigInt operator")
	}
	return value.BigInt{V: r}, nil
}

func arithBigFloat(op bytecode.OpCode, a, b value.Value) (value.Value, error) {
	af, _ := asBigFloat(a)
	bf, _ := asBigFloat(b)
	r := new(big.Float).SetPrec(value.BigFloatPrecision)
	switch op {
	case bytecode.OpAdd:
		r.Add(af, bf)
	case bytecode.OpSub:
		r.Sub(af, bf)
	case bytecode.OpMul:
		r.Mul(af, bf)
	case bytecode.OpDiv:
		r.Quo(af, bf)
	default:
		return nil, fmt.Errorf("unsupported BigFloat operator")
	}
	return value.BigFloat{V: r}, nil
}

func negate(v value.Value) (value.Value, error) {
	switch n := v.(type) {
	case float64:
		return -n, nil
	case value.BigInt:
		return value.BigInt{V: new(big.Int).Neg(n.V)}, nil
	case value.BigFloat:
		return value.BigFloat{V: new(big.Float).Neg(n.V)}, nil
	}
	if i, ok := asInt64(v); ok {
		return value.I64(-i), nil
	}
	return nil, fmt.Errorf("no method matching unary - for %T", v)
}

func compare(op bytecode.OpCode, a, b value.Value) (value.Value, error) {
	if af, aok := asFloat64(a); aok {
		if bf, bok := asFloat64(b); bok {
			switch op {
			case bytecode.OpGreater:
				return af > bf, nil
			case bytecode.OpLess:
				return af < bf, nil
			case bytecode.OpGreaterEqual:
				return af >= bf, nil
			case bytecode.OpLessEqual:
				return af <= bf, nil
			}
		}
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		switch op {
		case bytecode.OpGreater:
			return as > bs, nil
		case bytecode.OpLess:
			return as < bs, nil
		case bytecode.OpGreaterEqual:
			return as >= bs, nil
		case bytecode.OpLessEqual:
			return as <= bs, nil
		}
	}
	return nil, fmt.Errorf("no method matching comparison operator for %T and %T", a, b)
}

func truthy(v value.Value) bool {
	switch b := v.(type) {
	case bool:
		return b
	case value.NothingT:
		return false
	case nil:
		return false
	}
	return true
}

func valuesEqual(a, b value.Value) bool {
	if af, aok := asFloat64(a); aok {
		if bf, bok := asFloat64(b); bok {
			return af == bf
		}
	}
	return a == b
}

func toDisplayString(v value.Value) string {
	switch s := v.(type) {
	case string:
		return s
	case value.NothingT:
		return "nothing"
	case value.MissingT:
		return "missing"
	case bool:
		if s {
			return "true"
		}
		return "false"
	case value.BigInt:
		return s.V.String()
	case value.BigFloat:
		return s.V.Text('g', -1)
	case value.Symbol:
		return ":" + string(s)
	case value.Char:
		return string(rune(s))
	}
	if f, ok := asFloat64(v); ok {
		if _, isInt := asInt64(v); isInt {
			return fmt.Sprintf("%d", int64(f))
		}
		return fmt.Sprintf("%g", f)
	}
	return fmt.Sprintf("%v", v)
}
