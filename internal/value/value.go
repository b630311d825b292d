// Package value implements the runtime Value representation of
// spec.md §3.3: a tagged union of primitives, container references,
// struct/heap references, closures, and meta values.
//
// Grounded directly on the teacher's VM value model
// (internal/vm/value.go + the type-switch arithmetic in vm.go, e.g.
// `case float64:` / `case string:`): Value is plain `interface{}`
// holding native Go types for the common cases, with small wrapper
// types standing in for each distinct Julia primitive width so a type
// switch can tell `Float32` from `Float16` apart. This is the
// interface{}-plus-type-switch idiom the teacher actually runs in
// production, not the NaN-boxed experiment living alongside it — we
// ground on the former because it is simpler to extend to BigInt/
// BigFloat and a struct heap without `unsafe`.
package value

import (
	"math/big"

	"juliavm/internal/types"
)

// Value is any of the variants below. nil represents no value has been
// produced (distinct from the Nothing singleton, which is a real value).
type Value interface{}

// --- singletons ---

type NothingT struct{}
type MissingT struct{}

var Nothing = NothingT{}
var Missing = MissingT{}

// --- sized primitives: distinct Go types so a type switch disambiguates
// widths the way spec.md §3.3 requires (I8/.../I128, U8/.../U64, F16/
// F32/F64, Bool is plain Go bool). ---

type I8 int8
type I16 int16
type I32 int32
type I64 int64
type U8 uint8
type U16 uint16
type U32 uint32
type U64 uint64
type F16 float32 // widened storage, narrow semantics enforced by tfuncs/VM
type F32 float32
type Char rune
type Symbol string

// BigInt/BigFloat use math/big directly (DESIGN.md: no third-party
// bignum library in the retrieved pack improves on the standard one).
type BigInt struct{ V *big.Int }
type I128 struct{ V *big.Int } // Int128/UInt128 modeled via big.Int, range-checked by tfuncs
type U128 struct{ V *big.Int }

type BigFloat struct{ V *big.Float }

// BigFloatPrecision is the process-wide precision constant required by
// spec.md §3.3/§9: a compile-time constant, so it never changes
// during a run.
const BigFloatPrecision = 256

func NewBigFloat(f float64) BigFloat {
	return BigFloat{V: new(big.Float).SetPrec(BigFloatPrecision).SetFloat64(f)}
}

// --- containers ---

// ArrayData is the typed backing store for an array; spec.md §3.3 names
// 15 concrete variants. We model them as a closed set of Go slice kinds
// behind one interface so indexing/iteration stay branch-free per array.
type ArrayData interface {
	Len() int
	Get(i int) Value
	Set(i int, v Value)
	Append(v Value) ArrayData
	Clone() ArrayData
}

type F32Data []float32
type F64Data []float64
type I8Data []int8
type I16Data []int16
type I32Data []int32
type I64Data []int64
type I128Data []I128
type U8Data []uint8
type U16Data []uint16
type U32Data []uint32
type U64Data []uint64
type BoolData []bool
type StringData []string
type CharData []rune
type StructRefData []StructRef
type AnyData []Value

func (d F32Data) Len() int           { return len(d) }
func (d F32Data) Get(i int) Value    { return F32(d[i]) }
func (d F32Data) Set(i int, v Value) { d[i] = float32(v.(F32)) }
func (d F32Data) Append(v Value) ArrayData { return append(d, float32(v.(F32))) }
func (d F32Data) Clone() ArrayData   { c := make(F32Data, len(d)); copy(c, d); return c }

func (d F64Data) Len() int           { return len(d) }
func (d F64Data) Get(i int) Value    { return d[i] }
func (d F64Data) Set(i int, v Value) { d[i] = v.(float64) }
func (d F64Data) Append(v Value) ArrayData { return append(d, v.(float64)) }
func (d F64Data) Clone() ArrayData   { c := make(F64Data, len(d)); copy(c, d); return c }

func (d I64Data) Len() int           { return len(d) }
func (d I64Data) Get(i int) Value    { return I64(d[i]) }
func (d I64Data) Set(i int, v Value) { d[i] = int64(v.(I64)) }
func (d I64Data) Append(v Value) ArrayData { return append(d, int64(v.(I64))) }
func (d I64Data) Clone() ArrayData   { c := make(I64Data, len(d)); copy(c, d); return c }

func (d I32Data) Len() int           { return len(d) }
func (d I32Data) Get(i int) Value    { return I32(d[i]) }
func (d I32Data) Set(i int, v Value) { d[i] = int32(v.(I32)) }
func (d I32Data) Append(v Value) ArrayData { return append(d, int32(v.(I32))) }
func (d I32Data) Clone() ArrayData   { c := make(I32Data, len(d)); copy(c, d); return c }

func (d I16Data) Len() int           { return len(d) }
func (d I16Data) Get(i int) Value    { return I16(d[i]) }
func (d I16Data) Set(i int, v Value) { d[i] = int16(v.(I16)) }
func (d I16Data) Append(v Value) ArrayData { return append(d, int16(v.(I16))) }
func (d I16Data) Clone() ArrayData   { c := make(I16Data, len(d)); copy(c, d); return c }

func (d I8Data) Len() int           { return len(d) }
func (d I8Data) Get(i int) Value    { return I8(d[i]) }
func (d I8Data) Set(i int, v Value) { d[i] = int8(v.(I8)) }
func (d I8Data) Append(v Value) ArrayData { return append(d, int8(v.(I8))) }
func (d I8Data) Clone() ArrayData   { c := make(I8Data, len(d)); copy(c, d); return c }

func (d I128Data) Len() int           { return len(d) }
func (d I128Data) Get(i int) Value    { return d[i] }
func (d I128Data) Set(i int, v Value) { d[i] = v.(I128) }
func (d I128Data) Append(v Value) ArrayData { return append(d, v.(I128)) }
func (d I128Data) Clone() ArrayData   { c := make(I128Data, len(d)); copy(c, d); return c }

func (d U64Data) Len() int           { return len(d) }
func (d U64Data) Get(i int) Value    { return U64(d[i]) }
func (d U64Data) Set(i int, v Value) { d[i] = uint64(v.(U64)) }
func (d U64Data) Append(v Value) ArrayData { return append(d, uint64(v.(U64))) }
func (d U64Data) Clone() ArrayData   { c := make(U64Data, len(d)); copy(c, d); return c }

func (d U32Data) Len() int           { return len(d) }
func (d U32Data) Get(i int) Value    { return U32(d[i]) }
func (d U32Data) Set(i int, v Value) { d[i] = uint32(v.(U32)) }
func (d U32Data) Append(v Value) ArrayData { return append(d, uint32(v.(U32))) }
func (d U32Data) Clone() ArrayData   { c := make(U32Data, len(d)); copy(c, d); return c }

func (d U16Data) Len() int           { return len(d) }
func (d U16Data) Get(i int) Value    { return U16(d[i]) }
func (d U16Data) Set(i int, v Value) { d[i] = uint16(v.(U16)) }
func (d U16Data) Append(v Value) ArrayData { return append(d, uint16(v.(U16))) }
func (d U16Data) Clone() ArrayData   { c := make(U16Data, len(d)); copy(c, d); return c }

func (d U8Data) Len() int           { return len(d) }
func (d U8Data) Get(i int) Value    { return U8(d[i]) }
func (d U8Data) Set(i int, v Value) { d[i] = uint8(v.(U8)) }
func (d U8Data) Append(v Value) ArrayData { return append(d, uint8(v.(U8))) }
func (d U8Data) Clone() ArrayData   { c := make(U8Data, len(d)); copy(c, d); return c }

func (d BoolData) Len() int           { return len(d) }
func (d BoolData) Get(i int) Value    { return d[i] }
func (d BoolData) Set(i int, v Value) { d[i] = v.(bool) }
func (d BoolData) Append(v Value) ArrayData { return append(d, v.(bool)) }
func (d BoolData) Clone() ArrayData   { c := make(BoolData, len(d)); copy(c, d); return c }

func (d StringData) Len() int           { return len(d) }
func (d StringData) Get(i int) Value    { return d[i] }
func (d StringData) Set(i int, v Value) { d[i] = v.(string) }
func (d StringData) Append(v Value) ArrayData { return append(d, v.(string)) }
func (d StringData) Clone() ArrayData   { c := make(StringData, len(d)); copy(c, d); return c }

func (d CharData) Len() int           { return len(d) }
func (d CharData) Get(i int) Value    { return Char(d[i]) }
func (d CharData) Set(i int, v Value) { d[i] = rune(v.(Char)) }
func (d CharData) Append(v Value) ArrayData { return append(d, rune(v.(Char))) }
func (d CharData) Clone() ArrayData   { c := make(CharData, len(d)); copy(c, d); return c }

func (d StructRefData) Len() int           { return len(d) }
func (d StructRefData) Get(i int) Value    { return d[i] }
func (d StructRefData) Set(i int, v Value) { d[i] = v.(StructRef) }
func (d StructRefData) Append(v Value) ArrayData { return append(d, v.(StructRef)) }
func (d StructRefData) Clone() ArrayData   { c := make(StructRefData, len(d)); copy(c, d); return c }

func (d AnyData) Len() int           { return len(d) }
func (d AnyData) Get(i int) Value    { return d[i] }
func (d AnyData) Set(i int, v Value) { d[i] = v }
func (d AnyData) Append(v Value) ArrayData { return append(d, v) }
func (d AnyData) Clone() ArrayData   { c := make(AnyData, len(d)); copy(c, d); return c }

// ArrayValue is a heap-allocated, reference-counted-by-sharing array
// with column-major layout for multi-dimensional shapes (spec.md §3.3).
type ArrayValue struct {
	Data  ArrayData
	Shape []int
	Elem  *types.JuliaType
}

func NewVector(data ArrayData, elem *types.JuliaType) *ArrayValue {
	return &ArrayValue{Data: data, Shape: []int{data.Len()}, Elem: elem}
}

func (a *ArrayValue) Rank() int { return len(a.Shape) }

// ColMajorIndex converts a multi-dimensional subscript to a flat
// column-major offset (spec.md §4.11 broadcast / §3.3 layout).
func (a *ArrayValue) ColMajorIndex(subs []int) int {
	idx, stride := 0, 1
	for d := 0; d < len(a.Shape); d++ {
		idx += subs[d] * stride
		stride *= a.Shape[d]
	}
	return idx
}

// MemoryValue models `Memory{T}`: a flat, unshaped typed buffer that
// ArrayValue can be built on top of.
type MemoryValue struct {
	Data ArrayData
}

type TupleValue []Value

type NamedTupleValue struct {
	Names  []string
	Values []Value
}

func (n *NamedTupleValue) Get(name string) (Value, bool) {
	for i, f := range n.Names {
		if f == name {
			return n.Values[i], true
		}
	}
	return nil, false
}

// DictValue preserves insertion order alongside a lookup map, the way
// the teacher's MapObj pairs an ordered-friendly structure with fast
// lookup (grounded on vmregister's MapObj design intent, reimplemented
// without NaN-boxing).
type DictValue struct {
	order []string
	index map[string]int
	keys  map[string]Value
	vals  map[string]Value
	KeyT  *types.JuliaType
	ValT  *types.JuliaType
}

func NewDict(k, v *types.JuliaType) *DictValue {
	return &DictValue{index: map[string]int{}, keys: map[string]Value{}, vals: map[string]Value{}, KeyT: k, ValT: v}
}

func (d *DictValue) Set(keyRepr string, key, val Value) {
	if _, ok := d.index[keyRepr]; !ok {
		d.index[keyRepr] = len(d.order)
		d.order = append(d.order, keyRepr)
	}
	d.keys[keyRepr] = key
	d.vals[keyRepr] = val
}

func (d *DictValue) Get(keyRepr string) (Value, bool) {
	v, ok := d.vals[keyRepr]
	return v, ok
}

func (d *DictValue) Delete(keyRepr string) {
	if _, ok := d.index[keyRepr]; !ok {
		return
	}
	delete(d.index, keyRepr)
	delete(d.keys, keyRepr)
	delete(d.vals, keyRepr)
	for i, k := range d.order {
		if k == keyRepr {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
}

func (d *DictValue) Len() int { return len(d.order) }

func (d *DictValue) Keys() []Value {
	out := make([]Value, len(d.order))
	for i, k := range d.order {
		out[i] = d.keys[k]
	}
	return out
}

func (d *DictValue) Values() []Value {
	out := make([]Value, len(d.order))
	for i, k := range d.order {
		out[i] = d.vals[k]
	}
	return out
}

type SetValue struct {
	order []string
	items map[string]Value
	Elem  *types.JuliaType
}

func NewSet(elem *types.JuliaType) *SetValue {
	return &SetValue{items: map[string]Value{}, Elem: elem}
}

func (s *SetValue) Add(repr string, v Value) {
	if _, ok := s.items[repr]; !ok {
		s.order = append(s.order, repr)
	}
	s.items[repr] = v
}

func (s *SetValue) Has(repr string) bool { _, ok := s.items[repr]; return ok }
func (s *SetValue) Len() int             { return len(s.order) }
func (s *SetValue) Items() []Value {
	out := make([]Value, len(s.order))
	for i, k := range s.order {
		out[i] = s.items[k]
	}
	return out
}

// RangeValue covers both UnitRange (Step == nil) and StepRange.
type RangeValue struct {
	Start, Stop Value
	Step        Value // nil for UnitRange
}

// --- struct heap ---

// StructRef addresses an instance on the VM-owned struct heap by index
// (spec.md §3.5): the heap is append-only, field assignment rebinds the
// slot through the pointer the heap holds, giving interior mutability
// across shared references without a GC.
type StructRef int

// StructInstance is a heap-resident struct value; multiple StructRefs
// (held by different Value copies) alias the same *StructInstance.
type StructInstance struct {
	TypeName string
	Type     *types.JuliaType
	Fields   map[string]Value
	Order    []string
}

// StructInline is a by-value struct representation (spec.md §3.3 lists
// it alongside StructRef); used only for ephemeral, non-aliased struct
// temporaries the compiler can prove never escape (e.g. Complex
// arithmetic intermediates) so they avoid a heap slot.
type StructInline struct {
	TypeName string
	Fields   map[string]Value
}

// StructHeap is the VM-owned, monotonically growing struct store.
type StructHeap struct {
	instances []*StructInstance
}

func NewStructHeap() *StructHeap { return &StructHeap{} }

func (h *StructHeap) Alloc(inst *StructInstance) StructRef {
	h.instances = append(h.instances, inst)
	return StructRef(len(h.instances) - 1)
}

func (h *StructHeap) Get(ref StructRef) *StructInstance { return h.instances[int(ref)] }

func (h *StructHeap) Len() int { return len(h.instances) }

// --- callables ---

type ClosureValue struct {
	FnIndex   int
	Name      string
	Captured  map[string]Value
	TypeArgs  map[string]*types.JuliaType
}

type FunctionValue struct {
	Name  string
	Index int
}

// GeneratorValue wraps an underlying iterable plus a function index; it
// is evaluated lazily by stepping the iterator and invoking the
// function through the VM's normal call mechanism (spec.md §9).
type GeneratorValue struct {
	Underlying Value
	FuncIndex  int
}

// IOValue models an abstract sink (spec.md §6); IOBuffer is the one
// concrete, in-memory, append-only, interior-mutable implementation.
type IOValue interface {
	Write(s string)
	String() string
}

type IOBuffer struct {
	buf []byte
}

func NewIOBuffer() *IOBuffer       { return &IOBuffer{} }
func (b *IOBuffer) Write(s string) { b.buf = append(b.buf, s...) }
func (b *IOBuffer) String() string { return string(b.buf) }

// --- meta/quoting values ---

type DataTypeValue struct{ T *types.JuliaType }

type QuoteNode struct{ Value Value }

type LineNumberNode struct {
	Line int
	File string
}

type GlobalRefValue struct{ Module, Name string }

// QuotedExpr is the runtime representation of a quoted `Expr(head,
// args...)` (spec.md §3.1's meta/quoting `Expr` type, §9 macros).
type QuotedExpr struct {
	Head string
	Args []Value
}

type ModuleValue struct {
	Name    string
	Exports map[string]Value
}

type PairsValue struct {
	Underlying *DictValue
}

type RegexValue struct{ Pattern string }
type RegexMatchValue struct {
	Match  string
	Groups []string
}
