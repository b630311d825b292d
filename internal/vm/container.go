// Array/tuple/dict/struct/iteration support, grounded on the teacher's
// OpIndex/OpIterStart/OpIterNext handling (internal/vm/vm.go) but
// retargeted at internal/value's typed containers and 1-based
// subscripting (spec.md §3.3/§4.4: Julia-style indexing, not Go's
// 0-based convention).
package vm

import (
	"fmt"

	"juliavm/internal/types"
	"juliavm/internal/value"
)

func (vm *VM) execArray(n int) {
	elems := make([]value.Value, n)
	for i := n - 1; i >= 0; i-- {
		elems[i] = vm.pop()
	}
	data := make(value.AnyData, n)
	copy(data, elems)
	vm.push(value.NewVector(data, types.Any))
}

func indexValue(recv, idx value.Value) (value.Value, error) {
	switch r := recv.(type) {
	case *value.ArrayValue:
		i, ok := asInt64(idx)
		if !ok {
			return nil, fmt.Errorf("BoundsError: non-integer array index %T", idx)
		}
		pos := int(i) - 1
		if pos < 0 || pos >= r.Data.Len() {
			return nil, fmt.Errorf("BoundsError: index %d out of bounds for array of length %d", i, r.Data.Len())
		}
		return r.Data.Get(pos), nil
	case value.TupleValue:
		i, ok := asInt64(idx)
		if !ok {
			return nil, fmt.Errorf("BoundsError: non-integer tuple index %T", idx)
		}
		pos := int(i) - 1
		if pos < 0 || pos >= len(r) {
			return nil, fmt.Errorf("BoundsError: index %d out of bounds for tuple of length %d", i, len(r))
		}
		return r[pos], nil
	case *value.NamedTupleValue:
		if name, ok := idx.(string); ok {
			if v, ok := r.Get(name); ok {
				return v, nil
			}
		}
		i, ok := asInt64(idx)
		if ok && int(i)-1 >= 0 && int(i)-1 < len(r.Values) {
			return r.Values[int(i)-1], nil
		}
		return nil, fmt.Errorf("KeyError: no field %v in named tuple", idx)
	case *value.DictValue:
		v, ok := r.Get(toDisplayString(idx))
		if !ok {
			return nil, fmt.Errorf("KeyError: key %v not found", toDisplayString(idx))
		}
		return v, nil
	case string:
		i, ok := asInt64(idx)
		if !ok {
			return nil, fmt.Errorf("BoundsError: non-integer string index %T", idx)
		}
		runes := []rune(r)
		pos := int(i) - 1
		if pos < 0 || pos >= len(runes) {
			return nil, fmt.Errorf("BoundsError: index %d out of bounds for string of length %d", i, len(runes))
		}
		return value.Char(runes[pos]), nil
	}
	return nil, fmt.Errorf("MethodError: %T is not indexable", recv)
}

func setIndexValue(recv, idx, val value.Value) error {
	switch r := recv.(type) {
	case *value.ArrayValue:
		i, ok := asInt64(idx)
		if !ok {
			return fmt.Errorf("BoundsError: non-integer array index %T", idx)
		}
		pos := int(i) - 1
		if pos < 0 || pos >= r.Data.Len() {
			return fmt.Errorf("BoundsError: index %d out of bounds for array of length %d", i, r.Data.Len())
		}
		r.Data.Set(pos, val)
		return nil
	case *value.DictValue:
		r.Set(toDisplayString(idx), idx, val)
		return nil
	}
	return fmt.Errorf("MethodError: %T does not support index assignment", recv)
}

func unpackValue(src value.Value, n int) []value.Value {
	out := make([]value.Value, n)
	switch s := src.(type) {
	case value.TupleValue:
		for i := 0; i < n && i < len(s); i++ {
			out[i] = s[i]
		}
	case *value.ArrayValue:
		for i := 0; i < n && i < s.Data.Len(); i++ {
			out[i] = s.Data.Get(i)
		}
	case *value.NamedTupleValue:
		for i := 0; i < n && i < len(s.Values); i++ {
			out[i] = s.Values[i]
		}
	}
	return out
}

// iterState drives OpIterStart/OpIterNext over every iterable Value
// shape the language exposes, grounded on the teacher's own iterState
// (internal/vm/vm.go) but widened to this language's container set.
type iterState struct {
	values []value.Value
	pos    int
}

func (it *iterState) next() (value.Value, bool) {
	if it.pos >= len(it.values) {
		return nil, false
	}
	v := it.values[it.pos]
	it.pos++
	return v, true
}

func newIterator(v value.Value) *iterState {
	switch r := v.(type) {
	case *value.ArrayValue:
		vals := make([]value.Value, r.Data.Len())
		for i := range vals {
			vals[i] = r.Data.Get(i)
		}
		return &iterState{values: vals}
	case value.TupleValue:
		return &iterState{values: append([]value.Value{}, r...)}
	case *value.DictValue:
		return &iterState{values: r.Keys()}
	case *value.SetValue:
		return &iterState{values: r.Items()}
	case value.RangeValue:
		return &iterState{values: rangeValues(r)}
	case string:
		runes := []rune(r)
		vals := make([]value.Value, len(runes))
		for i, c := range runes {
			vals[i] = value.Char(c)
		}
		return &iterState{values: vals}
	}
	return &iterState{}
}

func rangeValues(r value.RangeValue) []value.Value {
	start, okS := asInt64(r.Start)
	stop, okE := asInt64(r.Stop)
	if !okS || !okE {
		startF, _ := asFloat64(r.Start)
		stopF, _ := asFloat64(r.Stop)
		step := 1.0
		if r.Step != nil {
			step, _ = asFloat64(r.Step)
		}
		var out []value.Value
		for x := startF; (step > 0 && x <= stopF) || (step < 0 && x >= stopF); x += step {
			out = append(out, x)
		}
		return out
	}
	step := int64(1)
	if r.Step != nil {
		step, _ = asInt64(r.Step)
	}
	var out []value.Value
	if step == 0 {
		return out
	}
	for x := start; (step > 0 && x <= stop) || (step < 0 && x >= stop); x += step {
		out = append(out, value.I64(x))
	}
	return out
}

func (vm *VM) getField(recv value.Value, field string) (value.Value, error) {
	switch r := recv.(type) {
	case value.StructRef:
		inst := vm.heap.Get(r)
		if v, ok := inst.Fields[field]; ok {
			return v, nil
		}
		return nil, fmt.Errorf("FieldError: %s has no field %s", inst.TypeName, field)
	case value.StructInline:
		if v, ok := r.Fields[field]; ok {
			return v, nil
		}
		return nil, fmt.Errorf("FieldError: %s has no field %s", r.TypeName, field)
	case *value.NamedTupleValue:
		if v, ok := r.Get(field); ok {
			return v, nil
		}
		return nil, fmt.Errorf("FieldError: named tuple has no field %s", field)
	}
	return nil, fmt.Errorf("MethodError: %T has no fields", recv)
}

func (vm *VM) setField(recv value.Value, field string, val value.Value) error {
	switch r := recv.(type) {
	case value.StructRef:
		inst := vm.heap.Get(r)
		inst.Fields[field] = val
		return nil
	}
	return fmt.Errorf("MethodError: %T does not support field assignment", recv)
}

func (vm *VM) makeStruct(name string, fieldOrder []string, args []value.Value) value.Value {
	fields := make(map[string]value.Value, len(fieldOrder))
	for i, fname := range fieldOrder {
		if i < len(args) {
			fields[fname] = args[i]
		} else {
			fields[fname] = value.Nothing
		}
	}
	inst := &value.StructInstance{
		TypeName: name,
		Type:     vm.structTypes[name],
		Fields:   fields,
		Order:    fieldOrder,
	}
	return vm.heap.Alloc(inst)
}
