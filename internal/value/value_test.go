package value

import "testing"

func TestArrayDataTypeSwitch(t *testing.T) {
	d := F64Data{1, 2, 3}
	arr := NewVector(d, nil)
	if arr.Data.Len() != 3 {
		t.Fatalf("expected len 3, got %d", arr.Data.Len())
	}
	if got := arr.Data.Get(1); got != 2.0 {
		t.Fatalf("expected 2.0, got %v", got)
	}
	arr.Data.Set(1, 9.0)
	if got := arr.Data.Get(1); got != 9.0 {
		t.Fatalf("expected 9.0 after Set, got %v", got)
	}
}

func TestColMajorIndex(t *testing.T) {
	arr := &ArrayValue{Shape: []int{2, 3}}
	// column-major: element (1,2) (0-indexed) -> 1 + 2*2 = 5
	if got := arr.ColMajorIndex([]int{1, 2}); got != 5 {
		t.Fatalf("expected 5, got %d", got)
	}
}

func TestDictPreservesInsertionOrder(t *testing.T) {
	d := NewDict(nil, nil)
	d.Set("a", "a", 1)
	d.Set("b", "b", 2)
	d.Set("a", "a", 3) // overwrite, should not move position
	keys := d.Keys()
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Fatalf("expected insertion order [a b], got %v", keys)
	}
	v, ok := d.Get("a")
	if !ok || v != 3 {
		t.Fatalf("expected overwritten value 3, got %v ok=%v", v, ok)
	}
}

func TestSetDedup(t *testing.T) {
	s := NewSet(nil)
	s.Add("1", 1)
	s.Add("1", 1)
	s.Add("2", 2)
	if s.Len() != 2 {
		t.Fatalf("expected 2 distinct items, got %d", s.Len())
	}
}

func TestStructHeapAliasing(t *testing.T) {
	h := NewStructHeap()
	ref := h.Alloc(&StructInstance{TypeName: "Point", Fields: map[string]Value{"x": 1.0}, Order: []string{"x"}})
	alias := ref
	h.Get(alias).Fields["x"] = 42.0
	if h.Get(ref).Fields["x"] != 42.0 {
		t.Fatal("expected struct heap mutation visible through aliased ref")
	}
}

func TestIOBufferAppendOnly(t *testing.T) {
	b := NewIOBuffer()
	b.Write("hello, ")
	b.Write("world")
	if b.String() != "hello, world" {
		t.Fatalf("unexpected buffer contents: %q", b.String())
	}
}

func TestBigFloatPrecision(t *testing.T) {
	bf := NewBigFloat(1.5)
	if bf.V.Prec() != BigFloatPrecision {
		t.Fatalf("expected precision %d, got %d", BigFloatPrecision, bf.V.Prec())
	}
}
