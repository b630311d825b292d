package dispatch

// MethodTable maps a function name to its ordered list of methods
// (spec.md §4.8: "Method tables live as a mapping from name → ordered
// list of methods"). Methods are appended in declaration order; that
// order is the final dispatch tie-break when specificity alone can't
// separate two candidates.
type MethodTable struct {
	byName map[string][]*Method
}

func New() *MethodTable {
	return &MethodTable{byName: map[string][]*Method{}}
}

// AddMethod registers a method under its own Name, in the order
// methods are compiled (spec.md §4.8: "Methods are added during
// compilation as functions are registered").
func (t *MethodTable) AddMethod(m *Method) {
	t.byName[m.Name] = append(t.byName[m.Name], m)
}

// MethodsFor returns every registered method for name, in declaration
// order; nil if the name has no methods at all.
func (t *MethodTable) MethodsFor(name string) []*Method {
	return t.byName[name]
}

// Names returns every distinct function name with at least one method,
// for diagnostics (e.g. listing candidate names near a typo).
func (t *MethodTable) Names() []string {
	names := make([]string, 0, len(t.byName))
	for name := range t.byName {
		names = append(names, name)
	}
	return names
}
