package reactive

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
)

// Object is a record-like raw aggregate: string fields in insertion order.
type Object struct {
	fields map[string]any
	order  []string
}

// NewObject copies fields into a new Object. Initial fields are ordered by name.
func NewObject(fields map[string]any) *Object {
	o := &Object{fields: make(map[string]any, len(fields))}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		o.put(name, fields[name])
	}
	return o
}

func (o *Object) TargetKind() TargetKind { return KindRecord }

func (o *Object) Len() int { return len(o.order) }

// Get reads a field without tracking.
func (o *Object) Get(name string) (any, bool) {
	v, ok := o.fields[name]
	return v, ok
}

func (o *Object) Keys() []string {
	return append([]string(nil), o.order...)
}

func (o *Object) put(name string, v any) (old any, had bool) {
	old, had = o.fields[name]
	o.fields[name] = v
	if !had {
		o.order = append(o.order, name)
	}
	return old, had
}

func (o *Object) remove(name string) bool {
	if _, ok := o.fields[name]; !ok {
		return false
	}
	delete(o.fields, name)
	for i, n := range o.order {
		if n == name {
			o.order = append(o.order[:i], o.order[i+1:]...)
			break
		}
	}
	return true
}

// Array is a sequence raw aggregate.
type Array struct {
	items []any
}

func NewArray(items ...any) *Array {
	return &Array{items: append([]any(nil), items...)}
}

func (a *Array) TargetKind() TargetKind { return KindSequence }

func (a *Array) Len() int { return len(a.items) }

// At reads an element without tracking; out of range reads return nil.
func (a *Array) At(i int) any {
	if i < 0 || i >= len(a.items) {
		return nil
	}
	return a.items[i]
}

func (a *Array) Items() []any {
	return append([]any(nil), a.items...)
}

func (a *Array) setAt(i int, v any) {
	if i >= len(a.items) {
		a.setLen(i + 1)
	}
	a.items[i] = v
}

func (a *Array) setLen(n int) {
	switch {
	case n < len(a.items):
		clear(a.items[n:])
		a.items = a.items[:n]
	case n > len(a.items):
		a.items = append(a.items, make([]any, n-len(a.items))...)
	}
}

// Entry is one key/value pair of a Map.
type Entry struct {
	Key   any
	Value any
}

// Map is a map-like raw aggregate with comparable keys in insertion order.
type Map struct {
	entries map[any]any
	order   []any
}

func NewMap(entries ...Entry) *Map {
	m := &Map{entries: make(map[any]any, len(entries))}
	for _, e := range entries {
		m.put(e.Key, e.Value)
	}
	return m
}

func (m *Map) TargetKind() TargetKind { return KindMap }

func (m *Map) Len() int { return len(m.order) }

// Get reads an entry without tracking.
func (m *Map) Get(key any) (any, bool) {
	v, ok := m.entries[key]
	return v, ok
}

func (m *Map) Keys() []any {
	return append([]any(nil), m.order...)
}

func (m *Map) put(key, v any) (old any, had bool) {
	old, had = m.entries[key]
	m.entries[key] = v
	if !had {
		m.order = append(m.order, key)
	}
	return old, had
}

func (m *Map) remove(key any) bool {
	if _, ok := m.entries[key]; !ok {
		return false
	}
	delete(m.entries, key)
	m.order = removeOrdered(m.order, key)
	return true
}

// Set is a set-like raw aggregate of comparable members in insertion order.
type Set struct {
	members mapset.Set[any]
	order   []any
}

func NewSet(values ...any) *Set {
	s := &Set{members: mapset.NewThreadUnsafeSet[any]()}
	for _, v := range values {
		s.add(v)
	}
	return s
}

func (s *Set) TargetKind() TargetKind { return KindSet }

func (s *Set) Len() int { return s.members.Cardinality() }

// Has checks membership without tracking.
func (s *Set) Has(v any) bool {
	return s.members.Contains(v)
}

func (s *Set) Values() []any {
	return append([]any(nil), s.order...)
}

func (s *Set) add(v any) bool {
	if !s.members.Add(v) {
		return false
	}
	s.order = append(s.order, v)
	return true
}

func (s *Set) remove(v any) bool {
	if !s.members.Contains(v) {
		return false
	}
	s.members.Remove(v)
	s.order = removeOrdered(s.order, v)
	return true
}

func removeOrdered(order []any, v any) []any {
	for i, o := range order {
		if o == v {
			return append(order[:i], order[i+1:]...)
		}
	}
	return order
}

// FromGo converts plain Go data into raw aggregates, recursively:
// map[string]any becomes *Object, []any becomes *Array, map[any]any becomes *Map.
// Other values are returned unchanged.
func FromGo(v any) any {
	switch v := v.(type) {
	case map[string]any:
		fields := make(map[string]any, len(v))
		for name, fv := range v {
			fields[name] = FromGo(fv)
		}
		return NewObject(fields)
	case []any:
		items := make([]any, len(v))
		for i, iv := range v {
			items[i] = FromGo(iv)
		}
		return NewArray(items...)
	case map[any]any:
		m := NewMap()
		for k, mv := range v {
			m.put(k, FromGo(mv))
		}
		return m
	default:
		return v
	}
}

func isAggregate(v any) bool {
	switch v.(type) {
	case *Object, *Array, *Map, *Set:
		return true
	default:
		return false
	}
}
