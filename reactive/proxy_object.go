package reactive

import "fmt"

// ObjectProxy is the tracked view of an *Object.
type ObjectProxy struct {
	proxyBase
	raw *Object
}

func (p *ObjectProxy) TargetKind() TargetKind { return KindRecord }
func (p *ObjectProxy) Raw() Target            { return p.raw }

// Get reads a field. Nested aggregates come back wrapped unless the proxy is
// shallow.
func (p *ObjectProxy) Get(key Key) any {
	name := fieldName(key)
	p.track(p.raw, name)
	v, _ := p.raw.Get(name)
	return p.wrap(v)
}

// Has reports whether the field exists, tracking the field so that adding or
// deleting it re-runs the reader.
func (p *ObjectProxy) Has(key Key) bool {
	name := fieldName(key)
	p.track(p.raw, name)
	_, ok := p.raw.Get(name)
	return ok
}

// Set writes a field. A new field triggers OpAdd; an existing field triggers
// OpSet only when the value observably changed.
func (p *ObjectProxy) Set(key Key, value any) {
	name := fieldName(key)
	if p.rejectWrite(KindRecord, "set", name) {
		return
	}
	value = ToRaw(value)
	old, had := p.raw.put(name, value)
	switch {
	case !had:
		p.rs.Trigger(p.raw, name, OpAdd, value)
	case HasChanged(old, value):
		p.rs.Trigger(p.raw, name, OpSet, value)
	}
}

// Delete removes a field and reports whether it existed.
func (p *ObjectProxy) Delete(key Key) bool {
	name := fieldName(key)
	if p.rejectWrite(KindRecord, "delete", name) {
		return false
	}
	if !p.raw.remove(name) {
		return false
	}
	p.rs.Trigger(p.raw, name, OpDelete, nil)
	return true
}

// Keys lists field names, tracking IterateKey.
func (p *ObjectProxy) Keys() []Key {
	p.track(p.raw, IterateKey)
	keys := make([]Key, len(p.raw.order))
	for i, name := range p.raw.order {
		keys[i] = name
	}
	return keys
}

func (p *ObjectProxy) Len() int {
	p.track(p.raw, IterateKey)
	return p.raw.Len()
}

func fieldName(key Key) string {
	if s, ok := key.(string); ok {
		return s
	}
	return fmt.Sprint(key)
}
