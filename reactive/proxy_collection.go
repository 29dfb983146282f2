package reactive

// MapProxy is the tracked view of a *Map. Keys must be comparable; a proxy used
// as a key is replaced by its raw aggregate. Keys follow Go map equality, so a
// NaN key never matches itself: every Set with NaN adds a new entry and Has(NaN)
// is false.
type MapProxy struct {
	proxyBase
	raw *Map
}

func (p *MapProxy) TargetKind() TargetKind { return KindMap }
func (p *MapProxy) Raw() Target            { return p.raw }

func (p *MapProxy) Get(key any) any {
	key = ToRaw(key)
	p.track(p.raw, key)
	v, _ := p.raw.Get(key)
	return p.wrap(v)
}

func (p *MapProxy) Has(key any) bool {
	key = ToRaw(key)
	p.track(p.raw, key)
	_, ok := p.raw.Get(key)
	return ok
}

// Set stores an entry. A new key triggers OpAdd; an existing key triggers OpSet
// when the value changed, which also reaches IterateKey readers since they
// observed the values.
func (p *MapProxy) Set(key, value any) {
	key = ToRaw(key)
	if p.rejectWrite(KindMap, "set", key) {
		return
	}
	value = ToRaw(value)
	old, had := p.raw.put(key, value)
	switch {
	case !had:
		p.rs.Trigger(p.raw, key, OpAdd, value)
	case HasChanged(old, value):
		p.rs.Trigger(p.raw, key, OpSet, value)
	}
}

func (p *MapProxy) Delete(key any) bool {
	key = ToRaw(key)
	if p.rejectWrite(KindMap, "delete", key) {
		return false
	}
	if !p.raw.remove(key) {
		return false
	}
	p.rs.Trigger(p.raw, key, OpDelete, nil)
	return true
}

// Clear deletes every entry. Effects reached through any of the removed keys
// run once, after all of them are gone.
func (p *MapProxy) Clear() {
	if p.rejectWrite(KindMap, "clear", IterateKey) {
		return
	}
	keys := p.raw.Keys()
	if len(keys) == 0 {
		return
	}
	for _, key := range keys {
		p.raw.remove(key)
	}
	p.rs.triggerKeys(p.raw, keys, OpDelete)
}

// Len tracks IterateKey.
func (p *MapProxy) Len() int {
	p.track(p.raw, IterateKey)
	return p.raw.Len()
}

// Keys tracks KeyIterateKey only, so overwriting a value does not re-run
// readers that only enumerated the keys.
func (p *MapProxy) Keys() []Key {
	p.track(p.raw, KeyIterateKey)
	return p.wrapAll(p.raw.Keys())
}

func (p *MapProxy) Values() []any {
	p.track(p.raw, IterateKey)
	keys := p.raw.Keys()
	out := make([]any, len(keys))
	for i, k := range keys {
		v, _ := p.raw.Get(k)
		out[i] = p.wrap(v)
	}
	return out
}

func (p *MapProxy) Entries() []Entry {
	p.track(p.raw, IterateKey)
	keys := p.raw.Keys()
	out := make([]Entry, len(keys))
	for i, k := range keys {
		v, _ := p.raw.Get(k)
		out[i] = Entry{Key: p.wrap(k), Value: p.wrap(v)}
	}
	return out
}

func (p *MapProxy) ForEach(fn func(value, key any)) {
	for _, e := range p.Entries() {
		fn(e.Value, e.Key)
	}
}

// SetProxy is the tracked view of a *Set.
type SetProxy struct {
	proxyBase
	raw *Set
}

func (p *SetProxy) TargetKind() TargetKind { return KindSet }
func (p *SetProxy) Raw() Target            { return p.raw }

// Add inserts v and triggers OpAdd if it was not already a member.
func (p *SetProxy) Add(v any) bool {
	v = ToRaw(v)
	if p.rejectWrite(KindSet, "add", v) {
		return false
	}
	if !p.raw.add(v) {
		return false
	}
	p.rs.Trigger(p.raw, v, OpAdd, v)
	return true
}

func (p *SetProxy) Has(v any) bool {
	v = ToRaw(v)
	p.track(p.raw, v)
	return p.raw.Has(v)
}

func (p *SetProxy) Delete(v any) bool {
	v = ToRaw(v)
	if p.rejectWrite(KindSet, "delete", v) {
		return false
	}
	if !p.raw.remove(v) {
		return false
	}
	p.rs.Trigger(p.raw, v, OpDelete, nil)
	return true
}

func (p *SetProxy) Clear() {
	if p.rejectWrite(KindSet, "clear", IterateKey) {
		return
	}
	members := p.raw.Values()
	if len(members) == 0 {
		return
	}
	for _, v := range members {
		p.raw.remove(v)
	}
	p.rs.triggerKeys(p.raw, members, OpDelete)
}

func (p *SetProxy) Len() int {
	p.track(p.raw, IterateKey)
	return p.raw.Len()
}

// Keys is the same as Values: a set's keys are its members. Both track
// IterateKey.
func (p *SetProxy) Keys() []Key {
	return p.Values()
}

func (p *SetProxy) Values() []any {
	p.track(p.raw, IterateKey)
	return p.wrapAll(p.raw.Values())
}

func (p *SetProxy) ForEach(fn func(v any)) {
	for _, v := range p.Values() {
		fn(v)
	}
}
