package reactive

// Proxy is the tracked view of a raw aggregate. Reads through a proxy are
// recorded against the raw aggregate; writes through it trigger the effects
// that read what changed.
type Proxy interface {
	Target
	Raw() Target
	ReadOnly() bool
	Shallow() bool
	// Len reads the size, tracking the structural key of the aggregate.
	Len() int
	// Keys enumerates the aggregate, tracking its structural key.
	Keys() []Key
}

type proxyMode struct {
	shallow  bool
	readonly bool
}

type proxyKey struct {
	raw  Target
	mode proxyMode
}

type ProxyOption func(*proxyMode)

// Shallow stops nested aggregates from being wrapped on read.
func Shallow() ProxyOption {
	return func(m *proxyMode) {
		m.shallow = true
	}
}

// ReadOnly turns writes and deletes into logged no-ops and stops reads from
// being tracked.
func ReadOnly() ProxyOption {
	return func(m *proxyMode) {
		m.readonly = true
	}
}

// Reactive returns the proxy for raw in the given mode, creating it on first use.
// Asking again for the same raw aggregate and mode returns the same proxy.
// Passing a proxy wraps its raw aggregate. Targets that are not aggregates
// (*Object, *Array, *Map, *Set) yield nil.
func Reactive(rs *ReactiveSystem, raw Target, opts ...ProxyOption) Proxy {
	if p, ok := raw.(Proxy); ok {
		raw = p.Raw()
	}
	var mode proxyMode
	for _, opt := range opts {
		opt(&mode)
	}
	return rs.proxyFor(raw, mode)
}

func Readonly(rs *ReactiveSystem, raw Target) Proxy {
	return Reactive(rs, raw, ReadOnly())
}

func ShallowReactive(rs *ReactiveSystem, raw Target) Proxy {
	return Reactive(rs, raw, Shallow())
}

func ShallowReadonly(rs *ReactiveSystem, raw Target) Proxy {
	return Reactive(rs, raw, Shallow(), ReadOnly())
}

func ReactiveObject(rs *ReactiveSystem, raw *Object, opts ...ProxyOption) *ObjectProxy {
	return Reactive(rs, raw, opts...).(*ObjectProxy)
}

func ReactiveArray(rs *ReactiveSystem, raw *Array, opts ...ProxyOption) *ArrayProxy {
	return Reactive(rs, raw, opts...).(*ArrayProxy)
}

func ReactiveMap(rs *ReactiveSystem, raw *Map, opts ...ProxyOption) *MapProxy {
	return Reactive(rs, raw, opts...).(*MapProxy)
}

func ReactiveSet(rs *ReactiveSystem, raw *Set, opts ...ProxyOption) *SetProxy {
	return Reactive(rs, raw, opts...).(*SetProxy)
}

// ToRaw unwraps a proxy; any other value is returned as is.
func ToRaw(v any) any {
	if p, ok := v.(Proxy); ok {
		return p.Raw()
	}
	return v
}

func IsProxy(v any) bool {
	_, ok := v.(Proxy)
	return ok
}

func (rs *ReactiveSystem) proxyFor(raw Target, mode proxyMode) Proxy {
	key := proxyKey{raw: raw, mode: mode}
	if p, ok := rs.proxies[key]; ok {
		return p
	}
	base := proxyBase{rs: rs, mode: mode}
	var p Proxy
	switch raw := raw.(type) {
	case *Object:
		p = &ObjectProxy{proxyBase: base, raw: raw}
	case *Array:
		p = &ArrayProxy{proxyBase: base, raw: raw}
	case *Map:
		p = &MapProxy{proxyBase: base, raw: raw}
	case *Set:
		p = &SetProxy{proxyBase: base, raw: raw}
	default:
		return nil
	}
	rs.proxies[key] = p
	return p
}

type proxyBase struct {
	rs   *ReactiveSystem
	mode proxyMode
}

func (b *proxyBase) ReadOnly() bool { return b.mode.readonly }
func (b *proxyBase) Shallow() bool  { return b.mode.shallow }

func (b *proxyBase) track(target Target, key Key) {
	if b.mode.readonly {
		return
	}
	b.rs.Track(target, key)
}

// wrap turns a nested raw aggregate into a proxy of the same readonly mode.
func (b *proxyBase) wrap(v any) any {
	if b.mode.shallow || !isAggregate(v) {
		return v
	}
	return b.rs.proxyFor(v.(Target), proxyMode{readonly: b.mode.readonly})
}

func (b *proxyBase) wrapAll(vs []any) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = b.wrap(v)
	}
	return out
}

// rejectWrite logs and reports true when the proxy is read-only.
func (b *proxyBase) rejectWrite(kind TargetKind, op string, key Key) bool {
	if !b.mode.readonly {
		return false
	}
	b.rs.logger.Warn("reactive: target is read-only",
		"kind", kind.String(),
		"op", op,
		"key", FormatKey(key),
	)
	b.rs.instr.ReadonlyRejected(kind)
	return true
}
