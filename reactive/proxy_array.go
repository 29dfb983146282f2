package reactive

// ArrayProxy is the tracked view of an *Array.
type ArrayProxy struct {
	proxyBase
	raw *Array
}

func (p *ArrayProxy) TargetKind() TargetKind { return KindSequence }
func (p *ArrayProxy) Raw() Target            { return p.raw }

// At reads index i, tracking it even when it is out of range so that a later
// write growing the array to i re-runs the reader.
func (p *ArrayProxy) At(i int) any {
	p.track(p.raw, i)
	return p.wrap(p.raw.At(i))
}

// Get accepts an int index or LengthKey.
func (p *ArrayProxy) Get(key Key) any {
	if i, ok := key.(int); ok {
		return p.At(i)
	}
	if key == LengthKey {
		return p.Len()
	}
	return nil
}

func (p *ArrayProxy) Len() int {
	p.track(p.raw, LengthKey)
	return p.raw.Len()
}

// Keys lists the indexes, tracking LengthKey.
func (p *ArrayProxy) Keys() []Key {
	n := p.Len()
	keys := make([]Key, n)
	for i := 0; i < n; i++ {
		keys[i] = i
	}
	return keys
}

// Values reads every element, tracking LengthKey and each index.
func (p *ArrayProxy) Values() []any {
	n := p.Len()
	out := make([]any, n)
	for i := 0; i < n; i++ {
		out[i] = p.At(i)
	}
	return out
}

func (p *ArrayProxy) ForEach(fn func(v any, i int)) {
	for i, v := range p.Values() {
		fn(v, i)
	}
}

// SetAt writes index i. Writing at or past the length is an OpAdd and grows the
// array, padding with nil; otherwise it is an OpSet when the value changed.
// Negative indexes are ignored.
func (p *ArrayProxy) SetAt(i int, v any) {
	if i < 0 || p.rejectWrite(KindSequence, "set", i) {
		return
	}
	p.setAt(i, v)
}

// Set accepts an int index or LengthKey with an int length.
func (p *ArrayProxy) Set(key Key, v any) {
	if i, ok := key.(int); ok {
		p.SetAt(i, v)
		return
	}
	if n, ok := v.(int); ok && key == LengthKey {
		p.SetLen(n)
	}
}

// SetLen truncates or pads the array. Shrinking re-runs every effect that read
// an index at or past the new length.
func (p *ArrayProxy) SetLen(n int) {
	if n < 0 || p.rejectWrite(KindSequence, "set", LengthKey) {
		return
	}
	p.setLen(n)
}

// Delete clears index i to nil, keeping the length, and reports whether i was in
// range.
func (p *ArrayProxy) Delete(key Key) bool {
	i, ok := key.(int)
	if !ok {
		return false
	}
	if p.rejectWrite(KindSequence, "delete", i) {
		return false
	}
	if i < 0 || i >= p.raw.Len() {
		return false
	}
	p.raw.items[i] = nil
	p.rs.Trigger(p.raw, i, OpDelete, nil)
	return true
}

// Push appends values and returns the new length.
func (p *ArrayProxy) Push(values ...any) int {
	p.mutate("push", func() {
		for _, v := range values {
			p.setAt(p.raw.Len(), v)
		}
	})
	return p.raw.Len()
}

// Pop removes and returns the last element.
func (p *ArrayProxy) Pop() any {
	var last any
	p.mutate("pop", func() {
		n := p.raw.Len()
		if n == 0 {
			return
		}
		last = p.raw.At(n - 1)
		p.setLen(n - 1)
	})
	return p.wrap(last)
}

// Shift removes and returns the first element.
func (p *ArrayProxy) Shift() any {
	var first any
	p.mutate("shift", func() {
		if p.raw.Len() == 0 {
			return
		}
		items := p.raw.Items()
		first = items[0]
		p.rewrite(items[1:])
	})
	return p.wrap(first)
}

// Unshift prepends values and returns the new length.
func (p *ArrayProxy) Unshift(values ...any) int {
	p.mutate("unshift", func() {
		next := make([]any, 0, len(values)+p.raw.Len())
		for _, v := range values {
			next = append(next, ToRaw(v))
		}
		p.rewrite(append(next, p.raw.items...))
	})
	return p.raw.Len()
}

// Splice removes deleteCount elements at start, inserts items there and
// returns the removed elements. A negative start counts from the end.
func (p *ArrayProxy) Splice(start, deleteCount int, items ...any) []any {
	var removed []any
	p.mutate("splice", func() {
		old := p.raw.Items()
		n := len(old)
		if start < 0 {
			start = max(n+start, 0)
		}
		start = min(start, n)
		deleteCount = min(max(deleteCount, 0), n-start)

		removed = append(removed, old[start:start+deleteCount]...)
		next := make([]any, 0, n-deleteCount+len(items))
		next = append(next, old[:start]...)
		for _, v := range items {
			next = append(next, ToRaw(v))
		}
		next = append(next, old[start+deleteCount:]...)
		p.rewrite(next)
	})
	return p.wrapAll(removed)
}

// IndexOf returns the first index holding v using strict equality, so NaN is
// never found. A proxy argument matches its raw element.
func (p *ArrayProxy) IndexOf(v any) int {
	target := ToRaw(v)
	n := p.Len()
	for i := 0; i < n; i++ {
		if strictEquals(ToRaw(p.At(i)), target) {
			return i
		}
	}
	return -1
}

func (p *ArrayProxy) LastIndexOf(v any) int {
	target := ToRaw(v)
	for i := p.Len() - 1; i >= 0; i-- {
		if strictEquals(ToRaw(p.At(i)), target) {
			return i
		}
	}
	return -1
}

// Includes reports whether v is an element, treating NaN as equal to NaN.
func (p *ArrayProxy) Includes(v any) bool {
	target := ToRaw(v)
	n := p.Len()
	for i := 0; i < n; i++ {
		if SameValueZero(ToRaw(p.At(i)), target) {
			return true
		}
	}
	return false
}

// mutate runs a multi-step mutation with tracking paused: the reads it does
// internally must not become dependencies of the calling effect, or two effects
// pushing to the same array would keep re-running each other.
func (p *ArrayProxy) mutate(op string, fn func()) {
	if p.rejectWrite(KindSequence, op, LengthKey) {
		return
	}
	p.rs.PauseTracking()
	defer p.rs.ResumeTracking()
	p.rs.Batch(fn)
}

func (p *ArrayProxy) setAt(i int, v any) {
	v = ToRaw(v)
	old := p.raw.At(i)
	op := OpSet
	if i >= p.raw.Len() {
		op = OpAdd
	}
	p.raw.setAt(i, v)
	if op == OpAdd || HasChanged(old, v) {
		p.rs.Trigger(p.raw, i, op, v)
	}
}

func (p *ArrayProxy) setLen(n int) {
	if n == p.raw.Len() {
		return
	}
	p.raw.setLen(n)
	p.rs.Trigger(p.raw, LengthKey, OpSet, n)
}

// rewrite makes the raw items equal to next, triggering only the indexes that
// changed, then truncates.
func (p *ArrayProxy) rewrite(next []any) {
	oldLen := p.raw.Len()
	for i, v := range next {
		p.setAt(i, v)
	}
	if len(next) < oldLen {
		p.setLen(len(next))
	}
}
