package reactive_test

import (
	"math"
	"testing"

	"github.com/delaneyj/reactivity/reactive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapProxy(t *testing.T) {
	rs := newSystem(t)
	raw := reactive.NewMap(reactive.Entry{Key: "a", Value: 1})
	m := reactive.ReactiveMap(rs, raw)

	var a any
	var has bool
	e := reactive.Effect(rs, func() error {
		a = m.Get("a")
		has = m.Has("b")
		return nil
	})

	m.Set("a", 2)
	assert.Equal(t, 2, a)
	m.Set("b", true)
	assert.True(t, has)
	assert.Equal(t, 3, e.Runs())

	assert.True(t, m.Delete("b"))
	assert.False(t, has)
	_, stillThere := raw.Get("b")
	assert.False(t, stillThere)
	assert.False(t, m.Delete("b"))
	assert.Equal(t, 4, e.Runs())
}

// should re-run size readers on adds and deletes only
func TestMapLen(t *testing.T) {
	rs := newSystem(t)
	m := reactive.ReactiveMap(rs, reactive.NewMap())

	var size int
	reactive.Effect(rs, func() error {
		size = m.Len()
		return nil
	})

	m.Set(1, "one")
	m.Set(2, "two")
	assert.Equal(t, 2, size)
	m.Clear()
	assert.Equal(t, 0, size)
}

// should wrap aggregate keys and values during iteration
func TestMapEntries(t *testing.T) {
	rs := newSystem(t)
	key := reactive.NewObject(nil)
	val := reactive.NewArray(1)
	m := reactive.ReactiveMap(rs, reactive.NewMap(reactive.Entry{Key: key, Value: val}))

	entries := m.Entries()
	require.Len(t, entries, 1)
	assert.Same(t, reactive.Reactive(rs, key), entries[0].Key)
	assert.Same(t, reactive.Reactive(rs, val), entries[0].Value)
	assert.Same(t, reactive.Reactive(rs, val), m.Get(reactive.Reactive(rs, key)))

	count := 0
	m.ForEach(func(value, k any) {
		count++
	})
	assert.Equal(t, 1, count)
}

func TestSetProxy(t *testing.T) {
	rs := newSystem(t)
	raw := reactive.NewSet("a")
	s := reactive.ReactiveSet(rs, raw)

	var hasB bool
	member := reactive.Effect(rs, func() error {
		hasB = s.Has("b")
		return nil
	})
	var size int
	sized := reactive.Effect(rs, func() error {
		size = s.Len()
		return nil
	})

	assert.True(t, s.Add("b"))
	assert.True(t, hasB)
	assert.Equal(t, 2, size)

	assert.False(t, s.Add("b"))
	assert.Equal(t, 2, member.Runs())
	assert.Equal(t, 2, sized.Runs())

	assert.True(t, s.Delete("a"))
	assert.Equal(t, 1, size)
	assert.Equal(t, 2, member.Runs())
	assert.False(t, raw.Has("a"))
	assert.Equal(t, []any{"b"}, s.Values())
	assert.Equal(t, []reactive.Key{"b"}, s.Keys())

	s.Clear()
	assert.Equal(t, 0, size)
	assert.False(t, hasB)
}

// should refuse writes on read-only collections
func TestReadonlyCollections(t *testing.T) {
	rs := newSystem(t)
	rawMap := reactive.NewMap(reactive.Entry{Key: "a", Value: 1})
	rawSet := reactive.NewSet(1)
	m := reactive.Readonly(rs, rawMap).(*reactive.MapProxy)
	s := reactive.Readonly(rs, rawSet).(*reactive.SetProxy)

	m.Set("a", 2)
	assert.False(t, m.Delete("a"))
	m.Clear()
	assert.False(t, s.Add(2))
	assert.False(t, s.Delete(1))
	s.Clear()

	v, _ := rawMap.Get("a")
	assert.Equal(t, 1, v)
	assert.Equal(t, []any{1}, rawSet.Values())
}

// should run a size reader once when clearing several entries
func TestClearRunsReadersOnce(t *testing.T) {
	rs := newSystem(t)
	m := reactive.ReactiveMap(rs, reactive.NewMap(
		reactive.Entry{Key: "a", Value: 1},
		reactive.Entry{Key: "b", Value: 2},
		reactive.Entry{Key: "c", Value: 3},
	))
	s := reactive.ReactiveSet(rs, reactive.NewSet(1, 2, 3))

	var sizes []int
	mapReader := reactive.Effect(rs, func() error {
		sizes = append(sizes, m.Len())
		return nil
	})
	setReader := reactive.Effect(rs, func() error {
		s.Len()
		s.Has(2)
		return nil
	})

	m.Clear()
	s.Clear()
	assert.Equal(t, 2, mapReader.Runs())
	assert.Equal(t, []int{3, 0}, sizes)
	assert.Equal(t, 2, setReader.Runs())

	m.Clear()
	assert.Equal(t, 2, mapReader.Runs())
}

// should follow Go map equality for NaN keys
func TestMapNaNKeys(t *testing.T) {
	rs := newSystem(t)
	m := reactive.ReactiveMap(rs, reactive.NewMap())

	m.Set(math.NaN(), 1)
	m.Set(math.NaN(), 2)
	assert.Equal(t, 2, m.Len())
	assert.False(t, m.Has(math.NaN()))
}
