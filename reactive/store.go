package reactive

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
)

// DependencySet holds every effect that read one (Target, Key) pair during its
// last run.
type DependencySet struct {
	target  Target
	key     Key
	effects mapset.Set[*EffectRunner]
}

func newDependencySet(target Target, key Key) *DependencySet {
	return &DependencySet{
		target:  target,
		key:     key,
		effects: mapset.NewThreadUnsafeSet[*EffectRunner](),
	}
}

func (ds *DependencySet) Target() Target { return ds.target }
func (ds *DependencySet) Key() Key       { return ds.key }

// Len returns the number of subscribed effects. A nil set is empty.
func (ds *DependencySet) Len() int {
	if ds == nil {
		return 0
	}
	return ds.effects.Cardinality()
}

// Has reports whether e is subscribed.
func (ds *DependencySet) Has(e *EffectRunner) bool {
	if ds == nil {
		return false
	}
	return ds.effects.Contains(e)
}

// Effects returns a snapshot of the subscribers in effect creation order.
// Mutating the set afterwards does not affect the returned slice.
func (ds *DependencySet) Effects() []*EffectRunner {
	if ds == nil {
		return nil
	}
	effects := ds.effects.ToSlice()
	sort.Slice(effects, func(i, j int) bool {
		return effects[i].id < effects[j].id
	})
	return effects
}

func (ds *DependencySet) add(e *EffectRunner) bool {
	return ds.effects.Add(e)
}

func (ds *DependencySet) remove(e *EffectRunner) {
	ds.effects.Remove(e)
}

type targetDeps struct {
	seq  uint64
	keys map[Key]*DependencySet
}

// DependencyStore maps a tracked target to its per-key dependency sets.
// Entries are created lazily on first tracked read and only released by Forget.
type DependencyStore struct {
	buckets map[Target]*targetDeps
	nextSeq uint64
}

func NewDependencyStore() *DependencyStore {
	return &DependencyStore{
		buckets: map[Target]*targetDeps{},
	}
}

// record subscribes e to (target, key) and returns the set if e was not
// already a member.
func (s *DependencyStore) record(target Target, key Key, e *EffectRunner) (*DependencySet, bool) {
	deps, ok := s.buckets[target]
	if !ok {
		s.nextSeq++
		deps = &targetDeps{
			seq:  s.nextSeq,
			keys: map[Key]*DependencySet{},
		}
		s.buckets[target] = deps
	}
	ds, ok := deps.keys[key]
	if !ok {
		ds = newDependencySet(target, key)
		deps.keys[key] = ds
	}
	return ds, ds.add(e)
}

// EffectsFor returns the dependency set for (target, key), or nil when that
// pair has never been read inside an effect.
func (s *DependencyStore) EffectsFor(target Target, key Key) *DependencySet {
	deps, ok := s.buckets[target]
	if !ok {
		return nil
	}
	return deps.keys[key]
}

func (s *DependencyStore) depsFor(target Target) map[Key]*DependencySet {
	deps, ok := s.buckets[target]
	if !ok {
		return nil
	}
	return deps.keys
}

// Forget drops all bookkeeping for target. Effects that were subscribed keep
// running until their next re-run, which re-creates whatever they still read.
func (s *DependencyStore) Forget(target Target) {
	delete(s.buckets, target)
}

// Len returns the number of targets with bookkeeping.
func (s *DependencyStore) Len() int {
	return len(s.buckets)
}

// StoreEntry is one (target, key) row of a store snapshot.
type StoreEntry struct {
	TargetSeq uint64
	Kind      TargetKind
	Key       Key
	Effects   []*EffectRunner
}

// Snapshot lists every non-empty dependency set, ordered by the time the
// target was first tracked and then by key.
func (s *DependencyStore) Snapshot() []StoreEntry {
	type bucket struct {
		target Target
		deps   *targetDeps
	}
	buckets := make([]bucket, 0, len(s.buckets))
	for target, deps := range s.buckets {
		buckets = append(buckets, bucket{target, deps})
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].deps.seq < buckets[j].deps.seq
	})

	var entries []StoreEntry
	for _, b := range buckets {
		keys := make([]Key, 0, len(b.deps.keys))
		for k, ds := range b.deps.keys {
			if ds.Len() > 0 {
				keys = append(keys, k)
			}
		}
		sort.Slice(keys, func(i, j int) bool {
			return keyLess(keys[i], keys[j])
		})
		for _, k := range keys {
			entries = append(entries, StoreEntry{
				TargetSeq: b.deps.seq,
				Kind:      b.target.TargetKind(),
				Key:       k,
				Effects:   b.deps.keys[k].Effects(),
			})
		}
	}
	return entries
}
