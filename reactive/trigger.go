package reactive

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
)

// runSet collects effects to re-run for one mutation, once each, in the order
// they were added.
type runSet struct {
	active  *EffectRunner
	seen    mapset.Set[*EffectRunner]
	ordered []*EffectRunner
}

func newRunSet(active *EffectRunner) *runSet {
	return &runSet{
		active: active,
		seen:   mapset.NewThreadUnsafeSet[*EffectRunner](),
	}
}

// addAll adds the subscribers of ds, skipping the effect that is running right
// now: an effect never re-triggers itself from inside its own run.
func (s *runSet) addAll(ds *DependencySet) {
	for _, e := range ds.Effects() {
		if e == s.active {
			continue
		}
		if s.seen.Add(e) {
			s.ordered = append(s.ordered, e)
		}
	}
}

// Trigger re-runs the effects that depend on key of target after a mutation of
// kind op. newValue is only consulted when an array's LengthKey is set, where it
// must be the new length.
//
// Besides the direct subscribers of key, structural mutations reach:
//   - IterateKey subscribers on any add or delete, and on any set of a map entry
//   - KeyIterateKey subscribers on adds and deletes of map entries
//   - LengthKey subscribers on adds to arrays
//   - every index subscriber at or past the new length when an array shrinks
//
// Each effect runs at most once per call, through its scheduler when it has one.
// Jobs queued by schedulers run when the outermost batch around this call ends.
func (rs *ReactiveSystem) Trigger(target Target, key Key, op TriggerOp, newValue any) {
	toRun := newRunSet(rs.activeEffect)
	rs.collect(toRun, target, key, op, newValue)
	rs.runAll(toRun)
}

// triggerKeys is Trigger for several keys hit by one mutation of kind op. The
// effects reached through any of them run once in total.
func (rs *ReactiveSystem) triggerKeys(target Target, keys []Key, op TriggerOp) {
	toRun := newRunSet(rs.activeEffect)
	for _, key := range keys {
		rs.collect(toRun, target, key, op, nil)
	}
	rs.runAll(toRun)
}

func (rs *ReactiveSystem) collect(toRun *runSet, target Target, key Key, op TriggerOp, newValue any) {
	deps := rs.store.depsFor(target)
	kind := target.TargetKind()
	if deps == nil {
		rs.instr.Triggered(kind, op, 0)
		return
	}

	before := len(toRun.ordered)
	toRun.addAll(deps[key])

	structural := op == OpAdd || op == OpDelete
	if structural || (op == OpSet && kind == KindMap) {
		toRun.addAll(deps[IterateKey])
	}
	if structural && kind == KindMap {
		toRun.addAll(deps[KeyIterateKey])
	}
	if op == OpAdd && kind == KindSequence {
		toRun.addAll(deps[LengthKey])
	}
	if kind == KindSequence && key == LengthKey {
		if newLen, ok := newValue.(int); ok {
			for _, idx := range indexKeysFrom(deps, newLen) {
				toRun.addAll(deps[idx])
			}
		}
	}
	rs.instr.Triggered(kind, op, len(toRun.ordered)-before)
}

func (rs *ReactiveSystem) runAll(toRun *runSet) {
	if len(toRun.ordered) == 0 {
		return
	}
	rs.Batch(func() {
		for _, e := range toRun.ordered {
			if e.stopped {
				continue
			}
			if e.scheduler != nil {
				e.scheduler(e)
			} else {
				e.dispatch()
			}
		}
	})
}

// indexKeysFrom returns the int keys of deps that are >= from, ascending.
func indexKeysFrom(deps map[Key]*DependencySet, from int) []int {
	var idxs []int
	for k := range deps {
		if i, ok := k.(int); ok && i >= from {
			idxs = append(idxs, i)
		}
	}
	sort.Ints(idxs)
	return idxs
}
