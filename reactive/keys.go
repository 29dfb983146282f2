package reactive

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Key identifies what was read on a Target: a field name, an index, a map key or
// one of the sentinel keys. Keys must be comparable.
type Key = any

type sentinelKey struct {
	name string
	id   uint64
}

func newSentinelKey(name string) *sentinelKey {
	return &sentinelKey{
		name: name,
		id:   xxhash.Sum64String(name) & 0x7fffffffffffffff,
	}
}

func (k *sentinelKey) String() string {
	return k.name
}

var (
	// IterateKey is tracked by enumeration of records and sets, by Len and by
	// value iteration of maps. Structural adds and deletes trigger it.
	IterateKey Key = newSentinelKey("ITERATE")
	// KeyIterateKey is tracked by key-only iteration of maps.
	KeyIterateKey Key = newSentinelKey("KEY_ITERATE")
	// LengthKey is tracked by length reads and enumeration of arrays.
	LengthKey Key = newSentinelKey("LENGTH")
)

// IsSentinel reports whether k is one of IterateKey, KeyIterateKey or LengthKey.
func IsSentinel(k Key) bool {
	_, ok := k.(*sentinelKey)
	return ok
}

// FormatKey renders a key for diagnostics.
func FormatKey(k Key) string {
	switch k := k.(type) {
	case *sentinelKey:
		return k.name
	case string:
		return k
	default:
		return fmt.Sprint(k)
	}
}

// keyLess orders keys for snapshots: sentinels first by their hashed id, then
// ints ascending, then everything else by its formatted text.
func keyLess(a, b Key) bool {
	as, aSentinel := a.(*sentinelKey)
	bs, bSentinel := b.(*sentinelKey)
	switch {
	case aSentinel && bSentinel:
		return as.id < bs.id
	case aSentinel:
		return true
	case bSentinel:
		return false
	}
	ai, aInt := a.(int)
	bi, bInt := b.(int)
	switch {
	case aInt && bInt:
		return ai < bi
	case aInt:
		return true
	case bInt:
		return false
	}
	return FormatKey(a) < FormatKey(b)
}

// TriggerOp classifies a mutation for fan-out purposes.
type TriggerOp uint8

const (
	OpSet TriggerOp = iota
	OpAdd
	OpDelete
)

func (op TriggerOp) String() string {
	switch op {
	case OpSet:
		return "SET"
	case OpAdd:
		return "ADD"
	case OpDelete:
		return "DELETE"
	default:
		return fmt.Sprintf("TriggerOp(%d)", uint8(op))
	}
}

// TargetKind tags the shape of a tracked aggregate.
type TargetKind uint8

const (
	KindRecord TargetKind = iota
	KindSequence
	KindMap
	KindSet
)

func (k TargetKind) String() string {
	switch k {
	case KindRecord:
		return "record"
	case KindSequence:
		return "sequence"
	case KindMap:
		return "map"
	case KindSet:
		return "set"
	default:
		return fmt.Sprintf("TargetKind(%d)", uint8(k))
	}
}

// Target is anything whose reads can be tracked. Identity is pointer identity,
// so implementations must be pointer types.
type Target interface {
	TargetKind() TargetKind
}
