// Package statebox is a versioned value container for optimistic,
// non-blocking mutation. Writers branch off a shared ancestor value
// without coordinating, each branch records its edit as a timestamped
// operation, and divergent branches are reconciled later by replaying
// every recorded operation in stamp order. Conflict resolution is thus
// deferred from write time to merge time.
//
// The container itself is synchronous and lock-free; concurrency lives
// entirely at the caller's level. Merge convergence across processes
// depends on wall-clock ordering, which is an accepted weak-consistency
// tradeoff, not a guarantee.
package statebox

import (
	"fmt"
	"slices"
	"sync/atomic"
	"time"
)

// Statebox wraps a base value and a stamp-ordered log of pending edits.
// Modify and Merge return new containers; Expire is the one documented
// exception that prunes the receiver's log in place.
type Statebox[T any] struct {
	base    T
	current T
	log     oplog[T]
	modms   atomic.Int64
	clock   Clock
}

// Create wraps value in a fresh container with an empty log.
func Create[T any](value T, opts ...Option) *Statebox[T] {
	cfg := newConfig(opts)
	st := &Statebox[T]{base: value, current: value, clock: cfg.clock}
	st.modms.Store(cfg.clock.Now())
	return st
}

// Value returns the container's visible value: the base with this
// container's own pending operation applied, if any.
func (st *Statebox[T]) Value() T {
	return st.current
}

// LastModified returns the unix-millisecond stamp of the last Modify or
// Merge that targeted this container.
func (st *Statebox[T]) LastModified() int64 {
	return st.modms.Load()
}

// Len returns the number of pending operations in the log.
func (st *Statebox[T]) Len() int {
	return len(st.log)
}

// Modify starts a new branch: a container sharing the receiver's base,
// whose value is op applied to that base (not to the receiver's current
// value), and whose log holds only this one edit. The branch does not
// inherit the receiver's log, so chains of modifies without intermediate
// merges keep only the latest edit; merge after every modify to preserve
// multi-step lineages. On invocation failure no container is produced.
func (st *Statebox[T]) Modify(op Op[T]) (*Statebox[T], error) {
	next, err := invoke(op, st.base)
	if err != nil {
		return nil, err
	}
	stamp := st.clock.Now()
	branch := &Statebox[T]{
		base:    st.base,
		current: next,
		log:     oplog[T]{{stamp: stamp, id: newEntryID(stamp), op: op}},
		clock:   st.clock,
	}
	branch.modms.Store(stamp)
	st.modms.Store(stamp)
	boxModifies.Inc()
	return branch, nil
}

// Merge reconciles the receiver with any number of divergent branches:
// the union of all logs, deduplicated by entry identity, is replayed in
// stamp order on top of the receiver's current value. The result is a
// fresh fully-resolved snapshot with an empty log. Merging a container
// with itself is idempotent, as is merging two decodes of the same
// serialized bytes; a live branch and its own decoded copy, however,
// carry distinct entry identities and would replay the edit twice, so
// merge one or the other. If any replayed operation fails, the error
// is returned and no container is produced.
func (st *Statebox[T]) Merge(others ...*Statebox[T]) (*Statebox[T], error) {
	merged := st.log.union(nil)
	for _, other := range others {
		if other == nil {
			continue
		}
		merged = merged.union(other.log)
	}
	val := st.current
	for _, e := range merged {
		next, err := invoke(e.op, val)
		if err != nil {
			return nil, err
		}
		val = next
	}
	now := st.clock.Now()
	st.modms.Store(now)
	snap := &Statebox[T]{base: val, current: val, clock: st.clock}
	snap.modms.Store(now)
	boxMerges.Inc()
	mergeReplayed.Add(float64(len(merged)))
	return snap, nil
}

// Truncate bounds log growth before a merge. If the log holds more than
// keep entries, it returns a new container with the same base, the keep
// most recent entries, and the value reset to the base; the displayed
// value is deliberately not re-derived from the retained entries.
// Otherwise the receiver is returned unchanged. Truncate(0) discards
// every pending edit of the branch.
func (st *Statebox[T]) Truncate(keep int) *Statebox[T] {
	if keep < 0 {
		keep = 0
	}
	if len(st.log) <= keep {
		return st
	}
	trimmed := &Statebox[T]{
		base:    st.base,
		current: st.base,
		log:     slices.Clone(st.log[len(st.log)-keep:]),
		clock:   st.clock,
	}
	trimmed.modms.Store(st.modms.Load())
	return trimmed
}

// Expire drops, in place, every log entry older than lastModified-maxAge
// and returns the receiver. This is the single mutating exception to the
// otherwise non-destructive API; do not call it concurrently with other
// uses of the same container.
func (st *Statebox[T]) Expire(maxAge time.Duration) *Statebox[T] {
	cutoff := st.modms.Load() - maxAge.Milliseconds()
	st.log = slices.DeleteFunc(st.log, func(e entry[T]) bool {
		return e.stamp < cutoff
	})
	return st
}

func (st *Statebox[T]) String() string {
	return fmt.Sprintf("Statebox{value: %v, ops: %v, modified: %d}",
		st.current, st.log, st.modms.Load())
}
