package statebox

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/cespare/xxhash"
)

// entry is one logged edit: a millisecond stamp, an identity for
// deduplication, and the operation itself. Entries are immutable once
// inserted; stamp and identity never change.
type entry[T any] struct {
	stamp int64
	id    uint64
	op    Op[T]
}

func (e entry[T]) String() string {
	return fmt.Sprintf("op{%d/%x}", e.stamp, e.id)
}

// oplog is kept sorted by (stamp, id) ascending. The stamp alone decides
// replay order; the id only breaks ties, deterministically within a
// process run and across decodes of the same bytes.
type oplog[T any] []entry[T]

func cmpEntries[T any](a, b entry[T]) int {
	if a.stamp != b.stamp {
		if a.stamp < b.stamp {
			return -1
		}
		return 1
	}
	if a.id != b.id {
		if a.id < b.id {
			return -1
		}
		return 1
	}
	return 0
}

// union merges two sorted logs, collapsing entries with equal identity.
func (l oplog[T]) union(other oplog[T]) oplog[T] {
	merged := make(oplog[T], 0, len(l)+len(other))
	merged = append(merged, l...)
	merged = append(merged, other...)
	slices.SortStableFunc(merged, cmpEntries[T])
	return slices.CompactFunc(merged, func(a, b entry[T]) bool {
		return a.stamp == b.stamp && a.id == b.id
	})
}

var (
	entrySeq  atomic.Uint64
	entrySeed = func() uint64 {
		var b [16]byte
		_, _ = rand.Read(b[:])
		return xxhash.Sum64(b[:])
	}()
)

// newEntryID mints an identity for a locally created entry. The process
// seed keeps ids from colliding across replicas that happen to share a
// stamp and sequence number.
func newEntryID(stamp int64) uint64 {
	var buf [24]byte
	binary.LittleEndian.PutUint64(buf[0:8], uint64(stamp))
	binary.LittleEndian.PutUint64(buf[8:16], entrySeed)
	binary.LittleEndian.PutUint64(buf[16:24], entrySeq.Add(1))
	return xxhash.Sum64(buf[:])
}

// wireEntryID derives the identity of a decoded entry from the record
// itself, so two decodes of the same bytes dedup against each other.
func wireEntryID(stamp int64, codec string, body []byte) uint64 {
	h := xxhash.New()
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(stamp))
	_, _ = h.Write(b[:])
	_, _ = h.Write([]byte(codec))
	_, _ = h.Write(body)
	return h.Sum64()
}
