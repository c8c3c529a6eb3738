// Package boxstore persists serialized stateboxes in a pebble database.
// Persistence is deliberately outside the container itself: the store is
// an ordinary caller of Serialize and Deserialize, keyed by name, with a
// revision kept per Put so older snapshots stay retrievable.
package boxstore

import (
	"log/slog"
	"slices"

	"github.com/cockroachdb/pebble"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"

	"github.com/statelab/statebox"
	"github.com/statelab/statebox/utils"
)

var (
	// ErrNotFound means no statebox is stored under the name.
	ErrNotFound = errors.New("boxstore: no such statebox")
	// ErrNoRevision means the revision id is unknown for the name.
	ErrNoRevision = errors.New("boxstore: no such revision")
)

type Options struct {
	CacheSize int
	NoSync    bool
	Logger    utils.Logger
}

type Option func(*Options)

func WithCacheSize(n int) Option {
	return func(o *Options) { o.CacheSize = n }
}

// WithNoSync trades durability of individual Puts for throughput.
func WithNoSync() Option {
	return func(o *Options) { o.NoSync = true }
}

func WithLogger(l utils.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// Store keeps the latest wire form of each named statebox plus one
// record per revision. Reads go through a small LRU of wire bytes; the
// bytes are decoded per call so callers never share container instances.
type Store[T any] struct {
	db    *pebble.DB
	reg   *statebox.Registry[T]
	cache *lru.Cache[string, []byte]
	log   utils.Logger
	wo    *pebble.WriteOptions
}

// Key layout: 'S'+name for the latest snapshot,
// 'R'+name+0x00+uuid for each revision.
func latestKey(name string) []byte {
	return append([]byte{'S'}, name...)
}

func revPrefix(name string) []byte {
	return append(append([]byte{'R'}, name...), 0)
}

func revKey(name string, rev uuid.UUID) []byte {
	return append(revPrefix(name), rev[:]...)
}

func Open[T any](dir string, reg *statebox.Registry[T], opts ...Option) (*Store[T], error) {
	o := Options{CacheSize: 128}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = utils.NewDefaultLogger(slog.LevelInfo)
	}
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrap(err, "boxstore: open")
	}
	cache, err := lru.New[string, []byte](o.CacheSize)
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "boxstore: cache")
	}
	wo := pebble.Sync
	if o.NoSync {
		wo = pebble.NoSync
	}
	return &Store[T]{db: db, reg: reg, cache: cache, log: o.Logger, wo: wo}, nil
}

// Put serializes box and stores it as the latest snapshot under name,
// also recording it as a new revision. The revision id is returned.
func (s *Store[T]) Put(name string, box *statebox.Statebox[T]) (uuid.UUID, error) {
	data, err := statebox.Serialize(box, s.reg)
	if err != nil {
		return uuid.Nil, err
	}
	rev := uuid.New()
	batch := s.db.NewBatch()
	defer batch.Close()
	if err := batch.Set(latestKey(name), data, nil); err != nil {
		return uuid.Nil, errors.Wrap(err, "boxstore: put")
	}
	if err := batch.Set(revKey(name, rev), data, nil); err != nil {
		return uuid.Nil, errors.Wrap(err, "boxstore: put revision")
	}
	if err := batch.Commit(s.wo); err != nil {
		return uuid.Nil, errors.Wrap(err, "boxstore: commit")
	}
	s.cache.Add(name, data)
	storePuts.Inc()
	s.log.Debug("stored statebox", "name", name, "rev", rev.String(), "bytes", len(data))
	return rev, nil
}

// Get decodes the latest snapshot stored under name.
func (s *Store[T]) Get(name string) (*statebox.Statebox[T], error) {
	if data, ok := s.cache.Get(name); ok {
		cacheHits.Inc()
		return statebox.Deserialize(data, s.reg)
	}
	data, err := s.fetch(latestKey(name), ErrNotFound)
	if err != nil {
		return nil, err
	}
	s.cache.Add(name, data)
	storeGets.Inc()
	return statebox.Deserialize(data, s.reg)
}

// Revision decodes one historical snapshot.
func (s *Store[T]) Revision(name string, rev uuid.UUID) (*statebox.Statebox[T], error) {
	data, err := s.fetch(revKey(name, rev), ErrNoRevision)
	if err != nil {
		return nil, err
	}
	return statebox.Deserialize(data, s.reg)
}

// Revisions lists the revision ids recorded for name.
func (s *Store[T]) Revisions(name string) ([]uuid.UUID, error) {
	prefix := revPrefix(name)
	upper := append(slices.Clone(prefix), 0xff)
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: upper,
	})
	if err != nil {
		return nil, errors.Wrap(err, "boxstore: iterate revisions")
	}
	defer iter.Close()
	var revs []uuid.UUID
	for iter.First(); iter.Valid(); iter.Next() {
		key := iter.Key()
		rev, err := uuid.FromBytes(key[len(prefix):])
		if err != nil {
			continue
		}
		revs = append(revs, rev)
	}
	return revs, iter.Error()
}

// Delete removes the latest snapshot; revisions are kept.
func (s *Store[T]) Delete(name string) error {
	s.cache.Remove(name)
	if err := s.db.Delete(latestKey(name), s.wo); err != nil {
		return errors.Wrap(err, "boxstore: delete")
	}
	return nil
}

func (s *Store[T]) Close() error {
	return s.db.Close()
}

func (s *Store[T]) fetch(key []byte, missing error) ([]byte, error) {
	val, closer, err := s.db.Get(key)
	if err == pebble.ErrNotFound {
		return nil, missing
	}
	if err != nil {
		return nil, errors.Wrap(err, "boxstore: get")
	}
	data := slices.Clone(val)
	_ = closer.Close()
	return data, nil
}
