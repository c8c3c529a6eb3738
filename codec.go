package statebox

import (
	"bytes"
	"encoding/gob"
	"sync"

	"github.com/pkg/errors"
	"github.com/puzpuzpuz/xsync/v3"
)

// Codec encodes one operation representation for transport. A codec's
// name travels on the wire, so it must be stable across processes and
// releases.
type Codec[T any] interface {
	Name() string
	Encode(op Op[T]) ([]byte, error)
	Decode(data []byte) (Op[T], error)
}

type codecRule[T any] struct {
	match func(Op[T]) bool
	codec Codec[T]
}

// Registry maps operations to codecs by predicate (encode side) and
// codec identifiers back to codecs (decode side). Rules are consulted in
// registration order, first match wins; a name registered twice keeps
// its first codec. Compose the registry once at startup; both ends of a
// transfer must be configured mutually intelligibly.
type Registry[T any] struct {
	mu    sync.RWMutex
	rules []codecRule[T]
	names *xsync.MapOf[string, Codec[T]]
}

func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{names: xsync.NewMapOf[string, Codec[T]]()}
}

// Register appends a predicate/codec pair. Later registrations never
// override earlier matches for the same operation.
func (r *Registry[T]) Register(match func(Op[T]) bool, codec Codec[T]) {
	r.mu.Lock()
	r.rules = append(r.rules, codecRule[T]{match: match, codec: codec})
	r.mu.Unlock()
	r.names.LoadOrStore(codec.Name(), codec)
}

// CodecFor returns the first registered codec whose predicate accepts op.
func (r *Registry[T]) CodecFor(op Op[T]) (Codec[T], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rule := range r.rules {
		if rule.match(op) {
			return rule.codec, nil
		}
	}
	return nil, ErrNoCodecRegistered
}

// CodecByName resolves a wire-carried codec identifier. Failing here is
// the expected outcome of deserializing into a process that lacks the
// operation's defining code.
func (r *Registry[T]) CodecByName(name string) (Codec[T], error) {
	if c, ok := r.names.Load(name); ok {
		return c, nil
	}
	return nil, errors.Wrapf(ErrUnknownCodec, "%q", name)
}

// DefaultRegistry wires the built-in codecs: named operations resolved
// through table, then gob-encoded Operation values.
func DefaultRegistry[T any](table *OpTable[T]) *Registry[T] {
	r := NewRegistry[T]()
	r.Register(MatchNamed[T](), NamedCodec[T]{Table: table})
	r.Register(MatchObj[T](), GobCodec[T]{})
	return r
}

// OpTable holds the transformations a process exposes under stable
// names. It is the Go counterpart of shipping a callable's defining
// code: only the name travels, the receiving process must have defined
// the same name.
type OpTable[T any] struct {
	fns *xsync.MapOf[string, func(T) T]
}

func NewOpTable[T any]() *OpTable[T] {
	return &OpTable[T]{fns: xsync.NewMapOf[string, func(T) T]()}
}

// Define binds name to fn and returns the ready-to-use operation.
func (t *OpTable[T]) Define(name string, fn func(T) T) Op[T] {
	t.fns.Store(name, fn)
	return OpNamed(name, fn)
}

// Op resolves a previously defined name.
func (t *OpTable[T]) Op(name string) (Op[T], error) {
	fn, ok := t.fns.Load(name)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownOperation, "%q", name)
	}
	return OpNamed(name, fn), nil
}

// MustOp is Op for names known to be defined; it panics otherwise.
func (t *OpTable[T]) MustOp(name string) Op[T] {
	op, err := t.Op(name)
	if err != nil {
		panic(err)
	}
	return op
}

// NamedCodec encodes named operations as their bare name.
type NamedCodec[T any] struct {
	Table *OpTable[T]
}

func (c NamedCodec[T]) Name() string { return "named" }

func (c NamedCodec[T]) Encode(op Op[T]) ([]byte, error) {
	name, ok := NamedOf(op)
	if !ok {
		return nil, errors.Wrap(ErrNotEncodable, "named codec")
	}
	return []byte(name), nil
}

func (c NamedCodec[T]) Decode(data []byte) (Op[T], error) {
	return c.Table.Op(string(data))
}

// GobCodec encodes typed Operation values with encoding/gob. Concrete
// operation types must be registered with gob.Register on both ends.
type GobCodec[T any] struct{}

func (c GobCodec[T]) Name() string { return "gob" }

func (c GobCodec[T]) Encode(op Op[T]) ([]byte, error) {
	obj, ok := ObjOf(op)
	if !ok {
		return nil, errors.Wrap(ErrNotEncodable, "gob codec")
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&obj); err != nil {
		return nil, errors.Wrap(err, "gob codec: encode")
	}
	return buf.Bytes(), nil
}

func (c GobCodec[T]) Decode(data []byte) (Op[T], error) {
	var obj Operation[T]
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&obj); err != nil {
		return nil, errors.Wrap(err, "gob codec: decode")
	}
	return OpObj(obj), nil
}
