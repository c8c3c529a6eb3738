package statebox

import (
	"fmt"
)

// Operation is the typed single-method representation: a pure step from
// one value to the next. Implementations meant to cross process
// boundaries should be plain structs registered with encoding/gob.
type Operation[T any] interface {
	Invoke(v T) (T, error)
}

// Op is an operation in one of the closed set of representations the
// invoker understands. Values are built with OpFunc, OpObj, OpNamed,
// OpProc or OpSupplier; there is no runtime capability probing, adding a
// representation means extending this set.
type Op[T any] interface {
	apply(v T) (T, error)
}

type opFunc[T any] struct {
	fn func(T) T
}

type opObj[T any] struct {
	obj Operation[T]
}

type opNamed[T any] struct {
	name string
	fn   func(T) T
}

// opProc runs for its side effects only; the chain value passes through
// unchanged. A legacy accommodation, not a pattern to build on.
type opProc[T any] struct {
	proc func()
}

type opSupplier[T any] struct {
	supply func() T
}

// OpFunc wraps a pure transformation. Closures are not encodable; use
// OpNamed or OpObj for operations that must survive serialization.
func OpFunc[T any](fn func(T) T) Op[T] {
	return opFunc[T]{fn: fn}
}

// OpObj wraps a typed Operation value.
func OpObj[T any](obj Operation[T]) Op[T] {
	return opObj[T]{obj: obj}
}

// OpNamed wraps a transformation known to both ends under a stable name,
// usually resolved from an OpTable.
func OpNamed[T any](name string, fn func(T) T) Op[T] {
	return opNamed[T]{name: name, fn: fn}
}

// OpProc wraps a zero-argument procedure.
func OpProc[T any](proc func()) Op[T] {
	return opProc[T]{proc: proc}
}

// OpSupplier wraps a nullary producer whose result replaces the chain value.
func OpSupplier[T any](supply func() T) Op[T] {
	return opSupplier[T]{supply: supply}
}

func (o opFunc[T]) apply(v T) (T, error) {
	return o.fn(v), nil
}

func (o opObj[T]) apply(v T) (T, error) {
	next, err := o.obj.Invoke(v)
	if err != nil {
		return v, fmt.Errorf("%w: %w", ErrOperationFailed, err)
	}
	return next, nil
}

func (o opNamed[T]) apply(v T) (T, error) {
	return o.fn(v), nil
}

func (o opProc[T]) apply(v T) (T, error) {
	o.proc()
	return v, nil
}

func (o opSupplier[T]) apply(v T) (T, error) {
	return o.supply(), nil
}

// invoke dispatches op over the closed representation set.
func invoke[T any](op Op[T], v T) (T, error) {
	if op == nil {
		return v, ErrUnsupportedOperation
	}
	return op.apply(v)
}

// NamedOf reports the stable name of a named operation.
func NamedOf[T any](op Op[T]) (string, bool) {
	n, ok := op.(opNamed[T])
	return n.name, ok
}

// ObjOf reports the Operation value behind an object operation.
func ObjOf[T any](op Op[T]) (Operation[T], bool) {
	o, ok := op.(opObj[T])
	return o.obj, ok
}

// MatchNamed is a registry predicate accepting named operations.
func MatchNamed[T any]() func(Op[T]) bool {
	return func(op Op[T]) bool {
		_, ok := op.(opNamed[T])
		return ok
	}
}

// MatchObj is a registry predicate accepting typed Operation values.
func MatchObj[T any]() func(Op[T]) bool {
	return func(op Op[T]) bool {
		_, ok := op.(opObj[T])
		return ok
	}
}
