package statebox

import "errors"

var (
	// ErrUnsupportedOperation means the invoker got an operation value
	// outside the closed set of representations.
	ErrUnsupportedOperation = errors.New("statebox: unsupported operation representation")
	// ErrOperationFailed wraps a failure raised by the operation itself.
	ErrOperationFailed = errors.New("statebox: operation invocation failed")

	// ErrNoCodecRegistered means no registered predicate accepted the operation.
	ErrNoCodecRegistered = errors.New("statebox: no codec registered for operation")
	// ErrUnknownCodec means the wire carried a codec identifier this
	// process never registered.
	ErrUnknownCodec = errors.New("statebox: unknown codec identifier")
	// ErrUnknownOperation means a named operation is absent from the
	// decoding process's table.
	ErrUnknownOperation = errors.New("statebox: operation not defined in table")
	// ErrNotEncodable means a codec was handed an operation of the wrong
	// representation.
	ErrNotEncodable = errors.New("statebox: codec cannot encode this operation")

	// ErrBadWire means the serialized container failed to parse.
	ErrBadWire = errors.New("statebox: bad container wire format")
)
