package statebox

import (
	"bytes"
	"encoding/gob"

	"github.com/pkg/errors"
	"github.com/statelab/statebox/protocol"
)

// Wire layout, all TLV records in order:
//
//	B  gob-encoded base value
//	N  entry count, zipped uint64
//	then per log entry: T stamp, C codec name, O encoded operation
//
// The decoded container's value is left equal to its base; the log is
// not replayed on decode.

// Serialize encodes the container and its pending operations, selecting
// a codec per entry from reg. It fails with ErrNoCodecRegistered when an
// operation matches no registered predicate; nothing is produced then.
func Serialize[T any](st *Statebox[T], reg *Registry[T]) ([]byte, error) {
	var base bytes.Buffer
	if err := gob.NewEncoder(&base).Encode(&st.base); err != nil {
		return nil, errors.Wrap(err, "statebox: encode base value")
	}
	buf := protocol.Append(nil, 'b', base.Bytes())
	buf = protocol.Append(buf, 'n', protocol.ZipUint64(uint64(len(st.log))))
	for _, e := range st.log {
		codec, err := reg.CodecFor(e.op)
		if err != nil {
			return nil, err
		}
		body, err := codec.Encode(e.op)
		if err != nil {
			return nil, err
		}
		buf = protocol.Append(buf, 't', protocol.ZipUint64(uint64(e.stamp)))
		buf = protocol.Append(buf, 'c', []byte(codec.Name()))
		buf = protocol.Append(buf, 'o', body)
	}
	wireSerialized.Inc()
	return buf, nil
}

// Deserialize reconstructs a container from Serialize output, resolving
// each entry's codec by the identifier carried on the wire. Original
// stamps are preserved; entry identities are re-derived from the records
// themselves, so two decodes of the same bytes merge idempotently.
func Deserialize[T any](data []byte, reg *Registry[T], opts ...Option) (*Statebox[T], error) {
	cfg := newConfig(opts)
	baseRec, rest, err := protocol.TakeWary('B', data)
	if err != nil {
		return nil, errors.Wrap(ErrBadWire, "base record")
	}
	var base T
	if err := gob.NewDecoder(bytes.NewReader(baseRec)).Decode(&base); err != nil {
		return nil, errors.Wrap(err, "statebox: decode base value")
	}
	countRec, rest, err := protocol.TakeWary('N', rest)
	if err != nil {
		return nil, errors.Wrap(ErrBadWire, "count record")
	}
	count := protocol.UnzipUint64(countRec)
	// every entry costs at least one byte of header per record, so a
	// count beyond the remaining bytes cannot be honest
	if count > uint64(len(rest)) {
		return nil, errors.Wrap(ErrBadWire, "count record")
	}
	log := make(oplog[T], 0, count)
	for i := uint64(0); i < count; i++ {
		var stampRec, nameRec, opRec []byte
		if stampRec, rest, err = protocol.TakeWary('T', rest); err != nil {
			return nil, errors.Wrap(ErrBadWire, "stamp record")
		}
		if nameRec, rest, err = protocol.TakeWary('C', rest); err != nil {
			return nil, errors.Wrap(ErrBadWire, "codec record")
		}
		if opRec, rest, err = protocol.TakeWary('O', rest); err != nil {
			return nil, errors.Wrap(ErrBadWire, "operation record")
		}
		codec, err := reg.CodecByName(string(nameRec))
		if err != nil {
			return nil, err
		}
		op, err := codec.Decode(opRec)
		if err != nil {
			return nil, err
		}
		stamp := int64(protocol.UnzipUint64(stampRec))
		log = append(log, entry[T]{
			stamp: stamp,
			id:    wireEntryID(stamp, string(nameRec), opRec),
			op:    op,
		})
	}
	if len(rest) != 0 {
		return nil, errors.Wrap(ErrBadWire, "trailing bytes")
	}
	log = log.union(nil)
	st := &Statebox[T]{base: base, current: base, log: log, clock: cfg.clock}
	st.modms.Store(cfg.clock.Now())
	wireDeserialized.Inc()
	return st, nil
}
