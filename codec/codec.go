package codec

import (
	"bytes"
	"cmp"
	"encoding/binary"
	"io"
	"math"

	"github.com/kbukum/seqkit/errors"
)

// Reader is the input a Codec decodes from.
type Reader interface {
	io.Reader
	io.ByteReader
}

// Codec encodes and decodes values of one type and orders them.
type Codec[T any] interface {
	// Append appends the encoding of v to buf.
	Append(buf []byte, v T) []byte
	// Decode reads one value.
	Decode(r Reader) (T, error)
	// Compare orders two values the way sorted inputs expect.
	Compare(a, b T) int
}

type funcCodec[T any] struct {
	name    string
	append  func([]byte, T) []byte
	decode  func(Reader) (T, error)
	compare func(a, b T) int
}

func (c funcCodec[T]) Append(buf []byte, v T) []byte { return c.append(buf, v) }
func (c funcCodec[T]) Compare(a, b T) int            { return c.compare(a, b) }

func (c funcCodec[T]) Decode(r Reader) (T, error) {
	v, err := c.decode(r)
	if err != nil {
		var zero T
		if errors.IsCode(err, errors.ErrCodeCorrupt) {
			return zero, err
		}
		return zero, errors.Corrupt(c.name, err)
	}
	return v, nil
}

// String encodes a uvarint length followed by the UTF-8 bytes.
func String() Codec[string] {
	return funcCodec[string]{
		name: "string",
		append: func(buf []byte, v string) []byte {
			buf = binary.AppendUvarint(buf, uint64(len(v)))
			return append(buf, v...)
		},
		decode: func(r Reader) (string, error) {
			b, err := readBytes(r)
			return string(b), err
		},
		compare: cmp.Compare[string],
	}
}

// Bytes encodes a uvarint length followed by the raw bytes.
func Bytes() Codec[[]byte] {
	return funcCodec[[]byte]{
		name: "bytes",
		append: func(buf []byte, v []byte) []byte {
			buf = binary.AppendUvarint(buf, uint64(len(v)))
			return append(buf, v...)
		},
		decode:  readBytes,
		compare: bytes.Compare,
	}
}

// Int64 encodes a zig-zag varint.
func Int64() Codec[int64] {
	return funcCodec[int64]{
		name:   "int64",
		append: binary.AppendVarint,
		decode: func(r Reader) (int64, error) {
			return binary.ReadVarint(r)
		},
		compare: cmp.Compare[int64],
	}
}

// Int16 encodes two big-endian bytes.
func Int16() Codec[int16] {
	return funcCodec[int16]{
		name: "int16",
		append: func(buf []byte, v int16) []byte {
			return binary.BigEndian.AppendUint16(buf, uint16(v))
		},
		decode: func(r Reader) (int16, error) {
			var b [2]byte
			if _, err := io.ReadFull(r, b[:]); err != nil {
				return 0, err
			}
			return int16(binary.BigEndian.Uint16(b[:])), nil
		},
		compare: cmp.Compare[int16],
	}
}

// Float64 encodes the IEEE 754 bits as eight big-endian bytes.
func Float64() Codec[float64] {
	return funcCodec[float64]{
		name: "float64",
		append: func(buf []byte, v float64) []byte {
			return binary.BigEndian.AppendUint64(buf, math.Float64bits(v))
		},
		decode: func(r Reader) (float64, error) {
			var b [8]byte
			if _, err := io.ReadFull(r, b[:]); err != nil {
				return 0, err
			}
			return math.Float64frombits(binary.BigEndian.Uint64(b[:])), nil
		},
		compare: cmp.Compare[float64],
	}
}

// Void encodes nothing. Use it for set-like maps whose values carry no data.
func Void() Codec[struct{}] {
	return funcCodec[struct{}]{
		name:    "void",
		append:  func(buf []byte, _ struct{}) []byte { return buf },
		decode:  func(Reader) (struct{}, error) { return struct{}{}, nil },
		compare: func(struct{}, struct{}) int { return 0 },
	}
}

// maxLength caps a decoded length prefix.
const maxLength = 1 << 30

func readBytes(r Reader) ([]byte, error) {
	n, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, err
	}
	if n > maxLength {
		return nil, errors.Corrupt("length prefix", nil).WithDetail("length", n)
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Marshal encodes v on its own.
func Marshal[T any](c Codec[T], v T) []byte {
	return c.Append(nil, v)
}

// Unmarshal decodes a value produced by Marshal. Trailing bytes are an
// error.
func Unmarshal[T any](c Codec[T], data []byte) (T, error) {
	r := bytes.NewReader(data)
	v, err := c.Decode(r)
	if err != nil {
		return v, err
	}
	if r.Len() != 0 {
		var zero T
		return zero, errors.Corrupt("value", nil).WithDetail("trailing_bytes", r.Len())
	}
	return v, nil
}
