package codec

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/kbukum/seqkit/errors"
	"github.com/kbukum/seqkit/seq"
)

// EncodeMap writes entries as a map payload. The header needs the count up
// front, so entries that are not seq.Sized are buffered first. A nil
// entries iterator writes a nil map.
func EncodeMap[K, V any](w io.Writer, entries seq.Iterator[*seq.KeyedValue[K, V]], kc Codec[K], vc Codec[V]) error {
	if entries == nil {
		_, err := w.Write([]byte{0})
		return err
	}

	var count int
	if sized, ok := entries.(seq.Sized); ok {
		count = sized.Len()
	} else {
		buffered, err := seq.Collect(entries)
		if err != nil {
			return err
		}
		count = len(buffered)
		entries = seq.FromSlice(buffered)
	}

	bw := bufio.NewWriter(w)
	buf := binary.AppendUvarint(nil, uint64(count)+1)
	written := 0
	for entries.HasNext() {
		e, err := entries.Next()
		if err != nil {
			return err
		}
		buf = kc.Append(buf, e.Key())
		buf = vc.Append(buf, e.Value())
		if _, err := bw.Write(buf); err != nil {
			return err
		}
		buf = buf[:0]
		written++
	}
	if written != count {
		return errors.InvariantViolation("encodeMap", "entry count differs from reported size").
			WithDetails(map[string]any{"size": count, "written": written})
	}
	if _, err := bw.Write(buf); err != nil {
		return err
	}
	return bw.Flush()
}

// DecodeMap reads a map payload header and returns a lazy iterator over its
// entries, decoded on demand. ok is false for a nil map. The iterator is
// seq.Sized. A decode failure is returned once and ends the iterator.
// A reader that is not a Reader is buffered and may be read past the end
// of the payload.
func DecodeMap[K, V any](r io.Reader, kc Codec[K], vc Codec[V]) (entries seq.Iterator[*seq.KeyedValue[K, V]], ok bool, err error) {
	br, isReader := r.(Reader)
	if !isReader {
		br = bufio.NewReader(r)
	}
	header, err := binary.ReadUvarint(br)
	if err != nil {
		return nil, false, errors.Corrupt("map header", err)
	}
	if header == 0 {
		return nil, false, nil
	}
	if header-1 > maxLength {
		return nil, false, errors.Corrupt("map header", nil).WithDetail("count", header-1)
	}
	return &mapIter[K, V]{r: br, kc: kc, vc: vc, remaining: int(header - 1)}, true, nil
}

type mapIter[K, V any] struct {
	r         Reader
	kc        Codec[K]
	vc        Codec[V]
	remaining int
}

func (it *mapIter[K, V]) HasNext() bool { return it.remaining > 0 }
func (it *mapIter[K, V]) Len() int      { return it.remaining }

func (it *mapIter[K, V]) Next() (*seq.KeyedValue[K, V], error) {
	if it.remaining == 0 {
		return nil, errors.Exhausted()
	}
	k, err := it.kc.Decode(it.r)
	if err != nil {
		it.remaining = 0
		return nil, err
	}
	v, err := it.vc.Decode(it.r)
	if err != nil {
		it.remaining = 0
		return nil, err
	}
	it.remaining--
	return seq.NewKeyedValue(k, v), nil
}
