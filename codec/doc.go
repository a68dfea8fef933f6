// Package codec encodes elements and key/value maps to a compact binary
// form and decodes maps back into KeyedValue sequences.
//
// A map payload is a uvarint header holding count+1, where 0 marks a nil
// map, followed by count key/value pairs written with the element codecs:
//
//	var buf bytes.Buffer
//	err := codec.EncodeMap(&buf, seq.FromSlice(entries), codec.String(), codec.Int64())
//
//	entries, ok, err := codec.DecodeMap(&buf, codec.String(), codec.Int64())
package codec
