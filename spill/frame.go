// Package spill stores sorted runs of pairs on disk for the external sort.
//
// A run file is a sequence of frames:
//
//	| length (8 bytes, big endian) | payload (length bytes) |
//
// where the payload is a pair in protobuf wire format: field 1 is the word
// (bytes), field 2 the count (varint).
package spill

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"google.golang.org/protobuf/encoding/protowire"

	"wordcount/mapreduce/types"
)

const (
	wordField  protowire.Number = 1
	countField protowire.Number = 2

	// maxFrameSize bounds a single record; a word longer than this is not
	// something a text corpus produces.
	maxFrameSize = 1 << 24
)

var errFrameTooLarge = errors.New("spill frame too large")

// MarshalPair encodes p in protobuf wire format.
func MarshalPair(p types.Pair) []byte {
	b := make([]byte, 0, len(p.Word)+16)
	b = protowire.AppendTag(b, wordField, protowire.BytesType)
	b = protowire.AppendString(b, p.Word)
	b = protowire.AppendTag(b, countField, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(p.Count))
	return b
}

// UnmarshalPair decodes a pair written by MarshalPair. Unknown fields are
// skipped.
func UnmarshalPair(b []byte) (types.Pair, error) {
	var p types.Pair
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return p, protowire.ParseError(n)
		}
		b = b[n:]
		switch {
		case num == wordField && typ == protowire.BytesType:
			p.Word, n = protowire.ConsumeString(b)
		case num == countField && typ == protowire.VarintType:
			var v uint64
			v, n = protowire.ConsumeVarint(b)
			p.Count = int64(v)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return p, protowire.ParseError(n)
		}
		b = b[n:]
	}
	return p, nil
}

// Send writes one framed pair to w.
func Send(w io.Writer, p types.Pair) error {
	payload := MarshalPair(p)
	length := uint64(len(payload))
	if err := binary.Write(w, binary.BigEndian, length); err != nil {
		return err
	}
	if _, err := w.Write(payload); err != nil {
		return err
	}
	return nil
}

// Receive reads one framed pair from r. It returns io.EOF when r is
// exhausted on a frame boundary and io.ErrUnexpectedEOF for a torn frame.
func Receive(r io.Reader) (types.Pair, error) {
	var length uint64
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		return types.Pair{}, err
	}
	if length > maxFrameSize {
		return types.Pair{}, fmt.Errorf("%w: %d bytes", errFrameTooLarge, length)
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return types.Pair{}, err
	}
	return UnmarshalPair(payload)
}
