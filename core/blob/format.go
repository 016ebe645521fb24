package blob

import (
	"encoding/binary"
	"fmt"
)

// WordSize is the width in bytes of header words, slot offsets and in-payload
// pointers. It is fixed for format version 1.
const WordSize = 8

// Version is the format version written by Builder and accepted by Decode.
const Version = 1

var magic = [4]byte{'S', 'G', 'L', 'B'}

// Positions of the tag fields within word 0.
const (
	tagVersion = 4
	tagWidth   = 5
	tagState   = 6
)

// header states
const (
	stateEncoded = 0
	stateDecoded = 1
)

// Kind is the type of a pointer slot.
type Kind uint8

// Pointer kinds. A resolved pointer carries its kind or'ed with kindResolved.
const (
	KindInternal Kind = 1 // target is a payload offset
	KindExternal Kind = 2 // target is an offset into a client-declared external region

	kindResolved Kind = 0x80
)

func (k Kind) String() string {
	switch k &^ kindResolved {
	case KindInternal:
		return "internal"
	case KindExternal:
		return "external"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

const (
	dispBits = 56
	dispMask = 1<<dispBits - 1
	maxDisp  = 1<<(dispBits-1) - 1
	minDisp  = -(1 << (dispBits - 1))
)

// tagged packs a kind and a signed displacement into one slot word.
func tagged(k Kind, disp int64) uint64 {
	return uint64(k)<<dispBits | uint64(disp)&dispMask
}

// untag splits a slot word into kind and sign-extended displacement.
func untag(w uint64) (Kind, int64) {
	k := Kind(w >> dispBits)
	d := int64(w<<(64-dispBits)) >> (64 - dispBits)
	return k, d
}

func u32(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b)
}

func u64(b []byte) uint64 {
	return binary.LittleEndian.Uint64(b)
}

func putU64(b []byte, v uint64) {
	binary.LittleEndian.PutUint64(b, v)
}

// Header is the decoded form of a blob's header words.
type Header struct {
	Version   int
	WordSize  int
	Decoded   bool
	SlotCount int
}

// PayloadOffset is the byte offset of the payload within the buffer.
func (h Header) PayloadOffset() int {
	return (h.SlotCount + 3) * WordSize
}

// Inspect reads and checks a blob header without decoding the blob.
// It checks the tag, the width and both slot counts, but not the slots.
func Inspect(buf []byte) (Header, error) {
	h := Header{}
	if len(buf) < 3*WordSize {
		return h, formatError(ErrTruncated, "buffer of %d bytes too short for a header", len(buf))
	}
	if [4]byte{buf[0], buf[1], buf[2], buf[3]} != magic {
		return h, formatError(ErrTag, "bad magic % x", buf[0:4])
	}
	h.Version = int(buf[tagVersion])
	h.WordSize = int(buf[tagWidth])
	h.Decoded = buf[tagState] == stateDecoded
	if h.Version != Version {
		return h, formatError(ErrVersion, "format version %d, expected %d", h.Version, Version)
	}
	if h.WordSize != WordSize {
		return h, formatError(ErrWidth, "word width %d, runtime uses %d", h.WordSize, WordSize)
	}
	if buf[tagState] != stateEncoded && buf[tagState] != stateDecoded {
		return h, formatError(ErrTag, "unknown state %d", buf[tagState])
	}
	n := u64(buf[WordSize:])
	if n > uint64(len(buf)/WordSize) {
		return h, formatError(ErrTruncated, "slot count %d exceeds buffer of %d bytes", n, len(buf))
	}
	h.SlotCount = int(n)
	if h.PayloadOffset() > len(buf) {
		return h, formatError(ErrTruncated, "header of %d slots exceeds buffer of %d bytes",
			h.SlotCount, len(buf))
	}
	if footer := u64(buf[(h.SlotCount+2)*WordSize:]); footer != n {
		return h, formatError(ErrCountMismatch, "header says %d slots, footer says %d", n, footer)
	}
	return h, nil
}
