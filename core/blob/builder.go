package blob

import (
	"encoding/binary"
	"math"
)

// Ref is a byte offset into a blob's payload.
type Ref int

// Builder lays out a payload and records its pointer slots. Records are
// allocated one after the other; a pointer field stores the displacement of
// its target relative to the field's own position.
//
// The zero Builder is ready to use.
type Builder struct {
	payload []byte
	slots   []uint64
}

// NewBuilder creates a builder with an initial payload capacity.
func NewBuilder(capacity int) *Builder {
	return &Builder{payload: make([]byte, 0, capacity)}
}

// Len returns the current size of the payload.
func (b *Builder) Len() int {
	return len(b.payload)
}

// Slots returns the number of pointer slots recorded so far.
func (b *Builder) Slots() int {
	return len(b.slots)
}

// Alloc appends size zero bytes, aligned to align, and returns their position.
func (b *Builder) Alloc(size, align int) Ref {
	if align > 1 {
		for len(b.payload)%align != 0 {
			b.payload = append(b.payload, 0)
		}
	}
	at := Ref(len(b.payload))
	b.payload = append(b.payload, make([]byte, size)...)
	return at
}

// PutU32 stores v at position at.
func (b *Builder) PutU32(at Ref, v uint32) {
	binary.LittleEndian.PutUint32(b.payload[at:], v)
}

// PutI32 stores v at position at.
func (b *Builder) PutI32(at Ref, v int32) {
	binary.LittleEndian.PutUint32(b.payload[at:], uint32(v))
}

// PutF32 stores v at position at.
func (b *Builder) PutF32(at Ref, v float32) {
	binary.LittleEndian.PutUint32(b.payload[at:], math.Float32bits(v))
}

// PutU64 stores v at position at.
func (b *Builder) PutU64(at Ref, v uint64) {
	binary.LittleEndian.PutUint64(b.payload[at:], v)
}

// PutBytes appends a copy of data and returns its position.
func (b *Builder) PutBytes(data []byte, align int) Ref {
	at := b.Alloc(len(data), align)
	copy(b.payload[at:], data)
	return at
}

// PutString appends s as a NUL-terminated string and returns its position.
func (b *Builder) PutString(s string) Ref {
	at := b.Alloc(len(s)+1, 1)
	copy(b.payload[at:], s)
	return at
}

// Pointer makes the word at position at an internal pointer to target.
// at has to be word-aligned. target may be allocated later, but has to be
// inside the payload by the time Bytes is called.
func (b *Builder) Pointer(at Ref, target Ref) error {
	if err := b.checkSlot(at); err != nil {
		return err
	}
	disp := int64(target) - int64(at)
	if disp < minDisp || disp > maxDisp {
		return formatError(ErrTargetBounds, "displacement %d from slot %d out of range", disp, at)
	}
	putU64(b.payload[at:], tagged(KindInternal, disp))
	b.slots = append(b.slots, uint64(at))
	return nil
}

// External makes the word at position at a pointer into an external region,
// addressing the byte at offset. The region's extent is declared by the client
// which decodes the blob.
func (b *Builder) External(at Ref, offset int64) error {
	if err := b.checkSlot(at); err != nil {
		return err
	}
	if offset < 0 || offset > maxDisp {
		return formatError(ErrTargetBounds, "external offset %d out of range", offset)
	}
	putU64(b.payload[at:], tagged(KindExternal, offset))
	b.slots = append(b.slots, uint64(at))
	return nil
}

func (b *Builder) checkSlot(at Ref) error {
	if at < 0 || int(at)+WordSize > len(b.payload) {
		return formatError(ErrSlotBounds, "slot %d outside of payload of size %d", at, len(b.payload))
	}
	if at%WordSize != 0 {
		return formatError(ErrSlotBounds, "slot %d is not word-aligned", at)
	}
	return nil
}

// Bytes emits the complete blob: header, slot table, footer and payload.
// The builder may be used further after a call to Bytes.
func (b *Builder) Bytes() ([]byte, error) {
	for _, off := range b.slots {
		k, d := untag(u64(b.payload[off:]))
		if k != KindInternal {
			continue
		}
		if target := int64(off) + d; target < 0 || target >= int64(len(b.payload)) {
			return nil, formatError(ErrTargetBounds, "pointer at %d targets %d, payload size is %d",
				off, target, len(b.payload))
		}
	}
	n := len(b.slots)
	hlen := (n + 3) * WordSize
	buf := make([]byte, hlen+len(b.payload))
	copy(buf[0:4], magic[:])
	buf[tagVersion] = Version
	buf[tagWidth] = WordSize
	buf[tagState] = stateEncoded
	putU64(buf[WordSize:], uint64(n))
	for i, off := range b.slots {
		putU64(buf[(i+2)*WordSize:], off)
	}
	putU64(buf[(n+2)*WordSize:], uint64(n))
	copy(buf[hlen:], b.payload)
	tracer().Debugf("encoded blob with %d slots and %d bytes of payload", n, len(b.payload))
	return buf, nil
}
