package blob

import (
	"bytes"
	"math"
)

// View is a decoded blob. It owns the buffer it has been decoded from and
// gives read-only, bounds-checked access to the payload. Pointer slots hold
// resolved payload offsets.
//
// A View must not be used after Release.
type View struct {
	buf      []byte
	payload  []byte
	start    int // payload offset within buf
	slots    int
	external int
}

// Option configures decoding.
type Option func(*View)

// WithExternal declares an external region of size bytes. External pointers
// in a blob are accepted only if they address a byte inside this region.
func WithExternal(size int) Option {
	return func(v *View) {
		v.external = size
	}
}

// Decode decodes buf in place and returns a view on it. Ownership of buf
// passes to the view; clients must not modify buf afterwards.
//
// Decode first validates the complete slot table. If any check fails, buf is
// left untouched and an error with code core.EBLOBFORMAT is returned. A buffer
// may be decoded only once; a second attempt fails with ErrDoubleDecode.
func Decode(buf []byte, opts ...Option) (*View, error) {
	h, err := Inspect(buf)
	if err != nil {
		return nil, err
	}
	if h.Decoded {
		return nil, formatError(ErrDoubleDecode, "header is marked as decoded")
	}
	v := &View{
		buf:     buf,
		start:   h.PayloadOffset(),
		payload: buf[h.PayloadOffset():],
		slots:   h.SlotCount,
	}
	for _, opt := range opts {
		opt(v)
	}
	for i := 0; i < v.slots; i++ {
		if err := v.checkSlot(i); err != nil {
			return nil, err
		}
	}
	for i := 0; i < v.slots; i++ {
		if !v.resolve(i) { // duplicate slot offset
			for j := 0; j < i; j++ {
				v.unresolve(j)
			}
			return nil, formatError(ErrDoubleDecode, "slot #%d is listed twice", i)
		}
	}
	buf[tagState] = stateDecoded
	tracer().Debugf("decoded blob with %d slots, payload of %d bytes", v.slots, len(v.payload))
	return v, nil
}

func (v *View) slotOffset(i int) uint64 {
	return u64(v.buf[(i+2)*WordSize:])
}

func (v *View) checkSlot(i int) error {
	off := v.slotOffset(i)
	if len(v.payload) < WordSize || off > uint64(len(v.payload)-WordSize) {
		return formatError(ErrSlotBounds, "slot #%d at %d, payload size is %d", i, off, len(v.payload))
	}
	if off%WordSize != 0 {
		return formatError(ErrSlotBounds, "slot #%d at %d is not word-aligned", i, off)
	}
	k, d := untag(u64(v.payload[off:]))
	if k&kindResolved != 0 {
		return formatError(ErrDoubleDecode, "slot #%d at %d already resolved", i, off)
	}
	switch k {
	case KindInternal:
		if t := int64(off) + d; t < 0 || t >= int64(len(v.payload)) {
			return formatError(ErrTargetBounds, "slot #%d at %d targets %d, payload size is %d",
				i, off, t, len(v.payload))
		}
	case KindExternal:
		if d < 0 || d >= int64(v.external) {
			return formatError(ErrTargetBounds, "slot #%d at %d targets external offset %d, region size is %d",
				i, off, d, v.external)
		}
	default:
		return formatError(ErrKind, "slot #%d at %d has %v", i, off, k)
	}
	return nil
}

// resolve turns a validated relative slot into an absolute one. It returns
// false if the slot has been resolved before.
func (v *View) resolve(i int) bool {
	off := v.slotOffset(i)
	k, d := untag(u64(v.payload[off:]))
	if k&kindResolved != 0 {
		return false
	}
	if k == KindInternal {
		d += int64(off)
	}
	putU64(v.payload[off:], tagged(k|kindResolved, d))
	return true
}

func (v *View) unresolve(i int) {
	off := v.slotOffset(i)
	k, d := untag(u64(v.payload[off:]))
	if k&kindResolved == 0 {
		return
	}
	k &^= kindResolved
	if k == KindInternal {
		d -= int64(off)
	}
	putU64(v.payload[off:], tagged(k, d))
}

// Root returns the position of the first record in the payload.
func (v *View) Root() Ref {
	return 0
}

// Len returns the size of the payload in bytes.
func (v *View) Len() int {
	return len(v.payload)
}

// SlotCount returns the number of pointer slots of the blob.
func (v *View) SlotCount() int {
	return v.slots
}

// ExternalSize returns the size of the declared external region.
func (v *View) ExternalSize() int {
	return v.external
}

// Bytes returns n bytes of payload at position at. The returned slice
// aliases the view's buffer and must be treated as read-only.
func (v *View) Bytes(at Ref, n int) ([]byte, error) {
	if v.payload == nil {
		return nil, formatError(ErrReleased, "access to released view")
	}
	if at < 0 || n < 0 || int(at) > len(v.payload)-n {
		return nil, formatError(ErrBounds, "%d bytes at %d, payload size is %d", n, at, len(v.payload))
	}
	return v.payload[at : int(at)+n], nil
}

// U32 reads an unsigned 32-bit value at position at.
func (v *View) U32(at Ref) (uint32, error) {
	b, err := v.Bytes(at, 4)
	if err != nil {
		return 0, err
	}
	return u32(b), nil
}

// I32 reads a signed 32-bit value at position at.
func (v *View) I32(at Ref) (int32, error) {
	x, err := v.U32(at)
	return int32(x), err
}

// F32 reads a 32-bit float at position at.
func (v *View) F32(at Ref) (float32, error) {
	x, err := v.U32(at)
	return math.Float32frombits(x), err
}

// U64 reads an unsigned 64-bit value at position at.
func (v *View) U64(at Ref) (uint64, error) {
	b, err := v.Bytes(at, 8)
	if err != nil {
		return 0, err
	}
	return u64(b), nil
}

// Pointer reads the resolved internal pointer stored in the slot at position
// at and returns its target.
func (v *View) Pointer(at Ref) (Ref, error) {
	k, d, err := v.slot(at)
	if err != nil {
		return 0, err
	}
	if k != KindInternal {
		return 0, formatError(ErrKind, "slot at %d is %v, expected internal pointer", at, k)
	}
	return Ref(d), nil
}

// External reads the resolved external pointer stored in the slot at
// position at and returns the offset into the external region.
func (v *View) External(at Ref) (int, error) {
	k, d, err := v.slot(at)
	if err != nil {
		return 0, err
	}
	if k != KindExternal {
		return 0, formatError(ErrKind, "slot at %d is %v, expected external pointer", at, k)
	}
	return int(d), nil
}

func (v *View) slot(at Ref) (Kind, int64, error) {
	w, err := v.U64(at)
	if err != nil {
		return 0, 0, err
	}
	k, d := untag(w)
	if k&kindResolved == 0 {
		return 0, 0, formatError(ErrUnresolved, "no resolved pointer at %d", at)
	}
	return k &^ kindResolved, d, nil
}

// CString reads a NUL-terminated string starting at position at.
func (v *View) CString(at Ref) (string, error) {
	if v.payload == nil {
		return "", formatError(ErrReleased, "access to released view")
	}
	if at < 0 || int(at) >= len(v.payload) {
		return "", formatError(ErrBounds, "string at %d, payload size is %d", at, len(v.payload))
	}
	n := bytes.IndexByte(v.payload[at:], 0)
	if n < 0 {
		return "", formatError(ErrBounds, "unterminated string at %d", at)
	}
	return string(v.payload[at : int(at)+n]), nil
}

// Release invalidates the view and hands back the buffer it was decoded
// from. The buffer start is recovered from the payload position and the slot
// count stored immediately in front of the payload. The returned buffer stays
// marked as decoded and will not decode again.
func (v *View) Release() ([]byte, error) {
	if v.payload == nil {
		return nil, formatError(ErrReleased, "view released twice")
	}
	n := u64(v.buf[v.start-WordSize:])
	base := v.start - int(n+3)*WordSize
	if n != uint64(v.slots) || base != 0 {
		return nil, formatError(ErrCountMismatch, "cannot recover buffer start from slot count %d", n)
	}
	buf := v.buf[base:]
	v.buf, v.payload = nil, nil
	return buf, nil
}
