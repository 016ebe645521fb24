package blob

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/swiftglyph/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// node is a synthetic record with a name and a variable number of children.
type node struct {
	Value    uint32
	Name     string
	Children []*node
}

func tree(depth, fanout int, value *uint32) *node {
	*value++
	n := &node{Value: *value, Name: fmt.Sprintf("n%d", *value)}
	if depth > 0 {
		for i := 0; i < fanout+depth%2; i++ {
			n.Children = append(n.Children, tree(depth-1, fanout, value))
		}
	}
	return n
}

func countPointers(n *node) int {
	c := 2 // name and children array
	for _, ch := range n.Children {
		c += 1 + countPointers(ch)
	}
	return c
}

// Node layout: value u32, count u32, name ptr, children ptr;
// children are an array of pointers to nodes.
const nodeSize = 24

func encodeNode(b *Builder, n *node) (Ref, error) {
	at := b.Alloc(nodeSize, WordSize)
	b.PutU32(at, n.Value)
	b.PutU32(at+4, uint32(len(n.Children)))
	name := b.PutString(n.Name)
	if err := b.Pointer(at+8, name); err != nil {
		return 0, err
	}
	arr := b.Alloc(len(n.Children)*WordSize, WordSize)
	if len(n.Children) == 0 {
		arr = at // point somewhere valid; never dereferenced
	}
	if err := b.Pointer(at+16, arr); err != nil {
		return 0, err
	}
	for i, ch := range n.Children {
		cat, err := encodeNode(b, ch)
		if err != nil {
			return 0, err
		}
		if err := b.Pointer(arr+Ref(i*WordSize), cat); err != nil {
			return 0, err
		}
	}
	return at, nil
}

func readNode(v *View, at Ref) (*node, error) {
	n := &node{}
	var err error
	if n.Value, err = v.U32(at); err != nil {
		return nil, err
	}
	cnt, err := v.U32(at + 4)
	if err != nil {
		return nil, err
	}
	name, err := v.Pointer(at + 8)
	if err != nil {
		return nil, err
	}
	if n.Name, err = v.CString(name); err != nil {
		return nil, err
	}
	arr, err := v.Pointer(at + 16)
	if err != nil {
		return nil, err
	}
	for i := 0; i < int(cnt); i++ {
		cat, err := v.Pointer(arr + Ref(i*WordSize))
		if err != nil {
			return nil, err
		}
		ch, err := readNode(v, cat)
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, ch)
	}
	return n, nil
}

func encodeTree(t *testing.T, root *node) []byte {
	b := NewBuilder(1024)
	at, err := encodeNode(b, root)
	require.NoError(t, err)
	require.Equal(t, Ref(0), at)
	buf, err := b.Bytes()
	require.NoError(t, err)
	return buf
}

func TestRoundTrip(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "swiftglyph.blob")
	defer teardown()
	//
	var counter uint32
	root := tree(3, 2, &counter)
	buf := encodeTree(t, root)
	h, err := Inspect(buf)
	require.NoError(t, err)
	assert.Equal(t, countPointers(root), h.SlotCount)
	assert.False(t, h.Decoded)
	//
	v, err := Decode(buf)
	require.NoError(t, err)
	got, err := readNode(v, v.Root())
	require.NoError(t, err)
	if diff := cmp.Diff(root, got); diff != "" {
		t.Errorf("decoded tree differs (-want +got):\n%s", diff)
	}
}

func TestResolvedPointersAreAbsolute(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "swiftglyph.blob")
	defer teardown()
	//
	b := NewBuilder(0)
	root := b.Alloc(2*WordSize, WordSize)
	first := b.Alloc(4, 4)
	b.PutU32(first, 0xcafe)
	second := b.Alloc(4, 4)
	b.PutU32(second, 0xbabe)
	require.NoError(t, b.Pointer(root, second))
	require.NoError(t, b.Pointer(root+WordSize, first))
	buf, err := b.Bytes()
	require.NoError(t, err)
	//
	// before decoding, slots hold displacements relative to themselves
	payload := buf[(2+3)*WordSize:]
	_, d := untag(u64(payload[WordSize:]))
	assert.Equal(t, int64(first)-int64(WordSize), d)
	//
	v, err := Decode(buf)
	require.NoError(t, err)
	p, err := v.Pointer(root)
	require.NoError(t, err)
	assert.Equal(t, second, p)
	x, _ := v.U32(p)
	assert.Equal(t, uint32(0xbabe), x)
	p, err = v.Pointer(root + WordSize)
	require.NoError(t, err)
	assert.Equal(t, first, p)
	x, _ = v.U32(p)
	assert.Equal(t, uint32(0xcafe), x)
}

func TestDoubleDecodeRejected(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "swiftglyph.blob")
	defer teardown()
	//
	var counter uint32
	buf := encodeTree(t, tree(2, 2, &counter))
	_, err := Decode(buf)
	require.NoError(t, err)
	_, err = Decode(buf)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDoubleDecode))
	assert.Equal(t, core.EBLOBFORMAT, core.Code(err))
}

func TestDoubleDecodeWithTamperedState(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "swiftglyph.blob")
	defer teardown()
	//
	var counter uint32
	buf := encodeTree(t, tree(2, 2, &counter))
	_, err := Decode(buf)
	require.NoError(t, err)
	buf[tagState] = stateEncoded // pretend nobody decoded it
	_, err = Decode(buf)
	assert.True(t, errors.Is(err, ErrDoubleDecode))
}

func TestDuplicateSlotRolledBack(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "swiftglyph.blob")
	defer teardown()
	//
	b := NewBuilder(0)
	root := b.Alloc(2*WordSize, WordSize)
	target := b.PutString("x")
	require.NoError(t, b.Pointer(root, target))
	require.NoError(t, b.Pointer(root+WordSize, target))
	buf, err := b.Bytes()
	require.NoError(t, err)
	putU64(buf[3*WordSize:], 0) // second slot offset := first one
	orig := append([]byte(nil), buf...)
	_, err = Decode(buf)
	assert.True(t, errors.Is(err, ErrDoubleDecode))
	assert.Equal(t, orig, buf, "failed decode must leave buffer untouched")
}

func TestFormatErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "swiftglyph.blob")
	defer teardown()
	//
	var counter uint32
	valid := encodeTree(t, tree(1, 2, &counter))
	n := int(u64(valid[WordSize:]))
	payloadStart := (n + 3) * WordSize
	firstSlot := int(u64(valid[2*WordSize:]))
	for _, tc := range []struct {
		name    string
		corrupt func([]byte) []byte
		want    error
	}{
		{"short", func(b []byte) []byte { return b[:2*WordSize] }, ErrTruncated},
		{"magic", func(b []byte) []byte { b[0] = 'X'; return b }, ErrTag},
		{"version", func(b []byte) []byte { b[tagVersion] = 7; return b }, ErrVersion},
		{"width", func(b []byte) []byte { b[tagWidth] = 4; return b }, ErrWidth},
		{"huge count", func(b []byte) []byte { putU64(b[WordSize:], 1<<40); return b }, ErrTruncated},
		{"footer", func(b []byte) []byte { putU64(b[(n+2)*WordSize:], uint64(n+1)); return b }, ErrCountMismatch},
		{"slot beyond payload", func(b []byte) []byte {
			putU64(b[2*WordSize:], uint64(len(b)-payloadStart))
			return b
		}, ErrSlotBounds},
		{"slot misaligned", func(b []byte) []byte { putU64(b[2*WordSize:], 4); return b }, ErrSlotBounds},
		{"target beyond payload", func(b []byte) []byte {
			putU64(b[payloadStart+firstSlot:], tagged(KindInternal, int64(len(b))))
			return b
		}, ErrTargetBounds},
		{"target before payload", func(b []byte) []byte {
			putU64(b[payloadStart+firstSlot:], tagged(KindInternal, -int64(firstSlot)-1))
			return b
		}, ErrTargetBounds},
		{"unknown kind", func(b []byte) []byte {
			putU64(b[payloadStart+firstSlot:], tagged(Kind(9), 0))
			return b
		}, ErrKind},
		{"external without region", func(b []byte) []byte {
			putU64(b[payloadStart+firstSlot:], tagged(KindExternal, 0))
			return b
		}, ErrTargetBounds},
	} {
		buf := tc.corrupt(append([]byte(nil), valid...))
		orig := append([]byte(nil), buf...)
		_, err := Decode(buf)
		if assert.Error(t, err, tc.name) {
			assert.True(t, errors.Is(err, tc.want), "%s: got %v", tc.name, err)
			assert.Equal(t, core.EBLOBFORMAT, core.Code(err), tc.name)
		}
		assert.True(t, bytes.Equal(orig, buf), "%s: buffer modified by failed decode", tc.name)
	}
}

func TestExternalPointer(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "swiftglyph.blob")
	defer teardown()
	//
	b := NewBuilder(0)
	root := b.Alloc(WordSize, WordSize)
	require.NoError(t, b.External(root, 4096))
	buf, err := b.Bytes()
	require.NoError(t, err)
	//
	_, err = Decode(append([]byte(nil), buf...), WithExternal(4096))
	assert.True(t, errors.Is(err, ErrTargetBounds), "offset 4096 must be outside a region of 4096 bytes")
	v, err := Decode(buf, WithExternal(8192))
	require.NoError(t, err)
	off, err := v.External(root)
	require.NoError(t, err)
	assert.Equal(t, 4096, off)
	_, err = v.Pointer(root)
	assert.True(t, errors.Is(err, ErrKind))
}

func TestViewBounds(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "swiftglyph.blob")
	defer teardown()
	//
	b := NewBuilder(0)
	at := b.Alloc(16, 8)
	b.PutF32(at, 1.5)
	b.PutI32(at+4, -7)
	buf, _ := b.Bytes()
	v, err := Decode(buf)
	require.NoError(t, err)
	f, err := v.F32(at)
	require.NoError(t, err)
	assert.Equal(t, float32(1.5), f)
	i, err := v.I32(at + 4)
	require.NoError(t, err)
	assert.Equal(t, int32(-7), i)
	_, err = v.U32(14)
	assert.True(t, errors.Is(err, ErrBounds))
	_, err = v.U32(-1)
	assert.True(t, errors.Is(err, ErrBounds))
	_, err = v.Pointer(8)
	assert.True(t, errors.Is(err, ErrUnresolved))
	s, err := v.CString(8)
	assert.NoError(t, err)
	assert.Equal(t, "", s)
	_, err = v.CString(16)
	assert.True(t, errors.Is(err, ErrBounds))
}

func TestRelease(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "swiftglyph.blob")
	defer teardown()
	//
	var counter uint32
	buf := encodeTree(t, tree(2, 1, &counter))
	v, err := Decode(buf)
	require.NoError(t, err)
	back, err := v.Release()
	require.NoError(t, err)
	assert.Equal(t, len(buf), len(back))
	assert.Same(t, &buf[0], &back[0], "released buffer must share the decoded memory")
	_, err = v.U32(0)
	assert.True(t, errors.Is(err, ErrReleased))
	_, err = v.Release()
	assert.True(t, errors.Is(err, ErrReleased))
	_, err = Decode(back)
	assert.True(t, errors.Is(err, ErrDoubleDecode))
}

func TestBuilderRejectsBadSlots(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "swiftglyph.blob")
	defer teardown()
	//
	b := NewBuilder(0)
	at := b.Alloc(12, 4)
	assert.Error(t, b.Pointer(at+4, at), "misaligned slot")
	assert.Error(t, b.Pointer(at+8, at), "slot crossing end of payload")
	require.NoError(t, b.Pointer(at, 100))
	_, err := b.Bytes()
	assert.True(t, errors.Is(err, ErrTargetBounds), "dangling forward reference")
}

func TestConcurrentDecodeOfDistinctBuffers(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "swiftglyph.blob")
	defer teardown()
	//
	var counter uint32
	root := tree(3, 2, &counter)
	template := encodeTree(t, root)
	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		buf := append([]byte(nil), template...)
		wg.Add(1)
		go func(i int, buf []byte) {
			defer wg.Done()
			v, err := Decode(buf)
			if err == nil {
				var n *node
				if n, err = readNode(v, v.Root()); err == nil && n.Value != root.Value {
					err = fmt.Errorf("root value %d", n.Value)
				}
			}
			errs[i] = err
		}(i, buf)
	}
	wg.Wait()
	for i, err := range errs {
		assert.NoError(t, err, "decoder #%d", i)
	}
}

func TestTagging(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "swiftglyph.blob")
	defer teardown()
	//
	for _, d := range []int64{0, 1, -1, 4711, -4711, maxDisp, minDisp} {
		k, got := untag(tagged(KindInternal|kindResolved, d))
		assert.Equal(t, KindInternal|kindResolved, k)
		assert.Equal(t, d, got)
	}
	assert.Equal(t, "external", (KindExternal | kindResolved).String())
}
