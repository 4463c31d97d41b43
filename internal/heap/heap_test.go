package heap

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/bgpack/internal/binary"
)

func readerAt(off int, data []byte) *binary.Reader {
	file := make([]byte, off+len(data))
	copy(file[off:], data)
	return binary.NewReader(bytes.NewReader(file), binary.DefaultConfig())
}

func TestLocalHeap(t *testing.T) {
	cfg := binary.DefaultConfig()
	segment := []byte("\x00image\x00depth\x00\x00\x00")
	w := binary.NewWriter(cfg)
	w.WriteString("HEAP")
	w.WriteUint8(0)
	w.WriteZeros(3)
	w.WriteLength(uint64(len(segment)))
	w.WriteLength(1)
	w.WriteOffset(64 + 32)
	w.WriteBytes(segment)

	h, err := ReadLocal(readerAt(64, w.Bytes()), 64)
	require.NoError(t, err)

	s, err := h.String(1)
	require.NoError(t, err)
	assert.Equal(t, "image", s)
	s, err = h.String(7)
	require.NoError(t, err)
	assert.Equal(t, "depth", s)
	s, err = h.String(0)
	require.NoError(t, err)
	assert.Empty(t, s)

	_, err = h.String(100)
	assert.ErrorIs(t, err, ErrInvalidHeap)
}

func TestLocalHeapSignature(t *testing.T) {
	_, err := ReadLocal(readerAt(0, make([]byte, 64)), 0)
	assert.ErrorIs(t, err, ErrInvalidHeap)
}

func TestCollectionRoundTrip(t *testing.T) {
	cfg := binary.DefaultConfig()
	b := NewBuilder(cfg)
	i1 := b.Add([]byte("/data/bg_img"))
	i2 := b.Add([]byte("x"))
	assert.EqualValues(t, 1, i1)
	assert.EqualValues(t, 2, i2)
	assert.Equal(t, 2, b.Len())

	raw := b.Encode()
	assert.Len(t, raw, MinCollectionSize)
	assert.Equal(t, "GCOL", string(raw[:4]))

	c, err := ReadCollection(readerAt(512, raw), 512)
	require.NoError(t, err)
	obj, err := c.Object(i1)
	require.NoError(t, err)
	assert.Equal(t, "/data/bg_img", string(obj))
	obj, err = c.Object(i2)
	require.NoError(t, err)
	assert.Equal(t, "x", string(obj))

	_, err = c.Object(3)
	assert.ErrorIs(t, err, ErrInvalidHeap)
}

func TestLargeCollection(t *testing.T) {
	b := NewBuilder(binary.DefaultConfig())
	big := bytes.Repeat([]byte("z"), 5000)
	idx := b.Add(big)
	raw := b.Encode()
	assert.Greater(t, len(raw), MinCollectionSize)

	c, err := ReadCollection(readerAt(0, raw), 0)
	require.NoError(t, err)
	obj, err := c.Object(idx)
	require.NoError(t, err)
	assert.Equal(t, big, obj)
}

func TestRefAndCache(t *testing.T) {
	cfg := binary.DefaultConfig()
	b := NewBuilder(cfg)
	idx := b.Add([]byte("hello"))
	r := readerAt(4096, b.Encode())

	ref := Ref{Length: 5, Collection: 4096, Index: idx}
	w := binary.NewWriter(cfg)
	ref.Encode(w)
	require.Len(t, w.Bytes(), RefSize(8))

	got, err := DecodeRef(w.Bytes(), 8)
	require.NoError(t, err)
	assert.Equal(t, ref, got)

	cache := NewCache(r)
	data, err := cache.Resolve(got)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	empty, err := cache.Resolve(Ref{})
	require.NoError(t, err)
	assert.Nil(t, empty)

	_, err = DecodeRef([]byte{1, 2}, 8)
	assert.ErrorIs(t, err, ErrInvalidHeap)
}
