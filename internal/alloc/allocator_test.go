package alloc

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocSequential(t *testing.T) {
	a := New(96)
	assert.EqualValues(t, 96, a.Alloc(100, "header"))
	// 196 rounds up to 200
	assert.EqualValues(t, 200, a.Alloc(8, "heap"))
	assert.EqualValues(t, 208, a.EOF())
	require.NoError(t, a.Validate())
}

func TestAllocZero(t *testing.T) {
	a := New(48)
	assert.EqualValues(t, 48, a.Alloc(0, "empty"))
	assert.EqualValues(t, 48, a.EOF())
	assert.Empty(t, a.Blocks())
}

func TestUnalignedBase(t *testing.T) {
	a := New(13)
	assert.EqualValues(t, 16, a.Alloc(1, "x"))
	assert.NoError(t, a.Validate())
}

func TestStats(t *testing.T) {
	a := New(0)
	a.Alloc(16, "header")
	a.Alloc(1000, "chunk")
	a.Alloc(24, "header")
	s := a.Stats()
	assert.Equal(t, 3, s.Blocks)
	assert.EqualValues(t, 1040, s.Bytes)
	assert.EqualValues(t, 1000, s.Largest)
	assert.EqualValues(t, 40, s.ByTag["header"])
}

func TestConcurrentAllocsDoNotOverlap(t *testing.T) {
	a := New(0)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				a.Alloc(uint64(n+j+1), "chunk")
			}
		}(i)
	}
	wg.Wait()
	assert.Len(t, a.Blocks(), 16*50)
	assert.NoError(t, a.Validate())
}

func TestValidateDetectsOverlap(t *testing.T) {
	a := New(0)
	a.Alloc(16, "a")
	a.blocks = append(a.blocks, Block{Addr: 8, Size: 4, Tag: "b"})
	assert.Error(t, a.Validate())
}
