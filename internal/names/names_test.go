package names

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pickled with protocol 2: ["a.jpg", "b.jpg", "a.jpg"]
var protocol2 = []byte("\x80\x02]q\x00(X\x05\x00\x00\x00a.jpgq\x01X\x05\x00\x00\x00b.jpgq\x02h\x01e.")

// pickled by Python 2 with protocol 0: ['x.png', 'y.png']
var protocol0 = []byte("(lp0\nS'x.png'\np1\naS'y.png'\np2\na.")

// pickled with protocol 3: (b"c.jpg",)
var bytesTuple = []byte("\x80\x03C\x05c.jpgq\x00\x85q\x01.")

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Index
	}{
		{"protocol 2 list with duplicate", protocol2, Index{"a.jpg", "b.jpg", "a.jpg"}},
		{"protocol 0 list", protocol0, Index{"x.png", "y.png"}},
		{"tuple of bytes", bytesTuple, Index{"c.jpg"}},
		{"text lines", []byte("one.jpg\r\ntwo.jpg\n\nthree.jpg"), Index{"one.jpg", "two.jpg", "three.jpg"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRejects(t *testing.T) {
	// a pickled int
	_, err := Parse([]byte("\x80\x02K\x07."))
	assert.Error(t, err)
	// binary garbage
	_, err = Parse([]byte{0x80, 0x02, 0x00, 0xff})
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	root := t.TempDir()
	_, err := Load(root)
	assert.True(t, errors.Is(err, ErrMissing))

	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), protocol2, 0o644))
	idx, err := Load(root)
	require.NoError(t, err)
	assert.Len(t, idx, 3)
}
