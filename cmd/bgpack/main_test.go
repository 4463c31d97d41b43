package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/bgpack/hdf5"
	"github.com/robert-malhotra/bgpack/internal/fixture"
)

func runCmd(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestPackAndInspect(t *testing.T) {
	root := fixture.Build(t, []string{"a.jpg", "b.jpg"}, []fixture.Sample{
		{Name: "a.jpg", Image: true, Depth: true, Seg: true, Attrs: map[string]int64{"label": 3}},
		{Name: "b.jpg", Image: true, Depth: true, Seg: true},
	}, fixture.Options{})
	out := filepath.Join(t.TempDir(), "bg.h5")

	code, _, _ := runCmd(t, "--log-level", "warning", "pack", "-i", root, "-o", out, "--limit", "1")
	require.Equal(t, 0, code)

	f, err := hdf5.Open(out)
	require.NoError(t, err)
	v, err := f.ReadAttr("/meta@limit_applied")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
	require.NoError(t, f.Close())

	code, stdout, _ := runCmd(t, "inspect", out)
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "superblock version: 3\n")
	assert.Contains(t, stdout, "/ (group, 4 members)\n")
	assert.Contains(t, stdout, "  /image (group, 1 members)\n")
	assert.Contains(t, stdout, "    /image/a.jpg (dataset ")
	assert.Contains(t, stdout, "deflate)\n")
	assert.Contains(t, stdout, "      @label = 3\n")
	assert.Contains(t, stdout, "    @written = 1\n")
	assert.NotContains(t, stdout, "b.jpg (dataset")

	code, stdout, _ = runCmd(t, "inspect", "--no-attrs", "--max-depth", "1", out)
	require.Equal(t, 0, code)
	assert.NotContains(t, stdout, "@")
	assert.NotContains(t, stdout, "/image/a.jpg")
	assert.Contains(t, stdout, "[max depth reached]")
}

func TestPackConfigFile(t *testing.T) {
	root := fixture.Build(t, []string{"a.jpg"}, []fixture.Sample{
		{Name: "a.jpg", Image: true, Depth: true, Seg: true},
	}, fixture.Options{})
	out := filepath.Join(t.TempDir(), "bg.h5")
	cfg := filepath.Join(t.TempDir(), "bgpack.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("pack:\n  input: "+root+"\n  output: "+out+"\n"), 0o644))

	code, _, _ := runCmd(t, "--config", cfg, "pack")
	require.Equal(t, 0, code)
	_, err := os.Stat(out)
	assert.NoError(t, err)
}

func TestFailures(t *testing.T) {
	code, _, _ := runCmd(t, "pack", "-i", t.TempDir(), "-o", filepath.Join(t.TempDir(), "x.h5"))
	assert.Equal(t, 1, code)

	code, _, _ = runCmd(t, "inspect", filepath.Join(t.TempDir(), "none.h5"))
	assert.Equal(t, 1, code)

	code, _, _ = runCmd(t, "--config", filepath.Join(t.TempDir(), "none.yaml"), "pack")
	assert.Equal(t, 1, code)

	code, _, stderr := runCmd(t, "frobnicate")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "frobnicate")

	code, stdout, _ := runCmd(t, "--help")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "pack")
}
