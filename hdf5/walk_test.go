package hdf5

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalk(t *testing.T) {
	f, err := Open(writeLegacyFixture(t))
	require.NoError(t, err)
	defer f.Close()

	var groups, datasets []string
	err = Walk(f.Root(), func(p string, obj interface{}, err error) error {
		require.NoError(t, err)
		switch obj.(type) {
		case *Group:
			groups = append(groups, p)
		case *Dataset:
			datasets = append(datasets, p)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"/", "/mask"}, groups)
	assert.Equal(t, []string{"/alias", "/depth", "/mask/a.jpg", "/tiles"}, datasets)
}

func TestWalkSkipGroup(t *testing.T) {
	f, err := Open(writeLegacyFixture(t))
	require.NoError(t, err)
	defer f.Close()

	var seen []string
	err = Walk(f.Root(), func(p string, obj interface{}, err error) error {
		seen = append(seen, p)
		if p == "/mask" {
			return SkipGroup
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"/", "/alias", "/depth", "/mask", "/tiles"}, seen)
}

func TestWalkAttrs(t *testing.T) {
	f, err := Open(writeLegacyFixture(t))
	require.NoError(t, err)
	defer f.Close()

	values := map[string]interface{}{}
	require.NoError(t, f.WalkAttrs(func(info AttrInfo) error {
		require.NoError(t, info.Err)
		values[info.Path] = info.Value
		return nil
	}))
	assert.Equal(t, map[string]interface{}{
		"/alias@scale":      int64(1000),
		"/depth@scale":      int64(1000),
		"/mask/a.jpg@area":  int64(120),
		"/mask/a.jpg@label": int64(3),
	}, values)
}

func TestPaths(t *testing.T) {
	obj, attr, err := ParseAttrPath("/seg/a.jpg@label")
	require.NoError(t, err)
	assert.Equal(t, "/seg/a.jpg", obj)
	assert.Equal(t, "label", attr)
	assert.Equal(t, "/seg/a.jpg@label", JoinAttrPath(obj, attr))

	obj, _, err = ParseAttrPath("@v")
	require.NoError(t, err)
	assert.Equal(t, "/", obj)
	assert.Equal(t, "/@v", JoinAttrPath("/", "v"))

	_, _, err = ParseAttrPath("/seg")
	assert.ErrorIs(t, err, ErrInvalidPath)
	_, _, err = ParseAttrPath("/seg@")
	assert.ErrorIs(t, err, ErrInvalidPath)

	assert.Empty(t, SplitPath("/"))
	assert.Equal(t, []string{"a", "b"}, SplitPath("//a/./b/"))
	assert.Equal(t, "/a/b", CleanPath("a/b/"))
}
