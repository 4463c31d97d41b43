package pack

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/bgpack/internal/names"
	"github.com/robert-malhotra/bgpack/internal/source"
)

type fakeStore struct {
	has      map[string]bool
	fetchErr error
	probed   []string
	fetched  []string
}

func newFake(ids ...string) *fakeStore {
	s := &fakeStore{has: map[string]bool{}}
	for _, id := range ids {
		s.has[id] = true
	}
	return s
}

func (s *fakeStore) Exists(id string) bool {
	s.probed = append(s.probed, id)
	return s.has[id]
}

func (s *fakeStore) Fetch(id string) (*source.Record, error) {
	s.fetched = append(s.fetched, id)
	if !s.has[id] {
		return nil, &source.DecodeError{ID: id, Err: errors.New("no such file")}
	}
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return &source.Record{}, nil
}

func (s *fakeStore) Close() error { return nil }

type sliceSink struct {
	ids []string
	err error
}

func (s *sliceSink) Put(e *Entry) error {
	if s.err != nil {
		return s.err
	}
	s.ids = append(s.ids, e.ID)
	return nil
}

type countObserver struct {
	written []int
	decode  []string
	missing map[string][]string
}

func (o *countObserver) Written(n int)                   { o.written = append(o.written, n) }
func (o *countObserver) DecodeFailed(id string, _ error) { o.decode = append(o.decode, id) }
func (o *countObserver) Missing(id, reason string) {
	if o.missing == nil {
		o.missing = map[string][]string{}
	}
	o.missing[reason] = append(o.missing[reason], id)
}

func intp(n int) *int { return &n }

func TestEngineFirstCheckWins(t *testing.T) {
	images := newFake("a", "b", "d", "e")
	depth := newFake("a", "c", "d", "e")
	seg := newFake("a", "b", "c", "e")
	obs := &countObserver{}
	e := &Engine{Images: images, Depth: depth, Seg: seg, Observer: obs}
	sink := &sliceSink{}

	// c lacks an image only; it must not reach the depth or seg counters
	s, err := e.Run(context.Background(), names.Index{"a", "b", "c", "d", "e", "z"}, sink)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "e"}, sink.ids)
	assert.Equal(t, 2, s.Written)
	assert.Equal(t, 1, s.MissingDepth)
	assert.Equal(t, 1, s.MissingSeg)
	assert.Equal(t, 2, s.DecodeFailed)
	assert.Equal(t, 6, s.Total)
	assert.Equal(t, int64(-1), s.LimitApplied())

	assert.Equal(t, []string{"c", "z"}, obs.decode)
	assert.Equal(t, []string{"b"}, obs.missing["missing_depth"])
	assert.Equal(t, []string{"d"}, obs.missing["missing_seg"])
	assert.Equal(t, []int{1, 2}, obs.written)

	assert.Equal(t, []string{"a", "b", "d", "e"}, depth.probed)
	assert.Equal(t, []string{"a", "d", "e"}, seg.probed)
	assert.LessOrEqual(t, s.Written+s.MissingDepth+s.MissingSeg+s.DecodeFailed, s.Total)
}

func TestEngineLimit(t *testing.T) {
	index := names.Index{"a", "b", "c", "d"}
	for _, limit := range []int{0, 1, 3, 10} {
		images, depth, seg := newFake(index...), newFake(index...), newFake("a", "c", "d")
		sink := &sliceSink{}
		e := &Engine{Images: images, Depth: depth, Seg: seg, Limit: intp(limit)}
		s, err := e.Run(context.Background(), index, sink)
		require.NoError(t, err)

		assert.LessOrEqual(t, s.Written, limit)
		assert.Equal(t, 4, s.Total)
		assert.Equal(t, int64(limit), s.LimitApplied())
		switch limit {
		case 0:
			assert.Empty(t, images.fetched)
			assert.Zero(t, s.MissingDepth+s.MissingSeg)
		case 1:
			assert.Equal(t, []string{"a"}, sink.ids)
			assert.Equal(t, []string{"a"}, images.fetched)
		case 3:
			assert.Equal(t, []string{"a", "c", "d"}, sink.ids)
			assert.Equal(t, 1, s.MissingSeg)
		case 10:
			assert.Equal(t, 3, s.Written)
		}
	}
}

func TestEngineDuplicates(t *testing.T) {
	all := []string{"a", "b"}
	sink := &sliceSink{}
	e := &Engine{Images: newFake(all...), Depth: newFake(all...), Seg: newFake("a")}
	s, err := e.Run(context.Background(), names.Index{"a", "b", "a", "b"}, sink)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "a"}, sink.ids)
	assert.Equal(t, 2, s.MissingSeg)
}

func TestEngineErrors(t *testing.T) {
	ids := []string{"a", "b"}

	depth := newFake(ids...)
	depth.fetchErr = errors.New("corrupt chunk")
	e := &Engine{Images: newFake(ids...), Depth: depth, Seg: newFake(ids...)}
	s, err := e.Run(context.Background(), ids, &sliceSink{})
	assert.EqualError(t, err, "depth of a: corrupt chunk")
	assert.Zero(t, s.Written)

	e.Depth = newFake(ids...)
	_, err = e.Run(context.Background(), ids, &sliceSink{err: errors.New("disk full")})
	assert.EqualError(t, err, "write a: disk full")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.Run(ctx, ids, &sliceSink{})
	assert.True(t, errors.Is(err, context.Canceled))
}
