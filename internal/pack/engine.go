// Package pack joins the image, depth and segmentation sources of a
// dataset root by entry identifier and writes the complete entries into
// one container.
package pack

import (
	"context"

	"github.com/pkg/errors"

	"github.com/robert-malhotra/bgpack/internal/names"
	"github.com/robert-malhotra/bgpack/internal/report"
	"github.com/robert-malhotra/bgpack/internal/source"
)

// Entry is one identifier with all three of its records.
type Entry struct {
	ID    string
	Image *source.Record
	Depth *source.Record
	Seg   *source.Record
}

// Sink receives entries in index order.
type Sink interface {
	Put(e *Entry) error
}

// Observer is told about every decision the engine makes.
type Observer interface {
	Written(n int)
	DecodeFailed(id string, err error)
	Missing(id, reason string)
}

// Summary is the outcome of a run.
type Summary struct {
	report.Counts
	Total     int  // length of the name index, limit or not
	Limit     *int // nil when unbounded
	SourceDir string
}

// LimitApplied is the limit as stored in the container, -1 for none.
func (s Summary) LimitApplied() int64 {
	if s.Limit == nil {
		return -1
	}
	return int64(*s.Limit)
}

// Engine decides, per identifier, whether an entry is written.
type Engine struct {
	Images   source.KeyedStore
	Depth    source.KeyedStore
	Seg      source.KeyedStore
	Limit    *int
	Observer Observer
}

// Run walks index in order. For each identifier the first failing check
// wins: the limit, then the image decode, then depth membership, then
// segmentation membership. Only decode failures are not tallied in the
// missing counters. Errors reading a record that exists, writing to sink
// or a cancelled ctx end the run.
func (e *Engine) Run(ctx context.Context, index names.Index, sink Sink) (Summary, error) {
	s := Summary{Total: len(index), Limit: e.Limit}
	obs := e.Observer
	if obs == nil {
		obs = nopObserver{}
	}

	for _, id := range index {
		if err := ctx.Err(); err != nil {
			return s, errors.Wrap(err, "pack interrupted")
		}
		if e.Limit != nil && s.Written >= *e.Limit {
			break
		}

		img, err := e.Images.Fetch(id)
		if err != nil {
			s.DecodeFailed++
			obs.DecodeFailed(id, err)
			continue
		}
		if !e.Depth.Exists(id) {
			s.MissingDepth++
			obs.Missing(id, report.ReasonDepth)
			continue
		}
		if !e.Seg.Exists(id) {
			s.MissingSeg++
			obs.Missing(id, report.ReasonSeg)
			continue
		}

		depth, err := e.Depth.Fetch(id)
		if err != nil {
			return s, errors.Wrapf(err, "depth of %s", id)
		}
		seg, err := e.Seg.Fetch(id)
		if err != nil {
			return s, errors.Wrapf(err, "segmentation of %s", id)
		}
		if err := sink.Put(&Entry{ID: id, Image: img, Depth: depth, Seg: seg}); err != nil {
			return s, errors.Wrapf(err, "write %s", id)
		}
		s.Written++
		obs.Written(s.Written)
	}
	return s, nil
}

type nopObserver struct{}

func (nopObserver) Written(int)                {}
func (nopObserver) DecodeFailed(string, error) {}
func (nopObserver) Missing(string, string)     {}
