package filter

import (
	"fmt"

	"github.com/robert-malhotra/bgpack/internal/message"
)

const flagOptional = 0x01

// Options select the filters written for new datasets.
type Options struct {
	// Deflate is the zlib level; negative disables compression.
	Deflate    int  `yaml:"deflate"`
	Shuffle    bool `yaml:"shuffle"`
	Fletcher32 bool `yaml:"fletcher32"`
}

// DefaultOptions matches h5py's compression="gzip".
func DefaultOptions() Options {
	return Options{Deflate: DefaultLevel}
}

// Message returns the pipeline message for elements of elemSize bytes,
// or nil when no filter is selected. Filters run shuffle, deflate,
// fletcher32, the order h5py uses.
func (o Options) Message(elemSize uint32) *message.FilterPipeline {
	fp := &message.FilterPipeline{Version: 2}
	if o.Shuffle {
		fp.Filters = append(fp.Filters, message.FilterInfo{ID: message.FilterShuffle, Flags: flagOptional, ClientData: []uint32{elemSize}})
	}
	if o.Deflate >= 0 {
		fp.Filters = append(fp.Filters, message.FilterInfo{ID: message.FilterDeflate, Flags: flagOptional, ClientData: []uint32{uint32(o.Deflate)}})
	}
	if o.Fletcher32 {
		fp.Filters = append(fp.Filters, message.FilterInfo{ID: message.FilterFletcher32})
	}
	if len(fp.Filters) == 0 {
		return nil
	}
	return fp
}

// Pipeline is the runnable form of a filter pipeline message.
type Pipeline struct {
	filters []Filter
}

// NewPipeline builds the filters of fp. A nil fp is the empty pipeline.
func NewPipeline(fp *message.FilterPipeline) (*Pipeline, error) {
	p := &Pipeline{}
	if fp == nil {
		return p, nil
	}
	for _, info := range fp.Filters {
		f, err := New(info)
		if err != nil {
			return nil, err
		}
		// Unavailable optional filters keep their slot so mask bits line up.
		p.filters = append(p.filters, f)
	}
	return p, nil
}

// Empty reports whether the pipeline has no filters.
func (p *Pipeline) Empty() bool {
	return len(p.filters) == 0
}

// Encode applies every filter in order.
func (p *Pipeline) Encode(data []byte) ([]byte, error) {
	for _, f := range p.filters {
		if f == nil {
			continue
		}
		var err error
		if data, err = f.Encode(data); err != nil {
			return nil, fmt.Errorf("filter %d: %w", f.ID(), err)
		}
	}
	return data, nil
}

// Decode undoes the filters in reverse order. Bit i of mask marks filter i
// as not applied to this chunk.
func (p *Pipeline) Decode(data []byte, mask uint32) ([]byte, error) {
	for i := len(p.filters) - 1; i >= 0; i-- {
		f := p.filters[i]
		if mask&(1<<uint(i)) != 0 {
			continue
		}
		if f == nil {
			return nil, fmt.Errorf("%w: optional filter %d was applied to this chunk", ErrUnsupported, i)
		}
		var err error
		if data, err = f.Decode(data); err != nil {
			return nil, fmt.Errorf("filter %d: %w", f.ID(), err)
		}
	}
	return data, nil
}
