// Package layout moves dataset elements between the file and a flat
// row-major buffer.
//
// Reading supports every layout h5py produces:
//
//   - compact: elements live in the layout message itself.
//   - contiguous: one block of elements; an undefined address means the
//     dataset was never written and reads as zeros.
//   - chunked: chunks found through a v1 B-tree, a single-chunk index, an
//     implicit index or a fixed array, each run backwards through the
//     filter pipeline and copied into place. Edge chunks are clipped.
//
// Writing stores the whole array as one chunk when a filter pipeline is
// given, and as a contiguous block otherwise.
package layout
