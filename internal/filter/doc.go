// Package filter runs the chunk filter pipeline in both directions.
//
// Writers apply filters in pipeline order; readers undo them in reverse,
// skipping any filter whose bit is set in the chunk's filter mask.
//
// # Filters
//
//   - Deflate (ID 1): zlib streams via klauspost/compress.
//   - Shuffle (ID 2): groups byte k of every element together.
//   - Fletcher32 (ID 3): appends and verifies a 4-byte checksum.
//
// SZIP, N-bit and scale-offset are recognized by name only. A dataset that
// needs one of them cannot be read unless the filter is marked optional.
package filter
