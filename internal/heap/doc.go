// Package heap reads local heaps and reads and writes global heap
// collections.
//
// A local heap ("HEAP") holds the link names of an old-style group. A
// global heap collection ("GCOL") holds variable-length data: each
// variable-length element elsewhere in the file stores its length and a
// reference (collection address, object index) to the bytes.
package heap
