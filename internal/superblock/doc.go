// Package superblock finds and decodes the file superblock, the entry point
// that gives address sizes, the end-of-file address and the root group.
//
// Versions 0 and 1 are what h5py writes by default; they describe the root
// group with a symbol table entry whose scratch pad caches the root B-tree
// and local heap addresses. Versions 2 and 3 point straight at the root
// object header and carry a lookup3 checksum, which is verified. Files this
// module creates always use version 3.
package superblock
