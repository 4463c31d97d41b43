// Package object reads and writes object headers.
//
// Every object in a file (group, dataset, committed datatype) starts with
// an object header: a list of typed messages describing the object, possibly
// spread over several continuation blocks.
//
// # Versions
//
//   - Version 1 headers have a 16-byte prefix and 8-byte aligned messages.
//     Continuation blocks are bare message lists. These come from files with
//     a version 0 or 1 superblock.
//
//   - Version 2 headers start with "OHDR", use compact 4-byte message
//     prefixes and end every block in a lookup3 checksum. Continuation
//     blocks start with "OCHK".
//
// [Read] detects the version. [Encode] always writes version 2 headers in a
// single chunk.
package object
