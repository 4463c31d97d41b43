// Package alloc hands out file space for a file being written.
//
// Space is append-only: every block goes at the current end of file,
// aligned to 8 bytes. Each block carries a tag naming what it holds so a
// finished file can be checked for overlaps and summarized.
package alloc
