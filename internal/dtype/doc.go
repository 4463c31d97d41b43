// Package dtype converts between element bytes and Go values.
//
// Reading goes through [Convert] for numeric classes (integers, floats and
// enums of any size and byte order) and [Strings] for fixed and
// variable-length strings. Writing goes through [Encode], which picks the
// datatype h5py would pick for the same numpy value: little-endian numbers
// and NUL-padded fixed-width byte strings.
package dtype
