// Package message decodes and encodes object header messages.
//
// Object headers are a list of typed messages. The ones this module reads
// are:
//
//   - Dataspace (0x0001): rank and dimensions. See [Dataspace].
//   - Link Info (0x0002) and Group Info (0x000A): mark link-message groups.
//   - Datatype (0x0003): element type. See [Datatype].
//   - Link (0x0006): one named child of a group. See [Link].
//   - Data Layout (0x0008): where dataset bytes live. See [DataLayout].
//   - Filter Pipeline (0x000B): chunk filters. See [FilterPipeline].
//   - Attribute (0x000C): a small named array. See [Attribute].
//   - Continuation (0x0010): more header space elsewhere in the file.
//   - Symbol Table (0x0011): v1 B-tree and local heap of an old-style group.
//
// Everything else decodes as [Unknown] and is ignored.
//
// Messages that can be written implement [Encoder]. Datatypes decoded from
// a file keep their encoded form so that attributes and arrays can be
// copied into a new file without interpreting every type class.
package message
