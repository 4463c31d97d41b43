// Package btree walks version 1 B-trees ("TREE").
//
// Files written with a version 0 or 1 superblock index group members with
// a type 0 tree whose leaves point at symbol table nodes ("SNOD"), and
// index the chunks of a chunked dataset with a type 1 tree whose keys hold
// chunk offsets.
//
//   - [GroupEntries] lists the members of an old-style group.
//   - [Chunks] lists every allocated chunk of a dataset.
package btree
