package btree

import (
	"errors"
	"fmt"

	"github.com/robert-malhotra/bgpack/internal/binary"
)

// ErrInvalidNode is returned for a node with a bad signature or type.
var ErrInvalidNode = errors.New("invalid B-tree node")

const (
	nodeGroup = 0
	nodeChunk = 1

	// maxDepth bounds recursion through corrupt trees.
	maxDepth = 64
)

// node is one v1 B-tree node. keys has one more element than children.
type node struct {
	level    uint8
	keys     [][]byte
	children []uint64
}

func readNode(r *binary.Reader, address uint64, typ uint8, keySize int) (*node, error) {
	nr := r.At(int64(address))
	hdr, err := nr.ReadBytes(8)
	if err != nil {
		return nil, fmt.Errorf("B-tree node at %d: %w", address, err)
	}
	if string(hdr[:4]) != "TREE" {
		return nil, fmt.Errorf("%w: signature %q at %d", ErrInvalidNode, hdr[:4], address)
	}
	if hdr[4] != typ {
		return nil, fmt.Errorf("%w: type %d at %d, want %d", ErrInvalidNode, hdr[4], address, typ)
	}
	n := &node{level: hdr[5]}
	used := int(r.ByteOrder().Uint16(hdr[6:8]))
	nr.Skip(int64(2 * r.OffsetSize())) // siblings

	for i := 0; i <= used; i++ {
		key, err := nr.ReadBytes(keySize)
		if err != nil {
			return nil, err
		}
		n.keys = append(n.keys, key)
		if i == used {
			break
		}
		child, err := nr.ReadOffset()
		if err != nil {
			return nil, err
		}
		n.children = append(n.children, child)
	}
	return n, nil
}

// walk visits every leaf child address in key order.
func walk(r *binary.Reader, address uint64, typ uint8, keySize int, depth int,
	visit func(left []byte, child uint64) error) error {
	if depth > maxDepth {
		return fmt.Errorf("%w: tree deeper than %d", ErrInvalidNode, maxDepth)
	}
	n, err := readNode(r, address, typ, keySize)
	if err != nil {
		return err
	}
	for i, child := range n.children {
		if n.level > 0 {
			if err := walk(r, child, typ, keySize, depth+1, visit); err != nil {
				return err
			}
			continue
		}
		if err := visit(n.keys[i], child); err != nil {
			return err
		}
	}
	return nil
}
