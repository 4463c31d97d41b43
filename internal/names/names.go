// Package names loads the ordered list of entry identifiers that drives a
// packing run.
package names

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/nlpodyssey/gopickle/pickle"
	"github.com/nlpodyssey/gopickle/types"
	"github.com/pkg/errors"
)

// FileName is the name index file inside a dataset root.
const FileName = "imnames.cp"

// ErrMissing is returned when the name index file does not exist.
var ErrMissing = errors.New("name index not found")

// Index is the ordered list of identifiers. It is used verbatim:
// duplicates and names without media are kept.
type Index []string

// Path returns the location of the name index under root.
func Path(root string) string {
	return filepath.Join(root, FileName)
}

// Load reads the name index of the dataset at root.
func Load(root string) (Index, error) {
	p := Path(root)
	data, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(ErrMissing, p)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read name index %s", p)
	}
	idx, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parse name index %s", p)
	}
	return idx, nil
}

// Parse decodes a pickled list or tuple of str or bytes. Data that is not
// a pickle but is plain text is read as one name per line.
func Parse(data []byte) (Index, error) {
	u := pickle.NewUnpickler(bytes.NewReader(data))
	v, perr := u.Load()
	if perr == nil {
		return fromPickle(v)
	}
	if !isText(data) {
		return nil, errors.Wrap(perr, "not a pickle")
	}
	return fromLines(data)
}

func fromPickle(v interface{}) (Index, error) {
	var items []interface{}
	switch l := v.(type) {
	case *types.List:
		items = []interface{}(*l)
	case *types.Tuple:
		items = []interface{}(*l)
	case []interface{}:
		items = l
	default:
		return nil, errors.Errorf("pickle holds %T, want a list of names", v)
	}
	idx := make(Index, len(items))
	for i, item := range items {
		switch s := item.(type) {
		case string:
			idx[i] = s
		case []byte:
			idx[i] = string(s)
		default:
			return nil, errors.Errorf("name %d is %T, want str or bytes", i, item)
		}
	}
	return idx, nil
}

func fromLines(data []byte) (Index, error) {
	var idx Index
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line != "" {
			idx = append(idx, line)
		}
	}
	return idx, errors.Wrap(sc.Err(), "read names")
}

func isText(data []byte) bool {
	return utf8.Valid(data) && bytes.IndexByte(data, 0) < 0
}
