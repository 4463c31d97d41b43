package message

import (
	"encoding/binary"
	"fmt"

	bin "github.com/robert-malhotra/bgpack/internal/binary"
)

// DatatypeClass is the class of a datatype.
type DatatypeClass uint8

const (
	ClassFixedPoint DatatypeClass = 0
	ClassFloatPoint DatatypeClass = 1
	ClassTime       DatatypeClass = 2
	ClassString     DatatypeClass = 3
	ClassBitfield   DatatypeClass = 4
	ClassOpaque     DatatypeClass = 5
	ClassCompound   DatatypeClass = 6
	ClassReference  DatatypeClass = 7
	ClassEnum       DatatypeClass = 8
	ClassVarLen     DatatypeClass = 9
	ClassArray      DatatypeClass = 10
)

// ByteOrder of numeric types.
type ByteOrder uint8

const (
	OrderLE ByteOrder = 0
	OrderBE ByteOrder = 1
)

// StringPadding is how fixed-length strings fill unused bytes.
type StringPadding uint8

const (
	PadNullTerm StringPadding = 0
	PadNullPad  StringPadding = 1
	PadSpacePad StringPadding = 2
)

// CharacterSet is the encoding of string data.
type CharacterSet uint8

const (
	CharsetASCII CharacterSet = 0
	CharsetUTF8  CharacterSet = 1
)

// Datatype describes the element type of a dataset or attribute.
type Datatype struct {
	Class     DatatypeClass
	Version   uint8
	ClassBits uint32
	Size      uint32

	ByteOrder    ByteOrder
	Signed       bool
	BitOffset    uint16
	BitPrecision uint16

	StringPadding StringPadding
	CharSet       CharacterSet

	// Base is the element type of array, enum and variable-length types.
	Base           *Datatype
	ArrayDims      []uint32
	IsVarLenString bool
	Members        []CompoundMember

	// Raw is the encoded message when the type came from a file.
	Raw []byte
}

// CompoundMember is one field of a compound type.
type CompoundMember struct {
	Name   string
	Offset uint32
	Type   *Datatype
}

func (m *Datatype) Type() Type { return TypeDatatype }

// IsString reports whether elements are fixed or variable-length strings.
func (m *Datatype) IsString() bool {
	return m.Class == ClassString || (m.Class == ClassVarLen && m.IsVarLenString)
}

// String renders the type roughly the way numpy names dtypes.
func (m *Datatype) String() string {
	switch m.Class {
	case ClassFixedPoint:
		if m.Signed {
			return fmt.Sprintf("int%d", m.Size*8)
		}
		return fmt.Sprintf("uint%d", m.Size*8)
	case ClassFloatPoint:
		return fmt.Sprintf("float%d", m.Size*8)
	case ClassString:
		return fmt.Sprintf("|S%d", m.Size)
	case ClassVarLen:
		if m.IsVarLenString {
			return "str"
		}
		return "vlen"
	case ClassArray:
		return fmt.Sprintf("%v%v", m.ArrayDims, m.Base)
	case ClassEnum:
		return fmt.Sprintf("enum(%v)", m.Base)
	case ClassCompound:
		return fmt.Sprintf("compound(%d)", len(m.Members))
	default:
		return fmt.Sprintf("class%d(%d)", m.Class, m.Size)
	}
}

// NewFixedPoint returns a little-endian integer type.
func NewFixedPoint(size uint32, signed bool) *Datatype {
	bits := uint32(0)
	if signed {
		bits |= 0x08
	}
	return &Datatype{
		Class:        ClassFixedPoint,
		Version:      1,
		ClassBits:    bits,
		Size:         size,
		Signed:       signed,
		BitPrecision: uint16(size * 8),
	}
}

// NewFloat returns a little-endian IEEE 754 type of 4 or 8 bytes.
func NewFloat(size uint32) *Datatype {
	signLoc := size*8 - 1
	return &Datatype{
		Class:        ClassFloatPoint,
		Version:      1,
		ClassBits:    0x20 | signLoc<<8, // mantissa normalization: implied msb
		Size:         size,
		BitPrecision: uint16(size * 8),
	}
}

// NewFixedString returns a fixed-length string type.
func NewFixedString(size uint32, pad StringPadding, cs CharacterSet) *Datatype {
	return &Datatype{
		Class:         ClassString,
		Version:       1,
		ClassBits:     uint32(pad) | uint32(cs)<<4,
		Size:          size,
		StringPadding: pad,
		CharSet:       cs,
	}
}

// NewVarLenString returns a variable-length string type whose elements are
// global heap references.
func NewVarLenString(cs CharacterSet, offsetSize int) *Datatype {
	return &Datatype{
		Class:          ClassVarLen,
		Version:        1,
		ClassBits:      1 | uint32(PadNullTerm)<<4 | uint32(cs)<<8,
		Size:           uint32(4 + offsetSize + 4),
		CharSet:        cs,
		IsVarLenString: true,
		Base:           NewFixedPoint(1, false),
	}
}

// Encode writes the datatype. Types decoded from a file are written back
// byte for byte.
func (m *Datatype) Encode(w *bin.Writer) {
	if m.Raw != nil {
		w.WriteBytes(m.Raw)
		return
	}
	version := m.Version
	if version == 0 {
		version = 1
	}
	w.WriteUint8(uint8(m.Class) | version<<4)
	w.WriteUintN(uint64(m.ClassBits), 3)
	w.WriteUint32(m.Size)

	switch m.Class {
	case ClassFixedPoint, ClassBitfield:
		w.WriteUint16(m.BitOffset)
		w.WriteUint16(m.BitPrecision)
	case ClassFloatPoint:
		w.WriteUint16(0)
		w.WriteUint16(m.BitPrecision)
		if m.Size == 4 {
			w.WriteBytes([]byte{23, 8, 0, 23})
			w.WriteUint32(127)
		} else {
			w.WriteBytes([]byte{52, 11, 0, 52})
			w.WriteUint32(1023)
		}
	case ClassVarLen:
		m.Base.Encode(w)
	}
}

// EncodedSize returns the number of bytes Encode writes.
func (m *Datatype) EncodedSize() int {
	w := bin.NewWriter(bin.DefaultConfig())
	m.Encode(w)
	return w.Len()
}

// parseDatatype decodes a datatype from the front of data and returns the
// number of bytes it occupies.
func parseDatatype(data []byte) (*Datatype, int, error) {
	if len(data) < 8 {
		return nil, 0, ErrTruncated
	}
	dt := &Datatype{
		Class:     DatatypeClass(data[0] & 0x0f),
		Version:   data[0] >> 4,
		ClassBits: uint32(data[1]) | uint32(data[2])<<8 | uint32(data[3])<<16,
		Size:      binary.LittleEndian.Uint32(data[4:8]),
	}
	props := data[8:]
	n := 0
	need := func(k int) error {
		if len(props) < k {
			return ErrTruncated
		}
		return nil
	}

	switch dt.Class {
	case ClassFixedPoint, ClassBitfield:
		if err := need(4); err != nil {
			return nil, 0, err
		}
		dt.ByteOrder = ByteOrder(dt.ClassBits & 0x01)
		dt.Signed = dt.ClassBits&0x08 != 0
		dt.BitOffset = binary.LittleEndian.Uint16(props[0:2])
		dt.BitPrecision = binary.LittleEndian.Uint16(props[2:4])
		n = 4
	case ClassFloatPoint:
		if err := need(12); err != nil {
			return nil, 0, err
		}
		dt.ByteOrder = ByteOrder(dt.ClassBits & 0x01)
		dt.BitOffset = binary.LittleEndian.Uint16(props[0:2])
		dt.BitPrecision = binary.LittleEndian.Uint16(props[2:4])
		n = 12
	case ClassTime:
		n = 2
	case ClassString:
		dt.StringPadding = StringPadding(dt.ClassBits & 0x0f)
		dt.CharSet = CharacterSet(dt.ClassBits >> 4 & 0x0f)
	case ClassOpaque:
		n = int(dt.ClassBits & 0xff)
	case ClassReference:
	case ClassVarLen:
		dt.IsVarLenString = dt.ClassBits&0x0f == 1
		dt.StringPadding = StringPadding(dt.ClassBits >> 4 & 0x0f)
		dt.CharSet = CharacterSet(dt.ClassBits >> 8 & 0x0f)
		base, k, err := parseDatatype(props)
		if err != nil {
			return nil, 0, err
		}
		dt.Base, n = base, k
	case ClassArray:
		k, err := parseArray(dt, props)
		if err != nil {
			return nil, 0, err
		}
		n = k
	case ClassEnum:
		k, err := parseEnum(dt, props)
		if err != nil {
			return nil, 0, err
		}
		n = k
	case ClassCompound:
		k, err := parseCompound(dt, props)
		if err != nil {
			return nil, 0, err
		}
		n = k
	default:
		return nil, 0, fmt.Errorf("%w: datatype class %d", ErrUnsupported, dt.Class)
	}
	if err := need(n); err != nil {
		return nil, 0, err
	}
	dt.Raw = append([]byte(nil), data[:8+n]...)
	return dt, 8 + n, nil
}

func parseArray(dt *Datatype, props []byte) (int, error) {
	if len(props) < 1 {
		return 0, ErrTruncated
	}
	rank := int(props[0])
	pos := 1
	if dt.Version < 3 {
		pos = 4
	}
	if len(props) < pos+4*rank {
		return 0, ErrTruncated
	}
	dt.ArrayDims = make([]uint32, rank)
	for i := range dt.ArrayDims {
		dt.ArrayDims[i] = binary.LittleEndian.Uint32(props[pos:])
		pos += 4
	}
	if dt.Version < 3 {
		pos += 4 * rank // permutation indices
	}
	if pos > len(props) {
		return 0, ErrTruncated
	}
	base, k, err := parseDatatype(props[pos:])
	if err != nil {
		return 0, err
	}
	dt.Base = base
	return pos + k, nil
}

func parseEnum(dt *Datatype, props []byte) (int, error) {
	base, pos, err := parseDatatype(props)
	if err != nil {
		return 0, err
	}
	dt.Base = base
	count := int(dt.ClassBits & 0xffff)
	for i := 0; i < count; i++ {
		if pos > len(props) {
			return 0, ErrTruncated
		}
		_, k, err := cstring(props[pos:])
		if err != nil {
			return 0, err
		}
		if dt.Version < 3 {
			k = pad8(k)
		}
		pos += k
	}
	return pos + count*int(base.Size), nil
}

func parseCompound(dt *Datatype, props []byte) (int, error) {
	count := int(dt.ClassBits & 0xffff)
	pos := 0
	for i := 0; i < count; i++ {
		if pos > len(props) {
			return 0, ErrTruncated
		}
		name, k, err := cstring(props[pos:])
		if err != nil {
			return 0, err
		}
		if dt.Version < 3 {
			k = pad8(k)
		}
		pos += k

		var width int
		switch {
		case dt.Version < 3:
			width = 4
		case dt.Size < 1<<8:
			width = 1
		case dt.Size < 1<<16:
			width = 2
		case dt.Size < 1<<24:
			width = 3
		default:
			width = 4
		}
		if len(props) < pos+width {
			return 0, ErrTruncated
		}
		off := bin.DecodeUint(props[pos : pos+width])
		pos += width
		if dt.Version == 1 {
			// dimensionality, reserved, permutation, reserved, four dims
			pos += 1 + 3 + 4 + 4 + 16
		}
		if pos > len(props) {
			return 0, ErrTruncated
		}
		typ, k, err := parseDatatype(props[pos:])
		if err != nil {
			return 0, err
		}
		pos += k
		dt.Members = append(dt.Members, CompoundMember{Name: name, Offset: uint32(off), Type: typ})
	}
	return pos, nil
}
