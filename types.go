package smoltlv

import "fmt"

const (
	// HeaderSize is the size of every item header: a type tag followed by
	// a 24-bit big-endian length.
	HeaderSize = 4

	// MaxLength is the largest value length a header can carry.
	MaxLength = 0xFFFFFF

	intLength = 8
)

// Type is an item type tag.
type Type uint8

const (
	TypeNull      Type = 0x00
	TypeBoolTrue  Type = 0x01
	TypeBoolFalse Type = 0x02
	TypeInt       Type = 0x03
	TypeBytes     Type = 0x04
	TypeString    Type = 0x05
	TypeList      Type = 0x06
	TypeDict      Type = 0x07

	// TypeInvalid is returned by Item.Type for tags outside the defined range.
	TypeInvalid Type = 0xFF

	typeMax = 0x08
)

var typeNames = [...]string{
	TypeNull:      "null",
	TypeBoolTrue:  "true",
	TypeBoolFalse: "false",
	TypeInt:       "int",
	TypeBytes:     "bytes",
	TypeString:    "string",
	TypeList:      "list",
	TypeDict:      "dict",
}

func (t Type) String() string {
	if t.Valid() {
		return typeNames[t]
	}
	return fmt.Sprintf("type(0x%02x)", uint8(t))
}

// Valid reports whether t is one of the defined type tags.
func (t Type) Valid() bool { return t < typeMax }

// IsContainer reports whether items of type t hold nested items.
func (t Type) IsContainer() bool { return t == TypeList || t == TypeDict }

// checkLength applies the fixed-length rules of the scalar types.
// Tags without a rule (including unknown ones) accept any length.
func (t Type) checkLength(length uint32) error {
	switch t {
	case TypeNull, TypeBoolTrue, TypeBoolFalse:
		if length != 0 {
			return fmt.Errorf("%w: %s item with length %d", ErrInvalidFormat, t, length)
		}
	case TypeInt:
		if length != intLength {
			return fmt.Errorf("%w: int item with length %d", ErrInvalidFormat, length)
		}
	}
	return nil
}

// Compression identifies the algorithm used for an envelope payload.
type Compression uint16

const (
	CompNone Compression = 0x0
	CompZIP  Compression = 0x1
	CompZSTD Compression = 0x2
	CompLZ4  Compression = 0x3
	CompBR   Compression = 0x4
)

func (c Compression) String() string {
	switch c {
	case CompNone:
		return "none"
	case CompZIP:
		return "zip"
	case CompZSTD:
		return "zstd"
	case CompLZ4:
		return "lz4"
	case CompBR:
		return "brotli"
	default:
		return "unknown"
	}
}

// ParseCompression is the inverse of Compression.String.
func ParseCompression(s string) (Compression, error) {
	for _, c := range []Compression{CompNone, CompZIP, CompZSTD, CompLZ4, CompBR} {
		if c.String() == s {
			return c, nil
		}
	}
	if s == "br" {
		return CompBR, nil
	}
	return 0, fmt.Errorf("%w: unknown compression %q", ErrInvalidArgument, s)
}

// Dict is an ordered dictionary value. Order and duplicate keys are kept
// exactly as they appear on the wire.
type Dict []DictEntry

type DictEntry struct {
	Key   string
	Value any
}

// Get returns the value of the first entry named key.
func (d Dict) Get(key string) (any, bool) {
	for _, e := range d {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Keys returns the keys in wire order.
func (d Dict) Keys() []string {
	keys := make([]string, len(d))
	for i, e := range d {
		keys[i] = e.Key
	}
	return keys
}

// Unknown holds an item whose type tag is outside the defined range.
// It is only produced when decoding with WithAllowUnknownTypes.
type Unknown struct {
	Type byte
	Data []byte
}
