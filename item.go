package smoltlv

import (
	"encoding/binary"
	"errors"
	"fmt"
	"iter"
)

// Item is a read-only view of one encoded item, header included. It borrows
// the bytes of the buffer it was decoded from and never copies them, so the
// buffer must not be modified while the Item is in use.
//
// The zero Item is invalid: IsValid reports false and every typed accessor
// fails.
type Item struct {
	raw []byte
}

// ParseItem decodes the first item of b.
func ParseItem(b []byte) (Item, error) {
	c := NewCursor(b)
	return c.Next()
}

// Raw returns the encoded item, header included.
func (it Item) Raw() []byte { return it.raw }

// Size returns the encoded size of the item, header included.
func (it Item) Size() int { return len(it.raw) }

// RawType returns the type tag byte as stored, including out-of-range tags.
// The zero Item reports TypeInvalid.
func (it Item) RawType() uint8 {
	if len(it.raw) == 0 {
		return uint8(TypeInvalid)
	}
	return it.raw[0]
}

// Type returns the item type, or TypeInvalid for an unknown tag.
func (it Item) Type() Type {
	t := Type(it.RawType())
	if !t.Valid() {
		return TypeInvalid
	}
	return t
}

// Length returns the declared length of the value.
func (it Item) Length() uint32 {
	if len(it.raw) < HeaderSize {
		return 0
	}
	return readLength(it.raw)
}

// Value returns the value bytes without copying.
func (it Item) Value() []byte {
	if len(it.raw) < HeaderSize {
		return nil
	}
	return it.raw[HeaderSize:]
}

func (it Item) IsValid() bool {
	return it.raw != nil && Type(it.raw[0]).Valid()
}

func (it Item) IsNull() bool { return it.Type() == TypeNull }

func (it Item) IsContainer() bool { return it.Type().IsContainer() }

func (it Item) Bool() (value bool, ok bool) {
	switch it.Type() {
	case TypeBoolTrue:
		return true, true
	case TypeBoolFalse:
		return false, true
	}
	return false, false
}

// Int decodes an 8-byte big-endian two's-complement integer.
func (it Item) Int() (int64, bool) {
	if it.Type() != TypeInt || it.Length() != intLength {
		return 0, false
	}
	return int64(binary.BigEndian.Uint64(it.Value())), true
}

// Bytes returns the value of a Bytes item without copying.
func (it Item) Bytes() ([]byte, bool) {
	if it.Type() != TypeBytes {
		return nil, false
	}
	return it.Value(), true
}

// Str returns the value of a String item as a Go string. The result is a
// copy and stays valid after the source buffer is released.
func (it Item) Str() (string, bool) {
	if it.Type() != TypeString {
		return "", false
	}
	return string(it.Value()), true
}

// CopyValue returns an owned copy of the value bytes of any valid-length item.
func (it Item) CopyValue() ([]byte, bool) {
	if it.raw == nil {
		return nil, false
	}
	v := it.Value()
	out := make([]byte, len(v))
	copy(out, v)
	return out, true
}

// EqualString reports whether it is a String item whose bytes equal s.
func (it Item) EqualString(s string) bool {
	return it.Type() == TypeString && string(it.Value()) == s
}

// Children returns a cursor over the nested items of a container.
func (it Item) Children() Cursor { return ForItem(it) }

// Elements iterates over the children of a List item.
func (it Item) Elements() iter.Seq2[Item, error] {
	if it.Type() != TypeList {
		return func(yield func(Item, error) bool) {
			yield(Item{}, fmt.Errorf("%w: %s is not a list", ErrInvalidArgument, it.Type()))
		}
	}
	return it.Children().All()
}

// Field is one key/value pair of a Dict item.
type Field struct {
	Key   Item
	Value Item
}

// Fields iterates over the key/value pairs of a Dict item in wire order.
// A non-string key or a key without a value ends the sequence with
// ErrInvalidFormat.
func (it Item) Fields() iter.Seq2[Field, error] {
	return func(yield func(Field, error) bool) {
		if it.Type() != TypeDict {
			yield(Field{}, fmt.Errorf("%w: %s is not a dict", ErrInvalidArgument, it.Type()))
			return
		}
		c := it.Children()
		for {
			f, err := nextField(&c)
			if errors.Is(err, ErrEnd) {
				return
			}
			if !yield(f, err) || err != nil {
				return
			}
		}
	}
}

// nextField reads one key/value pair. ErrEnd is returned only when the
// dict ends cleanly before a key.
func nextField(c *Cursor) (Field, error) {
	key, err := c.Next()
	if err != nil {
		return Field{}, err
	}
	if key.Type() != TypeString {
		return Field{}, fmt.Errorf("%w: dict key of type %s", ErrInvalidFormat, Type(key.RawType()))
	}
	value, err := c.Next()
	if errors.Is(err, ErrEnd) {
		return Field{}, fmt.Errorf("%w: dict key %q has no value", ErrInvalidFormat, key.Value())
	}
	if err != nil {
		return Field{}, err
	}
	return Field{Key: key, Value: value}, nil
}

// Count returns the number of children of a container. For a Dict this
// is the number of key/value pairs.
func (it Item) Count() (int, error) {
	n := 0
	switch it.Type() {
	case TypeList:
		for _, err := range it.Elements() {
			if err != nil {
				return n, err
			}
			n++
		}
	case TypeDict:
		for _, err := range it.Fields() {
			if err != nil {
				return n, err
			}
			n++
		}
	default:
		return 0, fmt.Errorf("%w: %s is not a container", ErrInvalidArgument, it.Type())
	}
	return n, nil
}

// ListAt returns the element at index of a List item. It fails when it is
// not a List, when index is out of range, or when a decode error is met
// before index is reached; ListIndex tells these cases apart.
func (it Item) ListAt(index int) (Item, bool) {
	item, err := it.ListIndex(index)
	return item, err == nil
}

// ListIndex is ListAt with a descriptive error: ErrNotFound for an index out
// of range, ErrInvalidArgument when it is not a List, and the decode error
// otherwise.
func (it Item) ListIndex(index int) (Item, error) {
	if it.Type() != TypeList {
		return Item{}, fmt.Errorf("%w: %s is not a list", ErrInvalidArgument, it.Type())
	}
	if index < 0 {
		return Item{}, fmt.Errorf("%w: index %d", ErrNotFound, index)
	}
	c := it.Children()
	for i := 0; ; i++ {
		item, err := c.Next()
		if errors.Is(err, ErrEnd) {
			return Item{}, fmt.Errorf("%w: index %d of %d", ErrNotFound, index, i)
		}
		if err != nil {
			return Item{}, err
		}
		if i == index {
			return item, nil
		}
	}
}

// DictGet returns the value of the first entry whose key equals key.
//
// The scan aborts as soon as it meets a key that is not a String: such a
// dict is malformed and no later entry is considered. A matching key whose
// value cannot be decoded also fails. DictLookup reports why a lookup
// failed.
func (it Item) DictGet(key string) (Item, bool) {
	item, err := it.DictLookup(key)
	return item, err == nil
}

// DictLookup is DictGet with a descriptive error: ErrNotFound when the dict
// has no such key, ErrInvalidArgument when it is not a Dict, and the decode
// error otherwise.
func (it Item) DictLookup(key string) (Item, error) {
	if it.Type() != TypeDict {
		return Item{}, fmt.Errorf("%w: %s is not a dict", ErrInvalidArgument, it.Type())
	}
	for f, err := range it.Fields() {
		if err != nil {
			return Item{}, err
		}
		if f.Key.EqualString(key) {
			return f.Value, nil
		}
	}
	return Item{}, fmt.Errorf("%w: key %q", ErrNotFound, key)
}
