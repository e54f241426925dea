package smoltlv

import (
	"fmt"
)

// Unmarshal decodes the single item in data into a Go value.
//
// Null decodes to nil, booleans to bool, Int to int64, Bytes to []byte,
// String to string, List to []any and Dict to Dict. Items with an
// undefined tag fail with ErrInvalidFormat unless WithAllowUnknownTypes is
// set, in which case they decode to Unknown.
//
// Unmarshal fails with ErrInvalidFormat if data holds anything after the
// first item. Use UnmarshalFirst to read a sequence of items.
func Unmarshal(data []byte, opts ...DecodeOption) (any, error) {
	v, rest, err := UnmarshalFirst(data, opts...)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrInvalidFormat, len(rest))
	}
	return v, nil
}

// UnmarshalFirst decodes the first item in data and returns the bytes that
// follow it. Empty input fails with ErrEnd.
func UnmarshalFirst(data []byte, opts ...DecodeOption) (any, []byte, error) {
	cfg := newDecodeConfig(opts)
	c := NewCursor(data)
	item, err := c.Next()
	if err != nil {
		return nil, nil, err
	}
	v, err := decodeItem(item, &cfg, 0)
	if err != nil {
		return nil, nil, err
	}
	return v, c.Rest(), nil
}

func decodeItem(it Item, cfg *decodeConfig, depth int) (any, error) {
	switch it.Type() {
	case TypeNull:
		return nil, nil
	case TypeBoolTrue:
		return true, nil
	case TypeBoolFalse:
		return false, nil
	case TypeInt:
		v, _ := it.Int()
		return v, nil
	case TypeBytes:
		if cfg.copyBytes {
			b, _ := it.CopyValue()
			return b, nil
		}
		return it.Value(), nil
	case TypeString:
		s, _ := it.Str()
		return s, nil
	case TypeList:
		if depth >= cfg.limits.MaxDepth {
			return nil, fmt.Errorf("%w: nesting deeper than %d", ErrLimitExceeded, cfg.limits.MaxDepth)
		}
		list := []any{}
		for child, err := range it.Elements() {
			if err != nil {
				return nil, err
			}
			if len(list) >= cfg.limits.MaxContainerItems {
				return nil, fmt.Errorf("%w: list longer than %d", ErrLimitExceeded, cfg.limits.MaxContainerItems)
			}
			v, err := decodeItem(child, cfg, depth+1)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	case TypeDict:
		if depth >= cfg.limits.MaxDepth {
			return nil, fmt.Errorf("%w: nesting deeper than %d", ErrLimitExceeded, cfg.limits.MaxDepth)
		}
		dict := Dict{}
		for f, err := range it.Fields() {
			if err != nil {
				return nil, err
			}
			if len(dict) >= cfg.limits.MaxContainerItems {
				return nil, fmt.Errorf("%w: dict larger than %d", ErrLimitExceeded, cfg.limits.MaxContainerItems)
			}
			key, _ := f.Key.Str()
			v, err := decodeItem(f.Value, cfg, depth+1)
			if err != nil {
				return nil, err
			}
			dict = append(dict, DictEntry{Key: key, Value: v})
		}
		return dict, nil
	default:
		if !cfg.allowUnknown {
			return nil, fmt.Errorf("%w: unknown type tag 0x%02x", ErrInvalidFormat, it.RawType())
		}
		data, _ := it.CopyValue()
		return Unknown{Type: it.RawType(), Data: data}, nil
	}
}
