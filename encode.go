package smoltlv

import (
	"fmt"
	"math"
	"sort"
)

// Marshal encodes v and returns the encoded bytes.
//
// Supported values:
//   - nil as Null
//   - bool
//   - every signed and unsigned integer kind as Int (unsigned values above
//     math.MaxInt64 are rejected)
//   - []byte as Bytes, string as String
//   - []any and []string as List
//   - Dict as Dict in entry order, map[string]any and map[string]string as
//     Dict with keys sorted so the output is deterministic
//   - Unknown, written with its own tag
//   - Item, copied verbatim
//
// Anything else fails with ErrUnsupportedValue.
func Marshal(v any, opts ...EncoderOption) ([]byte, error) {
	enc := NewEncoder(opts...)
	defer enc.Close()
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return enc.Finalize()
}

// Encode writes v as described for Marshal. Since part of v may already be
// written when an error is detected, any failure leaves the encoder in its
// failed state.
func (e *Encoder) Encode(v any) error {
	if err := e.check(); err != nil {
		return err
	}
	if err := e.encodeValue(v, 0); err != nil {
		if e.state == stateBuilding {
			e.fail(err)
		}
		return err
	}
	return nil
}

func (e *Encoder) encodeValue(v any, depth int) error {
	switch x := v.(type) {
	case nil:
		return e.WriteNull()
	case bool:
		return e.WriteBool(x)
	case int:
		return e.WriteInt(int64(x))
	case int8:
		return e.WriteInt(int64(x))
	case int16:
		return e.WriteInt(int64(x))
	case int32:
		return e.WriteInt(int64(x))
	case int64:
		return e.WriteInt(x)
	case uint:
		return e.encodeUint(uint64(x))
	case uint8:
		return e.WriteInt(int64(x))
	case uint16:
		return e.WriteInt(int64(x))
	case uint32:
		return e.WriteInt(int64(x))
	case uint64:
		return e.encodeUint(x)
	case []byte:
		return e.WriteBytes(x)
	case string:
		return e.WriteString(x)
	case Item:
		return e.WriteItem(x)
	case Unknown:
		if Type(x.Type).Valid() {
			return fmt.Errorf("%w: Unknown with defined tag %s", ErrUnsupportedValue, Type(x.Type))
		}
		return e.WritePrimitive(Type(x.Type), x.Data)
	case []any:
		return e.encodeList(len(x), depth, func(i int) any { return x[i] })
	case []string:
		return e.encodeList(len(x), depth, func(i int) any { return x[i] })
	case Dict:
		return e.encodeDict(len(x), depth, func(i int) (string, any) { return x[i].Key, x[i].Value })
	case map[string]any:
		keys := sortedKeys(x)
		return e.encodeDict(len(keys), depth, func(i int) (string, any) { return keys[i], x[keys[i]] })
	case map[string]string:
		keys := sortedKeys(x)
		return e.encodeDict(len(keys), depth, func(i int) (string, any) { return keys[i], x[keys[i]] })
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
}

func (e *Encoder) encodeUint(v uint64) error {
	if v > math.MaxInt64 {
		return fmt.Errorf("%w: %d overflows int64", ErrUnsupportedValue, v)
	}
	return e.WriteInt(int64(v))
}

func (e *Encoder) enter(depth int) error {
	if depth >= e.limits.MaxDepth {
		return fmt.Errorf("%w: nesting deeper than %d", ErrLimitExceeded, e.limits.MaxDepth)
	}
	return nil
}

func (e *Encoder) encodeList(n, depth int, at func(int) any) error {
	if err := e.enter(depth); err != nil {
		return err
	}
	if err := e.StartList(); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := e.encodeValue(at(i), depth+1); err != nil {
			return err
		}
	}
	return e.End()
}

func (e *Encoder) encodeDict(n, depth int, at func(int) (string, any)) error {
	if err := e.enter(depth); err != nil {
		return err
	}
	if err := e.StartDict(); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		k, v := at(i)
		if err := e.WriteString(k); err != nil {
			return err
		}
		if err := e.encodeValue(v, depth+1); err != nil {
			return err
		}
	}
	return e.End()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
