package convert

import (
	"fmt"
	"math"
	"sort"

	"github.com/fxamacker/cbor/v2"

	"github.com/logicossoftware/go-smoltlv"
)

var (
	cborEncMode cbor.EncMode
	cborDecMode cbor.DecMode
)

func init() {
	var err error
	cborEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("convert: CBOR encoder initialization failed: " + err.Error())
	}
	// Default map type stays map[any]any so non-string keys are reported
	// instead of failing inside the decoder.
	cborDecMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("convert: CBOR decoder initialization failed: " + err.Error())
	}
}

// FromCBOR decodes a single CBOR data item. Map keys must be text strings;
// floats, tags and integers outside the int64 range are rejected.
func FromCBOR(data []byte) (any, error) {
	var v any
	if err := cborDecMode.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: decode CBOR: %v", smoltlv.ErrInvalidArgument, err)
	}
	return cborValue(v)
}

func cborValue(v any) (any, error) {
	switch x := v.(type) {
	case nil, bool, string, []byte, int64:
		return x, nil
	case uint64:
		if x > math.MaxInt64 {
			return nil, fmt.Errorf("%w: CBOR integer %d overflows int64", smoltlv.ErrUnsupportedValue, x)
		}
		return int64(x), nil
	case []any:
		list := make([]any, len(x))
		for i, e := range x {
			c, err := cborValue(e)
			if err != nil {
				return nil, err
			}
			list[i] = c
		}
		return list, nil
	case map[any]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			s, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("%w: CBOR map key of type %T", smoltlv.ErrUnsupportedValue, k)
			}
			keys = append(keys, s)
		}
		sort.Strings(keys)
		dict := make(smoltlv.Dict, 0, len(keys))
		for _, k := range keys {
			c, err := cborValue(x[k])
			if err != nil {
				return nil, err
			}
			dict = append(dict, smoltlv.DictEntry{Key: k, Value: c})
		}
		return dict, nil
	}
	return nil, fmt.Errorf("%w: CBOR value of type %T", smoltlv.ErrUnsupportedValue, v)
}

func cborOut(v any) (any, error) {
	switch x := v.(type) {
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			c, err := cborOut(e)
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil
	case smoltlv.Dict:
		// CBOR maps cannot repeat a key; the first entry wins, as in Dict.Get.
		m := make(map[string]any, len(x))
		for _, e := range x {
			if _, dup := m[e.Key]; dup {
				continue
			}
			c, err := cborOut(e.Value)
			if err != nil {
				return nil, err
			}
			m[e.Key] = c
		}
		return m, nil
	case smoltlv.Unknown:
		return nil, fmt.Errorf("%w: type tag 0x%02x has no CBOR form", smoltlv.ErrUnsupportedValue, x.Type)
	}
	return v, nil
}

// ToCBOR renders v with Core Deterministic Encoding.
func ToCBOR(v any) ([]byte, error) {
	out, err := cborOut(v)
	if err != nil {
		return nil, err
	}
	b, err := cborEncMode.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode CBOR: %w", err)
	}
	return b, nil
}
