package convert

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/tidwall/jsonc"

	"github.com/logicossoftware/go-smoltlv"
)

// JSON has no byte strings and no way to carry undefined type tags, so both
// are written as tagged objects:
//
//	{"$bytes": "<base64>"}
//	{"$type": 32, "$data": "<base64>"}
//
// FromJSON turns objects of exactly that shape back into []byte and
// smoltlv.Unknown. A dict that happens to have one of these shapes is
// written wrapped as {"$dict": {...}}, and its contents are read back
// verbatim.
const (
	bytesKey = "$bytes"
	typeKey  = "$type"
	dataKey  = "$data"
	dictKey  = "$dict"
)

// FromJSON parses a single JSON value. Comments and trailing commas are
// accepted. Numbers must be integers that fit in an int64; object key order
// and duplicate keys are preserved.
func FromJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	dec.UseNumber()
	v, err := readJSONValue(dec, false)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty JSON input", smoltlv.ErrInvalidArgument)
		}
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after JSON value", smoltlv.ErrInvalidArgument)
	}
	return v, nil
}

// readJSONValue reads one value. With verbatim set, an object is returned
// as a dict without untagging.
func readJSONValue(dec *json.Decoder, verbatim bool) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '[':
			list := []any{}
			for dec.More() {
				v, err := readJSONValue(dec, false)
				if err != nil {
					return nil, err
				}
				list = append(list, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return list, nil
		case '{':
			dict := smoltlv.Dict{}
			escaped := false
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := kt.(string)
				if !ok {
					return nil, fmt.Errorf("%w: object key %v", smoltlv.ErrInvalidArgument, kt)
				}
				first := len(dict) == 0 && key == dictKey
				v, err := readJSONValue(dec, first)
				if err != nil {
					return nil, err
				}
				if first {
					_, escaped = v.(smoltlv.Dict)
				}
				dict = append(dict, smoltlv.DictEntry{Key: key, Value: v})
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			if verbatim {
				return dict, nil
			}
			if escaped {
				if len(dict) == 1 {
					return dict[0].Value, nil
				}
				// Not an escape after all: untag the inner object normally.
				inner, err := untag(dict[0].Value.(smoltlv.Dict))
				if err != nil {
					return nil, err
				}
				dict[0].Value = inner
			}
			return untag(dict)
		}
		return nil, fmt.Errorf("%w: unexpected %v", smoltlv.ErrInvalidArgument, t)
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return nil, fmt.Errorf("%w: number %s is not a 64-bit integer", smoltlv.ErrUnsupportedValue, t)
		}
		return n, nil
	case string, bool, nil:
		return t, nil
	}
	return nil, fmt.Errorf("%w: unexpected JSON token %v", smoltlv.ErrInvalidArgument, tok)
}

func untag(d smoltlv.Dict) (any, error) {
	switch {
	case len(d) == 1 && d[0].Key == bytesKey:
		s, ok := d[0].Value.(string)
		if !ok {
			return d, nil
		}
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", smoltlv.ErrInvalidArgument, bytesKey, err)
		}
		return b, nil
	case len(d) == 2 && d[0].Key == typeKey && d[1].Key == dataKey:
		tag, ok := d[0].Value.(int64)
		s, isStr := d[1].Value.(string)
		if !ok || !isStr || tag < 0 || tag > 0xFF || smoltlv.Type(tag).Valid() {
			return d, nil
		}
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", smoltlv.ErrInvalidArgument, dataKey, err)
		}
		return smoltlv.Unknown{Type: byte(tag), Data: b}, nil
	}
	return d, nil
}

// reservedShape reports whether d would be read back as a tagged object or
// an escape.
func reservedShape(d smoltlv.Dict) bool {
	switch len(d) {
	case 1:
		return d[0].Key == bytesKey || d[0].Key == dictKey
	case 2:
		return d[0].Key == typeKey && d[1].Key == dataKey
	}
	return false
}

// orderedObject marshals as a JSON object with its keys in slice order.
type orderedObject smoltlv.Dict

func (o orderedObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func jsonValue(v any) any {
	switch x := v.(type) {
	case smoltlv.Dict:
		o := make(orderedObject, len(x))
		for i, e := range x {
			o[i] = smoltlv.DictEntry{Key: e.Key, Value: jsonValue(e.Value)}
		}
		if reservedShape(x) {
			return orderedObject{{Key: dictKey, Value: o}}
		}
		return o
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = jsonValue(e)
		}
		return out
	case []byte:
		return orderedObject{{Key: bytesKey, Value: base64.StdEncoding.EncodeToString(x)}}
	case smoltlv.Unknown:
		return orderedObject{
			{Key: typeKey, Value: int64(x.Type)},
			{Key: dataKey, Value: base64.StdEncoding.EncodeToString(x.Data)},
		}
	}
	return v
}

// ToJSON renders v as JSON followed by a newline. Unless compact is set
// the output is indented by two spaces.
func ToJSON(v any, compact bool) ([]byte, error) {
	var (
		out []byte
		err error
	)
	if compact {
		out, err = json.Marshal(jsonValue(v))
	} else {
		out, err = json.MarshalIndent(jsonValue(v), "", "  ")
	}
	if err != nil {
		return nil, fmt.Errorf("encode JSON: %w", err)
	}
	return append(out, '\n'), nil
}
