// Package convert translates SmolTLV values to and from JSON, YAML and CBOR.
//
// Values are the Go values produced by smoltlv.Unmarshal: nil, bool, int64,
// []byte, string, []any, smoltlv.Dict and smoltlv.Unknown. Dict key order is
// kept for JSON and YAML. CBOR maps carry no order, so CBOR input is read
// with sorted keys and CBOR output is written in deterministic key order.
package convert

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/logicossoftware/go-smoltlv"
)

type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
	CBOR Format = "cbor"
)

// ParseFormat accepts a format name, ignoring case. "yml" and "jsonc" are
// accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json", "jsonc":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "cbor":
		return CBOR, nil
	}
	return "", fmt.Errorf("%w: unknown format %q", smoltlv.ErrInvalidArgument, s)
}

// FormatFromPath guesses a format from the extension of path.
func FormatFromPath(path string, fallback Format) Format {
	if f, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), ".")); err == nil {
		return f
	}
	return fallback
}

// Decode parses data in format f into a SmolTLV value.
func Decode(f Format, data []byte) (any, error) {
	switch f {
	case JSON:
		return FromJSON(data)
	case YAML:
		return FromYAML(data)
	case CBOR:
		return FromCBOR(data)
	}
	return nil, fmt.Errorf("%w: unknown format %q", smoltlv.ErrInvalidArgument, f)
}

// Encode renders the SmolTLV value v in format f. compact only affects JSON.
func Encode(f Format, v any, compact bool) ([]byte, error) {
	switch f {
	case JSON:
		return ToJSON(v, compact)
	case YAML:
		return ToYAML(v)
	case CBOR:
		return ToCBOR(v)
	}
	return nil, fmt.Errorf("%w: unknown format %q", smoltlv.ErrInvalidArgument, f)
}
