package convert

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/logicossoftware/go-smoltlv"
)

// FromYAML parses the first document of data. Mapping order is preserved.
// Integers, booleans, nulls and strings map to their SmolTLV types and
// !!binary scalars become bytes; floats and other tags are rejected.
func FromYAML(data []byte) (any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode YAML: %v", smoltlv.ErrInvalidArgument, err)
	}
	if doc.Kind == 0 {
		return nil, fmt.Errorf("%w: empty YAML input", smoltlv.ErrInvalidArgument)
	}
	return yamlValue(&doc)
}

func yamlValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return yamlValue(n.Content[0])
	case yaml.AliasNode:
		return yamlValue(n.Alias)
	case yaml.SequenceNode:
		list := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := yamlValue(c)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	case yaml.MappingNode:
		dict := make(smoltlv.Dict, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			if k.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("%w: line %d: mapping key is not a scalar", smoltlv.ErrUnsupportedValue, k.Line)
			}
			v, err := yamlValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			dict = append(dict, smoltlv.DictEntry{Key: k.Value, Value: v})
		}
		return dict, nil
	case yaml.ScalarNode:
		return yamlScalar(n)
	}
	return nil, fmt.Errorf("%w: YAML node kind %d", smoltlv.ErrUnsupportedValue, n.Kind)
}

func yamlScalar(n *yaml.Node) (any, error) {
	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", smoltlv.ErrInvalidArgument, n.Line, err)
		}
		return b, nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", smoltlv.ErrUnsupportedValue, n.Line, err)
		}
		return i, nil
	case "!!binary":
		b, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(n.Value), ""))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", smoltlv.ErrInvalidArgument, n.Line, err)
		}
		return b, nil
	case "!!str":
		return n.Value, nil
	}
	return nil, fmt.Errorf("%w: line %d: YAML %s scalar", smoltlv.ErrUnsupportedValue, n.Line, n.ShortTag())
}

func scalarNode(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func yamlNode(v any) (*yaml.Node, error) {
	switch x := v.(type) {
	case nil:
		return scalarNode("!!null", "null"), nil
	case bool:
		return scalarNode("!!bool", strconv.FormatBool(x)), nil
	case int64:
		return scalarNode("!!int", strconv.FormatInt(x, 10)), nil
	case string:
		return scalarNode("!!str", x), nil
	case []byte:
		return scalarNode("!!binary", base64.StdEncoding.EncodeToString(x)), nil
	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range x {
			c, err := yamlNode(e)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, c)
		}
		return n, nil
	case smoltlv.Dict:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, e := range x {
			c, err := yamlNode(e.Value)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, scalarNode("!!str", e.Key), c)
		}
		return n, nil
	case smoltlv.Unknown:
		return nil, fmt.Errorf("%w: type tag 0x%02x has no YAML form", smoltlv.ErrUnsupportedValue, x.Type)
	}
	return nil, fmt.Errorf("%w: %T", smoltlv.ErrUnsupportedValue, v)
}

// ToYAML renders v as a YAML document with two-space indentation.
func ToYAML(v any) ([]byte, error) {
	n, err := yamlNode(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(n); err != nil {
		return nil, fmt.Errorf("encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode YAML: %w", err)
	}
	return buf.Bytes(), nil
}
