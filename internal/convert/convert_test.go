package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logicossoftware/go-smoltlv"
)

func sample() smoltlv.Dict {
	return smoltlv.Dict{
		{Key: "name", Value: "smol"},
		{Key: "age", Value: int64(30)},
		{Key: "ok", Value: true},
		{Key: "nothing", Value: nil},
		{Key: "blob", Value: []byte{0x00, 0x01, 0xFE}},
		{Key: "list", Value: []any{int64(-1), "x", []any{}}},
		{Key: "nested", Value: smoltlv.Dict{{Key: "z", Value: int64(1)}, {Key: "a", Value: int64(2)}}},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", JSON, false},
		{"JSONC", JSON, false},
		{"yml", YAML, false},
		{"yaml", YAML, false},
		{"cbor", CBOR, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, smoltlv.ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, YAML, FormatFromPath("doc.yml", JSON))
	assert.Equal(t, CBOR, FormatFromPath("/tmp/x.cbor", JSON))
	assert.Equal(t, JSON, FormatFromPath("noext", JSON))
}

func TestJSONKeepsOrderAndTypes(t *testing.T) {
	v := sample()
	out, err := ToJSON(v, true)
	require.NoError(t, err)
	assert.Equal(t,
		`{"name":"smol","age":30,"ok":true,"nothing":null,"blob":{"$bytes":"AAH+"},"list":[-1,"x",[]],"nested":{"z":1,"a":2}}`+"\n",
		string(out))

	back, err := FromJSON(out)
	require.NoError(t, err)
	assert.Equal(t, v, back)

	pretty, err := ToJSON(v, false)
	require.NoError(t, err)
	assert.Contains(t, string(pretty), "\n  \"name\": \"smol\",\n")
}

func TestJSONInput(t *testing.T) {
	v, err := FromJSON([]byte(`{
		// comment
		"a": [1, 2,],
		"a": "dup",
	}`))
	require.NoError(t, err)
	assert.Equal(t, smoltlv.Dict{
		{Key: "a", Value: []any{int64(1), int64(2)}},
		{Key: "a", Value: "dup"},
	}, v)

	_, err = FromJSON([]byte(`1.5`))
	assert.ErrorIs(t, err, smoltlv.ErrUnsupportedValue)
	_, err = FromJSON([]byte(`18446744073709551615`))
	assert.ErrorIs(t, err, smoltlv.ErrUnsupportedValue)
	_, err = FromJSON([]byte(`1 2`))
	assert.ErrorIs(t, err, smoltlv.ErrInvalidArgument)
	_, err = FromJSON([]byte(`  `))
	assert.ErrorIs(t, err, smoltlv.ErrInvalidArgument)
	_, err = FromJSON([]byte(`{"$bytes": "!!"}`))
	assert.ErrorIs(t, err, smoltlv.ErrInvalidArgument)
}

func TestJSONTaggedObjects(t *testing.T) {
	unknown := smoltlv.Unknown{Type: 0x20, Data: []byte("hi")}
	out, err := ToJSON(unknown, true)
	require.NoError(t, err)
	assert.Equal(t, `{"$type":32,"$data":"aGk="}`+"\n", string(out))
	back, err := FromJSON(out)
	require.NoError(t, err)
	assert.Equal(t, unknown, back)

	// A defined tag is not an Unknown; the object stays a dict.
	v, err := FromJSON([]byte(`{"$type": 3, "$data": ""}`))
	require.NoError(t, err)
	assert.IsType(t, smoltlv.Dict{}, v)

	v, err = FromJSON([]byte(`{"$bytes": 1}`))
	require.NoError(t, err)
	assert.Equal(t, smoltlv.Dict{{Key: "$bytes", Value: int64(1)}}, v)
}

func TestJSONEscapesTagShapedDicts(t *testing.T) {
	tests := []struct {
		name string
		in   smoltlv.Dict
		want string
	}{
		{"bytes key", smoltlv.Dict{{Key: "$bytes", Value: "AAH+"}}, `{"$dict":{"$bytes":"AAH+"}}`},
		{"type and data keys", smoltlv.Dict{{Key: "$type", Value: int64(32)}, {Key: "$data", Value: "aGk="}}, `{"$dict":{"$type":32,"$data":"aGk="}}`},
		{"dict key", smoltlv.Dict{{Key: "$dict", Value: smoltlv.Dict{}}}, `{"$dict":{"$dict":{}}}`},
		{"bytes value", smoltlv.Dict{{Key: "$bytes", Value: []byte{1}}}, `{"$dict":{"$bytes":{"$bytes":"AQ=="}}}`},
		{"ordinary keys", smoltlv.Dict{{Key: "$bytes", Value: "x"}, {Key: "k", Value: "y"}}, `{"$bytes":"x","k":"y"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ToJSON(tt.in, true)
			require.NoError(t, err)
			assert.Equal(t, tt.want+"\n", string(out))
			back, err := FromJSON(out)
			require.NoError(t, err)
			assert.Equal(t, tt.in, back)
		})
	}

	// A "$dict" key followed by other keys is an ordinary entry.
	v, err := FromJSON([]byte(`{"$dict": {"$bytes": "AQ=="}, "k": 1}`))
	require.NoError(t, err)
	assert.Equal(t, smoltlv.Dict{{Key: "$dict", Value: []byte{1}}, {Key: "k", Value: int64(1)}}, v)
}

func TestYAMLRoundTrip(t *testing.T) {
	v := sample()
	out, err := ToYAML(v)
	require.NoError(t, err)
	back, err := FromYAML(out)
	require.NoError(t, err)
	assert.Equal(t, v, back)
}

func TestYAMLInput(t *testing.T) {
	v, err := FromYAML([]byte(`
base: &b
  k: 1
copy: *b
s: "true"
n: ~
bin: !!binary AAH+
`))
	require.NoError(t, err)
	assert.Equal(t, smoltlv.Dict{
		{Key: "base", Value: smoltlv.Dict{{Key: "k", Value: int64(1)}}},
		{Key: "copy", Value: smoltlv.Dict{{Key: "k", Value: int64(1)}}},
		{Key: "s", Value: "true"},
		{Key: "n", Value: nil},
		{Key: "bin", Value: []byte{0x00, 0x01, 0xFE}},
	}, v)

	_, err = FromYAML([]byte(`x: 1.5`))
	assert.ErrorIs(t, err, smoltlv.ErrUnsupportedValue)
	_, err = FromYAML([]byte(`? [a]
: 1`))
	assert.ErrorIs(t, err, smoltlv.ErrUnsupportedValue)
	_, err = FromYAML(nil)
	assert.ErrorIs(t, err, smoltlv.ErrInvalidArgument)
	_, err = ToYAML(smoltlv.Unknown{Type: 9})
	assert.ErrorIs(t, err, smoltlv.ErrUnsupportedValue)
}

func TestCBORRoundTrip(t *testing.T) {
	out, err := ToCBOR(sample())
	require.NoError(t, err)
	back, err := FromCBOR(out)
	require.NoError(t, err)

	// CBOR output is written in deterministic order and read back sorted.
	d, ok := back.(smoltlv.Dict)
	require.True(t, ok)
	assert.Equal(t, []string{"age", "blob", "list", "name", "nested", "nothing", "ok"}, d.Keys())
	nested, _ := d.Get("nested")
	assert.Equal(t, smoltlv.Dict{{Key: "a", Value: int64(2)}, {Key: "z", Value: int64(1)}}, nested)
	blob, _ := d.Get("blob")
	assert.Equal(t, []byte{0x00, 0x01, 0xFE}, blob)
}

func TestCBORRejects(t *testing.T) {
	// {1: 2}
	_, err := FromCBOR([]byte{0xA1, 0x01, 0x02})
	assert.ErrorIs(t, err, smoltlv.ErrUnsupportedValue)
	// 1.5 as a half-precision float
	_, err = FromCBOR([]byte{0xF9, 0x3E, 0x00})
	assert.ErrorIs(t, err, smoltlv.ErrUnsupportedValue)
	// 2^64-1
	_, err = FromCBOR([]byte{0x1B, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF})
	assert.ErrorIs(t, err, smoltlv.ErrUnsupportedValue)
	_, err = FromCBOR([]byte{0xFF})
	assert.ErrorIs(t, err, smoltlv.ErrInvalidArgument)
	_, err = ToCBOR([]any{smoltlv.Unknown{Type: 9}})
	assert.ErrorIs(t, err, smoltlv.ErrUnsupportedValue)
}

func TestCBORDuplicateKeysKeepFirst(t *testing.T) {
	out, err := ToCBOR(smoltlv.Dict{{Key: "k", Value: int64(1)}, {Key: "k", Value: int64(2)}})
	require.NoError(t, err)
	back, err := FromCBOR(out)
	require.NoError(t, err)
	assert.Equal(t, smoltlv.Dict{{Key: "k", Value: int64(1)}}, back)
}

func TestSmolTLVRoundTripThroughJSON(t *testing.T) {
	doc, err := smoltlv.Marshal(sample())
	require.NoError(t, err)
	v, err := smoltlv.Unmarshal(doc)
	require.NoError(t, err)
	js, err := Encode(JSON, v, true)
	require.NoError(t, err)
	back, err := Decode(JSON, js)
	require.NoError(t, err)
	again, err := smoltlv.Marshal(back)
	require.NoError(t, err)
	assert.Equal(t, doc, again)
}
