package smoltlv

var (
	vecNull      = []byte{0x00, 0x00, 0x00, 0x00}
	vecTrue      = []byte{0x01, 0x00, 0x00, 0x00}
	vecFalse     = []byte{0x02, 0x00, 0x00, 0x00}
	vecInt42     = []byte{0x03, 0x00, 0x00, 0x08, 0, 0, 0, 0, 0, 0, 0, 0x2A}
	vecIntNeg42  = []byte{0x03, 0x00, 0x00, 0x08, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xD6}
	vecBytesHi   = []byte{0x04, 0x00, 0x00, 0x02, 'h', 'i'}
	vecStringHey = []byte{0x05, 0x00, 0x00, 0x03, 'h', 'e', 'y'}

	vecList = []byte{
		0x06, 0x00, 0x00, 0x14,
		0x01, 0x00, 0x00, 0x00,
		0x02, 0x00, 0x00, 0x00,
		0x03, 0x00, 0x00, 0x08,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x2A,
	}

	vecDict = []byte{
		0x07, 0x00, 0x00, 0x24,
		0x05, 0x00, 0x00, 0x03, 'a', 'g', 'e',
		0x03, 0x00, 0x00, 0x08, 0, 0, 0, 0, 0, 0, 0, 0x1E,
		0x05, 0x00, 0x00, 0x04, 'n', 'a', 'm', 'e',
		0x05, 0x00, 0x00, 0x05, 'A', 'l', 'i', 'c', 'e',
	}

	// list [1, 2] as produced by StartList, WriteInt(1), WriteInt(2), End.
	vecListOneTwo = []byte{
		0x06, 0x00, 0x00, 0x10,
		0x03, 0x00, 0x00, 0x08, 0, 0, 0, 0, 0, 0, 0, 1,
		0x03, 0x00, 0x00, 0x08, 0, 0, 0, 0, 0, 0, 0, 2,
	}
)

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// container wraps already-encoded children in a list or dict header.
func container(t Type, children ...[]byte) []byte {
	body := concat(children...)
	h := make([]byte, HeaderSize)
	if err := putHeader(h, t, uint32(len(body))); err != nil {
		panic(err)
	}
	return append(h, body...)
}

func str(s string) []byte {
	h := make([]byte, HeaderSize)
	if err := putHeader(h, TypeString, uint32(len(s))); err != nil {
		panic(err)
	}
	return append(h, s...)
}
