// Package smoltlv implements SmolTLV, a binary serialization format for a
// JSON/CBOR-like data model aimed at constrained devices.
//
// SmolTLV has no schema and no compression. Every item is a 4-byte header
// followed by its value:
//
//	byte 0      type tag (0 null, 1 true, 2 false, 3 int, 4 bytes,
//	            5 string, 6 list, 7 dict)
//	bytes 1..3  value length, big-endian, at most 0xFFFFFF
//
// Ints are 8-byte big-endian two's complement. A list's value is its
// children concatenated; a dict's value is alternating String keys and
// values, in insertion order. Container lengths count bytes, not children.
//
// # Decoding
//
// A [Cursor] walks a buffer without copying it. Each call to
// [Cursor.Next] returns an [Item] that borrows its bytes from the buffer:
//
//	c := smoltlv.NewCursor(buf)
//	for {
//		item, err := c.Next()
//		if errors.Is(err, smoltlv.ErrEnd) {
//			break
//		}
//		if err != nil {
//			return err
//		}
//		if age, ok := item.DictGet("age"); ok {
//			n, _ := age.Int()
//			fmt.Println(n)
//		}
//	}
//
// [ErrNeedMoreData] means the buffer ends inside an item. The cursor does
// not move, so a streaming reader can [Cursor.Refill] and call Next again.
// Only the item being returned is checked; nested items are checked when
// they are visited. [Validate] visits everything.
//
// # Encoding
//
// An [Encoder] appends items to a growable buffer, or to a fixed one from
// [NewFixedEncoder]. Containers are written without knowing their size in
// advance; the length is patched in by [Encoder.End]:
//
//	enc := smoltlv.NewEncoder()
//	enc.StartDict()
//	enc.WriteString("age")
//	enc.WriteInt(30)
//	enc.End()
//	buf, err := enc.Finalize()
//
// Write failures that leave the buffer inconsistent are sticky and
// resurface from Finalize. [Marshal] and [Unmarshal] convert whole Go values.
//
// # Envelopes
//
// [Pack] and [Unpack] wrap a document in an optional compressed,
// checksummed envelope for storage and transfer on larger hosts.
package smoltlv
