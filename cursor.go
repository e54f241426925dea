package smoltlv

import (
	"errors"
	"fmt"
	"iter"
)

// Cursor walks a byte range item by item. It owns no memory: every Item it
// returns is a view into the buffer the cursor was created over.
//
// The zero Cursor is an empty range; its first Next returns ErrEnd.
type Cursor struct {
	buf []byte
	pos int
}

// NewCursor returns a cursor positioned at the start of b.
func NewCursor(b []byte) Cursor {
	return Cursor{buf: b}
}

// ForItem returns a cursor over the value bytes of item. For a List or
// Dict this yields the children in order. Other item types are accepted;
// callers are expected to check Item.IsContainer first. A zero Item
// yields an empty cursor.
func ForItem(item Item) Cursor {
	if item.raw == nil {
		return Cursor{}
	}
	return Cursor{buf: item.raw[HeaderSize:]}
}

// Next decodes the item at the current position and advances past it.
//
// Next returns ErrEnd once the range is exhausted and keeps returning it.
// ErrNeedMoreData means the buffer ends inside a header or a value; the
// position is not advanced, so the caller can Refill and retry.
// ErrInvalidFormat reports a header that violates a per-type length rule.
// Failed calls never move the cursor.
func (c *Cursor) Next() (Item, error) {
	if c == nil {
		return Item{}, ErrInvalidArgument
	}
	rem := 0
	if len(c.buf) > c.pos {
		rem = len(c.buf) - c.pos
	}
	if rem == 0 {
		return Item{}, ErrEnd
	}
	if rem < HeaderSize {
		return Item{}, ErrNeedMoreData
	}

	p := c.buf[c.pos:]
	h := readHeader(p)
	if h.Length > MaxLength {
		return Item{}, fmt.Errorf("%w: length %d at offset %d", ErrInvalidFormat, h.Length, c.pos)
	}
	if err := Type(h.Tag).checkLength(h.Length); err != nil {
		return Item{}, fmt.Errorf("%w at offset %d", err, c.pos)
	}
	n := HeaderSize + int(h.Length)
	if rem < n {
		return Item{}, ErrNeedMoreData
	}

	c.pos += n
	return Item{raw: p[:n:n]}, nil
}

// AtEnd reports whether every byte of the range has been consumed.
func (c *Cursor) AtEnd() bool {
	return c.pos >= len(c.buf)
}

// Position returns the offset of the next item within the range.
func (c *Cursor) Position() int { return c.pos }

// Remaining returns the number of unconsumed bytes.
func (c *Cursor) Remaining() int {
	if c.pos >= len(c.buf) {
		return 0
	}
	return len(c.buf) - c.pos
}

// Rest returns the unconsumed bytes.
func (c *Cursor) Rest() []byte {
	if c.pos >= len(c.buf) {
		return nil
	}
	return c.buf[c.pos:]
}

// Refill swaps in a longer buffer after Next reported ErrNeedMoreData.
// b must start with the bytes the cursor has already seen; the position is
// kept, so decoding resumes at the item that was truncated.
func (c *Cursor) Refill(b []byte) error {
	if len(b) < c.pos {
		return fmt.Errorf("%w: refill of %d bytes is shorter than position %d", ErrInvalidArgument, len(b), c.pos)
	}
	c.buf = b
	return nil
}

// All returns an iterator over the items from the current position onward.
// Iteration works on a copy, so c itself is not advanced and the sequence
// can be ranged over any number of times. A decode error is yielded once
// and ends the sequence; ErrEnd is never yielded.
func (c Cursor) All() iter.Seq2[Item, error] {
	return func(yield func(Item, error) bool) {
		cur := c
		for {
			item, err := cur.Next()
			if errors.Is(err, ErrEnd) {
				return
			}
			if !yield(item, err) || err != nil {
				return
			}
		}
	}
}
