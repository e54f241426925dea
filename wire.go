package smoltlv

import (
	"encoding/binary"
	"fmt"
	"io"
)

// itemHeader is the decoded form of the 4-byte item header.
type itemHeader struct {
	Tag    uint8
	Length uint32
}

func readLength(b []byte) uint32 {
	return uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// readHeader decodes the item header at the start of b.
// b must hold at least HeaderSize bytes.
func readHeader(b []byte) itemHeader {
	return itemHeader{Tag: b[0], Length: readLength(b)}
}

// putHeader writes the item header for (t, length) into dst[0:4].
func putHeader(dst []byte, t Type, length uint32) error {
	if length > MaxLength {
		return fmt.Errorf("%w: length %d exceeds %d", ErrInvalidArgument, length, MaxLength)
	}
	dst[0] = byte(t)
	patchLength(dst, length)
	return nil
}

// patchLength rewrites the length bytes of the header at dst, leaving the
// type tag alone.
func patchLength(dst []byte, length uint32) {
	dst[1] = byte(length >> 16)
	dst[2] = byte(length >> 8)
	dst[3] = byte(length)
}

const envelopeHeaderSize = 16

// EnvelopeMagic is the 4-byte envelope signature.
var EnvelopeMagic = [4]byte{'S', 'T', 'L', 'V'}

const (
	// EnvelopeVersionV1 is the only envelope version this package writes.
	EnvelopeVersionV1 uint16 = 1

	envelopeFlagCompressionMask    uint16 = 0x000F
	envelopeFlagHasUncompressedLen uint16 = 0x0010
	envelopeFlagHasChecksum        uint16 = 0x0020
	envelopeFlagKnown                     = envelopeFlagCompressionMask | envelopeFlagHasUncompressedLen | envelopeFlagHasChecksum
)

type envelopeHeaderV1 struct {
	Magic      [4]byte
	Version    uint16
	Flags      uint16
	PayloadLen uint32
	Reserved   uint32
}

func readEnvelopeHeader(r io.Reader) (envelopeHeaderV1, error) {
	var buf [envelopeHeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return envelopeHeaderV1{}, err
	}
	var h envelopeHeaderV1
	copy(h.Magic[:], buf[0:4])
	h.Version = binary.BigEndian.Uint16(buf[4:6])
	h.Flags = binary.BigEndian.Uint16(buf[6:8])
	h.PayloadLen = binary.BigEndian.Uint32(buf[8:12])
	h.Reserved = binary.BigEndian.Uint32(buf[12:16])
	return h, nil
}

func writeEnvelopeHeader(w io.Writer, h envelopeHeaderV1) error {
	var buf [envelopeHeaderSize]byte
	copy(buf[0:4], h.Magic[:])
	binary.BigEndian.PutUint16(buf[4:6], h.Version)
	binary.BigEndian.PutUint16(buf[6:8], h.Flags)
	binary.BigEndian.PutUint32(buf[8:12], h.PayloadLen)
	binary.BigEndian.PutUint32(buf[12:16], h.Reserved)
	_, err := w.Write(buf[:])
	return err
}

func (h envelopeHeaderV1) compression() Compression {
	return Compression(h.Flags & envelopeFlagCompressionMask)
}

func (h envelopeHeaderV1) hasUncompressedLen() bool {
	return (h.Flags & envelopeFlagHasUncompressedLen) != 0
}

func (h envelopeHeaderV1) hasChecksum() bool {
	return (h.Flags & envelopeFlagHasChecksum) != 0
}

func validateEnvelopeHeader(h envelopeHeaderV1) error {
	if h.Magic != EnvelopeMagic {
		return ErrInvalidMagic
	}
	if h.Version != EnvelopeVersionV1 {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	if h.Reserved != 0 {
		return fmt.Errorf("%w: reserved must be 0", ErrInvalidEnvelope)
	}
	if h.Flags&^envelopeFlagKnown != 0 {
		return fmt.Errorf("%w: unknown flags 0x%04x", ErrInvalidEnvelope, h.Flags&^envelopeFlagKnown)
	}
	comp := h.compression()
	switch comp {
	case CompNone, CompZIP, CompZSTD, CompLZ4, CompBR:
	default:
		return fmt.Errorf("%w: unknown compression %d", ErrInvalidEnvelope, comp)
	}
	if comp == CompNone {
		if h.hasUncompressedLen() {
			return fmt.Errorf("%w: COMP_NONE must not set HAS_UNCOMPRESSED_LEN", ErrInvalidEnvelope)
		}
	} else if !h.hasUncompressedLen() {
		return fmt.Errorf("%w: compressed payload must set HAS_UNCOMPRESSED_LEN", ErrInvalidEnvelope)
	}
	return nil
}
