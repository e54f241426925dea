package smoltlv

import (
	"crypto/subtle"
	"fmt"
	"io"
	"math"

	"github.com/zeebo/blake3"
	"go.uber.org/zap"
)

const checksumSize = 32

// Pack writes doc to w inside an envelope.
//
// An envelope is a 16-byte big-endian header followed by the payload and,
// optionally, a BLAKE3 digest of the uncompressed document:
//
//	magic "STLV" | version u16 | flags u16 | payload_len u32 | reserved u32
//
// The low four flag bits select the compression. Compressed payloads begin
// with the 8-byte uncompressed length. The format of doc itself is never
// changed; the envelope only exists for storing and moving documents
// between hosts.
//
// By default, Pack validates doc, compresses with CompZSTD and appends a
// checksum.
func Pack(w io.Writer, doc []byte, opts ...EnvelopeOption) error {
	cfg := newEnvelopeConfig(opts)
	if len(doc) > cfg.limits.MaxDocumentSize {
		return fmt.Errorf("%w: document of %d bytes", ErrLimitExceeded, len(doc))
	}
	if cfg.validate {
		if err := Validate(doc, cfg.documentOptions()...); err != nil {
			return err
		}
	}

	flags, payload, err := compressPayload(cfg.compression, doc)
	if err != nil {
		return err
	}
	if uint64(len(payload)) > math.MaxUint32 || uint32(len(payload)) > cfg.limits.MaxEnvelopePayload {
		return fmt.Errorf("%w: payload of %d bytes", ErrLimitExceeded, len(payload))
	}
	if cfg.checksum {
		flags |= envelopeFlagHasChecksum
	}

	h := envelopeHeaderV1{
		Magic:      EnvelopeMagic,
		Version:    EnvelopeVersionV1,
		Flags:      flags,
		PayloadLen: uint32(len(payload)),
	}
	if err := writeEnvelopeHeader(w, h); err != nil {
		return err
	}
	if _, err := w.Write(payload); err != nil {
		return err
	}
	if cfg.checksum {
		sum := blake3.Sum256(doc)
		if _, err := w.Write(sum[:]); err != nil {
			return err
		}
	}
	Logger().Debug("smoltlv envelope packed",
		zap.Stringer("compression", cfg.compression),
		zap.Int("document_bytes", len(doc)),
		zap.Int("payload_bytes", len(payload)),
		zap.Bool("checksum", cfg.checksum))
	return nil
}

// Unpack reads one envelope from r and returns the document inside it.
//
// Unpack returns ErrInvalidMagic if r does not start with an envelope,
// ErrUnsupportedVersion for a version other than 1, ErrInvalidEnvelope for a
// malformed header or payload, ErrLimitExceeded if a size limit is exceeded
// and ErrChecksum if the stored digest does not match. Unless disabled with
// WithValidate(false), the document is also checked with Validate.
func Unpack(r io.Reader, opts ...EnvelopeOption) ([]byte, error) {
	cfg := newEnvelopeConfig(opts)

	h, err := readEnvelopeHeader(r)
	if err != nil {
		return nil, err
	}
	if err := validateEnvelopeHeader(h); err != nil {
		return nil, err
	}
	if h.PayloadLen > cfg.limits.MaxEnvelopePayload {
		return nil, fmt.Errorf("%w: payload of %d bytes", ErrLimitExceeded, h.PayloadLen)
	}
	payload := make([]byte, h.PayloadLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	doc, err := decompressPayload(h.compression(), h.Flags, payload, uint64(cfg.limits.MaxDocumentSize))
	if err != nil {
		return nil, err
	}
	if h.hasChecksum() {
		var stored [checksumSize]byte
		if _, err := io.ReadFull(r, stored[:]); err != nil {
			return nil, err
		}
		computed := blake3.Sum256(doc)
		if subtle.ConstantTimeCompare(computed[:], stored[:]) != 1 {
			return nil, ErrChecksum
		}
	}
	if cfg.validate {
		if err := Validate(doc, cfg.documentOptions()...); err != nil {
			return nil, err
		}
	}
	Logger().Debug("smoltlv envelope unpacked",
		zap.Stringer("compression", h.compression()),
		zap.Int("document_bytes", len(doc)),
		zap.Uint32("payload_bytes", h.PayloadLen),
		zap.Bool("checksum", h.hasChecksum()))
	return doc, nil
}

func (c envelopeConfig) documentOptions() []DecodeOption {
	return append([]DecodeOption{WithReadLimits(c.limits)}, c.docOpts...)
}
