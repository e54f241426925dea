package smoltlv

import (
	"encoding/binary"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

type encoderState uint8

const (
	stateBuilding encoderState = iota
	stateErrored
	stateFinalized
	stateClosed
)

func (s encoderState) String() string {
	switch s {
	case stateBuilding:
		return "building"
	case stateErrored:
		return "errored"
	case stateFinalized:
		return "finalized"
	default:
		return "closed"
	}
}

// Encoder serializes items into a buffer. Containers are opened with
// StartList or StartDict and closed with End; their length is patched into
// the header when they are closed, so no size needs to be known up front.
//
// Failures that leave the buffer inconsistent (running out of room, an
// oversized value or container) are sticky: every later call returns
// ErrInvalidState wrapping the original cause, and the output can never be
// finalized. Errors that write nothing, such as an unbalanced End, are
// returned without changing state.
//
// An Encoder must not be used from several goroutines at once.
type Encoder struct {
	buf         []byte
	pos         int
	owned       bool
	alloc       Allocator
	initialSize int
	limits      Limits
	state       encoderState
	cause       error
	frames      []int
}

// NewEncoder returns an encoder that writes into a growable buffer. No
// memory is allocated until the first write.
func NewEncoder(opts ...EncoderOption) *Encoder {
	cfg := encoderConfig{limits: defaultLimits(), initialSize: defaultInitialSize}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.limits = cfg.limits.withDefaults()
	if cfg.initialSize <= 0 {
		cfg.initialSize = defaultInitialSize
	}
	if cfg.alloc == nil {
		cfg.alloc = HeapAllocator{Max: cfg.limits.MaxDocumentSize}
	}
	return &Encoder{
		owned:       true,
		alloc:       cfg.alloc,
		initialSize: cfg.initialSize,
		limits:      cfg.limits,
	}
}

// NewFixedEncoder returns an encoder that writes into buf and never grows
// it. A write that does not fit fails with ErrOutOfMemory.
func NewFixedEncoder(buf []byte) *Encoder {
	return &Encoder{buf: buf, limits: defaultLimits()}
}

// Len returns the number of bytes written so far.
func (e *Encoder) Len() int { return e.pos }

// Depth returns the number of containers that are open.
func (e *Encoder) Depth() int { return len(e.frames) }

// Err returns the error that put the encoder into its failed state, if any.
func (e *Encoder) Err() error {
	if e.state == stateErrored {
		return e.cause
	}
	return nil
}

// Buffered returns the bytes written so far. The slice aliases the encoder
// buffer and is only valid until the next write.
func (e *Encoder) Buffered() []byte {
	if e.buf == nil {
		return nil
	}
	return e.buf[:e.pos]
}

func (e *Encoder) check() error {
	switch e.state {
	case stateBuilding:
		return nil
	case stateErrored:
		return fmt.Errorf("%w: encoder failed earlier: %v", ErrInvalidState, e.cause)
	default:
		return fmt.Errorf("%w: encoder is %s", ErrInvalidState, e.state)
	}
}

// fail moves the encoder into the errored state.
func (e *Encoder) fail(err error) error {
	e.state = stateErrored
	e.cause = err
	Logger().Debug("smoltlv encoder failed",
		zap.Int("position", e.pos),
		zap.Int("depth", len(e.frames)),
		zap.Error(err))
	return err
}

// reserve makes room for n more bytes, doubling an owned buffer as often
// as needed. Growth stops at the size limit when the request fits under it.
func (e *Encoder) reserve(n int) error {
	need := e.pos + n
	if need <= len(e.buf) {
		return nil
	}
	if !e.owned {
		return e.fail(fmt.Errorf("%w: fixed buffer of %d bytes cannot hold %d", ErrOutOfMemory, len(e.buf), need))
	}
	size := len(e.buf)
	if size == 0 {
		size = e.initialSize
	}
	for size < need {
		size *= 2
	}
	if limit := e.sizeLimit(); size > limit && need <= limit {
		size = limit
	}
	var (
		b   []byte
		err error
	)
	if e.buf == nil {
		b, err = e.alloc.Alloc(size)
	} else {
		b, err = e.alloc.Grow(e.buf, size)
	}
	if err != nil {
		if !errors.Is(err, ErrOutOfMemory) {
			err = fmt.Errorf("%w: %v", ErrOutOfMemory, err)
		}
		return e.fail(err)
	}
	e.buf = b
	return nil
}

// sizeLimit is the largest buffer reserve may ask for.
func (e *Encoder) sizeLimit() int {
	limit := e.limits.MaxDocumentSize
	if h, ok := e.alloc.(HeapAllocator); ok && h.Max > 0 && h.Max < limit {
		limit = h.Max
	}
	return limit
}

// begin writes the header of a (t, n) item and returns the n-byte region
// for its value.
func (e *Encoder) begin(t Type, n int) ([]byte, error) {
	if err := e.check(); err != nil {
		return nil, err
	}
	if n > MaxLength {
		return nil, e.fail(fmt.Errorf("%w: value of %d bytes exceeds %d", ErrInvalidArgument, n, MaxLength))
	}
	if err := t.checkLength(uint32(n)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	if err := e.reserve(HeaderSize + n); err != nil {
		return nil, err
	}
	if err := putHeader(e.buf[e.pos:], t, uint32(n)); err != nil {
		return nil, e.fail(err)
	}
	start := e.pos + HeaderSize
	e.pos = start + n
	return e.buf[start:e.pos], nil
}

// WritePrimitive writes an item of type t with value v. Containers written
// this way must carry already-encoded children in v.
func (e *Encoder) WritePrimitive(t Type, v []byte) error {
	dst, err := e.begin(t, len(v))
	if err != nil {
		return err
	}
	copy(dst, v)
	return nil
}

func (e *Encoder) WriteNull() error {
	return e.WritePrimitive(TypeNull, nil)
}

func (e *Encoder) WriteBool(v bool) error {
	if v {
		return e.WritePrimitive(TypeBoolTrue, nil)
	}
	return e.WritePrimitive(TypeBoolFalse, nil)
}

func (e *Encoder) WriteInt(v int64) error {
	dst, err := e.begin(TypeInt, intLength)
	if err != nil {
		return err
	}
	binary.BigEndian.PutUint64(dst, uint64(v))
	return nil
}

func (e *Encoder) WriteBytes(v []byte) error {
	return e.WritePrimitive(TypeBytes, v)
}

// WriteString writes s as a String item. Its length is the byte length of s.
func (e *Encoder) WriteString(s string) error {
	dst, err := e.begin(TypeString, len(s))
	if err != nil {
		return err
	}
	copy(dst, s)
	return nil
}

// WriteItem copies an already-encoded item verbatim.
func (e *Encoder) WriteItem(it Item) error {
	if err := e.check(); err != nil {
		return err
	}
	if it.raw == nil {
		return fmt.Errorf("%w: zero item", ErrInvalidArgument)
	}
	if err := e.reserve(len(it.raw)); err != nil {
		return err
	}
	e.pos += copy(e.buf[e.pos:], it.raw)
	return nil
}

// StartNested opens a container of type t, which must be TypeList or
// TypeDict. Every StartNested must be matched by an End.
func (e *Encoder) StartNested(t Type) error {
	if err := e.check(); err != nil {
		return err
	}
	if !t.IsContainer() {
		return fmt.Errorf("%w: %s is not a container type", ErrInvalidArgument, t)
	}
	start := e.pos
	if _, err := e.begin(t, 0); err != nil {
		return err
	}
	e.frames = append(e.frames, start)
	return nil
}

func (e *Encoder) StartList() error { return e.StartNested(TypeList) }

func (e *Encoder) StartDict() error { return e.StartNested(TypeDict) }

// End closes the innermost open container and patches its length.
func (e *Encoder) End() error {
	if err := e.check(); err != nil {
		return err
	}
	if len(e.frames) == 0 {
		return fmt.Errorf("%w: End without an open container", ErrInvalidState)
	}
	start := e.frames[len(e.frames)-1]
	e.frames = e.frames[:len(e.frames)-1]
	length := e.pos - (start + HeaderSize)
	if length > MaxLength {
		return e.fail(fmt.Errorf("%w: container of %d bytes exceeds %d", ErrInvalidFormat, length, MaxLength))
	}
	patchLength(e.buf[start:], uint32(length))
	return nil
}

// Finalize ends encoding and returns the written bytes. Ownership of the
// buffer passes to the caller; the encoder accepts no further calls. For a
// fixed encoder the result is a prefix of the caller's buffer.
func (e *Encoder) Finalize() ([]byte, error) {
	if err := e.check(); err != nil {
		return nil, err
	}
	if len(e.frames) > 0 {
		return nil, fmt.Errorf("%w: %d containers left open", ErrInvalidState, len(e.frames))
	}
	out := e.buf[:e.pos]
	if e.buf == nil {
		out = []byte{}
	}
	e.state = stateFinalized
	e.buf = nil
	e.frames = nil
	return out, nil
}

// Close releases an owned buffer that was not handed out by Finalize.
// It is safe to call more than once, and after Finalize.
func (e *Encoder) Close() {
	if e.owned && e.buf != nil && e.state != stateFinalized {
		e.alloc.Free(e.buf)
	}
	e.buf = nil
	e.frames = nil
	if e.state != stateErrored {
		e.state = stateClosed
	}
}
