package smoltlv

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument = errors.New("smoltlv: invalid argument")
	ErrEnd             = errors.New("smoltlv: end of items")
	ErrNeedMoreData    = errors.New("smoltlv: need more data")
	ErrInvalidFormat   = errors.New("smoltlv: invalid format")
	ErrInvalidState    = errors.New("smoltlv: invalid state")
	ErrOutOfMemory     = errors.New("smoltlv: out of memory")

	ErrNotFound         = errors.New("smoltlv: not found")
	ErrUnsupportedValue = errors.New("smoltlv: unsupported value")
	ErrLimitExceeded    = errors.New("smoltlv: limit exceeded")

	ErrInvalidMagic       = errors.New("smoltlv: invalid envelope magic")
	ErrUnsupportedVersion = errors.New("smoltlv: unsupported envelope version")
	ErrInvalidEnvelope    = errors.New("smoltlv: invalid envelope")
	ErrChecksum           = errors.New("smoltlv: checksum mismatch")
)

// Status is the numeric outcome code of a codec operation. It is mostly
// useful at process or FFI boundaries, where errors must become integers.
type Status uint8

const (
	StatusOK Status = iota
	StatusInvalidArgument
	StatusEnd
	StatusNeedMoreData
	StatusInvalidFormat
	StatusInvalidState
	StatusOutOfMemory
)

var statusNames = [...]string{
	StatusOK:              "ok",
	StatusInvalidArgument: "invalid argument",
	StatusEnd:             "end",
	StatusNeedMoreData:    "need more data",
	StatusInvalidFormat:   "invalid format",
	StatusInvalidState:    "invalid state",
	StatusOutOfMemory:     "out of memory",
}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// StatusOf maps err to the closest Status. A nil error is StatusOK.
// Errors that are not codec errors (I/O failures, for example) and the
// higher-level lookup and envelope errors map to StatusInvalidArgument,
// StatusInvalidFormat or StatusOutOfMemory as appropriate.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrEnd):
		return StatusEnd
	case errors.Is(err, ErrNeedMoreData):
		return StatusNeedMoreData
	case errors.Is(err, ErrInvalidState):
		return StatusInvalidState
	case errors.Is(err, ErrOutOfMemory), errors.Is(err, ErrLimitExceeded):
		return StatusOutOfMemory
	case errors.Is(err, ErrInvalidFormat),
		errors.Is(err, ErrInvalidMagic),
		errors.Is(err, ErrUnsupportedVersion),
		errors.Is(err, ErrInvalidEnvelope),
		errors.Is(err, ErrChecksum):
		return StatusInvalidFormat
	default:
		return StatusInvalidArgument
	}
}
