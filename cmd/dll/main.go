// Package main provides C-compatible exports for the smoltlv library.
// Build with: go build -buildmode=c-shared -o smoltlv.dll
package main

/*
#include <stdlib.h>
#include <stdint.h>

// Result structure for operations that return data
typedef struct {
    char* data;
    int   data_len;
    char* error;
    int   status;
} SmoltlvResult;
*/
import "C"

import (
	"bytes"
	"unsafe"

	"github.com/logicossoftware/go-smoltlv"
	"github.com/logicossoftware/go-smoltlv/internal/convert"
)

func main() {}

// SmoltlvVersion returns the envelope format version supported by this library.
//
//export SmoltlvVersion
func SmoltlvVersion() C.uint16_t {
	return C.uint16_t(smoltlv.EnvelopeVersionV1)
}

// SmoltlvFreeResult frees memory allocated by other Smoltlv functions.
// Must be called to avoid memory leaks.
//
//export SmoltlvFreeResult
func SmoltlvFreeResult(result C.SmoltlvResult) {
	if result.data != nil {
		C.free(unsafe.Pointer(result.data))
	}
	if result.error != nil {
		C.free(unsafe.Pointer(result.error))
	}
}

// SmoltlvFreeString frees a C string allocated by Go.
//
//export SmoltlvFreeString
func SmoltlvFreeString(s *C.char) {
	if s != nil {
		C.free(unsafe.Pointer(s))
	}
}

func makeResult(data []byte) C.SmoltlvResult {
	var result C.SmoltlvResult
	if len(data) > 0 {
		result.data = (*C.char)(C.CBytes(data))
		result.data_len = C.int(len(data))
	}
	return result
}

// makeError creates a result with an error message and its status code.
func makeError(err error) C.SmoltlvResult {
	var result C.SmoltlvResult
	result.error = C.CString(err.Error())
	result.status = C.int(smoltlv.StatusOf(err))
	return result
}

func goBytes(data *C.char, dataLen C.int) []byte {
	if data == nil || dataLen <= 0 {
		return nil
	}
	return C.GoBytes(unsafe.Pointer(data), dataLen)
}

// SmoltlvFromJSON encodes a JSON value as a SmolTLV document.
// Byte strings are written as {"$bytes": "<base64>"}; numbers must be
// integers.
//
// Returns SmoltlvResult with encoded data or error. Call SmoltlvFreeResult when done.
//
//export SmoltlvFromJSON
func SmoltlvFromJSON(jsonText *C.char) C.SmoltlvResult {
	if jsonText == nil {
		return makeError(smoltlv.ErrInvalidArgument)
	}
	v, err := convert.FromJSON([]byte(C.GoString(jsonText)))
	if err != nil {
		return makeError(err)
	}
	doc, err := smoltlv.Marshal(v)
	if err != nil {
		return makeError(err)
	}
	return makeResult(doc)
}

// SmoltlvToJSON decodes a SmolTLV document holding one item and returns
// its value as compact JSON.
//
//export SmoltlvToJSON
func SmoltlvToJSON(data *C.char, dataLen C.int) C.SmoltlvResult {
	v, err := smoltlv.Unmarshal(goBytes(data, dataLen), smoltlv.WithAllowUnknownTypes(true))
	if err != nil {
		return makeError(err)
	}
	out, err := convert.ToJSON(v, true)
	if err != nil {
		return makeError(err)
	}
	return makeResult(bytes.TrimSuffix(out, []byte("\n")))
}

// SmoltlvValidate checks every item of a SmolTLV document.
// Returns NULL on success, or an error message string on failure.
// Call SmoltlvFreeString on the result if non-NULL.
//
//export SmoltlvValidate
func SmoltlvValidate(data *C.char, dataLen C.int) *C.char {
	if err := smoltlv.Validate(goBytes(data, dataLen)); err != nil {
		return C.CString(err.Error())
	}
	return nil
}

// SmoltlvStatus validates a document and returns its status code:
// 0 when valid, 3 when truncated, 4 when malformed.
//
//export SmoltlvStatus
func SmoltlvStatus(data *C.char, dataLen C.int) C.int {
	return C.int(smoltlv.StatusOf(smoltlv.Validate(goBytes(data, dataLen))))
}

// SmoltlvDictGet returns the encoded value stored under key in the Dict at
// the start of data.
//
//export SmoltlvDictGet
func SmoltlvDictGet(data *C.char, dataLen C.int, key *C.char) C.SmoltlvResult {
	item, err := smoltlv.ParseItem(goBytes(data, dataLen))
	if err != nil {
		return makeError(err)
	}
	value, err := item.DictLookup(C.GoString(key))
	if err != nil {
		return makeError(err)
	}
	return makeResult(value.Raw())
}

// SmoltlvListAt returns the encoded element at index of the List at the
// start of data.
//
//export SmoltlvListAt
func SmoltlvListAt(data *C.char, dataLen C.int, index C.int) C.SmoltlvResult {
	item, err := smoltlv.ParseItem(goBytes(data, dataLen))
	if err != nil {
		return makeError(err)
	}
	value, err := item.ListIndex(int(index))
	if err != nil {
		return makeError(err)
	}
	return makeResult(value.Raw())
}

// SmoltlvPack wraps a document in an envelope.
// Parameters:
//   - compression: compression algorithm (0=None, 1=ZIP, 2=ZSTD, 3=LZ4, 4=Brotli)
//   - checksum: non-zero to append a BLAKE3 checksum
//
//export SmoltlvPack
func SmoltlvPack(data *C.char, dataLen C.int, compression C.uint16_t, checksum C.int) C.SmoltlvResult {
	var buf bytes.Buffer
	err := smoltlv.Pack(&buf, goBytes(data, dataLen),
		smoltlv.WithCompression(smoltlv.Compression(compression)),
		smoltlv.WithChecksum(checksum != 0),
	)
	if err != nil {
		return makeError(err)
	}
	return makeResult(buf.Bytes())
}

// SmoltlvUnpack extracts the document from an envelope.
//
//export SmoltlvUnpack
func SmoltlvUnpack(data *C.char, dataLen C.int) C.SmoltlvResult {
	doc, err := smoltlv.Unpack(bytes.NewReader(goBytes(data, dataLen)))
	if err != nil {
		return makeError(err)
	}
	return makeResult(doc)
}
