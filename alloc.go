package smoltlv

import "fmt"

// Allocator supplies the buffers an Encoder writes into. Both Alloc and
// Grow may fail; the encoder reports such failures as ErrOutOfMemory and
// stops accepting writes.
type Allocator interface {
	// Alloc returns a buffer of length n.
	Alloc(n int) ([]byte, error)
	// Grow returns a buffer of length n that starts with the contents of buf.
	Grow(buf []byte, n int) ([]byte, error)
	// Free releases a buffer obtained from Alloc or Grow.
	Free(buf []byte)
}

// HeapAllocator allocates from the Go heap. A positive Max caps the size of
// any single buffer.
type HeapAllocator struct {
	Max int
}

func (a HeapAllocator) check(n int) error {
	if n < 0 || (a.Max > 0 && n > a.Max) {
		return fmt.Errorf("%w: buffer of %d bytes exceeds limit %d", ErrOutOfMemory, n, a.Max)
	}
	return nil
}

func (a HeapAllocator) Alloc(n int) ([]byte, error) {
	if err := a.check(n); err != nil {
		return nil, err
	}
	return make([]byte, n), nil
}

func (a HeapAllocator) Grow(buf []byte, n int) ([]byte, error) {
	if err := a.check(n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, buf)
	return out, nil
}

// Free is a no-op; the garbage collector reclaims heap buffers.
func (HeapAllocator) Free([]byte) {}
