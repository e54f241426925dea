package smoltlv

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncoderContainerBytes(t *testing.T) {
	enc := NewEncoder()
	defer enc.Close()
	if err := enc.StartList(); err != nil {
		t.Fatal(err)
	}
	if err := enc.WriteInt(1); err != nil {
		t.Fatal(err)
	}
	if err := enc.WriteInt(2); err != nil {
		t.Fatal(err)
	}
	if err := enc.End(); err != nil {
		t.Fatal(err)
	}
	out, err := enc.Finalize()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, vecListOneTwo) {
		t.Fatalf("got % x\nwant % x", out, vecListOneTwo)
	}
}

func TestEncoderMatchesVectors(t *testing.T) {
	tests := []struct {
		name  string
		write func(*Encoder) error
		want  []byte
	}{
		{"null", func(e *Encoder) error { return e.WriteNull() }, vecNull},
		{"true", func(e *Encoder) error { return e.WriteBool(true) }, vecTrue},
		{"false", func(e *Encoder) error { return e.WriteBool(false) }, vecFalse},
		{"int", func(e *Encoder) error { return e.WriteInt(42) }, vecInt42},
		{"negative int", func(e *Encoder) error { return e.WriteInt(-42) }, vecIntNeg42},
		{"bytes", func(e *Encoder) error { return e.WriteBytes([]byte("hi")) }, vecBytesHi},
		{"string", func(e *Encoder) error { return e.WriteString("hey") }, vecStringHey},
		{"list", func(e *Encoder) error {
			e.StartList()
			e.WriteBool(true)
			e.WriteBool(false)
			e.WriteInt(42)
			return e.End()
		}, vecList},
		{"dict", func(e *Encoder) error {
			e.StartDict()
			e.WriteString("age")
			e.WriteInt(30)
			e.WriteString("name")
			e.WriteString("Alice")
			return e.End()
		}, vecDict},
		{"raw container", func(e *Encoder) error {
			return e.WritePrimitive(TypeList, concat(vecTrue, vecFalse, vecInt42))
		}, vecList},
		{"item copy", func(e *Encoder) error {
			item, err := ParseItem(vecDict)
			if err != nil {
				return err
			}
			return e.WriteItem(item)
		}, vecDict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := NewEncoder(WithInitialSize(1))
			defer enc.Close()
			if err := tt.write(enc); err != nil {
				t.Fatal(err)
			}
			out, err := enc.Finalize()
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(out, tt.want) {
				t.Fatalf("got % x\nwant % x", out, tt.want)
			}
		})
	}
}

func TestEncoderEmpty(t *testing.T) {
	enc := NewEncoder()
	out, err := enc.Finalize()
	if err != nil {
		t.Fatal(err)
	}
	if out == nil || len(out) != 0 {
		t.Fatalf("expected empty non-nil output, got %v", out)
	}
}

func TestEncoderEmptyContainers(t *testing.T) {
	enc := NewEncoder()
	must(t, enc.StartList())
	must(t, enc.StartDict())
	must(t, enc.End())
	must(t, enc.End())
	out, err := enc.Finalize()
	if err != nil {
		t.Fatal(err)
	}
	want := container(TypeList, container(TypeDict))
	if !bytes.Equal(out, want) {
		t.Fatalf("got % x\nwant % x", out, want)
	}
}

func TestEncoderUnbalancedEnd(t *testing.T) {
	enc := NewEncoder()
	if err := enc.End(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	// Nothing was written, so the encoder is still usable.
	if enc.Err() != nil {
		t.Fatalf("unexpected sticky error %v", enc.Err())
	}
	if err := enc.WriteNull(); err != nil {
		t.Fatal(err)
	}
	out, err := enc.Finalize()
	if err != nil || !bytes.Equal(out, vecNull) {
		t.Fatalf("got % x, %v", out, err)
	}
}

func TestEncoderFinalizeWithOpenContainer(t *testing.T) {
	enc := NewEncoder()
	must(t, enc.StartList())
	must(t, enc.WriteInt(1))
	if _, err := enc.Finalize(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	if enc.Depth() != 1 {
		t.Fatalf("depth %d", enc.Depth())
	}
	must(t, enc.End())
	out, err := enc.Finalize()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, container(TypeList, concat(vecInt42[:4], []byte{0, 0, 0, 0, 0, 0, 0, 1}))) {
		t.Fatalf("got % x", out)
	}
}

func TestEncoderRejectsNonContainer(t *testing.T) {
	enc := NewEncoder()
	if err := enc.StartNested(TypeInt); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if err := enc.WritePrimitive(TypeNull, []byte{1}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if err := enc.WriteItem(Item{}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if enc.Err() != nil || enc.Len() != 0 {
		t.Fatal("rejected calls must not write or fail the encoder")
	}
}

func TestEncoderOversizeWriteIsSticky(t *testing.T) {
	enc := NewEncoder()
	defer enc.Close()
	if err := enc.WriteBytes(make([]byte, MaxLength+1)); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if !errors.Is(enc.Err(), ErrInvalidArgument) {
		t.Fatalf("Err() = %v", enc.Err())
	}
	if err := enc.WriteNull(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	if _, err := enc.Finalize(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestEncoderMaxLengthBoundary(t *testing.T) {
	if testing.Short() {
		t.Skip("allocates 16 MiB")
	}
	value := bytes.Repeat([]byte{0xAB}, MaxLength)
	enc := NewEncoder()
	if err := enc.WriteBytes(value); err != nil {
		t.Fatal(err)
	}
	out, err := enc.Finalize()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out[:4], []byte{0x04, 0xFF, 0xFF, 0xFF}) {
		t.Fatalf("header % x", out[:4])
	}
	item, err := ParseItem(out)
	if err != nil {
		t.Fatal(err)
	}
	if item.Length() != MaxLength || item.Size() != len(out) {
		t.Fatalf("length %d size %d", item.Length(), item.Size())
	}

	// The same value inside a list pushes the list over the limit.
	enc = NewEncoder()
	defer enc.Close()
	must(t, enc.StartList())
	if err := enc.WriteBytes(value); err != nil {
		t.Fatal(err)
	}
	if err := enc.End(); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}
	if _, err := enc.Finalize(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestFixedEncoder(t *testing.T) {
	buf := make([]byte, len(vecInt42)+2)
	enc := NewFixedEncoder(buf)
	if err := enc.WriteInt(42); err != nil {
		t.Fatal(err)
	}
	if err := enc.WriteInt(1); !errors.Is(err, ErrOutOfMemory) {
		t.Fatalf("expected ErrOutOfMemory, got %v", err)
	}
	if err := enc.WriteNull(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState after overflow, got %v", err)
	}

	enc = NewFixedEncoder(buf)
	must(t, enc.WriteInt(42))
	out, err := enc.Finalize()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, vecInt42) || &out[0] != &buf[0] {
		t.Fatal("fixed encoder must return a prefix of its buffer")
	}
}

func TestEncoderMaxSize(t *testing.T) {
	enc := NewEncoder(WithMaxSize(16), WithInitialSize(4))
	if err := enc.WriteInt(1); err != nil {
		t.Fatal(err)
	}
	if err := enc.WriteInt(2); !errors.Is(err, ErrOutOfMemory) {
		t.Fatalf("expected ErrOutOfMemory, got %v", err)
	}
}

func TestEncoderGrowthStopsAtLimit(t *testing.T) {
	value := make([]byte, 596)
	tests := []struct {
		name string
		opts []EncoderOption
	}{
		{"max size", []EncoderOption{WithMaxSize(1000)}},
		{"odd initial size", []EncoderOption{WithMaxSize(1000), WithInitialSize(3)}},
		{"write limits", []EncoderOption{WithWriteLimits(Limits{MaxDocumentSize: 1000})}},
		{"heap allocator max", []EncoderOption{WithAllocator(HeapAllocator{Max: 1000})}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := NewEncoder(tt.opts...)
			defer enc.Close()
			if err := enc.WriteBytes(value); err != nil {
				t.Fatalf("600-byte document under a 1000-byte limit: %v", err)
			}
			// Filling the buffer exactly to the limit still fits.
			if err := enc.WriteBytes(make([]byte, 1000-600-HeaderSize)); err != nil {
				t.Fatal(err)
			}
			if err := enc.WriteNull(); !errors.Is(err, ErrOutOfMemory) {
				t.Fatalf("expected ErrOutOfMemory past the limit, got %v", err)
			}
			if enc.Len() != 1000 {
				t.Fatalf("len %d", enc.Len())
			}
		})
	}
}

type failingAllocator struct {
	HeapAllocator
	failAfter int
	calls     int
	freed     int
}

func (a *failingAllocator) Alloc(n int) ([]byte, error) {
	a.calls++
	if a.calls > a.failAfter {
		return nil, errors.New("arena exhausted")
	}
	return a.HeapAllocator.Alloc(n)
}

func (a *failingAllocator) Grow(buf []byte, n int) ([]byte, error) {
	a.calls++
	if a.calls > a.failAfter {
		return nil, errors.New("arena exhausted")
	}
	return a.HeapAllocator.Grow(buf, n)
}

func (a *failingAllocator) Free([]byte) { a.freed++ }

func TestEncoderAllocatorFailure(t *testing.T) {
	alloc := &failingAllocator{failAfter: 1}
	enc := NewEncoder(WithAllocator(alloc), WithInitialSize(8))
	if err := enc.WriteNull(); err != nil {
		t.Fatal(err)
	}
	err := enc.WriteString("does not fit in eight bytes")
	if !errors.Is(err, ErrOutOfMemory) {
		t.Fatalf("expected ErrOutOfMemory, got %v", err)
	}
	if _, err := enc.Finalize(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	enc.Close()
	if alloc.freed != 1 {
		t.Fatalf("freed %d buffers", alloc.freed)
	}
}

func TestEncoderCloseAfterFinalize(t *testing.T) {
	alloc := &failingAllocator{failAfter: 10}
	enc := NewEncoder(WithAllocator(alloc))
	must(t, enc.WriteNull())
	if _, err := enc.Finalize(); err != nil {
		t.Fatal(err)
	}
	enc.Close()
	enc.Close()
	if alloc.freed != 0 {
		t.Fatal("finalized buffer belongs to the caller")
	}
	if err := enc.WriteNull(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	if _, err := enc.Finalize(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestEncoderOutputDecodes(t *testing.T) {
	enc := NewEncoder()
	must(t, enc.StartDict())
	must(t, enc.WriteString("items"))
	must(t, enc.StartList())
	for i := int64(0); i < 100; i++ {
		must(t, enc.WriteInt(i * -3))
	}
	must(t, enc.End())
	must(t, enc.WriteString("blob"))
	must(t, enc.WriteBytes(bytes.Repeat([]byte{7}, 300)))
	must(t, enc.End())
	out, err := enc.Finalize()
	if err != nil {
		t.Fatal(err)
	}
	if err := Validate(out); err != nil {
		t.Fatal(err)
	}
	root := mustParse(t, out)
	items, ok := root.DictGet("items")
	if !ok {
		t.Fatal("items missing")
	}
	last, ok := items.ListAt(99)
	if v, _ := last.Int(); !ok || v != -297 {
		t.Fatalf("items[99] = %d", v)
	}
}

// must fails the test on a setup error.
func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}
