package secure

// Buffer carries a plaintext credential for the shortest possible span. The
// backing array is owned by the buffer and wiped by Destroy; callers must not
// retain the result of String past the buffer's lifetime.
//
// Modeling erasure as a type, rather than scattered clear calls at every exit
// point, makes "scrub on scope exit" a construction guarantee:
//
//	pwd := secure.NewBuffer(raw)
//	defer pwd.Destroy()
type Buffer struct {
	data []byte
}

// NewBuffer copies b into a fresh owned buffer.
func NewBuffer(b []byte) *Buffer {
	out := &Buffer{data: make([]byte, len(b))}
	copy(out.data, b)
	return out
}

// NewBufferString copies s into a fresh owned buffer.
func NewBufferString(s string) *Buffer {
	return NewBuffer([]byte(s))
}

// Bytes exposes the live backing slice. Valid only until Destroy.
func (b *Buffer) Bytes() []byte {
	if b == nil {
		return nil
	}
	return b.data
}

// String materializes the plaintext. The returned string is a copy and is
// the caller's responsibility; prefer Bytes where an API accepts a slice.
func (b *Buffer) String() string {
	if b == nil {
		return ""
	}
	return string(b.data)
}

// Len reports the plaintext length.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.data)
}

// Destroy zeroes the backing array. Idempotent and nil-safe, so it can sit
// unconditionally in a defer.
func (b *Buffer) Destroy() {
	if b == nil {
		return
	}
	for i := range b.data {
		b.data[i] = 0
	}
	b.data = b.data[:0]
}
