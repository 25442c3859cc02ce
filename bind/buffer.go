package bind

import (
	"strings"
	"sync"
)

// Slot receives rendered markup. Implementations must be comparable since
// a [Binder] serializes renders per slot.
type Slot interface {
	Set(s string)
	Append(s string)
}

// Buffer is an in-memory [Slot]. The zero value is ready to use.
type Buffer struct {
	mu sync.Mutex
	sb strings.Builder
}

// Set replaces the content of b with s.
func (b *Buffer) Set(s string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.sb.Reset()
	b.sb.WriteString(s)
}

// Append adds s to the end of b.
func (b *Buffer) Append(s string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.sb.WriteString(s)
}

// String returns the current content of b.
func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.sb.String()
}
