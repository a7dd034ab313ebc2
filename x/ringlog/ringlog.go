// Package ringlog is a fixed-capacity overwrite-oldest ring for small event
// records. Single-writer, single-reader from the one control loop; no locks.
package ringlog

// Ring holds up to cap(buf) entries of T. Once full, Append overwrites the
// oldest entry and counts it as dropped.
type Ring[T any] struct {
	buf     []T
	head    int // index of oldest entry
	n       int // live entries
	dropped uint32
}

// New returns a ring with the given capacity (minimum 1).
func New[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{buf: make([]T, capacity)}
}

func (r *Ring[T]) Len() int        { return r.n }
func (r *Ring[T]) Cap() int        { return len(r.buf) }
func (r *Ring[T]) Dropped() uint32 { return r.dropped }

// Append stores v, overwriting the oldest entry when full.
func (r *Ring[T]) Append(v T) {
	if r.n < len(r.buf) {
		r.buf[(r.head+r.n)%len(r.buf)] = v
		r.n++
		return
	}
	r.buf[r.head] = v
	r.head = (r.head + 1) % len(r.buf)
	r.dropped++
}

// Snapshot copies the live entries, oldest first.
func (r *Ring[T]) Snapshot() []T {
	out := make([]T, r.n)
	for i := 0; i < r.n; i++ {
		out[i] = r.buf[(r.head+i)%len(r.buf)]
	}
	return out
}

// Clear discards all entries and resets the dropped counter.
func (r *Ring[T]) Clear() {
	r.head = 0
	r.n = 0
	r.dropped = 0
}
