// Package lines implements the time-series storage model: append-only
// buffers of float64 samples addressed by "ago" offsets relative to a
// movable cursor, grouped into named, ordered collections.
package lines

import (
	"fmt"
	"math"
)

// BufferMode selects how a Buffer manages its backing storage.
type BufferMode int

const (
	// Unbounded keeps every appended value for the whole run.
	Unbounded BufferMode = iota
	// QBuffer caps the backing array, discarding the oldest values once
	// the retained window is exceeded. Get/Set semantics are unchanged.
	QBuffer
)

// Buffer is a growable array of float64 with a movable read/write cursor.
//
// The cursor idx marks the current bar. Get(ago) returns the value ago bars
// behind the cursor; reads outside the materialized range yield NaN, writes
// outside it panic. The cursor only moves backward during explicit
// Rewind/Backward/Home calls.
type Buffer struct {
	array  []float64
	idx    int // logical cursor; -1 means no bar seen yet
	offset int // logical index of array[0], nonzero only in QBuffer mode
	mode   BufferMode
	maxlen int
}

// NewBuffer returns a reset, unbounded Buffer.
func NewBuffer() *Buffer {
	b := &Buffer{}
	b.Reset()

	return b
}

// Reset reinitializes the buffer with a single NaN sentinel so that slot 0
// is immediately writable, before any real value exists. The cursor claims
// the sentinel slot on the next Forward.
func (b *Buffer) Reset() {
	b.array = b.array[:0]
	b.array = append(b.array, math.NaN())
	b.idx = -1
	b.offset = 0
}

// Len reports the number of bars the cursor has advanced over.
func (b *Buffer) Len() int {
	return b.idx + 1
}

// Empty reports whether the cursor has not yet advanced over any bar.
func (b *Buffer) Empty() bool {
	return b.idx < 0
}

// BufLen reports the total number of materialized slots, including any
// discarded by QBuffer trimming.
func (b *Buffer) BufLen() int {
	return b.offset + len(b.array)
}

// Get returns the value ago bars behind the cursor. Out-of-range reads and
// negative offsets yield NaN.
func (b *Buffer) Get(ago int) float64 {
	if ago < 0 {
		return math.NaN()
	}

	pos := b.idx - ago - b.offset
	if pos < 0 || pos >= len(b.array) {
		return math.NaN()
	}

	return b.array[pos]
}

// Set overwrites the value ago bars behind the cursor. Writing outside the
// materialized range is a programmer error and panics.
func (b *Buffer) Set(ago int, value float64) {
	pos := b.idx - ago - b.offset
	if b.idx < 0 && ago == 0 {
		// Before the cursor has advanced over any bar, slot 0 is the NaN
		// sentinel kept by Reset. The next Forward lands the cursor on it.
		pos = -b.offset
	}

	if ago < 0 || pos < 0 || pos >= len(b.array) {
		panic(fmt.Sprintf("lines: set out of range (ago=%d, idx=%d, buflen=%d)", ago, b.idx, b.BufLen()))
	}

	b.array[pos] = value
}

// At returns the value at the absolute slot index i, NaN when out of range.
// Batch evaluation reads parent buffers through absolute indices.
func (b *Buffer) At(i int) float64 {
	pos := i - b.offset
	if pos < 0 || pos >= len(b.array) {
		return math.NaN()
	}

	return b.array[pos]
}

// SetAt overwrites the absolute slot index i. Out-of-range writes panic.
func (b *Buffer) SetAt(i int, value float64) {
	pos := i - b.offset
	if pos < 0 || pos >= len(b.array) {
		panic(fmt.Sprintf("lines: set out of range (index=%d, buflen=%d)", i, b.BufLen()))
	}

	b.array[pos] = value
}

// Append grows the buffer by one slot, advances the cursor and stores value
// in the new current slot.
func (b *Buffer) Append(value float64) {
	b.Forward(1)
	b.Set(0, value)
}

// Forward advances the cursor by n slots, materializing NaN slots as needed.
func (b *Buffer) Forward(n int) {
	b.idx += n

	for b.idx-b.offset >= len(b.array) {
		b.array = append(b.array, math.NaN())
	}

	b.trim()
}

// Backward moves the cursor n slots toward the start, clamping at the
// pre-first-bar position.
func (b *Buffer) Backward(n int) {
	b.idx -= n
	if b.idx < -1 {
		b.idx = -1
	}
}

// Rewind is Backward under the name used by the evaluation engine.
func (b *Buffer) Rewind(n int) {
	b.Backward(n)
}

// Advance is Forward under the name used by the replay loop after batch
// evaluation has already materialized the slots.
func (b *Buffer) Advance(n int) {
	b.Forward(n)
}

// Home rewinds the cursor to the pre-first-bar position without touching
// the stored values.
func (b *Buffer) Home() {
	b.idx = -1
}

// SetQBuffer switches the buffer to bounded mode retaining at least save
// slots behind the cursor.
func (b *Buffer) SetQBuffer(save int) {
	b.mode = QBuffer
	if save > 0 {
		b.maxlen = save
	}

	b.trim()
}

// MinBuffer raises the retained window so at least n slots stay readable.
func (b *Buffer) MinBuffer(n int) {
	if n > b.maxlen {
		b.maxlen = n
	}
}

func (b *Buffer) trim() {
	if b.mode != QBuffer || b.maxlen <= 0 {
		return
	}

	// Keep maxlen slots up to the cursor; slots ahead of the cursor are
	// preserved untouched.
	keepFrom := b.idx - b.offset - b.maxlen + 1
	if keepFrom <= 0 {
		return
	}

	b.array = append(b.array[:0], b.array[keepFrom:]...)
	b.offset += keepFrom
}
