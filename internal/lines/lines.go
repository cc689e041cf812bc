package lines

import (
	"github.com/rxtech-lab/cerebro/pkg/errors"
)

// Lines is an ordered collection of Buffers with an insertion-ordered
// name-to-index alias map. The order of lines is semantically meaningful
// and fixed once construction is complete.
type Lines struct {
	name    string
	buffers []*Buffer
	aliases map[string]int
	order   []string
}

// NewLines creates an empty, named collection.
func NewLines(name string) *Lines {
	return &Lines{
		name:    name,
		buffers: nil,
		aliases: make(map[string]int),
		order:   nil,
	}
}

// Derive builds a fresh Lines object with one named buffer per entry of
// lineNames, in call order, plus extra unnamed buffers. This is the factory
// used whenever an indicator declares its own output line layout.
func Derive(name string, lineNames []string, extraLines int) (*Lines, error) {
	l := NewLines(name)

	for _, alias := range lineNames {
		idx := l.AddLine(NewBuffer())
		if err := l.AddAlias(alias, idx); err != nil {
			return nil, err
		}
	}

	for i := 0; i < extraLines; i++ {
		l.AddLine(NewBuffer())
	}

	return l, nil
}

// Name returns the collection name given at construction.
func (l *Lines) Name() string {
	return l.name
}

// AddLine appends a buffer and returns its index.
func (l *Lines) AddLine(buf *Buffer) int {
	l.buffers = append(l.buffers, buf)

	return len(l.buffers) - 1
}

// AddAlias binds name to the line at idx. Duplicate names and out-of-range
// indices are configuration errors.
func (l *Lines) AddAlias(name string, idx int) error {
	if idx < 0 || idx >= len(l.buffers) {
		return errors.Newf(errors.ErrCodeLineIndex, "alias %q refers to line %d of %d", name, idx, len(l.buffers))
	}

	if _, exists := l.aliases[name]; exists {
		return errors.Newf(errors.ErrCodeDuplicateAlias, "alias %q already declared", name)
	}

	l.aliases[name] = idx
	l.order = append(l.order, name)

	return nil
}

// GetAliasIdx resolves a line name to its index.
func (l *Lines) GetAliasIdx(name string) (int, error) {
	idx, ok := l.aliases[name]
	if !ok {
		return 0, errors.Newf(errors.ErrCodeAliasNotFound, "no line named %q in %q", name, l.name)
	}

	return idx, nil
}

// HasAlias reports whether name is declared.
func (l *Lines) HasAlias(name string) bool {
	_, ok := l.aliases[name]

	return ok
}

// Aliases returns the declared names in declaration order.
func (l *Lines) Aliases() []string {
	out := make([]string, len(l.order))
	copy(out, l.order)

	return out
}

// Line returns the buffer at idx. An out-of-range index is a programmer
// error and panics.
func (l *Lines) Line(idx int) *Buffer {
	return l.buffers[idx]
}

// LineByName resolves name and returns the matching buffer.
func (l *Lines) LineByName(name string) (*Buffer, error) {
	idx, err := l.GetAliasIdx(name)
	if err != nil {
		return nil, err
	}

	return l.buffers[idx], nil
}

// Size reports the number of lines in the collection.
func (l *Lines) Size() int {
	return len(l.buffers)
}

// Len reports the bars seen by the collection's cursor. All buffers advance
// in lock-step, so the first line is representative.
func (l *Lines) Len() int {
	if len(l.buffers) == 0 {
		return 0
	}

	return l.buffers[0].Len()
}

// BufLen reports the materialized slot count of the collection.
func (l *Lines) BufLen() int {
	if len(l.buffers) == 0 {
		return 0
	}

	return l.buffers[0].BufLen()
}

// Forward advances every buffer's cursor by n slots.
func (l *Lines) Forward(n int) {
	for _, buf := range l.buffers {
		buf.Forward(n)
	}
}

// Backward moves every cursor n slots toward the start.
func (l *Lines) Backward(n int) {
	for _, buf := range l.buffers {
		buf.Backward(n)
	}
}

// Rewind is Backward under the engine-facing name.
func (l *Lines) Rewind(n int) {
	l.Backward(n)
}

// Advance moves every cursor forward over already materialized slots.
func (l *Lines) Advance(n int) {
	for _, buf := range l.buffers {
		buf.Advance(n)
	}
}

// Home rewinds every cursor to the pre-first-bar position.
func (l *Lines) Home() {
	for _, buf := range l.buffers {
		buf.Home()
	}
}

// Reset reinitializes every buffer.
func (l *Lines) Reset() {
	for _, buf := range l.buffers {
		buf.Reset()
	}
}

// SetQBuffer switches every buffer to bounded mode.
func (l *Lines) SetQBuffer(save int) {
	for _, buf := range l.buffers {
		buf.SetQBuffer(save)
	}
}

// MinBuffer raises the retained window of every buffer.
func (l *Lines) MinBuffer(n int) {
	for _, buf := range l.buffers {
		buf.MinBuffer(n)
	}
}
