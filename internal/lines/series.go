package lines

// NoOwner marks a Series that is not bound into a larger graph.
const NoOwner = -1

// Series owns exactly one Lines collection and carries a non-owning
// back-reference to its owner, expressed as a node index into the run
// graph's arena rather than a pointer, so no reference cycles exist.
type Series struct {
	lines *Lines
	owner int
	name  string
}

// NewSeries wraps a Lines collection into a Series with no owner.
func NewSeries(l *Lines) *Series {
	return &Series{
		lines: l,
		owner: NoOwner,
		name:  l.Name(),
	}
}

// Lines returns the owned collection.
func (s *Series) Lines() *Lines {
	return s.lines
}

// Name returns the series name.
func (s *Series) Name() string {
	return s.name
}

// SetName renames the series.
func (s *Series) SetName(name string) {
	s.name = name
}

// Owner returns the arena index of the owning node, or NoOwner.
func (s *Series) Owner() int {
	return s.owner
}

// SetOwner records the arena index of the owning node.
func (s *Series) SetOwner(idx int) {
	s.owner = idx
}

// Len reports the bars seen so far.
func (s *Series) Len() int {
	return s.lines.Len()
}

// BufLen reports the materialized slot count.
func (s *Series) BufLen() int {
	return s.lines.BufLen()
}

// Forward advances all lines by n slots.
func (s *Series) Forward(n int) {
	s.lines.Forward(n)
}

// Advance moves all cursors forward over materialized slots.
func (s *Series) Advance(n int) {
	s.lines.Advance(n)
}

// Home rewinds all cursors to the start.
func (s *Series) Home() {
	s.lines.Home()
}

// Reset reinitializes all lines.
func (s *Series) Reset() {
	s.lines.Reset()
}
