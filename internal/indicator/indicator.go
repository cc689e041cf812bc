// Package indicator implements the indicator evaluation protocol: minimum
// period propagation through a dependency graph and the dual batch/streaming
// computation modes that must produce identical output.
package indicator

import (
	"github.com/rxtech-lab/cerebro/internal/lines"
)

// EvaluationMode selects how the indicator graph is computed for a run. It
// is chosen once per run and threaded through the graph, never re-derived
// from buffer occupancy at call time.
type EvaluationMode int

const (
	// Streaming evaluates indicators incrementally, one bar at a time, via
	// the prenext/nextstart/next dispatch.
	Streaming EvaluationMode = iota
	// Batch evaluates each indicator over the fully materialized parent
	// buffers in one pass via preonce/oncestart/once.
	Batch
)

// String implements fmt.Stringer.
func (m EvaluationMode) String() string {
	switch m {
	case Batch:
		return "batch"
	default:
		return "streaming"
	}
}

// Hooks are the lifecycle methods a concrete indicator implements. The
// engine dispatches on the clock length L against the indicator's minimum
// period: L < minperiod calls PreNext, L == minperiod calls NextStart
// exactly once, and L > minperiod calls Next. The batch triplet covers the
// same three phases over absolute slot ranges.
type Hooks interface {
	// PreNext is called while fewer bars than the minimum period have been
	// seen. The default delegates to Next, leaving NaN where the math
	// cannot produce a value yet.
	PreNext()
	// NextStart is called on the bar where the minimum period is first
	// satisfied. The default delegates to Next.
	NextStart()
	// Next computes the current bar's output from parent lines.
	Next()
	// PreOnce covers [start, end) before the minimum period. The default
	// leaves the slots NaN.
	PreOnce(start, end int)
	// OnceStart covers the single slot where the minimum period is first
	// satisfied. The default delegates to Once.
	OnceStart(start, end int)
	// Once computes the slots in [start, end) from fully materialized
	// parent buffers.
	Once(start, end int)
}

// Indicator is the engine-facing surface of a node in the evaluation graph.
type Indicator interface {
	Hooks

	// Lines returns the output line collection.
	Lines() *lines.Lines
	// MinPeriod is the 1-based number of bars that must be seen before the
	// indicator may emit a non-NaN value.
	MinPeriod() int
	// Step advances the indicator by one bar in streaming mode.
	Step()
	// RunOnce evaluates the whole clock range in batch mode, leaving the
	// cursor rewound to the start.
	RunOnce()
	// Advance moves the output cursor forward over slots already computed
	// by RunOnce.
	Advance(n int)
	// Home rewinds the output cursor to the start.
	Home()
}

// Line is a single readable series the protocol computes over: relative and
// absolute access, plus the minimum period after which its values are
// defined and the clock its bars follow.
type Line interface {
	Get(ago int) float64
	At(i int) float64
	Len() int
	BufLen() int
	MinPeriod() int
	Clock() *lines.Lines
}

type sourceLine struct {
	buf   *lines.Buffer
	clock *lines.Lines
}

// SourceLine adapts one raw buffer of a data series into a Line with
// minimum period 1.
func SourceLine(ds *lines.DataSeries, lineIdx int) Line {
	return &sourceLine{
		buf:   ds.Lines().Line(lineIdx),
		clock: ds.Lines(),
	}
}

// CloseLine is SourceLine over the close price.
func CloseLine(ds *lines.DataSeries) Line {
	return SourceLine(ds, lines.CloseLine)
}

func (s *sourceLine) Get(ago int) float64 { return s.buf.Get(ago) }
func (s *sourceLine) At(i int) float64    { return s.buf.At(i) }
func (s *sourceLine) Len() int            { return s.buf.Len() }
func (s *sourceLine) BufLen() int         { return s.buf.BufLen() }
func (s *sourceLine) MinPeriod() int      { return 1 }

func (s *sourceLine) Clock() *lines.Lines { return s.clock }

type outputLine struct {
	buf   *lines.Buffer
	owner Indicator
	clock *lines.Lines
}

func (o *outputLine) Get(ago int) float64 { return o.buf.Get(ago) }
func (o *outputLine) At(i int) float64    { return o.buf.At(i) }
func (o *outputLine) Len() int            { return o.buf.Len() }
func (o *outputLine) BufLen() int         { return o.buf.BufLen() }
func (o *outputLine) MinPeriod() int      { return o.owner.MinPeriod() }

func (o *outputLine) Clock() *lines.Lines { return o.clock }
