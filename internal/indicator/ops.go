package indicator

// Sub is the element-wise difference of two lines sharing a clock. It is
// the building block composite indicators use to expose derived lines as
// graph nodes, keeping evaluation order leaves-first.
type Sub struct {
	Base

	a Line
	b Line
}

// NewSub creates a-b as a graph node.
func NewSub(g *Graph, a, b Line) (*Sub, error) {
	s := &Sub{
		a: a,
		b: b,
	}

	if err := s.init(s, "sub", []string{"sub"}, 0, a.Clock()); err != nil {
		return nil, err
	}

	s.updateMinPeriod(a.MinPeriod())
	s.updateMinPeriod(b.MinPeriod())
	g.Add(s)

	return s, nil
}

// Next implements Hooks.
func (s *Sub) Next() {
	s.Lines().Line(0).Set(0, s.a.Get(0)-s.b.Get(0))
}

// Once implements Hooks.
func (s *Sub) Once(start, end int) {
	out := s.Lines().Line(0)
	for i := start; i < end; i++ {
		out.SetAt(i, s.a.At(i)-s.b.At(i))
	}
}
