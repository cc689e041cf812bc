package lines

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/cerebro/internal/types"
	"github.com/rxtech-lab/cerebro/pkg/errors"
)

type LinesTestSuite struct {
	suite.Suite
}

func TestLinesSuite(t *testing.T) {
	suite.Run(t, new(LinesTestSuite))
}

func (suite *LinesTestSuite) TestDerivePreservesDeclarationOrder() {
	l, err := Derive("macd", []string{"macd", "signal", "histo"}, 0)
	suite.Require().NoError(err)

	suite.Equal(3, l.Size())
	suite.Equal([]string{"macd", "signal", "histo"}, l.Aliases())

	for i, name := range []string{"macd", "signal", "histo"} {
		idx, err := l.GetAliasIdx(name)
		suite.NoError(err)
		suite.Equal(i, idx)
	}
}

func (suite *LinesTestSuite) TestDeriveExtraLines() {
	l, err := Derive("internal", []string{"out"}, 2)
	suite.Require().NoError(err)

	suite.Equal(3, l.Size())
	suite.Equal([]string{"out"}, l.Aliases())
}

func (suite *LinesTestSuite) TestGetAliasIdxNotFound() {
	l, err := Derive("sma", []string{"sma"}, 0)
	suite.Require().NoError(err)

	_, err = l.GetAliasIdx("missing")
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeAliasNotFound))
}

func (suite *LinesTestSuite) TestDuplicateAliasRejected() {
	l := NewLines("dup")
	l.AddLine(NewBuffer())
	l.AddLine(NewBuffer())

	suite.NoError(l.AddAlias("a", 0))
	err := l.AddAlias("a", 1)
	suite.True(errors.HasCode(err, errors.ErrCodeDuplicateAlias))
}

func (suite *LinesTestSuite) TestAliasIndexOutOfRange() {
	l := NewLines("bad")
	err := l.AddAlias("a", 0)
	suite.True(errors.HasCode(err, errors.ErrCodeLineIndex))
}

func (suite *LinesTestSuite) TestCursorOpsBroadcast() {
	l, err := Derive("pair", []string{"a", "b"}, 0)
	suite.Require().NoError(err)

	l.Forward(3)
	suite.Equal(3, l.Len())
	suite.Equal(3, l.Line(0).Len())
	suite.Equal(3, l.Line(1).Len())

	l.Line(0).Set(0, 1.0)
	l.Line(1).Set(0, 2.0)
	l.Backward(1)
	suite.Equal(2, l.Len())

	l.Advance(1)
	suite.Equal(1.0, l.Line(0).Get(0))
	suite.Equal(2.0, l.Line(1).Get(0))

	l.Home()
	suite.Equal(0, l.Len())

	l.Reset()
	suite.Equal(1, l.BufLen())
}

type DataSeriesTestSuite struct {
	suite.Suite
}

func TestDataSeriesSuite(t *testing.T) {
	suite.Run(t, new(DataSeriesTestSuite))
}

func testBar(t time.Time, c float64) types.Bar {
	return types.Bar{
		Time:   t,
		Open:   c - 1,
		High:   c + 1,
		Low:    c - 2,
		Close:  c,
		Volume: 100,
	}
}

func (suite *DataSeriesTestSuite) TestAppendBarAccessors() {
	ds := NewDataSeries("AAPL")
	t0 := time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)

	ds.AppendBar(testBar(t0, 101))
	ds.AppendBar(testBar(t0.Add(time.Minute), 102))

	suite.Equal("AAPL", ds.Symbol())
	suite.Equal(2, ds.Len())
	suite.Equal(102.0, ds.Close(0))
	suite.Equal(101.0, ds.Close(1))
	suite.Equal(101.0, ds.Open(0))
	suite.Equal(103.0, ds.High(0))
	suite.Equal(100.0, ds.Low(0))
	suite.Equal(100.0, ds.Volume(0))
	suite.Equal(0.0, ds.OpenInterest(0))
	suite.Equal(t0.Add(time.Minute), ds.Time(0))
	suite.Equal(t0, ds.Time(1))
}

func (suite *DataSeriesTestSuite) TestSubSecondTimesRoundTrip() {
	ds := NewDataSeries("AAPL")

	// Intraday feeds carry fractional seconds; microsecond-aligned
	// timestamps must come back bit-exact from the datetime line.
	t0 := time.Date(2026, 3, 4, 9, 30, 0, 125_000_000, time.UTC)
	t1 := t0.Add(250 * time.Millisecond)

	ds.AppendBar(testBar(t0, 101))
	ds.AppendBar(testBar(t1, 102))

	suite.Equal(t1, ds.Time(0))
	suite.Equal(t0, ds.Time(1))
	suite.Equal(float64(t1.UnixMicro()), ds.DateTime(0))
}

func (suite *DataSeriesTestSuite) TestTimeOutOfRangeIsZero() {
	ds := NewDataSeries("AAPL")
	suite.True(ds.Time(0).IsZero())
}

func (suite *DataSeriesTestSuite) TestPreloadMaterializesAndHomes() {
	ds := NewDataSeries("AAPL")
	t0 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	bars := make([]types.Bar, 5)
	for i := range bars {
		bars[i] = testBar(t0.AddDate(0, 0, i), 100+float64(i))
	}

	ds.Preload(bars)

	suite.Equal(0, ds.Len())
	suite.Equal(5, ds.BufLen())
	suite.True(math.IsNaN(ds.Close(0)))

	ds.Advance(1)
	suite.Equal(100.0, ds.Close(0))

	ds.Advance(4)
	suite.Equal(104.0, ds.Close(0))
	suite.Equal(100.0, ds.Close(4))
}
