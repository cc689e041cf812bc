package lines

import (
	"time"

	"github.com/rxtech-lab/cerebro/internal/types"
)

// Fixed line order of a DataSeries. The order is part of the data model
// contract and is relied upon by indicators addressing lines by index.
const (
	OpenLine = iota
	HighLine
	LowLine
	CloseLine
	VolumeLine
	OpenInterestLine
	DateTimeLine

	dataSeriesLines
)

var dataSeriesAliases = []string{
	"open", "high", "low", "close", "volume", "openinterest", "datetime",
}

// DataSeries is a Series with OHLCV semantics over a fixed line layout.
// Datetimes are stored as float64 Unix microseconds in the datetime line;
// microsecond counts fit the float64 mantissa exactly, so feed timestamps
// round-trip without drift. Sub-microsecond precision is dropped.
type DataSeries struct {
	Series
	symbol string
}

// NewDataSeries builds an empty OHLCV container for one instrument.
func NewDataSeries(symbol string) *DataSeries {
	l, err := Derive(symbol, dataSeriesAliases, 0)
	if err != nil {
		// The fixed alias table cannot collide.
		panic(err)
	}

	return &DataSeries{
		Series: *NewSeries(l),
		symbol: symbol,
	}
}

// Symbol returns the instrument identifier.
func (d *DataSeries) Symbol() string {
	return d.symbol
}

// AppendBar advances all lines by one slot and stores the bar values in the
// new current slot.
func (d *DataSeries) AppendBar(bar types.Bar) {
	d.Forward(1)
	d.lines.Line(OpenLine).Set(0, bar.Open)
	d.lines.Line(HighLine).Set(0, bar.High)
	d.lines.Line(LowLine).Set(0, bar.Low)
	d.lines.Line(CloseLine).Set(0, bar.Close)
	d.lines.Line(VolumeLine).Set(0, bar.Volume)
	d.lines.Line(OpenInterestLine).Set(0, bar.OpenInterest)
	d.lines.Line(DateTimeLine).Set(0, float64(bar.Time.UnixMicro()))
}

// Preload appends every bar and rewinds the cursor to the start, leaving
// the buffers fully materialized for batch evaluation.
func (d *DataSeries) Preload(bars []types.Bar) {
	for _, bar := range bars {
		d.AppendBar(bar)
	}

	d.Home()
}

// Open returns the open price ago bars behind the cursor.
func (d *DataSeries) Open(ago int) float64 {
	return d.lines.Line(OpenLine).Get(ago)
}

// High returns the high price ago bars behind the cursor.
func (d *DataSeries) High(ago int) float64 {
	return d.lines.Line(HighLine).Get(ago)
}

// Low returns the low price ago bars behind the cursor.
func (d *DataSeries) Low(ago int) float64 {
	return d.lines.Line(LowLine).Get(ago)
}

// Close returns the close price ago bars behind the cursor.
func (d *DataSeries) Close(ago int) float64 {
	return d.lines.Line(CloseLine).Get(ago)
}

// Volume returns the traded volume ago bars behind the cursor.
func (d *DataSeries) Volume(ago int) float64 {
	return d.lines.Line(VolumeLine).Get(ago)
}

// OpenInterest returns the open interest ago bars behind the cursor.
func (d *DataSeries) OpenInterest(ago int) float64 {
	return d.lines.Line(OpenInterestLine).Get(ago)
}

// DateTime returns the raw datetime sample ago bars behind the cursor.
func (d *DataSeries) DateTime(ago int) float64 {
	return d.lines.Line(DateTimeLine).Get(ago)
}

// Time converts the datetime sample ago bars behind the cursor to time.Time.
// The zero time is returned when the slot is out of range.
func (d *DataSeries) Time(ago int) time.Time {
	raw := d.DateTime(ago)
	if raw != raw { // NaN
		return time.Time{}
	}

	return time.UnixMicro(int64(raw)).UTC()
}
