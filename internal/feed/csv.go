package feed

import (
	"context"
	"os"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/rxtech-lab/cerebro/internal/types"
	"github.com/rxtech-lab/cerebro/pkg/errors"
)

// csvTime parses the feed's time column, accepting RFC3339 timestamps and
// plain dates.
type csvTime struct {
	time.Time
}

// UnmarshalCSV implements gocsv.TypeUnmarshaller.
func (t *csvTime) UnmarshalCSV(value string) error {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			t.Time = parsed
			return nil
		}
	}

	return errors.Newf(errors.ErrCodeFeedParseFailed, "unparseable time %q", value)
}

type csvBar struct {
	Time         csvTime `csv:"time"`
	Open         float64 `csv:"open"`
	High         float64 `csv:"high"`
	Low          float64 `csv:"low"`
	Close        float64 `csv:"close"`
	Volume       float64 `csv:"volume"`
	OpenInterest float64 `csv:"open_interest"`
}

// CSVFeed loads bars from a CSV file with a header row of
// time,open,high,low,close,volume[,open_interest].
type CSVFeed struct {
	symbol string
	path   string
}

// NewCSVFeed creates a feed reading the given file.
func NewCSVFeed(symbol, path string) *CSVFeed {
	return &CSVFeed{symbol: symbol, path: path}
}

// Symbol implements Feed.
func (f *CSVFeed) Symbol() string {
	return f.symbol
}

// Load implements Feed.
func (f *CSVFeed) Load(ctx context.Context) ([]types.Bar, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeFeedLoadFailed, err, "open %s", f.path)
	}
	defer file.Close()

	var rows []*csvBar
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeFeedParseFailed, err, "parse %s", f.path)
	}

	if len(rows) == 0 {
		return nil, errors.Newf(errors.ErrCodeFeedEmpty, "feed %s has no bars", f.path)
	}

	bars := make([]types.Bar, len(rows))
	for i, row := range rows {
		bars[i] = types.Bar{
			Time:         row.Time.Time,
			Open:         row.Open,
			High:         row.High,
			Low:          row.Low,
			Close:        row.Close,
			Volume:       row.Volume,
			OpenInterest: row.OpenInterest,
		}
	}

	return bars, nil
}
