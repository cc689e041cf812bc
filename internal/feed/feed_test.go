package feed

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/cerebro/pkg/errors"
)

type FeedTestSuite struct {
	suite.Suite
}

func TestFeedSuite(t *testing.T) {
	suite.Run(t, new(FeedTestSuite))
}

func (suite *FeedTestSuite) writeCSV(content string) string {
	path := filepath.Join(suite.T().TempDir(), "bars.csv")
	suite.Require().NoError(os.WriteFile(path, []byte(content), 0o644))

	return path
}

func (suite *FeedTestSuite) TestCSVFeedLoadsBars() {
	path := suite.writeCSV(`time,open,high,low,close,volume,open_interest
2024-01-01,100,102,99,101,1500,0
2024-01-02T00:00:00Z,101,103,100,102,1600,0
`)

	bars, err := NewCSVFeed("AAPL", path).Load(context.Background())
	suite.Require().NoError(err)
	suite.Require().Len(bars, 2)

	suite.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), bars[0].Time)
	suite.Equal(100.0, bars[0].Open)
	suite.Equal(101.0, bars[0].Close)
	suite.Equal(1600.0, bars[1].Volume)
}

func (suite *FeedTestSuite) TestCSVFeedErrors() {
	suite.Run("missing file", func() {
		_, err := NewCSVFeed("AAPL", "/nonexistent/bars.csv").Load(context.Background())
		suite.Require().Error(err)
		suite.True(errors.HasCode(err, errors.ErrCodeFeedLoadFailed))
	})

	suite.Run("no rows", func() {
		path := suite.writeCSV("time,open,high,low,close,volume,open_interest\n")
		_, err := NewCSVFeed("AAPL", path).Load(context.Background())
		suite.Require().Error(err)
		suite.True(errors.HasCode(err, errors.ErrCodeFeedEmpty))
	})

	suite.Run("bad time", func() {
		path := suite.writeCSV("time,open,high,low,close,volume,open_interest\nnot-a-time,1,1,1,1,1,0\n")
		_, err := NewCSVFeed("AAPL", path).Load(context.Background())
		suite.Require().Error(err)
		suite.True(errors.HasCode(err, errors.ErrCodeFeedParseFailed))
	})
}

func (suite *FeedTestSuite) TestSyntheticFeedBracketsCloses() {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	feed := NewSyntheticFeed("SYN", start, 3, func(i int) float64 {
		return 100 + float64(i)*10
	})

	bars, err := feed.Load(context.Background())
	suite.Require().NoError(err)
	suite.Require().Len(bars, 3)

	// First bar opens at its own close; later bars open at the previous
	// close with the range spanning both.
	suite.Equal(100.0, bars[0].Open)
	suite.Equal(100.0, bars[1].Open)
	suite.Equal(110.0, bars[1].Close)
	suite.Equal(110.0, bars[1].High)
	suite.Equal(100.0, bars[1].Low)
	suite.Equal(start.AddDate(0, 0, 2), bars[2].Time)
}

func (suite *FeedTestSuite) TestSyntheticFeedEmpty() {
	feed := NewSyntheticFeed("SYN", time.Now(), 0, func(i int) float64 { return 0 })
	_, err := feed.Load(context.Background())
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeFeedEmpty))
}
