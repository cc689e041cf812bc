package logger

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type LoggerTestSuite struct {
	suite.Suite
}

func TestLoggerSuite(t *testing.T) {
	suite.Run(t, new(LoggerTestSuite))
}

func (suite *LoggerTestSuite) TestNewLogger() {
	logger, err := NewLogger()
	suite.NoError(err)
	suite.NotNil(logger)
	suite.NotNil(logger.Logger)
}

func (suite *LoggerTestSuite) TestNewTestLogger() {
	logger := NewTestLogger()
	suite.NotNil(logger)
	suite.NotNil(logger.Logger)

	// Should not panic
	logger.Info("discarded")
	logger.Debug("discarded")
}

func (suite *LoggerTestSuite) TestLoggerSyncNilLogger() {
	logger := &Logger{Logger: nil}

	err := logger.Sync()
	suite.NoError(err)
}
