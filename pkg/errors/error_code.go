package errors

// ErrorCode represents a unique numeric identifier for an error category.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown  ErrorCode = 0
	ErrCodeInternal ErrorCode = 1

	// Configuration errors (100-199)
	ErrCodeInvalidConfig    ErrorCode = 100
	ErrCodeInvalidPeriod    ErrorCode = 101
	ErrCodeInvalidParameter ErrorCode = 102
	ErrCodeInvalidCash      ErrorCode = 103
	ErrCodeConfigParse      ErrorCode = 104

	// Line errors (200-299)
	ErrCodeAliasNotFound  ErrorCode = 200
	ErrCodeDuplicateAlias ErrorCode = 201
	ErrCodeLineIndex      ErrorCode = 202

	// Indicator errors (300-399)
	ErrCodeIndicatorConfig ErrorCode = 300
	ErrCodeNoData          ErrorCode = 301

	// Order errors (400-499)
	ErrCodeInvalidOrder     ErrorCode = 400
	ErrCodeOrderNotFound    ErrorCode = 401
	ErrCodeOrderNotPending  ErrorCode = 402
	ErrCodeInvalidOrderSize ErrorCode = 403

	// Broker errors (500-599)
	ErrCodeBrokerState ErrorCode = 500

	// Engine errors (600-699)
	ErrCodeNoStrategies ErrorCode = 600
	ErrCodeNoFeeds      ErrorCode = 601
	ErrCodeRunFailed    ErrorCode = 602
	ErrCodeNotStopped   ErrorCode = 603

	// Feed errors (700-799)
	ErrCodeFeedLoadFailed  ErrorCode = 700
	ErrCodeFeedParseFailed ErrorCode = 701
	ErrCodeFeedEmpty       ErrorCode = 702

	// Analyzer errors (800-899)
	ErrCodeAnalyzerNotFound   ErrorCode = 800
	ErrCodeAnalyzerDuplicate  ErrorCode = 801
	ErrCodeAnalyzerNoResults  ErrorCode = 802
	ErrCodeRecorderWriteError ErrorCode = 803
)
