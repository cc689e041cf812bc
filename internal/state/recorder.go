// Package state persists a finished run: orders and trades land in an
// embedded DuckDB database that can be exported to Parquet, and the
// summary statistics are written as YAML.
package state

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/cerebro/internal/broker"
	"github.com/rxtech-lab/cerebro/internal/logger"
	"github.com/rxtech-lab/cerebro/pkg/errors"
)

// Recorder stores a run's orders and trades in DuckDB.
type Recorder struct {
	db  *sql.DB
	log *logger.Logger
	sq  squirrel.StatementBuilderType
}

// NewRecorder opens an in-memory DuckDB recorder.
func NewRecorder(log *logger.Logger) (*Recorder, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRecorderWriteError, "open duckdb", err)
	}

	return &Recorder{
		db:  db,
		log: log,
		sq:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}, nil
}

// Initialize creates the orders and trades tables.
func (r *Recorder) Initialize() error {
	if _, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS orders (
			order_id TEXT PRIMARY KEY,
			strategy_name TEXT,
			symbol TEXT,
			side TEXT,
			order_type TEXT,
			size DOUBLE,
			price DOUBLE,
			status TEXT,
			created_at TIMESTAMP,
			executed_at TIMESTAMP,
			executed_price DOUBLE,
			executed_size DOUBLE,
			commission DOUBLE
		)
	`); err != nil {
		return errors.Wrap(errors.ErrCodeRecorderWriteError, "create orders table", err)
	}

	if _, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS trades (
			trade_id TEXT PRIMARY KEY,
			strategy_name TEXT,
			symbol TEXT,
			opened_at TIMESTAMP,
			closed_at TIMESTAMP,
			pnl DOUBLE,
			pnl_comm DOUBLE,
			commission DOUBLE
		)
	`); err != nil {
		return errors.Wrap(errors.ErrCodeRecorderWriteError, "create trades table", err)
	}

	return nil
}

// RecordOrders inserts the retired orders of one strategy.
func (r *Recorder) RecordOrders(strategyName string, orders []*broker.Order) error {
	for _, order := range orders {
		query := r.sq.
			Insert("orders").
			Columns(
				"order_id", "strategy_name", "symbol", "side", "order_type",
				"size", "price", "status", "created_at",
				"executed_at", "executed_price", "executed_size", "commission",
			).
			Values(
				order.ID, strategyName, order.Symbol, string(order.Side), string(order.Type),
				order.Size, order.Price, order.Status.String(), order.CreatedAt,
				order.ExecutedAt, order.ExecutedPrice, order.ExecutedSize, order.Commission,
			)

		sqlStr, args, err := query.ToSql()
		if err != nil {
			return errors.Wrap(errors.ErrCodeRecorderWriteError, "build order insert", err)
		}

		if _, err := r.db.Exec(sqlStr, args...); err != nil {
			return errors.Wrapf(errors.ErrCodeRecorderWriteError, err, "insert order %s", order.ID)
		}
	}

	return nil
}

// RecordTrades inserts the closed trades of one strategy.
func (r *Recorder) RecordTrades(strategyName string, trades []*broker.Trade) error {
	for _, trade := range trades {
		query := r.sq.
			Insert("trades").
			Columns(
				"trade_id", "strategy_name", "symbol",
				"opened_at", "closed_at", "pnl", "pnl_comm", "commission",
			).
			Values(
				trade.ID, strategyName, trade.Symbol,
				trade.OpenedAt, trade.ClosedAt, trade.PnL, trade.PnLComm, trade.Commission,
			)

		sqlStr, args, err := query.ToSql()
		if err != nil {
			return errors.Wrap(errors.ErrCodeRecorderWriteError, "build trade insert", err)
		}

		if _, err := r.db.Exec(sqlStr, args...); err != nil {
			return errors.Wrapf(errors.ErrCodeRecorderWriteError, err, "insert trade %s", trade.ID)
		}
	}

	return nil
}

// CountOrders returns the number of recorded orders.
func (r *Recorder) CountOrders() (int, error) {
	return r.count("orders")
}

// CountTrades returns the number of recorded trades.
func (r *Recorder) CountTrades() (int, error) {
	return r.count("trades")
}

func (r *Recorder) count(table string) (int, error) {
	sqlStr, args, err := r.sq.Select("COUNT(*)").From(table).ToSql()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeRecorderWriteError, "build count", err)
	}

	var n int
	if err := r.db.QueryRow(sqlStr, args...).Scan(&n); err != nil {
		return 0, errors.Wrapf(errors.ErrCodeRecorderWriteError, err, "count %s", table)
	}

	return n, nil
}

// Write exports the recorded tables as Parquet files under dir.
func (r *Recorder) Write(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(errors.ErrCodeRecorderWriteError, err, "create %s", dir)
	}

	// Squirrel has no COPY support, raw SQL it is.
	for _, table := range []string{"orders", "trades"} {
		target := filepath.Join(dir, table+".parquet")
		if _, err := r.db.Exec(fmt.Sprintf(`COPY %s TO '%s' (FORMAT PARQUET)`, table, target)); err != nil {
			return errors.Wrapf(errors.ErrCodeRecorderWriteError, err, "export %s", table)
		}
	}

	r.log.Info("exported run records", zap.String("dir", dir))

	return nil
}

// WriteStats writes the analyzer results as a YAML file.
func (r *Recorder) WriteStats(path string, stats any) error {
	out, err := yaml.Marshal(stats)
	if err != nil {
		return errors.Wrap(errors.ErrCodeRecorderWriteError, "marshal stats", err)
	}

	if err := os.WriteFile(path, out, 0o644); err != nil {
		return errors.Wrapf(errors.ErrCodeRecorderWriteError, err, "write %s", path)
	}

	return nil
}

// Close releases the database.
func (r *Recorder) Close() error {
	return r.db.Close()
}
