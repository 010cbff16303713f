package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"StockLens/internal/domain/models"
	domrepo "StockLens/internal/domain/repository"
	pkgch "StockLens/pkg/clickhouse"
	applogger "StockLens/pkg/logger"
	"StockLens/pkg/util"
)

var barTables = map[string]string{
	"5m":  "candles_5m",
	"30m": "candles_30m",
	"1d":  "candles_1d",
}

// HistorySchema returns the DDL of the candle tables in database.
func HistorySchema(database string) []string {
	stmts := []string{fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database)}
	for _, table := range []string{"candles_5m", "candles_30m", "candles_1d"} {
		stmts = append(stmts, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
    bucket DateTime64(3, 'UTC'),
    symbol LowCardinality(String),
    close Float64,
    vol UInt64
) ENGINE = ReplacingMergeTree
ORDER BY (symbol, bucket)`, database, table))
	}
	return stmts
}

// CHHistoryStore implements HistoryProvider backed by ClickHouse candle tables.
type CHHistoryStore struct {
	db       *sql.DB
	database string
	now      func() time.Time
	l        *applogger.Logger
}

var _ domrepo.HistoryProvider = (*CHHistoryStore)(nil)

// NewCHHistoryStore reads and writes bars in database, or the client's default
// database when empty.
func NewCHHistoryStore(ch *pkgch.Client, database string) *CHHistoryStore {
	if database == "" {
		database = ch.Database()
	}
	return &CHHistoryStore{db: ch.DB(), database: database, now: time.Now, l: applogger.Nop()}
}

// SetLogger injects a structured logger.
func (s *CHHistoryStore) SetLogger(l *applogger.Logger) {
	if l != nil {
		s.l = l
	}
}

func (s *CHHistoryStore) History(ctx context.Context, ticker string, w domrepo.Window) ([]models.PricePoint, error) {
	start := time.Now()
	table, err := s.tableFor(w.Bar)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	from, to := util.AlignFromTo(now.Add(-w.RangeDuration()), now, w.BarDuration())

	const qtpl = `
        SELECT bucket, close, vol
        FROM %s FINAL
        WHERE symbol = ? AND bucket >= ? AND bucket <= ?
        ORDER BY bucket ASC
    `
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(qtpl, table), ticker, from, to)
	if err != nil {
		s.l.Error("clickhouse history query error",
			applogger.String("table", table),
			applogger.Ticker(ticker),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("history query: %w", err)
	}
	defer rows.Close()

	out := make([]models.PricePoint, 0, 256)
	for rows.Next() {
		var p models.PricePoint
		if err := rows.Scan(&p.Timestamp, &p.Close, &p.Volume); err != nil {
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		out = appendBar(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	s.l.Debug("clickhouse history ok",
		applogger.String("table", table),
		applogger.Ticker(ticker),
		applogger.String("range", w.Range),
		applogger.Int("rows", len(out)),
		applogger.Duration("duration", time.Since(start)),
	)
	return out, nil
}

// appendBar appends p to bars ordered by time. A bar repeating the last
// timestamp replaces it, so unmerged ReplacingMergeTree parts never yield
// duplicate points.
func appendBar(bars []models.PricePoint, p models.PricePoint) []models.PricePoint {
	if n := len(bars); n > 0 && bars[n-1].Timestamp.Equal(p.Timestamp) {
		bars[n-1] = p
		return bars
	}
	return append(bars, p)
}

// StoreHistory inserts points of ticker sampled at bar, in chunks.
func (s *CHHistoryStore) StoreHistory(ctx context.Context, ticker, bar string, points []models.PricePoint) error {
	if len(points) == 0 {
		return nil
	}
	table, err := s.tableFor(bar)
	if err != nil {
		return err
	}

	const chunkSize = 2000
	for start := 0; start < len(points); start += chunkSize {
		end := start + chunkSize
		if end > len(points) {
			end = len(points)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*4)
		for _, p := range points[start:end] {
			values = append(values, "(?, ?, ?, ?)")
			args = append(args, p.Timestamp.UTC(), ticker, p.Close, p.Volume)
		}
		q := fmt.Sprintf("INSERT INTO %s (bucket, symbol, close, vol) VALUES %s", table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("store history: %w", err)
		}
	}
	return nil
}

func (s *CHHistoryStore) tableFor(bar string) (string, error) {
	return tableForBar(s.database, bar)
}

func tableForBar(database, bar string) (string, error) {
	table, ok := barTables[bar]
	if !ok {
		return "", fmt.Errorf("unsupported bar size: %s", bar)
	}
	if database == "" {
		return table, nil
	}
	return database + "." + table, nil
}
