package market

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// StoreSource reads quotes from the market_data table filled by an external
// collector. It never writes.
type StoreSource struct {
	db            *sql.DB
	historyLength int
	queryTimeout  time.Duration
}

// NewStoreSource creates a quote source backed by market_data
func NewStoreSource(db *sql.DB, historyLength int) *StoreSource {
	return &StoreSource{
		db:            db,
		historyLength: historyLength,
		queryTimeout:  10 * time.Second,
	}
}

// recentClosesQuery returns the newest closes for a ticker, newest first.
const recentClosesQuery = `
	SELECT close
	FROM market_data
	WHERE ticker = $1
	ORDER BY timestamp DESC
	LIMIT $2
`

// FetchQuotes loads each symbol's recent closes in turn.
func (s *StoreSource) FetchQuotes(ctx context.Context, symbols []string) ([]Quote, error) {
	quotes := make([]Quote, len(symbols))
	errs := make([]error, len(symbols))

	for i, sym := range symbols {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		closes, err := s.recentCloses(ctx, sym)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warn().Err(err).Str("symbol", sym).Msg("Stored quote unavailable, using zero values")
			errs[i] = err
			continue
		}
		quotes[i] = quoteFromCloses(sym, closes)
		quotes[i].History = lastN(quotes[i].History, s.historyLength)
	}

	return assemble(symbols, quotes, errs)
}

func (s *StoreSource) recentCloses(ctx context.Context, symbol string) ([]float64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	// two closes are needed for the change even when less history is shown
	limit := max(s.historyLength, 2)

	rows, err := s.db.QueryContext(ctx, recentClosesQuery, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: query market data for %s: %w", ErrNetworkFailure, symbol, err)
	}
	defer rows.Close()

	var closes []float64
	for rows.Next() {
		var c float64
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("%w: scan %s row: %w", ErrMalformedResponse, symbol, err)
		}
		closes = append(closes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate %s rows: %w", ErrNetworkFailure, symbol, err)
	}

	if len(closes) == 0 {
		return nil, fmt.Errorf("%w: no market data found for %s", ErrMalformedResponse, symbol)
	}

	return closes, nil
}

// quoteFromCloses builds a Quote from closes ordered newest first.
func quoteFromCloses(symbol string, closes []float64) Quote {
	q := Quote{Symbol: symbol}
	if len(closes) == 0 {
		return q
	}

	q.Price = closes[0]
	if len(closes) > 1 && closes[0] != 0 && closes[1] != 0 {
		q.ChangePercent = (closes[0] - closes[1]) / closes[1] * 100
	}

	history := make([]float64, len(closes))
	for i, c := range closes {
		history[len(closes)-1-i] = c
	}
	q.History = history

	return q
}

// lastN keeps the newest n points of an oldest-first history.
func lastN(history []float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if len(history) > n {
		return history[len(history)-n:]
	}
	return history
}
