package market

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"stockdash/pkg/config"
	"stockdash/pkg/database"
)

// NewSource builds the quote source selected by cfg.Source. The returned
// close function releases anything the source holds and is never nil.
func NewSource(ctx context.Context, cfg *config.Config) (Source, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Source {
	case config.SourceFinnhub:
		f, err := NewFetcher(cfg.FinnhubAPIKey,
			WithBaseURL(cfg.FinnhubBaseURL),
			WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
			WithHistoryLength(cfg.HistoryLength),
		)
		if err != nil {
			return nil, noop, fmt.Errorf("create fetcher: %w", err)
		}
		log.Info().Str("base_url", cfg.FinnhubBaseURL).Msg("Using Finnhub quote source")
		return f, noop, nil

	case config.SourceMock:
		log.Info().Dur("delay", cfg.MockDelay).Msg("Using mock quote source")
		return NewMockSource(cfg.MockDelay, cfg.HistoryLength), noop, nil

	case config.SourcePostgres:
		db, err := database.Open(ctx, database.DefaultConfig(cfg.DatabaseURL))
		if err != nil {
			return nil, noop, fmt.Errorf("connect database: %w", err)
		}
		log.Info().Msg("Using stored market data quote source")
		return NewStoreSource(db.DB, cfg.HistoryLength), db.Close, nil

	default:
		return nil, noop, fmt.Errorf("unknown quote source %q", cfg.Source)
	}
}
