package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	defaultBaseURL        = "https://finnhub.io/api/v1"
	defaultRequestTimeout = 10 * time.Second

	// fabricated history points vary by this much either side of the price
	historySpread = 5.0
)

// FinnhubQuote represents the /quote response structure
type FinnhubQuote struct {
	Current       *float64 `json:"c"`
	Change        *float64 `json:"d"`
	PercentChange *float64 `json:"dp"`
	High          *float64 `json:"h"`
	Low           *float64 `json:"l"`
	Open          *float64 `json:"o"`
	PreviousClose *float64 `json:"pc"`
	Timestamp     int64    `json:"t"`
	Error         string   `json:"error"`
}

// Fetcher handles quote fetching from Finnhub
type Fetcher struct {
	apiKey        string
	baseURL       string
	httpClient    *http.Client
	historyLength int
	rng           *rand.Rand
}

// FetcherOption customises a Fetcher
type FetcherOption func(*Fetcher)

// WithBaseURL points the fetcher at another API root.
func WithBaseURL(u string) FetcherOption {
	return func(f *Fetcher) { f.baseURL = u }
}

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) { f.httpClient = c }
}

// WithHistoryLength sets how many sparkline points are fabricated per quote.
func WithHistoryLength(n int) FetcherOption {
	return func(f *Fetcher) { f.historyLength = n }
}

// WithRand fixes the random source used for fabricated history.
func WithRand(r *rand.Rand) FetcherOption {
	return func(f *Fetcher) { f.rng = r }
}

// NewFetcher creates a new Finnhub quote fetcher
func NewFetcher(apiKey string, opts ...FetcherOption) (*Fetcher, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("FINNHUB_API_KEY is not set")
	}

	f := &Fetcher{
		apiKey:        apiKey,
		baseURL:       defaultBaseURL,
		httpClient:    &http.Client{Timeout: defaultRequestTimeout},
		historyLength: 10,
		rng:           rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
	}
	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

// FetchQuote fetches the current quote for a symbol
func (f *Fetcher) FetchQuote(ctx context.Context, symbol string) (*Quote, error) {
	raw, err := f.fetchRaw(ctx, symbol)
	if err != nil {
		return nil, err
	}

	q, err := parseQuote(symbol, raw)
	if err != nil {
		return nil, err
	}

	q.History = fabricateHistory(q.Price, f.historyLength, f.rng)

	log.Debug().
		Str("symbol", symbol).
		Float64("price", q.Price).
		Float64("change_pct", q.ChangePercent).
		Msg("Fetched quote")
	return q, nil
}

func (f *Fetcher) fetchRaw(ctx context.Context, symbol string) (*FinnhubQuote, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("token", f.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/quote?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: fetch %s: %w", ErrNetworkFailure, symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: unexpected status %d", ErrNetworkFailure, symbol, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s response: %w", ErrNetworkFailure, symbol, err)
	}

	var raw FinnhubQuote
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedResponse, symbol, err)
	}

	return &raw, nil
}

// parseQuote converts an API response to a Quote. Missing price or change
// default to zero; a body with neither field is malformed.
func parseQuote(symbol string, raw *FinnhubQuote) (*Quote, error) {
	if raw.Current == nil && raw.PreviousClose == nil {
		if raw.Error != "" {
			return nil, fmt.Errorf("%w: %s: %s", ErrMalformedResponse, symbol, raw.Error)
		}
		return nil, fmt.Errorf("%w: %s: missing c and pc", ErrMalformedResponse, symbol)
	}

	q := &Quote{Symbol: symbol}
	if raw.Current != nil {
		q.Price = *raw.Current
	}
	if raw.Current != nil && raw.PreviousClose != nil && *raw.Current != 0 && *raw.PreviousClose != 0 {
		q.ChangePercent = (*raw.Current - *raw.PreviousClose) / *raw.PreviousClose * 100
	}

	return q, nil
}

// fabricateHistory invents n sparkline points around price. Finnhub's free
// quote endpoint carries no history.
func fabricateHistory(price float64, n int, rng *rand.Rand) []float64 {
	if price == 0 || n <= 0 {
		return nil
	}

	history := make([]float64, n)
	for i := range history {
		history[i] = price + rng.Float64()*2*historySpread - historySpread
	}
	return history
}

// FetchQuotes fetches all symbols concurrently and joins the results in input
// order. Cancelling ctx abandons every in-flight request.
func (f *Fetcher) FetchQuotes(ctx context.Context, symbols []string) ([]Quote, error) {
	quotes := make([]Quote, len(symbols))
	errs := make([]error, len(symbols))

	// rand.Rand is not safe for concurrent use; history is filled in after the join.
	g, gctx := errgroup.WithContext(ctx)
	for i, symbol := range symbols {
		g.Go(func() error {
			raw, err := f.fetchRaw(gctx, symbol)
			if err == nil {
				var q *Quote
				if q, err = parseQuote(symbol, raw); err == nil {
					quotes[i] = *q
				}
			}
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Warn().Err(err).Str("symbol", symbol).Msg("Quote fetch failed, using zero values")
				errs[i] = err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for i := range quotes {
		if errs[i] == nil {
			quotes[i].History = fabricateHistory(quotes[i].Price, f.historyLength, f.rng)
		}
	}

	log.Info().Int("symbols", len(symbols)).Msg("Fetched quotes from Finnhub")
	return assemble(symbols, quotes, errs)
}
