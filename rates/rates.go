/*
Package rates fetches the currency→reporting-currency rate table from an
external service, with a hard fallback contract.

CONTRACT:
  The report must never block on, or fail because of, this dependency. The
  provider calls the source under a timeout; on ANY failure it logs a
  warning and substitutes the injected fallback table, and the caller marks
  the report "rates may be stale". The fallback is a plain value so tests
  supply deterministic rates.

WIRE FORMAT (HTTP source):
  {"base": "GBP", "rates": {"USD": 0.79, "EUR": 0.85, "NGN": 0.00052}}
*/
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/warp/margin-engine/engine"
)

// Source returns the current rate table. Implementations may hit the
// network; the provider bounds them with a timeout.
type Source interface {
	Fetch(ctx context.Context) (engine.RateTable, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (engine.RateTable, error)

func (f SourceFunc) Fetch(ctx context.Context) (engine.RateTable, error) { return f(ctx) }

// =============================================================================
// HTTP SOURCE
// =============================================================================

type HTTPSource struct {
	URL    string
	Client *http.Client
}

type ratesPayload struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

func (s *HTTPSource) Fetch(ctx context.Context) (engine.RateTable, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build rates request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch rates: unexpected status %d", resp.StatusCode)
	}

	var payload ratesPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode rates: %w", err)
	}
	if len(payload.Rates) == 0 {
		return nil, fmt.Errorf("decode rates: empty table")
	}

	table := make(engine.RateTable, len(payload.Rates)+1)
	for code, rate := range payload.Rates {
		table[code] = decimal.NewFromFloat(rate)
	}
	if payload.Base != "" {
		table[payload.Base] = decimal.NewFromInt(1)
	}
	return table, nil
}

// =============================================================================
// PROVIDER - Source + timeout + fallback
// =============================================================================

type Provider struct {
	Source   Source
	Fallback engine.RateTable
	Timeout  time.Duration
	Log      zerolog.Logger
}

func NewProvider(source Source, fallback engine.RateTable, timeout time.Duration, log zerolog.Logger) *Provider {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Provider{
		Source:   source,
		Fallback: fallback,
		Timeout:  timeout,
		Log:      log.With().Str("component", "rates").Logger(),
	}
}

// Current returns the rate table to compute with and whether it is stale
// (i.e. the fallback). It never returns an error: a failed fetch is a
// degraded-but-valid outcome by contract.
func (p *Provider) Current(ctx context.Context) (engine.RateTable, bool) {
	if p.Source == nil {
		return p.Fallback, true
	}

	fetchCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	table, err := p.Source.Fetch(fetchCtx)
	if err != nil {
		p.Log.Warn().Err(err).Msg("rate fetch failed, using fallback table")
		return p.Fallback, true
	}
	return table, false
}
