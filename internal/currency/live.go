package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/astekno/paytrack-be/internal/domain"
	"github.com/astekno/paytrack-be/pkg/logger"
)

// LiveFetcher pulls daily EUR-base quotes from a public rate API and turns
// them into a TL-base table. A single attempt per call; any failure falls
// back to the hardcoded defaults.
type LiveFetcher struct {
	url    string
	client *http.Client
	logger *logger.Logger
}

func NewLiveFetcher(url string, log *logger.Logger) *LiveFetcher {
	return &LiveFetcher{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: log,
	}
}

type quoteResponse struct {
	Rates map[string]float64 `json:"rates"`
}

// Fetch returns the live rate table, or the default table and a nil error
// when the API is unreachable. Callers never need to branch on failure.
func (f *LiveFetcher) Fetch(ctx context.Context) domain.RateTable {
	table, err := f.fetch(ctx)
	if err != nil {
		f.logger.Warn(ctx, "Live rate fetch failed, using defaults", "error", err)
		return domain.DefaultRates()
	}
	f.logger.Info(ctx, "Live rates fetched",
		"usd", table[domain.CurrencyUSD].String(),
		"eur", table[domain.CurrencyEUR].String(),
		"stg", table[domain.CurrencySTG].String(),
	)
	return table
}

func (f *LiveFetcher) fetch(ctx context.Context) (domain.RateTable, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, err
	}

	res, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rate API returned status %d", res.StatusCode)
	}

	var body quoteResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, err
	}

	eurToTry, okTry := body.Rates["TRY"]
	eurToUsd, okUsd := body.Rates["USD"]
	eurToGbp, okGbp := body.Rates["GBP"]
	if !okTry || !okUsd || !okGbp || eurToUsd == 0 || eurToGbp == 0 {
		return nil, fmt.Errorf("rate API response missing quotes")
	}

	// EUR-base quotes, so cross through EUR to get each currency in TL.
	try := decimal.NewFromFloat(eurToTry)
	return domain.RateTable{
		domain.CurrencyTL:  decimal.NewFromInt(1),
		domain.CurrencyEUR: try.Round(4),
		domain.CurrencyUSD: try.Div(decimal.NewFromFloat(eurToUsd)).Round(4),
		domain.CurrencySTG: try.Div(decimal.NewFromFloat(eurToGbp)).Round(4),
	}, nil
}
