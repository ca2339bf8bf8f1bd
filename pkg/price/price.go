package price

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"inti-swap/pkg/logx"
)

// CacheTTL is how long a fetched spot price stays fresh.
const CacheTTL = 5 * time.Minute

// ErrUnknownToken marks a symbol the price source has no quote for.
var ErrUnknownToken = errors.New("no price for token")

// Service looks up USD spot prices from a CoinGecko-compatible endpoint,
// caching each symbol independently.
type Service struct {
	baseURL string
	client  *http.Client
	now     func() time.Time

	mu    sync.Mutex
	cache map[string]cachedPrice
}

type cachedPrice struct {
	price     float64
	fetchedAt time.Time
}

func NewService(baseURL string, client *http.Client, now func() time.Time) *Service {
	if client == nil {
		client = http.DefaultClient
	}
	if now == nil {
		now = time.Now
	}
	return &Service{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
		now:     now,
		cache:   make(map[string]cachedPrice),
	}
}

// Symbols are queried by CoinGecko id; common tickers are aliased.
var coingeckoIDs = map[string]string{
	"ETH":   "ethereum",
	"USDC":  "usd-coin",
	"USDT":  "tether",
	"MATIC": "matic-network",
	"SOL":   "solana",
	"ARB":   "arbitrum",
	"WETH":  "ethereum",
	"WBTC":  "wrapped-bitcoin",
	"BTC":   "bitcoin",
	"NEAR":  "near",
	"DAI":   "dai",
}

func coinID(symbol string) string {
	if id, ok := coingeckoIDs[strings.ToUpper(symbol)]; ok {
		return id
	}
	return strings.ToLower(symbol)
}

// Price returns the USD spot price for a token symbol. ErrUnknownToken is
// returned when the source has no quote for it.
func (s *Service) Price(ctx context.Context, symbol string) (float64, error) {
	prices, err := s.Prices(ctx, []string{symbol})
	if err != nil {
		return 0, err
	}
	p, ok := prices[strings.ToUpper(symbol)]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownToken, symbol)
	}
	return p, nil
}

// Prices returns USD spot prices for several symbols in one round trip,
// keyed by upper-cased symbol. Symbols the source doesn't know are simply
// absent from the result.
func (s *Service) Prices(ctx context.Context, symbols []string) (map[string]float64, error) {
	result := make(map[string]float64)
	var fetch []string

	s.mu.Lock()
	for _, sym := range symbols {
		id := coinID(sym)
		if c, ok := s.cache[id]; ok && s.now().Sub(c.fetchedAt) < CacheTTL {
			result[strings.ToUpper(sym)] = c.price
		} else {
			fetch = append(fetch, id)
		}
	}
	s.mu.Unlock()

	if len(fetch) == 0 {
		return result, nil
	}

	data, err := s.fetchPrices(ctx, fetch)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	for _, sym := range symbols {
		id := coinID(sym)
		if entry, ok := data[id]; ok {
			s.cache[id] = cachedPrice{price: entry.USD, fetchedAt: s.now()}
			result[strings.ToUpper(sym)] = entry.USD
		}
	}
	s.mu.Unlock()

	return result, nil
}

type priceEntry struct {
	USD float64 `json:"usd"`
}

func (s *Service) fetchPrices(ctx context.Context, ids []string) (map[string]priceEntry, error) {
	u := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd",
		s.baseURL, url.QueryEscape(strings.Join(ids, ",")))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build price request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch prices: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read price response: %w", err)
	}

	var data map[string]priceEntry
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("failed to decode price response: %w", err)
	}

	logx.Debug().Int("ids", len(ids)).Int("prices", len(data)).Msg("fetched spot prices")
	return data, nil
}

// Format renders a USD price with precision scaled to its magnitude.
func Format(price float64) string {
	switch {
	case price >= 1:
		return fmt.Sprintf("$%.2f", price)
	case price >= 0.01:
		return fmt.Sprintf("$%.4f", price)
	default:
		return fmt.Sprintf("$%.6f", price)
	}
}
