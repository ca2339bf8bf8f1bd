package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"inti-swap/pkg/logx"
)

// CacheTTL is how long a fetched token list stays fresh.
const CacheTTL = 10 * time.Minute

// TokenRecord is an immutable snapshot of one swappable token. A symbol is
// not unique on its own; (Symbol, Blockchain) is.
type TokenRecord struct {
	AssetID         string    `json:"assetId"`
	Symbol          string    `json:"symbol"`
	Decimals        uint      `json:"decimals"`
	Blockchain      string    `json:"blockchain"`
	PriceUSD        float64   `json:"price"`
	PriceUpdatedAt  time.Time `json:"priceUpdatedAt"`
	ContractAddress string    `json:"contractAddress"`
}

// CacheStatus describes the current cache state.
type CacheStatus struct {
	HasCache   bool
	CacheAge   time.Duration
	TokenCount int
}

// Service fetches and caches the list of swappable tokens. The HTTP client
// and clock are injected so the cache behaviour is testable with fake time
// and fake responses.
type Service struct {
	url    string
	client *http.Client
	now    func() time.Time

	mu        sync.RWMutex
	cache     []TokenRecord
	lastFetch time.Time
}

// NewService creates a catalog service for the given tokens endpoint.
// A nil client falls back to http.DefaultClient, a nil clock to time.Now.
func NewService(url string, client *http.Client, now func() time.Time) *Service {
	if client == nil {
		client = http.DefaultClient
	}
	if now == nil {
		now = time.Now
	}
	return &Service{url: url, client: client, now: now}
}

// All returns every swappable token, fetching from the catalog endpoint on
// first use or after the cache expires. If a refresh fails and a previous
// snapshot exists, the stale snapshot is served rather than failing the turn.
func (s *Service) All(ctx context.Context) ([]TokenRecord, error) {
	s.mu.RLock()
	cached, fresh := s.cachedLocked()
	s.mu.RUnlock()

	if fresh {
		return cached, nil
	}

	tokens, err := s.fetch(ctx)
	if err != nil {
		if len(cached) > 0 {
			logx.Warn().Err(err).Msg("token catalog refresh failed, serving stale cache")
			return cached, nil
		}
		return nil, err
	}

	s.mu.Lock()
	s.cache = tokens
	s.lastFetch = s.now()
	s.mu.Unlock()

	return tokens, nil
}

func (s *Service) cachedLocked() ([]TokenRecord, bool) {
	if len(s.cache) == 0 {
		return nil, false
	}
	return s.cache, s.now().Sub(s.lastFetch) < CacheTTL
}

func (s *Service) fetch(ctx context.Context) ([]TokenRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tokens: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch tokens: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog response: %w", err)
	}

	var tokens []TokenRecord
	if err := json.Unmarshal(body, &tokens); err != nil {
		return nil, fmt.Errorf("failed to decode catalog response: %w", err)
	}

	logx.Debug().Int("tokens", len(tokens)).Msg("fetched token catalog")
	return tokens, nil
}

// BySymbol returns all tokens matching the symbol, case-insensitively.
// A symbol listed on several chains yields several records.
func (s *Service) BySymbol(ctx context.Context, symbol string) ([]TokenRecord, error) {
	tokens, err := s.All(ctx)
	if err != nil {
		return nil, err
	}

	var matches []TokenRecord
	for _, t := range tokens {
		if strings.EqualFold(t.Symbol, symbol) {
			matches = append(matches, t)
		}
	}
	return matches, nil
}

// ByChain returns all tokens on the given blockchain.
func (s *Service) ByChain(ctx context.Context, chain string) ([]TokenRecord, error) {
	tokens, err := s.All(ctx)
	if err != nil {
		return nil, err
	}

	var matches []TokenRecord
	for _, t := range tokens {
		if strings.EqualFold(t.Blockchain, chain) {
			matches = append(matches, t)
		}
	}
	return matches, nil
}

// Lookup returns the token for an exact (symbol, chain) pair.
func (s *Service) Lookup(ctx context.Context, symbol, chain string) (*TokenRecord, error) {
	tokens, err := s.All(ctx)
	if err != nil {
		return nil, err
	}

	for _, t := range tokens {
		if strings.EqualFold(t.Symbol, symbol) && strings.EqualFold(t.Blockchain, chain) {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("token '%s' not found on chain '%s'", symbol, chain)
}

// ChainsForSymbol returns the deduplicated list of chains the symbol is
// available on.
func (s *Service) ChainsForSymbol(ctx context.Context, symbol string) ([]string, error) {
	matches, err := s.BySymbol(ctx, symbol)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var chains []string
	for _, t := range matches {
		chain := strings.ToLower(t.Blockchain)
		if !seen[chain] {
			seen[chain] = true
			chains = append(chains, chain)
		}
	}
	return chains, nil
}

// Search returns tokens whose symbol or chain contains the query.
func (s *Service) Search(ctx context.Context, query string) ([]TokenRecord, error) {
	tokens, err := s.All(ctx)
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(query)
	var matches []TokenRecord
	for _, t := range tokens {
		if strings.Contains(strings.ToLower(t.Symbol), query) ||
			strings.Contains(strings.ToLower(t.Blockchain), query) {
			matches = append(matches, t)
		}
	}
	return matches, nil
}

// Popular returns up to limit tokens with a non-zero price, most recently
// repriced first.
func (s *Service) Popular(ctx context.Context, limit int) ([]TokenRecord, error) {
	tokens, err := s.All(ctx)
	if err != nil {
		return nil, err
	}

	var priced []TokenRecord
	for _, t := range tokens {
		if t.PriceUSD > 0 {
			priced = append(priced, t)
		}
	}

	sort.SliceStable(priced, func(i, j int) bool {
		return priced[i].PriceUpdatedAt.After(priced[j].PriceUpdatedAt)
	})

	if limit > 0 && len(priced) > limit {
		priced = priced[:limit]
	}
	return priced, nil
}

// Blockchains returns every chain present in the catalog, sorted.
func (s *Service) Blockchains(ctx context.Context) ([]string, error) {
	tokens, err := s.All(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var chains []string
	for _, t := range tokens {
		if !seen[t.Blockchain] {
			seen[t.Blockchain] = true
			chains = append(chains, t.Blockchain)
		}
	}
	sort.Strings(chains)
	return chains, nil
}

// ClearCache drops the cached snapshot, forcing a fetch on the next call.
func (s *Service) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = nil
	s.lastFetch = time.Time{}
}

// Status reports the current cache state.
func (s *Service) Status() CacheStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := CacheStatus{TokenCount: len(s.cache)}
	if len(s.cache) > 0 {
		st.HasCache = true
		st.CacheAge = s.now().Sub(s.lastFetch)
	}
	return st
}
