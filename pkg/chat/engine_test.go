package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"inti-swap/pkg/catalog"
	"inti-swap/pkg/types"
)

const (
	testWallet    = "0x1234567890AbcdEF1234567890aBcDeF12345678"
	testDeposit   = "0xDeAdBeEf00000000000000000000000000000001"
	testEVMTxHash = "0x6e1f5e8a9d4b3c2a1f0e9d8c7b6a5f4e3d2c1b0a6e1f5e8a9d4b3c2a1f0e9d8c"
)

// fakeProvider records calls and serves canned responses.
type fakeProvider struct {
	configured bool

	quoteErr   error
	quoteCalls int
	lastQuote  *types.SwapRequest

	executeErr   error
	executeCalls int

	status      *types.ExecutionStatus
	statusErr   error
	statusCalls int
	lastStatus  string

	submitErr      error
	submitCalls    int
	lastSubmitHash string
	lastSubmitAddr string
}

func (f *fakeProvider) Configured() bool { return f.configured }

func (f *fakeProvider) GetQuote(_ context.Context, req *types.SwapRequest) (*types.SwapQuote, error) {
	f.quoteCalls++
	f.lastQuote = req
	if f.quoteErr != nil {
		return nil, f.quoteErr
	}
	return &types.SwapQuote{
		ID:          "q-" + fmt.Sprint(f.quoteCalls),
		FromToken:   req.FromToken,
		ToToken:     req.ToToken,
		FromChain:   req.FromChain,
		ToChain:     req.ToChain,
		FromAmount:  req.AmountFormatted,
		ToAmount:    "320.5",
		SlippageBps: req.SlippageBps,
		Deadline:    time.Date(2024, 6, 2, 12, 0, 0, 0, time.UTC),
		Status:      types.QuotePending,
		Request:     req,
	}, nil
}

func (f *fakeProvider) ExecuteSwap(_ context.Context, _ *types.SwapQuote) (*types.DepositInfo, error) {
	f.executeCalls++
	if f.executeErr != nil {
		return nil, f.executeErr
	}
	return &types.DepositInfo{Address: testDeposit}, nil
}

func (f *fakeProvider) GetExecutionStatus(_ context.Context, depositAddress string) (*types.ExecutionStatus, error) {
	f.statusCalls++
	f.lastStatus = depositAddress
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	if f.status != nil {
		return f.status, nil
	}
	return &types.ExecutionStatus{Status: "PROCESSING", Summary: "Swap in progress", Progress: "Deposit received, swap executing..."}, nil
}

func (f *fakeProvider) SubmitDepositTx(_ context.Context, txHash, depositAddress string) error {
	f.submitCalls++
	f.lastSubmitHash = txHash
	f.lastSubmitAddr = depositAddress
	return f.submitErr
}

// fakeCatalog serves a fixed snapshot for both intent resolution and
// discovery queries.
type fakeCatalog struct {
	records []catalog.TokenRecord
}

func (f *fakeCatalog) BySymbol(_ context.Context, symbol string) ([]catalog.TokenRecord, error) {
	var matches []catalog.TokenRecord
	for _, t := range f.records {
		if strings.EqualFold(t.Symbol, symbol) {
			matches = append(matches, t)
		}
	}
	return matches, nil
}

func (f *fakeCatalog) ChainsForSymbol(ctx context.Context, symbol string) ([]string, error) {
	tokens, _ := f.BySymbol(ctx, symbol)
	seen := make(map[string]bool)
	var chains []string
	for _, t := range tokens {
		c := strings.ToLower(t.Blockchain)
		if !seen[c] {
			seen[c] = true
			chains = append(chains, c)
		}
	}
	return chains, nil
}

func (f *fakeCatalog) Lookup(_ context.Context, symbol, chain string) (*catalog.TokenRecord, error) {
	for _, t := range f.records {
		if strings.EqualFold(t.Symbol, symbol) && strings.EqualFold(t.Blockchain, chain) {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("token '%s' not found on chain '%s'", symbol, chain)
}

func (f *fakeCatalog) Search(_ context.Context, query string) ([]catalog.TokenRecord, error) {
	var matches []catalog.TokenRecord
	q := strings.ToLower(query)
	for _, t := range f.records {
		if strings.Contains(strings.ToLower(t.Symbol), q) {
			matches = append(matches, t)
		}
	}
	return matches, nil
}

func (f *fakeCatalog) Popular(_ context.Context, limit int) ([]catalog.TokenRecord, error) {
	if limit > len(f.records) {
		limit = len(f.records)
	}
	return f.records[:limit], nil
}

type fakePrices struct {
	prices map[string]float64
	err    error
}

func (f *fakePrices) Price(_ context.Context, symbol string) (float64, error) {
	if f.err != nil {
		return 0, f.err
	}
	p, ok := f.prices[strings.ToUpper(symbol)]
	if !ok {
		return 0, fmt.Errorf("no price for %s", symbol)
	}
	return p, nil
}

func (f *fakePrices) Prices(_ context.Context, symbols []string) (map[string]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]float64)
	for _, s := range symbols {
		if p, ok := f.prices[strings.ToUpper(s)]; ok {
			out[s] = p
		}
	}
	return out, nil
}

func testEngine(provider *fakeProvider) *Engine {
	updated := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cat := &fakeCatalog{records: []catalog.TokenRecord{
		{AssetID: "nep141:eth.omft.near", Symbol: "ETH", Decimals: 18, Blockchain: "eth", PriceUSD: 3200, PriceUpdatedAt: updated},
		{AssetID: "nep141:arb-0xusdc.omft.near", Symbol: "USDC", Decimals: 6, Blockchain: "arb", PriceUSD: 1, PriceUpdatedAt: updated},
		{AssetID: "nep141:eth-0xusdc.omft.near", Symbol: "USDC", Decimals: 6, Blockchain: "eth", PriceUSD: 1, PriceUpdatedAt: updated},
		{AssetID: "nep141:sol.omft.near", Symbol: "SOL", Decimals: 9, Blockchain: "sol", PriceUSD: 150, PriceUpdatedAt: updated},
	}}
	prices := &fakePrices{prices: map[string]float64{"ETH": 3200, "USDC": 1, "SOL": 150, "BTC": 64000}}
	return NewEngine(provider, cat, prices, Options{
		WalletAddress: testWallet,
		Now:           func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) },
	})
}

func awaitingCount(e *Engine) int {
	n := 0
	for _, m := range e.History() {
		if m.AwaitingConfirmation {
			n++
		}
	}
	return n
}

const swapText = "swap 0.1 ETH on ethereum to USDC on arbitrum"

func TestGreetingSeeded(t *testing.T) {
	e := testEngine(&fakeProvider{configured: true})
	h := e.History()
	if len(h) != 1 || h[0].Role != RoleBot {
		t.Fatalf("expected a single bot greeting, got %d messages", len(h))
	}
	if !strings.Contains(h[0].Text, "swap") {
		t.Errorf("greeting should show an example swap, got %q", h[0].Text)
	}
	if strings.Contains(h[0].Text, "preview mode") {
		t.Errorf("configured engine should not warn about preview mode")
	}

	e = testEngine(&fakeProvider{configured: false})
	if !strings.Contains(e.History()[0].Text, "preview mode") {
		t.Errorf("unconfigured engine should warn about preview mode")
	}
}

func TestQuoteThenConfirm(t *testing.T) {
	p := &fakeProvider{configured: true}
	e := testEngine(p)

	reply := e.Respond(context.Background(), swapText)
	if reply.SwapData == nil {
		t.Fatalf("expected quote data, got: %s", reply.Text)
	}
	if !reply.AwaitingConfirmation {
		t.Fatal("quote reply should await confirmation")
	}
	if p.lastQuote.Recipient != testWallet {
		t.Errorf("recipient = %q, want session wallet", p.lastQuote.Recipient)
	}
	if !strings.Contains(reply.Text, "yes/no") {
		t.Errorf("quote reply should prompt for confirmation: %q", reply.Text)
	}

	confirm := e.Respond(context.Background(), "yes")
	if p.executeCalls != 1 {
		t.Fatalf("executeCalls = %d, want 1", p.executeCalls)
	}
	if !strings.Contains(confirm.Text, testDeposit) {
		t.Errorf("confirmation reply should include the deposit address: %q", confirm.Text)
	}
	if awaitingCount(e) != 0 {
		t.Errorf("confirmation flags should be cleared after execution")
	}
	if reply.SwapData.Status != types.QuoteExecuted {
		t.Errorf("quote status = %q, want executed", reply.SwapData.Status)
	}
	if reply.SwapData.DepositAddress != testDeposit {
		t.Errorf("deposit address not recorded on the quote")
	}
}

func TestDeclineCancelsSwap(t *testing.T) {
	p := &fakeProvider{configured: true}
	e := testEngine(p)

	e.Respond(context.Background(), swapText)
	reply := e.Respond(context.Background(), "no")
	if p.executeCalls != 0 {
		t.Fatalf("decline must not execute, executeCalls = %d", p.executeCalls)
	}
	if awaitingCount(e) != 0 {
		t.Error("decline should clear confirmation flags")
	}
	if !strings.Contains(reply.Text, "cancelled") {
		t.Errorf("decline reply = %q", reply.Text)
	}

	// A later "yes" has nothing to confirm.
	e.Respond(context.Background(), "yes")
	if p.executeCalls != 0 {
		t.Error("yes after cancel must not execute")
	}
}

func TestNewQuoteSupersedesPending(t *testing.T) {
	p := &fakeProvider{configured: true}
	e := testEngine(p)

	first := e.Respond(context.Background(), swapText)
	second := e.Respond(context.Background(), "swap 100 USDC on arbitrum to ETH on ethereum")

	if first.AwaitingConfirmation {
		t.Error("older quote should have lost its confirmation flag")
	}
	if !second.AwaitingConfirmation {
		t.Error("newest quote should await confirmation")
	}
	if awaitingCount(e) != 1 {
		t.Fatalf("awaiting messages = %d, want exactly 1", awaitingCount(e))
	}

	e.Respond(context.Background(), "yes")
	if p.executeCalls != 1 {
		t.Fatalf("executeCalls = %d, want 1", p.executeCalls)
	}
}

func TestUnrelatedTextClearsPending(t *testing.T) {
	p := &fakeProvider{configured: true}
	e := testEngine(p)

	e.Respond(context.Background(), swapText)
	e.Respond(context.Background(), "what is the weather like")
	if awaitingCount(e) != 0 {
		t.Error("off-topic turn should clear the pending confirmation")
	}

	e.Respond(context.Background(), "yes")
	if p.executeCalls != 0 {
		t.Error("yes after an off-topic turn must not execute")
	}
}

func TestExecuteFailureKeepsPending(t *testing.T) {
	p := &fakeProvider{configured: true, executeErr: errors.New("deposit address unavailable")}
	e := testEngine(p)

	e.Respond(context.Background(), swapText)
	reply := e.Respond(context.Background(), "yes")
	if !strings.Contains(reply.Text, "deposit address unavailable") {
		t.Errorf("execution error should surface to the user: %q", reply.Text)
	}
	if awaitingCount(e) != 1 {
		t.Fatal("failed execution should keep the quote pending for retry")
	}

	p.executeErr = nil
	e.Respond(context.Background(), "yes")
	if p.executeCalls != 2 {
		t.Fatalf("executeCalls = %d, want 2", p.executeCalls)
	}
	if awaitingCount(e) != 0 {
		t.Error("successful retry should clear the flag")
	}
}

func TestQuoteFailure(t *testing.T) {
	p := &fakeProvider{configured: true, quoteErr: errors.New("provider error (status 500)")}
	e := testEngine(p)

	reply := e.Respond(context.Background(), swapText)
	if reply.AwaitingConfirmation || reply.SwapData != nil {
		t.Error("failed quote must not create a pending confirmation")
	}
	if !strings.Contains(reply.Text, "provider error (status 500)") {
		t.Errorf("quote error should surface to the user: %q", reply.Text)
	}
	if awaitingCount(e) != 0 {
		t.Error("no message should await confirmation after a failed quote")
	}
}

func TestStatusWithoutSwap(t *testing.T) {
	p := &fakeProvider{configured: true}
	e := testEngine(p)

	reply := e.Respond(context.Background(), "status")
	if p.statusCalls != 0 {
		t.Fatal("status with no active swap must not call the provider")
	}
	if !strings.Contains(reply.Text, "No active swap") {
		t.Errorf("reply = %q", reply.Text)
	}
}

func TestStatusTargetsNewestSwap(t *testing.T) {
	p := &fakeProvider{configured: true}
	e := testEngine(p)

	e.Respond(context.Background(), swapText)
	e.Respond(context.Background(), "yes")

	reply := e.Respond(context.Background(), "status")
	if p.statusCalls != 1 {
		t.Fatalf("statusCalls = %d, want 1", p.statusCalls)
	}
	if p.lastStatus != testDeposit {
		t.Errorf("status queried %q, want the active deposit address", p.lastStatus)
	}
	if !strings.Contains(reply.Text, "Swap in progress") {
		t.Errorf("reply = %q", reply.Text)
	}
}

func TestSubmitTxWithoutSwap(t *testing.T) {
	p := &fakeProvider{configured: true}
	e := testEngine(p)

	reply := e.Respond(context.Background(), "submit tx "+testEVMTxHash)
	if p.submitCalls != 0 {
		t.Fatal("submit with no swap must not call the provider")
	}
	if !strings.Contains(reply.Text, "No pending swap") {
		t.Errorf("reply = %q", reply.Text)
	}
}

func TestSubmitTxBeforeConfirmation(t *testing.T) {
	p := &fakeProvider{configured: true}
	e := testEngine(p)

	e.Respond(context.Background(), swapText)
	reply := e.Respond(context.Background(), "submit tx "+testEVMTxHash)
	if p.submitCalls != 0 {
		t.Fatal("submit before confirmation must not call the provider")
	}
	if !strings.Contains(reply.Text, "hasn't been confirmed") {
		t.Errorf("reply = %q", reply.Text)
	}
	if awaitingCount(e) != 1 {
		t.Error("the quote should still be pending")
	}
}

func TestSubmitTx(t *testing.T) {
	p := &fakeProvider{configured: true}
	e := testEngine(p)

	e.Respond(context.Background(), swapText)
	e.Respond(context.Background(), "yes")

	reply := e.Respond(context.Background(), "submit tx "+testEVMTxHash)
	if p.submitCalls != 1 {
		t.Fatalf("submitCalls = %d, want 1", p.submitCalls)
	}
	if p.lastSubmitHash != testEVMTxHash || p.lastSubmitAddr != testDeposit {
		t.Errorf("submitted (%q, %q)", p.lastSubmitHash, p.lastSubmitAddr)
	}
	if !strings.Contains(reply.Text, testEVMTxHash) {
		t.Errorf("reply should echo the hash: %q", reply.Text)
	}
}

func TestSubmitTxRejectsBadHash(t *testing.T) {
	p := &fakeProvider{configured: true}
	e := testEngine(p)

	e.Respond(context.Background(), swapText)
	e.Respond(context.Background(), "yes")

	e.Respond(context.Background(), "submit tx nothex")
	if p.submitCalls != 0 {
		t.Error("malformed hash must not reach the provider")
	}
}

func TestPreviewWithoutCredentials(t *testing.T) {
	p := &fakeProvider{configured: false}
	e := testEngine(p)

	reply := e.Respond(context.Background(), swapText)
	if reply.SwapData == nil || !reply.SwapData.Preview {
		t.Fatalf("expected a preview quote, got: %s", reply.Text)
	}
	if reply.SwapData.ToAmount != "0" {
		t.Errorf("preview output amount = %q, want 0", reply.SwapData.ToAmount)
	}
	if reply.AwaitingConfirmation {
		t.Error("preview must not await confirmation")
	}

	e.Respond(context.Background(), "yes")
	if p.executeCalls != 0 {
		t.Error("preview can never be executed")
	}
}

func TestIncompleteIntentGuidance(t *testing.T) {
	e := testEngine(&fakeProvider{configured: true})

	// USDC exists on two chains, so the destination is ambiguous.
	reply := e.Respond(context.Background(), "swap 1 ETH for USDC")
	if reply.SwapData != nil || reply.AwaitingConfirmation {
		t.Fatal("incomplete intent must not produce a quote")
	}
	if !strings.Contains(reply.Text, "destination chain for USDC") {
		t.Errorf("reply should name the missing chain: %q", reply.Text)
	}
	if !strings.Contains(reply.Text, `"swap 1 ETH on eth to USDC on <chain>"`) {
		t.Errorf("reply should suggest a fully qualified follow-up: %q", reply.Text)
	}
}

func TestPriceQuestion(t *testing.T) {
	e := testEngine(&fakeProvider{configured: true})

	reply := e.Respond(context.Background(), "what is the price of ETH?")
	if !strings.Contains(reply.Text, "$3200.00") {
		t.Errorf("reply = %q", reply.Text)
	}

	reply = e.Respond(context.Background(), "show me prices")
	for _, sym := range []string{"ETH", "USDC", "SOL", "BTC"} {
		if !strings.Contains(reply.Text, sym) {
			t.Errorf("price overview missing %s: %q", sym, reply.Text)
		}
	}
}

func TestTokenDiscovery(t *testing.T) {
	e := testEngine(&fakeProvider{configured: true})

	reply := e.Respond(context.Background(), "find usdc")
	if !strings.Contains(reply.Text, "USDC") || !strings.Contains(reply.Text, "arb") {
		t.Errorf("search reply = %q", reply.Text)
	}

	reply = e.Respond(context.Background(), "tokens")
	if !strings.Contains(reply.Text, "ETH") {
		t.Errorf("popular reply = %q", reply.Text)
	}
}

func TestWalletCommand(t *testing.T) {
	e := testEngine(&fakeProvider{configured: true})

	other := "0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B"
	reply := e.Respond(context.Background(), "wallet "+other)
	if e.WalletAddress() != other {
		t.Fatalf("wallet = %q, want %q", e.WalletAddress(), other)
	}
	if !strings.Contains(reply.Text, other) {
		t.Errorf("reply = %q", reply.Text)
	}

	e.Respond(context.Background(), "wallet 0xnothex")
	if e.WalletAddress() != other {
		t.Error("invalid address must not replace the wallet")
	}
}

func TestHelpAndFallback(t *testing.T) {
	e := testEngine(&fakeProvider{configured: true})

	if !strings.Contains(e.Respond(context.Background(), "help").Text, "submit tx") {
		t.Error("help should list the submit tx command")
	}
	if !strings.Contains(e.Respond(context.Background(), "hello there").Text, "help") {
		t.Error("fallback should point at help")
	}
}
