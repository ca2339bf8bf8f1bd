package chat

import (
	"context"
	"regexp"
	"strings"
	"time"

	"inti-swap/pkg/catalog"
	"inti-swap/pkg/intent"
	"inti-swap/pkg/logx"
	"inti-swap/pkg/types"
	"inti-swap/pkg/wallet"
)

// SwapProvider is the slice of the quoting backend the engine needs.
type SwapProvider interface {
	Configured() bool
	GetQuote(ctx context.Context, req *types.SwapRequest) (*types.SwapQuote, error)
	ExecuteSwap(ctx context.Context, quote *types.SwapQuote) (*types.DepositInfo, error)
	GetExecutionStatus(ctx context.Context, depositAddress string) (*types.ExecutionStatus, error)
	SubmitDepositTx(ctx context.Context, txHash, depositAddress string) error
}

// Catalog combines the lookups the intent pipeline needs with the discovery
// queries the informational handlers use.
type Catalog interface {
	intent.TokenSource
	Search(ctx context.Context, query string) ([]catalog.TokenRecord, error)
	Popular(ctx context.Context, limit int) ([]catalog.TokenRecord, error)
}

// PriceSource answers spot price questions.
type PriceSource interface {
	Price(ctx context.Context, symbol string) (float64, error)
	Prices(ctx context.Context, symbols []string) (map[string]float64, error)
}

// Options configures an Engine.
type Options struct {
	// WalletAddress receives the swapped tokens. Can also be set mid
	// conversation with the "wallet" command.
	WalletAddress string
	// RefundAddress receives refunds on failure. Defaults to the wallet
	// address.
	RefundAddress string
	// Now overrides the clock, used by tests. Defaults to time.Now.
	Now func() time.Time
}

// Engine is the conversation state machine. It owns the message history and
// decides, per user turn, between confirmation handling, status checks,
// transaction submission, swap intent parsing and informational fallbacks.
// It is not safe for concurrent use.
type Engine struct {
	provider SwapProvider
	tokens   Catalog
	prices   PriceSource
	parser   *intent.Parser
	builder  *intent.Builder
	now      func() time.Time

	walletAddress string
	refundAddress string

	history []*Message
	// pending is the single message currently awaiting a yes/no answer,
	// nil when there is none.
	pending *Message
	// openSwaps are messages whose quote has a deposit address, in
	// creation order. Status and submit commands target the newest.
	openSwaps []*Message
}

var (
	yesPattern      = regexp.MustCompile(`(?i)^(yes|y|confirm|proceed|go|ok|okay|sure|absolutely|definitely|let's do it|do it)[.!]?$`)
	noPattern       = regexp.MustCompile(`(?i)^(no|n|cancel|abort|stop|don't|dont|nevermind|never mind|not now|later)[.!]?$`)
	statusPattern   = regexp.MustCompile(`(?i)^(?:check\s+)?status\b`)
	submitTxPattern = regexp.MustCompile(`(?i)submit\s+tx\s+([a-zA-Z0-9]+)`)
	pricePattern    = regexp.MustCompile(`(?i)(?:price|rate|cost)(?:\s+(?:of|for))?\s+([a-zA-Z]+)`)
	searchPattern   = regexp.MustCompile(`(?i)^(?:search|find)\s+(.+)$`)
	walletPattern   = regexp.MustCompile(`(?i)^wallet\s+(\S+)$`)
)

// NewEngine builds an engine around the given collaborators and seeds the
// history with a greeting.
func NewEngine(provider SwapProvider, tokens Catalog, prices PriceSource, opts Options) *Engine {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	refund := opts.RefundAddress
	if refund == "" {
		refund = opts.WalletAddress
	}
	e := &Engine{
		provider:      provider,
		tokens:        tokens,
		prices:        prices,
		parser:        intent.NewParser(tokens),
		builder:       intent.NewBuilder(tokens),
		now:           now,
		walletAddress: opts.WalletAddress,
		refundAddress: refund,
	}
	e.appendMessage(newMessage(RoleBot, greetingText(provider.Configured()), now()))
	return e
}

// History returns the full conversation so far, oldest first.
func (e *Engine) History() []*Message { return e.history }

// WalletAddress returns the current session wallet.
func (e *Engine) WalletAddress() string { return e.walletAddress }

// Respond processes one user turn and returns the bot reply. Both messages
// are appended to the history.
func (e *Engine) Respond(ctx context.Context, text string) *Message {
	text = strings.TrimSpace(text)
	e.appendMessage(newMessage(RoleUser, text, e.now()))
	reply := e.reply(ctx, text)
	e.appendMessage(reply)
	return reply
}

func (e *Engine) appendMessage(m *Message) {
	e.history = append(e.history, m)
}

// reply routes the turn through the fixed priority order: pending
// confirmation, status, submit tx, swap intent, then informational
// fallbacks.
func (e *Engine) reply(ctx context.Context, text string) *Message {
	if e.pending != nil {
		if yesPattern.MatchString(text) {
			return e.confirmPending(ctx)
		}
		if noPattern.MatchString(text) {
			e.clearPending()
			return newMessage(RoleBot, "Swap cancelled. Let me know when you're ready to try another one.", e.now())
		}
	}

	if statusPattern.MatchString(text) {
		return e.handleStatus(ctx)
	}
	if m := submitTxPattern.FindStringSubmatch(text); m != nil {
		return e.handleSubmitTx(ctx, m[1])
	}

	// A fresh swap request supersedes any pending decision, whether or
	// not the new text parses.
	e.clearPending()
	in, err := e.parser.Parse(ctx, text)
	if err != nil {
		logx.Error().Err(err).Msg("intent parsing failed")
		return e.errorMessage(providerErr("tokens", err))
	}
	if in != nil {
		if !in.Complete {
			return newMessage(RoleBot, incompleteText(in), e.now())
		}
		return e.quoteSwap(ctx, in)
	}

	return e.informational(ctx, text)
}

// clearPending drops every confirmation flag so at most one message can ever
// be awaiting an answer.
func (e *Engine) clearPending() {
	for _, m := range e.history {
		m.AwaitingConfirmation = false
	}
	e.pending = nil
}

func (e *Engine) errorMessage(te *turnError) *Message {
	return newMessage(RoleBot, renderError(te), e.now())
}

// confirmPending executes the quoted swap. The confirmation flag survives a
// failed execution so the user can retry with another "yes".
func (e *Engine) confirmPending(ctx context.Context) *Message {
	quote := e.pending.SwapData
	deposit, err := e.provider.ExecuteSwap(ctx, quote)
	if err != nil {
		logx.Error().Err(err).Str("quote", quote.ID).Msg("swap execution failed")
		return e.errorMessage(providerErr("execute", err))
	}

	quote.DepositAddress = deposit.Address
	quote.DepositMemo = deposit.Memo
	quote.Status = types.QuoteExecuted
	swapMsg := e.pending
	e.clearPending()
	e.openSwaps = append(e.openSwaps, swapMsg)

	m := newMessage(RoleBot, depositInstructionsText(quote), e.now())
	m.SwapData = quote
	return m
}

// activeSwap returns the newest swap that has a deposit address.
func (e *Engine) activeSwap() *Message {
	if len(e.openSwaps) == 0 {
		return nil
	}
	return e.openSwaps[len(e.openSwaps)-1]
}

func (e *Engine) handleStatus(ctx context.Context) *Message {
	active := e.activeSwap()
	if active == nil {
		return e.errorMessage(stateErr("status"))
	}
	st, err := e.provider.GetExecutionStatus(ctx, active.SwapData.DepositAddress)
	if err != nil {
		return e.errorMessage(providerErr("status", err))
	}
	return newMessage(RoleBot, statusText(active.SwapData, st), e.now())
}

func (e *Engine) handleSubmitTx(ctx context.Context, txHash string) *Message {
	active := e.activeSwap()
	if active == nil {
		if e.pending != nil {
			return e.errorMessage(stateErr("submit-unconfirmed"))
		}
		return e.errorMessage(stateErr("submit"))
	}
	quote := active.SwapData
	if err := wallet.ValidateTxHash(quote.FromChain, txHash); err != nil {
		return e.errorMessage(inputErr("submit", err))
	}
	if err := e.provider.SubmitDepositTx(ctx, txHash, quote.DepositAddress); err != nil {
		return e.errorMessage(providerErr("submit", err))
	}
	return newMessage(RoleBot, txSubmittedText(quote, txHash), e.now())
}

// quoteSwap builds the provider request from a complete intent and fetches a
// quote. Without provider credentials the reply degrades to a preview that
// cannot be confirmed.
func (e *Engine) quoteSwap(ctx context.Context, in *intent.Intent) *Message {
	req, err := e.builder.Build(ctx, in)
	if err != nil {
		return e.errorMessage(providerErr("quote", err))
	}

	if !e.provider.Configured() {
		m := newMessage(RoleBot, previewText(req), e.now())
		m.SwapData = previewQuote(req, e.now)
		return m
	}

	if e.walletAddress == "" {
		return newMessage(RoleBot, "I need a wallet address to quote this swap. Tell me with:\n\nwallet <your address>", e.now())
	}
	req.Recipient = e.walletAddress
	req.RefundTo = e.refundAddress

	quote, err := e.provider.GetQuote(ctx, req)
	if err != nil {
		logx.Error().Err(err).Msg("quote request failed")
		return e.errorMessage(providerErr("quote", err))
	}
	quote.WalletAddress = e.walletAddress

	m := newMessage(RoleBot, quoteText(quote), e.now())
	m.SwapData = quote
	m.AwaitingConfirmation = true
	e.pending = m
	return m
}

func previewQuote(req *types.SwapRequest, now func() time.Time) *types.SwapQuote {
	return &types.SwapQuote{
		FromToken:   req.FromToken,
		ToToken:     req.ToToken,
		FromChain:   req.FromChain,
		ToChain:     req.ToChain,
		FromAmount:  req.AmountFormatted,
		ToAmount:    "0",
		SlippageBps: req.SlippageBps,
		Deadline:    now().Add(24 * time.Hour),
		Status:      types.QuotePending,
		Preview:     true,
		Request:     req,
	}
}

// informational handles everything that is not a swap: prices, token
// discovery, wallet updates and help.
func (e *Engine) informational(ctx context.Context, text string) *Message {
	lower := strings.ToLower(text)

	if m := walletPattern.FindStringSubmatch(text); m != nil {
		return e.setWallet(m[1])
	}

	if strings.Contains(lower, "price") || strings.Contains(lower, "rate") {
		return e.handlePrice(ctx, text)
	}

	if m := searchPattern.FindStringSubmatch(text); m != nil {
		return e.handleSearch(ctx, m[1])
	}
	if lower == "tokens" || strings.Contains(lower, "supported tokens") || strings.Contains(lower, "which tokens") {
		return e.handlePopular(ctx)
	}

	if strings.Contains(lower, "help") || strings.Contains(lower, "what can you do") {
		return newMessage(RoleBot, helpText(), e.now())
	}

	return newMessage(RoleBot, clarificationText(), e.now())
}

func (e *Engine) setWallet(address string) *Message {
	if strings.HasPrefix(address, "0x") {
		if err := wallet.ValidateAddress("eth", address); err != nil {
			return e.errorMessage(inputErr("wallet", err))
		}
	}
	e.walletAddress = address
	if e.refundAddress == "" {
		e.refundAddress = address
	}
	return newMessage(RoleBot, "Got it, I'll send swapped tokens to "+address+".", e.now())
}

func (e *Engine) handlePrice(ctx context.Context, text string) *Message {
	if m := pricePattern.FindStringSubmatch(text); m != nil {
		symbol := strings.ToUpper(m[1])
		if symbol != "OF" && symbol != "FOR" {
			p, err := e.prices.Price(ctx, symbol)
			if err != nil {
				return e.errorMessage(providerErr("price", err))
			}
			return newMessage(RoleBot, singlePriceText(symbol, p), e.now())
		}
	}
	prices, err := e.prices.Prices(ctx, []string{"ETH", "USDC", "SOL", "BTC"})
	if err != nil {
		return e.errorMessage(providerErr("price", err))
	}
	return newMessage(RoleBot, priceListText(prices), e.now())
}

func (e *Engine) handleSearch(ctx context.Context, query string) *Message {
	tokens, err := e.tokens.Search(ctx, strings.TrimSpace(query))
	if err != nil {
		return e.errorMessage(providerErr("tokens", err))
	}
	return newMessage(RoleBot, searchResultsText(query, tokens), e.now())
}

func (e *Engine) handlePopular(ctx context.Context) *Message {
	tokens, err := e.tokens.Popular(ctx, 10)
	if err != nil {
		return e.errorMessage(providerErr("tokens", err))
	}
	return newMessage(RoleBot, popularTokensText(tokens), e.now())
}
