package types

import "time"

// QuoteStatus tracks a quote through its lifecycle.
type QuoteStatus string

const (
	QuotePending  QuoteStatus = "pending"
	QuoteExecuted QuoteStatus = "executed"
	QuoteFailed   QuoteStatus = "failed"
)

// SwapRequest is a provider-ready swap request. It is produced by the
// intent builder from a complete intent: both (symbol, chain) pairs resolved
// to asset identifiers and the amount converted to the origin token's
// smallest unit.
type SwapRequest struct {
	FromToken string
	ToToken   string
	FromChain string
	ToChain   string

	OriginAsset      string
	DestinationAsset string

	// Amount in the origin token's smallest unit, AmountFormatted as the
	// user typed it.
	Amount          string
	AmountFormatted string

	SlippageBps uint

	// Destination token decimals, used to format minAmountOut for display.
	DestDecimals uint

	Recipient string
	RefundTo  string
}

// SwapQuote is the result of a quote call. DepositAddress is set only after
// the swap has been executed (dry=false).
type SwapQuote struct {
	ID           string
	FromToken    string
	ToToken      string
	FromChain    string
	ToChain      string
	FromAmount   string
	ToAmount     string
	MinAmountOut string
	SlippageBps  uint

	DepositAddress string
	DepositMemo    string
	DepositAsset   string

	Deadline time.Time
	Status   QuoteStatus

	AmountInUsd         string
	AmountOutUsd        string
	TimeEstimateSeconds float64

	WalletAddress string

	// Preview marks a quote produced without provider access (no API token
	// configured); ToAmount is zero and the quote cannot be executed.
	Preview bool

	// Request is the provider request this quote was priced from, re-issued
	// verbatim on execution.
	Request *SwapRequest
}

// DepositInfo is returned by a successful execution call.
type DepositInfo struct {
	Address string
	Memo    string
}

// ExecutionStatus is the provider's view of an in-flight swap, mapped to
// user-facing text.
type ExecutionStatus struct {
	Status   string
	Summary  string
	Progress string

	AmountIn  string
	AmountOut string

	OriginTxHashes      []string
	DestinationTxHashes []string

	UpdatedAt time.Time
}
