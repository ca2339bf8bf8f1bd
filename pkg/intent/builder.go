package intent

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"inti-swap/pkg/types"
)

// DefaultSlippageBps is applied when the user gave no slippage clause (1%).
const DefaultSlippageBps = 100

// Builder turns a complete intent into a provider-ready swap request.
type Builder struct {
	tokens TokenSource
}

func NewBuilder(tokens TokenSource) *Builder {
	return &Builder{tokens: tokens}
}

// Build resolves both (symbol, chain) pairs to asset identifiers and
// converts the amount to the origin token's smallest unit. The intent must
// be complete; the lookups are still checked defensively since the catalog
// may have refreshed since validation.
func (b *Builder) Build(ctx context.Context, in *Intent) (*types.SwapRequest, error) {
	if in == nil {
		return nil, fmt.Errorf("no intent to build")
	}
	if !in.Complete {
		return nil, fmt.Errorf("intent is incomplete: %d open question(s)", len(in.MissingInfo))
	}

	from, err := b.tokens.Lookup(ctx, in.FromToken, in.FromChain)
	if err != nil {
		return nil, fmt.Errorf("source token error: %w", err)
	}
	to, err := b.tokens.Lookup(ctx, in.ToToken, in.ToChain)
	if err != nil {
		return nil, fmt.Errorf("destination token error: %w", err)
	}

	amount, err := SmallestUnit(in.Amount, from.Decimals)
	if err != nil {
		return nil, err
	}

	slippage := in.SlippageBps
	if slippage == 0 {
		slippage = DefaultSlippageBps
	}

	return &types.SwapRequest{
		FromToken:        in.FromToken,
		ToToken:          in.ToToken,
		FromChain:        in.FromChain,
		ToChain:          in.ToChain,
		OriginAsset:      from.AssetID,
		DestinationAsset: to.AssetID,
		Amount:           amount,
		AmountFormatted:  in.Amount,
		SlippageBps:      slippage,
		DestDecimals:     to.Decimals,
	}, nil
}

// SmallestUnit converts a human decimal amount to the token's integer
// base-unit representation. Fractions beyond the token's precision are
// truncated toward zero.
func SmallestUnit(amount string, decimals uint) (string, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return "", fmt.Errorf("invalid amount: %w", err)
	}
	if d.Sign() <= 0 {
		return "", fmt.Errorf("amount must be greater than 0")
	}
	return d.Shift(int32(decimals)).Truncate(0).String(), nil
}

// FromSmallestUnit renders an integer base-unit amount as a human decimal
// string, used to format the provider's minAmountOut.
func FromSmallestUnit(amount string, decimals uint) (string, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return "", fmt.Errorf("invalid base-unit amount: %w", err)
	}
	return d.Shift(-int32(decimals)).String(), nil
}
