package chat

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"inti-swap/pkg/catalog"
	"inti-swap/pkg/intent"
	"inti-swap/pkg/price"
	"inti-swap/pkg/types"
)

func greetingText(configured bool) string {
	var b strings.Builder
	b.WriteString("Hi! I can swap tokens across chains for you. Tell me what you'd like, for example:\n\n")
	b.WriteString("  \"swap 0.1 ETH on ethereum to USDC on arbitrum\"\n")
	b.WriteString("  \"convert 100 USDC to SOL\"\n\n")
	b.WriteString("You can also ask for prices (\"price of ETH\"), search tokens (\"find usdc\") or type \"help\".")
	if !configured {
		b.WriteString("\n\nNote: no API token is configured, so quotes run in preview mode and can't be executed.")
	}
	return b.String()
}

func helpText() string {
	return strings.Join([]string{
		"Here's what I can do:",
		"",
		"  Swap tokens      \"swap 0.1 ETH on ethereum to USDC on arbitrum\"",
		"  Check prices     \"price of SOL\" or just \"prices\"",
		"  Find tokens      \"find usdc\" or \"tokens\"",
		"  Check a swap     \"status\"",
		"  Report deposit   \"submit tx <hash>\"",
		"  Set your wallet  \"wallet <address>\"",
		"",
		"Amounts, tokens and chains can be phrased naturally; I'll ask when something is missing.",
	}, "\n")
}

func clarificationText() string {
	return "I didn't catch a swap in that. Try something like \"swap 0.1 ETH on ethereum to USDC on arbitrum\", or type \"help\" to see what I can do."
}

// incompleteText asks for the missing pieces of a partially parsed intent and
// suggests a fully qualified follow-up.
func incompleteText(in *intent.Intent) string {
	var b strings.Builder
	b.WriteString("Almost there! I still need:\n\n")
	for _, m := range in.MissingInfo {
		b.WriteString("  • " + m + "\n")
	}
	b.WriteString("\nTry being fully explicit, for example:\n\n")
	amount := in.Amount
	if amount == "" {
		amount = "0.1"
	}
	from := in.FromToken
	if from == "" {
		from = "ETH"
	}
	to := in.ToToken
	if to == "" {
		to = "USDC"
	}
	fromChain := in.FromChain
	if fromChain == "" {
		fromChain = "<chain>"
	}
	toChain := in.ToChain
	if toChain == "" {
		toChain = "<chain>"
	}
	fmt.Fprintf(&b, "  \"swap %s %s on %s to %s on %s\"", amount, from, fromChain, to, toChain)
	return b.String()
}

func quoteText(q *types.SwapQuote) string {
	var b strings.Builder
	b.WriteString("Here's your quote:\n\n")
	fmt.Fprintf(&b, "  You send     %s %s on %s\n", q.FromAmount, q.FromToken, q.FromChain)
	fmt.Fprintf(&b, "  You receive  %s %s on %s\n", q.ToAmount, q.ToToken, q.ToChain)
	if q.MinAmountOut != "" {
		fmt.Fprintf(&b, "  Minimum out  %s %s\n", q.MinAmountOut, q.ToToken)
	}
	fmt.Fprintf(&b, "  Slippage     %.2f%%\n", float64(q.SlippageBps)/100)
	if q.AmountInUsd != "" && q.AmountOutUsd != "" {
		fmt.Fprintf(&b, "  Value        $%s -> $%s\n", q.AmountInUsd, q.AmountOutUsd)
	}
	if q.TimeEstimateSeconds > 0 {
		fmt.Fprintf(&b, "  Est. time    %s\n", formatDuration(q.TimeEstimateSeconds))
	}
	if !q.Deadline.IsZero() {
		fmt.Fprintf(&b, "  Valid until  %s\n", q.Deadline.Format(time.RFC1123))
	}
	b.WriteString("\nShall I proceed? (yes/no)")
	return b.String()
}

func previewText(req *types.SwapRequest) string {
	var b strings.Builder
	b.WriteString("Here's a preview of your swap:\n\n")
	fmt.Fprintf(&b, "  You send  %s %s on %s\n", req.AmountFormatted, req.FromToken, req.FromChain)
	fmt.Fprintf(&b, "  For       %s on %s\n", req.ToToken, req.ToChain)
	fmt.Fprintf(&b, "  Slippage  %.2f%%\n", float64(req.SlippageBps)/100)
	b.WriteString("\nNo API token is configured, so I can't fetch a live rate or execute this swap. Set one up and ask again to get a real quote.")
	return b.String()
}

func depositInstructionsText(q *types.SwapQuote) string {
	var b strings.Builder
	b.WriteString("Swap started! To complete it:\n\n")
	fmt.Fprintf(&b, "  1. Send %s %s on %s to:\n\n     %s\n", q.FromAmount, q.FromToken, q.FromChain, q.DepositAddress)
	if q.DepositMemo != "" {
		fmt.Fprintf(&b, "\n     Memo (required): %s\n", q.DepositMemo)
	}
	b.WriteString("\n  2. Once sent, tell me the transaction hash:\n\n     submit tx <hash>\n")
	fmt.Fprintf(&b, "\nYou'll receive %s %s at %s. I'll track progress; ask me for \"status\" anytime.", q.ToAmount, q.ToToken, q.WalletAddress)
	if !q.Deadline.IsZero() {
		fmt.Fprintf(&b, "\nDeposit before %s or the swap expires.", q.Deadline.Format(time.RFC1123))
	}
	return b.String()
}

func statusText(q *types.SwapQuote, st *types.ExecutionStatus) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Your %s -> %s swap: %s\n", q.FromToken, q.ToToken, st.Summary)
	if st.Progress != "" {
		b.WriteString("\n" + st.Progress + "\n")
	}
	if st.AmountIn != "" {
		fmt.Fprintf(&b, "\n  In   %s %s", st.AmountIn, q.FromToken)
	}
	if st.AmountOut != "" {
		fmt.Fprintf(&b, "\n  Out  %s %s", st.AmountOut, q.ToToken)
	}
	if len(st.DestinationTxHashes) > 0 {
		fmt.Fprintf(&b, "\n  Tx   %s", strings.Join(st.DestinationTxHashes, ", "))
	}
	return b.String()
}

func txSubmittedText(q *types.SwapQuote, txHash string) string {
	return fmt.Sprintf(
		"Transaction %s submitted. The swap will finish once your deposit confirms; you'll receive %s %s at %s.\n\nAsk me for \"status\" to follow along.",
		txHash, q.ToAmount, q.ToToken, q.WalletAddress)
}

func singlePriceText(symbol string, p float64) string {
	return fmt.Sprintf("%s is currently trading at %s.", symbol, price.Format(p))
}

func priceListText(prices map[string]float64) string {
	symbols := make([]string, 0, len(prices))
	for s := range prices {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	var b strings.Builder
	b.WriteString("Current prices:\n")
	for _, s := range symbols {
		fmt.Fprintf(&b, "\n  %-5s %s", s, price.Format(prices[s]))
	}
	return b.String()
}

func searchResultsText(query string, tokens []catalog.TokenRecord) string {
	if len(tokens) == 0 {
		return fmt.Sprintf("No tokens matched %q. Try \"tokens\" to see the most traded ones.", strings.TrimSpace(query))
	}
	if len(tokens) > 10 {
		tokens = tokens[:10]
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d token(s):\n", len(tokens))
	for _, t := range tokens {
		fmt.Fprintf(&b, "\n  %-6s on %-10s", t.Symbol, t.Blockchain)
		if t.PriceUSD > 0 {
			b.WriteString(" " + price.Format(t.PriceUSD))
		}
	}
	return b.String()
}

func popularTokensText(tokens []catalog.TokenRecord) string {
	if len(tokens) == 0 {
		return "I couldn't find any tokens right now. Please try again in a moment."
	}
	var b strings.Builder
	b.WriteString("Most traded tokens:\n")
	for _, t := range tokens {
		fmt.Fprintf(&b, "\n  %-6s on %-10s %s", t.Symbol, t.Blockchain, price.Format(t.PriceUSD))
	}
	b.WriteString("\n\nSwap any of them, e.g. \"swap 0.1 ETH on ethereum to USDC on arbitrum\".")
	return b.String()
}

func formatDuration(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second)).Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
}
