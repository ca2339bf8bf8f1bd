package intent

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"strings"

	"inti-swap/pkg/catalog"
	"inti-swap/pkg/logx"
)

// Confidence grades how trustworthy a parsed intent is.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Intent is the structured representation of a user's desired swap,
// extracted from free text and validated against the token catalog.
// MissingInfo lists, in order, what still prevents the swap from being
// quoted; Complete holds iff it is empty and both chains are resolved.
type Intent struct {
	FromToken string
	ToToken   string
	FromChain string
	ToChain   string
	Amount    string

	// SlippageBps is 0 when the user gave no slippage clause.
	SlippageBps uint

	Complete    bool
	MissingInfo []string
	Confidence  Confidence
}

// TokenSource is the catalog capability the parser and builder need.
type TokenSource interface {
	BySymbol(ctx context.Context, symbol string) ([]catalog.TokenRecord, error)
	ChainsForSymbol(ctx context.Context, symbol string) ([]string, error)
	Lookup(ctx context.Context, symbol, chain string) (*catalog.TokenRecord, error)
}

// Parser extracts swap intents from free text. Extraction is a cheap
// regex pass; a second pass validates and completes the result against the
// token catalog so partial input becomes actionable guidance instead of a
// hard failure.
type Parser struct {
	tokens TokenSource
}

func NewParser(tokens TokenSource) *Parser {
	return &Parser{tokens: tokens}
}

var triggerWords = []string{"swap", "exchange", "trade", "convert", "change"}

// Ordered templates; the first match wins. Each captures
// (amount, fromToken, toToken).
var swapPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)swap\s+([\d.]+)\s+(\w+)\s+for\s+(\w+)`),
	regexp.MustCompile(`(?i)swap\s+([\d.]+)\s+(\w+)\s+to\s+(\w+)`),
	regexp.MustCompile(`(?i)swap\s+([\d.]+)\s+(\w+)\s+on\s+\w+\s+to\s+(\w+)\s+on\s+\w+`),
	regexp.MustCompile(`(?i)exchange\s+([\d.]+)\s+(\w+)\s+to\s+(\w+)`),
	regexp.MustCompile(`(?i)exchange\s+([\d.]+)\s+(\w+)\s+for\s+(\w+)`),
	regexp.MustCompile(`(?i)trade\s+([\d.]+)\s+(\w+)\s+for\s+(\w+)`),
	regexp.MustCompile(`(?i)trade\s+([\d.]+)\s+(\w+)\s+to\s+(\w+)`),
	regexp.MustCompile(`(?i)convert\s+([\d.]+)\s+(\w+)\s+to\s+(\w+)`),
	regexp.MustCompile(`(?i)convert\s+([\d.]+)\s+(\w+)\s+for\s+(\w+)`),
	regexp.MustCompile(`(?i)^([\d.]+)\s+(\w+)\s+to\s+(\w+)$`),
	regexp.MustCompile(`(?i)^([\d.]+)\s+(\w+)\s+for\s+(\w+)$`),
}

var slippagePattern = regexp.MustCompile(`(?i)(?:slippage|slippage tolerance)\s*:?\s*([\d.]+)%?`)

// Chain mentions only count when introduced by on/from/to, so token symbols
// like ETH are not mistaken for chains ("ethereum" is listed, "eth" is not).
const chainAlternation = `(ethereum|arbitrum|arb|polygon|pol|solana|sol|base|optimism|op|bsc|binance|avax|avalanche|near|sui|ton|stellar|tron|aptos|cardano|btc|bitcoin|doge|dogecoin|xrp|ripple|zec|zcash|bera)`

var (
	chainMentionPattern = regexp.MustCompile(`(?i)(?:on|from|to)\s+` + chainAlternation)
	chainOnlyPattern    = regexp.MustCompile(`(?i)(?:on\s+)?` + chainAlternation)
)

var chainAliases = map[string]string{
	"ethereum":  "eth",
	"eth":       "eth",
	"arbitrum":  "arb",
	"arb":       "arb",
	"polygon":   "pol",
	"pol":       "pol",
	"solana":    "sol",
	"sol":       "sol",
	"base":      "base",
	"optimism":  "op",
	"op":        "op",
	"binance":   "bsc",
	"bsc":       "bsc",
	"avalanche": "avax",
	"avax":      "avax",
	"near":      "near",
	"sui":       "sui",
	"ton":       "ton",
	"stellar":   "stellar",
	"tron":      "tron",
	"aptos":     "aptos",
	"cardano":   "cardano",
	"bitcoin":   "btc",
	"btc":       "btc",
	"dogecoin":  "doge",
	"doge":      "doge",
	"ripple":    "xrp",
	"xrp":       "xrp",
	"zcash":     "zec",
	"zec":       "zec",
	"bera":      "bera",
}

// NormalizeChain maps a chain name or alias to its canonical short code.
func NormalizeChain(name string) string {
	name = strings.ToLower(name)
	if canonical, ok := chainAliases[name]; ok {
		return canonical
	}
	return name
}

// Parse extracts a swap intent from free text and validates it against the
// catalog. It returns (nil, nil) when the text is not a swap request at all;
// an error is only returned when the catalog is unreachable.
func (p *Parser) Parse(ctx context.Context, text string) (*Intent, error) {
	lower := strings.ToLower(text)

	if !hasTriggerWord(lower) {
		return nil, nil
	}

	basic := extractBasicInfo(text)
	if basic == nil {
		logx.Debug().Str("text", text).Msg("swap trigger without a recognizable phrase")
		return nil, nil
	}

	fromChain, toChain := extractChains(text)

	in := &Intent{
		FromToken:   basic.fromToken,
		ToToken:     basic.toToken,
		FromChain:   fromChain,
		ToChain:     toChain,
		Amount:      basic.amount,
		SlippageBps: basic.slippageBps,
		Confidence:  ConfidenceMedium,
	}

	if err := p.validateAndComplete(ctx, in); err != nil {
		return nil, err
	}
	return in, nil
}

func hasTriggerWord(lower string) bool {
	for _, w := range triggerWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

type basicInfo struct {
	amount      string
	fromToken   string
	toToken     string
	slippageBps uint
}

func extractBasicInfo(text string) *basicInfo {
	for _, pattern := range swapPatterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		info := &basicInfo{
			amount:    m[1],
			fromToken: strings.ToUpper(m[2]),
			toToken:   strings.ToUpper(m[3]),
		}

		// The slippage clause is independent of the swap phrasing.
		if sm := slippagePattern.FindStringSubmatch(text); sm != nil {
			if pct, err := strconv.ParseFloat(sm[1], 64); err == nil {
				info.slippageBps = uint(math.Round(pct * 100))
			}
		}
		return info
	}
	return nil
}

// extractChains finds chain mentions and resolves which side each belongs
// to. With two mentions the chain named after the literal " to " is the
// destination; with more the substrings around the first " to " are
// consulted, falling back to first/last. A single mention is treated as the
// source only, since its direction is ambiguous.
func extractChains(text string) (fromChain, toChain string) {
	matches := chainMentionPattern.FindAllStringSubmatch(text, -1)
	chains := make([]string, 0, len(matches))
	for _, m := range matches {
		chains = append(chains, NormalizeChain(m[1]))
	}

	switch {
	case len(chains) == 0:
		return "", ""

	case len(chains) == 1:
		return chains[0], ""

	case len(chains) == 2:
		if to := chainAfterTo(text); to != "" {
			for _, c := range chains {
				if c != to {
					return c, to
				}
			}
		}
		return chains[0], chains[1]

	default:
		toIdx := strings.Index(strings.ToLower(text), " to ")
		if toIdx != -1 {
			to := matchChain(text[toIdx+4:])
			from := matchChain(text[:toIdx])
			if to != "" && from != "" {
				return from, to
			}
		}
		return chains[0], chains[len(chains)-1]
	}
}

func chainAfterTo(text string) string {
	toIdx := strings.Index(strings.ToLower(text), " to ")
	if toIdx == -1 {
		return ""
	}
	return matchChain(text[toIdx+4:])
}

func matchChain(s string) string {
	m := chainOnlyPattern.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return NormalizeChain(m[1])
}

// validateAndComplete fills in auto-resolvable chains and records whatever
// still blocks the intent. Unknown tokens, chain mismatches and bad amounts
// force low confidence; missing-but-resolvable information leaves it medium.
func (p *Parser) validateAndComplete(ctx context.Context, in *Intent) error {
	var missing []string

	fromTokens, err := p.tokens.BySymbol(ctx, in.FromToken)
	if err != nil {
		return err
	}
	toTokens, err := p.tokens.BySymbol(ctx, in.ToToken)
	if err != nil {
		return err
	}

	if len(fromTokens) == 0 {
		missing = append(missing, `Token "`+in.FromToken+`" not found`)
		in.Confidence = ConfidenceLow
	}
	if len(toTokens) == 0 {
		missing = append(missing, `Token "`+in.ToToken+`" not found`)
		in.Confidence = ConfidenceLow
	}

	if len(fromTokens) > 0 && len(toTokens) > 0 {
		fromChains := uniqueChains(fromTokens)
		toChains := uniqueChains(toTokens)

		if in.FromChain != "" && !contains(fromChains, in.FromChain) {
			missing = append(missing, `Chain "`+in.FromChain+`" not available for `+in.FromToken)
			in.Confidence = ConfidenceLow
		}
		if in.ToChain != "" && !contains(toChains, in.ToChain) {
			missing = append(missing, `Chain "`+in.ToChain+`" not available for `+in.ToToken)
			in.Confidence = ConfidenceLow
		}

		if in.FromChain == "" && len(fromChains) > 1 {
			missing = append(missing, "Please specify source chain for "+in.FromToken+" (available: "+strings.Join(fromChains, ", ")+")")
		}
		if in.ToChain == "" && len(toChains) > 1 {
			missing = append(missing, "Please specify destination chain for "+in.ToToken+" (available: "+strings.Join(toChains, ", ")+")")
		}

		if in.FromChain == "" && len(fromChains) == 1 {
			in.FromChain = fromChains[0]
			logx.Debug().Str("chain", in.FromChain).Str("token", in.FromToken).Msg("auto-selected source chain")
		}
		if in.ToChain == "" && len(toChains) == 1 {
			in.ToChain = toChains[0]
			logx.Debug().Str("chain", in.ToChain).Str("token", in.ToToken).Msg("auto-selected destination chain")
		}
	}

	amount, err := strconv.ParseFloat(in.Amount, 64)
	if err != nil || amount <= 0 {
		missing = append(missing, "Invalid amount specified")
		in.Confidence = ConfidenceLow
	}

	in.MissingInfo = missing
	in.Complete = len(missing) == 0 && in.FromChain != "" && in.ToChain != ""

	if in.Complete {
		in.Confidence = ConfidenceHigh
	}
	return nil
}

func uniqueChains(tokens []catalog.TokenRecord) []string {
	seen := make(map[string]bool)
	var chains []string
	for _, t := range tokens {
		chain := strings.ToLower(t.Blockchain)
		if !seen[chain] {
			seen[chain] = true
			chains = append(chains, chain)
		}
	}
	return chains
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
