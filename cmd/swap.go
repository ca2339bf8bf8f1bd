package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"inti-swap/config"
	"inti-swap/pkg/catalog"
	"inti-swap/pkg/client"
	"inti-swap/pkg/intent"
	"inti-swap/pkg/types"
)

var (
	fromChain     string
	toChain       string
	recipientAddr string
	refundAddr    string
	slippagePct   float64
	noConfirm     bool
)

var swapCmd = &cobra.Command{
	Use:   "swap <amount> <source-token> to <dest-token>",
	Short: "Perform a cross-chain token swap",
	Long: `Swap tokens across different blockchains using the NEAR Intents 1Click API.

The swap is described in plain English, the same way the chat understands it.
Chains can be given inline ("0.1 ETH on ethereum to USDC on arbitrum") or via
flags.

IMPORTANT:
  - You MUST provide a recipient (--recipient or wallet_address in config)
  - You SHOULD provide --refund-to for cross-chain swaps

Examples:
  # Chains inline
  inti-swap swap 0.1 ETH on ethereum to USDC on arbitrum --recipient 0x123...

  # Chains via flags
  inti-swap swap 1 SOL to USDC --from-chain sol --to-chain arb --recipient 0x123...

  # Skip the confirmation prompt
  inti-swap swap 1 SOL to USDC --from-chain sol --to-chain arb --recipient 0x123... --yes`,
	Args: cobra.MinimumNArgs(1),
	Run:  runSwap,
}

func init() {
	rootCmd.AddCommand(swapCmd)

	swapCmd.Flags().StringVar(&fromChain, "from-chain", "", "Source blockchain (optional if given inline)")
	swapCmd.Flags().StringVar(&toChain, "to-chain", "", "Destination blockchain (optional if given inline)")
	swapCmd.Flags().StringVar(&recipientAddr, "recipient", "", "Recipient address (where you'll receive tokens)")
	swapCmd.Flags().StringVar(&refundAddr, "refund-to", "", "Refund address on source chain (optional)")
	swapCmd.Flags().Float64Var(&slippagePct, "slippage", 0, "Slippage tolerance in percent (default 1.0)")
	swapCmd.Flags().BoolVarP(&noConfirm, "yes", "y", false, "Skip confirmation prompt")
}

func runSwap(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	tokens := catalog.NewService(cfg.CatalogURL, nil, nil)
	parser := intent.NewParser(tokens)

	in, err := parseSwapArgs(ctx, parser, args)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	if !in.Complete {
		fmt.Println("\nThe swap description is incomplete:")
		for _, m := range in.MissingInfo {
			fmt.Printf("  - %s\n", m)
		}
		fmt.Println("\nAdd the missing parts inline or via --from-chain / --to-chain.")
		os.Exit(1)
	}
	if slippagePct > 0 {
		in.SlippageBps = uint(math.Round(slippagePct * 100))
	}

	req, err := intent.NewBuilder(tokens).Build(ctx, in)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	req.Recipient = recipientAddr
	if req.Recipient == "" {
		req.Recipient = cfg.WalletAddress
	}
	if req.Recipient == "" {
		printError(fmt.Errorf("a recipient is required: pass --recipient or set wallet_address in config"))
		os.Exit(1)
	}
	req.RefundTo = refundAddr
	if req.RefundTo == "" {
		req.RefundTo = cfg.RefundAddress
	}

	apiClient := client.NewOneClickClient(cfg.JWTToken, cfg.BaseURL)
	if !apiClient.Configured() {
		displayPreview(req)
		color.Yellow("%s\n", config.TokenHint())
		return
	}

	// Get quote with spinner
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Fetching quote..."
		s.Start()
	}

	quote, err := apiClient.GetQuote(ctx, req)
	if !jsonOutput {
		s.Stop()
	}

	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		output := map[string]interface{}{
			"from_amount":       quote.FromAmount,
			"from_token":        quote.FromToken,
			"from_chain":        quote.FromChain,
			"to_amount":         quote.ToAmount,
			"to_token":          quote.ToToken,
			"to_chain":          quote.ToChain,
			"min_amount_out":    quote.MinAmountOut,
			"slippage_bps":      quote.SlippageBps,
			"time_estimate_sec": quote.TimeEstimateSeconds,
			"deadline":          quote.Deadline,
			"status":            "quote_generated",
		}
		jsonData, _ := json.MarshalIndent(output, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	displaySwapQuote(quote)

	// Ask for confirmation
	if !noConfirm {
		if !confirmSwap() {
			fmt.Println("\nSwap cancelled.")
			os.Exit(0)
		}
	}

	s = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " Starting swap..."
	s.Start()
	deposit, err := apiClient.ExecuteSwap(ctx, quote)
	s.Stop()

	if err != nil {
		printError(err)
		os.Exit(1)
	}

	displayDepositInstructions(quote, deposit)

	fmt.Println("\nYou can monitor the swap status using:")
	color.Cyan("  inti-swap status %s\n", deposit.Address)
}

// parseSwapArgs parses the free-text swap description. Chain flags are folded
// back into a canonical phrasing so they go through the same validation as
// inline chains.
func parseSwapArgs(ctx context.Context, parser *intent.Parser, args []string) (*intent.Intent, error) {
	text := "swap " + strings.Join(args, " ")

	in, err := parser.Parse(ctx, text)
	if err != nil {
		return nil, err
	}
	if in == nil {
		return nil, fmt.Errorf("could not understand the swap description %q", strings.Join(args, " "))
	}

	if fromChain == "" && toChain == "" {
		return in, nil
	}

	fc := intent.NormalizeChain(fromChain)
	if fc == "" {
		fc = in.FromChain
	}
	tc := intent.NormalizeChain(toChain)
	if tc == "" {
		tc = in.ToChain
	}
	if in.Amount == "" || in.FromToken == "" || in.ToToken == "" || fc == "" || tc == "" {
		return in, nil
	}

	canonical := fmt.Sprintf("swap %s %s on %s to %s on %s", in.Amount, in.FromToken, fc, in.ToToken, tc)
	reparsed, err := parser.Parse(ctx, canonical)
	if err != nil {
		return nil, err
	}
	if reparsed == nil {
		return in, nil
	}
	reparsed.SlippageBps = in.SlippageBps
	return reparsed, nil
}

func displaySwapQuote(quote *types.SwapQuote) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                     SWAP QUOTE")
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\n  From:              %s %s on %s\n", quote.FromAmount, color.YellowString(quote.FromToken), quote.FromChain)
	fmt.Printf("  To:                ~%s %s on %s\n", quote.ToAmount, color.YellowString(quote.ToToken), quote.ToChain)
	if quote.MinAmountOut != "" {
		fmt.Printf("  Minimum Out:       %s %s\n", quote.MinAmountOut, quote.ToToken)
	}
	fmt.Printf("  Slippage:          %.2f%%\n", float64(quote.SlippageBps)/100)
	if quote.TimeEstimateSeconds > 0 {
		fmt.Printf("  Estimated Time:    %.0f seconds\n", quote.TimeEstimateSeconds)
	}
	if !quote.Deadline.IsZero() {
		fmt.Printf("  Valid Until:       %s\n", quote.Deadline.Format("2006-01-02 15:04:05"))
	}

	fmt.Println("\n" + strings.Repeat("=", 60) + "\n")
}

func displayPreview(req *types.SwapRequest) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Yellow("                  SWAP PREVIEW (no API token)")
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\n  From:              %s %s on %s\n", req.AmountFormatted, color.YellowString(req.FromToken), req.FromChain)
	fmt.Printf("  To:                %s on %s\n", color.YellowString(req.ToToken), req.ToChain)
	fmt.Printf("  Slippage:          %.2f%%\n", float64(req.SlippageBps)/100)

	fmt.Println("\n" + strings.Repeat("=", 60) + "\n")
}

func displayDepositInstructions(quote *types.SwapQuote, deposit *types.DepositInfo) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Yellow("                 DEPOSIT INSTRUCTIONS")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("\nTo complete the swap, send %s %s to:\n\n", quote.FromAmount, quote.FromToken)
	color.Cyan("  %s\n", deposit.Address)

	if deposit.Memo != "" {
		fmt.Printf("\nMemo (REQUIRED): %s\n", color.MagentaString(deposit.Memo))
	}

	fmt.Printf("\nOnce sent, report the transaction with:\n")
	color.Cyan("  inti-swap submit-tx %s <tx-hash>\n", deposit.Address)

	fmt.Println("\n" + strings.Repeat("=", 60) + "\n")
}

func confirmSwap() bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print("\nProceed with swap? (y/N): ")

	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
