package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"inti-swap/pkg/logx"
)

var rootCmd = &cobra.Command{
	Use:   "inti-swap",
	Short: "A conversational CLI for cross-chain swaps using the NEAR Intents 1Click API",
	Long: `inti-swap turns plain English into cross-chain token swaps via the NEAR
Intents 1Click API. Describe the swap you want, review the quote, confirm, and
follow the deposit instructions.

Examples:
  inti-swap chat
  inti-swap swap 0.1 ETH on ethereum to USDC on arbitrum --recipient 0x123...
  inti-swap list-tokens --chain arb
  inti-swap price ETH SOL
  inti-swap status <deposit-address> --watch`,
	Version: "0.1.0",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		logx.Init(verbose)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
}

func printError(err error) {
	fmt.Printf("\nError: %v\n\n", err)
}

func printSuccess(message string) {
	fmt.Printf("\n%s\n\n", message)
}
