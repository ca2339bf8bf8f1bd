package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"inti-swap/config"
	"inti-swap/pkg/price"
)

var priceCmd = &cobra.Command{
	Use:   "price [symbols...]",
	Short: "Show current token prices",
	Long: `Show current USD prices for one or more tokens. Without arguments a
default set of popular tokens is shown.

Examples:
  inti-swap price
  inti-swap price ETH
  inti-swap price ETH SOL BTC`,
	Run: runPrice,
}

func init() {
	rootCmd.AddCommand(priceCmd)
}

func runPrice(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	symbols := args
	if len(symbols) == 0 {
		symbols = []string{"ETH", "USDC", "SOL", "BTC"}
	}
	for i, sym := range symbols {
		symbols[i] = strings.ToUpper(sym)
	}

	prices := price.NewService(cfg.PriceURL, nil, nil)

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Fetching prices..."
		s.Start()
	}

	result, err := prices.Prices(context.Background(), symbols)
	if !jsonOutput {
		s.Stop()
	}

	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	fmt.Println()
	keys := make([]string, 0, len(result))
	for sym := range result {
		keys = append(keys, sym)
	}
	sort.Strings(keys)
	for _, sym := range keys {
		fmt.Printf("  %-6s %s\n", color.YellowString(sym), price.Format(result[sym]))
	}
	for _, sym := range symbols {
		if _, ok := result[sym]; !ok {
			fmt.Printf("  %-6s %s\n", color.YellowString(sym), color.HiBlackString("no price available"))
		}
	}
	fmt.Println()
}
