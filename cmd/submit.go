package cmd

import (
	"context"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"inti-swap/config"
	"inti-swap/pkg/client"
)

var submitCmd = &cobra.Command{
	Use:   "submit-tx <deposit-address> <tx-hash>",
	Short: "Report a deposit transaction for a pending swap",
	Long: `Tell the 1Click service about the transaction that funded a swap's deposit
address. This speeds up detection of the deposit.

Examples:
  inti-swap submit-tx 0x1234...abcd 0xdeadbeef...`,
	Args: cobra.ExactArgs(2),
	Run:  runSubmitTx,
}

func init() {
	rootCmd.AddCommand(submitCmd)
}

func runSubmitTx(cmd *cobra.Command, args []string) {
	depositAddress, txHash := args[0], args[1]

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	apiClient := client.NewOneClickClient(cfg.JWTToken, cfg.BaseURL)

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " Submitting transaction..."
	s.Start()
	err = apiClient.SubmitDepositTx(context.Background(), txHash, depositAddress)
	s.Stop()

	if err != nil {
		printError(err)
		os.Exit(1)
	}

	printSuccess("Transaction submitted. Track progress with: inti-swap status " + depositAddress)
}
