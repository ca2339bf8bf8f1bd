package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"inti-swap/config"
	"inti-swap/pkg/catalog"
	"inti-swap/pkg/chat"
	"inti-swap/pkg/client"
	"inti-swap/pkg/price"
)

var chatWallet string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive swap conversation",
	Long: `Start an interactive session where you describe swaps in plain English.

The assistant quotes swaps, asks for confirmation, hands out deposit
instructions and tracks progress. It also answers price questions and helps
you discover supported tokens.

Examples:
  inti-swap chat
  inti-swap chat --wallet 0x123...`,
	Run: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringVar(&chatWallet, "wallet", "", "Wallet address that receives swapped tokens (defaults to configured wallet_address)")
}

func runChat(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	walletAddress := chatWallet
	if walletAddress == "" {
		walletAddress = cfg.WalletAddress
	}

	apiClient := client.NewOneClickClient(cfg.JWTToken, cfg.BaseURL)
	tokens := catalog.NewService(cfg.CatalogURL, nil, nil)
	prices := price.NewService(cfg.PriceURL, nil, nil)

	engine := chat.NewEngine(apiClient, tokens, prices, chat.Options{
		WalletAddress: walletAddress,
		RefundAddress: cfg.RefundAddress,
	})

	if !apiClient.Configured() {
		color.Yellow("\n%s\n", config.TokenHint())
	}

	printBotMessage(engine.History()[0])
	fmt.Println("Type \"exit\" to leave the chat.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "exit" || text == "quit" {
			break
		}

		s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		s.Suffix = " Thinking..."
		s.Start()
		reply := engine.Respond(context.Background(), text)
		s.Stop()

		printBotMessage(reply)
	}

	fmt.Println("\nGoodbye!")
}

func printBotMessage(m *chat.Message) {
	fmt.Println()
	for _, line := range strings.Split(m.Text, "\n") {
		if m.AwaitingConfirmation {
			color.Cyan("%s", line)
		} else {
			fmt.Println(line)
		}
	}
}
