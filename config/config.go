package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	JWTToken      string
	BaseURL       string
	CatalogURL    string
	PriceURL      string
	WalletAddress string
	RefundAddress string
}

var globalConfig *Config

// Load reads configuration from environment variables and config file
func Load() (*Config, error) {
	viper.SetConfigName(".inti-swap")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME")
	viper.AddConfigPath(".")

	// Set default values
	viper.SetDefault("base_url", "https://1click.chaindefuser.com")
	viper.SetDefault("price_url", "https://api.coingecko.com/api/v3")

	// Read from environment variables
	viper.SetEnvPrefix("INTI_SWAP")
	viper.AutomaticEnv()

	// Read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		JWTToken:      viper.GetString("jwt_token"),
		BaseURL:       viper.GetString("base_url"),
		CatalogURL:    viper.GetString("catalog_url"),
		PriceURL:      viper.GetString("price_url"),
		WalletAddress: viper.GetString("wallet_address"),
		RefundAddress: viper.GetString("refund_address"),
	}

	// The token catalog is public; it defaults to the provider's token
	// endpoint unless overridden.
	if cfg.CatalogURL == "" {
		cfg.CatalogURL = cfg.BaseURL + "/v0/tokens"
	}

	// A missing JWT token is not fatal: quoting degrades to preview-only
	// mode until one is configured.
	globalConfig = cfg
	return cfg, nil
}

// HasToken reports whether a provider API token is configured.
func (c *Config) HasToken() bool {
	return c.JWTToken != ""
}

// TokenHint explains how to obtain and configure a provider API token.
func TokenHint() string {
	return "Set INTI_SWAP_JWT_TOKEN in your environment (or jwt_token in ~/.inti-swap.yaml) to enable live quotes and execution"
}

// Get returns the global configuration
func Get() *Config {
	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
			os.Exit(1)
		}
		return cfg
	}
	return globalConfig
}

// Set updates the global configuration
func Set(cfg *Config) {
	globalConfig = cfg
}
