package wallet

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"
)

// Chains that share the EVM address and transaction-hash format.
var evmChains = map[string]bool{
	"eth":  true,
	"arb":  true,
	"pol":  true,
	"base": true,
	"op":   true,
	"bsc":  true,
	"avax": true,
	"bera": true,
}

var (
	evmTxHashPattern   = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)
	nearAccountPattern = regexp.MustCompile(`^([a-z0-9]([a-z0-9_-]*[a-z0-9])?\.)*[a-z0-9]([a-z0-9_-]*[a-z0-9])?$`)
)

// IsEVMChain reports whether the chain uses EVM address formats.
func IsEVMChain(chain string) bool {
	return evmChains[strings.ToLower(chain)]
}

// ValidateAddress checks that an address is plausible for the given chain.
// Chains without a known format only get a non-empty check; the provider
// performs the authoritative validation.
func ValidateAddress(chain, address string) error {
	if address == "" {
		return fmt.Errorf("address is required")
	}

	chain = strings.ToLower(chain)
	switch {
	case IsEVMChain(chain):
		if !common.IsHexAddress(address) {
			return fmt.Errorf("'%s' is not a valid EVM address", address)
		}
	case chain == "sol":
		if _, err := solana.PublicKeyFromBase58(address); err != nil {
			return fmt.Errorf("'%s' is not a valid Solana address: %w", address, err)
		}
	case chain == "near":
		if len(address) < 2 || len(address) > 64 || !nearAccountPattern.MatchString(address) {
			return fmt.Errorf("'%s' is not a valid NEAR account", address)
		}
	}
	return nil
}

// ValidateTxHash checks that a deposit transaction hash is plausible for the
// given chain.
func ValidateTxHash(chain, hash string) error {
	if hash == "" {
		return fmt.Errorf("transaction hash is required")
	}

	chain = strings.ToLower(chain)
	switch {
	case IsEVMChain(chain):
		if !evmTxHashPattern.MatchString(hash) {
			return fmt.Errorf("'%s' is not a valid EVM transaction hash", hash)
		}
	case chain == "sol":
		if _, err := solana.SignatureFromBase58(hash); err != nil {
			return fmt.Errorf("'%s' is not a valid Solana transaction signature: %w", hash, err)
		}
	}
	return nil
}
