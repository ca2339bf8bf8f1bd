package wallet

import "testing"

func TestValidateAddress(t *testing.T) {
	cases := []struct {
		chain   string
		address string
		ok      bool
	}{
		{"eth", "0x2527D02599Ba641c19FEa793cD0F167589a0f10D", true},
		{"arb", "0x2527D02599Ba641c19FEa793cD0F167589a0f10D", true},
		{"eth", "0x2527", false},
		{"eth", "not-an-address", false},
		{"sol", "13QkxhNMrTPxoCkRdYdJ65tFuwXPhL5gLS2Z5Nr6gjRK", true},
		{"sol", "0x2527D02599Ba641c19FEa793cD0F167589a0f10D", false},
		{"near", "alice.near", true},
		{"near", "sub.account.near", true},
		{"near", "UPPER.near", false},
		{"btc", "bc1qxy2kgdygjrsqtzq2n0yrf2493p83kkfjhx0wlh", true},
		{"btc", "", false},
	}

	for _, c := range cases {
		err := ValidateAddress(c.chain, c.address)
		if c.ok && err != nil {
			t.Errorf("ValidateAddress(%s, %s): unexpected error %v", c.chain, c.address, err)
		}
		if !c.ok && err == nil {
			t.Errorf("ValidateAddress(%s, %s): expected error", c.chain, c.address)
		}
	}
}

func TestValidateTxHash(t *testing.T) {
	evmHash := "0x" + "ab12" + "cd34" + "ef56" + "0000" + "1111" + "2222" + "3333" + "4444" +
		"5555" + "6666" + "7777" + "8888" + "9999" + "aaaa" + "bbbb" + "cccc"

	cases := []struct {
		chain string
		hash  string
		ok    bool
	}{
		{"eth", evmHash, true},
		{"eth", "0xabc", false},
		{"eth", "", false},
		{"sol", "not-base58-0OIl", false},
		{"btc", "anything-goes-here", true},
	}

	for _, c := range cases {
		err := ValidateTxHash(c.chain, c.hash)
		if c.ok && err != nil {
			t.Errorf("ValidateTxHash(%s, %s): unexpected error %v", c.chain, c.hash, err)
		}
		if !c.ok && err == nil {
			t.Errorf("ValidateTxHash(%s, %s): expected error", c.chain, c.hash)
		}
	}
}
