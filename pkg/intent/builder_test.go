package intent

import (
	"context"
	"strings"
	"testing"
)

func completeIntent() *Intent {
	return &Intent{
		FromToken:  "ETH",
		ToToken:    "USDC",
		FromChain:  "eth",
		ToChain:    "arb",
		Amount:     "0.1",
		Complete:   true,
		Confidence: ConfidenceHigh,
	}
}

func TestBuildResolvesAssetsAndAmount(t *testing.T) {
	b := NewBuilder(testCatalog())

	req, err := b.Build(context.Background(), completeIntent())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if req.OriginAsset != "nep141:eth.omft.near" {
		t.Errorf("unexpected origin asset: %s", req.OriginAsset)
	}
	if req.DestinationAsset != "nep141:arb-0xusdc.omft.near" {
		t.Errorf("unexpected destination asset: %s", req.DestinationAsset)
	}
	if req.Amount != "100000000000000000" {
		t.Errorf("expected 0.1 ETH in wei, got %s", req.Amount)
	}
	if req.AmountFormatted != "0.1" {
		t.Errorf("expected formatted amount 0.1, got %s", req.AmountFormatted)
	}
	if req.SlippageBps != DefaultSlippageBps {
		t.Errorf("expected default slippage, got %d", req.SlippageBps)
	}
	if req.DestDecimals != 6 {
		t.Errorf("expected destination decimals 6, got %d", req.DestDecimals)
	}
}

func TestBuildKeepsExplicitSlippage(t *testing.T) {
	in := completeIntent()
	in.SlippageBps = 50

	req, err := NewBuilder(testCatalog()).Build(context.Background(), in)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if req.SlippageBps != 50 {
		t.Fatalf("expected 50 bps, got %d", req.SlippageBps)
	}
}

func TestBuildRejectsIncompleteIntent(t *testing.T) {
	in := completeIntent()
	in.Complete = false
	in.MissingInfo = []string{"Please specify destination chain for USDC (available: arb, eth)"}

	if _, err := NewBuilder(testCatalog()).Build(context.Background(), in); err == nil {
		t.Fatal("expected error for incomplete intent")
	}
}

func TestBuildRejectsUnknownPair(t *testing.T) {
	in := completeIntent()
	in.ToChain = "sol" // USDC is not listed on sol in the fixture

	_, err := NewBuilder(testCatalog()).Build(context.Background(), in)
	if err == nil {
		t.Fatal("expected lookup error")
	}
	if !strings.Contains(err.Error(), "destination token error") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSmallestUnit(t *testing.T) {
	cases := []struct {
		amount   string
		decimals uint
		want     string
	}{
		{"0.1", 18, "100000000000000000"},
		{"1", 6, "1000000"},
		{"1.5", 6, "1500000"},
		// Fractions beyond the token's precision truncate toward zero.
		{"1.0000009", 6, "1000000"},
		{"0.0000001", 6, "0"},
	}

	for _, c := range cases {
		got, err := SmallestUnit(c.amount, c.decimals)
		if err != nil {
			t.Errorf("SmallestUnit(%q, %d): %v", c.amount, c.decimals, err)
			continue
		}
		if got != c.want {
			t.Errorf("SmallestUnit(%q, %d) = %s, want %s", c.amount, c.decimals, got, c.want)
		}
	}

	if _, err := SmallestUnit("abc", 18); err == nil {
		t.Error("expected error for non-numeric amount")
	}
	if _, err := SmallestUnit("-1", 18); err == nil {
		t.Error("expected error for negative amount")
	}
}

func TestFromSmallestUnit(t *testing.T) {
	got, err := FromSmallestUnit("2500000", 6)
	if err != nil {
		t.Fatalf("from smallest unit: %v", err)
	}
	if got != "2.5" {
		t.Fatalf("expected 2.5, got %s", got)
	}
}
