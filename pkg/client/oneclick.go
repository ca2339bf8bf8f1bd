package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	oneclick "github.com/defuse-protocol/one-click-sdk-go"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"inti-swap/pkg/logx"
	"inti-swap/pkg/types"
)

// Quotes are valid for 24 hours.
const quoteDeadline = 24 * time.Hour

// OneClickClient wraps the 1Click SDK
type OneClickClient struct {
	client   *oneclick.APIClient
	jwtToken string
}

// NewOneClickClient creates a new 1Click API client. An empty token is
// allowed; Configured reports whether live calls can be made.
func NewOneClickClient(jwtToken, baseURL string) *OneClickClient {
	config := oneclick.NewConfiguration()
	if baseURL != "" {
		config.Servers = oneclick.ServerConfigurations{{URL: baseURL}}
	}

	return &OneClickClient{
		client:   oneclick.NewAPIClient(config),
		jwtToken: jwtToken,
	}
}

// Configured reports whether a provider API token is available.
func (c *OneClickClient) Configured() bool {
	return c.jwtToken != ""
}

func (c *OneClickClient) auth(ctx context.Context) context.Context {
	return context.WithValue(ctx, oneclick.ContextAccessToken, c.jwtToken)
}

// GetQuote issues a dry (non-committal) quote for the request. The returned
// quote carries the request so execution can re-issue it verbatim.
func (c *OneClickClient) GetQuote(ctx context.Context, req *types.SwapRequest) (*types.SwapQuote, error) {
	resp, err := c.requestQuote(ctx, req, true)
	if err != nil {
		return nil, err
	}

	quote := resp.GetQuote()

	sq := &types.SwapQuote{
		ID:                  uuid.NewString(),
		FromToken:           req.FromToken,
		ToToken:             req.ToToken,
		FromChain:           req.FromChain,
		ToChain:             req.ToChain,
		FromAmount:          quote.GetAmountInFormatted(),
		ToAmount:            quote.GetAmountOutFormatted(),
		SlippageBps:         req.SlippageBps,
		DepositAsset:        req.FromToken,
		Deadline:            quote.GetDeadline(),
		Status:              types.QuotePending,
		AmountInUsd:         quote.GetAmountInUsd(),
		AmountOutUsd:        quote.GetAmountOutUsd(),
		TimeEstimateSeconds: float64(quote.GetTimeEstimate()),
		WalletAddress:       req.Recipient,
		Request:             req,
	}
	if sq.FromAmount == "" {
		sq.FromAmount = req.AmountFormatted
	}

	// minAmountOut arrives in the destination token's smallest unit.
	if min := quote.GetMinAmountOut(); min != "" {
		if d, err := decimal.NewFromString(min); err == nil {
			sq.MinAmountOut = d.Shift(-int32(req.DestDecimals)).String()
		}
	}

	return sq, nil
}

// ExecuteSwap re-issues the quoted request as a committing (dry=false) call,
// yielding the deposit address the user must fund.
func (c *OneClickClient) ExecuteSwap(ctx context.Context, quote *types.SwapQuote) (*types.DepositInfo, error) {
	if quote == nil || quote.Request == nil {
		return nil, fmt.Errorf("quote has no underlying request")
	}
	if quote.FromChain == "" || quote.ToChain == "" {
		return nil, fmt.Errorf("quote is missing chain information")
	}
	if quote.WalletAddress == "" && quote.Request.Recipient == "" {
		return nil, fmt.Errorf("no wallet address available; set one before confirming")
	}

	resp, err := c.requestQuote(ctx, quote.Request, false)
	if err != nil {
		return nil, err
	}

	q := resp.GetQuote()
	deposit := &types.DepositInfo{Address: q.GetDepositAddress()}
	if q.HasDepositMemo() {
		deposit.Memo = q.GetDepositMemo()
	}
	if deposit.Address == "" {
		return nil, fmt.Errorf("provider returned no deposit address")
	}

	logx.Debug().Str("deposit_address", deposit.Address).Msg("swap execution accepted")
	return deposit, nil
}

func (c *OneClickClient) requestQuote(ctx context.Context, req *types.SwapRequest, dry bool) (*oneclick.QuoteResponse, error) {
	recipient := req.Recipient
	if recipient == "" {
		return nil, fmt.Errorf("recipient address is required")
	}
	refundTo := req.RefundTo
	if refundTo == "" {
		refundTo = recipient
	}

	deadline := time.Now().Add(quoteDeadline)

	quoteReq := oneclick.NewQuoteRequest(
		dry,                      // dry - false yields a real deposit address
		"EXACT_INPUT",            // swapType
		float32(req.SlippageBps), // slippageTolerance
		req.OriginAsset,          // originAsset
		"ORIGIN_CHAIN",           // depositType
		req.DestinationAsset,     // destinationAsset
		req.Amount,               // amount in smallest unit
		refundTo,                 // refundTo
		"ORIGIN_CHAIN",           // refundType
		recipient,                // recipient
		"DESTINATION_CHAIN",      // recipientType
		deadline,                 // deadline
	)

	resp, httpResp, err := c.client.OneClickAPI.GetQuote(c.auth(ctx)).QuoteRequest(*quoteReq).Execute()
	if err != nil {
		return nil, extractAPIError(httpResp, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, fmt.Errorf("API returned status code %d", httpResp.StatusCode)
	}
	if resp == nil {
		return nil, fmt.Errorf("empty quote response")
	}

	return resp, nil
}

// extractAPIError pulls the provider's message out of an error response body.
func extractAPIError(httpResp *http.Response, err error) error {
	if httpResp == nil {
		return fmt.Errorf("failed to reach provider: %w", err)
	}
	defer httpResp.Body.Close()

	bodyBytes, readErr := io.ReadAll(httpResp.Body)
	if readErr != nil || len(bodyBytes) == 0 {
		return fmt.Errorf("provider error (status %d): %w", httpResp.StatusCode, err)
	}

	var errorResp map[string]interface{}
	if jsonErr := json.Unmarshal(bodyBytes, &errorResp); jsonErr == nil {
		if message, ok := errorResp["message"].(string); ok {
			return fmt.Errorf("provider error (status %d): %s", httpResp.StatusCode, message)
		}
		if errs, ok := errorResp["errors"]; ok {
			return fmt.Errorf("provider error (status %d): %v", httpResp.StatusCode, errs)
		}
	}
	return fmt.Errorf("provider error (status %d): %s", httpResp.StatusCode, string(bodyBytes))
}

// GetExecutionStatus polls the provider for the state of a swap, keyed by
// its deposit address.
func (c *OneClickClient) GetExecutionStatus(ctx context.Context, depositAddress string) (*types.ExecutionStatus, error) {
	resp, httpResp, err := c.client.OneClickAPI.GetExecutionStatus(c.auth(ctx)).DepositAddress(depositAddress).Execute()
	if err != nil {
		return nil, extractAPIError(httpResp, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status code %d", httpResp.StatusCode)
	}

	status := strings.ToUpper(resp.GetStatus())
	summary, progress := StatusText(status)

	es := &types.ExecutionStatus{
		Status:    status,
		Summary:   summary,
		Progress:  progress,
		UpdatedAt: resp.GetUpdatedAt(),
	}

	details := resp.GetSwapDetails()
	if details.HasAmountInFormatted() {
		es.AmountIn = details.GetAmountInFormatted()
	}
	if details.HasAmountOutFormatted() {
		es.AmountOut = details.GetAmountOutFormatted()
	}
	for _, tx := range details.GetOriginChainTxHashes() {
		if hash := tx.GetHash(); hash != "" {
			es.OriginTxHashes = append(es.OriginTxHashes, hash)
		}
	}
	for _, tx := range details.GetDestinationChainTxHashes() {
		if hash := tx.GetHash(); hash != "" {
			es.DestinationTxHashes = append(es.DestinationTxHashes, hash)
		}
	}

	return es, nil
}

// SubmitDepositTx forwards a user-supplied deposit transaction hash to the
// provider for reconciliation.
func (c *OneClickClient) SubmitDepositTx(ctx context.Context, txHash, depositAddress string) error {
	req := oneclick.NewSubmitDepositTxRequest(depositAddress, txHash)

	_, httpResp, err := c.client.OneClickAPI.SubmitDepositTx(c.auth(ctx)).SubmitDepositTxRequest(*req).Execute()
	if err != nil {
		return extractAPIError(httpResp, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK && httpResp.StatusCode != http.StatusCreated {
		return fmt.Errorf("API returned status code %d", httpResp.StatusCode)
	}

	return nil
}

// StatusText maps the provider's status vocabulary to a user-facing summary
// and progress line.
func StatusText(status string) (summary, progress string) {
	switch strings.ToUpper(status) {
	case "PENDING_DEPOSIT":
		return "Waiting for your deposit", "Step 1 of 3: send funds to the deposit address"
	case "PROCESSING":
		return "Deposit received, swap in progress", "Step 2 of 3: market makers are filling your order"
	case "SUCCESS":
		return "Swap completed", "Step 3 of 3: funds delivered to the recipient"
	case "INCOMPLETE_DEPOSIT":
		return "Deposit amount was lower than quoted", "Send the remaining amount to continue, or wait for a refund"
	case "REFUNDED":
		return "Swap refunded", "Funds were returned to the refund address"
	case "FAILED":
		return "Swap failed", "Check the provider status page; funds are refunded automatically"
	default:
		return "Status unknown", "Try checking again in a moment"
	}
}
