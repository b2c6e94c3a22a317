package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// WalletInfo is the bridge daemon's view of the active wallet
type WalletInfo struct {
	Address          string `json:"address"`
	TruncatedAddress string `json:"truncated_address"`
}

// TxResult is the bridge daemon's submission result
type TxResult struct {
	Success bool   `json:"success"`
	TxHash  string `json:"tx_hash"`
	Errors  string `json:"errors,omitempty"`
}

// BridgeClient talks to the local wallet bridge daemon. Signing and
// broadcast live entirely on the daemon side; this client only requests the
// wallet identity and hands over fully described transactions.
type BridgeClient struct {
	baseURL string
	client  *http.Client

	readyOnce sync.Once
	ready     chan struct{}
}

// NewBridgeClient creates a new wallet bridge client for the given daemon URL
func NewBridgeClient(baseURL string) *BridgeClient {
	return &BridgeClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		ready: make(chan struct{}),
	}
}

// Init pings the bridge daemon once and latches readiness. Safe to call
// repeatedly; readiness is signalled exactly once via Ready().
func (c *BridgeClient) Init(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/status", nil)
	if err != nil {
		return fmt.Errorf("failed to build status request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("wallet bridge unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("wallet bridge unreachable: status %d", resp.StatusCode)
	}

	c.readyOnce.Do(func() { close(c.ready) })
	return nil
}

// Ready is closed once the bridge daemon has answered a status ping.
func (c *BridgeClient) Ready() <-chan struct{} {
	return c.ready
}

// IsReady reports whether Init has succeeded at least once.
func (c *BridgeClient) IsReady() bool {
	select {
	case <-c.ready:
		return true
	default:
		return false
	}
}

// RequestWalletInfo asks the bridge for the active wallet identity
func (c *BridgeClient) RequestWalletInfo(ctx context.Context) (*WalletInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/wallet_info", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build wallet info request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to request wallet info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to request wallet info: status %d", resp.StatusCode)
	}

	var info WalletInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode wallet info: %w", err)
	}
	if info.Address == "" {
		return nil, fmt.Errorf("wallet bridge returned no address")
	}

	return &info, nil
}

// txRequest is the submission payload sent to the bridge daemon
type txRequest struct {
	Contract   string         `json:"contract"`
	Method     string         `json:"method"`
	Kwargs     map[string]any `json:"kwargs"`
	StampLimit uint64         `json:"stamp_limit"`
}

// SendTransaction submits one transaction through the bridge daemon
func (c *BridgeClient) SendTransaction(ctx context.Context, contract, method string, kwargs map[string]any, stampLimit uint64) (*TxResult, error) {
	body, err := json.Marshal(txRequest{
		Contract:   contract,
		Method:     method,
		Kwargs:     kwargs,
		StampLimit: stampLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transaction: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transaction", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to submit transaction: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to submit transaction: status %d", resp.StatusCode)
	}

	var result TxResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode transaction result: %w", err)
	}
	if !result.Success {
		return nil, fmt.Errorf("transaction rejected by wallet: %s", result.Errors)
	}

	return &result, nil
}
