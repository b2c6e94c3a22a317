package monitor

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// TxPayload is the decoded call description inside a Xian transaction
type TxPayload struct {
	Sender   string         `json:"sender"`
	Contract string         `json:"contract"`
	Function string         `json:"function"`
	Kwargs   map[string]any `json:"kwargs"`
}

// decodedTx is the transaction envelope around the payload
type decodedTx struct {
	Payload TxPayload `json:"payload"`
}

// DecodeTx decodes a transaction as delivered by CometBFT subscriptions.
// Xian txs arrive base64-encoded, and the decoded bytes are the hex text of
// the JSON payload: base64 -> hex text -> bytes -> JSON.
func DecodeTx(txB64 string) (*TxPayload, error) {
	hexText, err := base64.StdEncoding.DecodeString(txB64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode tx base64: %w", err)
	}

	raw, err := hex.DecodeString(strings.TrimSpace(string(hexText)))
	if err != nil {
		return nil, fmt.Errorf("failed to decode tx hex: %w", err)
	}

	var tx decodedTx
	if err := json.Unmarshal(raw, &tx); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tx payload: %w", err)
	}

	return &tx.Payload, nil
}
