package model

// WalletSession represents the connected wallet identity. Created on a
// successful connect, replaced wholesale by the next one, never persisted.
type WalletSession struct {
	Address        string `json:"address"`
	DisplayAddress string `json:"display_address"`
}

// ConnectResponse represents response for POST /wallet/connect
type ConnectResponse struct {
	Address        string `json:"address"`
	DisplayAddress string `json:"display_address"`
	QR             string `json:"qr"` // base64 PNG of the address
}

// StatusResponse represents response for GET /status
type StatusResponse struct {
	BridgeReady bool           `json:"bridge_ready"`
	Session     *WalletSession `json:"session,omitempty"`
}
