package model

// UpdateIntent is the field set written on-chain by one batched update:
// every tracked trait whose off-chain value differs from chain state,
// translated to chain field names, plus the Tier derived from the off-chain
// Score. Values are stringified because the contract stores traits as
// strings.
type UpdateIntent struct {
	Address string            `json:"address"`
	Fields  map[string]string `json:"fields"`
	Tier    string            `json:"tier"`
}

// UpdateResponse represents response for POST /traits/update
type UpdateResponse struct {
	TxHash  string            `json:"tx_hash"`
	Address string            `json:"address"`
	Fields  map[string]string `json:"fields"`
	Tier    string            `json:"tier"`
}
