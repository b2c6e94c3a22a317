package model

// TraitDiff holds both sides of a mismatched trait.
type TraitDiff struct {
	OffChain any `json:"off_chain"`
	OnChain  any `json:"on_chain"`
}

// ComparisonResult is the compare backend's view of one address: database
// values, chain values and the backend's own diff summary. Treated as
// immutable once received; superseded wholesale by the next comparison.
type ComparisonResult struct {
	Address  string               `json:"address"`
	OffChain map[string]any       `json:"offchain"`
	OnChain  map[string]any       `json:"onchain"`
	Diffs    map[string]TraitDiff `json:"diffs"`
}

// TraitRow is one rendered comparison row for a tracked trait key.
type TraitRow struct {
	Key       string `json:"key"`
	OffChain  any    `json:"off_chain"`
	OnChain   any    `json:"on_chain"`
	Different bool   `json:"different"`
}

// ChainTraitsResponse carries the raw on-chain trait values for one address,
// read straight from chain state without the compare backend.
type ChainTraitsResponse struct {
	Address string         `json:"address"`
	Traits  map[string]any `json:"traits"`
}

// CompareOutcome bundles a stored comparison with the facts that gate the
// update action.
type CompareOutcome struct {
	Result        *ComparisonResult `json:"result"`
	Rows          []TraitRow        `json:"rows"`
	ScoreMismatch bool              `json:"score_mismatch"`
	OwnsAddress   bool              `json:"owns_address"`
	UpdateEnabled bool              `json:"update_enabled"`
}
