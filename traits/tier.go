package traits

import (
	"github.com/xiantools/sbt-sync/internal/common"
	"github.com/xiantools/sbt-sync/internal/model"
)

// Trait keys with controller-level meaning. Score drives tier derivation;
// Tier itself is never copied from the database, only derived.
const (
	ScoreKey = "Score"
	TierKey  = "Tier"
)

// Tier names, ascending
const (
	TierBronze   = "Bronze"
	TierSilver   = "Silver"
	TierGold     = "Gold"
	TierPlatinum = "Platinum"
	TierDiamond  = "Diamond"
	TierLegend   = "Legend"
)

// TierForScore maps a score to its tier band. Total over all inputs: callers
// coerce absent or non-numeric scores to zero, which lands in the bottom band.
func TierForScore(score float64) string {
	switch {
	case score < 500:
		return TierBronze
	case score < 1500:
		return TierSilver
	case score < 3000:
		return TierGold
	case score < 5000:
		return TierPlatinum
	case score < 10000:
		return TierDiamond
	default:
		return TierLegend
	}
}

// chainField translates a display trait key to its chain-side field name.
// Unmapped keys pass through unchanged.
func chainField(key string, fields map[string]string) string {
	if f, ok := fields[key]; ok {
		return f
	}
	return key
}

// BuildUpdateIntent computes the field set for one batched trait update:
// every tracked key whose off-chain value differs from chain state
// (numeric-aware), translated to chain field names. When any field differs,
// the tier derived from the off-chain score is written alongside. An empty
// field set means there is nothing to submit.
func BuildUpdateIntent(result *model.ComparisonResult, keys []string, fields map[string]string) *model.UpdateIntent {
	tier := TierForScore(common.ScoreOf(result.OffChain[ScoreKey]))

	out := make(map[string]string)
	for _, key := range keys {
		if key == TierKey {
			continue
		}
		if common.ValuesEqual(result.OffChain[key], result.OnChain[key]) {
			continue
		}
		out[chainField(key, fields)] = common.FormatValue(result.OffChain[key])
	}

	if len(out) > 0 {
		out[chainField(TierKey, fields)] = tier
	}

	return &model.UpdateIntent{
		Address: result.Address,
		Fields:  out,
		Tier:    tier,
	}
}

// HasTrackedDiff reports whether any tracked field differs between the
// off-chain and on-chain sides of a comparison.
func HasTrackedDiff(result *model.ComparisonResult, keys []string) bool {
	for _, key := range keys {
		if key == TierKey {
			continue
		}
		if !common.ValuesEqual(result.OffChain[key], result.OnChain[key]) {
			return true
		}
	}
	return false
}

// UpdateEligible is the update-gate invariant: a comparison result exists,
// at least one tracked field differs, and the connected wallet owns the
// compared address. Ownership is an exact address match and is never
// satisfied by a missing session.
func UpdateEligible(result *model.ComparisonResult, session *model.WalletSession, keys []string) bool {
	if result == nil || session == nil {
		return false
	}
	if session.Address != result.Address {
		return false
	}
	return HasTrackedDiff(result, keys)
}
