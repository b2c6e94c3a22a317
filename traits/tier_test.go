package traits

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiantools/sbt-sync/internal/common"
	"github.com/xiantools/sbt-sync/internal/model"
)

var testKeys = []string{"Score", "Tier", "Stake Duration", "DEX Volume", "Game Wins", "Bots Created", "Pulse Influence"}

var testFields = map[string]string{
	"Score":           "score",
	"Tier":            "tier",
	"Stake Duration":  "stake_duration",
	"DEX Volume":      "dex_volume",
	"Game Wins":       "game_wins",
	"Bots Created":    "bots_created",
	"Pulse Influence": "pulse_influence",
}

func TestTierForScore(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0, TierBronze},
		{499, TierBronze},
		{500, TierSilver},
		{1499, TierSilver},
		{1500, TierGold},
		{2999, TierGold},
		{3000, TierPlatinum},
		{4999, TierPlatinum},
		{5000, TierDiamond},
		{9999, TierDiamond},
		{10000, TierLegend},
		{250000, TierLegend},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TierForScore(tt.score), "score %v", tt.score)
	}
}

func TestTierForScoreMonotonic(t *testing.T) {
	order := map[string]int{
		TierBronze:   0,
		TierSilver:   1,
		TierGold:     2,
		TierPlatinum: 3,
		TierDiamond:  4,
		TierLegend:   5,
	}

	prev := 0
	for score := 0.0; score <= 12000; score += 1 {
		rank, ok := order[TierForScore(score)]
		require.True(t, ok, "score %v mapped outside the six bands", score)
		require.GreaterOrEqual(t, rank, prev, "tier rank decreased at score %v", score)
		prev = rank
	}
}

func TestTierForScoreCoercion(t *testing.T) {
	// absent and non-numeric scores coerce to zero, landing in the bottom band
	assert.Equal(t, TierBronze, TierForScore(common.ScoreOf(nil)))
	assert.Equal(t, TierBronze, TierForScore(common.ScoreOf("not a number")))
	assert.Equal(t, TierSilver, TierForScore(common.ScoreOf("750")))
}

func TestBuildUpdateIntentScoreMismatch(t *testing.T) {
	result := &model.ComparisonResult{
		Address:  "addr1",
		OffChain: map[string]any{"Score": 120.0, "Game Wins": 3.0},
		OnChain:  map[string]any{"Score": 100.0, "Game Wins": 3.0},
	}

	intent := BuildUpdateIntent(result, testKeys, testFields)

	require.Contains(t, intent.Fields, "score")
	assert.Equal(t, "120", intent.Fields["score"])
	assert.Equal(t, TierBronze, intent.Fields["tier"])
	assert.Equal(t, TierBronze, intent.Tier)
	assert.NotContains(t, intent.Fields, "game_wins")
}

func TestBuildUpdateIntentNoDiffs(t *testing.T) {
	result := &model.ComparisonResult{
		Address:  "addr1",
		OffChain: map[string]any{"Score": 100.0, "Game Wins": "3"},
		OnChain:  map[string]any{"Score": "100", "Game Wins": 3.0},
	}

	intent := BuildUpdateIntent(result, testKeys, testFields)

	// numeric coercion: "100" equals 100.0, so nothing differs and no tier
	// field is forced in
	assert.Empty(t, intent.Fields)
	assert.Equal(t, TierBronze, intent.Tier)
}

func TestBuildUpdateIntentTierDerivedNotCopied(t *testing.T) {
	result := &model.ComparisonResult{
		Address:  "addr1",
		OffChain: map[string]any{"Score": 5200.0, "Tier": "Bronze"},
		OnChain:  map[string]any{"Score": 100.0, "Tier": "Gold"},
	}

	intent := BuildUpdateIntent(result, testKeys, testFields)

	// Tier comes from the off-chain Score, never from the database Tier column
	assert.Equal(t, TierDiamond, intent.Fields["tier"])
}

func TestBuildUpdateIntentAbsentNumericIsZero(t *testing.T) {
	result := &model.ComparisonResult{
		Address:  "addr1",
		OffChain: map[string]any{"Score": 0.0},
		OnChain:  map[string]any{},
	}

	intent := BuildUpdateIntent(result, testKeys, testFields)
	assert.Empty(t, intent.Fields)
}

func TestUpdateEligibleTruthTable(t *testing.T) {
	withDiff := &model.ComparisonResult{
		Address:  "addr1",
		OffChain: map[string]any{"Score": 120.0},
		OnChain:  map[string]any{"Score": 100.0},
	}
	noDiff := &model.ComparisonResult{
		Address:  "addr1",
		OffChain: map[string]any{"Score": 100.0},
		OnChain:  map[string]any{"Score": 100.0},
	}
	owner := &model.WalletSession{Address: "addr1"}
	stranger := &model.WalletSession{Address: "addr2"}

	tests := []struct {
		name    string
		result  *model.ComparisonResult
		session *model.WalletSession
		want    bool
	}{
		{"no result, no session", nil, nil, false},
		{"no result, owner", nil, owner, false},
		{"no diff, no session", noDiff, nil, false},
		{"no diff, owner", noDiff, owner, false},
		{"no diff, stranger", noDiff, stranger, false},
		{"diff, no session", withDiff, nil, false},
		{"diff, stranger", withDiff, stranger, false},
		{"diff, owner", withDiff, owner, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UpdateEligible(tt.result, tt.session, testKeys))
		})
	}
}
