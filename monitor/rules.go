package monitor

import "github.com/xiantools/sbt-sync/internal/common"

// Action selects which counters a matched call moves besides the score.
type Action int

const (
	// ActionScore awards points only
	ActionScore Action = iota
	// ActionTransfer awards points and tracks the transferred amount
	ActionTransfer
	// ActionDexSwap awards points and tracks swap volume and count
	ActionDexSwap
	// ActionStakeStart awards points and starts or refreshes the staking clock
	ActionStakeStart
	// ActionStakeStop accrues the staking interval and stops the clock
	ActionStakeStop
)

// WatchRule scores one contract function
type WatchRule struct {
	Contract    string
	Function    string
	Points      int
	AmountField string // kwargs key carrying the tracked amount, empty when none
	Action      Action
}

// DefaultRules is the watched activity set
func DefaultRules() []WatchRule {
	return []WatchRule{
		{Contract: "currency", Function: "transfer", Points: 1, AmountField: "amount", Action: ActionTransfer},
		{Contract: "con_dex_v2", Function: "swapExactTokenForToken", Points: 5, AmountField: "amountIn", Action: ActionDexSwap},
		{Contract: "con_staking_v1", Function: "deposit", Points: 15, Action: ActionStakeStart},
		{Contract: "con_staking_v1", Function: "withdraw", Action: ActionStakeStop},
		{Contract: "con_staking_v1", Function: "unstake", Action: ActionStakeStop},
		{Contract: "con_staking_v1", Function: "emergency_withdraw", Action: ActionStakeStop},
		{Contract: "con_xipoll_v0_clean", Function: "vote", Points: 5, Action: ActionScore},
		{Contract: "submission", Function: "submit_contract", Points: 50, Action: ActionScore},
	}
}

// MatchRule finds the rule for a contract function, if any
func MatchRule(rules []WatchRule, contract, function string) (WatchRule, bool) {
	for _, r := range rules {
		if r.Contract == contract && r.Function == function {
			return r, true
		}
	}
	return WatchRule{}, false
}

// amountOf reads the first numeric kwargs value among the given keys.
// Missing or non-numeric values fall back to def.
func amountOf(kwargs map[string]any, def float64, keys ...string) float64 {
	for _, key := range keys {
		if v, ok := kwargs[key]; ok {
			if n, numOK := common.Numeric(v); numOK {
				return n
			}
		}
	}
	return def
}
