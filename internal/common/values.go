package common

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Numeric tries to read v as a number. JSON decoding hands us float64 for
// numbers and string for everything else, but backends have been seen
// returning numeric traits as quoted strings, so strings are parsed too.
func Numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// ScoreOf coerces a trait value to a score. Absent or non-numeric values
// count as zero so tier derivation stays total.
func ScoreOf(v any) float64 {
	n, ok := Numeric(v)
	if !ok {
		return 0
	}
	return n
}

// IsAbsent reports whether a trait value is missing or empty.
func IsAbsent(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

// ValuesEqual compares two trait values. When both sides are numeric they
// are compared as numbers (so "120" equals 120.0 and formatting differences
// never produce a false diff); a numeric side compared against an absent one
// treats absent as zero; everything else is exact string equality.
func ValuesEqual(a, b any) bool {
	na, aok := Numeric(a)
	nb, bok := Numeric(b)

	if aok && bok {
		return na == nb
	}
	if aok && IsAbsent(b) {
		return na == 0
	}
	if bok && IsAbsent(a) {
		return nb == 0
	}

	return FormatValue(a) == FormatValue(b)
}

// FormatValue renders a trait value as the string written on-chain.
// Numbers keep their shortest exact representation (no "120.000000").
func FormatValue(v any) string {
	switch n := v.(type) {
	case nil:
		return ""
	case string:
		return n
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(n), 'f', -1, 32)
	case int:
		return strconv.Itoa(n)
	case int64:
		return strconv.FormatInt(n, 10)
	case uint64:
		return strconv.FormatUint(n, 10)
	case json.Number:
		return n.String()
	case bool:
		return strconv.FormatBool(n)
	default:
		return fmt.Sprintf("%v", n)
	}
}

// TruncateAddress shortens an address for display: first 8 and last 4
// characters with an ellipsis between. Short addresses pass through.
func TruncateAddress(addr string) string {
	if len(addr) <= 14 {
		return addr
	}
	return addr[:8] + "..." + addr[len(addr)-4:]
}
