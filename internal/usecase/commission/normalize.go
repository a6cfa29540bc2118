package commission

import (
	"math"
	"strings"
)

// ClearanceState is the internal vocabulary upstream order statuses are
// folded into.
type ClearanceState int

const (
	ClearanceUnknown ClearanceState = iota
	ClearancePending
	ClearanceCleared
	ClearanceCancelled
)

// NormalizeOrderStatus maps the heterogeneous upstream status vocabularies
// onto internal clearance states. Networks disagree loudly here:
// "CONFIRMED", "VALID" and "SUCCESS" all mean the same thing.
func NormalizeOrderStatus(raw string) ClearanceState {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "CONFIRMED", "VALID", "SUCCESS", "COMPLETED", "APPROVED", "PAID", "SETTLED":
		return ClearanceCleared
	case "PENDING", "CREATED", "PROCESSING", "HOLD", "NEW":
		return ClearancePending
	case "CANCELLED", "CANCELED", "REFUNDED", "REVERSED", "REJECTED", "VOID":
		return ClearanceCancelled
	default:
		return ClearanceUnknown
	}
}

// amountFields is the candidate priority order for gross value resolution.
// *_minor fields are already minor units; the rest are major-unit decimals.
var amountFields = []struct {
	key   string
	minor bool
}{
	{"amount_minor", true},
	{"gross_minor", true},
	{"sale_amount_minor", true},
	{"amount", false},
	{"gross_value", false},
	{"sale_amount", false},
	{"total", false},
}

// ResolveAmountMinor extracts the gross order value from a drift-prone
// upstream payload. One function, one explicit priority order, one explicit
// "unresolved" fallback. Callers must not coerce fields themselves.
func ResolveAmountMinor(fields map[string]interface{}) (int64, bool) {
	for _, f := range amountFields {
		raw, ok := fields[f.key]
		if !ok {
			continue
		}
		v, ok := asFloat(raw)
		if !ok || v <= 0 {
			continue
		}
		if f.minor {
			return int64(math.Round(v)), true
		}
		return int64(math.Round(v * 100)), true
	}
	return 0, false
}

func asFloat(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}
