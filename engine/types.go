package engine

import "fmt"

// ============================================================================
// ENGINE TYPES — Aggregate rows and the tagged breakdown variant
// ============================================================================
// A breakdown's shape depends on the drill-down mode, so it is a tagged
// variant rather than a loosely-typed field: exactly one of Flat or
// Combined is populated, selected by Kind.
// ============================================================================

// TotalLabel is the fixed second header column.
const TotalLabel = "Total Contacts"

// BreakdownKind discriminates the breakdown variant.
type BreakdownKind string

const (
	// BreakdownNone carries no secondary counts.
	BreakdownNone BreakdownKind = "none"
	// BreakdownFlat maps a single breakdown column's values to counts.
	BreakdownFlat BreakdownKind = "flat"
	// BreakdownCombined nests lifecycle counts inside ICP buckets.
	BreakdownCombined BreakdownKind = "combined"
)

// Breakdown is the per-row secondary aggregation.
type Breakdown struct {
	Kind     BreakdownKind              `json:"kind"`
	Flat     map[string]int             `json:"flat,omitempty"`
	Combined map[string]*CombinedBucket `json:"combined,omitempty"`
}

// CombinedBucket is one outer (ICP) bucket of the combined mode.
type CombinedBucket struct {
	Count     int            `json:"count"`
	Lifecycle map[string]int `json:"lifecycleDistribution"`
}

// AggregateRow is one row of the summary table: a distinct non-empty value
// of the primary dimension, its record count, and its breakdown.
type AggregateRow struct {
	Value     string    `json:"value"`
	Total     int       `json:"total"`
	Breakdown Breakdown `json:"breakdown"`
}

// FlatCount returns the flat-mode count for a breakdown value.
func (r AggregateRow) FlatCount(key string) int {
	return r.Breakdown.Flat[key]
}

// CombinedCount returns the outer-bucket count for an ICP value.
func (r AggregateRow) CombinedCount(key string) int {
	if b, ok := r.Breakdown.Combined[key]; ok {
		return b.Count
	}
	return 0
}

// FormatPercent renders count/total as a percentage with one decimal.
// A zero total yields "0" so empty groups never divide by zero.
func FormatPercent(count, total int) string {
	if total == 0 {
		return "0"
	}
	return fmt.Sprintf("%.1f", float64(count)/float64(total)*100)
}
