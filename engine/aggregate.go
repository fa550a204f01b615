package engine

import (
	"sort"

	"github.com/contactlens-org/contactlens/records"
	"github.com/contactlens-org/contactlens/schema"
)

// ============================================================================
// AGGREGATOR — Grouping and drill-down over a RecordView
// ============================================================================
// Pure function of (records, dimension, drill-down); recomputed on every
// view change. Grouping preserves first-seen order; records with an empty
// grouping or breakdown value contribute nothing to that level — there is
// no catch-all "unspecified" bucket.
// ============================================================================

// Aggregate groups a record set by the primary dimension and applies the
// requested drill-down. Returns the header labels in render order
// ([dimension, "Total Contacts", ...dynamic breakdown labels]) and one
// AggregateRow per distinct non-empty dimension value.
func Aggregate(view records.RecordView, dim schema.Dimension, drill schema.DrillDown) ([]string, []AggregateRow) {
	groups := groupByColumn(view, dim.Column())

	headers := []string{dim.Column(), TotalLabel}
	switch drill {
	case schema.DrillNone:
		// no dynamic columns
	case schema.DrillCombined:
		// Outer header labels only; lifecycle lives inside each bucket.
		headers = append(headers, distinctValues(view, schema.ColumnICP)...)
	default:
		headers = append(headers, distinctValues(view, drill.Column())...)
	}

	rows := make([]AggregateRow, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, AggregateRow{
			Value:     g.key,
			Total:     g.view.Len(),
			Breakdown: buildBreakdown(g.view, drill),
		})
	}
	return headers, rows
}

// group is one primary bucket: a dimension value and its sub-view.
type group struct {
	key  string
	view records.RecordView
}

// groupByColumn buckets view indices by a column's value, preserving
// first-seen order. Empty values are dropped entirely.
func groupByColumn(view records.RecordView, column string) []group {
	grouped := make(map[string][]int)
	order := make([]string, 0)

	for i := 0; i < view.Len(); i++ {
		key := view.Field(i, column)
		if key == "" {
			continue
		}
		if _, exists := grouped[key]; !exists {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], i)
	}

	groups := make([]group, 0, len(order))
	for _, key := range order {
		groups = append(groups, group{
			key:  key,
			view: records.NewSubView(view, grouped[key]),
		})
	}
	return groups
}

// buildBreakdown computes one group's secondary counts per the active mode.
func buildBreakdown(sub records.RecordView, drill schema.DrillDown) Breakdown {
	switch drill {
	case schema.DrillNone:
		return Breakdown{Kind: BreakdownNone}
	case schema.DrillCombined:
		return combinedBreakdown(sub)
	default:
		return Breakdown{
			Kind: BreakdownFlat,
			Flat: countByColumn(sub, drill.Column()),
		}
	}
}

// combinedBreakdown buckets a group by ICP priority, then distributes each
// bucket across lifecycle stages. Inner sums equal the outer bucket count
// except for records with an empty lifecycle value, which are dropped from
// the inner level only.
func combinedBreakdown(sub records.RecordView) Breakdown {
	combined := make(map[string]*CombinedBucket)
	for _, g := range groupByColumn(sub, schema.ColumnICP) {
		combined[g.key] = &CombinedBucket{
			Count:     g.view.Len(),
			Lifecycle: countByColumn(g.view, schema.ColumnLifecycle),
		}
	}
	return Breakdown{Kind: BreakdownCombined, Combined: combined}
}

// countByColumn tallies non-empty values of a column across a view.
func countByColumn(view records.RecordView, column string) map[string]int {
	counts := make(map[string]int)
	for i := 0; i < view.Len(); i++ {
		if val := view.Field(i, column); val != "" {
			counts[val]++
		}
	}
	return counts
}

// distinctValues returns the distinct non-empty values of a column across
// the WHOLE view, sorted ascending. Header labels come from all records,
// not just grouped ones, so column sets stay stable across rows.
func distinctValues(view records.RecordView, column string) []string {
	seen := make(map[string]bool)
	var values []string
	for i := 0; i < view.Len(); i++ {
		val := view.Field(i, column)
		if val != "" && !seen[val] {
			seen[val] = true
			values = append(values, val)
		}
	}
	sort.Strings(values)
	return values
}
