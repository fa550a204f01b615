package insight

import (
	"fmt"
	"strings"

	"github.com/contactlens-org/contactlens/engine"
	"github.com/contactlens-org/contactlens/schema"
)

// ============================================================================
// SUMMARIZER — Aggregate view → compact textual prompt
// ============================================================================
// The AI boundary never sees raw contact rows. It sees one line per
// aggregate row: the primary value, its total, and each dynamic column's
// count with its percentage of the row total.
// ============================================================================

// Summarize serializes the current aggregate view into the prompt payload.
// Each row renders as
//
//	<primary> (Total: <total>): <col>: <count> (<pct>%), ...
//
// joining every dynamic header column; zero counts render as "0 (0%)".
// The dimension does not shape the payload lines (BuildPrompt names it in
// the surrounding template), so it is deliberately ignored here.
func Summarize(headers []string, rows []engine.AggregateRow, _ schema.Dimension, drill schema.DrillDown) string {
	var dynamic []string
	if len(headers) > 2 {
		dynamic = headers[2:]
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		var b strings.Builder
		fmt.Fprintf(&b, "%s (Total: %d)", row.Value, row.Total)
		if len(dynamic) > 0 {
			parts := make([]string, 0, len(dynamic))
			for _, col := range dynamic {
				var count int
				if drill == schema.DrillCombined {
					count = row.CombinedCount(col)
				} else {
					count = row.FlatCount(col)
				}
				parts = append(parts, formatCell(col, count, row.Total))
			}
			b.WriteString(": ")
			b.WriteString(strings.Join(parts, ", "))
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}

func formatCell(col string, count, total int) string {
	if count == 0 {
		return fmt.Sprintf("%s: 0 (0%%)", col)
	}
	return fmt.Sprintf("%s: %d (%s%%)", col, count, engine.FormatPercent(count, total))
}

// BuildPrompt embeds a data summary in the fixed instructional template
// sent across the AI boundary.
func BuildPrompt(summary string, dim schema.Dimension, drill schema.DrillDown) string {
	var b strings.Builder

	b.WriteString("You are a marketing analytics assistant reviewing aggregated contact data.\n\n")
	fmt.Fprintf(&b, "The data below groups contacts by %q", dim.Column())
	if drill != schema.DrillNone {
		fmt.Fprintf(&b, " with a %s drill-down", drillLabel(drill))
	}
	b.WriteString(". Each line shows a group, its total contacts, and per-column counts with percentages.\n\n")
	b.WriteString("DATA:\n")
	b.WriteString(summary)
	b.WriteString("\n\nWrite a concise narrative summary (3-5 sentences) of this data. ")
	b.WriteString("Highlight the largest groups, notable concentrations, and anything a marketer should act on. ")
	b.WriteString("Respond with plain text only — no markdown, no lists.")

	return b.String()
}

func drillLabel(drill schema.DrillDown) string {
	switch drill {
	case schema.DrillICP:
		return "ICP priority"
	case schema.DrillLifecycle:
		return "lifecycle stage"
	case schema.DrillJobTitle:
		return "job title"
	case schema.DrillDepartment:
		return "department"
	case schema.DrillCombined:
		return "combined ICP priority and lifecycle stage"
	default:
		return string(drill)
	}
}
