package insight

import (
	"strings"
	"testing"

	"github.com/contactlens-org/contactlens/engine"
	"github.com/contactlens-org/contactlens/records"
	"github.com/contactlens-org/contactlens/schema"
)

// ============================================================================
// SUMMARIZER TESTS
// ============================================================================

const summaryCSV = `Ad Group Name,Ad Campaign Name,Company ICP Priority for Contacts,Lifecycle Stage,Job Title,Department
Alpha,Q1 Launch,High,Lead,Engineer,Engineering
Alpha,Q1 Launch,High,MQL,Manager,Marketing
Beta,Q1 Launch,Low,Lead,Director,Sales
`

func aggregated(t *testing.T, drill schema.DrillDown) ([]string, []engine.AggregateRow) {
	t.Helper()
	v := records.NewSliceView(records.ParseCSV(summaryCSV))
	return engine.Aggregate(v, schema.DimensionAdGroup, drill)
}

func TestSummarizeFlat(t *testing.T) {
	headers, rows := aggregated(t, schema.DrillICP)
	got := Summarize(headers, rows, schema.DimensionAdGroup, schema.DrillICP)

	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected one line per row, got %d:\n%s", len(lines), got)
	}
	if lines[0] != "Alpha (Total: 2): High: 2 (100.0%), Low: 0 (0%)" {
		t.Errorf("line 1 = %q", lines[0])
	}
	if lines[1] != "Beta (Total: 1): High: 0 (0%), Low: 1 (100.0%)" {
		t.Errorf("line 2 = %q", lines[1])
	}
}

func TestSummarizeNone(t *testing.T) {
	headers, rows := aggregated(t, schema.DrillNone)
	got := Summarize(headers, rows, schema.DimensionAdGroup, schema.DrillNone)
	if got != "Alpha (Total: 2)\nBeta (Total: 1)" {
		t.Errorf("summary = %q", got)
	}
}

func TestSummarizeCombinedUsesOuterCounts(t *testing.T) {
	headers, rows := aggregated(t, schema.DrillCombined)
	got := Summarize(headers, rows, schema.DimensionAdGroup, schema.DrillCombined)
	if !strings.Contains(got, "Alpha (Total: 2): High: 2 (100.0%)") {
		t.Errorf("combined summary should use outer bucket counts:\n%s", got)
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("Alpha (Total: 2)", schema.DimensionAdGroup, schema.DrillICP)
	if !strings.Contains(prompt, "Alpha (Total: 2)") {
		t.Error("prompt should embed the summary payload")
	}
	if !strings.Contains(prompt, schema.ColumnAdGroup) {
		t.Error("prompt should name the grouping column")
	}
	if !strings.Contains(prompt, "ICP priority") {
		t.Error("prompt should describe the drill-down")
	}
}
