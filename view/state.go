package view

import (
	"github.com/contactlens-org/contactlens/engine"
	"github.com/contactlens-org/contactlens/records"
	"github.com/contactlens-org/contactlens/schema"
)

// ============================================================================
// VIEW STATE — Immutable per-step dashboard state
// ============================================================================
// State is a value: every operation returns a new snapshot and leaves the
// receiver untouched, so view transitions are unit-testable without any
// rendering harness. Aggregates are derived on demand, never stored —
// recomputation is O(records) per change, fine at thousands of rows.
// ============================================================================

// ExpandedCell identifies the single (row, column) pair whose nested
// breakdown panel is currently shown.
type ExpandedCell struct {
	Primary string `json:"primary"`
	Key     string `json:"key"`
}

// State is one snapshot of the dashboard's view state.
type State struct {
	recs []records.Record
	view records.RecordView

	Dimension schema.Dimension `json:"dimension"`
	DrillDown schema.DrillDown `json:"drillDown"`
	Expanded  *ExpandedCell    `json:"expanded,omitempty"`
}

// NewState returns the default state: first built-in dimension, no
// drill-down, nothing expanded, no records.
func NewState() State {
	return State{
		Dimension: schema.Dimensions[0],
		DrillDown: schema.DrillNone,
	}
}

// LoadRecords replaces the active record set wholesale and restores the
// dimension, drill-down, and expanded cell to their defaults.
func (s State) LoadRecords(recs []records.Record) State {
	next := NewState()
	next.recs = recs
	next.view = records.NewSliceView(recs)
	return next
}

// Reset clears the record set and all view state.
func (s State) Reset() State {
	return NewState()
}

// SetDimension replaces the primary grouping dimension. The expanded cell
// survives a dimension switch; only drill-down changes clear it.
func (s State) SetDimension(d schema.Dimension) State {
	s.Dimension = d
	return s
}

// SetDrillDown replaces the drill-down mode and unconditionally clears the
// expanded cell, even when the new mode equals the old one.
func (s State) SetDrillDown(d schema.DrillDown) State {
	s.DrillDown = d
	s.Expanded = nil
	return s
}

// ToggleCell expands the given (primary, key) pair, or collapses it when it
// is already the expanded cell. At most one cell is expanded at a time.
// The mutation contract is identical in every drill-down mode even though
// only the combined mode renders an expansion panel.
func (s State) ToggleCell(primary, key string) State {
	if s.Expanded != nil && s.Expanded.Primary == primary && s.Expanded.Key == key {
		s.Expanded = nil
		return s
	}
	s.Expanded = &ExpandedCell{Primary: primary, Key: key}
	return s
}

// Aggregate recomputes the derived summary for the current snapshot.
func (s State) Aggregate() ([]string, []engine.AggregateRow) {
	if s.view == nil {
		return nil, nil
	}
	return engine.Aggregate(s.view, s.Dimension, s.DrillDown)
}

// Records returns the active record set.
func (s State) Records() []records.Record { return s.recs }

// Len returns the number of active records.
func (s State) Len() int { return len(s.recs) }
