package records

// ============================================================================
// RECORD — Flat string-keyed contact row
// ============================================================================
// One Record per non-empty CSV data line. Keys are exactly the header tokens
// of the first non-empty line; every record in a parsed set shares the same
// key set. Values are always strings — contact exports carry no measures.
// ============================================================================

// Record is a single contact row: column name → cell value.
type Record map[string]string

// ============================================================================
// RECORD VIEW — Indexed access over a record set
// ============================================================================
// The engine reads record sets through this interface and never copies rows.
// Grouping produces SubViews (index lists into the parent view).
//
// Implementations:
//   SliceView — wraps []Record (the upload pipeline's output)
//   SubView   — subset of a parent view (indices, zero-copy)
// ============================================================================

// RecordView provides indexed access to a record set.
// The engine calls Field in tight loops — keep implementations fast.
type RecordView interface {
	Len() int
	Field(index int, column string) string
	Columns() []string
}

// SliceView wraps a []Record slice as a RecordView.
type SliceView struct {
	records []Record
	columns []string
}

// NewSliceView creates a RecordView from a []Record slice.
func NewSliceView(records []Record) RecordView {
	v := &SliceView{records: records}
	v.cacheColumns()
	return v
}

func (v *SliceView) cacheColumns() {
	if len(v.records) == 0 {
		return
	}
	seen := make(map[string]bool)
	for _, r := range v.records {
		for k := range r {
			if !seen[k] {
				seen[k] = true
				v.columns = append(v.columns, k)
			}
		}
	}
}

func (v *SliceView) Len() int { return len(v.records) }

func (v *SliceView) Field(i int, column string) string {
	if i < 0 || i >= len(v.records) {
		return ""
	}
	return v.records[i][column]
}

func (v *SliceView) Columns() []string { return v.columns }

// SubView is a subset of a parent RecordView.
// Holds indices into the parent — no data copy.
type SubView struct {
	parent  RecordView
	indices []int
}

// NewSubView creates a view over the given parent indices.
func NewSubView(parent RecordView, indices []int) RecordView {
	return &SubView{parent: parent, indices: indices}
}

func (v *SubView) Len() int { return len(v.indices) }

func (v *SubView) Field(i int, column string) string {
	if i < 0 || i >= len(v.indices) {
		return ""
	}
	return v.parent.Field(v.indices[i], column)
}

func (v *SubView) Columns() []string { return v.parent.Columns() }
