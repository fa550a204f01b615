package schema

// ============================================================================
// SCHEMA — Fixed column contract for marketing-contact exports
// ============================================================================
// Unlike a generic analytics engine, the dashboard works against one known
// export shape. The contract is a constant: six required columns, two legal
// grouping dimensions, and five drill-down modes mapped to source columns.
// ============================================================================

// Source column names, exact and case-sensitive.
const (
	ColumnAdGroup    = "Ad Group Name"
	ColumnAdCampaign = "Ad Campaign Name"
	ColumnICP        = "Company ICP Priority for Contacts"
	ColumnLifecycle  = "Lifecycle Stage"
	ColumnJobTitle   = "Job Title"
	ColumnDepartment = "Department"
)

// RequiredColumns is the required-column contract, in fixed order.
// Validation failures report missing names in this order.
var RequiredColumns = []string{
	ColumnAdGroup,
	ColumnAdCampaign,
	ColumnICP,
	ColumnLifecycle,
	ColumnJobTitle,
	ColumnDepartment,
}

// ============================================================================
// DIMENSION — Primary grouping column
// ============================================================================

// Dimension identifies which column supplies the primary grouping key.
type Dimension string

// Built-in dimensions. The type is open for extension but these two are
// the supported groupings.
const (
	DimensionAdGroup    Dimension = ColumnAdGroup
	DimensionAdCampaign Dimension = ColumnAdCampaign
)

// Dimensions lists the built-in dimensions; the first is the default.
var Dimensions = []Dimension{DimensionAdGroup, DimensionAdCampaign}

// Valid reports whether d is one of the built-in dimensions.
func (d Dimension) Valid() bool {
	for _, dim := range Dimensions {
		if d == dim {
			return true
		}
	}
	return false
}

// Column returns the source column the dimension groups by.
func (d Dimension) Column() string { return string(d) }

// ============================================================================
// DRILL-DOWN — Secondary breakdown mode
// ============================================================================

// DrillDown identifies the secondary breakdown applied within each
// primary group.
type DrillDown string

const (
	DrillNone       DrillDown = "none"
	DrillICP        DrillDown = "icp"
	DrillLifecycle  DrillDown = "lifecycle"
	DrillJobTitle   DrillDown = "job_title"
	DrillDepartment DrillDown = "department"
	// DrillCombined is the two-level mode: ICP priority outer,
	// lifecycle stage inner.
	DrillCombined DrillDown = "combined"
)

// DrillDowns lists every legal drill-down mode.
var DrillDowns = []DrillDown{
	DrillNone, DrillICP, DrillLifecycle, DrillJobTitle, DrillDepartment, DrillCombined,
}

// Valid reports whether d is a legal drill-down mode.
func (d DrillDown) Valid() bool {
	for _, dd := range DrillDowns {
		if d == dd {
			return true
		}
	}
	return false
}

// Column returns the source column backing a single-column drill-down.
// DrillNone has no column; DrillCombined reads ColumnICP and
// ColumnLifecycle directly rather than a single mapped column.
func (d DrillDown) Column() string {
	switch d {
	case DrillICP:
		return ColumnICP
	case DrillLifecycle:
		return ColumnLifecycle
	case DrillJobTitle:
		return ColumnJobTitle
	case DrillDepartment:
		return ColumnDepartment
	default:
		return ""
	}
}
