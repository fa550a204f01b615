// Package contactlens is a CSV analytics engine for marketing-contact
// exports: upload a contact CSV (or XLSX), group by ad group or campaign,
// drill down by ICP priority, lifecycle stage, job title, or department,
// and ask Gemini for a narrative summary of the aggregate view.
//
// Usage:
//
//	import (
//	    "github.com/contactlens-org/contactlens/schema"
//	    "github.com/contactlens-org/contactlens/view"
//	)
//
//	recs, err := schema.Ingest(csvText)
//	state := view.NewState().LoadRecords(recs).SetDrillDown(schema.DrillCombined)
//	headers, rows := state.Aggregate()
//
// Aggregation is a pure function of (records, dimension, drill-down) and
// never calls any external service; the AI boundary lives in the insight
// package and only ever sees aggregate lines, never raw contact rows.
package contactlens
