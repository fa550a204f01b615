package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/contactlens-org/contactlens/records"
)

// ============================================================================
// VALIDATION — Required-column gate for uploaded record sets
// ============================================================================
// A pure check against the first record only: parsed sets are
// header-uniform, so one record's keys stand in for the whole set.
// ============================================================================

// ErrEmptyOrInvalid reports an upload with no usable data rows — either the
// file was empty, held only a header, or could not be parsed at all.
var ErrEmptyOrInvalid = errors.New("empty or invalid file: no data rows found")

// MissingColumnsError reports required columns absent from the upload's
// header, in required-column order.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Columns, ", "))
}

// Validate checks a parsed record set against the required-column contract.
// Returns nil, ErrEmptyOrInvalid, or a *MissingColumnsError.
func Validate(recs []records.Record) error {
	if len(recs) == 0 {
		return ErrEmptyOrInvalid
	}

	var missing []string
	for _, column := range RequiredColumns {
		if _, ok := recs[0][column]; !ok {
			missing = append(missing, column)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnsError{Columns: missing}
	}
	return nil
}

// ============================================================================
// INGESTION — The three-outcome upload surface
// ============================================================================
// An upload attempt either fully yields a validated record set or an error;
// callers never see partial sets.
// ============================================================================

// Ingest parses CSV text and validates the result.
func Ingest(text string) ([]records.Record, error) {
	recs := records.ParseCSV(text)
	if err := Validate(recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// IngestXLSX parses workbook bytes and validates the result. Workbook read
// failures are surfaced as-is; they are I/O errors, not schema errors.
func IngestXLSX(data []byte) ([]records.Record, error) {
	recs, err := records.ParseXLSX(data)
	if err != nil {
		return nil, err
	}
	if err := Validate(recs); err != nil {
		return nil, err
	}
	return recs, nil
}
