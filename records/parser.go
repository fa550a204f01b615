package records

import (
	"regexp"
	"strings"
)

// ============================================================================
// CSV PARSER — Raw export text → []Record
// ============================================================================
// Marketing-platform contact exports are comma-separated with optional
// double-quoted fields. The tokenizer matches either a non-greedy quoted
// span or a maximal run of non-comma, non-quote characters — commas inside
// quotes survive because the quoted alternative is tried first.
//
// Deliberately NOT RFC 4180:
//   - two consecutive quotes are not unescaped
//   - embedded newlines inside quoted fields are not supported
//   - every double quote in a field is stripped from the value
// ============================================================================

// fieldPattern matches one field: a quoted span or a bare run.
var fieldPattern = regexp.MustCompile(`".*?"|[^",]+`)

// ParseCSV converts raw CSV text into an ordered sequence of records.
// The first non-empty line is the header; each data line is paired with the
// header tokens positionally. Lines that are empty after trimming are
// discarded. Returns nil when fewer than two usable lines remain (no header,
// or a header with no data).
func ParseCSV(text string) []Record {
	text = strings.ReplaceAll(text, "\r", "")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) < 2 {
		return nil
	}

	header := splitHeader(lines[0])

	parsed := make([]Record, 0, len(lines)-1)
	for _, line := range lines[1:] {
		fields := fieldPattern.FindAllString(line, -1)
		rec := make(Record, len(header))
		for i, column := range header {
			if i < len(fields) {
				rec[column] = cleanField(fields[i])
			} else {
				// Short lines pad with empty values; extra fields
				// beyond the header length are ignored.
				rec[column] = ""
			}
		}
		parsed = append(parsed, rec)
	}
	return parsed
}

// splitHeader tokenizes the header line on literal commas and trims each
// token. Duplicate header names are not de-duplicated; on repeats the last
// positional assignment wins.
func splitHeader(line string) []string {
	tokens := strings.Split(line, ",")
	header := make([]string, len(tokens))
	for i, t := range tokens {
		header[i] = strings.TrimSpace(t)
	}
	return header
}

// cleanField strips all double quotes from a field and trims whitespace.
func cleanField(field string) string {
	return strings.TrimSpace(strings.ReplaceAll(field, `"`, ""))
}
