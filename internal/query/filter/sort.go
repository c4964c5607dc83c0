package filter

import "strings"

// SortField orders a list by one field
type SortField struct {
	Field      string `json:"field"`
	Descending bool   `json:"descending"`
}

// Sort is an ordered list of sort fields; earlier fields take precedence
type Sort []SortField

// Render returns the comma-separated sort order, "-" marking descending fields
func (s Sort) Render() string {
	parts := make([]string, 0, len(s))
	for _, f := range s {
		if f.Field == "" {
			continue
		}
		if f.Descending {
			parts = append(parts, "-"+f.Field)
		} else {
			parts = append(parts, f.Field)
		}
	}
	return strings.Join(parts, ",")
}

// ParseSort reads tokens such as "createdAt" or "-createdAt". Comma-separated
// tokens are split, blanks skipped.
func ParseSort(tokens ...string) Sort {
	var out Sort
	for _, tok := range tokens {
		for _, part := range strings.Split(tok, ",") {
			part = strings.TrimSpace(part)
			if part == "" || part == "-" {
				continue
			}
			if strings.HasPrefix(part, "-") {
				out = append(out, SortField{Field: part[1:], Descending: true})
			} else {
				out = append(out, SortField{Field: part})
			}
		}
	}
	return out
}
