// Package models defines data structures shared across the application.
package models

import (
	"strconv"
	"strings"
)

// Field names used by the ticket tracker and story service records. Ticket
// fields follow the column names of a Trac CSV report; other trackers map
// their own data onto the same names.
const (
	FieldTicket      = "ticket"
	FieldSummary     = "summary"
	FieldDescription = "_description"
	FieldMilestone   = "milestone"
	FieldComponent   = "component"
	FieldOwner       = "owner"
	FieldType        = "type"
	FieldPoints      = "points"

	FieldStoryID     = "id"
	FieldName        = "name"
	FieldStoryDesc   = "description"
	FieldState       = "current_state"
	FieldStoryType   = "story_type"
	FieldRequestedBy = "requested_by"
	FieldOwnedBy     = "owned_by"
	FieldEstimate    = "estimate"
	FieldIteration   = "iteration"
)

// Record is one ticket or story as a mapping from field name to value.
// Absent fields read as the empty string.
type Record map[string]string

// Get returns the value of field, or "" when the field is absent.
func (r Record) Get(field string) string {
	if r == nil {
		return ""
	}
	return r[field]
}

// Int returns the value of field parsed as an integer. Missing or
// non-numeric values yield 0 and false.
func (r Record) Int(field string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(r.Get(field)))
	if err != nil {
		return 0, false
	}
	return n, true
}

// Clone returns a copy of the record so callers can override fields
// without touching the original.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
