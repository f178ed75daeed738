// Package tracker defines the issue source abstraction shared by every
// ticket tracker backend, along with the filters applied to listings.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/danielolaszy/tickets/internal/format"
	"github.com/danielolaszy/tickets/pkg/models"
)

var (
	// ErrNotFound is returned when a ticket or story is absent or not open.
	ErrNotFound = errors.New("not open or not available")
	// ErrUnavailable is returned when a service cannot be reached or
	// answers with an unexpected status.
	ErrUnavailable = errors.New("service unavailable")
)

// unassignedOwner is the placeholder owner Trac gives unassigned tickets.
const unassignedOwner = "somebody"

// Source supplies the open tickets of one project.
type Source interface {
	// Name identifies the backend in logs.
	Name() string
	// Tickets returns the open tickets as records keyed by models.Field*.
	Tickets(ctx context.Context) ([]models.Record, error)
	// TicketURL returns the browser URL of a ticket.
	TicketURL(id int) string
}

// StatusError builds an ErrUnavailable error for an HTTP status code.
func StatusError(service string, status int) error {
	return fmt.Errorf("%s answered with status %d: %w", service, status, ErrUnavailable)
}

// Filter narrows a ticket listing.
type Filter struct {
	// Component keeps only tickets of this component when set.
	Component string
	// Pattern is matched against the rendered row when set.
	Pattern *regexp.Regexp
	// NotAssigned keeps only tickets without an owner.
	NotAssigned bool
	// Only keeps only these ticket numbers when non-empty.
	Only []int
}

// NormalizeOwner blanks the placeholder owner of unassigned tickets.
func NormalizeOwner(rec models.Record) models.Record {
	if rec.Get(models.FieldOwner) != unassignedOwner {
		return rec
	}
	out := rec.Clone()
	out[models.FieldOwner] = ""
	return out
}

// Row is a selected ticket together with its rendered line.
type Row struct {
	Record models.Record
	Line   string
}

// Select applies filter to records and renders the survivors with tmpl.
// Records keep their input order.
func Select(records []models.Record, filter Filter, tmpl format.Template) []Row {
	only := make(map[int]bool, len(filter.Only))
	for _, id := range filter.Only {
		only[id] = true
	}

	var rows []Row
	for _, raw := range records {
		rec := NormalizeOwner(raw)

		if filter.Component != "" && filter.Component != rec.Get(models.FieldComponent) {
			continue
		}
		if filter.NotAssigned && rec.Get(models.FieldOwner) != "" {
			continue
		}
		if len(only) > 0 {
			id, _ := rec.Int(tmpl.IDField)
			if !only[id] {
				continue
			}
		}

		line := tmpl.Render(rec)
		if filter.Pattern != nil && !filter.Pattern.MatchString(line) {
			continue
		}
		rows = append(rows, Row{Record: rec, Line: line})
	}
	return rows
}

// Find returns the record whose idField equals id.
func Find(records []models.Record, idField string, id int) (models.Record, error) {
	for _, rec := range records {
		if n, ok := rec.Int(idField); ok && n == id {
			return rec, nil
		}
	}
	return nil, fmt.Errorf("ticket %d: %w", id, ErrNotFound)
}

// ParseIDs parses a comma separated list of ticket numbers.
func ParseIDs(list string) ([]int, error) {
	var ids []int
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid ticket number %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
