// Package format renders ticket and story records as fixed-width text rows.
package format

import (
	"fmt"
	"strings"

	"github.com/danielolaszy/tickets/pkg/models"
)

// ellipsis replaces the tail of a truncated value.
const ellipsis = "..."

// minMarkedLimit is the smallest limit for which truncation is marked.
const minMarkedLimit = 5

var lineBreaks = strings.NewReplacer("\r", " ", "\n", " ")

// Truncate limits value to limit runes. Line breaks are replaced with
// spaces. A value longer than limit has its last three runes overwritten
// with "..." unless limit is below five, in which case the plain prefix is
// returned. Values that fit are returned unpadded.
func Truncate(value string, limit int) string {
	if limit < 0 {
		limit = 0
	}

	runes := []rune(value)
	if len(runes) <= limit {
		return lineBreaks.Replace(value)
	}

	cut := lineBreaks.Replace(string(runes[:limit]))
	if limit < minMarkedLimit {
		return cut
	}

	marked := []rune(cut)
	copy(marked[limit-len(ellipsis):], []rune(ellipsis))
	return string(marked)
}

// Pad left-justifies value to width runes. Wider values are returned as-is.
func Pad(value string, width int) string {
	n := len([]rune(value))
	if width <= n {
		return value
	}
	return value + strings.Repeat(" ", width-n)
}

// Field describes one rendered column.
type Field struct {
	// Name is the record field to read.
	Name string
	// Limit truncates the value; zero or negative disables truncation.
	Limit int
	// Width pads the value; zero disables padding.
	Width int
}

// Cell returns the truncated and padded value of f in rec.
func (f Field) Cell(rec models.Record) string {
	value := rec.Get(f.Name)
	if f.Limit > 0 {
		value = Truncate(value, f.Limit)
	} else {
		value = lineBreaks.Replace(value)
	}
	return Pad(value, f.Width)
}

// Template is a printf layout over an integer id followed by Fields.
type Template struct {
	Layout  string
	IDField string
	Fields  []Field
}

// Render formats rec as a single newline-terminated line.
func (t Template) Render(rec models.Record) string {
	id, _ := rec.Int(t.IDField)

	args := make([]any, 0, len(t.Fields)+1)
	args = append(args, id)
	for _, field := range t.Fields {
		args = append(args, field.Cell(rec))
	}

	line := strings.TrimRight(fmt.Sprintf(t.Layout, args...), "\n")
	return line + "\n"
}

// RenderAll renders every record in order.
func (t Template) RenderAll(records []models.Record) []string {
	lines := make([]string, 0, len(records))
	for _, rec := range records {
		lines = append(lines, t.Render(rec))
	}
	return lines
}
