// Package branch derives git branch names for tickets and stories.
package branch

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	// KindStory is the prefix used for story service branches.
	KindStory = "story"
	// KindTicket is the prefix used for ticket tracker branches.
	KindTicket = "tick"
)

// ticketReference matches the back-reference appended to stories that were
// migrated from the ticket tracker.
var ticketReference = regexp.MustCompile(`Reference: \S*/ticket/(\d+)`)

// Request holds the inputs for a branch name.
type Request struct {
	// ID is the ticket or story number, rendered zero-padded to 3 digits.
	ID int
	// Title is sanitized into the tail of the name.
	Title string
	// Description is only scanned for a ticket reference.
	Description string
	// Kind is the fixed prefix, KindStory when empty.
	Kind string
}

// Set is a snapshot of existing branch names.
type Set map[string]struct{}

// NewSet builds a Set from a list of branch names.
func NewSet(names ...string) Set {
	set := make(Set, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

// Contains reports whether name is in the set.
func (s Set) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// Sanitize replaces every rune that is not an ASCII letter or digit with an
// underscore.
func Sanitize(title string) string {
	var builder strings.Builder
	builder.Grow(len(title))
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			builder.WriteRune(r)
		default:
			builder.WriteByte('_')
		}
	}
	return builder.String()
}

// TicketReference returns the ticket number referenced in a story
// description, if any.
func TicketReference(description string) (int, bool) {
	match := ticketReference.FindStringSubmatch(description)
	if match == nil {
		return 0, false
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Base returns the undisambiguated branch name for req.
func Base(req Request) string {
	kind := req.Kind
	if kind == "" {
		kind = KindStory
	}

	prefix := ""
	if ticket, ok := TicketReference(req.Description); ok {
		prefix = fmt.Sprintf("%s%03d_", KindTicket, ticket)
	}

	return fmt.Sprintf("%s%s%03d_%s", prefix, kind, req.ID, Sanitize(req.Title))
}

// Name returns a branch name for req that is not present in existing.
//
// The snapshot is not re-read while disambiguating, so a branch created
// concurrently by another process can still collide.
func Name(req Request, existing Set) string {
	base := Base(req)
	name := base
	for cnt := 1; existing.Contains(name); {
		cnt++
		name = fmt.Sprintf("%s.v%02d", base, cnt)
	}
	return name
}
