// Package migrate turns ticket tracker tickets into story service stories.
package migrate

import (
	"fmt"
	"strings"

	"github.com/danielolaszy/tickets/internal/config"
	"github.com/danielolaszy/tickets/internal/pivotal"
	"github.com/danielolaszy/tickets/pkg/models"
)

// Reference returns the back-reference line appended to migrated stories.
func Reference(ticketURL string) string {
	return "Reference: " + ticketURL
}

// StoryFromTicket builds the story for a ticket found at ticketURL. The
// requester and story type go through the project's team and type mappings;
// unmapped values are left empty so the service applies its defaults.
func StoryFromTicket(rec models.Record, project config.Project, ticketURL string) pivotal.StoryInput {
	description := fmt.Sprintf("%s\n\n%s", rec.Get(models.FieldDescription), Reference(ticketURL))

	return pivotal.StoryInput{
		Name:        rec.Get(models.FieldSummary),
		Description: description,
		StoryType:   project.PivotalTicketTypeMapping[rec.Get(models.FieldType)],
		Estimate:    strings.TrimSpace(rec.Get(models.FieldPoints)),
		RequestedBy: project.PivotalTeamMapping[rec.Get(models.FieldOwner)],
	}
}
