package format

import "github.com/danielolaszy/tickets/pkg/models"

// TracTemplate renders ticket tracker rows.
var TracTemplate = Template{
	Layout:  "#%03d - (%s) (%s) (%s) [%s] %s",
	IDField: models.FieldTicket,
	Fields: []Field{
		{Name: models.FieldMilestone, Limit: 10, Width: 10},
		{Name: models.FieldComponent, Limit: 10, Width: 10},
		{Name: models.FieldOwner, Limit: 7, Width: 7},
		{Name: models.FieldSummary, Limit: 60, Width: 60},
		{Name: models.FieldDescription, Limit: 50},
	},
}

// DetailTemplate renders a ticket without truncation.
var DetailTemplate = Template{
	Layout:  "#%03d - (%s) (%s) (%s) [%s] %s",
	IDField: models.FieldTicket,
	Fields: []Field{
		{Name: models.FieldMilestone, Width: 10},
		{Name: models.FieldComponent, Width: 10},
		{Name: models.FieldOwner, Width: 7},
		{Name: models.FieldSummary, Width: 60},
		{Name: models.FieldDescription},
	},
}

// StoryTemplate renders story service rows.
var StoryTemplate = Template{
	Layout:  "#%07d - (%s) (%s) (%s) [%s] %s",
	IDField: models.FieldStoryID,
	Fields: []Field{
		{Name: models.FieldState, Limit: 10, Width: 10},
		{Name: models.FieldStoryType, Limit: 8, Width: 8},
		{Name: models.FieldRequestedBy, Limit: 9, Width: 9},
		{Name: models.FieldName, Limit: 60, Width: 60},
		{Name: models.FieldStoryDesc, Limit: 50},
	},
}
