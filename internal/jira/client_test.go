package jira

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	jira "github.com/andygrunwald/go-jira"
	"github.com/danielolaszy/tickets/internal/config"
	"github.com/danielolaszy/tickets/internal/tracker"
	"github.com/danielolaszy/tickets/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchResponse = `{
  "startAt": 0,
  "maxResults": 100,
  "total": 2,
  "issues": [
    {
      "key": "PROJ-12",
      "fields": {
        "summary": "Crash on save",
        "description": "Steps to reproduce",
        "issuetype": {"name": "Bug"},
        "assignee": {"displayName": "Alice"},
        "components": [{"name": "editor"}],
        "fixVersions": [{"name": "1.0"}]
      }
    },
    {
      "key": "PROJ-15",
      "fields": {
        "summary": "Slow search",
        "issuetype": {"name": "Task"}
      }
    }
  ]
}`

func testProject(url string) config.Project {
	project := config.DefaultProject()
	project.JiraURL = url
	project.JiraUsername = "test@example.com"
	project.JiraToken = "test-token"
	project.JiraProject = "PROJ"
	return project
}

func TestNewClientCredentialValidation(t *testing.T) {
	testCases := []struct {
		name          string
		url           string
		username      string
		token         string
		errorContains string
	}{
		{name: "Missing URL", username: "test@example.com", token: "test-token", errorContains: "JIRA_URL"},
		{name: "Missing username", url: "https://example.atlassian.net", token: "test-token", errorContains: "JIRA_USERNAME"},
		{name: "Missing token", url: "https://example.atlassian.net", username: "test@example.com", errorContains: "JIRA_TOKEN"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			project := testProject(tc.url)
			project.JiraUsername = tc.username
			project.JiraToken = tc.token

			_, err := NewClient(project, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errorContains)
		})
	}
}

func TestTickets(t *testing.T) {
	var gotJQL string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/2/search", r.URL.Path)
		gotJQL = r.URL.Query().Get("jql")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(searchResponse))
	}))
	defer server.Close()

	client, err := NewClient(testProject(server.URL), server.Client())
	require.NoError(t, err)

	records, err := client.Tickets(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "project = 'PROJ' AND statusCategory != Done ORDER BY key ASC", gotJQL)
	require.Len(t, records, 2)

	assert.Equal(t, models.Record{
		models.FieldTicket:      "12",
		models.FieldSummary:     "Crash on save",
		models.FieldDescription: "Steps to reproduce",
		models.FieldType:        "Bug",
		models.FieldOwner:       "Alice",
		models.FieldComponent:   "editor",
		models.FieldMilestone:   "1.0",
	}, records[0])
	assert.Equal(t, "15", records[1].Get(models.FieldTicket))
	assert.Equal(t, "", records[1].Get(models.FieldOwner))
}

func TestTicketsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errorMessages":["nope"]}`, http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, err := NewClient(testProject(server.URL), server.Client())
	require.NoError(t, err)

	_, err = client.Tickets(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, tracker.ErrUnavailable))
}

func TestTicketsNotInitialized(t *testing.T) {
	client := &Client{}
	_, err := client.Tickets(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not initialized")
}

func TestJQLWithComponent(t *testing.T) {
	project := testProject("https://jira.example.com/")
	project.Component = "editor"

	client, err := NewClient(project, http.DefaultClient)
	require.NoError(t, err)

	assert.Equal(t, "project = 'PROJ' AND statusCategory != Done AND component = 'editor' ORDER BY key ASC", client.JQL())
	assert.Equal(t, "https://jira.example.com/browse/PROJ-9", client.TicketURL(9))
	assert.Equal(t, config.TrackerJira, client.Name())
}

func TestIssueRecordWithoutFields(t *testing.T) {
	rec := IssueRecord(jira.Issue{Key: "ABC-3"})
	assert.Equal(t, models.Record{models.FieldTicket: "3"}, rec)
}

func TestTicketNumber(t *testing.T) {
	assert.Equal(t, "123", ticketNumber("ABC-123"))
	assert.Equal(t, "7", ticketNumber("MY-PROJ-7"))
	assert.Equal(t, "NOPE", ticketNumber("NOPE"))
	assert.Equal(t, "ABC-x", ticketNumber("ABC-x"))
}
