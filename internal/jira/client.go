// Package jira provides a ticket tracker backend for JIRA projects.
package jira

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	jira "github.com/andygrunwald/go-jira"
	"github.com/danielolaszy/tickets/internal/config"
	"github.com/danielolaszy/tickets/internal/logging"
	"github.com/danielolaszy/tickets/internal/tracker"
	"github.com/danielolaszy/tickets/pkg/models"
)

// pageSize is the number of issues requested per search call.
const pageSize = 100

// Client handles interactions with the JIRA API.
type Client struct {
	client    *jira.Client
	baseURL   string
	project   string
	component string
}

// NewClient creates a new JIRA client for the project's JIRA settings.
// A nil httpClient uses basic authentication with the configured token.
func NewClient(project config.Project, httpClient *http.Client) (*Client, error) {
	if err := config.ValidateJiraConfig(project); err != nil {
		return nil, err
	}

	if httpClient == nil {
		tp := jira.BasicAuthTransport{
			Username: project.JiraUsername,
			Password: project.JiraToken,
		}
		httpClient = tp.Client()
	}

	client, err := jira.NewClient(httpClient, project.JiraURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create jira client: %w", err)
	}

	logging.Debug("jira configuration",
		"url", project.JiraURL,
		"username", project.JiraUsername,
		"token", logging.MaskSensitive(project.JiraToken),
		"project", project.JiraProject)

	return &Client{
		client:    client,
		baseURL:   strings.TrimRight(project.JiraURL, "/"),
		project:   project.JiraProject,
		component: project.Component,
	}, nil
}

// Name identifies the backend.
func (c *Client) Name() string {
	return config.TrackerJira
}

// TicketURL returns the browser URL of a ticket.
func (c *Client) TicketURL(id int) string {
	return fmt.Sprintf("%s/browse/%s-%d", c.baseURL, c.project, id)
}

// JQL returns the query used to list open tickets.
func (c *Client) JQL() string {
	jql := fmt.Sprintf("project = '%s' AND statusCategory != Done", c.project)
	if c.component != "" {
		jql += fmt.Sprintf(" AND component = '%s'", c.component)
	}
	return jql + " ORDER BY key ASC"
}

// Tickets returns the open tickets of the project.
func (c *Client) Tickets(ctx context.Context) ([]models.Record, error) {
	if c.client == nil {
		return nil, fmt.Errorf("JIRA client not initialized")
	}

	jql := c.JQL()
	logging.Debug("searching jira issues", "jql", jql)

	var records []models.Record
	opts := &jira.SearchOptions{MaxResults: pageSize}
	for {
		issues, resp, err := c.client.Issue.SearchWithContext(ctx, jql, opts)
		if err != nil {
			if resp != nil {
				return nil, fmt.Errorf("failed to search JIRA issues: %v: %w", err, tracker.StatusError("jira", resp.StatusCode))
			}
			return nil, fmt.Errorf("failed to search JIRA issues: %v: %w", err, tracker.ErrUnavailable)
		}

		for _, issue := range issues {
			records = append(records, IssueRecord(issue))
		}

		opts.StartAt += len(issues)
		if len(issues) == 0 || resp == nil || opts.StartAt >= resp.Total {
			break
		}
	}

	logging.Info("fetched jira issues", "project", c.project, "ticket_count", len(records))
	return records, nil
}

// IssueRecord converts a JIRA issue into a ticket record. The ticket number
// is the numeric part of the issue key.
func IssueRecord(issue jira.Issue) models.Record {
	rec := models.Record{
		models.FieldTicket: ticketNumber(issue.Key),
	}
	fields := issue.Fields
	if fields == nil {
		return rec
	}

	rec[models.FieldSummary] = fields.Summary
	rec[models.FieldDescription] = fields.Description
	rec[models.FieldType] = fields.Type.Name
	if fields.Assignee != nil {
		rec[models.FieldOwner] = fields.Assignee.DisplayName
	}
	if len(fields.Components) > 0 && fields.Components[0] != nil {
		rec[models.FieldComponent] = fields.Components[0].Name
	}
	if len(fields.FixVersions) > 0 && fields.FixVersions[0] != nil {
		rec[models.FieldMilestone] = fields.FixVersions[0].Name
	}
	return rec
}

// ticketNumber extracts 123 from "ABC-123".
func ticketNumber(key string) string {
	idx := strings.LastIndex(key, "-")
	if idx == -1 {
		return key
	}
	if _, err := strconv.Atoi(key[idx+1:]); err != nil {
		return key
	}
	return key[idx+1:]
}
