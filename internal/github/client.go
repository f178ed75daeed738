// Package github provides a ticket tracker backend for GitHub issues.
package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/danielolaszy/tickets/internal/config"
	"github.com/danielolaszy/tickets/internal/logging"
	"github.com/danielolaszy/tickets/internal/tracker"
	"github.com/danielolaszy/tickets/pkg/models"
	"github.com/google/go-github/v41/github"
	"golang.org/x/oauth2"
)

const defaultDomain = "github.com"

// Client encapsulates the GitHub API client for one repository.
type Client struct {
	client *github.Client
	domain string
	owner  string
	repo   string
}

// APIURL returns the REST endpoint for a GitHub domain. Enterprise
// installations serve the API under /api/v3/.
func APIURL(domain string) string {
	if domain == "" || domain == defaultDomain {
		return "https://api.github.com/"
	}
	return fmt.Sprintf("https://%s/api/v3/", domain)
}

// SplitRepository splits "owner/repo".
func SplitRepository(repository string) (string, string, error) {
	parts := strings.Split(repository, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository format: %s, expected format: owner/repo", repository)
	}
	return parts[0], parts[1], nil
}

// NewClient creates a GitHub client for the project's repository. A nil
// httpClient authenticates with the configured token.
func NewClient(project config.Project, httpClient *http.Client) (*Client, error) {
	if err := config.ValidateGitHubConfig(project); err != nil {
		return nil, err
	}

	owner, repo, err := SplitRepository(project.GitHubRepository)
	if err != nil {
		return nil, err
	}

	domain := project.GitHubDomain
	if domain == "" {
		domain = defaultDomain
	}
	apiURL := APIURL(domain)

	logging.Debug("github configuration",
		"domain", domain,
		"api_url", apiURL,
		"token", logging.MaskSensitive(project.GitHubToken))

	if httpClient == nil {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: project.GitHubToken},
		)
		httpClient = oauth2.NewClient(context.Background(), ts)
	}

	client := github.NewClient(httpClient)
	if domain != defaultDomain {
		parsedURL, err := url.Parse(apiURL)
		if err != nil {
			return nil, fmt.Errorf("invalid github api url: %w", err)
		}
		client.BaseURL = parsedURL
		client.UploadURL = parsedURL
	}

	return &Client{client: client, domain: domain, owner: owner, repo: repo}, nil
}

// Name identifies the backend.
func (c *Client) Name() string {
	return config.TrackerGitHub
}

// TicketURL returns the browser URL of an issue.
func (c *Client) TicketURL(id int) string {
	return fmt.Sprintf("https://%s/%s/%s/issues/%d", c.domain, c.owner, c.repo, id)
}

// Tickets retrieves all open issues of the repository, skipping pull
// requests.
func (c *Client) Tickets(ctx context.Context) ([]models.Record, error) {
	opts := &github.IssueListByRepoOptions{
		State: "open",
		ListOptions: github.ListOptions{
			PerPage: 100,
		},
	}

	var records []models.Record
	for {
		issues, resp, err := c.client.Issues.ListByRepo(ctx, c.owner, c.repo, opts)
		if err != nil {
			logging.Error("failed to fetch github issues", "error", err)
			if resp != nil {
				return nil, fmt.Errorf("failed to fetch GitHub issues: %v: %w", err, tracker.StatusError("github", resp.StatusCode))
			}
			return nil, fmt.Errorf("failed to fetch GitHub issues: %v: %w", err, tracker.ErrUnavailable)
		}

		for _, issue := range issues {
			// Pull requests are also returned by the Issues API.
			if issue.IsPullRequest() {
				continue
			}
			records = append(records, IssueRecord(issue))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	logging.Info("fetched github issues", "repository", c.owner+"/"+c.repo, "ticket_count", len(records))
	return records, nil
}

// IssueRecord converts a GitHub issue into a ticket record. The first label
// stands in for the component.
func IssueRecord(issue *github.Issue) models.Record {
	rec := models.Record{
		models.FieldTicket:      strconv.Itoa(issue.GetNumber()),
		models.FieldSummary:     issue.GetTitle(),
		models.FieldDescription: issue.GetBody(),
		models.FieldOwner:       issue.GetAssignee().GetLogin(),
		models.FieldMilestone:   issue.GetMilestone().GetTitle(),
	}
	if len(issue.Labels) > 0 {
		rec[models.FieldComponent] = issue.Labels[0].GetName()
	}
	return rec
}
