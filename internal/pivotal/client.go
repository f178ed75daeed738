// Package pivotal provides functionality for interacting with the Pivotal
// Tracker story service.
package pivotal

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/danielolaszy/tickets/internal/logging"
	"github.com/danielolaszy/tickets/internal/markup"
	"github.com/danielolaszy/tickets/internal/tracker"
	"github.com/danielolaszy/tickets/pkg/models"
)

const requestTimeout = 10 * time.Second

// State is a story state that can be set from the command line.
type State string

const (
	StateStarted   State = "started"
	StateFinished  State = "finished"
	StateDelivered State = "delivered"
)

// ParseState validates a state name.
func ParseState(name string) (State, error) {
	switch s := State(strings.ToLower(strings.TrimSpace(name))); s {
	case StateStarted, StateFinished, StateDelivered:
		return s, nil
	}
	return "", fmt.Errorf("invalid story state %q: expected started, finished or delivered", name)
}

// Story is a story as returned by the service.
type Story struct {
	ID           int    `xml:"id"`
	ProjectID    int    `xml:"project_id"`
	StoryType    string `xml:"story_type"`
	URL          string `xml:"url"`
	Estimate     string `xml:"estimate"`
	CurrentState string `xml:"current_state"`
	Description  string `xml:"description"`
	Name         string `xml:"name"`
	RequestedBy  string `xml:"requested_by"`
	OwnedBy      string `xml:"owned_by"`
	Labels       string `xml:"labels"`
	Iteration    string `xml:"iteration>number"`
}

// Record converts the story into a record for rendering.
func (s Story) Record() models.Record {
	return models.Record{
		models.FieldStoryID:     strconv.Itoa(s.ID),
		models.FieldName:        s.Name,
		models.FieldStoryDesc:   s.Description,
		models.FieldState:       s.CurrentState,
		models.FieldStoryType:   s.StoryType,
		models.FieldRequestedBy: s.RequestedBy,
		models.FieldOwnedBy:     s.OwnedBy,
		models.FieldEstimate:    s.Estimate,
		models.FieldIteration:   s.Iteration,
	}
}

type storyList struct {
	Stories []Story `xml:"story"`
}

// StoryInput holds the fields of a new story. Empty fields are omitted.
type StoryInput struct {
	Name        string
	Description string
	StoryType   string
	Estimate    string
	RequestedBy string
}

// payload renders the input as a story XML document.
func (in StoryInput) payload() string {
	var b strings.Builder
	b.WriteString("<story>")
	writeElement(&b, "story_type", in.StoryType)
	writeElement(&b, "name", in.Name)
	writeElement(&b, "estimate", in.Estimate)
	writeElement(&b, "requested_by", in.RequestedBy)
	writeElement(&b, "description", in.Description)
	b.WriteString("</story>")
	return b.String()
}

func writeElement(b *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "<%s>%s</%s>", name, markup.Escape(value), name)
}

// Client talks to one story service project.
type Client struct {
	baseURL   string
	projectID string
	token     string
	http      *http.Client
}

// NewClient creates a client for projectID. A nil httpClient gets a default
// client with a ten second timeout.
func NewClient(baseURL, projectID, token string, httpClient *http.Client) (*Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("pivotal project id is required")
	}
	if token == "" {
		return nil, fmt.Errorf("pivotal api token is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid pivotal base url: %w", err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}

	logging.Debug("pivotal configuration",
		"base_url", baseURL,
		"project_id", projectID,
		"token", logging.MaskSensitive(token))

	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		projectID: projectID,
		token:     token,
		http:      httpClient,
	}, nil
}

// StoryURL returns the browser URL of a story.
func (c *Client) StoryURL(id int) string {
	web := "https://www.pivotaltracker.com"
	if u, err := url.Parse(c.baseURL); err == nil && u.Host != "" {
		web = u.Scheme + "://" + u.Host
	}
	return fmt.Sprintf("%s/stories/%d", web, id)
}

func (c *Client) projectPath(format string, args ...any) string {
	return c.baseURL + "/projects/" + c.projectID + fmt.Sprintf(format, args...)
}

// Stories lists the stories of the project.
func (c *Client) Stories(ctx context.Context) ([]Story, error) {
	var list storyList
	if err := c.do(ctx, http.MethodGet, c.projectPath("/stories"), "", &list); err != nil {
		return nil, fmt.Errorf("failed to fetch stories: %w", err)
	}

	logging.Info("fetched pivotal stories", "project_id", c.projectID, "story_count", len(list.Stories))
	return list.Stories, nil
}

// Story fetches one story. A missing story yields tracker.ErrNotFound.
func (c *Client) Story(ctx context.Context, id int) (Story, error) {
	var story Story
	if err := c.do(ctx, http.MethodGet, c.projectPath("/stories/%d", id), "", &story); err != nil {
		return Story{}, fmt.Errorf("failed to fetch story %d: %w", id, err)
	}
	return story, nil
}

// CreateStory creates a story and returns it as stored by the service.
func (c *Client) CreateStory(ctx context.Context, in StoryInput) (Story, error) {
	if strings.TrimSpace(in.Name) == "" {
		return Story{}, fmt.Errorf("story name is required")
	}

	var story Story
	if err := c.do(ctx, http.MethodPost, c.projectPath("/stories"), in.payload(), &story); err != nil {
		return Story{}, fmt.Errorf("failed to create story %q: %w", in.Name, err)
	}

	logging.Info("created pivotal story", "story_id", story.ID, "name", story.Name)
	return story, nil
}

// AddNote posts a comment on a story.
func (c *Client) AddNote(ctx context.Context, id int, text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("comment text is required")
	}

	payload := "<note><text>" + markup.Escape(text) + "</text></note>"
	if err := c.do(ctx, http.MethodPost, c.projectPath("/stories/%d/notes", id), payload, nil); err != nil {
		return fmt.Errorf("failed to comment on story %d: %w", id, err)
	}

	logging.Info("commented on pivotal story", "story_id", id)
	return nil
}

// SetState moves a story to state.
func (c *Client) SetState(ctx context.Context, id int, state State) error {
	if _, err := ParseState(string(state)); err != nil {
		return err
	}

	payload := "<story><current_state>" + markup.Escape(string(state)) + "</current_state></story>"
	if err := c.do(ctx, http.MethodPut, c.projectPath("/stories/%d", id), payload, nil); err != nil {
		return fmt.Errorf("failed to set story %d to %s: %w", id, state, err)
	}

	logging.Info("updated pivotal story state", "story_id", id, "state", state)
	return nil
}

// do sends an XML request and decodes an XML response into out when out is
// not nil.
func (c *Client) do(ctx context.Context, method, endpoint, payload string, out any) error {
	var body io.Reader
	if payload != "" {
		body = bytes.NewBufferString(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("X-TrackerToken", c.token)
	if payload != "" {
		req.Header.Set("Content-Type", "application/xml")
	}

	logging.Debug("pivotal request", "method", method, "url", endpoint)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%v: %w", err, tracker.ErrUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return tracker.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return tracker.StatusError("pivotal", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := xml.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode pivotal response: %w", err)
	}
	return nil
}
