// Package trac provides functionality for reading tickets from a Trac instance.
package trac

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/danielolaszy/tickets/internal/config"
	"github.com/danielolaszy/tickets/internal/logging"
	"github.com/danielolaszy/tickets/internal/tracker"
	"github.com/danielolaszy/tickets/pkg/models"
)

// requestTimeout bounds every request to the Trac server.
const requestTimeout = 10 * time.Second

// Client reads ticket reports from Trac.
type Client struct {
	baseURL     string
	user        string
	password    string
	reportID    int
	quoteQuotes bool
	loginCookie bool
	http        *http.Client
}

// NewClient creates a Trac client for project. A nil httpClient gets a
// default client with a cookie jar and a ten second timeout.
func NewClient(project config.Project, password string, httpClient *http.Client) (*Client, error) {
	if httpClient == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		httpClient = &http.Client{Timeout: requestTimeout, Jar: jar}
	}

	logging.Debug("trac configuration",
		"base_url", project.TracBaseURL(),
		"user", project.User,
		"password", logging.MaskSensitive(password),
		"report_id", project.ReportID)

	return &Client{
		baseURL:     project.TracBaseURL(),
		user:        project.User,
		password:    password,
		reportID:    project.ReportID,
		quoteQuotes: project.QuoteQuotes,
		loginCookie: project.GetLoginCookie,
		http:        httpClient,
	}, nil
}

// Name identifies the backend.
func (c *Client) Name() string {
	return config.TrackerTrac
}

// TicketURL returns the browser URL of a ticket.
func (c *Client) TicketURL(id int) string {
	return fmt.Sprintf("%s/ticket/%d", c.baseURL, id)
}

// Tickets fetches the configured report.
func (c *Client) Tickets(ctx context.Context) ([]models.Record, error) {
	return c.Report(ctx, c.reportID)
}

// Report fetches report id as CSV and returns one record per row, keyed by
// the CSV header.
func (c *Client) Report(ctx context.Context, id int) ([]models.Record, error) {
	if c.loginCookie {
		if _, err := c.get(ctx, c.baseURL+"/login"); err != nil {
			return nil, fmt.Errorf("failed to log in to trac: %w", err)
		}
	}

	url := fmt.Sprintf("%s/report/%d?format=csv", c.baseURL, id)
	logging.Debug("fetching trac report", "url", url)

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch trac report %d: %w", id, err)
	}

	// Trac does not escape double quotes inside fields, which breaks CSV
	// quoting for some reports.
	if c.quoteQuotes {
		body = strings.ReplaceAll(body, `"`, "'")
	}

	records, err := ParseReport(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse trac report %d: %w", id, err)
	}

	logging.Info("fetched trac report", "report_id", id, "ticket_count", len(records))
	return records, nil
}

func (c *Client) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	if c.user != "" {
		req.SetBasicAuth(c.user, c.password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%v: %w", err, tracker.ErrUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", tracker.StatusError("trac", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read trac response: %w", err)
	}
	return string(data), nil
}

// ParseReport reads a Trac CSV report. Rows shorter than the header leave
// the missing fields absent.
func ParseReport(r io.Reader) ([]models.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	var records []models.Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		rec := make(models.Record, len(header))
		for i, value := range row {
			if i < len(header) {
				rec[header[i]] = value
			}
		}
		records = append(records, rec)
	}
	return records, nil
}
