package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
default_project: web
web:
  user: alice
  server: trac.example.com
  url_trac_prefix: projects/web
  report_id: 7
  path_regexp: /src\/web/
  pivotal_api_token: abc123
  pivotal_project_id: "4242"
  pivotal_team_mapping:
    alice: Alice Smith
api:
  server: trac.internal
  ssl: false
  quote_quotes: true
  path_regexp: src/api
  component: backend
  pivotal_ticket_type_mapping:
    defect: bug
catchall:
  path_regexp: src
issues:
  tracker: github
  github_repository: org/repo
`

// clearEnv unsets every variable ApplyEnv reads.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"TICKETS_PASSWORD", "PIVOTAL_API_TOKEN", "JIRA_URL", "JIRA_USERNAME",
		"JIRA_TOKEN", "GITHUB_TOKEN", "GITHUB_DOMAIN", "TICKETS_CONFIG",
	} {
		t.Setenv(name, "")
	}
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "web", cfg.DefaultProject)
	require.Len(t, cfg.Projects, 4)

	web := cfg.Projects["web"]
	assert.Equal(t, "web", web.Name)
	assert.Equal(t, TrackerTrac, web.Tracker)
	assert.Equal(t, "alice", web.User)
	assert.Equal(t, 7, web.ReportID)
	assert.True(t, web.SSL)
	assert.Equal(t, "https://trac.example.com/projects/web", web.TracBaseURL())
	assert.Equal(t, "Alice Smith", web.PivotalTeamMapping["alice"])
	assert.Equal(t, DefaultTicketTypeMapping(), web.PivotalTicketTypeMapping)

	api := cfg.Projects["api"]
	assert.False(t, api.SSL)
	assert.True(t, api.QuoteQuotes)
	assert.Equal(t, 1, api.ReportID)
	assert.Equal(t, "http://trac.internal/trac", api.TracBaseURL())
	assert.Equal(t, map[string]string{"defect": "bug"}, api.PivotalTicketTypeMapping)
	assert.NotNil(t, api.PivotalTeamMapping)

	assert.Equal(t, TrackerGitHub, cfg.Projects["issues"].Tracker)
	assert.Equal(t, "github.com", cfg.Projects["issues"].GitHubDomain)
}

func TestParseRulesKeepFileOrder(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	require.Len(t, cfg.Rules, 3)
	assert.Equal(t, "web", cfg.Rules[0].Project)
	assert.Equal(t, "api", cfg.Rules[1].Project)
	assert.Equal(t, "catchall", cfg.Rules[2].Project)
	assert.Equal(t, `src\/web`, cfg.Rules[0].Pattern.String())
}

func TestParseErrors(t *testing.T) {
	testCases := []struct {
		name string
		data string
	}{
		{name: "Not a mapping", data: "- one\n- two\n"},
		{name: "Invalid path pattern", data: "bad:\n  path_regexp: \"([\"\n"},
		{name: "Wrong field type", data: "bad:\n  report_id: [1, 2]\n"},
		{name: "Malformed YAML", data: "bad: [unterminated\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.data))
			assert.Error(t, err)
		})
	}
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, cfg.Projects)

	_, err = cfg.Resolve("", "/anywhere")
	assert.True(t, errors.Is(err, ErrNoProject))
}

func TestResolve(t *testing.T) {
	clearEnv(t)

	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	testCases := []struct {
		name     string
		project  string
		dir      string
		expected string
		wantErr  bool
	}{
		{name: "Explicit project wins", project: "api", dir: "/home/me/src/web", expected: "api"},
		{name: "First matching rule", dir: "/home/me/src/web/app", expected: "web"},
		{name: "Second rule", dir: "/home/me/src/api", expected: "api"},
		{name: "Later catch-all", dir: "/home/me/src/other", expected: "catchall"},
		{name: "Fallback to default", dir: "/tmp", expected: "web"},
		{name: "Unknown project", project: "nope", dir: "/tmp", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			project, err := cfg.Resolve(tc.project, tc.dir)
			if tc.wantErr {
				assert.True(t, errors.Is(err, ErrNoProject))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, project.Name)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("TICKETS_PASSWORD", "s3cret")
	t.Setenv("PIVOTAL_API_TOKEN", "env-token")
	t.Setenv("GITHUB_DOMAIN", "github.example.com")

	project := DefaultProject()
	project.User = "alice"
	project.PivotalAPIToken = "file-token"

	got := ApplyEnv(project)
	assert.Equal(t, "s3cret", got.Password)
	assert.Equal(t, "env-token", got.PivotalAPIToken)
	assert.Equal(t, "github.example.com", got.GitHubDomain)
	assert.Equal(t, "alice", got.JiraUsername)

	// The original value is untouched.
	assert.Equal(t, "file-token", project.PivotalAPIToken)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tickets.yml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Projects, 4)

	_, err = Load(filepath.Join(dir, "missing.yml"))
	assert.Error(t, err)
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("TICKETS_CONFIG", "/etc/tickets.yml")
	assert.Equal(t, "/etc/tickets.yml", DefaultPath())

	t.Setenv("TICKETS_CONFIG", "")
	assert.Equal(t, defaultFileName, filepath.Base(DefaultPath()))
}

func TestValidateJiraConfig(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		username string
		token    string
		project  string
		wantErr  bool
	}{
		{name: "All fields present", url: "https://jira.example.com", username: "test-user", token: "test-token", project: "PROJ"},
		{name: "Missing URL", username: "test-user", token: "test-token", project: "PROJ", wantErr: true},
		{name: "Missing username", url: "https://jira.example.com", token: "test-token", project: "PROJ", wantErr: true},
		{name: "Missing token", url: "https://jira.example.com", username: "test-user", project: "PROJ", wantErr: true},
		{name: "Missing project", url: "https://jira.example.com", username: "test-user", token: "test-token", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Project{JiraURL: tt.url, JiraUsername: tt.username, JiraToken: tt.token, JiraProject: tt.project}
			err := ValidateJiraConfig(p)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateGitHubConfig(t *testing.T) {
	assert.NoError(t, ValidateGitHubConfig(Project{GitHubToken: "t", GitHubRepository: "o/r"}))
	assert.ErrorContains(t, ValidateGitHubConfig(Project{GitHubRepository: "o/r"}), "GITHUB_TOKEN")
	assert.ErrorContains(t, ValidateGitHubConfig(Project{GitHubToken: "t"}), "github_repository")
}

func TestValidatePivotalConfig(t *testing.T) {
	assert.NoError(t, ValidatePivotalConfig(Project{PivotalAPIToken: "t", PivotalProjectID: "1"}))
	assert.ErrorContains(t, ValidatePivotalConfig(Project{Name: "web", PivotalProjectID: "1"}), "pivotal_api_token")
}
