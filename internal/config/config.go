// Package config provides centralized configuration management for the application.
//
// Projects are described in a YAML file (by default ~/.trac-tickets). Secrets
// and service endpoints may also come from environment variables, which take
// precedence over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Tracker backends.
const (
	TrackerTrac   = "trac"
	TrackerJira   = "jira"
	TrackerGitHub = "github"
)

const (
	defaultFileName       = ".trac-tickets"
	defaultProjectKey     = "default_project"
	defaultPivotalBaseURL = "https://www.pivotaltracker.com/services/v3"
	defaultGitHubDomain   = "github.com"
)

// ErrNoProject is returned when no project could be resolved.
var ErrNoProject = errors.New("no project specified")

// Project holds the settings for one project. It is assembled once per
// invocation and passed by value.
type Project struct {
	Name    string `yaml:"-"`
	Tracker string `yaml:"tracker"`

	User           string `yaml:"user"`
	Password       string `yaml:"password"`
	Server         string `yaml:"server"`
	ReportID       int    `yaml:"report_id"`
	SSL            bool   `yaml:"ssl"`
	URLTracPrefix  string `yaml:"url_trac_prefix"`
	QuoteQuotes    bool   `yaml:"quote_quotes"`
	GetLoginCookie bool   `yaml:"get_login_cookie"`
	PathRegexp     string `yaml:"path_regexp"`
	Component      string `yaml:"component"`

	PivotalAPIToken          string            `yaml:"pivotal_api_token"`
	PivotalProjectID         string            `yaml:"pivotal_project_id"`
	PivotalBaseURL           string            `yaml:"pivotal_base_url"`
	PivotalTeamMapping       map[string]string `yaml:"pivotal_team_mapping"`
	PivotalTicketTypeMapping map[string]string `yaml:"pivotal_ticket_type_mapping"`

	JiraURL      string `yaml:"jira_url"`
	JiraUsername string `yaml:"jira_username"`
	JiraToken    string `yaml:"jira_token"`
	JiraProject  string `yaml:"jira_project"`

	GitHubRepository string `yaml:"github_repository"`
	GitHubDomain     string `yaml:"github_domain"`
	GitHubToken      string `yaml:"github_token"`
}

// DefaultProject returns a project populated with default settings.
func DefaultProject() Project {
	return Project{
		Tracker:        TrackerTrac,
		Server:         "localhost",
		ReportID:       1,
		SSL:            true,
		URLTracPrefix:  "trac",
		PivotalBaseURL: defaultPivotalBaseURL,
		GitHubDomain:   defaultGitHubDomain,
	}
}

// DefaultTicketTypeMapping maps ticket tracker types to story types.
func DefaultTicketTypeMapping() map[string]string {
	return map[string]string{
		"task":        "chore",
		"enhancement": "feature",
		"defect":      "bug",
	}
}

// TracBaseURL returns the root URL of the project's Trac instance.
func (p Project) TracBaseURL() string {
	scheme := "http"
	if p.SSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s", scheme, p.Server, p.URLTracPrefix)
}

// Rule selects a project when its pattern matches the working directory.
type Rule struct {
	Pattern *regexp.Regexp
	Project string
}

// Config holds all projects read from the project file.
type Config struct {
	DefaultProject string
	Projects       map[string]Project
	// Rules are kept in file order; the first match wins.
	Rules []Rule
}

// DefaultPath returns the project file location, honouring TICKETS_CONFIG.
func DefaultPath() string {
	v := viper.New()
	v.BindEnv("config", "TICKETS_CONFIG")
	if path := v.GetString("config"); path != "" {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return defaultFileName
	}
	return filepath.Join(home, defaultFileName)
}

// Load reads and parses the project file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a project file. Each top-level key other than
// default_project is a project merged over DefaultProject.
func Parse(data []byte) (*Config, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	cfg := &Config{Projects: make(map[string]Project)}
	if len(doc.Content) == 0 {
		return cfg, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected a mapping of projects, got %s", root.Tag)
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i].Value, root.Content[i+1]

		if key == defaultProjectKey {
			cfg.DefaultProject = value.Value
			continue
		}

		project := DefaultProject()
		if err := value.Decode(&project); err != nil {
			return nil, fmt.Errorf("project %q: %w", key, err)
		}
		project.Name = key
		if project.PivotalTicketTypeMapping == nil {
			project.PivotalTicketTypeMapping = DefaultTicketTypeMapping()
		}
		if project.PivotalTeamMapping == nil {
			project.PivotalTeamMapping = map[string]string{}
		}
		cfg.Projects[key] = project

		if project.PathRegexp == "" {
			continue
		}
		pattern, err := compilePathPattern(project.PathRegexp)
		if err != nil {
			return nil, fmt.Errorf("project %q: invalid path_regexp: %w", key, err)
		}
		cfg.Rules = append(cfg.Rules, Rule{Pattern: pattern, Project: key})
	}

	return cfg, nil
}

// compilePathPattern accepts both plain patterns and /slash delimited/ ones.
func compilePathPattern(raw string) (*regexp.Regexp, error) {
	pattern := strings.TrimSpace(raw)
	if len(pattern) >= 2 && strings.HasPrefix(pattern, "/") && strings.HasSuffix(pattern, "/") {
		pattern = pattern[1 : len(pattern)-1]
	}
	return regexp.Compile(pattern)
}

// ProjectFor returns the project name for the working directory dir.
func (c *Config) ProjectFor(dir string) string {
	for _, rule := range c.Rules {
		if rule.Pattern.MatchString(dir) {
			return rule.Project
		}
	}
	return c.DefaultProject
}

// Resolve picks the project called name, or the one matching dir when name
// is empty, and applies environment overrides.
func (c *Config) Resolve(name, dir string) (Project, error) {
	if name == "" {
		name = c.ProjectFor(dir)
	}
	if name == "" {
		return Project{}, ErrNoProject
	}

	project, ok := c.Projects[name]
	if !ok {
		return Project{}, fmt.Errorf("%w: unknown project %q", ErrNoProject, name)
	}
	return ApplyEnv(project), nil
}

// ApplyEnv overrides secrets and endpoints with environment variables.
func ApplyEnv(p Project) Project {
	v := viper.New()
	v.BindEnv("password", "TICKETS_PASSWORD")
	v.BindEnv("pivotal.token", "PIVOTAL_API_TOKEN")
	v.BindEnv("jira.url", "JIRA_URL")
	v.BindEnv("jira.username", "JIRA_USERNAME")
	v.BindEnv("jira.token", "JIRA_TOKEN")
	v.BindEnv("github.token", "GITHUB_TOKEN")
	v.BindEnv("github.domain", "GITHUB_DOMAIN")

	override := func(dst *string, key string) {
		if value := v.GetString(key); value != "" {
			*dst = value
		}
	}

	override(&p.Password, "password")
	override(&p.PivotalAPIToken, "pivotal.token")
	override(&p.JiraURL, "jira.url")
	override(&p.JiraUsername, "jira.username")
	override(&p.JiraToken, "jira.token")
	override(&p.GitHubToken, "github.token")
	override(&p.GitHubDomain, "github.domain")

	if p.JiraUsername == "" {
		p.JiraUsername = p.User
	}
	return p
}

// ValidatePivotalConfig checks the settings needed to talk to the story service.
func ValidatePivotalConfig(p Project) error {
	var missing []string
	if p.PivotalAPIToken == "" {
		missing = append(missing, "pivotal_api_token")
	}
	if p.PivotalProjectID == "" {
		missing = append(missing, "pivotal_project_id")
	}
	if len(missing) > 0 {
		return fmt.Errorf("project %s is missing required settings: %v", p.Name, missing)
	}
	return nil
}

// ValidateJiraConfig validates JIRA-specific configuration.
func ValidateJiraConfig(p Project) error {
	var missingVars []string

	if p.JiraURL == "" {
		missingVars = append(missingVars, "JIRA_URL")
	}
	if p.JiraUsername == "" {
		missingVars = append(missingVars, "JIRA_USERNAME")
	}
	if p.JiraToken == "" {
		missingVars = append(missingVars, "JIRA_TOKEN")
	}
	if p.JiraProject == "" {
		missingVars = append(missingVars, "jira_project")
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("missing required jira settings: %v", missingVars)
	}
	return nil
}

// ValidateGitHubConfig validates GitHub-specific configuration.
func ValidateGitHubConfig(p Project) error {
	var missingVars []string

	if p.GitHubToken == "" {
		missingVars = append(missingVars, "GITHUB_TOKEN")
	}
	if p.GitHubRepository == "" {
		missingVars = append(missingVars, "github_repository")
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("missing required github settings: %v", missingVars)
	}
	return nil
}
