// Copyright (c) 2021-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package config

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/sethvargo/go-envconfig"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	DefaultModel         = "claude-sonnet-4-20250514"
	DefaultMaxBudget     = 4.0
	DefaultMaxIterations = 5
	DefaultMaxTokens     = 8192
	DefaultHistory       = 5
	DefaultAuthorName    = "agent-resolver[bot]"
	DefaultAuthorEmail   = "agent-resolver@users.noreply.github.com"
)

type Config struct {
	GitHub   GitHubConfig   `yaml:"github"`
	Agent    AgentConfig    `yaml:"agent"`
	Comments CommentsConfig `yaml:"comments"`
	Git      GitConfig      `yaml:"git"`
	Verify   VerifyConfig   `yaml:"verify"`
	Issues   IssuesConfig   `yaml:"issues"`
	Report   ReportConfig   `yaml:"report"`
}

type GitHubConfig struct {
	Token     string `yaml:"-" env:"GITHUB_TOKEN,overwrite"`
	ServerURL string `yaml:"server_url" env:"GITHUB_SERVER_URL,overwrite"`
	RunRepo   string `yaml:"-" env:"GITHUB_REPOSITORY,overwrite"`
	RunID     string `yaml:"-" env:"GITHUB_RUN_ID,overwrite"`
}

type AgentConfig struct {
	Model         string        `yaml:"model" env:"LLM_MODEL,overwrite"`
	APIKey        string        `yaml:"-" env:"LLM_API_KEY,overwrite"`
	BaseURL       string        `yaml:"base_url" env:"LLM_BASE_URL,overwrite"`
	MaxBudget     float64       `yaml:"max_budget" env:"MAX_BUDGET_PER_TASK,overwrite"` // Cost limit per run, in USD
	MaxIterations int           `yaml:"max_iterations" env:"MAX_ITERATIONS,overwrite"`
	MaxTokens     int64         `yaml:"max_tokens"`
	Pricing       []PriceConfig `yaml:"pricing"`
}

// PriceConfig is the price of a model family in USD per million tokens
type PriceConfig struct {
	Model  string  `yaml:"model"`
	Input  float64 `yaml:"input"`
	Output float64 `yaml:"output"`
}

type CommentsConfig struct {
	History int `yaml:"history"` // Number of recent comments included in the prompt
}

type GitConfig struct {
	AuthorName  string `yaml:"author_name" env:"GIT_AUTHOR_NAME,overwrite"`
	AuthorEmail string `yaml:"author_email" env:"GIT_AUTHOR_EMAIL,overwrite"`
	Remote      string `yaml:"remote"`
}

type VerifyConfig struct {
	Target string `yaml:"target"` // make target run on the patched clone before pushing
}

type IssuesConfig struct {
	OpenPullRequest bool   `yaml:"open_pull_request"`
	BaseBranch      string `yaml:"base_branch"`
}

type ReportConfig struct {
	URL        string `yaml:"url" env:"RESOLVER_REPORT_URL,overwrite"` // file:// or s3:// destination of the run report
	S3Region   string `yaml:"s3_region"`
	S3Endpoint string `yaml:"s3_endpoint"`
}

// Default returns a configuration with all defaults set
func Default() *Config {
	return &Config{
		GitHub: GitHubConfig{
			ServerURL: "https://github.com",
		},
		Agent: AgentConfig{
			Model:         DefaultModel,
			MaxBudget:     DefaultMaxBudget,
			MaxIterations: DefaultMaxIterations,
			MaxTokens:     DefaultMaxTokens,
		},
		Comments: CommentsConfig{
			History: DefaultHistory,
		},
		Git: GitConfig{
			AuthorName:  DefaultAuthorName,
			AuthorEmail: DefaultAuthorEmail,
			Remote:      "origin",
		},
	}
}

// Load builds the configuration. Defaults are read first, then the YAML
// file in path (if any) and finally the environment.
func Load(ctx context.Context, path string) (*Config, error) {
	return LoadWithLookuper(ctx, path, envconfig.OsLookuper())
}

// LoadWithLookuper is Load reading the environment from l
func LoadWithLookuper(ctx context.Context, path string, l envconfig.Lookuper) (*Config, error) {
	conf := Default()
	if path != "" {
		yamlData, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "reading configuration file")
		}
		if err := yaml.Unmarshal(yamlData, conf); err != nil {
			return nil, errors.Wrap(err, "parsing config yaml data")
		}
		logrus.Infof("Loaded configuration from %s", path)
	}

	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   conf,
		Lookuper: l,
	}); err != nil {
		return nil, errors.Wrap(err, "reading configuration from environment")
	}
	return conf, nil
}

// Validate checks the configuration values to make sure they are complete
func (conf *Config) Validate() error {
	if conf.GitHub.Token == "" {
		return errors.New("GitHub token is missing (set GITHUB_TOKEN)")
	}
	if conf.Agent.APIKey == "" {
		return errors.New("agent API key is missing (set LLM_API_KEY)")
	}
	if conf.Agent.Model == "" {
		return errors.New("agent model is missing (set LLM_MODEL)")
	}
	if conf.Agent.MaxBudget <= 0 {
		return errors.Errorf("cost limit must be positive, got %.2f", conf.Agent.MaxBudget)
	}
	if conf.Agent.MaxIterations < 1 {
		return errors.Errorf("max iterations must be at least 1, got %d", conf.Agent.MaxIterations)
	}
	if conf.Comments.History < 0 {
		return errors.Errorf("comment history cannot be negative, got %d", conf.Comments.History)
	}
	for i, p := range conf.Agent.Pricing {
		if p.Model == "" {
			return errors.Errorf("pricing entry #%d has no model", i)
		}
		if p.Input < 0 || p.Output < 0 {
			return errors.Errorf("pricing entry #%d for %s has a negative price", i, p.Model)
		}
	}
	if conf.Git.AuthorName == "" || conf.Git.AuthorEmail == "" {
		return errors.New("git author name and email are required")
	}
	logrus.Debug("Resolver configuration is valid")
	return nil
}

// RunURL returns the link to the CI run when executing in GitHub Actions
func (conf *Config) RunURL() string {
	if conf.GitHub.RunRepo == "" || conf.GitHub.RunID == "" {
		return ""
	}
	return conf.GitHub.ServerURL + "/" + conf.GitHub.RunRepo + "/actions/runs/" + conf.GitHub.RunID
}
