// Copyright (c) 2021-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package resolver

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/mattermost/agent-resolver/pkg/command"
	"github.com/mattermost/agent-resolver/pkg/github"
)

const (
	ContextIssue = "issue"
	ContextPR    = "pr"
)

// Options are the values read from the command line
type Options struct {
	Context     string // issue or pr
	IssueNumber int
	Repo        string // owner/name
	Command     string
	PRHeadRef   string
	PRBaseRef   string
}

// Validate checks the options without talking to any service
func (opts *Options) Validate() error {
	if _, err := command.Parse(opts.Command); err != nil {
		return err
	}
	if opts.Context != ContextIssue && opts.Context != ContextPR {
		return errors.Errorf("invalid context %q, expected %s or %s", opts.Context, ContextIssue, ContextPR)
	}
	if _, _, err := github.ParseRepoSlug(opts.Repo); err != nil {
		return err
	}
	if opts.IssueNumber <= 0 {
		return errors.Errorf("issue number must be positive, got %d", opts.IssueNumber)
	}
	if opts.Context == ContextPR && opts.PRHeadRef == "" {
		return errors.New("pull request context requires the head ref")
	}
	return nil
}

// IsPullRequest returns true when the command came from a pull request
func (opts *Options) IsPullRequest() bool {
	return opts.Context == ContextPR
}

// Summary returns a one line description of the options
func (opts *Options) Summary() string {
	parts := []string{opts.Repo, fmt.Sprintf("%s #%d", opts.Context, opts.IssueNumber), "/" + opts.Command}
	return strings.Join(parts, " ")
}
