// Copyright (c) 2021-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package resolver

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/mattermost/agent-resolver/pkg/agent"
	"github.com/mattermost/agent-resolver/pkg/command"
)

// Report is the record of one resolver run
type Report struct {
	Repo        string        `json:"repo"`
	Context     string        `json:"context"`
	IssueNumber int           `json:"issue_number"`
	Command     string        `json:"command"`
	StartedAt   time.Time     `json:"started_at"`
	FinishedAt  time.Time     `json:"finished_at"`
	Result      *agent.Result `json:"result,omitempty"`

	Files          []string `json:"files,omitempty"`
	Branch         string   `json:"branch,omitempty"`
	Commit         string   `json:"commit,omitempty"`
	PullRequestURL string   `json:"pull_request_url,omitempty"`
	PatchError     string   `json:"patch_error,omitempty"`
	CommentURL     string   `json:"comment_url,omitempty"`
	Error          string   `json:"error,omitempty"`
}

func newReport(opts *Options, cmd command.Command) *Report {
	return &Report{
		Repo:        opts.Repo,
		Context:     opts.Context,
		IssueNumber: opts.IssueNumber,
		Command:     cmd.String(),
		StartedAt:   time.Now().UTC(),
	}
}

func (r *Report) finish(err error) {
	r.FinishedAt = time.Now().UTC()
	if err != nil {
		r.Error = err.Error()
	}
}

// JSON returns the serialized report
func (r *Report) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "serializing report")
	}
	return data, nil
}

// Destination returns where the report is stored. A base URL ending in
// a slash gets a file name derived from the run.
func (r *Report) Destination(baseURL string) string {
	if !strings.HasSuffix(baseURL, "/") {
		return baseURL
	}
	return fmt.Sprintf(
		"%s%s-%d-%s-%d.json", baseURL, strings.ReplaceAll(r.Repo, "/", "-"),
		r.IssueNumber, r.Command, r.StartedAt.Unix(),
	)
}
