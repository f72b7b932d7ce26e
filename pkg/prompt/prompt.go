// Copyright (c) 2021-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package prompt

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/pkg/errors"

	"github.com/mattermost/agent-resolver/pkg/command"
	"github.com/mattermost/agent-resolver/pkg/comment"
	"github.com/mattermost/agent-resolver/pkg/github"
)

// MaxDiffSize is the largest pull request diff included in a prompt, in bytes
const MaxDiffSize = 60000

const truncatedNotice = "\n[diff truncated]\n"

// Input is everything known about the thread the command was posted in
type Input struct {
	Command  command.Command
	Repo     string // owner/name
	Issue    *github.Issue
	Comments []*github.Comment

	// Only set for pull requests
	PullRequest bool
	HeadRef     string
	BaseRef     string
	Diff        string
}

var instructions = map[command.Command]string{
	command.Analyze: "Find the root cause of the problem described below and explain it. Point to the code involved.",
	command.Fix:     "Write a patch that resolves the problem described below. Keep the change as small as possible.",
	command.Test:    "Write tests that reproduce or cover the problem described below.",
	command.Review:  "Review the changes in the pull request below. Look for bugs, missing tests and unclear code.",
}

var promptTemplate = template.Must(template.New("prompt").Funcs(template.FuncMap{"fence": comment.Fence}).Parse(
	`You were asked to {{ .Command }} {{ if .PullRequest }}pull request{{ else }}issue{{ end }} #{{ .Issue.Number }} in {{ .Repo }}.

{{ .Instructions }}

# {{ .Issue.Title }}

{{ with .Issue.Body }}{{ . }}{{ else }}No description provided.{{ end }}
{{ with .Comments }}
## Recent comments
{{ range . }}
### {{ .Username }} ({{ .CreatedAt.Format "2006-01-02 15:04" }})

{{ .Body }}
{{ end }}{{ end }}{{ if .PullRequest }}
## Pull request

Head branch: {{ .HeadRef }}
Base branch: {{ .BaseRef }}
{{ with .Diff }}
{{ $fence := fence . }}{{ $fence }}diff
{{ . }}
{{ $fence }}
{{ end }}{{ end }}`,
))

// Build returns the problem statement sent to the agent
func Build(in *Input) (string, error) {
	if in.Issue == nil {
		return "", errors.New("prompt needs an issue")
	}
	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, struct {
		*Input
		Instructions string
		Diff         string
	}{
		Input:        in,
		Instructions: instructions[in.Command],
		Diff:         TruncateDiff(in.Diff, MaxDiffSize),
	}); err != nil {
		return "", errors.Wrap(err, "rendering prompt")
	}
	return buf.String(), nil
}

// TruncateDiff cuts a diff at the last line break that fits in max bytes
func TruncateDiff(diff string, max int) string {
	diff = strings.TrimRight(diff, "\n")
	if len(diff) <= max {
		return diff
	}
	cut := diff[:max]
	if i := strings.LastIndex(cut, "\n"); i > 0 {
		cut = cut[:i]
	}
	return cut + truncatedNotice
}
