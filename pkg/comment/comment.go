// Copyright (c) 2021-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package comment

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/pkg/errors"

	"github.com/mattermost/agent-resolver/pkg/agent"
	"github.com/mattermost/agent-resolver/pkg/command"
)

// Data is what gets rendered in a result comment
type Data struct {
	Result *agent.Result
	Files  []string // Files touched by the patch

	Applied        bool // Patch committed and pushed to Branch
	Branch         string
	Commit         string
	PullRequestURL string // Set when a pull request was opened for the patch
	PatchError     string // Why a patch was not applied
}

const templates = `
{{- define "footer" }}
---
<sub>Model: {{ .Result.Model }} | Cost: ${{ printf "%.4f" .Result.Cost }} | Iterations: {{ .Result.Iterations }}</sub>
{{ end }}

{{- define "status" }}{{ if .Result.Success }}done{{ else }}not completed{{ end }}{{ end }}

{{- define "patch" }}
#### Patch

{{ if .PullRequestURL -}}
Opened {{ .PullRequestURL }} from ` + "`{{ .Branch }}`" + ` (commit {{ .Commit }}).
{{ else if .Applied -}}
Applied to ` + "`{{ .Branch }}`" + ` in commit {{ .Commit }}.
{{ else if .Result.Patch -}}
{{ with .PatchError }}The patch was not applied: {{ . }}

{{ end -}}
<details><summary>Proposed patch</summary>

{{ $fence := fence .Result.Patch }}{{ $fence }}diff
{{ .Result.Patch }}
{{ $fence }}

</details>
{{ else -}}
No patch was produced.
{{ end }}
{{- with .Files }}
Files changed:
{{ range . }}- ` + "`{{ . }}`" + `
{{ end }}{{ end }}
{{- end }}

{{- define "analyze" -}}
### Analysis {{ template "status" . }}

**Summary:** {{ .Result.Summary }}

#### Explanation

{{ with .Result.Explanation }}{{ . }}{{ else }}No explanation given.{{ end }}
{{ if .Result.Patch }}{{ template "patch" . }}{{ end }}{{ template "footer" . }}
{{- end }}

{{- define "fix" -}}
### Fix {{ template "status" . }}

**Summary:** {{ .Result.Summary }}

#### Explanation

{{ with .Result.Explanation }}{{ . }}{{ else }}No explanation given.{{ end }}
{{ template "patch" . }}
{{- template "footer" . }}
{{- end }}

{{- define "test" -}}
### Tests {{ template "status" . }}

**Summary:** {{ .Result.Summary }}

#### Test plan

{{ with .Result.TestPlan }}{{ . }}{{ else }}No test plan given.{{ end }}
{{ template "patch" . }}
{{- template "footer" . }}
{{- end }}

{{- define "review" -}}
### Review {{ template "status" . }}

**Summary:** {{ .Result.Summary }}

#### Comments

{{ range .Result.ReviewComments }}- {{ . }}
{{ else }}No comments.
{{ end }}
{{- if .Result.Patch }}{{ template "patch" . }}{{ end }}{{ template "footer" . }}
{{- end }}

{{- define "error" -}}
### ` + "`/{{ .Command }}`" + ` failed

The resolver could not complete the command:

{{ $fence := fence .Error }}{{ $fence }}
{{ .Error }}
{{ $fence }}
{{ with .RunURL }}
See the [workflow run]({{ . }}) for details.
{{ end }}
{{- end }}
`

var commentTemplates = template.Must(
	template.New("comment").Funcs(template.FuncMap{"fence": Fence}).Parse(templates),
)

// Fence returns a markdown code fence that text cannot close: one
// backtick longer than the longest backtick run in it, and at least three.
func Fence(text string) string {
	longest, run := 0, 0
	for _, c := range text {
		if c != '`' {
			run = 0
			continue
		}
		run++
		if run > longest {
			longest = run
		}
	}
	if longest < 3 {
		longest = 2
	}
	return strings.Repeat("`", longest+1)
}

// Render returns the comment body for the result of a command
func Render(cmd command.Command, data *Data) (string, error) {
	if data == nil || data.Result == nil {
		return "", errors.New("no result to render")
	}
	if _, err := command.Parse(cmd.String()); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := commentTemplates.ExecuteTemplate(&buf, cmd.String(), data); err != nil {
		return "", errors.Wrapf(err, "rendering %s comment", cmd)
	}
	return strings.TrimSpace(buf.String()) + "\n", nil
}

// RenderError returns the comment posted when a command fails. runURL
// links to the CI run and may be empty.
func RenderError(cmd command.Command, err error, runURL string) string {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	var buf bytes.Buffer
	if terr := commentTemplates.ExecuteTemplate(&buf, "error", struct {
		Command command.Command
		Error   string
		RunURL  string
	}{cmd, msg, runURL}); terr != nil {
		return "Command failed: " + msg + "\n"
	}
	return strings.TrimSpace(buf.String()) + "\n"
}
