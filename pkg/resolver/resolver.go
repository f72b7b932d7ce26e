// Copyright (c) 2021-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package resolver

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mattermost/agent-resolver/pkg/agent"
	"github.com/mattermost/agent-resolver/pkg/comment"
	"github.com/mattermost/agent-resolver/pkg/command"
	"github.com/mattermost/agent-resolver/pkg/config"
	"github.com/mattermost/agent-resolver/pkg/git"
	"github.com/mattermost/agent-resolver/pkg/github"
	"github.com/mattermost/agent-resolver/pkg/object"
	"github.com/mattermost/agent-resolver/pkg/patch"
	"github.com/mattermost/agent-resolver/pkg/prompt"
)

const (
	newBranchTemplate  = "agent-%s-issue-%d-%d"
	forkRemoteTemplate = "fork-%s"
	commitTemplate     = "Apply agent %s for #%d\n\n%s\n"
	prTitleTemplate    = "Agent %s for #%d: %s"
	prBodyTemplate     = "Automated %s for #%d.\n\n%s\n\nCloses #%d\n"
)

// Resolver runs one command from an issue or pull request comment
type Resolver struct {
	impl    resolverImplementation
	state   State
	options *Options
	config  *config.Config
}

// New returns a resolver for the given configuration and options
func New(conf *config.Config, opts *Options) *Resolver {
	return &Resolver{
		impl:    &defaultResolverImplementation{},
		state:   State{},
		options: opts,
		config:  conf,
	}
}

type State struct {
	github   *github.GitHub
	ghrepo   *github.Repository
	git      *git.Git
	agent    *agent.Agent
	objects  *object.Manager
	cloneURL string

	issue *github.Issue
	pr    *github.PullRequest // Only in pull request context

	initialized bool
}

// pushTarget is the branch a patch is committed to
type pushTarget struct {
	URL    string // Repository to clone
	Branch string
	Base   string // Branch to start from when Create is set. Empty means the default branch.
	Create bool

	// Set when Branch lives in a fork. The fork is added as Remote and the
	// branch is fetched from it and pushed back to it.
	Remote    string
	RemoteURL string
}

// patchOutcome is what happened to a patch. Error explains why a patch
// could not be applied; it is shown to the user and does not fail the run.
type patchOutcome struct {
	Applied bool
	Branch  string
	Base    string
	Commit  string
	Error   string
}

type resolverImplementation interface {
	initialize(*State, *config.Config, *Options) error
	fetchThread(context.Context, *State, *config.Config, *Options) (*prompt.Input, error)
	runAgent(context.Context, *State, *agent.Task) (*agent.Result, error)
	applyPatch(*State, *config.Config, *patch.Patch, *pushTarget, string) (*patchOutcome, error)
	openPullRequest(ctx context.Context, state *State, head, base, title, body string) (*github.PullRequest, error)
	postComment(context.Context, *State, int, string) (*github.Comment, error)
	writeReport(*State, string, []byte) error
}

// Run executes the command. Any failure after the options are validated
// is posted to the thread as an error comment and returned.
func (r *Resolver) Run(ctx context.Context) (err error) {
	if err := r.options.Validate(); err != nil {
		return errors.Wrap(err, "validating options")
	}
	cmd, err := command.Parse(r.options.Command)
	if err != nil {
		return err
	}

	report := newReport(r.options, cmd)
	defer func() {
		report.finish(err)
		r.saveReport(report)
	}()

	if err := r.impl.initialize(&r.state, r.config, r.options); err != nil {
		return r.fail(ctx, cmd, errors.Wrap(err, "initializing clients"))
	}
	r.state.initialized = true
	logrus.Infof("Running %s on %s #%d in %s", cmd, r.options.Context, r.options.IssueNumber, r.options.Repo)

	input, err := r.impl.fetchThread(ctx, &r.state, r.config, r.options)
	if err != nil {
		return r.fail(ctx, cmd, errors.Wrap(err, "reading the thread from GitHub"))
	}
	input.Command = cmd

	statement, err := prompt.Build(input)
	if err != nil {
		return r.fail(ctx, cmd, errors.Wrap(err, "building the problem statement"))
	}

	result, err := r.impl.runAgent(ctx, &r.state, &agent.Task{Command: cmd, ProblemStatement: statement})
	if err != nil {
		return r.fail(ctx, cmd, errors.Wrap(err, "running the agent"))
	}
	report.Result = result
	logrus.Infof("Agent finished in %d iterations, cost $%.4f", result.Iterations, result.Cost)

	data := &comment.Data{Result: result}
	if result.Patch != "" {
		if err := r.handlePatch(ctx, cmd, result, data); err != nil {
			return r.fail(ctx, cmd, errors.Wrap(err, "handling the agent patch"))
		}
		report.Files = data.Files
		report.Branch = data.Branch
		report.Commit = data.Commit
		report.PullRequestURL = data.PullRequestURL
		report.PatchError = data.PatchError
	}

	body, err := comment.Render(cmd, data)
	if err != nil {
		return r.fail(ctx, cmd, errors.Wrap(err, "rendering the result comment"))
	}
	c, err := r.impl.postComment(ctx, &r.state, r.options.IssueNumber, body)
	if err != nil {
		// No error comment, posting is what failed
		logrus.Errorf("Posting result comment: %v", err)
		return errors.Wrap(err, "posting the result comment")
	}
	report.CommentURL = c.URL
	logrus.Infof("Posted result to %s", c.URL)
	return nil
}

// handlePatch applies the patch where the context allows it and fills
// the patch fields of the comment data
func (r *Resolver) handlePatch(ctx context.Context, cmd command.Command, result *agent.Result, data *comment.Data) error {
	p, err := patch.Parse(result.Patch)
	if err != nil {
		logrus.Warnf("Agent returned an invalid patch: %v", err)
		data.PatchError = err.Error()
		return nil
	}
	data.Files = p.FileNames()

	target, reason := r.pushTargetFor(cmd)
	if target == nil {
		if reason != "" {
			data.PatchError = reason
		}
		logrus.Infof("Not applying patch: %s", reason)
		return nil
	}

	number := r.options.IssueNumber
	outcome, err := r.impl.applyPatch(
		&r.state, r.config, p, target, fmt.Sprintf(commitTemplate, cmd, number, result.Summary),
	)
	if err != nil {
		return err
	}
	if !outcome.Applied {
		data.PatchError = outcome.Error
		return nil
	}
	data.Applied = true
	data.Branch = outcome.Branch
	data.Commit = outcome.Commit

	if r.options.IsPullRequest() {
		return nil
	}

	title := ""
	if r.state.issue != nil {
		title = r.state.issue.Title
	}
	pr, err := r.impl.openPullRequest(
		ctx, &r.state, outcome.Branch, outcome.Base,
		fmt.Sprintf(prTitleTemplate, cmd, number, title),
		fmt.Sprintf(prBodyTemplate, cmd, number, result.Summary, number),
	)
	if err != nil {
		return errors.Wrapf(err, "opening pull request from %s", outcome.Branch)
	}
	data.PullRequestURL = pr.URL
	return nil
}

// pushTargetFor returns where a patch is committed. When it returns nil,
// the string explains why (empty when there is nothing to explain).
func (r *Resolver) pushTargetFor(cmd command.Command) (*pushTarget, string) {
	if r.options.IsPullRequest() {
		target := &pushTarget{URL: r.state.cloneURL, Branch: r.options.PRHeadRef}
		pr := r.state.pr
		if pr == nil {
			return target, ""
		}
		if pr.HeadRepoDeleted() {
			return nil, "the repository of the head branch no longer exists"
		}
		if pr.IsFork() {
			if pr.MaintainerCanModify == nil || !*pr.MaintainerCanModify {
				return nil, fmt.Sprintf("the head branch is in %s and maintainers cannot push to it", pr.FullName)
			}
			owner, name, err := github.ParseRepoSlug(pr.FullName)
			if err != nil {
				return nil, err.Error()
			}
			target.Remote = fmt.Sprintf(forkRemoteTemplate, owner)
			target.RemoteURL = git.GitHubURL(owner, name)
		}
		return target, ""
	}

	if !cmd.ExpectsPatch() || !r.config.Issues.OpenPullRequest {
		return nil, ""
	}
	return &pushTarget{
		URL:    r.state.cloneURL,
		Branch: fmt.Sprintf(newBranchTemplate, cmd, r.options.IssueNumber, time.Now().Unix()),
		Base:   r.config.Issues.BaseBranch,
		Create: true,
	}, ""
}

// fail reports an error to the thread and returns it
func (r *Resolver) fail(ctx context.Context, cmd command.Command, err error) error {
	logrus.Errorf("%s failed: %v", cmd, err)
	if !r.state.initialized {
		return err
	}
	body := comment.RenderError(cmd, err, r.config.RunURL())
	if _, cerr := r.impl.postComment(ctx, &r.state, r.options.IssueNumber, body); cerr != nil {
		logrus.Errorf("Posting error comment: %v", cerr)
	}
	return err
}

// saveReport stores the run report. Failures are only logged.
func (r *Resolver) saveReport(report *Report) {
	if r.config.Report.URL == "" || r.state.objects == nil {
		return
	}
	data, err := report.JSON()
	if err != nil {
		logrus.Warnf("Could not serialize report: %v", err)
		return
	}
	dest := report.Destination(r.config.Report.URL)
	if err := r.impl.writeReport(&r.state, dest, data); err != nil {
		logrus.Warnf("Could not write report to %s: %v", dest, err)
		return
	}
	logrus.Infof("Wrote run report to %s", dest)
}
