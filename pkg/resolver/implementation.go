// Copyright (c) 2021-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package resolver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mattermost/agent-resolver/pkg/agent"
	"github.com/mattermost/agent-resolver/pkg/comment"
	"github.com/mattermost/agent-resolver/pkg/config"
	"github.com/mattermost/agent-resolver/pkg/git"
	"github.com/mattermost/agent-resolver/pkg/github"
	"github.com/mattermost/agent-resolver/pkg/object"
	"github.com/mattermost/agent-resolver/pkg/object/backends"
	"github.com/mattermost/agent-resolver/pkg/patch"
	"github.com/mattermost/agent-resolver/pkg/prompt"
	"github.com/mattermost/agent-resolver/pkg/runners"
)

// Lines of verify output quoted in the comment when it fails
const verifyOutputLines = 20

type defaultResolverImplementation struct{}

// initialize creates the API clients. Nothing here talks to a service.
func (impl *defaultResolverImplementation) initialize(state *State, conf *config.Config, opts *Options) error {
	owner, name, err := github.ParseRepoSlug(opts.Repo)
	if err != nil {
		return errors.Wrap(err, "parsing repository")
	}

	state.github = github.NewWithOptions(&github.Options{Token: conf.GitHub.Token})
	state.ghrepo = state.github.NewRepository(owner, name)
	state.cloneURL = git.GitHubURL(owner, name)
	state.git = git.NewWithOptions(&git.Options{
		Token:       conf.GitHub.Token,
		AuthorName:  conf.Git.AuthorName,
		AuthorEmail: conf.Git.AuthorEmail,
		Remote:      conf.Git.Remote,
	})

	pricing := []agent.Price{}
	for _, p := range conf.Agent.Pricing {
		pricing = append(pricing, agent.Price{Model: p.Model, Input: p.Input, Output: p.Output})
	}
	state.agent = agent.New(&agent.Options{
		Model:         conf.Agent.Model,
		APIKey:        conf.Agent.APIKey,
		BaseURL:       conf.Agent.BaseURL,
		MaxBudget:     conf.Agent.MaxBudget,
		MaxIterations: conf.Agent.MaxIterations,
		MaxTokens:     conf.Agent.MaxTokens,
		Pricing:       pricing,
	})

	state.objects = object.NewManagerWithOptions(&backends.Options{
		S3Region:   conf.Report.S3Region,
		S3Endpoint: conf.Report.S3Endpoint,
	})
	return nil
}

// fetchThread reads the issue, its recent comments and, for pull
// requests, the PR and its diff
func (impl *defaultResolverImplementation) fetchThread(
	ctx context.Context, state *State, conf *config.Config, opts *Options,
) (*prompt.Input, error) {
	issue, err := state.ghrepo.GetIssue(ctx, opts.IssueNumber)
	if err != nil {
		return nil, errors.Wrapf(err, "getting #%d", opts.IssueNumber)
	}
	state.issue = issue

	comments, err := state.ghrepo.GetComments(ctx, opts.IssueNumber, conf.Comments.History)
	if err != nil {
		return nil, errors.Wrapf(err, "getting comments of #%d", opts.IssueNumber)
	}
	logrus.Infof("Read #%d with %d recent comments", issue.Number, len(comments))

	input := &prompt.Input{
		Repo:     state.ghrepo.FullName(),
		Issue:    issue,
		Comments: comments,
	}
	if !opts.IsPullRequest() {
		return input, nil
	}

	pr, err := state.ghrepo.GetPullRequest(ctx, opts.IssueNumber)
	if err != nil {
		return nil, errors.Wrapf(err, "getting pull request #%d", opts.IssueNumber)
	}
	state.pr = pr

	diff, err := state.ghrepo.GetPullRequestDiff(ctx, opts.IssueNumber)
	if err != nil {
		return nil, errors.Wrapf(err, "getting diff of pull request #%d", opts.IssueNumber)
	}

	input.PullRequest = true
	input.HeadRef = opts.PRHeadRef
	input.BaseRef = opts.PRBaseRef
	if input.BaseRef == "" {
		input.BaseRef = pr.BaseRef
	}
	input.Diff = diff
	return input, nil
}

func (impl *defaultResolverImplementation) runAgent(
	ctx context.Context, state *State, task *agent.Task,
) (*agent.Result, error) {
	return state.agent.Run(ctx, task)
}

// applyPatch clones the repository into a temporary directory, commits
// the patch to the target branch and pushes it. The clone is removed
// before returning.
func (impl *defaultResolverImplementation) applyPatch(
	state *State, conf *config.Config, p *patch.Patch, target *pushTarget, message string,
) (*patchOutcome, error) {
	tmpDir, err := os.MkdirTemp("", "agent-resolver-")
	if err != nil {
		return nil, errors.Wrap(err, "creating temporary directory")
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			logrus.Warnf("Could not remove %s: %v", tmpDir, err)
		}
	}()

	repo, err := state.git.CloneRepo(target.URL, filepath.Join(tmpDir, "repo"))
	if err != nil {
		return nil, errors.Wrap(err, "cloning repository")
	}

	outcome := &patchOutcome{Branch: target.Branch, Base: target.Base}
	if target.Create {
		if target.Base != "" {
			if err := repo.Checkout(target.Base); err != nil {
				return nil, errors.Wrapf(err, "checking out base branch %s", target.Base)
			}
		} else {
			outcome.Base, err = repo.CurrentBranch()
			if err != nil {
				return nil, errors.Wrap(err, "reading default branch")
			}
		}
		if err := repo.CreateBranch(target.Branch); err != nil {
			return nil, errors.Wrapf(err, "creating branch %s", target.Branch)
		}
	}
	if target.RemoteURL != "" {
		if err := repo.AddRemote(target.Remote, target.RemoteURL); err != nil {
			return nil, errors.Wrap(err, "adding fork remote")
		}
		if err := repo.Fetch(target.Remote); err != nil {
			return nil, errors.Wrap(err, "fetching fork")
		}
		if err := repo.CheckoutFrom(target.Remote, target.Branch); err != nil {
			return nil, errors.Wrapf(err, "checking out %s from %s", target.Branch, target.Remote)
		}
	} else if err := repo.Checkout(target.Branch); err != nil {
		return nil, errors.Wrapf(err, "checking out %s", target.Branch)
	}

	patchFile, err := p.WriteFile(tmpDir)
	if err != nil {
		return nil, errors.Wrap(err, "writing patch")
	}
	if err := repo.ApplyPatch(patchFile); err != nil {
		logrus.Warnf("Patch does not apply to %s: %v", target.Branch, err)
		outcome.Error = fmt.Sprintf("it does not apply cleanly to `%s`", target.Branch)
		return outcome, nil
	}

	changed, err := repo.HasChanges()
	if err != nil {
		return nil, errors.Wrap(err, "checking repository status")
	}
	if !changed {
		outcome.Error = fmt.Sprintf("it makes no changes to `%s`", target.Branch)
		return outcome, nil
	}

	if conf.Verify.Target != "" {
		runner, err := runners.New("make", conf.Verify.Target)
		if err != nil {
			return nil, errors.Wrap(err, "creating verify runner")
		}
		runner.Options().Workdir = repo.Dir()
		if err := runner.Run(); err != nil {
			logrus.Warnf("Verification failed: %v", err)
			output := tailLines(runner.Output(), verifyOutputLines)
			fence := comment.Fence(output)
			outcome.Error = fmt.Sprintf("`make %s` failed:\n\n%s\n%s\n%s", conf.Verify.Target, fence, output, fence)
			return outcome, nil
		}
	}

	outcome.Commit, err = repo.Commit(message)
	if err != nil {
		return nil, errors.Wrap(err, "committing patch")
	}
	if err := repo.PushBranch(target.Branch, target.Remote); err != nil {
		return nil, errors.Wrap(err, "pushing branch")
	}
	outcome.Applied = true
	return outcome, nil
}

func (impl *defaultResolverImplementation) openPullRequest(
	ctx context.Context, state *State, head, base, title, body string,
) (*github.PullRequest, error) {
	pr, err := state.ghrepo.CreatePullRequest(ctx, head, base, title, body, &github.NewPullRequestOptions{
		MaintainerCanModify: true,
	})
	if err != nil {
		return nil, err
	}
	logrus.Infof("Opened pull request #%d", pr.Number)
	return pr, nil
}

func (impl *defaultResolverImplementation) postComment(
	ctx context.Context, state *State, number int, body string,
) (*github.Comment, error) {
	return state.ghrepo.CreateComment(ctx, number, body)
}

func (impl *defaultResolverImplementation) writeReport(state *State, dest string, data []byte) error {
	return state.objects.Write(data, dest)
}

// tailLines returns the last n lines of s
func tailLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
