// Copyright (c) 2021-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package github

import (
	"context"

	gogithub "github.com/google/go-github/v39/github"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const commentsPerPage = 100

type defaultRepoImplementation struct {
	*githubAPIUser
}

func (di *defaultRepoImplementation) getIssue(ctx context.Context, owner, repo string, number int) (*Issue, error) {
	ghIssue, _, err := di.GitHubClient().Issues.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching issue #%d from github api", number)
	}
	return di.NewIssue(owner, repo, ghIssue), nil
}

func (di *defaultRepoImplementation) getPullRequest(ctx context.Context, owner, repo string, number int) (pr *PullRequest, err error) {
	ghPr, _, err := di.GitHubClient().PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching PR #%d from github api", number)
	}

	return di.NewPullRequest(ghPr), nil
}

func (di *defaultRepoImplementation) getPullRequestDiff(ctx context.Context, owner, repo string, number int) (string, error) {
	diff, _, err := di.GitHubClient().PullRequests.GetRaw(
		ctx, owner, repo, number, gogithub.RawOptions{Type: gogithub.Diff},
	)
	if err != nil {
		return "", errors.Wrapf(err, "fetching diff of PR #%d from github api", number)
	}
	return diff, nil
}

// listComments reads all the comments in the thread following the pagination
func (di *defaultRepoImplementation) listComments(ctx context.Context, owner, repo string, number int) ([]*Comment, error) {
	opts := &gogithub.IssueListCommentsOptions{
		ListOptions: gogithub.ListOptions{PerPage: commentsPerPage},
	}
	list := []*Comment{}
	for {
		ghComments, resp, err := di.GitHubClient().Issues.ListComments(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, errors.Wrapf(err, "querying GitHub for comments in #%d", number)
		}
		for _, c := range ghComments {
			list = append(list, di.NewComment(c))
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	logrus.Infof("Read %d comments from %s/%s#%d", len(list), owner, repo, number)
	return list, nil
}

func (di *defaultRepoImplementation) createComment(ctx context.Context, owner, repo string, number int, body string) (*Comment, error) {
	ghComment, _, err := di.GitHubClient().Issues.CreateComment(ctx, owner, repo, number, &gogithub.IssueComment{
		Body: &body,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "creating comment in #%d", number)
	}
	logrus.Infof("Posted comment %d to %s/%s#%d", ghComment.GetID(), owner, repo, number)
	return di.NewComment(ghComment), nil
}

func (di *defaultRepoImplementation) createPullRequest(
	ctx context.Context, owner, repo, head, base, title, body string, opts *NewPullRequestOptions,
) (*PullRequest, error) {
	newPullRequest := &gogithub.NewPullRequest{
		Head:                &head,
		Base:                &base,
		Body:                &body,
		Title:               &title,
		MaintainerCanModify: &opts.MaintainerCanModify,
		Draft:               &opts.Draft,
	}
	pullrequest, _, err := di.GitHubClient().PullRequests.Create(ctx, owner, repo, newPullRequest)
	if err != nil {
		return nil, errors.Wrap(err, "creating pull request")
	}

	return di.NewPullRequest(pullrequest), nil
}
