// Copyright (c) 2021-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package github

import (
	"context"

	"github.com/pkg/errors"
)

type Repository struct {
	impl  repositoryImplementation
	Owner string
	Name  string
}

type repositoryImplementation interface {
	getIssue(ctx context.Context, owner, repo string, number int) (*Issue, error)
	getPullRequest(ctx context.Context, owner, repo string, number int) (*PullRequest, error)
	getPullRequestDiff(ctx context.Context, owner, repo string, number int) (string, error)
	listComments(ctx context.Context, owner, repo string, number int) ([]*Comment, error)
	createComment(ctx context.Context, owner, repo string, number int, body string) (*Comment, error)
	createPullRequest(
		ctx context.Context, owner, repo, head, base, title, body string, opts *NewPullRequestOptions,
	) (*PullRequest, error)
}

type NewPullRequestOptions struct {
	MaintainerCanModify bool
	Draft               bool
}

// FullName returns the owner/name slug
func (repo *Repository) FullName() string {
	return repo.Owner + "/" + repo.Name
}

// GetIssue fetches an issue. Pull requests are issues too, so this
// also works to read a PR's title and body.
func (repo *Repository) GetIssue(ctx context.Context, number int) (*Issue, error) {
	return repo.impl.getIssue(ctx, repo.Owner, repo.Name, number)
}

func (repo *Repository) GetPullRequest(ctx context.Context, number int) (pr *PullRequest, err error) {
	return repo.impl.getPullRequest(ctx, repo.Owner, repo.Name, number)
}

// GetPullRequestDiff returns the unified diff of a pull request
func (repo *Repository) GetPullRequestDiff(ctx context.Context, number int) (string, error) {
	return repo.impl.getPullRequestDiff(ctx, repo.Owner, repo.Name, number)
}

// GetComments returns the last `last` comments of the thread, oldest
// first. If last is zero or negative, no comments are returned.
func (repo *Repository) GetComments(ctx context.Context, number, last int) ([]*Comment, error) {
	if last <= 0 {
		return []*Comment{}, nil
	}
	comments, err := repo.impl.listComments(ctx, repo.Owner, repo.Name, number)
	if err != nil {
		return nil, errors.Wrapf(err, "listing comments of #%d", number)
	}
	return LastComments(comments, last), nil
}

// CreateComment posts a new comment to an issue or pull request
func (repo *Repository) CreateComment(ctx context.Context, number int, body string) (*Comment, error) {
	if body == "" {
		return nil, errors.New("refusing to post an empty comment")
	}
	return repo.impl.createComment(ctx, repo.Owner, repo.Name, number, body)
}

// CreatePullRequest creates a new pull request in the repository
func (repo *Repository) CreatePullRequest(
	ctx context.Context, head, base, title, body string, opts *NewPullRequestOptions,
) (*PullRequest, error) {
	if opts == nil {
		opts = &NewPullRequestOptions{}
	}
	return repo.impl.createPullRequest(
		ctx, repo.Owner, repo.Name, head, base, title, body, opts,
	)
}

// LastComments returns the trailing n comments of a list
func LastComments(comments []*Comment, n int) []*Comment {
	if n <= 0 {
		return []*Comment{}
	}
	if len(comments) <= n {
		return comments
	}
	return comments[len(comments)-n:]
}
