// Copyright (c) 2021-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

// githubAPIUser is a type meant to be embedded in all objects that need to
// perform calls to the GitHub API

package github

import (
	"context"
	"net/http"
	"os"

	gogithub "github.com/google/go-github/v39/github"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

type githubAPIUser struct {
	client     *gogithub.Client
	httpClient *http.Client
	token      string
}

// GitHubClient returns a go-github client. If the options or the environment
// contain a GitHub token, the client will use it for authentication
func (gau *githubAPIUser) GitHubClient() *gogithub.Client {
	if gau.client == nil {
		httpClient := gau.httpClient
		if httpClient == nil {
			httpClient = http.DefaultClient
			tkn := gau.token
			if tkn == "" {
				tkn = os.Getenv(githubTknVar)
			}
			if tkn == "" {
				logrus.Warn("Note: GitHub client will not be authenticated")
			} else {
				httpClient = oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(
					&oauth2.Token{AccessToken: tkn},
				))
			}
		}
		gau.client = gogithub.NewClient(httpClient)
	}
	return gau.client
}

// NewPullRequest builds a PullRequest object from a gogithub PR object
func (gau *githubAPIUser) NewPullRequest(ghpr *gogithub.PullRequest) *PullRequest {
	return &PullRequest{
		RepoOwner:           ghpr.GetBase().GetRepo().GetOwner().GetLogin(),
		RepoName:            ghpr.GetBase().GetRepo().GetName(),
		Number:              ghpr.GetNumber(),
		Title:               ghpr.GetTitle(),
		Username:            ghpr.GetUser().GetLogin(),
		FullName:            ghpr.GetHead().GetRepo().GetFullName(),
		Ref:                 ghpr.GetHead().GetRef(),
		BaseRef:             ghpr.GetBase().GetRef(),
		Sha:                 ghpr.GetHead().GetSHA(),
		State:               ghpr.GetState(),
		URL:                 ghpr.GetHTMLURL(),
		CreatedAt:           ghpr.GetCreatedAt(),
		Merged:              gogithub.Bool(ghpr.GetMerged()),
		MaintainerCanModify: gogithub.Bool(ghpr.GetMaintainerCanModify()),
	}
}

// NewIssue builds an Issue. The issues endpoint does not return the
// repository so owner and name are passed in.
func (gau *githubAPIUser) NewIssue(owner, name string, ghissue *gogithub.Issue) *Issue {
	labels := []string{}
	for _, l := range ghissue.Labels {
		labels = append(labels, l.GetName())
	}
	return &Issue{
		Title:         ghissue.GetTitle(),
		Body:          ghissue.GetBody(),
		RepoOwner:     owner,
		RepoName:      name,
		Number:        ghissue.GetNumber(),
		Username:      ghissue.GetUser().GetLogin(),
		State:         ghissue.GetState(),
		Labels:        labels,
		IsPullRequest: ghissue.IsPullRequest(),
	}
}

func (gau *githubAPIUser) NewComment(ghcomment *gogithub.IssueComment) *Comment {
	return &Comment{
		ID:        ghcomment.GetID(),
		Username:  ghcomment.GetUser().GetLogin(),
		Body:      ghcomment.GetBody(),
		URL:       ghcomment.GetHTMLURL(),
		CreatedAt: ghcomment.GetCreatedAt(),
	}
}
