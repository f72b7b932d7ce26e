// Copyright (c) 2021-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/require"
)

const testAPI = "https://api.github.com/repos/mattermost/mattermost-server"

func getTestRepo(t *testing.T) (*Repository, *httpmock.MockTransport) {
	mt := httpmock.NewMockTransport()
	gh := NewWithOptions(&Options{HTTPClient: &http.Client{Transport: mt}})
	return gh.NewRepository("mattermost", "mattermost-server"), mt
}

func TestGetIssue(t *testing.T) {
	repo, mt := getTestRepo(t)
	mt.RegisterResponder(http.MethodGet, testAPI+"/issues/57", httpmock.NewStringResponder(200, `{
		"number": 57,
		"title": "Creating team ?",
		"body": "How do I create a team?",
		"state": "open",
		"user": {"login": "jeremy-flusin"},
		"labels": [{"name": "bug"}, {"name": "triage"}]
	}`))

	issue, err := repo.GetIssue(context.Background(), 57)
	require.NoError(t, err)
	require.Equal(t, "Creating team ?", issue.Title)
	require.Equal(t, "How do I create a team?", issue.Body)
	require.Equal(t, 57, issue.Number)
	require.Equal(t, "mattermost-server", issue.RepoName)
	require.Equal(t, "mattermost", issue.RepoOwner)
	require.Equal(t, "jeremy-flusin", issue.Username)
	require.Equal(t, []string{"bug", "triage"}, issue.Labels)
	require.False(t, issue.IsPullRequest)
}

func TestGetIssueError(t *testing.T) {
	repo, mt := getTestRepo(t)
	mt.RegisterResponder(http.MethodGet, testAPI+"/issues/1", httpmock.NewStringResponder(404, `{"message": "Not Found"}`))
	_, err := repo.GetIssue(context.Background(), 1)
	require.Error(t, err)
	require.Contains(t, err.Error(), "fetching issue #1")
}

func TestGetPullRequest(t *testing.T) {
	repo, mt := getTestRepo(t)
	mt.RegisterResponder(http.MethodGet, testAPI+"/pulls/1", httpmock.NewStringResponder(200, `{
		"number": 1,
		"title": "Fix the build",
		"state": "closed",
		"html_url": "https://github.com/mattermost/mattermost-server/pull/1",
		"user": {"login": "jwilander"},
		"maintainer_can_modify": true,
		"head": {"ref": "mm-1223", "sha": "753b952bde9ee28311ca49c2ec0113e06a40bd4f", "repo": {"full_name": "jwilander/mattermost-server"}},
		"base": {"ref": "master", "repo": {"name": "mattermost-server", "owner": {"login": "mattermost"}}}
	}`))

	pr, err := repo.GetPullRequest(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 1, pr.Number)
	require.Equal(t, "jwilander", pr.Username)
	require.Equal(t, "mm-1223", pr.Ref)
	require.Equal(t, "master", pr.BaseRef)
	require.Equal(t, "753b952bde9ee28311ca49c2ec0113e06a40bd4f", pr.Sha)
	require.Equal(t, "closed", pr.State)
	require.True(t, *pr.MaintainerCanModify)
	require.True(t, pr.IsFork())
	require.False(t, pr.HeadRepoDeleted())
}

func TestGetPullRequestDeletedHeadRepo(t *testing.T) {
	repo, mt := getTestRepo(t)
	mt.RegisterResponder(http.MethodGet, testAPI+"/pulls/3", httpmock.NewStringResponder(200, `{
		"number": 3,
		"head": {"ref": "patch-1", "repo": null},
		"base": {"ref": "master", "repo": {"name": "mattermost-server", "owner": {"login": "mattermost"}}}
	}`))

	pr, err := repo.GetPullRequest(context.Background(), 3)
	require.NoError(t, err)
	require.True(t, pr.HeadRepoDeleted())
	require.False(t, pr.IsFork())
}

func TestGetPullRequestDiff(t *testing.T) {
	repo, mt := getTestRepo(t)
	const diff = "diff --git a/README.md b/README.md\n"
	mt.RegisterResponder(http.MethodGet, testAPI+"/pulls/2", func(req *http.Request) (*http.Response, error) {
		require.Equal(t, "application/vnd.github.v3.diff", req.Header.Get("Accept"))
		return httpmock.NewStringResponse(200, diff), nil
	})

	res, err := repo.GetPullRequestDiff(context.Background(), 2)
	require.NoError(t, err)
	require.Equal(t, diff, res)
}

func TestGetComments(t *testing.T) {
	repo, mt := getTestRepo(t)

	page := func(from, to int) string {
		comments := []map[string]interface{}{}
		for i := from; i <= to; i++ {
			comments = append(comments, map[string]interface{}{
				"id":   i,
				"body": fmt.Sprintf("comment %d", i),
				"user": map[string]string{"login": "user"},
			})
		}
		data, err := json.Marshal(comments)
		require.NoError(t, err)
		return string(data)
	}

	mt.RegisterResponderWithQuery(
		http.MethodGet, testAPI+"/issues/10/comments", "per_page=100",
		func(req *http.Request) (*http.Response, error) {
			resp := httpmock.NewStringResponse(200, page(1, 100))
			resp.Header.Set("Link", fmt.Sprintf(`<%s/issues/10/comments?page=2&per_page=100>; rel="next"`, testAPI))
			return resp, nil
		},
	)
	mt.RegisterResponderWithQuery(
		http.MethodGet, testAPI+"/issues/10/comments", "page=2&per_page=100",
		httpmock.NewStringResponder(200, page(101, 103)),
	)

	comments, err := repo.GetComments(context.Background(), 10, 5)
	require.NoError(t, err)
	require.Len(t, comments, 5)
	require.Equal(t, int64(99), comments[0].ID)
	require.Equal(t, "comment 103", comments[4].Body)

	// Asking for no comments does not hit the API
	calls := mt.GetTotalCallCount()
	comments, err = repo.GetComments(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Empty(t, comments)
	require.Equal(t, calls, mt.GetTotalCallCount())
}

func TestCreateComment(t *testing.T) {
	repo, mt := getTestRepo(t)
	mt.RegisterResponder(http.MethodPost, testAPI+"/issues/57/comments", func(req *http.Request) (*http.Response, error) {
		data, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		payload := map[string]string{}
		require.NoError(t, json.Unmarshal(data, &payload))
		require.Equal(t, "Hello from the bot", payload["body"])
		return httpmock.NewStringResponse(201, `{"id": 1234, "body": "Hello from the bot", "user": {"login": "bot"}}`), nil
	})

	c, err := repo.CreateComment(context.Background(), 57, "Hello from the bot")
	require.NoError(t, err)
	require.Equal(t, int64(1234), c.ID)
	require.Equal(t, "bot", c.Username)

	_, err = repo.CreateComment(context.Background(), 57, "")
	require.Error(t, err)
	require.Equal(t, 1, mt.GetTotalCallCount())
}

func TestCreatePullRequest(t *testing.T) {
	repo, mt := getTestRepo(t)
	mt.RegisterResponder(http.MethodPost, testAPI+"/pulls", func(req *http.Request) (*http.Response, error) {
		payload := map[string]interface{}{}
		require.NoError(t, json.NewDecoder(req.Body).Decode(&payload))
		require.Equal(t, "agent-fix-issue-57", payload["head"])
		require.Equal(t, "master", payload["base"])
		require.Equal(t, true, payload["maintainer_can_modify"])
		return httpmock.NewStringResponse(201, `{"number": 99, "head": {"ref": "agent-fix-issue-57"}, "base": {"ref": "master"}}`), nil
	})

	pr, err := repo.CreatePullRequest(
		context.Background(), "agent-fix-issue-57", "master", "Fix #57", "body",
		&NewPullRequestOptions{MaintainerCanModify: true},
	)
	require.NoError(t, err)
	require.Equal(t, 99, pr.Number)
	require.Equal(t, "agent-fix-issue-57", pr.Ref)
}
