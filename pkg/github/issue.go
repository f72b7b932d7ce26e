// Copyright (c) 2017-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package github

import "time"

type Issue struct {
	RepoOwner     string
	RepoName      string
	Title         string
	Body          string
	Username      string
	State         string
	Number        int
	Labels        []string
	IsPullRequest bool
}

// Comment is a comment in an issue or pull request thread
type Comment struct {
	ID        int64
	Username  string
	Body      string
	URL       string
	CreatedAt time.Time
}
