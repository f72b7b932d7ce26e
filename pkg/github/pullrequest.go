// Copyright (c) 2021-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package github

import (
	"time"
)

type PullRequest struct {
	Merged              *bool
	MaintainerCanModify *bool
	CreatedAt           time.Time
	RepoOwner           string
	RepoName            string
	FullName            string // Full name of the head repository
	Title               string
	Username            string
	Ref                 string // Head branch
	BaseRef             string
	Sha                 string
	State               string
	URL                 string
	Number              int
}

// IsFork returns true when the head branch lives in another repository
func (pr *PullRequest) IsFork() bool {
	return pr.FullName != "" && pr.FullName != pr.RepoOwner+"/"+pr.RepoName
}

// HeadRepoDeleted returns true when the repository holding the head
// branch no longer exists
func (pr *PullRequest) HeadRepoDeleted() bool {
	return pr.FullName == ""
}
