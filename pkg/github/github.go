// Copyright (c) 2021-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package github

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

const (
	githubTknVar = "GITHUB_TOKEN"
)

var repoSlugRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]*/[A-Za-z0-9._-]+$`)

type GitHub struct {
	apiUser *githubAPIUser
	options *Options
}

// NewWithOptions returns a GitHub client
func NewWithOptions(opts *Options) *GitHub {
	gh := &GitHub{
		apiUser: &githubAPIUser{
			token:      opts.Token,
			httpClient: opts.HTTPClient,
		},
		options: opts,
	}
	return gh
}

type Options struct {
	Token      string       // API token. If empty, GITHUB_TOKEN is read from the environment
	HTTPClient *http.Client // Transport override, the token is ignored when set
}

// NewRepository returns a repository handle sharing this client
func (gh *GitHub) NewRepository(owner, name string) *Repository {
	return &Repository{
		Owner: owner,
		Name:  name,
		impl:  &defaultRepoImplementation{githubAPIUser: gh.apiUser},
	}
}

// ParseRepoSlug splits an owner/name string
func ParseRepoSlug(slug string) (owner, name string, err error) {
	slug = strings.TrimSpace(slug)
	if !repoSlugRegex.MatchString(slug) {
		return "", "", errors.Errorf("invalid repository %q, expected owner/name", slug)
	}
	parts := strings.SplitN(slug, "/", 2)
	return parts[0], parts[1], nil
}
