// Copyright (c) 2021-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package git

import (
	"fmt"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	gitCommand       = "git"
	githubDefaultURL = "https://github.com/%s/%s.git"
	// GitHub accepts any user name when the password is a token
	tokenUser = "x-access-token"
)

type Git struct {
	opts *Options
	impl gitImplementation
}

type Options struct {
	Token       string // Token used for HTTPS authentication, empty for anonymous
	AuthorName  string // Identity recorded in commits
	AuthorEmail string
	Remote      string // Name given to the cloned remote, origin when empty
}

// NewWithOptions returns a git object with specific options
func NewWithOptions(opts *Options) *Git {
	return &Git{
		opts: opts,
		impl: &defaultGitImpl{},
	}
}

// Options returns the options the git object was created with
func (g *Git) Options() *Options {
	return g.opts
}

type gitImplementation interface {
	cloneRepo(opts *Options, url, path string) (repo *Repository, err error)
}

func (g *Git) CloneRepo(url, path string) (repo *Repository, err error) {
	return g.impl.cloneRepo(g.opts, url, path)
}

// nolint:revive // I don't want to call this HubURL
func GitHubURL(repoOwner, repoName string) string {
	return fmt.Sprintf(githubDefaultURL, repoOwner, repoName)
}

// authMethod returns the transport auth for the options
func (opts *Options) authMethod() transport.AuthMethod {
	if opts == nil || opts.Token == "" {
		return nil
	}
	return &githttp.BasicAuth{Username: tokenUser, Password: opts.Token}
}

type defaultGitImpl struct{}

// cloneRepo clones a repository to `path` and returns it
func (di *defaultGitImpl) cloneRepo(opts *Options, url, path string) (repo *Repository, err error) {
	ropts := repositoryOptions(opts, path)
	logrus.Infof("Cloning %s to %s as %s", url, path, ropts.DefaultRemote)
	gogitrepo, err := gogit.PlainClone(path, false, &gogit.CloneOptions{
		URL:        url,
		RemoteName: ropts.DefaultRemote,
		Auth:       opts.authMethod(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "cloning repository")
	}
	repo = NewRepositoryWithOptions(ropts)
	repo.SetClient(gogitrepo)
	return repo, nil
}

func repositoryOptions(opts *Options, path string) *RepoOptions {
	ropts := *defaultRepositoryOptions
	ropts.Path = path
	if opts != nil {
		ropts.AuthorName = opts.AuthorName
		ropts.AuthorEmail = opts.AuthorEmail
		ropts.auth = opts.authMethod()
		if opts.Remote != "" {
			ropts.DefaultRemote = opts.Remote
		}
	}
	return &ropts
}
