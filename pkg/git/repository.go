// Copyright (c) 2021-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package git

import (
	"fmt"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"sigs.k8s.io/release-utils/command"
)

type Repository struct {
	impl   repositoryImplementation
	opts   *RepoOptions
	client *gogit.Repository
}

type RepoOptions struct {
	Path          string
	DefaultRemote string
	AuthorName    string
	AuthorEmail   string
	auth          transport.AuthMethod
}

var defaultRepositoryOptions = &RepoOptions{
	DefaultRemote: "origin",
	AuthorName:    "agent-resolver[bot]",
	AuthorEmail:   "agent-resolver@users.noreply.github.com",
}

func NewRepositoryWithOptions(opts *RepoOptions) *Repository {
	return &Repository{
		impl: &defaultRepositoryImpl{},
		opts: opts,
	}
}

func (repo *Repository) SetClient(c *gogit.Repository) {
	repo.client = c
}

// Options returns the repository option set
func (repo *Repository) Options() *RepoOptions {
	return repo.opts
}

// Dir returns the path of the working tree
func (repo *Repository) Dir() string {
	return repo.opts.Path
}

// CurrentBranch returns the short name of the checked out branch
func (repo *Repository) CurrentBranch() (string, error) {
	head, err := repo.client.Head()
	if err != nil {
		return "", errors.Wrap(err, "reading repository HEAD")
	}
	if !head.Name().IsBranch() {
		return "", errors.New("HEAD is detached")
	}
	return head.Name().Short(), nil
}

func (repo *Repository) CreateBranch(branchName string) error {
	return repo.impl.createBranch(repo.client, repo.opts, branchName)
}

// Checkout checks out the branch named `refName` in the repository. If no
// local branch exists, it is created from the default remote's branch.
func (repo *Repository) Checkout(refName string) error {
	return repo.impl.checkout(repo.client, repo.opts, "", refName)
}

// CheckoutFrom checks out `refName` as it is in `remote`. The local
// branch is created or moved to the remote's commit.
func (repo *Repository) CheckoutFrom(remote, refName string) error {
	if remote == "" {
		return errors.New("remote name is required")
	}
	return repo.impl.checkout(repo.client, repo.opts, remote, refName)
}

// ApplyPatch applies a patch file to the worktree and stages the result
func (repo *Repository) ApplyPatch(patchPath string) error {
	return repo.impl.applyPatch(repo.opts, patchPath)
}

// HasChanges returns true if the worktree or the index are not clean
func (repo *Repository) HasChanges() (bool, error) {
	return repo.impl.hasChanges(repo.client)
}

// Commit records the staged changes and returns the new commit SHA
func (repo *Repository) Commit(message string) (string, error) {
	return repo.impl.commit(repo.client, repo.opts, message)
}

func (repo *Repository) PushBranch(branch, remote string) error {
	return repo.impl.pushBranch(repo.client, repo.opts, branch, remote)
}

// AddRemote adds a new remote to the repository
func (repo *Repository) AddRemote(name, url string) error {
	if _, err := repo.client.CreateRemote(&config.RemoteConfig{
		Name: name,
		URLs: []string{url},
	}); err != nil {
		return errors.Wrapf(err, "adding remote %s", name)
	}
	return nil
}

// Fetch downloads the branches of a remote
func (repo *Repository) Fetch(remote string) error {
	return repo.impl.fetch(repo.client, repo.opts, remote)
}

type repositoryImplementation interface {
	createBranch(*gogit.Repository, *RepoOptions, string) error
	checkout(client *gogit.Repository, opts *RepoOptions, remote, refName string) error
	fetch(client *gogit.Repository, opts *RepoOptions, remote string) error
	applyPatch(opts *RepoOptions, patchPath string) error
	hasChanges(client *gogit.Repository) (bool, error)
	commit(client *gogit.Repository, opts *RepoOptions, message string) (string, error)
	pushBranch(client *gogit.Repository, opts *RepoOptions, branch, remote string) error
}

type defaultRepositoryImpl struct{}

// createBranch creates a new branch at HEAD. The current branch is not changed.
func (di *defaultRepositoryImpl) createBranch(client *gogit.Repository, opts *RepoOptions, branchName string) error {
	logrus.Infof("Creating branch %s at %s", branchName, plumbing.NewBranchReferenceName(branchName))
	head, err := client.Head()
	if err != nil {
		return errors.Wrap(err, "reading repository HEAD")
	}
	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(branchName), head.Hash())
	if err := client.Storer.SetReference(ref); err != nil {
		return errors.Wrapf(err, "creating new branch %s", branchName)
	}
	return nil
}

// checkout switches the worktree to a branch. Clones only have the remote
// tracking refs, so a missing local branch is created from the default
// remote. With an explicit remote the local branch always follows it.
func (di *defaultRepositoryImpl) checkout(client *gogit.Repository, opts *RepoOptions, remote, refName string) error {
	tree, err := client.Worktree()
	if err != nil {
		return errors.Wrap(err, "getting repository worktree")
	}

	checkoutOpts := &gogit.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(refName),
	}
	if remote != "" {
		remoteRef, err := client.Reference(plumbing.NewRemoteReferenceName(remote, refName), true)
		if err != nil {
			return errors.Wrapf(err, "branch %s not found in %s", refName, remote)
		}
		logrus.Infof("Setting local branch %s to %s/%s", refName, remote, refName)
		if err := client.Storer.SetReference(plumbing.NewHashReference(checkoutOpts.Branch, remoteRef.Hash())); err != nil {
			return errors.Wrapf(err, "setting branch %s", refName)
		}
		checkoutOpts.Force = true
	} else if _, err := client.Reference(checkoutOpts.Branch, true); err != nil {
		if !errors.Is(err, plumbing.ErrReferenceNotFound) {
			return errors.Wrapf(err, "looking up branch %s", refName)
		}
		remoteRef, err := client.Reference(plumbing.NewRemoteReferenceName(opts.DefaultRemote, refName), true)
		if err != nil {
			return errors.Wrapf(err, "branch %s not found locally or in %s", refName, opts.DefaultRemote)
		}
		logrus.Infof("Creating local branch %s from %s/%s", refName, opts.DefaultRemote, refName)
		checkoutOpts.Hash = remoteRef.Hash()
		checkoutOpts.Create = true
	}

	if err := tree.Checkout(checkoutOpts); err != nil {
		return errors.Wrapf(err, "checking out %s", refName)
	}
	return nil
}

func (di *defaultRepositoryImpl) fetch(client *gogit.Repository, opts *RepoOptions, remote string) error {
	logrus.Infof("Fetching from %s", remote)
	if err := client.Fetch(&gogit.FetchOptions{
		RemoteName: remote,
		Auth:       opts.auth,
	}); err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return errors.Wrapf(err, "fetching from %s", remote)
	}
	return nil
}

// applyPatch runs git apply. go-git cannot apply patches, so we call the shell.
func (di *defaultRepositoryImpl) applyPatch(opts *RepoOptions, patchPath string) error {
	logrus.Infof("Applying patch %s to %s", patchPath, opts.Path)
	cmd := command.NewWithWorkDir(opts.Path, gitCommand, "apply", "--index", "--whitespace=nowarn", patchPath)
	if err := cmd.RunSilentSuccess(); err != nil {
		return errors.Wrap(err, "running git apply")
	}
	return nil
}

func (di *defaultRepositoryImpl) hasChanges(client *gogit.Repository) (bool, error) {
	tree, err := client.Worktree()
	if err != nil {
		return false, errors.Wrap(err, "getting repository worktree")
	}
	status, err := tree.Status()
	if err != nil {
		return false, errors.Wrap(err, "getting repository status")
	}
	return !status.IsClean(), nil
}

func (di *defaultRepositoryImpl) commit(client *gogit.Repository, opts *RepoOptions, message string) (string, error) {
	tree, err := client.Worktree()
	if err != nil {
		return "", errors.Wrap(err, "getting repository worktree")
	}
	hash, err := tree.Commit(message, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  opts.AuthorName,
			Email: opts.AuthorEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return "", errors.Wrap(err, "committing changes")
	}
	logrus.Infof("Created commit %s", hash.String())
	return hash.String(), nil
}

// pushBranch pushes a branch to a remote
func (di *defaultRepositoryImpl) pushBranch(
	client *gogit.Repository, opts *RepoOptions, branch, remote string,
) error {
	if remote == "" {
		remote = opts.DefaultRemote
		logrus.Infof("Using default remote %s as default for push", remote)
	}
	logrus.Infof("Pushing branch %s to %s", branch, remote)
	refSpec := config.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, branch))
	if err := client.Push(&gogit.PushOptions{
		RemoteName: remote,
		RefSpecs:   []config.RefSpec{refSpec},
		Auth:       opts.auth,
	}); err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return errors.Wrapf(err, "pushing branch %s to remote %s", branch, remote)
	}
	return nil
}
