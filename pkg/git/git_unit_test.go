// Copyright (c) 2021-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package git

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"sigs.k8s.io/release-utils/command"
)

const testReadme = "hello\n"

func createTestRepo(t *testing.T) string {
	dir := t.TempDir()

	require.NoError(t, command.NewWithWorkDir(dir, gitCommand, "init", "--initial-branch=main").RunSuccess())
	require.NoError(t, command.NewWithWorkDir(dir, gitCommand, "config", "user.email", "user@example.com").RunSuccess())
	require.NoError(t, command.NewWithWorkDir(dir, gitCommand, "config", "user.name", "Example Users").RunSuccess())
	require.NoError(t, command.NewWithWorkDir(dir, gitCommand, "commit", "--allow-empty", "-m", "First Commit").RunSuccess())
	return dir
}

// createTestOrigin returns the path to a bare repository with a README
// on main and a feature branch
func createTestOrigin(t *testing.T) string {
	dir := createTestRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte(testReadme), os.FileMode(0o644)))
	require.NoError(t, command.NewWithWorkDir(dir, gitCommand, "add", "README.md").RunSuccess())
	require.NoError(t, command.NewWithWorkDir(dir, gitCommand, "commit", "-m", "Add README").RunSuccess())
	require.NoError(t, command.NewWithWorkDir(dir, gitCommand, "branch", "feature").RunSuccess())

	bare := filepath.Join(t.TempDir(), "origin.git")
	require.NoError(t, command.New(gitCommand, "clone", "--bare", dir, bare).RunSuccess())
	return bare
}

func TestCloneRepository(t *testing.T) {
	origin := createTestOrigin(t)
	impl := defaultGitImpl{}
	dir := t.TempDir()
	repo, err := impl.cloneRepo(&Options{}, origin, dir)
	require.NoError(t, err)

	r, err := repo.client.Remote("origin")
	require.NoError(t, err)
	require.Contains(t, r.String(), origin)
	require.DirExists(t, filepath.Join(dir, ".git"))
	require.FileExists(t, filepath.Join(dir, "README.md"))
	require.Equal(t, dir, repo.Dir())
}

func TestCloneRepositoryRemoteName(t *testing.T) {
	origin := createTestOrigin(t)
	impl := defaultGitImpl{}
	repo, err := impl.cloneRepo(&Options{Remote: "upstream"}, origin, t.TempDir())
	require.NoError(t, err)
	require.Equal(t, "upstream", repo.Options().DefaultRemote)

	_, err = repo.client.Remote("upstream")
	require.NoError(t, err)
	_, err = repo.client.Remote("origin")
	require.Error(t, err)

	// Branches are looked up in the named remote
	require.NoError(t, repo.Checkout("feature"))
}

func TestAuthMethod(t *testing.T) {
	require.Nil(t, (&Options{}).authMethod())
	var nilOpts *Options
	require.Nil(t, nilOpts.authMethod())
	auth := (&Options{Token: "ghp_secret"}).authMethod()
	require.NotNil(t, auth)
	require.NotContains(t, auth.String(), "ghp_secret")
}

func TestGitHubURL(t *testing.T) {
	require.Equal(t, "https://github.com/mattermost/mattermost-server.git", GitHubURL("mattermost", "mattermost-server"))
}
