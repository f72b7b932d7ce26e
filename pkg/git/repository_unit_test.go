// Copyright (c) 2021-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package git

import (
	"os"
	"path/filepath"
	"testing"

	gogit "github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/release-utils/command"
)

const testPatch = `diff --git a/README.md b/README.md
--- a/README.md
+++ b/README.md
@@ -1 +1 @@
-hello
+hello, world
diff --git a/NEW.md b/NEW.md
new file mode 100644
--- /dev/null
+++ b/NEW.md
@@ -0,0 +1 @@
+a new file
`

func TestCreateBranch(t *testing.T) {
	repoDir := createTestRepo(t)
	opts := *defaultRepositoryOptions
	opts.Path = repoDir

	impl := defaultRepositoryImpl{}
	gogitrepo, err := gogit.PlainOpen(repoDir)
	require.NoError(t, err)
	branchName := "test-branch"
	// Create the branch
	require.NoError(t, impl.createBranch(gogitrepo, &opts, branchName))

	// Ensure the branch was created
	cmd := command.NewWithWorkDir(repoDir, "git", "branch")
	output, err := cmd.RunSuccessOutput()
	require.Nil(t, err)

	require.Contains(t, output.Output(), branchName)
	require.Contains(t, output.Output(), "* main")
}

func TestCheckout(t *testing.T) {
	repoDir := createTestRepo(t)
	opts := *defaultRepositoryOptions
	opts.Path = repoDir

	gogitrepo, err := gogit.PlainOpen(repoDir)
	require.NoError(t, err)

	impl := defaultRepositoryImpl{}
	require.NoError(t, impl.createBranch(gogitrepo, &opts, "test"))

	cmd := command.NewWithWorkDir(repoDir, "git", "branch")
	output, err := cmd.RunSuccessOutput()
	require.Nil(t, err)

	require.Contains(t, output.Output(), "* main")
	require.NotContains(t, output.Output(), "* test")

	require.NoError(t, impl.checkout(gogitrepo, &opts, "", "test"))

	cmd2 := command.NewWithWorkDir(repoDir, "git", "branch")
	output, err = cmd2.RunSuccessOutput()
	require.Nil(t, err)

	require.Contains(t, output.Output(), "* test")
	require.NotContains(t, output.Output(), "* main")

	// Branches that do not exist anywhere fail
	require.Error(t, impl.checkout(gogitrepo, &opts, "", "nonexistent"))
}

func TestApplyCommitPush(t *testing.T) {
	origin := createTestOrigin(t)
	dir := t.TempDir()

	g := NewWithOptions(&Options{AuthorName: "Test Bot", AuthorEmail: "bot@example.com"})
	repo, err := g.CloneRepo(origin, dir)
	require.NoError(t, err)

	branch, err := repo.CurrentBranch()
	require.NoError(t, err)
	require.Equal(t, "main", branch)

	// feature only exists as origin/feature after the clone
	require.NoError(t, repo.Checkout("feature"))
	branch, err = repo.CurrentBranch()
	require.NoError(t, err)
	require.Equal(t, "feature", branch)

	changed, err := repo.HasChanges()
	require.NoError(t, err)
	require.False(t, changed)

	patchFile := filepath.Join(t.TempDir(), "agent.patch")
	require.NoError(t, os.WriteFile(patchFile, []byte(testPatch), os.FileMode(0o644)))
	require.NoError(t, repo.ApplyPatch(patchFile))

	changed, err = repo.HasChanges()
	require.NoError(t, err)
	require.True(t, changed)

	data, err := os.ReadFile(filepath.Join(dir, "README.md"))
	require.NoError(t, err)
	require.Equal(t, "hello, world\n", string(data))

	sha, err := repo.Commit("Apply agent patch")
	require.NoError(t, err)
	require.Len(t, sha, 40)

	changed, err = repo.HasChanges()
	require.NoError(t, err)
	require.False(t, changed)

	require.NoError(t, repo.PushBranch("feature", ""))

	// The bare origin now has the commit on feature
	output, err := command.NewWithWorkDir(origin, gitCommand, "log", "-1", "--format=%H%n%an%n%s", "feature").RunSuccessOutput()
	require.NoError(t, err)
	require.Equal(t, sha+"\nTest Bot\nApply agent patch", output.OutputTrimNL())

	// Pushing again is a no-op
	require.NoError(t, repo.PushBranch("feature", "origin"))
}

func TestApplyBadPatch(t *testing.T) {
	origin := createTestOrigin(t)
	dir := t.TempDir()
	repo, err := NewWithOptions(&Options{}).CloneRepo(origin, dir)
	require.NoError(t, err)

	patchFile := filepath.Join(t.TempDir(), "bad.patch")
	require.NoError(t, os.WriteFile(patchFile, []byte(
		"diff --git a/README.md b/README.md\n--- a/README.md\n+++ b/README.md\n@@ -1 +1 @@\n-goodbye\n+hello\n",
	), os.FileMode(0o644)))
	require.Error(t, repo.ApplyPatch(patchFile))

	changed, err := repo.HasChanges()
	require.NoError(t, err)
	require.False(t, changed)
}

func TestForkRemote(t *testing.T) {
	origin := createTestOrigin(t)
	fork := filepath.Join(t.TempDir(), "fork.git")
	require.NoError(t, command.New(gitCommand, "clone", "--bare", origin, fork).RunSuccess())
	require.NoError(t, command.NewWithWorkDir(fork, gitCommand, "branch", "contrib", "main").RunSuccess())

	dir := t.TempDir()
	repo, err := NewWithOptions(&Options{
		AuthorName: "Test Bot", AuthorEmail: "bot@example.com", Remote: "upstream",
	}).CloneRepo(origin, dir)
	require.NoError(t, err)
	_, err = repo.client.Remote("upstream")
	require.NoError(t, err)

	require.NoError(t, repo.AddRemote("fork-user", fork))
	require.Error(t, repo.AddRemote("fork-user", fork))

	// contrib is unknown until the fork is fetched
	require.Error(t, repo.Checkout("contrib"))
	require.Error(t, repo.CheckoutFrom("fork-user", "contrib"))
	require.NoError(t, repo.Fetch("fork-user"))
	require.Error(t, repo.CheckoutFrom("", "contrib"))
	require.Error(t, repo.CheckoutFrom("fork-user", "nonexistent"))
	require.NoError(t, repo.CheckoutFrom("fork-user", "contrib"))

	branch, err := repo.CurrentBranch()
	require.NoError(t, err)
	require.Equal(t, "contrib", branch)

	patchFile := filepath.Join(t.TempDir(), "agent.patch")
	require.NoError(t, os.WriteFile(patchFile, []byte(testPatch), os.FileMode(0o644)))
	require.NoError(t, repo.ApplyPatch(patchFile))
	sha, err := repo.Commit("Apply agent patch")
	require.NoError(t, err)
	require.NoError(t, repo.PushBranch("contrib", "fork-user"))

	output, err := command.NewWithWorkDir(fork, gitCommand, "rev-parse", "contrib").RunSuccessOutput()
	require.NoError(t, err)
	require.Equal(t, sha, output.OutputTrimNL())

	// The base repository never sees the branch
	require.Error(t, command.NewWithWorkDir(origin, gitCommand, "rev-parse", "--verify", "contrib").RunSilentSuccess())
}
