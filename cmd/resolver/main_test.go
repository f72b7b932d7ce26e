// Copyright (c) 2021-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRootCommandRejectsInvalidCommand(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"--repo", "mattermost/server", "--issue-number", "12", "--command", "deploy"})
	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid command")
}

func TestRootCommandRequiresFlags(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"--command", "fix"})
	require.Error(t, cmd.ExecuteContext(context.Background()))
}

func TestRootCommandLogLevel(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"--repo", "o/r", "--issue-number", "1", "--command", "fix", "--log-level", "loud"})
	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "parsing log level")
}

func TestRootCommandMissingConfiguration(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("LLM_API_KEY", "")
	cmd := newRootCommand()
	cmd.SetArgs([]string{"--repo", "o/r", "--issue-number", "1", "--command", "fix"})
	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid configuration")
}
