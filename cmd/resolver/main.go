// Copyright (c) 2021-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mattermost/agent-resolver/pkg/config"
	"github.com/mattermost/agent-resolver/pkg/resolver"
)

type cliOptions struct {
	resolver.Options
	configPath string
	logLevel   string
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		logrus.Error(err)
		cancel()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &cliOptions{}
	cmd := &cobra.Command{
		Use:           "resolver",
		Short:         "Run a coding agent command from a GitHub issue or pull request comment",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			lvl, err := logrus.ParseLevel(opts.logLevel)
			if err != nil {
				return errors.Wrap(err, "parsing log level")
			}
			logrus.SetLevel(lvl)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Context, "context", resolver.ContextIssue, "where the command was posted: issue or pr")
	cmd.Flags().IntVar(&opts.IssueNumber, "issue-number", 0, "issue or pull request number")
	cmd.Flags().StringVar(&opts.Repo, "repo", "", "repository as owner/name")
	cmd.Flags().StringVar(&opts.Command, "command", "", "command to run: analyze, fix, test or review")
	cmd.Flags().StringVar(&opts.PRHeadRef, "pr-head-ref", "", "head branch of the pull request")
	cmd.Flags().StringVar(&opts.PRBaseRef, "pr-base-ref", "", "base branch of the pull request")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "optional YAML configuration file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", logrus.InfoLevel.String(), "log level")

	for _, f := range []string{"issue-number", "repo", "command"} {
		if err := cmd.MarkFlagRequired(f); err != nil {
			logrus.Fatal(err)
		}
	}
	return cmd
}

func run(ctx context.Context, opts *cliOptions) error {
	// Bad input is rejected before touching any service
	if err := opts.Validate(); err != nil {
		return errors.Wrap(err, "invalid arguments")
	}

	conf, err := config.Load(ctx, opts.configPath)
	if err != nil {
		return errors.Wrap(err, "loading configuration")
	}
	if err := conf.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	logrus.Infof("Resolving %s", opts.Summary())
	return resolver.New(conf, &opts.Options).Run(ctx)
}
