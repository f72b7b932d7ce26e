// Copyright (c) 2021-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package runners

type baseRunner struct {
	id     string
	output string
	args   []string
	opts   *Options
}

func (br *baseRunner) ID() string {
	return br.id
}

func (br *baseRunner) Output() string {
	return br.output
}

func (br *baseRunner) Options() *Options {
	return br.opts
}
