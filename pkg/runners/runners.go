// Copyright (c) 2021-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package runners

import "github.com/pkg/errors"

// Runner executes a command in a checkout and keeps its output
type Runner interface {
	ID() string
	Run() error
	Output() string
	Options() *Options
}

type Options struct {
	Workdir string
	EnvVars map[string]string
	Log     string // Optional file receiving a copy of the output
}

var DefaultOptions = &Options{
	Workdir: ".",
	EnvVars: map[string]string{},
}

// Catalog maps runner monikers to their constructors
var Catalog = map[string]func(args ...string) Runner{}

// New returns the runner registered as id
func New(id string, args ...string) (Runner, error) {
	constructor, ok := Catalog[id]
	if !ok {
		return nil, errors.Errorf("unknown runner %s", id)
	}
	return constructor(args...), nil
}
