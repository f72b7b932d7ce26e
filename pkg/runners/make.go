// Copyright (c) 2021-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package runners

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"sigs.k8s.io/release-utils/command"
)

const (
	makeCmd     = "make"
	makeMoniker = "make"
)

func init() {
	Catalog[makeMoniker] = NewMake
}

type Make struct {
	baseRunner
}

func NewMake(args ...string) Runner {
	opts := *DefaultOptions
	return &Make{
		baseRunner: baseRunner{
			id:   makeMoniker,
			opts: &opts,
			args: args,
		},
	}
}

// Run executes make. The combined output is kept even when make fails.
func (m *Make) Run() error {
	envStr := os.Environ()
	for v, val := range m.Options().EnvVars {
		envStr = append(envStr, fmt.Sprintf("%s=%s", v, val))
	}

	cmd := command.NewWithWorkDir(m.Options().Workdir, makeCmd, m.args...).Env(envStr...)

	if m.Options().Log != "" {
		oLog, err := os.Create(m.Options().Log)
		if err != nil {
			return errors.Wrap(err, "opening output log")
		}
		defer oLog.Close()
		cmd.AddOutputWriter(oLog)
	}

	logrus.Infof("Running make %s in %s", strings.Join(m.args, " "), m.Options().Workdir)
	status, err := cmd.RunSilent()
	if err != nil {
		return errors.Wrap(err, "executing make")
	}
	m.output = status.Output() + status.Error()

	if !status.Success() {
		return errors.Errorf("make %s exited with code %d", strings.Join(m.args, " "), status.ExitCode())
	}
	return nil
}
