// Copyright (c) 2021-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package command

import (
	"strings"

	"github.com/pkg/errors"
)

// Command is the action requested in an issue or pull request comment
type Command string

const (
	Analyze Command = "analyze"
	Fix     Command = "fix"
	Test    Command = "test"
	Review  Command = "review"
)

// All returns the supported commands in the order they are documented
func All() []Command {
	return []Command{Analyze, Fix, Test, Review}
}

// Parse reads a command name as typed by a user. The leading slash
// of the comment form (/fix) is accepted.
func Parse(s string) (Command, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.TrimPrefix(name, "/")
	for _, c := range All() {
		if string(c) == name {
			return c, nil
		}
	}
	return "", errors.Errorf("invalid command %q, valid commands are: %s", s, joinCommands())
}

// ExpectsPatch returns true for commands whose output is a change to the code
func (c Command) ExpectsPatch() bool {
	return c == Fix || c == Test
}

func (c Command) String() string {
	return string(c)
}

func joinCommands() string {
	names := []string{}
	for _, c := range All() {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}
