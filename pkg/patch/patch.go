// Copyright (c) 2021-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package patch

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/go-diff/diff"
)

const devNull = "/dev/null"

// ErrEmptyPatch is returned when a diff has no file changes
var ErrEmptyPatch = errors.New("patch does not change any files")

// Patch is a validated unified diff
type Patch struct {
	Text  string
	Files []File
}

// File is one file touched by a patch
type File struct {
	Name    string
	Added   int
	Deleted int
	New     bool
	Removed bool
}

// Parse validates a unified diff and returns the files it touches
func Parse(text string) (*Patch, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyPatch
	}
	// git apply rejects a final hunk line without its newline
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}

	fileDiffs, err := diff.ParseMultiFileDiff([]byte(text))
	if err != nil {
		return nil, errors.Wrap(err, "parsing unified diff")
	}

	p := &Patch{Text: text, Files: []File{}}
	for _, fd := range fileDiffs {
		f := File{
			Name: strings.TrimPrefix(fd.NewName, "b/"),
			New:  fd.OrigName == devNull,
		}
		if fd.NewName == devNull {
			f.Name = strings.TrimPrefix(fd.OrigName, "a/")
			f.Removed = true
		}
		if f.Name == "" {
			continue
		}
		for _, hunk := range fd.Hunks {
			for _, line := range strings.Split(string(hunk.Body), "\n") {
				if line == "" {
					continue
				}
				switch line[0] {
				case '+':
					f.Added++
				case '-':
					f.Deleted++
				}
			}
		}
		p.Files = append(p.Files, f)
	}

	if len(p.Files) == 0 {
		return nil, ErrEmptyPatch
	}
	logrus.Debugf("Patch touches %d files", len(p.Files))
	return p, nil
}

// FileNames returns the paths of the touched files
func (p *Patch) FileNames() []string {
	names := make([]string, 0, len(p.Files))
	for _, f := range p.Files {
		names = append(names, f.Name)
	}
	return names
}

// WriteFile writes the patch to a file in dir and returns its path
func (p *Patch) WriteFile(dir string) (string, error) {
	f, err := os.CreateTemp(dir, "agent-*.patch")
	if err != nil {
		return "", errors.Wrap(err, "creating patch file")
	}
	defer f.Close()
	if _, err := f.WriteString(p.Text); err != nil {
		return "", errors.Wrap(err, "writing patch file")
	}
	return filepath.Clean(f.Name()), nil
}
