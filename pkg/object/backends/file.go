// Copyright (c) 2021-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package backends

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"sigs.k8s.io/release-utils/util"
)

const URLPrefixFilesystem = "file://"

type Filesystem struct{}

var filePrefixes = []string{URLPrefixFilesystem}

func NewFilesystemWithOptions(opts *Options) *Filesystem {
	return &Filesystem{}
}

func (fsb *Filesystem) URLPrefix() string {
	return URLPrefixFilesystem
}

func (fsb *Filesystem) Prefixes() []string {
	return filePrefixes
}

// localPath turns a file:// URL (or a bare path) into an absolute path
func localPath(fileURL string) string {
	return filepath.Join(string(filepath.Separator), strings.TrimPrefix(fileURL, URLPrefixFilesystem))
}

// CopyObject copies a regular file. Missing parent directories of the
// destination are created.
func (fsb *Filesystem) CopyObject(srcURL, destURL string) error {
	srcPath := localPath(srcURL)
	destPath := localPath(destURL)

	logrus.Infof("Copying %s to %s in local filesystem", srcPath, destPath)

	sourceFileStat, err := os.Stat(srcPath)
	if err != nil {
		return errors.Wrap(err, "reading source stat info")
	}

	if !sourceFileStat.Mode().IsRegular() {
		return errors.Errorf("%s is not a regular file", srcURL)
	}

	source, err := os.Open(srcPath)
	if err != nil {
		return errors.Wrap(err, "opening source file")
	}
	defer source.Close()

	if err := os.MkdirAll(filepath.Dir(destPath), os.FileMode(0o755)); err != nil {
		return errors.Wrap(err, "creating destination directory")
	}

	destination, err := os.Create(destPath)
	if err != nil {
		return errors.Wrap(err, "creating destination file")
	}
	defer destination.Close()

	if _, err := io.Copy(destination, source); err != nil {
		return errors.Wrap(err, "writing destination file")
	}
	return nil
}

func (fsb *Filesystem) PathExists(path string) (bool, error) {
	return util.Exists(localPath(path)), nil
}

func (fsb *Filesystem) GetObjectHash(objectURL string) (map[string]string, error) {
	return hashFile(localPath(objectURL))
}
