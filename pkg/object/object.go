// Copyright (c) 2021-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package object

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mattermost/agent-resolver/pkg/object/backends"
)

// Manager moves objects between the local filesystem and remote storage
type Manager struct {
	impl     ManagerImplementation
	Backends []backends.Backend
}

const URLPrefixFilesystem = "file://"

// NewManager returns a new object manager with default options
func NewManager() *Manager {
	return NewManagerWithOptions(&backends.Options{})
}

// NewManagerWithOptions returns an object manager with the file and s3
// backends configured from opts
func NewManagerWithOptions(opts *backends.Options) *Manager {
	return &Manager{
		impl: &defaultManagerImpl{},
		Backends: []backends.Backend{
			backends.NewFilesystemWithOptions(opts),
			backends.NewS3WithOptions(opts),
		},
	}
}

// PathExists returns a bool that indicates if a path exists or not
func (om *Manager) PathExists(path string) (bool, error) {
	pathBackend, err := om.impl.GetURLBackend(om.Backends, path)
	if err != nil {
		return false, errors.Wrap(err, "getting URL backend")
	}
	if pathBackend == nil {
		return false, errors.Errorf("no backend enabled for URL %s", path)
	}
	return pathBackend.PathExists(path)
}

// Copy copies an object from a srcURL to a destination URL
func (om *Manager) Copy(srcURL, destURL string) (err error) {
	if srcURL == "" {
		return errors.New("unable to transfer file, no src url defined")
	}
	logrus.Infof("Transferring data from %s to %s", srcURL, destURL)
	srcBackend, err := om.impl.GetURLBackend(om.Backends, srcURL)
	if err != nil {
		return errors.Wrap(err, "getting backend for source URL")
	}
	if srcBackend == nil {
		return errors.Errorf("no backend enabled for URL %s", srcURL)
	}
	dstBackend, err := om.impl.GetURLBackend(om.Backends, destURL)
	if err != nil {
		return errors.Wrap(err, "getting backend for destination URL")
	}
	if dstBackend == nil {
		return errors.Errorf("no backend enabled for URL %s", destURL)
	}

	if dstBackend.URLPrefix() != URLPrefixFilesystem && srcBackend.URLPrefix() != URLPrefixFilesystem {
		return errors.New("cloud to cloud operations are not supported")
	}

	if srcBackend.URLPrefix() != URLPrefixFilesystem {
		return srcBackend.CopyObject(srcURL, destURL)
	}
	return dstBackend.CopyObject(srcURL, destURL)
}

// Write stores data at destURL through a temporary local file
func (om *Manager) Write(data []byte, destURL string) error {
	f, err := os.CreateTemp("", "object-write-")
	if err != nil {
		return errors.Wrap(err, "creating temporary file")
	}
	defer os.Remove(f.Name())
	if _, err := f.Write(data); err != nil {
		f.Close()
		return errors.Wrap(err, "writing temporary file")
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "closing temporary file")
	}
	return om.Copy(URLPrefixFilesystem+f.Name(), destURL)
}

// GetObjectHash returns the available hashes for an object
func (om *Manager) GetObjectHash(objectURL string) (map[string]string, error) {
	be, err := om.impl.GetURLBackend(om.Backends, objectURL)
	if err != nil {
		return nil, errors.Wrap(err, "getting backend for URL")
	}
	if be == nil {
		return nil, errors.Errorf("no backend enabled for URL %s", objectURL)
	}
	return be.GetObjectHash(objectURL)
}

type ManagerImplementation interface {
	GetURLBackend([]backends.Backend, string) (backends.Backend, error)
}

type defaultManagerImpl struct{}

// GetURLBackend returns the backend that can handle a specific URL
func (di *defaultManagerImpl) GetURLBackend(bs []backends.Backend, testURL string) (backends.Backend, error) {
	for _, backend := range bs {
		for _, prefix := range backend.Prefixes() {
			if strings.HasPrefix(testURL, prefix) {
				return backend, nil
			}
		}
	}
	return nil, nil
}
