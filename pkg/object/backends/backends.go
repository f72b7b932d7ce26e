// Copyright (c) 2021-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package backends

import (
	"github.com/pkg/errors"
	"sigs.k8s.io/release-utils/hash"
)

type Options struct {
	S3Region   string // Defaults to AWS_DEFAULT_REGION
	S3Endpoint string // S3 compatible endpoint, empty for AWS
}

type Backend interface {
	URLPrefix() string
	CopyObject(srcURL, destURL string) error
	Prefixes() []string
	PathExists(string) (bool, error)
	GetObjectHash(string) (map[string]string, error)
}

// hashFile returns the digests of a local file
func hashFile(path string) (map[string]string, error) {
	fs := map[string]func(string) (string, error){
		"sha1":   hash.SHA1ForFile,
		"sha256": hash.SHA256ForFile,
		"sha512": hash.SHA512ForFile,
	}

	hashes := map[string]string{}
	for algo, fn := range fs {
		h, err := fn(path)
		if err != nil {
			return nil, errors.Wrapf(err, "generating %s for %s", algo, path)
		}
		hashes[algo] = h
	}
	return hashes, nil
}
