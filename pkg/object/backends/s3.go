// Copyright (c) 2021-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package backends

import (
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	s3go "github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const URLPrefixS3 = "s3://"

type ObjectBackendS3 struct {
	session *session.Session
}

func NewS3WithOptions(opts *Options) *ObjectBackendS3 {
	region := opts.S3Region
	if region == "" {
		region = os.Getenv("AWS_DEFAULT_REGION")
	}
	conf := &aws.Config{
		Region: aws.String(region),
	}
	if opts.S3Endpoint != "" {
		conf.Endpoint = aws.String(opts.S3Endpoint)
		conf.S3ForcePathStyle = aws.Bool(true)
	}

	if os.Getenv("AWS_ACCESS_KEY_ID") == "" {
		logrus.Debug("No AWS credentials found in the environment, using anonymous client")
		conf.Credentials = credentials.AnonymousCredentials
	}
	return &ObjectBackendS3{
		session: session.Must(session.NewSession(conf)),
	}
}

func (s3 *ObjectBackendS3) Prefixes() []string {
	return []string{URLPrefixS3}
}

func (s3 *ObjectBackendS3) URLPrefix() string {
	return URLPrefixS3
}

func (s3 *ObjectBackendS3) splitBucketPath(locationURL string) (bucket, key string, err error) {
	u, err := url.Parse(locationURL)
	if err != nil {
		return bucket, key, errors.Wrap(err, "parsing object URL")
	}
	if u.Host == "" {
		return bucket, key, errors.Errorf("no bucket in %s", locationURL)
	}
	return u.Host, strings.TrimPrefix(u.Path, "/"), nil
}

// copyRemoteToLocal downloads a file from a bucket to the local filesystem
func (s3 *ObjectBackendS3) copyRemoteToLocal(source, destURL string) error {
	destPath := localPath(destURL)
	bucket, key, err := s3.splitBucketPath(source)
	if err != nil {
		return errors.Wrap(err, "parsing source URL")
	}
	downloader := s3manager.NewDownloader(s3.session)

	f, err := os.Create(destPath)
	if err != nil {
		return errors.Wrap(err, "opening destination file")
	}
	defer f.Close()

	n, err := downloader.Download(f, &s3go.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return errors.Wrapf(err, "failed to download file %s from %s", key, bucket)
	}
	logrus.Infof("Downloaded %d bytes to %s", n, destURL)
	return nil
}

// copyLocalToRemote copies a local file to an s3 bucket
func (s3 *ObjectBackendS3) copyLocalToRemote(sourceURL, destURL string) error {
	srcPath := localPath(sourceURL)
	uploader := s3manager.NewUploader(s3.session)
	bucket, key, err := s3.splitBucketPath(destURL)
	if err != nil {
		return errors.Wrap(err, "parsing destination URL")
	}
	f, err := os.Open(srcPath)
	if err != nil {
		return errors.Wrap(err, "opening local file")
	}
	defer f.Close()

	if _, err := uploader.Upload(&s3manager.UploadInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   f,
	}); err != nil {
		return errors.Wrapf(err, "uploading file to %s", destURL)
	}
	logrus.Infof("Uploaded %s to %s", srcPath, destURL)
	return nil
}

func (s3 *ObjectBackendS3) CopyObject(srcURL, destURL string) error {
	if strings.HasPrefix(srcURL, URLPrefixFilesystem) {
		return s3.copyLocalToRemote(srcURL, destURL)
	}
	if strings.HasPrefix(destURL, URLPrefixFilesystem) {
		return s3.copyRemoteToLocal(srcURL, destURL)
	}
	return errors.New("cloud to cloud copy is not supported")
}

// PathExists checks if an object exists in the bucket
func (s3 *ObjectBackendS3) PathExists(nodeURL string) (bool, error) {
	bucket, key, err := s3.splitBucketPath(nodeURL)
	if err != nil {
		return false, errors.Wrap(err, "parsing node URL")
	}
	client := s3go.New(s3.session)
	logrus.Debugf("Checking if %s exists in %s", key, bucket)
	if _, err := client.HeadObject(&s3go.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}); err != nil {
		if aerr, ok := err.(awserr.Error); ok && aerr.Code() == "NotFound" {
			return false, nil
		}
		return false, errors.Wrapf(err, "checking %s", nodeURL)
	}
	return true, nil
}

// GetObjectHash returns the hashes of a remote object. S3 has no API to
// get them so the object is downloaded and summed.
func (s3 *ObjectBackendS3) GetObjectHash(objectURL string) (map[string]string, error) {
	f, err := os.CreateTemp("", "object-hashing-")
	if err != nil {
		return nil, errors.Wrap(err, "creating temporary file")
	}
	f.Close()
	defer os.Remove(f.Name())

	if err := s3.copyRemoteToLocal(objectURL, URLPrefixFilesystem+f.Name()); err != nil {
		return nil, errors.Wrap(err, "downloading object from s3")
	}
	return hashFile(f.Name())
}
