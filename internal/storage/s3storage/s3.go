package s3storage

import (
	"context"
	"io"
	"regexp"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/denismitr/redactor/internal/document"
	"github.com/denismitr/redactor/internal/filetype"
	"github.com/denismitr/redactor/internal/storage"
	"github.com/pkg/errors"
)

// document ID / slugged name . extension
var rxKey = regexp.MustCompile(`^[0-9a-f]{24}/[\w-]+\.\w+$`)

type Config struct {
	AccessKey        string
	AccessSecret     string
	AccessToken      string
	Region           string
	Endpoint         string
	S3ForcePathStyle bool
	EnableSSL        bool
}

type RemoteStorage struct {
	cfg     Config
	session *session.Session
	client  *s3.S3
}

func New(cfg Config) (*RemoteStorage, error) {
	s3Config := &aws.Config{
		Credentials:      credentials.NewStaticCredentials(cfg.AccessKey, cfg.AccessSecret, cfg.AccessToken),
		Endpoint:         aws.String(cfg.Endpoint),
		Region:           aws.String(cfg.Region),
		DisableSSL:       aws.Bool(!cfg.EnableSSL),
		S3ForcePathStyle: aws.Bool(cfg.S3ForcePathStyle),
	}

	sess, err := session.NewSession(s3Config)
	if err != nil {
		return nil, errors.Wrapf(storage.ErrStorageFailed, "s3 session could not be created: %v", err)
	}

	return &RemoteStorage{
		cfg:     cfg,
		session: sess,
		client:  s3.New(sess),
	}, nil
}

func (rs *RemoteStorage) Put(ctx context.Context, namespace, key, contentType string, source io.Reader) (*storage.Item, error) {
	if !isValidKey(key) {
		return nil, errors.Wrapf(storage.ErrInvalidKey, "could not upload file with key [%s]", key)
	}

	if err := document.ValidateNamespace(namespace); err != nil {
		return nil, errors.Wrap(storage.ErrInvalidKey, err.Error())
	}

	if err := rs.ensureNamespace(ctx, namespace); err != nil {
		return nil, err
	}

	uploader := s3manager.NewUploaderWithClient(rs.client)
	uploader.Concurrency = 1

	result, err := uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Body:        source,
		Bucket:      aws.String(namespace),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	})

	if err != nil {
		return nil, errors.Wrapf(
			storage.ErrStorageFailed,
			"could not upload file %s to namespace %s: %v",
			key, namespace, err,
		)
	}

	return &storage.Item{
		Path: namespace + "/" + key,
		URL:  result.Location,
	}, nil
}

func (rs *RemoteStorage) Download(ctx context.Context, dst io.Writer, namespace, key string) error {
	if !isValidKey(key) {
		return errors.Wrapf(storage.ErrInvalidKey, "could not download file with key [%s]", key)
	}

	downloader := s3manager.NewDownloaderWithClient(rs.client)
	downloader.Concurrency = 1

	w := FakeWriterAt{w: dst}
	_, err := downloader.DownloadWithContext(ctx, w, &s3.GetObjectInput{
		Bucket: aws.String(namespace),
		Key:    aws.String(key),
	})

	if err != nil {
		return errors.Wrapf(
			storage.ErrStorageFailed,
			"could not download file %s from namespace %s: %v",
			key, namespace, err,
		)
	}

	return nil
}

// Remove file from bucket
func (rs *RemoteStorage) Remove(ctx context.Context, namespace, key string) error {
	if !isValidKey(key) {
		return errors.Wrapf(storage.ErrInvalidKey, "could not remove file with key [%s]", key)
	}

	_, err := rs.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(namespace),
		Key:    aws.String(key),
	})

	if err != nil {
		return errors.Wrapf(storage.ErrStorageFailed, "could not remove file %s from bucket %s: %v", key, namespace, err)
	}

	err = rs.client.WaitUntilObjectNotExistsWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(namespace),
		Key:    aws.String(key),
	})

	if err != nil {
		return errors.Wrapf(storage.ErrStorageFailed, "could not confirm removal of file %s from bucket %s", key, namespace)
	}

	return nil
}

func (rs *RemoteStorage) ensureNamespace(ctx context.Context, namespace string) error {
	_, err := rs.client.CreateBucketWithContext(ctx, &s3.CreateBucketInput{Bucket: aws.String(namespace)})
	if err == nil {
		return nil
	}

	if aErr, ok := err.(awserr.Error); ok {
		switch aErr.Code() {
		case s3.ErrCodeBucketAlreadyExists, s3.ErrCodeBucketAlreadyOwnedByYou:
			return nil
		}
	}

	return errors.Wrapf(
		storage.ErrStorageFailed,
		"could not create namespace %s: %v",
		namespace, err,
	)
}

// isValidKey checks the key layout and that its extension is a supported document type
func isValidKey(key string) bool {
	if !rxKey.MatchString(key) {
		return false
	}

	_, err := filetype.GetFileType(key)

	return err == nil
}
