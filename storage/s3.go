package storage

import (
	"io"
	"os"
	"strings"
	"videoserver/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

type S3Storage struct {
	s3Client *s3.S3
	bucket   string
}

func NewS3Storage() *S3Storage {
	awsConfig := aws.Config{
		Region: aws.String(config.S3_REGION),
	}
	if config.S3_ENDPOINT != "" {
		awsConfig.Endpoint = aws.String(config.S3_ENDPOINT)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}
	if config.S3_AUTH != "" {
		parts := strings.SplitN(config.S3_AUTH, ":", 2)
		if len(parts) == 2 {
			awsConfig.Credentials = credentials.NewStaticCredentials(parts[0], parts[1], "")
		}
	}
	sess := session.Must(session.NewSession(&awsConfig))
	return &S3Storage{
		s3Client: s3.New(sess),
		bucket:   config.S3_BUCKET,
	}
}

// GetFullPath returns a local temp path in case of S3
func (s *S3Storage) GetFullPath(path string) string {
	return config.TMP_DIR + "/" + strings.ReplaceAll(path, "/", "_")
}

func (s *S3Storage) Save(path string, reader io.Reader) (int64, error) {
	uploader := s3manager.NewUploaderWithClient(s.s3Client)
	input := s3manager.UploadInput{
		Bucket: &s.bucket,
		Key:    aws.String(path),
		Body:   reader,
	}
	if config.S3_SSE != "" {
		input.ServerSideEncryption = aws.String(config.S3_SSE)
	}
	if _, err := uploader.Upload(&input); err != nil {
		return 0, err
	}
	return s.GetSize(path), nil
}

// tmpFile removes the locally cached copy once the reader is closed
type tmpFile struct {
	*os.File
}

func (t *tmpFile) Close() error {
	err := t.File.Close()
	_ = os.Remove(t.File.Name())
	return err
}

// newLocalCopy creates a uniquely named temp file for one open. Every
// open gets its own file: a shared per-key path would let a second
// open truncate the copy a concurrent stream is still reading.
func newLocalCopy(dir, key string) (*os.File, error) {
	return os.CreateTemp(dir, strings.ReplaceAll(key, "/", "_")+".*")
}

// Open downloads the object to a local temp file and returns a handle
// that cleans up after itself. Seeking over a remote object without a
// local copy would cost one round trip per seek.
func (s *S3Storage) Open(path string) (io.ReadSeekCloser, error) {
	resp, err := s.s3Client.GetObject(&s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    aws.String(path),
	})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer resp.Body.Close()

	out, err := newLocalCopy(config.TMP_DIR, path)
	if err != nil {
		return nil, err
	}
	if _, err = io.Copy(out, resp.Body); err != nil {
		out.Close()
		_ = os.Remove(out.Name())
		return nil, err
	}
	if _, err = out.Seek(0, io.SeekStart); err != nil {
		out.Close()
		_ = os.Remove(out.Name())
		return nil, err
	}
	return &tmpFile{File: out}, nil
}

func (s *S3Storage) GetSize(path string) int64 {
	head, err := s.s3Client.HeadObject(&s3.HeadObjectInput{
		Bucket: &s.bucket,
		Key:    aws.String(path),
	})
	if err != nil || head.ContentLength == nil {
		return -1
	}
	return *head.ContentLength
}

// Move is a server-side copy followed by a delete of the old object
func (s *S3Storage) Move(oldPath, newPath string) error {
	_, err := s.s3Client.CopyObject(&s3.CopyObjectInput{
		Bucket:     &s.bucket,
		CopySource: aws.String(s.bucket + "/" + oldPath),
		Key:        aws.String(newPath),
	})
	if err != nil {
		if isNoSuchKey(err) {
			return ErrNotFound
		}
		return err
	}
	return s.Delete(oldPath)
}

func (s *S3Storage) Delete(path string) error {
	_, err := s.s3Client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: &s.bucket,
		Key:    aws.String(path),
	})
	if isNoSuchKey(err) {
		return ErrNotFound
	}
	return err
}

func isNoSuchKey(err error) bool {
	if err == nil {
		return false
	}
	if aerr, ok := err.(awserr.Error); ok {
		return aerr.Code() == s3.ErrCodeNoSuchKey || aerr.Code() == "NotFound"
	}
	return false
}
