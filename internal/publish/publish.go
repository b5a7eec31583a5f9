// Package publish uploads a generated site to an S3 bucket.
package publish

import (
	"context"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const defaultContentType = "application/octet-stream"

type uploader interface {
	UploadWithContext(ctx aws.Context, input *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error)
}

type bucketChecker interface {
	HeadBucketWithContext(ctx aws.Context, input *s3.HeadBucketInput, opts ...request.Option) (*s3.HeadBucketOutput, error)
}

type Config struct {
	Bucket string
	Region string
	// Prefix is prepended to every object key.
	Prefix string
	DryRun bool
}

// Publisher uploads the files of a directory, keeping their relative paths.
type Publisher struct {
	cfg      Config
	uploader uploader
	checker  bucketChecker
}

// NewPublisher creates the S3 clients for the configured region. In dry run
// mode no session is created.
func NewPublisher(cfg Config) (*Publisher, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("missing bucket name")
	}
	cfg.Prefix = strings.Trim(cfg.Prefix, "/")
	p := &Publisher{cfg: cfg}
	if cfg.DryRun {
		return p, nil
	}
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.Region),
	})
	if err != nil {
		return nil, errors.Wrap(err, "unable to create AWS session")
	}
	p.uploader = s3manager.NewUploader(sess)
	p.checker = s3.New(sess)
	return p, nil
}

// ObjectKey returns the key of a file relative to the site directory.
func (p *Publisher) ObjectKey(rel string) string {
	key := filepath.ToSlash(rel)
	if p.cfg.Prefix == "" {
		return key
	}
	return path.Join(p.cfg.Prefix, key)
}

// Publish uploads every regular file under dir and returns the object keys
// in walk order.
func (p *Publisher) Publish(ctx context.Context, dir string) ([]string, error) {
	files, err := listFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.Errorf("no files to publish in %s", dir)
	}

	if !p.cfg.DryRun {
		_, err := p.checker.HeadBucketWithContext(ctx, &s3.HeadBucketInput{
			Bucket: aws.String(p.cfg.Bucket),
		})
		if err != nil {
			return nil, errors.Wrapf(err, "unable to access bucket %s", p.cfg.Bucket)
		}
	}

	keys := make([]string, 0, len(files))
	for _, rel := range files {
		key := p.ObjectKey(rel)
		uri := "s3://" + p.cfg.Bucket + "/" + key
		if p.cfg.DryRun {
			log.Warnf("DRY-RUN mode: skipping upload to %s", uri)
			keys = append(keys, key)
			continue
		}
		if err := p.upload(ctx, filepath.Join(dir, rel), key); err != nil {
			return keys, err
		}
		log.Debugf("Uploaded %s", uri)
		keys = append(keys, key)
	}
	log.Infof("Published %d files to s3://%s/%s", len(keys), p.cfg.Bucket, p.cfg.Prefix)
	return keys, nil
}

func (p *Publisher) upload(ctx context.Context, file, key string) error {
	fd, err := os.Open(file)
	if err != nil {
		return errors.Wrapf(err, "unable to open %s", file)
	}
	defer fd.Close()

	_, err = p.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(p.cfg.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(ContentType(file)),
		Body:        fd,
	})
	if err != nil {
		return errors.Wrapf(err, "unable to upload %s to bucket %s", file, p.cfg.Bucket)
	}
	return nil
}

// ContentType guesses the content type from the file extension.
func ContentType(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return defaultContentType
}

// listFiles returns the regular files under dir as relative paths.
func listFiles(dir string) ([]string, error) {
	files := []string{}
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "unable to list %s", dir)
	}
	return files, nil
}
