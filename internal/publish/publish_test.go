package publish

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	objects      map[string]string
	contentTypes map[string]string
	err          error
}

func (f *fakeUploader) UploadWithContext(ctx aws.Context, in *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	buf, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.StringValue(in.Key)] = string(buf)
	f.contentTypes[aws.StringValue(in.Key)] = aws.StringValue(in.ContentType)
	return &s3manager.UploadOutput{}, nil
}

type fakeChecker struct {
	err error
}

func (f *fakeChecker) HeadBucketWithContext(ctx aws.Context, in *s3.HeadBucketInput, opts ...request.Option) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, f.err
}

func siteDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html></html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "style.css"), []byte("body{}"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "data"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data", "coverage.xlsx"), []byte("xlsx"), 0o644))
	return dir
}

func newTestPublisher(prefix string, up *fakeUploader, checker *fakeChecker) *Publisher {
	return &Publisher{
		cfg:      Config{Bucket: "bucket", Prefix: prefix},
		uploader: up,
		checker:  checker,
	}
}

func TestPublish(t *testing.T) {
	up := &fakeUploader{objects: map[string]string{}, contentTypes: map[string]string{}}
	p := newTestPublisher("site/v1", up, &fakeChecker{})

	keys, err := p.Publish(context.Background(), siteDir(t))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"site/v1/index.html", "site/v1/style.css", "site/v1/data/coverage.xlsx"}, keys)
	assert.Equal(t, "<html></html>", up.objects["site/v1/index.html"])
	assert.Contains(t, up.contentTypes["site/v1/index.html"], "text/html")
	assert.Contains(t, up.contentTypes["site/v1/style.css"], "text/css")
}

func TestPublishErrors(t *testing.T) {
	t.Run("bucket not reachable", func(t *testing.T) {
		up := &fakeUploader{objects: map[string]string{}, contentTypes: map[string]string{}}
		p := newTestPublisher("", up, &fakeChecker{err: errors.New("forbidden")})
		_, err := p.Publish(context.Background(), siteDir(t))
		assert.ErrorContains(t, err, "unable to access bucket bucket")
		assert.Empty(t, up.objects)
	})
	t.Run("upload failure", func(t *testing.T) {
		up := &fakeUploader{err: errors.New("boom")}
		p := newTestPublisher("", up, &fakeChecker{})
		_, err := p.Publish(context.Background(), siteDir(t))
		assert.ErrorContains(t, err, "boom")
	})
	t.Run("empty directory", func(t *testing.T) {
		p := newTestPublisher("", nil, nil)
		_, err := p.Publish(context.Background(), t.TempDir())
		assert.ErrorContains(t, err, "no files to publish")
	})
}

func TestPublishDryRun(t *testing.T) {
	p, err := NewPublisher(Config{Bucket: "bucket", Prefix: "/site/", DryRun: true})
	require.NoError(t, err)
	keys, err := p.Publish(context.Background(), siteDir(t))
	require.NoError(t, err)
	assert.Contains(t, keys, "site/index.html")
}

func TestNewPublisherRequiresBucket(t *testing.T) {
	_, err := NewPublisher(Config{DryRun: true})
	assert.Error(t, err)
}

func TestObjectKey(t *testing.T) {
	tests := []struct {
		prefix string
		rel    string
		want   string
	}{
		{"", "index.html", "index.html"},
		{"site", "index.html", "site/index.html"},
		{"a/b", filepath.Join("data", "x.css"), "a/b/data/x.css"},
	}
	for _, tt := range tests {
		p := &Publisher{cfg: Config{Prefix: tt.prefix}}
		assert.Equal(t, tt.want, p.ObjectKey(tt.rel))
	}
}

func TestContentType(t *testing.T) {
	assert.Equal(t, defaultContentType, ContentType("file.unknownext"))
	assert.Contains(t, ContentType("page.html"), "text/html")
}
