package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = in
	if in.Body != nil {
		b, _ := io.ReadAll(in.Body)
		f.body = string(b)
	}
	return &s3.PutObjectOutput{ETag: aws.String(`"abc123"`)}, nil
}

func TestReportStore_PutReport(t *testing.T) {
	client := &fakeS3{}
	up, err := newUploader(client, "circuit-reports", "https://cdn.example.test/padel")
	require.NoError(t, err)

	url, err := NewReportStore(up).PutReport(context.Background(), "reports/season-2026/tournament-3.json", []byte(`{"ok":true}`))
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.test/padel/reports/season-2026/tournament-3.json", url)
	assert.Equal(t, "circuit-reports", aws.ToString(client.input.Bucket))
	assert.Equal(t, "application/json", aws.ToString(client.input.ContentType))
	assert.Equal(t, `{"ok":true}`, client.body)
}

func TestUpload_TrimsETag(t *testing.T) {
	up, err := newUploader(&fakeS3{}, "b", "https://cdn.example.test/")
	require.NoError(t, err)
	res, err := up.Upload(context.Background(), "/a.json", "application/json", nil)
	require.NoError(t, err)
	assert.Equal(t, "abc123", res.ETag)
	assert.Equal(t, "https://cdn.example.test/a.json", res.Location)
}

func TestUpload_Error(t *testing.T) {
	boom := errors.New("denied")
	up, err := newUploader(&fakeS3{err: boom}, "b", "https://cdn.example.test")
	require.NoError(t, err)
	_, err = NewReportStore(up).PutReport(context.Background(), "k", nil)
	require.ErrorIs(t, err, boom)
}

func TestNewUploader_Validation(t *testing.T) {
	_, err := newUploader(&fakeS3{}, "b", "not a url")
	assert.Error(t, err)
	_, err = NewCloudflareR2Uploader(context.Background(), CloudflareR2UploaderConfig{BucketName: "b"})
	assert.Error(t, err)
}

type memUploader struct {
	objects map[string]string
}

func (m *memUploader) Upload(_ context.Context, key, contentType string, body io.Reader) (*StoredObject, error) {
	b, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	m.objects[key] = contentType + " " + string(b)
	return &StoredObject{Key: key, Location: "mem://" + key}, nil
}

func TestReportStore_AnyUploader(t *testing.T) {
	up := &memUploader{objects: map[string]string{}}
	url, err := NewReportStore(up).PutReport(context.Background(), "reports/t.json", []byte(`[]`))
	require.NoError(t, err)
	assert.Equal(t, "mem://reports/t.json", url)
	assert.Equal(t, map[string]string{"reports/t.json": "application/json []"}, up.objects)
}
