package s3_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	s3store "taxdocs/internal/storage/s3"
)

// fakeS3 serves one object from memory.
type fakeS3 struct {
	objects map[string][]byte
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentLength: aws.Int64(int64(len(data))),
	}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) UploadPart(context.Context, *s3.UploadPartInput, ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	return nil, errors.New("multipart not supported")
}

func (f *fakeS3) CreateMultipartUpload(context.Context, *s3.CreateMultipartUploadInput, ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	return nil, errors.New("multipart not supported")
}

func (f *fakeS3) CompleteMultipartUpload(context.Context, *s3.CompleteMultipartUploadInput, ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	return nil, errors.New("multipart not supported")
}

func (f *fakeS3) AbortMultipartUpload(context.Context, *s3.AbortMultipartUploadInput, ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	return nil, errors.New("multipart not supported")
}

func TestParseURI(t *testing.T) {
	bucket, key, err := s3store.ParseURI("s3://rules/catalogs/2025.yaml")
	require.NoError(t, err)
	assert.Equal(t, "rules", bucket)
	assert.Equal(t, "catalogs/2025.yaml", key)

	for _, bad := range []string{"rules/catalog.yaml", "s3://rules", "s3:///key", "s3://rules/"} {
		_, _, err := s3store.ParseURI(bad)
		assert.Error(t, err, bad)
	}
}

func TestCatalogStore_PublishFetch(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}}
	store, err := s3store.NewCatalogStore(fake, "s3://rules/catalog.yaml")
	require.NoError(t, err)
	assert.Equal(t, "s3://rules/catalog.yaml", store.Describe())

	ctx := context.Background()
	require.NoError(t, store.Publish(ctx, []byte("version: test\n")))
	assert.Equal(t, []byte("version: test\n"), fake.objects["rules/catalog.yaml"])

	data, err := store.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "version: test\n", string(data))
}

func TestCatalogStore_FetchMissing(t *testing.T) {
	store, err := s3store.NewCatalogStore(&fakeS3{objects: map[string][]byte{}}, "s3://rules/none.yaml")
	require.NoError(t, err)
	_, err = store.Fetch(context.Background())
	assert.ErrorContains(t, err, "s3://rules/none.yaml")
}
