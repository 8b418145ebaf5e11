package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"go-jobboard-backend/internal/domain"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects map[string][]byte
	putErr  error
	deleted []string
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, _ := io.ReadAll(in.Body)
	f.objects[aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(in.Key))
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) HeadBucket(context.Context, *s3.HeadBucketInput, ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, nil
}

func TestS3BlobStore_StoreAndDelete(t *testing.T) {
	api := &fakeS3{objects: map[string][]byte{}}
	store := newS3BlobStore(api, Config{Bucket: "resumes", Region: "eu-west-1"})

	ref, err := store.Store(context.Background(), domain.BlobObject{
		Key:         "resumes/cand 1/abc.pdf",
		Data:        []byte("%PDF-1.4"),
		ContentType: "application/pdf",
		FileName:    "cv.pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, "resumes/cand 1/abc.pdf", ref.BlobID)
	assert.Equal(t, "https://resumes.s3.eu-west-1.amazonaws.com/resumes/cand%201/abc.pdf", ref.URL)
	assert.Equal(t, []byte("%PDF-1.4"), api.objects[ref.BlobID])

	require.NoError(t, store.Delete(context.Background(), ref.BlobID))
	assert.Equal(t, []string{ref.BlobID}, api.deleted)
	assert.Empty(t, api.objects)
}

func TestS3BlobStore_StoreFailure(t *testing.T) {
	store := newS3BlobStore(&fakeS3{objects: map[string][]byte{}, putErr: errors.New("boom")}, Config{Bucket: "b"})

	_, err := store.Store(context.Background(), domain.BlobObject{Key: "k"})
	assert.Error(t, err)
}

func TestPublicBaseURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com", publicBaseURL(Config{PublicBaseURL: "https://cdn.example.com/"}))
	assert.Equal(t, "https://s3.ap-southeast-1.wasabisys.com/bucket",
		publicBaseURL(Config{Bucket: "bucket", Endpoint: "s3.ap-southeast-1.wasabisys.com"}))
}
