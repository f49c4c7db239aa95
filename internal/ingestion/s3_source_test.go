package ingestion

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	pages   [][]string
	objects map[string]string
	listErr error
	calls   int
}

func (f *fakeS3) ListObjectsV2(_ context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}

	page := f.calls
	f.calls++

	out := &s3.ListObjectsV2Output{}
	for _, key := range f.pages[page] {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(key)})
	}
	if page+1 < len(f.pages) {
		out.IsTruncated = aws.Bool(true)
		out.NextContinuationToken = aws.String("next")
	}
	return out, nil
}

func (f *fakeS3) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	body, ok := f.objects[aws.ToString(params.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func TestS3SourceDocuments(t *testing.T) {
	client := &fakeS3{
		pages: [][]string{
			{"campus/zoe.txt", "campus/photo.png"},
			{"campus/adam.txt"},
		},
		objects: map[string]string{
			"campus/zoe.txt":  "Python",
			"campus/adam.txt": "Excel",
		},
	}

	docs, err := newS3Source(client, "resumes", "campus/").Documents(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "adam.txt", docs[0].Name)
	assert.Equal(t, "Excel", string(docs[0].Content))
	assert.Equal(t, "zoe.txt", docs[1].Name)
	assert.Equal(t, 2, client.calls, "both pages must be listed")
}

func TestS3SourceErrors(t *testing.T) {
	_, err := newS3Source(&fakeS3{listErr: errors.New("denied")}, "resumes", "").Documents(context.Background())
	assert.ErrorContains(t, err, "failed to list objects")

	client := &fakeS3{pages: [][]string{{"gone.pdf"}}, objects: map[string]string{}}
	_, err = newS3Source(client, "resumes", "").Documents(context.Background())
	assert.ErrorContains(t, err, "failed to get object gone.pdf")
}

func TestNewS3SourceRequiresBucket(t *testing.T) {
	_, err := NewS3Source(context.Background(), S3Options{})
	assert.Error(t, err)
}
