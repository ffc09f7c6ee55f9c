package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"resume-builder/internal/shared/storage/object"
)

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "user/resumes/1/export.pdf", want: "user/resumes/1/export.pdf"},
		{name: "simple prefix", prefix: "root", key: "user/export.pdf", want: "root/user/export.pdf"},
		{name: "prefix trailing slash", prefix: "root/", key: "user/export.pdf", want: "root/user/export.pdf"},
		{name: "prefix and key slashes", prefix: "/root/", key: "/user/export.pdf", want: "root/user/export.pdf"},
		{name: "empty key", prefix: "root", key: "", want: "root"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

type fakeS3 struct {
	objects map[string][]byte
	puts    []*s3.PutObjectInput
}

func newFakeS3() *fakeS3 { return &fakeS3{objects: map[string][]byte{}} }

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = data
	f.puts = append(f.puts, in)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	for key := range f.objects {
		if len(key) >= len(aws.ToString(in.Prefix)) && key[:len(aws.ToString(in.Prefix))] == aws.ToString(in.Prefix) {
			out.Contents = append(out.Contents, s3types.Object{Key: aws.String(key)})
		}
	}
	return out, nil
}

func (f *fakeS3) DeleteObjects(_ context.Context, in *s3.DeleteObjectsInput, _ ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	for _, id := range in.Delete.Objects {
		delete(f.objects, aws.ToString(id.Key))
	}
	return &s3.DeleteObjectsOutput{}, nil
}

func TestStoreRoundTripWithPrefixAndKMS(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()
	store := NewWithClient(fake, "bucket", "/exports/", "kms-key")

	if _, err := store.Open(ctx, "u/resumes/1/export-1.pdf"); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	n, err := store.Put(ctx, "u/resumes/1/export-1.pdf", "application/pdf", bytes.NewReader([]byte("pdf")))
	if err != nil || n != 3 {
		t.Fatalf("put: n=%d err=%v", n, err)
	}
	if _, ok := fake.objects["exports/u/resumes/1/export-1.pdf"]; !ok {
		t.Fatalf("expected prefixed key, got %v", fake.objects)
	}
	if fake.puts[0].ServerSideEncryption != s3types.ServerSideEncryptionAwsKms || aws.ToString(fake.puts[0].SSEKMSKeyId) != "kms-key" {
		t.Fatalf("expected KMS encryption")
	}

	rc, err := store.Open(ctx, "u/resumes/1/export-1.pdf")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_ = rc.Close()

	if err := store.DeletePrefix(ctx, "u/resumes/1/"); err != nil {
		t.Fatalf("delete prefix: %v", err)
	}
	if len(fake.objects) != 0 {
		t.Fatalf("expected objects removed, got %v", fake.objects)
	}
}

func TestPutDefaultsToAES256(t *testing.T) {
	fake := newFakeS3()
	store := NewWithClient(fake, "bucket", "", "")
	if _, err := store.Put(context.Background(), "k", "application/pdf", bytes.NewReader(nil)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if fake.puts[0].ServerSideEncryption != s3types.ServerSideEncryptionAes256 {
		t.Fatalf("expected AES256, got %s", fake.puts[0].ServerSideEncryption)
	}
}
