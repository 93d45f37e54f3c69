package aws

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"

	"cardgen-server/core"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// fakeS3 keeps objects in a map and serves them through the s3API surface.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if in.MaxKeys != nil && int(*in.MaxKeys) < len(keys) {
		keys = keys[:*in.MaxKeys]
	}
	out := &s3.ListObjectsV2Output{}
	for _, k := range keys {
		out.Contents = append(out.Contents, s3types.Object{Key: aws.String(k)})
	}
	return out, nil
}

func TestSaveAndFind(t *testing.T) {
	fake := newFakeS3()
	store := newStore(fake, "bucket")
	ctx := context.Background()

	id, err := store.Save(ctx, &core.Export{Filename: "flashcards.json", Data: []byte(`[]`)})
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if _, ok := fake.objects["exports/"+id+"/flashcards.json"]; !ok {
		t.Errorf("Expected object at exports/%s/flashcards.json, have %v", id, fake.objects)
	}

	got, err := store.FindID(ctx, id)
	if err != nil {
		t.Fatalf("FindID() failed: %v", err)
	}
	if got.ID != id || got.Filename != "flashcards.json" || string(got.Data) != `[]` {
		t.Errorf("FindID() returned %+v", got)
	}
}

func TestSave_InvalidFilename(t *testing.T) {
	store := newStore(newFakeS3(), "bucket")
	for _, name := range []string{"", "..", "a/b.json"} {
		if _, err := store.Save(context.Background(), &core.Export{Filename: name}); err == nil {
			t.Errorf("Save(%q): expected error", name)
		}
	}
}

func TestFindID_NotFound(t *testing.T) {
	store := newStore(newFakeS3(), "bucket")
	for _, id := range []string{"01ARZ3NDEKTSV4RRFFQ69G5FAV", "not-a-ulid"} {
		if _, err := store.FindID(context.Background(), id); !errors.Is(err, core.ErrExportNotFound) {
			t.Errorf("FindID(%q): expected ErrExportNotFound, got %v", id, err)
		}
	}
}

func TestLatest(t *testing.T) {
	store := newStore(newFakeS3(), "bucket")
	ctx := context.Background()

	if _, err := store.Latest(ctx); !errors.Is(err, core.ErrExportNotFound) {
		t.Errorf("Expected ErrExportNotFound on empty bucket, got %v", err)
	}

	store.Save(ctx, &core.Export{Filename: "flashcards.json", Data: []byte("first")})
	second, _ := store.Save(ctx, &core.Export{Filename: "cards.json", Data: []byte("second")})

	got, err := store.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest() failed: %v", err)
	}
	if got.ID != second || got.Filename != "cards.json" {
		t.Errorf("Latest() returned %+v, want export %s", got, second)
	}
}
