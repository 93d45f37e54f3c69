package aws

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"cardgen-server/core"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

// prefix is where exports live in the bucket: exports/<id>/<filename>.
const prefix = "exports/"

// s3API is the part of the S3 client the store uses.
type s3API interface {
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type s3Store struct {
	s3Client s3API
	bucket   string
}

// NewStore creates a new S3-based store using the default AWS credential chain.
func NewStore(ctx context.Context, bucketName string) (*s3Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return newStore(s3.NewFromConfig(cfg), bucketName), nil
}

func newStore(client s3API, bucketName string) *s3Store {
	return &s3Store{s3Client: client, bucket: bucketName}
}

func exportKey(id, filename string) (string, error) {
	// Filenames must be plain names, not paths.
	if path.Base(filename) != filename || filename == "" || filename == "." || filename == ".." {
		return "", fmt.Errorf("invalid export filename %q", filename)
	}
	return prefix + id + "/" + filename, nil
}

func (s *s3Store) Save(ctx context.Context, export *core.Export) (string, error) {
	id := ulid.Make().String()
	key, err := exportKey(id, export.Filename)
	if err != nil {
		return "", err
	}
	log := logrus.WithFields(logrus.Fields{"export_id": id, "key": key})

	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(export.Data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		log.WithError(err).Error("Failed to upload export")
		return "", fmt.Errorf("failed to upload export: %w", err)
	}
	log.Info("Export saved successfully")
	return id, nil
}

func (s *s3Store) FindID(ctx context.Context, id string) (*core.Export, error) {
	parsed, err := ulid.ParseStrict(id)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", id, core.ErrExportNotFound)
	}

	out, err := s.s3Client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		Prefix:  aws.String(prefix + id + "/"),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to look up export %s: %w", id, err)
	}
	if len(out.Contents) == 0 {
		return nil, fmt.Errorf("export %s: %w", id, core.ErrExportNotFound)
	}
	key := aws.ToString(out.Contents[0].Key)

	resp, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("export %s: %w", id, core.ErrExportNotFound)
		}
		return nil, fmt.Errorf("failed to get export %s: %w", id, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read export data: %w", err)
	}

	return &core.Export{
		ID:        id,
		Filename:  path.Base(key),
		Data:      data,
		CreatedAt: ulid.Time(parsed.Time()).UTC(),
	}, nil
}

// Latest walks every export key and returns the one with the greatest ID.
func (s *s3Store) Latest(ctx context.Context) (*core.Export, error) {
	var latest string
	paginator := s3.NewListObjectsV2Paginator(s.s3Client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list exports: %w", err)
		}
		for _, object := range page.Contents {
			id, _, ok := strings.Cut(strings.TrimPrefix(aws.ToString(object.Key), prefix), "/")
			if !ok {
				continue
			}
			if id > latest {
				latest = id
			}
		}
	}
	if latest == "" {
		return nil, core.ErrExportNotFound
	}
	return s.FindID(ctx, latest)
}
