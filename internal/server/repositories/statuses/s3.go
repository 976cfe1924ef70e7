package statuses

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/nowstatus/internal/server/models"
)

// ObjectAPI is the part of *s3.Client used by S3Repository.
type ObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Options configure the client for an S3-compatible store.
type S3Options struct {
	Region       string
	AccessKey    string
	SecretKey    string
	BaseEndpoint string
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// NewS3Client builds a client. Static credentials are used when given,
// otherwise the default AWS credential chain applies. A base endpoint
// switches to path-style addressing (MinIO).
func NewS3Client(ctx context.Context, o S3Options) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(o.Region)}
	if o.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.AccessKey, o.SecretKey, "")))
	}

	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return newS3ClientFromConfig(cfg, func(so *s3.Options) {
		if o.BaseEndpoint != "" {
			so.BaseEndpoint = aws.String(o.BaseEndpoint)
			so.UsePathStyle = true
		}
	}), nil
}

// S3Repository stores each status as the object <prefix><segment>.json.
// A PutObject replaces the object as a whole.
type S3Repository struct {
	client ObjectAPI
	bucket string
	prefix string
}

func NewS3Repository(client ObjectAPI, bucket, prefix string) *S3Repository {
	return &S3Repository{client: client, bucket: bucket, prefix: prefix}
}

func (r *S3Repository) key(seg models.Segment) string {
	return r.prefix + string(seg) + ".json"
}

func (r *S3Repository) Save(ctx context.Context, seg models.Segment, st models.Status) error {
	if err := checkSegment(seg); err != nil {
		return err
	}

	data, err := json.Marshal(st)
	if err != nil {
		return storageError("encode", seg, err)
	}

	_, err = r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.bucket),
		Key:           aws.String(r.key(seg)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("application/json"),
	})
	if err != nil {
		return storageError("put", seg, err)
	}
	return nil
}

func (r *S3Repository) Load(ctx context.Context, seg models.Segment) (models.Status, error) {
	if err := checkSegment(seg); err != nil {
		return models.Status{}, err
	}

	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.key(seg)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return models.Status{}, nil
		}
		return models.Status{}, storageError("get", seg, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return models.Status{}, storageError("read", seg, err)
	}

	var st models.Status
	if err := json.Unmarshal(data, &st); err != nil {
		return models.Status{}, storageError("decode", seg, err)
	}
	return st, nil
}
