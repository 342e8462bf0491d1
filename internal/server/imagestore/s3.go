// Package imagestore archives submitted report images in S3-compatible
// object storage. Keys are content addressed, so resubmitting the same
// image reuses one object.
package imagestore

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/crypto/blake2b"
)

// Archive stores images and hands out temporary read links.
type Archive interface {
	Put(ctx context.Context, image []byte) (string, error)
	PresignGet(ctx context.Context, key string) (string, error)
}

// Options configures the S3 archive.
type Options struct {
	Bucket       string
	Region       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
	PresignTTL   time.Duration
}

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type getPresigner interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// S3Archive implements Archive on top of aws-sdk-go-v2.
type S3Archive struct {
	bucket     string
	putter     objectPutter
	presigner  getPresigner
	presignTTL time.Duration
	now        func() time.Time
}

// NewS3Archive builds the S3 client from static credentials. A non-empty
// BaseEndpoint selects path-style addressing for MinIO and friends.
func NewS3Archive(ctx context.Context, o Options) (*S3Archive, error) {
	optFns := []func(*config.LoadOptions) error{config.WithRegion(o.Region)}
	if o.AccessKey != "" {
		optFns = append(optFns, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.AccessKey, o.SecretKey, "")))
	}
	cfg, err := loadDefaultAWSConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(so *s3.Options) {
		if o.BaseEndpoint != "" {
			so.BaseEndpoint = aws.String(o.BaseEndpoint)
			so.UsePathStyle = true
		}
	})

	return newArchive(o.Bucket, client, s3.NewPresignClient(client), o.PresignTTL), nil
}

func newArchive(bucket string, p objectPutter, g getPresigner, ttl time.Duration) *S3Archive {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &S3Archive{bucket: bucket, putter: p, presigner: g, presignTTL: ttl, now: time.Now}
}

// Key returns the storage key for image, dated by upload day.
func (a *S3Archive) Key(image []byte) string {
	sum := blake2b.Sum256(image)
	d := a.now().UTC()
	return fmt.Sprintf("reports/%04d/%02d/%02d/%s", d.Year(), d.Month(), d.Day(), hex.EncodeToString(sum[:]))
}

func (a *S3Archive) Put(ctx context.Context, image []byte) (string, error) {
	key := a.Key(image)
	_, err := a.putter.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(image),
		ContentType: aws.String(http.DetectContentType(image)),
	})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	return key, nil
}

func (a *S3Archive) PresignGet(ctx context.Context, key string) (string, error) {
	req, err := a.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(a.presignTTL))
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return req.URL, nil
}
