package objstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3Options configure the S3-backed gateway.
type S3Options struct {
	Bucket string
	Region string
	// Endpoint overrides the AWS endpoint for S3-compatible stores
	// (MinIO, LocalStack). Empty means real S3.
	Endpoint string
	// PathStyle forces path-style addressing, required by most
	// S3-compatible stores.
	PathStyle bool
	// AccessKey/SecretKey bypass the default credential chain when set.
	// Production deployments leave them empty and use ambient credentials.
	AccessKey string
	SecretKey string
}

// S3 is the production Gateway backed by an S3 bucket.
type S3 struct {
	client *s3.Client
	bucket string
	logger *slog.Logger
}

// NewS3 resolves credentials and returns a gateway bound to opts.Bucket.
// It performs no network call; a bad bucket or credentials surface on the
// first operation.
func NewS3(ctx context.Context, opts S3Options, logger *slog.Logger) (*S3, error) {
	if opts.Bucket == "" {
		return nil, errors.New("objstore: bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("objstore: load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.PathStyle
	})

	logger.Info("objstore: s3 gateway ready",
		"bucket", opts.Bucket,
		"region", cfg.Region,
		"endpoint", opts.Endpoint,
	)

	return &S3{client: client, bucket: opts.Bucket, logger: logger}, nil
}

// Get implements Gateway.
func (s *S3) Get(ctx context.Context, key string) (Object, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return Object{}, fmt.Errorf("objstore: get %s: %w", key, classify(err))
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return Object{}, fmt.Errorf("objstore: read %s: %w", key, classify(err))
	}
	return Object{Key: key, Body: body, ETag: aws.ToString(out.ETag)}, nil
}

// Put implements Gateway.
func (s *S3) Put(ctx context.Context, key string, body []byte, cond *Condition) error {
	in := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentTypeFor(key)),
	}
	if cond != nil {
		if cond.IfMatch != "" {
			in.IfMatch = aws.String(cond.IfMatch)
		}
		if cond.IfNoneMatch {
			in.IfNoneMatch = aws.String("*")
		}
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return fmt.Errorf("objstore: put %s: %w", key, classify(err))
	}
	return nil
}

// List implements Gateway.
func (s *S3) List(ctx context.Context, prefix, delimiter string, page Page) (Listing, error) {
	in := &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int32(page.size()),
	}
	if delimiter != "" {
		in.Delimiter = aws.String(delimiter)
	}
	if page.Token != "" {
		in.ContinuationToken = aws.String(page.Token)
	}

	out, err := s.client.ListObjectsV2(ctx, in)
	if err != nil {
		return Listing{}, fmt.Errorf("objstore: list %s: %w", prefix, classify(err))
	}

	l := Listing{
		Truncated: aws.ToBool(out.IsTruncated),
		NextToken: aws.ToString(out.NextContinuationToken),
	}
	for _, obj := range out.Contents {
		l.Keys = append(l.Keys, aws.ToString(obj.Key))
	}
	for _, cp := range out.CommonPrefixes {
		l.CommonPrefixes = append(l.CommonPrefixes, aws.ToString(cp.Prefix))
	}
	return l, nil
}

// Exists implements Gateway.
func (s *S3) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if errors.Is(classify(err), ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("objstore: head %s: %w", key, classify(err))
	}
	return true, nil
}

// classify maps SDK failures onto the package taxonomy. Errors outside the
// taxonomy pass through unchanged so nothing is swallowed.
func classify(err error) error {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return ErrNotFound
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return ErrNotFound
	}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.HTTPStatusCode() {
		case http.StatusNotFound:
			return ErrNotFound
		case http.StatusPreconditionFailed, http.StatusConflict:
			return ErrConditionFailed
		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return fmt.Errorf("%w: %v", ErrTransient, err)
		}
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return ErrNotFound
		case "PreconditionFailed", "ConditionalRequestConflict":
			return ErrConditionFailed
		case "SlowDown", "Throttling", "ThrottlingException", "RequestTimeout", "InternalError", "ServiceUnavailable":
			return fmt.Errorf("%w: %v", ErrTransient, err)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
	return err
}
