// Package testutil provides shared test infrastructure: a MinIO container
// for gateway integration tests and a quiet logger for everything else.
//
// Usage in an integration test:
//
//	tc := testutil.MustStartMinio()
//	defer tc.Terminate()
//	gw, _ := tc.NewGateway(context.Background(), "hub-test", testutil.TestLogger())
package testutil

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/labeveryday/strands-hub-mcp/internal/objstore"
)

const (
	minioImage     = "minio/minio:RELEASE.2025-07-23T15-54-02Z"
	minioAccessKey = "hubtest"
	minioSecretKey = "hubtest-secret"
	minioRegion    = "us-east-1"
)

// TestContainer wraps a running MinIO container with its S3 endpoint.
type TestContainer struct {
	Container testcontainers.Container
	Endpoint  string
	AccessKey string
	SecretKey string
}

// MustStartMinio starts a MinIO container and waits for its health probe.
// Calls os.Exit(1) on failure (suitable for TestMain).
func MustStartMinio() *TestContainer {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        minioImage,
		ExposedPorts: []string{"9000/tcp"},
		Env: map[string]string{
			"MINIO_ROOT_USER":     minioAccessKey,
			"MINIO_ROOT_PASSWORD": minioSecretKey,
		},
		Cmd: []string{"server", "/data"},
		WaitingFor: wait.ForHTTP("/minio/health/live").
			WithPort("9000/tcp").
			WithStatusCodeMatcher(func(status int) bool { return status == http.StatusOK }).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "testutil: failed to start minio container: %v\n", err)
		os.Exit(1)
	}

	host, err := container.Host(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "testutil: failed to get container host: %v\n", err)
		os.Exit(1)
	}
	port, err := container.MappedPort(ctx, "9000")
	if err != nil {
		fmt.Fprintf(os.Stderr, "testutil: failed to get container port: %v\n", err)
		os.Exit(1)
	}

	return &TestContainer{
		Container: container,
		Endpoint:  fmt.Sprintf("http://%s:%s", host, port.Port()),
		AccessKey: minioAccessKey,
		SecretKey: minioSecretKey,
	}
}

// NewGateway creates the named bucket on the container and returns an S3
// gateway bound to it.
func (tc *TestContainer) NewGateway(ctx context.Context, bucket string, logger *slog.Logger) (*objstore.S3, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(minioRegion),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(tc.AccessKey, tc.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("testutil: load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(tc.Endpoint)
		o.UsePathStyle = true
	})
	if _, err := client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucket)}); err != nil {
		return nil, fmt.Errorf("testutil: create bucket %s: %w", bucket, err)
	}

	return objstore.NewS3(ctx, objstore.S3Options{
		Bucket:    bucket,
		Region:    minioRegion,
		Endpoint:  tc.Endpoint,
		PathStyle: true,
		AccessKey: tc.AccessKey,
		SecretKey: tc.SecretKey,
	}, logger)
}

// Terminate stops and removes the container.
func (tc *TestContainer) Terminate() {
	_ = tc.Container.Terminate(context.Background())
}

// TestLogger returns a logger configured for test output (warns only).
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}
