package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"

	"charger-alert-service/internal/config"
)

// ResolutionError means the referenced object does not exist or the storage
// collaborator rejected the visibility change.
type ResolutionError struct {
	Address string
	Err     error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve %s: %v", e.Address, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// ObjectAPI is the slice of the S3 client the resolver needs.
type ObjectAPI interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObjectAcl(ctx context.Context, params *s3.PutObjectAclInput, optFns ...func(*s3.Options)) (*s3.PutObjectAclOutput, error)
}

// Resolver turns internal storage references (scheme://bucket/path) into
// publicly fetchable addresses. Conventional http(s) addresses pass through
// unchanged.
type Resolver struct {
	api           ObjectAPI
	publicBaseURL string
	log           zerolog.Logger
}

func NewResolver(cfg *config.Config, log zerolog.Logger) (*Resolver, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Storage.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.Storage.AccessKey,
			cfg.Storage.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewResolverWithAPI(s3Client, cfg.Storage.PublicBaseURL, log), nil
}

func NewResolverWithAPI(api ObjectAPI, publicBaseURL string, log zerolog.Logger) *Resolver {
	return &Resolver{
		api:           api,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		log:           log,
	}
}

// Resolve verifies the object exists, grants public read access and builds a
// deterministic public address. Granting read access is idempotent but not
// reversible here; re-resolving an already-public address is a no-op.
func (r *Resolver) Resolve(ctx context.Context, addr string) (string, error) {
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return addr, nil
	}

	bucket, key, err := splitReference(addr)
	if err != nil {
		return "", &ResolutionError{Address: addr, Err: err}
	}

	if _, err := r.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}); err != nil {
		return "", &ResolutionError{Address: addr, Err: fmt.Errorf("object not found: %w", err)}
	}

	if _, err := r.api.PutObjectAcl(ctx, &s3.PutObjectAclInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		ACL:    types.ObjectCannedACLPublicRead,
	}); err != nil {
		return "", &ResolutionError{Address: addr, Err: fmt.Errorf("failed to grant public access: %w", err)}
	}

	public := r.publicURL(bucket, key)
	r.log.Debug().Str("address", addr).Str("public_url", public).Msg("resolved storage reference")
	return public, nil
}

func splitReference(addr string) (bucket, key string, err error) {
	u, err := url.Parse(addr)
	if err != nil {
		return "", "", fmt.Errorf("invalid storage reference: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", "", fmt.Errorf("invalid storage reference %q", addr)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", "", fmt.Errorf("storage reference %q has no object path", addr)
	}
	return u.Host, key, nil
}

func (r *Resolver) publicURL(bucket, key string) string {
	if r.publicBaseURL != "" {
		return fmt.Sprintf("%s/%s/%s", r.publicBaseURL, bucket, encodePath(key))
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", bucket, encodePath(key))
}

func encodePath(key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
