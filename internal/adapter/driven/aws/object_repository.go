package aws

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3Types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/diillson/billing-alerts-go/internal/domain/repository"
	"github.com/diillson/billing-alerts-go/internal/shared/types"
)

// S3API is the subset of the S3 client used to read billing exports.
type S3API interface {
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// ObjectRepositoryImpl lê os objetos de exportação de um bucket S3
// ou de qualquer endpoint compatível (ex.: GCS em modo de interoperabilidade).
type ObjectRepositoryImpl struct {
	client S3API
	bucket string
}

// NewObjectRepository cria o repositório a partir da configuração de storage.
func NewObjectRepository(ctx context.Context, cfg types.StorageConfig) (repository.ObjectRepository, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is required for the s3 backend")
	}

	opts := []func(*config.LoadOptions) error{}
	if cfg.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(cfg.Profile))
	}
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for profile %s: %w", cfg.Profile, err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewObjectRepositoryWithClient(client, cfg.Bucket), nil
}

// NewObjectRepositoryWithClient wraps an existing client.
func NewObjectRepositoryWithClient(client S3API, bucket string) repository.ObjectRepository {
	return &ObjectRepositoryImpl{client: client, bucket: bucket}
}

func (r *ObjectRepositoryImpl) ListObjects(ctx context.Context, prefix string) ([]string, error) {
	input := &s3.ListObjectsV2Input{Bucket: aws.String(r.bucket)}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	names := []string{}
	paginator := s3.NewListObjectsV2Paginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("error listing s3://%s/%s: %w", r.bucket, prefix, err)
		}
		for _, obj := range page.Contents {
			if obj.Key != nil {
				names = append(names, *obj.Key)
			}
		}
	}
	sort.Strings(names)
	return names, nil
}

func (r *ObjectRepositoryImpl) ReadObject(ctx context.Context, name string) ([]byte, error) {
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		var noKey *s3Types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("s3://%s/%s: %w", r.bucket, name, types.ErrObjectNotFound)
		}
		return nil, fmt.Errorf("error reading s3://%s/%s: %w", r.bucket, name, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading s3://%s/%s: %w", r.bucket, name, err)
	}
	return data, nil
}
