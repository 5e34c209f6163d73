package dataset

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/core/domain"
)

// ObjectGetter is the subset of the S3 client used by S3Source.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads the dataset from one S3 object. Keys ending in .gz are gunzipped.
type S3Source struct {
	client ObjectGetter
	bucket string
	key    string
}

// NewS3Source builds a client from the default AWS credential chain.
func NewS3Source(ctx context.Context, region, bucket, key string) (*S3Source, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewS3SourceWithClient(s3.NewFromConfig(cfg), bucket, key), nil
}

// NewS3SourceWithClient wraps an existing client.
func NewS3SourceWithClient(client ObjectGetter, bucket, key string) *S3Source {
	return &S3Source{client: client, bucket: bucket, key: key}
}

func (s *S3Source) Name() string { return "s3://" + s.bucket + "/" + s.key }

func (s *S3Source) Load(ctx context.Context) ([]domain.Place, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", s.Name(), err)
	}
	defer out.Body.Close()

	gz := strings.HasSuffix(s.key, ".gz") || aws.ToString(out.ContentEncoding) == "gzip"
	places, err := Decode(out.Body, gz)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Name(), err)
	}
	if len(places) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrNoDataset, s.Name())
	}
	return places, nil
}
