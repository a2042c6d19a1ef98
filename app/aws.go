package app

import (
	"context"
	"path"
	"time"

	"github.com/advdv/bcapture"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-sdk-go-v2/otelaws"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const awsConfigTimeout = 10 * time.Second

// NewAWSConfig loads the default AWS SDK v2 configuration and instruments it with
// OpenTelemetry for AWS SDK tracing.
func NewAWSConfig(ctx context.Context, tp trace.TracerProvider, prop propagation.TextMapPropagator) (aws.Config, error) {
	ctx, cancel := context.WithTimeout(ctx, awsConfigTimeout)
	defer cancel()

	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return cfg, errors.Wrap(err, "load aws config")
	}

	otelaws.AppendMiddlewares(&cfg.APIOptions,
		otelaws.WithTracerProvider(tp),
		otelaws.WithTextMapPropagator(prop),
	)

	return cfg, nil
}

// ObjectGetter is the part of the S3 API that [S3Source] needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source serves static resources from an S3 bucket, below an optional key prefix.
type S3Source struct {
	client ObjectGetter
	bucket string
	prefix string
}

// NewS3Source inits a source that reads objects from bucket.
func NewS3Source(client ObjectGetter, bucket, prefix string) *S3Source {
	return &S3Source{client: client, bucket: bucket, prefix: prefix}
}

// Open implements [Source].
func (s *S3Source) Open(ctx context.Context, name string) (*Object, error) {
	key := path.Join(s.prefix, name)

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})

	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return nil, bcapture.NewError(bcapture.CodeNotFound, errors.Wrapf(err, "get s3://%s/%s", s.bucket, key))
	} else if err != nil {
		return nil, errors.Wrapf(err, "get s3://%s/%s", s.bucket, key)
	}

	size := int64(-1)
	if out.ContentLength != nil {
		size = *out.ContentLength
	}

	return &Object{
		ReadCloser:  out.Body,
		Size:        size,
		ContentType: aws.ToString(out.ContentType),
	}, nil
}
