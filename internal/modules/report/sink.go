package report

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/aristath/shiftplan/internal/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// Artifact is one rendered report
type Artifact struct {
	Name        string // file name, no directory
	ContentType string
	Body        []byte
}

// Sink stores artifacts somewhere and returns where they ended up
type Sink interface {
	Publish(ctx context.Context, a Artifact) (string, error)
}

// ArtifactName names a report file after the period and run
func ArtifactName(doc *Document, ext string) string {
	run := doc.RunID
	if len(run) > 8 {
		run = run[:8]
	}
	if doc.Period.Year == 0 {
		return fmt.Sprintf("schedule-%s.%s", run, ext)
	}
	return fmt.Sprintf("schedule-%s-%s.%s", doc.Period, run, ext)
}

// Render produces one artifact per renderer
func Render(doc *Document, renderers ...Renderer) ([]Artifact, error) {
	artifacts := make([]Artifact, 0, len(renderers))
	for _, r := range renderers {
		var buf bytes.Buffer
		if err := r.Render(&buf, doc); err != nil {
			return nil, fmt.Errorf("failed to render %s report: %w", r.Extension(), err)
		}
		artifacts = append(artifacts, Artifact{
			Name:        ArtifactName(doc, r.Extension()),
			ContentType: r.ContentType(),
			Body:        buf.Bytes(),
		})
	}
	return artifacts, nil
}

// FileSink writes artifacts into a local directory
type FileSink struct {
	dir string
	log zerolog.Logger
}

// NewFileSink creates a sink writing into dir, which is created on first publish
func NewFileSink(dir string, log zerolog.Logger) *FileSink {
	return &FileSink{
		dir: dir,
		log: log.With().Str("component", "file_sink").Logger(),
	}
}

// Publish writes the artifact through a temporary file so readers never see a partial report
func (s *FileSink) Publish(ctx context.Context, a Artifact) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	target := filepath.Join(s.dir, a.Name)
	tmp, err := os.CreateTemp(s.dir, "."+a.Name+".*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(a.Body); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close report: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("failed to move report into place: %w", err)
	}

	s.log.Info().Str("path", target).Int("bytes", len(a.Body)).Msg("Report written")
	return target, nil
}

// S3Sink uploads artifacts to an S3-compatible bucket (AWS, R2, MinIO)
type S3Sink struct {
	uploader *manager.Uploader
	bucket   string
	prefix   string
	log      zerolog.Logger
}

// NewS3Sink builds an S3 client from the configuration. Static credentials are used
// when both keys are set, the default credential chain otherwise.
func NewS3Sink(ctx context.Context, cfg config.S3Config, log zerolog.Logger) (*S3Sink, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 configuration: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Sink(client, cfg.Bucket, cfg.Prefix, log), nil
}

func newS3Sink(client manager.UploadAPIClient, bucket, prefix string, log zerolog.Logger) *S3Sink {
	return &S3Sink{
		uploader: manager.NewUploader(client),
		bucket:   bucket,
		prefix:   prefix,
		log:      log.With().Str("component", "s3_sink").Str("bucket", bucket).Logger(),
	}
}

// Publish uploads the artifact under the configured prefix
func (s *S3Sink) Publish(ctx context.Context, a Artifact) (string, error) {
	key := path.Join(s.prefix, a.Name)

	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(a.Body),
		ContentType: aws.String(a.ContentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	location := fmt.Sprintf("s3://%s/%s", s.bucket, key)
	s.log.Info().Str("key", key).Int("bytes", len(a.Body)).Msg("Report uploaded")
	return location, nil
}

// Publish sends every artifact to every sink and returns the locations written
func Publish(ctx context.Context, artifacts []Artifact, sinks ...Sink) ([]string, error) {
	var locations []string
	for _, a := range artifacts {
		for _, sink := range sinks {
			loc, err := sink.Publish(ctx, a)
			if err != nil {
				return locations, err
			}
			locations = append(locations, loc)
		}
	}
	return locations, nil
}
