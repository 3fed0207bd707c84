// services/spaces.go
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const downloadURLTTL = 15 * time.Minute

// SpacesService signs short-lived download URLs for objects the platform
// stores in DigitalOcean Spaces. Uploads are the media pipeline's job, not
// ours.
type SpacesService struct {
	client    *s3.Client
	presign   *s3.PresignClient
	bucket    string
	region    string
	EbookRoot string
}

func NewSpacesService(spacesKey, spacesSecret, region, bucket, ebookRoot string) *SpacesService {
	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.digitaloceanspaces.com", region),
		}, nil
	})

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithEndpointResolverWithOptions(resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(spacesKey, spacesSecret, "")),
		config.WithRegion(region),
	)
	if err != nil {
		panic(fmt.Sprintf("Unable to load Spaces config: %v", err))
	}

	client := s3.NewFromConfig(cfg)

	return &SpacesService{
		client:    client,
		presign:   s3.NewPresignClient(client),
		bucket:    bucket,
		region:    region,
		EbookRoot: strings.TrimPrefix(ebookRoot, "/"),
	}
}

// EbookDownloadURL returns a presigned GET URL for an ebook file key.
func (s *SpacesService) EbookDownloadURL(ctx context.Context, fileKey string) (string, error) {
	key := fileKey
	if s.EbookRoot != "" {
		key = fmt.Sprintf("%s/%s", s.EbookRoot, strings.TrimPrefix(fileKey, "/"))
	}

	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(downloadURLTTL))
	if err != nil {
		return "", fmt.Errorf("failed to presign download for %s: %w", key, err)
	}

	return req.URL, nil
}
