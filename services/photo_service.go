package services

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// PhotoStore keeps the uploaded meal photo next to the logged meal.
type PhotoStore interface {
	Upload(ctx context.Context, userID uint, imageBase64 string) (string, error)
}

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3PhotoStore struct {
	client    objectPutter
	bucket    string
	publicURL string
}

func NewS3PhotoStore(cfg aws.Config, bucket, publicURL string) *S3PhotoStore {
	return &S3PhotoStore{client: s3.NewFromConfig(cfg), bucket: bucket, publicURL: strings.TrimRight(publicURL, "/")}
}

func (p *S3PhotoStore) Upload(ctx context.Context, userID uint, imageBase64 string) (string, error) {
	data, err := DecodeImage(imageBase64)
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}
	contentType := http.DetectContentType(data)
	ext := ".bin"
	switch contentType {
	case "image/jpeg":
		ext = ".jpg"
	default:
		if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
			ext = exts[0]
		}
	}

	key := fmt.Sprintf("meal-photos/%d/%s%s", userID, uuid.NewString(), ext)
	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return fmt.Sprintf("%s/%s", p.publicURL, key), nil
}
