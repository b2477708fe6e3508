package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const recipeImagePrefix = "recipes/images"

// ImageStore persists a recipe image sent as a base64 data URL and returns
// the URL it can be fetched from.
type ImageStore interface {
	Save(ctx context.Context, dataURL string) (string, error)
}

// DecodedImage is the payload of a data URL
type DecodedImage struct {
	Data        []byte
	ContentType string
	Ext         string
}

// DecodeDataURL parses "data:<mime>;base64,<data>".
func DecodeDataURL(dataURL string) (*DecodedImage, error) {
	meta, data, ok := strings.Cut(dataURL, ",")
	if !ok || !strings.HasPrefix(meta, "data:") || !strings.HasSuffix(meta, ";base64") {
		return nil, ErrInvalidImage
	}

	contentType := strings.TrimSuffix(strings.TrimPrefix(meta, "data:"), ";base64")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, ErrInvalidImage
	}

	var ext string
	switch contentType {
	case "image/jpeg", "image/jpg":
		ext = ".jpg"
	default:
		if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
			ext = exts[0]
		} else {
			ext = "." + strings.TrimPrefix(contentType, "image/")
		}
	}

	imageData, err := base64.StdEncoding.DecodeString(data)
	if err != nil || len(imageData) == 0 {
		return nil, ErrInvalidImage
	}

	return &DecodedImage{Data: imageData, ContentType: contentType, Ext: ext}, nil
}

// S3PutObjectAPI is the subset of the S3 client used for uploads
type S3PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3ImageStore uploads images to an S3 bucket
type S3ImageStore struct {
	client    S3PutObjectAPI
	bucket    string
	publicURL string
}

// NewS3ImageStore creates a store uploading to bucket. An empty publicURL
// serves objects from the bucket's default S3 endpoint.
func NewS3ImageStore(client S3PutObjectAPI, bucket, publicURL string) *S3ImageStore {
	return &S3ImageStore{
		client:    client,
		bucket:    bucket,
		publicURL: publicURL,
	}
}

func (s *S3ImageStore) Save(ctx context.Context, dataURL string) (string, error) {
	img, err := DecodeDataURL(dataURL)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s/%s%s", recipeImagePrefix, uuid.New().String(), img.Ext)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(img.Data),
		ContentType: aws.String(img.ContentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	publicURL := fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, key)
	if s.publicURL != "" {
		publicURL = strings.TrimSuffix(s.publicURL, "/") + "/" + key
	}
	log.Debug().Str("url", publicURL).Msg("uploaded recipe image to S3")
	return publicURL, nil
}

// LocalImageStore writes images below a media root served by the API
type LocalImageStore struct {
	root    string
	baseURL string
}

func NewLocalImageStore(root, baseURL string) *LocalImageStore {
	return &LocalImageStore{root: root, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (s *LocalImageStore) Save(ctx context.Context, dataURL string) (string, error) {
	img, err := DecodeDataURL(dataURL)
	if err != nil {
		return "", err
	}

	name := uuid.New().String() + img.Ext
	dir := filepath.Join(s.root, filepath.FromSlash(recipeImagePrefix))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), img.Data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}

	return s.baseURL + "/" + path.Join(recipeImagePrefix, name), nil
}
