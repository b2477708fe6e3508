package mocks

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/mock"
)

// MockImageStore is a mock implementation of the recipe image store
type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) Save(ctx context.Context, dataURL string) (string, error) {
	args := m.Called(ctx, dataURL)
	return args.String(0), args.Error(1)
}

// MockS3Client mocks the PutObject call of the S3 client
type MockS3Client struct {
	mock.Mock
}

func (m *MockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.PutObjectOutput), args.Error(1)
}
