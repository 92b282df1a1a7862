package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gofiber/fiber/v2/log"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// objectAPI is the part of the S3 client the store uses.
type objectAPI interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Client talks to the R2 bucket through the S3 API
type Client struct {
	api    objectAPI
	config *Config
}

// NewClient creates a new R2 client
func NewClient(cfg *Config) (*Client, error) {
	awsConfig, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	api := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
			o.UsePathStyle = true
		}
	})

	log.Infof("[Storage] R2 client ready for bucket: %s", cfg.BucketName)
	return &Client{api: api, config: cfg}, nil
}

// File is one object of a listing
type File struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
	Type         string    `json:"type"`
}

type ListInput struct {
	CategoryPrefix    string `json:"categoryPrefix" query:"categoryPrefix"`
	FilterPrefix      string `json:"filterPrefix" query:"filterPrefix"`
	ContinuationToken string `json:"continuationToken" query:"continuationToken"`
	PageSize          int    `json:"pageSize" query:"pageSize"`
}

type ListResult struct {
	Files                 []File `json:"files"`
	NextContinuationToken string `json:"nextContinuationToken,omitempty"`
}

var ErrInvalidPageSize = errors.New("page size must be between 1 and 100")

// List returns one page of objects under CategoryPrefix+FilterPrefix
func (c *Client) List(ctx context.Context, in ListInput) (*ListResult, error) {
	if in.PageSize == 0 {
		in.PageSize = DefaultPageSize
	}
	if in.PageSize < 0 || in.PageSize > MaxPageSize {
		return nil, ErrInvalidPageSize
	}

	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(c.config.BucketName),
		Prefix:  aws.String(in.CategoryPrefix + in.FilterPrefix),
		MaxKeys: aws.Int32(int32(in.PageSize)),
	}
	if in.ContinuationToken != "" {
		input.ContinuationToken = aws.String(in.ContinuationToken)
	}

	out, err := c.api.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	res := &ListResult{Files: make([]File, 0, len(out.Contents))}
	for _, obj := range out.Contents {
		key := aws.ToString(obj.Key)
		if key == "" {
			key = "unknown-key"
		}
		res.Files = append(res.Files, File{
			Key:          key,
			Size:         aws.ToInt64(obj.Size),
			LastModified: aws.ToTime(obj.LastModified),
			Type:         fileType(key),
		})
	}
	res.NextContinuationToken = aws.ToString(out.NextContinuationToken)
	return res, nil
}

// Delete removes one object
func (c *Client) Delete(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("file key cannot be empty")
	}
	_, err := c.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.config.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	log.Infof("[Storage] deleted %s", key)
	return nil
}

// Upload stores body under key and returns its public URL
func (c *Client) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	_, err := c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.config.BucketName),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return c.config.ObjectURL(key), nil
}

func fileType(key string) string {
	ext := strings.TrimPrefix(path.Ext(key), ".")
	if ext == "" {
		return "unknown-type"
	}
	return ext
}
