package storage

import (
	"errors"
	"strings"

	"github.com/clawsite/clawsite/internal/pkg/env"
)

// Config holds the R2 bucket configuration
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	BucketName      string
	EndpointURL     string
	PublicURL       string
}

// LoadConfig loads R2 configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AccessKeyID:     env.GetEnv("R2_ACCESS_KEY_ID", ""),
		SecretAccessKey: env.GetEnv("R2_SECRET_ACCESS_KEY", ""),
		Region:          env.GetEnv("R2_REGION", "auto"),
		BucketName:      env.GetEnv("R2_BUCKET_NAME", ""),
		EndpointURL:     env.GetEnv("R2_ENDPOINT_URL", ""),
		PublicURL:       strings.TrimRight(env.GetEnv("R2_PUBLIC_URL", ""), "/"),
	}

	if cfg.AccessKeyID == "" {
		return nil, errors.New("R2_ACCESS_KEY_ID is required")
	}
	if cfg.SecretAccessKey == "" {
		return nil, errors.New("R2_SECRET_ACCESS_KEY is required")
	}
	if cfg.BucketName == "" {
		return nil, errors.New("R2_BUCKET_NAME is required")
	}
	return cfg, nil
}

// ObjectURL returns the public URL of an object key
func (c *Config) ObjectURL(key string) string {
	return c.PublicURL + "/" + strings.TrimLeft(key, "/")
}
