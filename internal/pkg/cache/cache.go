package cache

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"

	"github.com/clawsite/clawsite/internal/pkg/env"
)

var client *redis.Client

// SetupCache initializes the connection to the Redis server
func SetupCache() {
	client = redis.NewClient(Options(0))

	pong, err := client.Ping(context.Background()).Result()
	if err != nil {
		log.Warnf("[Cache] could not connect to redis: %v", err)
	} else {
		log.Infof("[Cache] connected to redis: %s", pong)
	}
}

// Options returns connection options for the given logical database.
func Options(db int) *redis.Options {
	return &redis.Options{
		Addr:     fmt.Sprintf("%s:%s", env.GetEnv("CACHE_HOST", "localhost"), env.GetEnv("CACHE_PORT", "6379")),
		Password: env.GetEnv("CACHE_PASSWORD", ""),
		DB:       db,
	}
}

// GetClient returns the Redis client instance
func GetClient() *redis.Client {
	if client == nil {
		SetupCache()
	}
	return client
}

// Key joins parts under the site prefix, e.g. Key("blog", "views") -> "clawsite:blog:views".
func Key(parts ...string) string {
	return env.SiteName() + ":" + strings.Join(parts, ":")
}

// IsMiss reports whether err only signals a missing key.
func IsMiss(err error) bool {
	return err == redis.Nil
}
