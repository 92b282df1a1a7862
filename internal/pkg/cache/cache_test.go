package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clawsite/clawsite/internal/pkg/env"
)

func TestKeyUsesSitePrefix(t *testing.T) {
	env.Env = map[string]string{"SITE_NAME": "acme"}
	defer func() { env.Env = nil }()

	assert.Equal(t, "acme:blog:views:blog:hello:en", Key("blog", "views", "blog", "hello", "en"))
}

func TestOptionsReadEnv(t *testing.T) {
	env.Env = map[string]string{"CACHE_HOST": "redis", "CACHE_PORT": "6380", "CACHE_PASSWORD": "pw"}
	defer func() { env.Env = nil }()

	opts := Options(2)
	assert.Equal(t, "redis:6380", opts.Addr)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 2, opts.DB)
}
