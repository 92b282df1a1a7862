package session

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/storage/redis"

	"github.com/clawsite/clawsite/app/models"
	"github.com/clawsite/clawsite/internal/pkg/cache"
	"github.com/clawsite/clawsite/internal/pkg/env"
	"github.com/clawsite/clawsite/internal/pkg/usercontext"
)

const (
	// Redis logical databases: 0 cache, 1 sessions, 2 OAuth state, 3 rate limits.
	SessionDB    = 1
	OAuthStateDB = 2
	LimiterDB    = 3

	Expiration = 30 * 24 * time.Hour
)

var sessionStore *session.Store

// RedisStorage opens Fiber storage on the cache server's logical database db.
func RedisStorage(db int) *redis.Storage {
	opts := cache.Options(db)
	host, port := "localhost", 6379
	if h, p, err := net.SplitHostPort(opts.Addr); err == nil {
		host = h
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}
	return redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: opts.Password,
		Database: db,
		Reset:    false,
	})
}

func NewSessionStore() *session.Store {
	sessionStore = NewStore(RedisStorage(SessionDB))
	return sessionStore
}

// NewStore builds the cookie session store on storage; nil keeps sessions in memory.
func NewStore(storage fiber.Storage) *session.Store {
	cfg := session.Config{
		CookieHTTPOnly: true,
		CookieSecure:   !env.IsDev(),
		CookieSameSite: "Lax",
		Expiration:     Expiration,
		KeyLookup:      "cookie:" + env.SiteName() + "_session",
	}
	if storage != nil {
		cfg.Storage = storage
	}
	return session.New(cfg)
}

func GetSessionStore() *session.Store {
	return sessionStore
}

// SetStore replaces the process wide store, used by tests.
func SetStore(s *session.Store) {
	sessionStore = s
}

// Login rotates the session id and stores the signed-in user.
func Login(c *fiber.Ctx, user *models.User) error {
	if sessionStore == nil {
		return fmt.Errorf("session store not initialized")
	}
	sess, err := sessionStore.Get(c)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}
	if err := sess.Regenerate(); err != nil {
		return fmt.Errorf("failed to regenerate session: %w", err)
	}
	sess.Set(usercontext.KeyUserID, user.ID)
	sess.Set(usercontext.KeyName, user.Name)
	sess.Set(usercontext.KeyEmail, user.Email)
	sess.Set(usercontext.KeyRole, user.Role)
	return sess.Save()
}

// Logout destroys the current session.
func Logout(c *fiber.Ctx) error {
	if sessionStore == nil {
		return nil
	}
	sess, err := sessionStore.Get(c)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}
	return sess.Destroy()
}
