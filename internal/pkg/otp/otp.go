// Package otp issues and checks six digit email login codes.
package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/clawsite/clawsite/app/models"
	"github.com/clawsite/clawsite/app/repository"
)

const (
	CodeLength  = 6
	TTL         = 10 * time.Minute
	MaxAttempts = 5
)

var (
	ErrInvalidCode     = errors.New("invalid code")
	ErrExpired         = errors.New("code expired")
	ErrTooManyAttempts = errors.New("too many attempts")
)

type Service struct {
	repo    repository.VerificationRepository
	now     func() time.Time
	cost    int
	compare func(hash, code []byte) error
}

func NewService(repo repository.VerificationRepository) *Service {
	return &Service{
		repo:    repo,
		now:     time.Now,
		cost:    bcrypt.DefaultCost,
		compare: bcrypt.CompareHashAndPassword,
	}
}

// Issue replaces any pending code for email and returns the new plain code.
func (s *Service) Issue(ctx context.Context, email string) (string, error) {
	email = normalize(email)
	if email == "" {
		return "", errors.New("email is required")
	}
	code, err := generate()
	if err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash code: %w", err)
	}
	v := &models.Verification{
		Identifier: email,
		ValueHash:  string(hash),
		ExpiresAt:  s.now().Add(TTL),
	}
	if err := s.repo.Replace(ctx, v); err != nil {
		return "", err
	}
	return code, nil
}

// Verify consumes the pending code for email. Every guess claims one of the
// MaxAttempts slots before the hash is compared; the code is dropped once the
// slots are used up or it matches.
func (s *Service) Verify(ctx context.Context, email, code string) error {
	email = normalize(email)
	v, err := s.repo.GetLatest(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrInvalidCode
	}
	if err != nil {
		return err
	}

	if v.Expired(s.now()) {
		s.drop(ctx, email)
		return ErrExpired
	}
	claimed, err := s.repo.ClaimAttempt(ctx, v.ID, MaxAttempts)
	if err != nil {
		return fmt.Errorf("claim attempt: %w", err)
	}
	if !claimed {
		log.Warnf("[OTP] attempt limit reached for %s", email)
		s.drop(ctx, email)
		return ErrTooManyAttempts
	}
	if s.compare([]byte(v.ValueHash), []byte(strings.TrimSpace(code))) != nil {
		return ErrInvalidCode
	}
	s.drop(ctx, email)
	return nil
}

// DeleteExpired removes codes that expired before now.
func (s *Service) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return s.repo.DeleteExpired(ctx, now)
}

func (s *Service) drop(ctx context.Context, email string) {
	if err := s.repo.DeleteByIdentifier(ctx, email); err != nil {
		log.Warnf("[OTP] cleanup for %s failed: %v", email, err)
	}
}

func generate() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < CodeLength; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%0*d", CodeLength, n.Int64()), nil
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
