package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/clawsite/clawsite/app/models"
)

// ProviderEmail marks a login through an emailed one-time code.
const ProviderEmail = "email"

var ErrBanned = errors.New("user is banned")

// Identity is what a login method knows about the person signing in.
type Identity struct {
	Provider       string
	ProviderUserID string
	Email          string
	Name           string
	Image          string
	AccessToken    string
	RefreshToken   string
	ExpiresAt      *time.Time
}

// SignIn finds or creates the user behind id. OAuth identities are matched by
// provider account first and by email second, then linked. source is stored
// only for newly created users.
func (s *Service) SignIn(ctx context.Context, id Identity, source *models.UserSource) (*models.User, error) {
	id.Email = strings.ToLower(strings.TrimSpace(id.Email))
	if id.Email == "" {
		return nil, fmt.Errorf("%s login without email", id.Provider)
	}

	user, err := s.resolve(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user, err = s.create(ctx, id, source)
	}
	if err != nil {
		return nil, err
	}
	if user.IsBanned(s.now()) {
		return user, ErrBanned
	}

	if id.Provider != ProviderEmail && id.ProviderUserID != "" {
		if err := s.link(ctx, user.ID, id); err != nil {
			log.Warnf("[Users] linking %s account for %s failed: %v", id.Provider, user.ID, err)
		}
	}
	if !user.EmailVerified {
		user.EmailVerified = true
		if err := s.repo.Update(ctx, user); err != nil {
			log.Warnf("[Users] marking %s verified failed: %v", user.ID, err)
		}
	}
	if err := s.repo.UpdateLastLogin(ctx, user.ID, s.now()); err != nil {
		log.Warnf("[Users] last login for %s not recorded: %v", user.ID, err)
	}
	return user, nil
}

func (s *Service) resolve(ctx context.Context, id Identity) (*models.User, error) {
	if id.Provider != ProviderEmail && id.ProviderUserID != "" {
		acc, err := s.repo.GetProviderAccount(ctx, id.Provider, id.ProviderUserID)
		if err == nil {
			return s.repo.GetByID(ctx, acc.UserID)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return s.repo.GetByEmail(ctx, id.Email)
}

func (s *Service) create(ctx context.Context, id Identity, source *models.UserSource) (*models.User, error) {
	name := strings.TrimSpace(id.Name)
	if name == "" {
		name = strings.SplitN(id.Email, "@", 2)[0]
	}
	image := id.Image
	if image == "" {
		image = gravatarURL(id.Email)
	}
	user := &models.User{
		Name:          name,
		Email:         id.Email,
		Image:         image,
		EmailVerified: true,
		Role:          models.ROLE_USER,
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	log.Infof("[Users] created %s via %s", user.ID, id.Provider)

	if source != nil {
		source.UserID = user.ID
		if err := s.repo.CreateSourceOnce(ctx, source); err != nil {
			log.Warnf("[Users] signup source for %s not stored: %v", user.ID, err)
		}
	}
	return user, nil
}

func (s *Service) link(ctx context.Context, userID string, id Identity) error {
	acc, err := s.repo.GetProviderAccount(ctx, id.Provider, id.ProviderUserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		acc = &models.ProviderAccount{Provider: id.Provider, ProviderUserID: id.ProviderUserID}
	} else if err != nil {
		return err
	}
	acc.UserID = userID
	acc.AccessToken = id.AccessToken
	acc.RefreshToken = id.RefreshToken
	acc.ExpiresAt = id.ExpiresAt
	return s.repo.SaveProviderAccount(ctx, acc)
}
