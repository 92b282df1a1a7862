// Package users implements the admin user list, bans and the subscriber flag.
package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/clawsite/clawsite/app/models"
	"github.com/clawsite/clawsite/app/repository"
	"github.com/clawsite/clawsite/internal/pkg/action"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// CreditChecker reports whether a user still receives subscription credits.
type CreditChecker interface {
	HasSubscriptionCredits(ctx context.Context, userID string) (bool, error)
}

type Service struct {
	repo    repository.UserRepository
	credits CreditChecker
	now     func() time.Time
}

func NewService(repo repository.UserRepository, credits CreditChecker) *Service {
	return &Service{repo: repo, credits: credits, now: time.Now}
}

// Page is one page of the admin user list.
type Page struct {
	Users     []repository.UserWithSource `json:"users"`
	Total     int64                       `json:"total"`
	PageIndex int                         `json:"pageIndex"`
	PageSize  int                         `json:"pageSize"`
}

// ListUsers loads the page and the total count in parallel.
func (s *Service) ListUsers(ctx context.Context, pageIndex, pageSize int, filter repository.UserFilter) action.Result[Page] {
	if pageIndex < 0 {
		pageIndex = 0
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	filter.Query = strings.TrimSpace(filter.Query)

	page := Page{PageIndex: pageIndex, PageSize: pageSize}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		page.Total, err = s.repo.Count(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		page.Users, err = s.repo.ListWithSource(gctx, filter, pageIndex*pageSize, pageSize)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Errorf("[Users] list failed: %v", err)
		return action.Internal[Page]()
	}
	return action.OK(page)
}

func (s *Service) GetUser(ctx context.Context, id string) action.Result[*models.User] {
	user, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return action.NotFound[*models.User]("User not found.")
	}
	if err != nil {
		log.Errorf("[Users] get %s failed: %v", id, err)
		return action.Internal[*models.User]()
	}
	return action.OK(user)
}

// BanUser bans a user indefinitely. Admins cannot be banned.
func (s *Service) BanUser(ctx context.Context, id, reason string) action.Result[*models.User] {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return action.BadRequest[*models.User]("A ban reason is required.")
	}
	got := s.GetUser(ctx, id)
	if !got.OK() {
		return got
	}
	if got.Data.IsAdmin() {
		return action.BadRequest[*models.User]("Admins cannot be banned.")
	}
	if err := s.repo.SetBan(ctx, id, true, reason, nil); err != nil {
		log.Errorf("[Users] ban %s failed: %v", id, err)
		return action.Internal[*models.User]()
	}
	log.Infof("[Users] banned %s: %s", id, reason)
	return s.GetUser(ctx, id)
}

func (s *Service) UnbanUser(ctx context.Context, id string) action.Result[*models.User] {
	err := s.repo.SetBan(ctx, id, false, "", nil)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return action.NotFound[*models.User]("User not found.")
	}
	if err != nil {
		log.Errorf("[Users] unban %s failed: %v", id, err)
		return action.Internal[*models.User]()
	}
	log.Infof("[Users] unbanned %s", id)
	return s.GetUser(ctx, id)
}

// IsSubscriber is true for an active or trialing subscription, or for a
// positive subscription balance that is still being allocated. Lookup
// failures count as not subscribed.
func (s *Service) IsSubscriber(ctx context.Context, userID string) bool {
	if userID == "" {
		return false
	}
	active, err := s.repo.HasActiveSubscription(ctx, userID)
	if err != nil {
		log.Warnf("[Users] subscription lookup for %s failed: %v", userID, err)
	}
	if active {
		return true
	}
	if s.credits == nil {
		return false
	}
	ok, err := s.credits.HasSubscriptionCredits(ctx, userID)
	if err != nil {
		log.Warnf("[Users] credit lookup for %s failed: %v", userID, err)
		return false
	}
	return ok
}
