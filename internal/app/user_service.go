package app

import (
	"context"

	"github.com/vahe2002pog/tg-queue/internal/domain"
)

// UserRepository is the persistence contract for the display-name registry.
type UserRepository interface {
	UpsertUser(ctx context.Context, u domain.User) error
	GetUser(ctx context.Context, userID int64) (*domain.User, error)
}

// UserService keeps the display names shown in queue listings.
type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

// Register stores or replaces the member's display name.
func (s *UserService) Register(ctx context.Context, userID int64, name string) (domain.User, error) {
	if name == "" {
		return domain.User{}, domain.ErrUserNameRequired
	}
	user := domain.User{ID: userID, Name: name}
	if err := s.repo.UpsertUser(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, userID int64) (domain.User, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}
	if user == nil {
		return domain.User{}, domain.ErrUserNotFound
	}
	return *user, nil
}
