package service

import (
	"context"

	"practice-tracker/internal/domain"
	"practice-tracker/internal/repository"
)

// UserService covers account lookup and the admin delete path. Deleting a
// user cascades to the user's problems at the store level.
type UserService interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

type userService struct {
	users    repository.UserRepository
	problems repository.ProblemRepository
}

func NewUserService(users repository.UserRepository, problems repository.ProblemRepository) UserService {
	return &userService{
		users:    users,
		problems: problems,
	}
}

func (s *userService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	sanitized := make([]domain.User, 0, len(users))
	for i := range users {
		problems, err := s.problems.ListByUser(ctx, users[i].ID, repository.ProblemFilter{})
		if err != nil {
			return nil, err
		}
		users[i].Problems = problems
		sanitized = append(sanitized, *sanitizeUser(&users[i]))
	}
	return sanitized, nil
}

func (s *userService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	problems, err := s.problems.ListByUser(ctx, id, repository.ProblemFilter{})
	if err != nil {
		return nil, err
	}
	user.Problems = problems
	return sanitizeUser(user), nil
}

func (s *userService) DeleteUser(ctx context.Context, id int64) error {
	return s.users.Delete(ctx, id)
}
