package service

import (
	"context"
	"fmt"
	"time"

	"practice-tracker/internal/domain"
	"practice-tracker/internal/repository"
)

// CreateProblemInput carries a new problem's fields. Date defaults to now
// when zero.
type CreateProblemInput struct {
	Title      string
	Platform   string
	Difficulty domain.Difficulty
	Topic      string
	TimeSpent  int
	Outcome    domain.Outcome
	Date       time.Time
	Link       string
	Tags       string
	Notes      string
	IsRevision bool
}

// UpdateProblemInput applies a partial update; nil fields are left untouched.
type UpdateProblemInput struct {
	Title      *string
	Platform   *string
	Difficulty *domain.Difficulty
	Topic      *string
	TimeSpent  *int
	Outcome    *domain.Outcome
	Date       *time.Time
	Link       *string
	Tags       *string
	Notes      *string
	IsRevision *bool
}

// ProblemService coordinates problem CRUD backed by the repositories.
type ProblemService interface {
	CreateProblem(ctx context.Context, userID int64, input CreateProblemInput) (*domain.Problem, error)
	GetProblem(ctx context.Context, id int64) (*domain.Problem, error)
	UpdateProblem(ctx context.Context, id int64, input UpdateProblemInput) (*domain.Problem, error)
	DeleteProblem(ctx context.Context, id int64) error
	ListProblems(ctx context.Context, userID int64, filter repository.ProblemFilter) ([]domain.Problem, error)
}

type problemService struct {
	problems repository.ProblemRepository
	users    repository.UserRepository
}

func NewProblemService(problems repository.ProblemRepository, users repository.UserRepository) ProblemService {
	return &problemService{
		problems: problems,
		users:    users,
	}
}

func (s *problemService) CreateProblem(ctx context.Context, userID int64, input CreateProblemInput) (*domain.Problem, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	if err := validateProblemFields(input.Title, input.Platform, input.Difficulty, input.Outcome, input.TimeSpent); err != nil {
		return nil, err
	}

	problem := &domain.Problem{
		UserID:     userID,
		Title:      input.Title,
		Platform:   input.Platform,
		Difficulty: input.Difficulty,
		Topic:      input.Topic,
		TimeSpent:  input.TimeSpent,
		Outcome:    input.Outcome,
		Date:       input.Date,
		Link:       input.Link,
		Tags:       input.Tags,
		Notes:      input.Notes,
		IsRevision: input.IsRevision,
	}

	if _, err := s.problems.Create(ctx, problem); err != nil {
		return nil, err
	}
	return problem, nil
}

func (s *problemService) GetProblem(ctx context.Context, id int64) (*domain.Problem, error) {
	return s.problems.Get(ctx, id)
}

func (s *problemService) UpdateProblem(ctx context.Context, id int64, input UpdateProblemInput) (*domain.Problem, error) {
	problem, err := s.problems.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		problem.Title = *input.Title
	}
	if input.Platform != nil {
		problem.Platform = *input.Platform
	}
	if input.Difficulty != nil {
		problem.Difficulty = *input.Difficulty
	}
	if input.Topic != nil {
		problem.Topic = *input.Topic
	}
	if input.TimeSpent != nil {
		problem.TimeSpent = *input.TimeSpent
	}
	if input.Outcome != nil {
		problem.Outcome = *input.Outcome
	}
	if input.Date != nil {
		problem.Date = *input.Date
	}
	if input.Link != nil {
		problem.Link = *input.Link
	}
	if input.Tags != nil {
		problem.Tags = *input.Tags
	}
	if input.Notes != nil {
		problem.Notes = *input.Notes
	}
	if input.IsRevision != nil {
		problem.IsRevision = *input.IsRevision
	}

	if err := validateProblemFields(problem.Title, problem.Platform, problem.Difficulty, problem.Outcome, problem.TimeSpent); err != nil {
		return nil, err
	}

	if err := s.problems.Update(ctx, problem); err != nil {
		return nil, err
	}
	return problem, nil
}

func (s *problemService) DeleteProblem(ctx context.Context, id int64) error {
	return s.problems.Delete(ctx, id)
}

func (s *problemService) ListProblems(ctx context.Context, userID int64, filter repository.ProblemFilter) ([]domain.Problem, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.problems.ListByUser(ctx, userID, filter)
}

func validateProblemFields(title, platform string, difficulty domain.Difficulty, outcome domain.Outcome, timeSpent int) error {
	if title == "" {
		return fmt.Errorf("title is required: %w", domain.ErrValidation)
	}
	if platform == "" {
		return fmt.Errorf("platform is required: %w", domain.ErrValidation)
	}
	if !difficulty.Valid() {
		return fmt.Errorf("difficulty must be easy, medium or hard: %w", domain.ErrValidation)
	}
	if !outcome.Valid() {
		return fmt.Errorf("outcome must be solved, hints or failed: %w", domain.ErrValidation)
	}
	if timeSpent <= 0 {
		return fmt.Errorf("time spent must be a positive number of minutes: %w", domain.ErrValidation)
	}
	return nil
}
