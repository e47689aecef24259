package repository

import (
	"context"

	"practice-tracker/internal/domain"
)

// ProblemFilter narrows ListByUser results. Zero values mean no filtering;
// Topic matches as a substring.
type ProblemFilter struct {
	Difficulty domain.Difficulty
	Platform   string
	Outcome    domain.Outcome
	Topic      string
}

// ProblemRepository exposes persistence and aggregate operations for Problem
// entities.
type ProblemRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, problem *domain.Problem) (int64, error)
	Update(ctx context.Context, problem *domain.Problem) error
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*domain.Problem, error)
	ListByUser(ctx context.Context, userID int64, filter ProblemFilter) ([]domain.Problem, error)
	CountByUser(ctx context.Context, userID int64) (int, error)
	CountByUserAndOutcome(ctx context.Context, userID int64, outcome domain.Outcome) (int, error)
	SumTimeSpentByUser(ctx context.Context, userID int64) (int, error)
	CountByUserGroupedByDifficulty(ctx context.Context, userID int64) (map[domain.Difficulty]int, error)
	CountByUserGroupedByPlatform(ctx context.Context, userID int64) (map[string]int, error)
	Reset(ctx context.Context) error
}
