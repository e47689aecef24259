package service

import (
	"context"
	"math"

	"practice-tracker/internal/domain"
	"practice-tracker/internal/repository"
)

// StatsService computes per-user aggregate statistics. Pure read-and-reduce;
// consistency is whatever the store gives a batch of single-statement reads.
type StatsService interface {
	ComputeStats(ctx context.Context, userID int64) (*domain.Stats, error)
}

type statsService struct {
	problems repository.ProblemRepository
}

func NewStatsService(problems repository.ProblemRepository) StatsService {
	return &statsService{problems: problems}
}

func (s *statsService) ComputeStats(ctx context.Context, userID int64) (*domain.Stats, error) {
	total, err := s.problems.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	solved, err := s.problems.CountByUserAndOutcome(ctx, userID, domain.OutcomeSolved)
	if err != nil {
		return nil, err
	}
	timeSpent, err := s.problems.SumTimeSpentByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	byDifficulty, err := s.problems.CountByUserGroupedByDifficulty(ctx, userID)
	if err != nil {
		return nil, err
	}
	byPlatform, err := s.problems.CountByUserGroupedByPlatform(ctx, userID)
	if err != nil {
		return nil, err
	}

	var solveRate float64
	if total > 0 {
		solveRate = math.Round(float64(solved)/float64(total)*100*100) / 100
	}

	return &domain.Stats{
		TotalProblems:       total,
		SolvedProblems:      solved,
		TotalTimeSpent:      timeSpent,
		SolveRate:           solveRate,
		DifficultyBreakdown: byDifficulty,
		PlatformBreakdown:   byPlatform,
	}, nil
}
