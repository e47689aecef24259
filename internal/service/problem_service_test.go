package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"practice-tracker/internal/domain"
	"practice-tracker/internal/repository"
)

func validProblemInput() CreateProblemInput {
	return CreateProblemInput{
		Title:      "Two Sum",
		Platform:   "leetcode",
		Difficulty: domain.DifficultyEasy,
		Topic:      "arrays",
		TimeSpent:  15,
		Outcome:    domain.OutcomeSolved,
	}
}

func TestProblemService_CreateForUnknownUser(t *testing.T) {
	users, problems := setupRepos(t)
	svc := NewProblemService(problems, users)

	_, err := svc.CreateProblem(context.Background(), 42, validProblemInput())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProblemService_CreateValidation(t *testing.T) {
	users, problems := setupRepos(t)
	svc := NewProblemService(problems, users)
	ctx := context.Background()
	userID := seedUser(t, users, "owner@example.com")

	cases := map[string]func(*CreateProblemInput){
		"missing title":      func(in *CreateProblemInput) { in.Title = "" },
		"missing platform":   func(in *CreateProblemInput) { in.Platform = "" },
		"bad difficulty":     func(in *CreateProblemInput) { in.Difficulty = "impossible" },
		"bad outcome":        func(in *CreateProblemInput) { in.Outcome = "gave-up" },
		"zero time spent":    func(in *CreateProblemInput) { in.TimeSpent = 0 },
		"negative timeSpent": func(in *CreateProblemInput) { in.TimeSpent = -5 },
	}
	for name, mutate := range cases {
		in := validProblemInput()
		mutate(&in)
		_, err := svc.CreateProblem(ctx, userID, in)
		assert.ErrorIs(t, err, domain.ErrValidation, name)
	}

	count, err := problems.CountByUser(ctx, userID)
	require.NoError(t, err)
	assert.Zero(t, count, "failed validations must not create rows")
}

func TestProblemService_PartialUpdate(t *testing.T) {
	users, problems := setupRepos(t)
	svc := NewProblemService(problems, users)
	ctx := context.Background()
	userID := seedUser(t, users, "editor@example.com")

	created, err := svc.CreateProblem(ctx, userID, validProblemInput())
	require.NoError(t, err)

	newOutcome := domain.OutcomeHints
	newTime := 45
	updated, err := svc.UpdateProblem(ctx, created.ID, UpdateProblemInput{
		Outcome:   &newOutcome,
		TimeSpent: &newTime,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeHints, updated.Outcome)
	assert.Equal(t, 45, updated.TimeSpent)
	// untouched fields survive
	assert.Equal(t, "Two Sum", updated.Title)
	assert.Equal(t, domain.DifficultyEasy, updated.Difficulty)
}

func TestProblemService_UpdateRejectsInvalidEnum(t *testing.T) {
	users, problems := setupRepos(t)
	svc := NewProblemService(problems, users)
	ctx := context.Background()
	userID := seedUser(t, users, "editor2@example.com")

	created, err := svc.CreateProblem(ctx, userID, validProblemInput())
	require.NoError(t, err)

	bad := domain.Difficulty("nightmare")
	_, err = svc.UpdateProblem(ctx, created.ID, UpdateProblemInput{Difficulty: &bad})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestProblemService_DeleteMissing(t *testing.T) {
	users, problems := setupRepos(t)
	svc := NewProblemService(problems, users)

	err := svc.DeleteProblem(context.Background(), 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProblemService_ListFiltersPassThrough(t *testing.T) {
	users, problems := setupRepos(t)
	svc := NewProblemService(problems, users)
	ctx := context.Background()
	userID := seedUser(t, users, "lister@example.com")

	in := validProblemInput()
	_, err := svc.CreateProblem(ctx, userID, in)
	require.NoError(t, err)

	in.Title = "Dijkstra"
	in.Platform = "codeforces"
	in.Difficulty = domain.DifficultyHard
	in.Outcome = domain.OutcomeFailed
	_, err = svc.CreateProblem(ctx, userID, in)
	require.NoError(t, err)

	got, err := svc.ListProblems(ctx, userID, repository.ProblemFilter{Platform: "codeforces"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Dijkstra", got[0].Title)
}
