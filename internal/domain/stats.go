package domain

// Stats aggregates one user's practice history. TotalTimeSpent is minutes;
// SolveRate is a percentage rounded to two decimal places, 0 when the user
// has no problems.
type Stats struct {
	TotalProblems       int
	SolvedProblems      int
	TotalTimeSpent      int
	SolveRate           float64
	DifficultyBreakdown map[Difficulty]int
	PlatformBreakdown   map[string]int
}
