package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"practice-tracker/internal/domain"
	"practice-tracker/internal/repository"
)

const createProblemsTable = `
CREATE TABLE IF NOT EXISTS problems (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	title TEXT NOT NULL,
	platform TEXT NOT NULL,
	difficulty TEXT NOT NULL,
	topic TEXT NOT NULL DEFAULT '',
	time_spent INTEGER NOT NULL,
	outcome TEXT NOT NULL,
	date DATETIME NOT NULL,
	link TEXT NOT NULL DEFAULT '',
	tags TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT '',
	is_revision INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_problems_user_id ON problems(user_id);
`

const problemColumns = `id, user_id, title, platform, difficulty, topic, time_spent, outcome, date, link, tags, notes, is_revision, created_at, updated_at`

type ProblemRepository struct {
	db *sql.DB
}

func NewProblemRepository(db *sql.DB) repository.ProblemRepository {
	return &ProblemRepository{db: db}
}

func (r *ProblemRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createProblemsTable); err != nil {
		return fmt.Errorf("create problems table: %w", err)
	}
	return nil
}

func (r *ProblemRepository) Create(ctx context.Context, problem *domain.Problem) (int64, error) {
	now := time.Now().UTC()
	problem.CreatedAt = now
	problem.UpdatedAt = now
	if problem.Date.IsZero() {
		problem.Date = now
	}

	res, err := r.db.ExecContext(ctx, `
INSERT INTO problems (user_id, title, platform, difficulty, topic, time_spent, outcome, date, link, tags, notes, is_revision, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		problem.UserID,
		problem.Title,
		problem.Platform,
		string(problem.Difficulty),
		problem.Topic,
		problem.TimeSpent,
		string(problem.Outcome),
		problem.Date.UTC(),
		problem.Link,
		problem.Tags,
		problem.Notes,
		problem.IsRevision,
		problem.CreatedAt,
		problem.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert problem: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("problem last insert id: %w", err)
	}
	problem.ID = id
	return id, nil
}

func (r *ProblemRepository) Update(ctx context.Context, problem *domain.Problem) error {
	problem.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
UPDATE problems
SET title=?, platform=?, difficulty=?, topic=?, time_spent=?, outcome=?, date=?, link=?, tags=?, notes=?, is_revision=?, updated_at=?
WHERE id=?`,
		problem.Title,
		problem.Platform,
		string(problem.Difficulty),
		problem.Topic,
		problem.TimeSpent,
		string(problem.Outcome),
		problem.Date.UTC(),
		problem.Link,
		problem.Tags,
		problem.Notes,
		problem.IsRevision,
		problem.UpdatedAt,
		problem.ID,
	)
	if err != nil {
		return fmt.Errorf("update problem: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update problem rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("problem %d: %w", problem.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *ProblemRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM problems WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete problem: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete problem rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("problem %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *ProblemRepository) Get(ctx context.Context, id int64) (*domain.Problem, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+problemColumns+`
FROM problems
WHERE id = ?`,
		id,
	)
	return scanProblem(row)
}

func (r *ProblemRepository) ListByUser(ctx context.Context, userID int64, filter repository.ProblemFilter) ([]domain.Problem, error) {
	query := `
SELECT ` + problemColumns + `
FROM problems
WHERE user_id = ?`
	args := []any{userID}

	if filter.Difficulty != "" {
		query += ` AND difficulty = ?`
		args = append(args, string(filter.Difficulty))
	}
	if filter.Platform != "" {
		query += ` AND platform = ?`
		args = append(args, filter.Platform)
	}
	if filter.Outcome != "" {
		query += ` AND outcome = ?`
		args = append(args, string(filter.Outcome))
	}
	if filter.Topic != "" {
		query += ` AND topic LIKE '%' || ? || '%'`
		args = append(args, filter.Topic)
	}
	query += ` ORDER BY date DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list problems: %w", err)
	}
	defer rows.Close()

	var problems []domain.Problem
	for rows.Next() {
		problem, err := scanProblem(rows)
		if err != nil {
			return nil, err
		}
		problems = append(problems, *problem)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate problems: %w", err)
	}
	return problems, nil
}

func (r *ProblemRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM problems WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count problems: %w", err)
	}
	return count, nil
}

func (r *ProblemRepository) CountByUserAndOutcome(ctx context.Context, userID int64, outcome domain.Outcome) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM problems WHERE user_id = ? AND outcome = ?`, userID, string(outcome)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count problems by outcome: %w", err)
	}
	return count, nil
}

func (r *ProblemRepository) SumTimeSpentByUser(ctx context.Context, userID int64) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(time_spent), 0) FROM problems WHERE user_id = ?`, userID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum time spent: %w", err)
	}
	return total, nil
}

func (r *ProblemRepository) CountByUserGroupedByDifficulty(ctx context.Context, userID int64) (map[domain.Difficulty]int, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT difficulty, COUNT(*)
FROM problems
WHERE user_id = ?
GROUP BY difficulty`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("group problems by difficulty: %w", err)
	}
	defer rows.Close()

	breakdown := make(map[domain.Difficulty]int)
	for rows.Next() {
		var difficulty string
		var count int
		if err := rows.Scan(&difficulty, &count); err != nil {
			return nil, fmt.Errorf("scan difficulty group: %w", err)
		}
		breakdown[domain.Difficulty(difficulty)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate difficulty groups: %w", err)
	}
	return breakdown, nil
}

func (r *ProblemRepository) CountByUserGroupedByPlatform(ctx context.Context, userID int64) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT platform, COUNT(*)
FROM problems
WHERE user_id = ?
GROUP BY platform`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("group problems by platform: %w", err)
	}
	defer rows.Close()

	breakdown := make(map[string]int)
	for rows.Next() {
		var platform string
		var count int
		if err := rows.Scan(&platform, &count); err != nil {
			return nil, fmt.Errorf("scan platform group: %w", err)
		}
		breakdown[platform] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate platform groups: %w", err)
	}
	return breakdown, nil
}

func (r *ProblemRepository) Reset(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DROP TABLE IF EXISTS problems`); err != nil {
		return fmt.Errorf("drop problems table: %w", err)
	}
	return r.Init(ctx)
}

func scanProblem(row interface {
	Scan(dest ...any) error
}) (*domain.Problem, error) {
	var problem domain.Problem
	var difficulty, outcome string
	if err := row.Scan(
		&problem.ID,
		&problem.UserID,
		&problem.Title,
		&problem.Platform,
		&difficulty,
		&problem.Topic,
		&problem.TimeSpent,
		&outcome,
		&problem.Date,
		&problem.Link,
		&problem.Tags,
		&problem.Notes,
		&problem.IsRevision,
		&problem.CreatedAt,
		&problem.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("problem: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("scan problem: %w", err)
	}
	problem.Difficulty = domain.Difficulty(difficulty)
	problem.Outcome = domain.Outcome(outcome)
	return &problem, nil
}
