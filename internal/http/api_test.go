package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"practice-tracker/internal/repository/sqlite"
	"practice-tracker/internal/service"
)

type testEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Token   string          `json:"token"`
	Error   string          `json:"error"`
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	db, err := sqlite.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	users := sqlite.NewUserRepository(db)
	problems := sqlite.NewProblemRepository(db)
	require.NoError(t, users.Init(context.Background()))
	require.NoError(t, problems.Init(context.Background()))

	authService := service.NewAuthService(users, []byte("test-secret"), time.Hour)
	userService := service.NewUserService(users, problems)
	problemService := service.NewProblemService(problems, users)
	statsService := service.NewStatsService(problems)
	adminService := service.NewAdminService(users, problems, nil, "", "", ":memory:")

	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(authService, userService, problemService, statsService, adminService).RegisterRoutes(router)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) (*httptest.ResponseRecorder, testEnvelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env testEnvelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func registerTestUser(t *testing.T, router *gin.Engine, email string) (int64, string) {
	t.Helper()

	rec, env := doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"firstName": "Grace",
		"lastName":  "Hopper",
		"email":     email,
		"password":  "cobol4ever",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotEmpty(t, env.Token)

	var user struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &user))
	return user.ID, env.Token
}

func TestRegisterLoginVerifyFlow(t *testing.T) {
	router := newTestRouter(t)

	userID, token := registerTestUser(t, router, "grace@example.com")
	require.NotZero(t, userID)

	rec, env := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "grace@example.com",
		"password": "cobol4ever",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "Login successful", env.Message)
	assert.NotEmpty(t, env.Token)

	rec, env = doJSON(t, router, http.MethodPost, "/api/auth/verify", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Token is valid", env.Message)

	var verified struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &verified))
	assert.Equal(t, userID, verified.ID)
	assert.Equal(t, "grace@example.com", verified.Email)
}

func TestRegisterMissingFields(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"firstName": "Grace",
		"email":     "grace@example.com",
		"password":  "pw",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	router := newTestRouter(t)
	registerTestUser(t, router, "dup@example.com")

	rec, env := doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"firstName": "Second",
		"lastName":  "User",
		"email":     "dup@example.com",
		"password":  "pw",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.False(t, env.Success)
}

func TestLoginStatusCodes(t *testing.T) {
	router := newTestRouter(t)
	registerTestUser(t, router, "codes@example.com")

	rec, _ := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{"email": "", "password": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{"email": "nobody@example.com", "password": "pw"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{"email": "codes@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVerifyStatusCodes(t *testing.T) {
	router := newTestRouter(t)

	rec, _ := doJSON(t, router, http.MethodPost, "/api/auth/verify", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "missing token")

	rec, _ = doJSON(t, router, http.MethodPost, "/api/auth/verify", "not.a.token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "garbage token")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t)

	rec, _ := doJSON(t, router, http.MethodGet, "/api/users", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "no bearer token supplied")

	rec, _ = doJSON(t, router, http.MethodGet, "/api/users", "forged-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProblemLifecycle(t *testing.T) {
	router := newTestRouter(t)
	userID, token := registerTestUser(t, router, "solver@example.com")

	rec, env := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/users/%d/problems", userID), token, gin.H{
		"title":      "Two Sum",
		"platform":   "leetcode",
		"difficulty": "easy",
		"topic":      "arrays",
		"timeSpent":  15,
		"outcome":    "solved",
		"tags":       "hashmap",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		ID   int64  `json:"id"`
		Date string `json:"date"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.NotEmpty(t, created.Date, "date defaults to creation time")

	rec, env = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/problems/%d", created.ID), token, gin.H{
		"outcome":   "hints",
		"timeSpent": 30,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var updated struct {
		Outcome   string `json:"outcome"`
		TimeSpent int    `json:"timeSpent"`
		Title     string `json:"title"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "hints", updated.Outcome)
	assert.Equal(t, 30, updated.TimeSpent)
	assert.Equal(t, "Two Sum", updated.Title)

	rec, _ = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/users/%d/problems?platform=leetcode", userID), token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/problems/%d", created.ID), token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/problems/%d", created.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateProblemInvalidEnum(t *testing.T) {
	router := newTestRouter(t)
	userID, token := registerTestUser(t, router, "invalid@example.com")

	rec, _ := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/users/%d/problems", userID), token, gin.H{
		"title":      "X",
		"platform":   "leetcode",
		"difficulty": "impossible",
		"timeSpent":  10,
		"outcome":    "solved",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatsEndpoint(t *testing.T) {
	router := newTestRouter(t)
	userID, token := registerTestUser(t, router, "stats@example.com")

	for _, p := range []gin.H{
		{"title": "A", "platform": "leetcode", "difficulty": "easy", "timeSpent": 15, "outcome": "solved"},
		{"title": "B", "platform": "codeforces", "difficulty": "hard", "timeSpent": 90, "outcome": "failed"},
	} {
		rec, _ := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/users/%d/problems", userID), token, p)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	for _, path := range []string{
		fmt.Sprintf("/api/users/%d/stats", userID),
		fmt.Sprintf("/users/%d/stats", userID),
	} {
		rec, env := doJSON(t, router, http.MethodGet, path, token, nil)
		require.Equal(t, http.StatusOK, rec.Code, path)

		var stats StatsResponse
		require.NoError(t, json.Unmarshal(env.Data, &stats))
		assert.Equal(t, 2, stats.TotalProblems)
		assert.Equal(t, 1, stats.SolvedProblems)
		assert.Equal(t, 105, stats.TotalTimeSpent)
		assert.Equal(t, 50.00, stats.SolveRate)
		assert.Equal(t, map[string]int{"easy": 1, "hard": 1}, stats.DifficultyBreakdown)
		assert.Equal(t, map[string]int{"leetcode": 1, "codeforces": 1}, stats.PlatformBreakdown)
	}
}

func TestDeleteUserCascade(t *testing.T) {
	router := newTestRouter(t)
	victimID, _ := registerTestUser(t, router, "victim@example.com")
	_, token := registerTestUser(t, router, "admin@example.com")

	rec, _ := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/users/%d/problems", victimID), token, gin.H{
		"title": "A", "platform": "leetcode", "difficulty": "easy", "timeSpent": 15, "outcome": "solved",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/users/%d", victimID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/users/%d/stats", victimID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats StatsResponse
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Zero(t, stats.TotalProblems)
	assert.Zero(t, stats.TotalTimeSpent)
}

func TestAdminBackupWithoutStorage(t *testing.T) {
	router := newTestRouter(t)
	_, token := registerTestUser(t, router, "admin2@example.com")

	rec, env := doJSON(t, router, http.MethodPost, "/api/admin/backup", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Message, "storage service not configured")
}

func TestAdminResetDB(t *testing.T) {
	router := newTestRouter(t)
	_, token := registerTestUser(t, router, "admin3@example.com")

	rec, _ := doJSON(t, router, http.MethodPost, "/api/admin/reset-db", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// the admin's own account is gone with the reset
	rec, _ = doJSON(t, router, http.MethodPost, "/api/auth/verify", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doJSON(t, router, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
}
