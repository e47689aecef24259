package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"practice-tracker/internal/domain"
	"practice-tracker/internal/repository"
	"practice-tracker/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	auth     service.AuthService
	users    service.UserService
	problems service.ProblemService
	stats    service.StatsService
	admin    service.AdminService
}

func NewHandler(auth service.AuthService, users service.UserService, problems service.ProblemService, stats service.StatsService, admin service.AdminService) *Handler {
	return &Handler{
		auth:     auth,
		users:    users,
		problems: problems,
		stats:    stats,
		admin:    admin,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	api := router.Group("/api")
	{
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "API is running"})
		})

		api.POST("/auth/register", h.register)
		api.POST("/auth/login", h.login)
		api.POST("/auth/verify", h.verify)

		protected := api.Group("", h.authRequired())
		{
			protected.GET("/users", h.listUsers)
			protected.GET("/users/:userId", h.getUser)
			protected.DELETE("/users/:userId", h.deleteUser)
			protected.GET("/users/:userId/stats", h.getStats)
			protected.POST("/users/:userId/problems", h.createProblem)
			protected.GET("/users/:userId/problems", h.listProblems)
			protected.GET("/problems/:id", h.getProblem)
			protected.PUT("/problems/:id", h.updateProblem)
			protected.DELETE("/problems/:id", h.deleteProblem)

			protected.POST("/admin/reset-db", h.resetDatabase)
			protected.POST("/admin/backup", h.backupDatabase)
			protected.GET("/admin/backups", h.listBackups)
			protected.GET("/admin/backups/url", h.backupDownloadURL)
			protected.DELETE("/admin/backups", h.pruneBackups)
		}
	}

	// unprefixed spellings kept for older clients
	bare := router.Group("", h.authRequired())
	{
		bare.GET("/users/:userId/stats", h.getStats)
		bare.GET("/users/:userId", h.getUser)
		bare.GET("/problems/:id", h.getProblem)
		bare.PUT("/problems/:id", h.updateProblem)
		bare.DELETE("/problems/:id", h.deleteProblem)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (h *Handler) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := h.auth.VerifyToken(c.Request.Context(), bearerToken(c))
		if err != nil {
			respondError(c, err)
			c.Abort()
			return
		}
		c.Set("currentUser", user)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// ----- auth -----

type registerRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, envelope{Success: false, Message: "invalid request body", Error: err.Error()})
		return
	}

	user, token, err := h.auth.Register(c.Request.Context(), req.FirstName, req.LastName, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, envelope{
		Success: true,
		Message: "User created successfully",
		Data:    userToResponse(user),
		Token:   token,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, envelope{Success: false, Message: "invalid request body", Error: err.Error()})
		return
	}

	user, token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, envelope{
		Success: true,
		Message: "Login successful",
		Data:    userToResponse(user),
		Token:   token,
	})
}

func (h *Handler) verify(c *gin.Context) {
	user, err := h.auth.VerifyToken(c.Request.Context(), bearerToken(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, envelope{
		Success: true,
		Message: "Token is valid",
		Data:    userToResponse(user),
	})
}

// ----- users -----

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.users.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]UserResponse, len(users))
	for i := range users {
		resp[i] = userToResponse(&users[i])
	}
	c.JSON(http.StatusOK, envelope{Success: true, Data: resp})
}

func (h *Handler) getUser(c *gin.Context) {
	id, ok := paramID(c, "userId")
	if !ok {
		return
	}

	user, err := h.users.GetUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, envelope{Success: true, Data: userToResponse(user)})
}

func (h *Handler) deleteUser(c *gin.Context) {
	id, ok := paramID(c, "userId")
	if !ok {
		return
	}

	if err := h.users.DeleteUser(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, envelope{Success: true, Message: "User deleted successfully"})
}

// ----- problems -----

type problemRequest struct {
	Title      *string `json:"title"`
	Platform   *string `json:"platform"`
	Difficulty *string `json:"difficulty"`
	Topic      *string `json:"topic"`
	TimeSpent  *int    `json:"timeSpent"`
	Outcome    *string `json:"outcome"`
	Date       *string `json:"date"`
	Link       *string `json:"link"`
	Tags       *string `json:"tags"`
	Notes      *string `json:"notes"`
	IsRevision *bool   `json:"isRevision"`
}

func (h *Handler) createProblem(c *gin.Context) {
	userID, ok := paramID(c, "userId")
	if !ok {
		return
	}

	var req problemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, envelope{Success: false, Message: "invalid request body", Error: err.Error()})
		return
	}

	input := service.CreateProblemInput{
		Title:      strValue(req.Title),
		Platform:   strValue(req.Platform),
		Difficulty: domain.Difficulty(strValue(req.Difficulty)),
		Topic:      strValue(req.Topic),
		TimeSpent:  intValue(req.TimeSpent),
		Outcome:    domain.Outcome(strValue(req.Outcome)),
		Link:       strValue(req.Link),
		Tags:       strValue(req.Tags),
		Notes:      strValue(req.Notes),
	}
	if req.IsRevision != nil {
		input.IsRevision = *req.IsRevision
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			respondError(c, err)
			return
		}
		input.Date = date
	}

	problem, err := h.problems.CreateProblem(c.Request.Context(), userID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, envelope{
		Success: true,
		Message: "Problem created successfully",
		Data:    problemToResponse(*problem),
	})
}

func (h *Handler) listProblems(c *gin.Context) {
	userID, ok := paramID(c, "userId")
	if !ok {
		return
	}

	filter := repository.ProblemFilter{
		Difficulty: domain.Difficulty(c.Query("difficulty")),
		Platform:   c.Query("platform"),
		Outcome:    domain.Outcome(c.Query("outcome")),
		Topic:      c.Query("topic"),
	}

	problems, err := h.problems.ListProblems(c.Request.Context(), userID, filter)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]ProblemResponse, len(problems))
	for i := range problems {
		resp[i] = problemToResponse(problems[i])
	}
	c.JSON(http.StatusOK, envelope{Success: true, Data: resp})
}

func (h *Handler) getProblem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	problem, err := h.problems.GetProblem(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, envelope{Success: true, Data: problemToResponse(*problem)})
}

func (h *Handler) updateProblem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req problemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, envelope{Success: false, Message: "invalid request body", Error: err.Error()})
		return
	}

	input := service.UpdateProblemInput{
		Title:      req.Title,
		Platform:   req.Platform,
		Topic:      req.Topic,
		TimeSpent:  req.TimeSpent,
		Link:       req.Link,
		Tags:       req.Tags,
		Notes:      req.Notes,
		IsRevision: req.IsRevision,
	}
	if req.Difficulty != nil {
		difficulty := domain.Difficulty(*req.Difficulty)
		input.Difficulty = &difficulty
	}
	if req.Outcome != nil {
		outcome := domain.Outcome(*req.Outcome)
		input.Outcome = &outcome
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			respondError(c, err)
			return
		}
		input.Date = &date
	}

	problem, err := h.problems.UpdateProblem(c.Request.Context(), id, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, envelope{
		Success: true,
		Message: "Problem updated successfully",
		Data:    problemToResponse(*problem),
	})
}

func (h *Handler) deleteProblem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.problems.DeleteProblem(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, envelope{Success: true, Message: "Problem deleted successfully"})
}

// ----- stats -----

func (h *Handler) getStats(c *gin.Context) {
	userID, ok := paramID(c, "userId")
	if !ok {
		return
	}

	stats, err := h.stats.ComputeStats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, envelope{Success: true, Data: statsToResponse(stats)})
}

// ----- admin -----

func (h *Handler) resetDatabase(c *gin.Context) {
	if err := h.admin.ResetDatabase(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, envelope{Success: true, Message: "Database reset successfully"})
}

func (h *Handler) backupDatabase(c *gin.Context) {
	location, err := h.admin.BackupDatabase(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, envelope{
		Success: true,
		Message: "Backup uploaded",
		Data:    gin.H{"location": location},
	})
}

func (h *Handler) listBackups(c *gin.Context) {
	backups, err := h.admin.ListBackups(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]BackupResponse, len(backups))
	for i, obj := range backups {
		resp[i] = BackupResponse{Key: obj.Key, Size: obj.Size}
		if obj.LastModified != nil && !obj.LastModified.IsZero() {
			v := obj.LastModified.Format(time.RFC3339)
			resp[i].LastModified = &v
		}
	}
	c.JSON(http.StatusOK, envelope{Success: true, Data: resp})
}

func (h *Handler) backupDownloadURL(c *gin.Context) {
	url, err := h.admin.BackupDownloadURL(c.Request.Context(), c.Query("key"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, envelope{Success: true, Data: gin.H{"url": url}})
}

func (h *Handler) pruneBackups(c *gin.Context) {
	if err := h.admin.PruneBackups(c.Request.Context(), c.Query("prefix")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, envelope{Success: true, Message: "Backups deleted"})
}

// ----- envelope and helpers -----

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Token   string `json:"token,omitempty"`
	Error   string `json:"error,omitempty"`
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFromError(err), envelope{
		Success: false,
		Message: err.Error(),
		Error:   err.Error(),
	})
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, envelope{Success: false, Message: "invalid " + name, Error: "invalid " + name})
		return 0, false
	}
	return id, true
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if date, err := time.Parse(layout, value); err == nil {
			return date, nil
		}
	}
	return time.Time{}, fmt.Errorf("date must be RFC3339 or YYYY-MM-DD: %w", domain.ErrValidation)
}

func strValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intValue(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}

// ----- response shapes -----

type UserResponse struct {
	ID        int64             `json:"id"`
	Email     string            `json:"email"`
	FirstName string            `json:"firstName"`
	LastName  string            `json:"lastName"`
	CreatedAt string            `json:"createdAt"`
	UpdatedAt string            `json:"updatedAt"`
	Problems  []ProblemResponse `json:"problems,omitempty"`
}

type ProblemResponse struct {
	ID         int64  `json:"id"`
	UserID     int64  `json:"userId"`
	Title      string `json:"title"`
	Platform   string `json:"platform"`
	Difficulty string `json:"difficulty"`
	Topic      string `json:"topic"`
	TimeSpent  int    `json:"timeSpent"`
	Outcome    string `json:"outcome"`
	Date       string `json:"date"`
	Link       string `json:"link,omitempty"`
	Tags       string `json:"tags"`
	Notes      string `json:"notes,omitempty"`
	IsRevision bool   `json:"isRevision"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
}

type StatsResponse struct {
	TotalProblems       int            `json:"totalProblems"`
	SolvedProblems      int            `json:"solvedProblems"`
	TotalTimeSpent      int            `json:"totalTimeSpent"`
	SolveRate           float64        `json:"solveRate"`
	DifficultyBreakdown map[string]int `json:"difficultyBreakdown"`
	PlatformBreakdown   map[string]int `json:"platformBreakdown"`
}

type BackupResponse struct {
	Key          string  `json:"key"`
	Size         int64   `json:"size"`
	LastModified *string `json:"lastModified,omitempty"`
}

func userToResponse(user *domain.User) UserResponse {
	resp := UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
		UpdatedAt: user.UpdatedAt.Format(time.RFC3339),
	}
	if len(user.Problems) > 0 {
		resp.Problems = make([]ProblemResponse, len(user.Problems))
		for i := range user.Problems {
			resp.Problems[i] = problemToResponse(user.Problems[i])
		}
	}
	return resp
}

func problemToResponse(problem domain.Problem) ProblemResponse {
	return ProblemResponse{
		ID:         problem.ID,
		UserID:     problem.UserID,
		Title:      problem.Title,
		Platform:   problem.Platform,
		Difficulty: string(problem.Difficulty),
		Topic:      problem.Topic,
		TimeSpent:  problem.TimeSpent,
		Outcome:    string(problem.Outcome),
		Date:       problem.Date.Format(time.RFC3339),
		Link:       problem.Link,
		Tags:       problem.Tags,
		Notes:      problem.Notes,
		IsRevision: problem.IsRevision,
		CreatedAt:  problem.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  problem.UpdatedAt.Format(time.RFC3339),
	}
}

func statsToResponse(stats *domain.Stats) StatsResponse {
	difficulty := make(map[string]int, len(stats.DifficultyBreakdown))
	for k, v := range stats.DifficultyBreakdown {
		difficulty[string(k)] = v
	}

	return StatsResponse{
		TotalProblems:       stats.TotalProblems,
		SolvedProblems:      stats.SolvedProblems,
		TotalTimeSpent:      stats.TotalTimeSpent,
		SolveRate:           stats.SolveRate,
		DifficultyBreakdown: difficulty,
		PlatformBreakdown:   stats.PlatformBreakdown,
	}
}
