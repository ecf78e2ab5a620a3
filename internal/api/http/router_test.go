package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/civicvoice/complaint-service/internal/api/http/handlers"
	"github.com/civicvoice/complaint-service/internal/auth"
	"github.com/civicvoice/complaint-service/internal/classifier"
	"github.com/civicvoice/complaint-service/internal/config"
	"github.com/civicvoice/complaint-service/internal/domain"
	"github.com/civicvoice/complaint-service/internal/events"
	"github.com/civicvoice/complaint-service/internal/observability"
	"github.com/civicvoice/complaint-service/internal/realtime"
	"github.com/civicvoice/complaint-service/internal/repository"
	"github.com/civicvoice/complaint-service/internal/service"
)

type testServer struct {
	app    *fiber.App
	tokens *auth.TokenManager
	users  *repository.MemoryUserRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()
	lifecycle := config.LifecycleConfig{SLAHours: 48, FilingPoints: 20, VotePoints: 5, DefaultCity: "Amravati", ClassifyOnFile: true}

	complaints := repository.NewMemoryComplaintRepository()
	users := repository.NewMemoryUserRepository()
	notifications := repository.NewMemoryNotificationRepository()
	dispatcher := events.NewInMemoryDispatcher(logger)
	metrics := observability.NewMetrics()
	metrics.RegisterHandlers(dispatcher)
	keyword := classifier.NewKeyword()

	complaintSvc := service.NewComplaintService(service.ComplaintDependencies{
		ComplaintRepo: complaints, Classifier: keyword, Dispatcher: dispatcher, Config: lifecycle, Logger: logger,
	})
	engagementSvc := service.NewEngagementService(service.EngagementDependencies{
		ComplaintRepo: complaints, Dispatcher: dispatcher, Logger: logger,
	})
	notificationSvc := service.NewNotificationService(service.NotificationDependencies{
		NotificationRepo: notifications, UserRepo: users, Publisher: realtime.Nop{}, Logger: logger,
	})
	notificationSvc.RegisterHandlers(dispatcher)
	service.NewLedgerService(service.LedgerDependencies{UserRepo: users, Config: lifecycle, Logger: logger}).
		RegisterHandlers(dispatcher)

	tokens := auth.NewTokenManager("test-secret", 60)
	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("civicvoice", "test", nil, metrics),
		Complaints:     handlers.NewComplaintsHandler(complaintSvc, engagementSvc, keyword),
		Notifications:  handlers.NewNotificationsHandler(notificationSvc),
		Stats:          handlers.NewStatsHandler(service.NewStatsService(complaints, nil)),
		Users:          handlers.NewUsersHandler(service.NewDirectoryService(users)),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, users),
	})
	return &testServer{app: app, tokens: tokens, users: users}
}

func (s *testServer) actor(t *testing.T, actor *domain.Actor) string {
	t.Helper()
	actor.Active = true
	require.NoError(t, s.users.Create(context.Background(), actor))
	token, _, err := s.tokens.GenerateToken(actor.ID, actor.Role)
	require.NoError(t, err)
	return token
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	var env envelope
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func TestComplaintLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	citizen := s.actor(t, &domain.Actor{Name: "Asha", Role: domain.RoleCitizen})
	officer := s.actor(t, &domain.Actor{Name: "Roads Officer", Role: domain.RoleDepartment, Department: domain.DepartmentRoads})
	neighbour := s.actor(t, &domain.Actor{Name: "Ravi", Role: domain.RoleCitizen})

	status, env := s.do(t, "POST", "/api/complaints", citizen, map[string]any{
		"title":       "Pothole near the school gate",
		"description": "Children have to walk around a deep pothole every morning",
		"department":  "Roads & Infrastructure",
		"emergency":   true,
		"tags":        []string{"Pothole", "school", "pothole"},
	})
	require.Equal(t, fiber.StatusCreated, status)
	var created struct {
		ID            string   `json:"id"`
		PriorityScore int      `json:"priority_score"`
		Status        string   `json:"status"`
		Tags          []string `json:"tags"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, 20, created.PriorityScore)
	assert.Equal(t, "Pending", created.Status)
	assert.Equal(t, []string{"pothole", "school"}, created.Tags)

	status, env = s.do(t, "POST", "/api/complaints/"+created.ID+"/vote", neighbour, nil)
	require.Equal(t, fiber.StatusOK, status)
	var vote struct {
		Votes         int  `json:"votes"`
		PriorityScore int  `json:"priority_score"`
		Voted         bool `json:"voted"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &vote))
	assert.Equal(t, 1, vote.Votes)
	assert.Equal(t, 22, vote.PriorityScore)
	assert.True(t, vote.Voted)

	status, env = s.do(t, "PUT", "/api/complaints/"+created.ID+"/status", citizen, map[string]any{"status": "Resolved"})
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	status, _ = s.do(t, "PUT", "/api/complaints/"+created.ID+"/status", officer, map[string]any{"status": "Resolved", "note": "Filled"})
	require.Equal(t, fiber.StatusOK, status)

	status, env = s.do(t, "POST", "/api/complaints/"+created.ID+"/rate", citizen, map[string]any{"rating": 5})
	require.Equal(t, fiber.StatusOK, status)

	status, env = s.do(t, "POST", "/api/complaints/"+created.ID+"/rate", citizen, map[string]any{"rating": 4})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "ALREADY_RATED", env.Error.Code)

	status, env = s.do(t, "GET", "/api/notifications", citizen, nil)
	require.Equal(t, fiber.StatusOK, status)
	var inbox struct {
		Notifications []struct {
			Type string `json:"type"`
			Icon string `json:"icon"`
		} `json:"notifications"`
		Unread int `json:"unread"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &inbox))
	require.Len(t, inbox.Notifications, 1)
	assert.Equal(t, "resolution", inbox.Notifications[0].Type)
	assert.Equal(t, 1, inbox.Unread)

	status, env = s.do(t, "GET", "/api/users/me", citizen, nil)
	require.Equal(t, fiber.StatusOK, status)
	var me struct {
		CivicPoints int `json:"civic_points"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, 20, me.CivicPoints)

	status, env = s.do(t, "GET", "/api/stats/department/"+url.PathEscape("Roads & Infrastructure"), officer, nil)
	require.Equal(t, fiber.StatusOK, status)
	var dept struct {
		Total          int     `json:"total"`
		ResolutionRate float64 `json:"resolution_rate"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &dept))
	assert.Equal(t, 1, dept.Total)
	assert.InDelta(t, 100.0, dept.ResolutionRate, 1e-9)
}

func TestComplaintRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)
	citizen := s.actor(t, &domain.Actor{Name: "Asha", Role: domain.RoleCitizen})

	status, env := s.do(t, "POST", "/api/complaints", citizen, map[string]any{
		"title":       "Garbage dumped near market",
		"description": "Overflowing dustbin has not been cleared for days",
	})
	require.Equal(t, fiber.StatusCreated, status)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))

	for _, token := range []string{"", "not-a-token"} {
		status, env = s.do(t, "GET", "/api/complaints/"+created.ID, token, nil)
		assert.Equal(t, fiber.StatusUnauthorized, status)
		require.NotNil(t, env.Error)
		assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
		assert.Nil(t, env.Data)
	}

	status, _ = s.do(t, "GET", "/api/complaints", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	status, _ = s.do(t, "GET", "/api/complaints/map", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	status, _ = s.do(t, "POST", "/api/complaints/classify", "", map[string]any{"title": "x", "description": "y"})
	assert.Equal(t, fiber.StatusUnauthorized, status)
	status, _ = s.do(t, "GET", "/api/departments", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = s.do(t, "GET", "/api/complaints/"+created.ID, citizen, nil)
	assert.Equal(t, fiber.StatusOK, status)

	status, env = s.do(t, "GET", "/api/complaints/does-not-exist", citizen, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	status, env = s.do(t, "POST", "/api/complaints/classify", citizen, map[string]any{
		"title":       "Garbage dumped",
		"description": "Overflowing dustbin near market",
	})
	require.Equal(t, fiber.StatusOK, status)
	var suggestion struct {
		Department string `json:"department"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &suggestion))
	assert.Equal(t, "Sanitation & Waste", suggestion.Department)

	status, _ = s.do(t, "GET", "/api/complaints/map", citizen, nil)
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = s.do(t, "GET", "/health/live", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = s.do(t, "GET", "/health/ready", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestDepartmentsListsOfficerRatings(t *testing.T) {
	s := newTestServer(t)
	citizen := s.actor(t, &domain.Actor{Name: "Asha", Role: domain.RoleCitizen})
	officer := s.actor(t, &domain.Actor{Name: "Roads Officer", Role: domain.RoleDepartment, Department: domain.DepartmentRoads})
	s.actor(t, &domain.Actor{Name: "Lighting Officer", Role: domain.RoleDepartment, Department: domain.DepartmentLighting})

	status, env := s.do(t, "POST", "/api/complaints", citizen, map[string]any{
		"title":       "Pothole near the school gate",
		"description": "Children have to walk around a deep pothole every morning",
		"department":  "Roads & Infrastructure",
	})
	require.Equal(t, fiber.StatusCreated, status)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))

	status, _ = s.do(t, "PUT", "/api/complaints/"+created.ID+"/status", officer, map[string]any{"status": "Resolved"})
	require.Equal(t, fiber.StatusOK, status)
	status, _ = s.do(t, "POST", "/api/complaints/"+created.ID+"/rate", citizen, map[string]any{"rating": 4})
	require.Equal(t, fiber.StatusOK, status)

	status, env = s.do(t, "GET", "/api/departments", citizen, nil)
	require.Equal(t, fiber.StatusOK, status)
	var officers []struct {
		Name          string  `json:"name"`
		Role          string  `json:"role"`
		Department    string  `json:"department"`
		AverageRating float64 `json:"average_rating"`
		TotalRatings  int     `json:"total_ratings"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &officers))
	require.Len(t, officers, 2)

	byDept := map[string]int{}
	for i, o := range officers {
		assert.Equal(t, "department", o.Role)
		byDept[o.Department] = i
	}
	roads := officers[byDept["Roads & Infrastructure"]]
	assert.Equal(t, "Roads Officer", roads.Name)
	assert.InDelta(t, 4.0, roads.AverageRating, 1e-9)
	assert.Equal(t, 1, roads.TotalRatings)
	assert.Zero(t, officers[byDept["Street Lighting"]].TotalRatings)
}

func TestValidationErrorsCarryDetails(t *testing.T) {
	s := newTestServer(t)
	citizen := s.actor(t, &domain.Actor{Name: "Asha", Role: domain.RoleCitizen})

	status, env := s.do(t, "POST", "/api/complaints", citizen, map[string]any{"title": "x", "description": "y"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
	assert.Contains(t, env.Error.Details, "title")
	assert.Contains(t, env.Error.Details, "description")

	status, env = s.do(t, "GET", "/api/complaints?status=Closed", citizen, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
}
