package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/budgetwise/backend/internal/database"
	"github.com/budgetwise/backend/internal/middleware"
	"github.com/budgetwise/backend/internal/models"
	"github.com/budgetwise/backend/pkg/logger"
	"github.com/budgetwise/backend/pkg/utils"
)

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
}

var testSetupOnce sync.Once

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	testSetupOnce.Do(func() {
		logger.Init()
		utils.ConfigureJWT("test-secret", 24)
	})

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB from gorm: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed migrating models: %v", err)
	}

	authHandler := NewAuthHandler(db)
	userHandler := NewUserHandler(db)
	groupHandler := NewGroupHandler(db)
	expenseHandler := NewExpenseHandler(db)
	balanceHandler := NewBalanceHandler(db)
	trackingHandler := NewTrackingHandler(db)
	settlementHandler := NewSettlementHandler(db)
	authMiddleware := middleware.NewAuthMiddleware(db)

	app := fiber.New(fiber.Config{})
	app.Use(recover.New())
	app.Use(middleware.CORS())
	app.Use(middleware.RequestLogger())
	app.Use(middleware.SecurityLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return utils.Success(c, fiber.StatusOK, fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	api.Post("/auth/register", authHandler.Register)
	api.Post("/auth/login", authHandler.Login)

	userRoutes := api.Group("/user", authMiddleware.RequireAuth)
	userRoutes.Get("/me", userHandler.Me)
	userRoutes.Put("/me", userHandler.UpdateMe)

	groupRoutes := api.Group("/groups", authMiddleware.RequireAuth)
	groupRoutes.Post("/", groupHandler.Create)
	groupRoutes.Get("/my", groupHandler.My)
	groupRoutes.Post("/join", groupHandler.Join)
	groupRoutes.Get("/:id", groupHandler.Get)
	groupRoutes.Get("/:id/members", groupHandler.Members)

	expenseRoutes := api.Group("/expenses", authMiddleware.RequireAuth)
	expenseRoutes.Post("/", expenseHandler.Create)
	expenseRoutes.Get("/group/:groupId", expenseHandler.ListForGroup)

	api.Get("/balances", authMiddleware.RequireAuth, balanceHandler.List)
	api.Get("/tracking", authMiddleware.RequireAuth, trackingHandler.Summary)
	api.Post("/settlements", authMiddleware.RequireAuth, settlementHandler.Create)

	return &testEnv{app: app, db: db}
}

func createTestUser(t *testing.T, db *gorm.DB, name, email, password string) (*models.User, string) {
	t.Helper()

	hash, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("failed hashing password: %v", err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed creating test user: %v", err)
	}

	token, err := utils.GenerateToken(user)
	if err != nil {
		t.Fatalf("failed generating auth token: %v", err)
	}

	return user, token
}

// createTestGroup creates a group with the given members; the first member
// is the creator and admin.
func createTestGroup(t *testing.T, db *gorm.DB, name string, members ...*models.User) *models.Group {
	t.Helper()

	if len(members) == 0 {
		t.Fatal("createTestGroup needs at least one member")
	}

	group := &models.Group{
		Name:        name,
		CreatedByID: members[0].ID,
	}
	if err := db.Create(group).Error; err != nil {
		t.Fatalf("failed creating test group: %v", err)
	}

	for i, member := range members {
		role := models.GroupRoleMember
		if i == 0 {
			role = models.GroupRoleAdmin
		}
		membership := &models.GroupMembership{
			UserID:  member.ID,
			GroupID: group.ID,
			Role:    role,
		}
		if err := db.Create(membership).Error; err != nil {
			t.Fatalf("failed creating test membership: %v", err)
		}
	}

	return group
}

func authHeaders(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func performRequest(t *testing.T, app *fiber.App, method, path string, body io.Reader, headers map[string]string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := app.Test(req, int((10 * time.Second).Milliseconds()))
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}

	return resp
}

func performJSONRequest(t *testing.T, app *fiber.App, method, path string, payload any, headers map[string]string) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	requestHeaders := map[string]string{}
	for key, value := range headers {
		requestHeaders[key] = value
	}
	if payload != nil {
		requestHeaders["Content-Type"] = "application/json"
	}

	return performRequest(t, app, method, path, body, requestHeaders)
}

func decodeJSONMap(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed reading response body: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("failed decoding JSON response: %v body=%q", err, string(raw))
	}

	return payload
}

func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Fatalf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

func assertEnvelopeError(t *testing.T, body map[string]any) {
	t.Helper()
	if success, ok := body["success"].(bool); !ok || success {
		t.Fatalf("expected error envelope, got %v", body)
	}
	if _, ok := body["error"].(string); !ok {
		t.Fatalf("expected error message in envelope, got %v", body)
	}
}

func envelopeData(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	if success, ok := body["success"].(bool); !ok || !success {
		t.Fatalf("expected success envelope, got %v", body)
	}
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object in envelope, got %v", body)
	}
	return data
}

func envelopeList(t *testing.T, body map[string]any) []any {
	t.Helper()
	if success, ok := body["success"].(bool); !ok || !success {
		t.Fatalf("expected success envelope, got %v", body)
	}
	data, ok := body["data"].([]any)
	if !ok {
		t.Fatalf("expected data array in envelope, got %v", body)
	}
	return data
}

// expensePayload builds the standard body for an expense creation request.
func expensePayload(groupID uuid.UUID, date string, cost float64, category *string, splits []map[string]any) map[string]any {
	payload := map[string]any{
		"groupId": groupID.String(),
		"date":    date,
		"cost":    cost,
	}
	if category != nil {
		payload["category"] = *category
	}
	if splits != nil {
		payload["splits"] = splits
	}
	return payload
}

func strPtr(s string) *string {
	return &s
}
