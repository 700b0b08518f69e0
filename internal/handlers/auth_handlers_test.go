package handlers

import (
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestRegister(t *testing.T) {
	env := setupTestEnv(t)

	t.Run("creates an account and returns a token", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, fiber.MethodPost, "/api/auth/register", map[string]any{
			"name":     "Alice",
			"email":    "Alice@Example.com",
			"password": "sufficiently-long",
		}, nil)
		assertStatus(t, resp, fiber.StatusCreated)

		data := envelopeData(t, decodeJSONMap(t, resp))
		if data["token"] == "" || data["token"] == nil {
			t.Fatal("expected a token in the response")
		}
		user, ok := data["user"].(map[string]any)
		if !ok {
			t.Fatalf("expected user object, got %v", data["user"])
		}
		if user["email"] != "alice@example.com" {
			t.Errorf("email not lowercased: %v", user["email"])
		}
		if _, present := user["passwordHash"]; present {
			t.Error("password hash must never appear in responses")
		}
	})

	t.Run("rejects a duplicate email", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, fiber.MethodPost, "/api/auth/register", map[string]any{
			"name":     "Alice Again",
			"email":    "alice@example.com",
			"password": "sufficiently-long",
		}, nil)
		assertStatus(t, resp, fiber.StatusConflict)
		assertEnvelopeError(t, decodeJSONMap(t, resp))
	})

	t.Run("rejects a malformed email", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, fiber.MethodPost, "/api/auth/register", map[string]any{
			"name":     "Bob",
			"email":    "not-an-email",
			"password": "sufficiently-long",
		}, nil)
		assertStatus(t, resp, fiber.StatusBadRequest)
	})

	t.Run("rejects a short password", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, fiber.MethodPost, "/api/auth/register", map[string]any{
			"name":     "Bob",
			"email":    "bob@example.com",
			"password": "short",
		}, nil)
		assertStatus(t, resp, fiber.StatusBadRequest)
	})
}

func TestLogin(t *testing.T) {
	env := setupTestEnv(t)
	createTestUser(t, env.db, "Alice", "alice@example.com", "correct-password")

	t.Run("issues a token for valid credentials", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, fiber.MethodPost, "/api/auth/login", map[string]any{
			"email":    "ALICE@example.com",
			"password": "correct-password",
		}, nil)
		assertStatus(t, resp, fiber.StatusOK)

		data := envelopeData(t, decodeJSONMap(t, resp))
		token, ok := data["token"].(string)
		if !ok || token == "" {
			t.Fatal("expected a token in the response")
		}

		me := performRequest(t, env.app, fiber.MethodGet, "/api/user/me", nil, authHeaders(token))
		assertStatus(t, me, fiber.StatusOK)
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, fiber.MethodPost, "/api/auth/login", map[string]any{
			"email":    "alice@example.com",
			"password": "wrong-password",
		}, nil)
		assertStatus(t, resp, fiber.StatusUnauthorized)
	})

	t.Run("rejects an unknown email", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, fiber.MethodPost, "/api/auth/login", map[string]any{
			"email":    "nobody@example.com",
			"password": "correct-password",
		}, nil)
		assertStatus(t, resp, fiber.StatusUnauthorized)
	})
}

func TestUserProfile(t *testing.T) {
	env := setupTestEnv(t)
	user, token := createTestUser(t, env.db, "Alice", "alice@example.com", "correct-password")

	t.Run("requires authentication", func(t *testing.T) {
		resp := performRequest(t, env.app, fiber.MethodGet, "/api/user/me", nil, nil)
		assertStatus(t, resp, fiber.StatusUnauthorized)
	})

	t.Run("returns the current user", func(t *testing.T) {
		resp := performRequest(t, env.app, fiber.MethodGet, "/api/user/me", nil, authHeaders(token))
		assertStatus(t, resp, fiber.StatusOK)

		data := envelopeData(t, decodeJSONMap(t, resp))
		if data["id"] != user.ID.String() {
			t.Errorf("expected user %s, got %v", user.ID, data["id"])
		}
	})

	t.Run("updates the display name", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, fiber.MethodPut, "/api/user/me", map[string]any{
			"name": "Alice Renamed",
		}, authHeaders(token))
		assertStatus(t, resp, fiber.StatusOK)

		data := envelopeData(t, decodeJSONMap(t, resp))
		if data["name"] != "Alice Renamed" {
			t.Errorf("expected renamed user, got %v", data["name"])
		}
	})

	t.Run("requires the current password for a password change", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, fiber.MethodPut, "/api/user/me", map[string]any{
			"currentPassword": "wrong-password",
			"newPassword":     "another-long-password",
		}, authHeaders(token))
		assertStatus(t, resp, fiber.StatusUnauthorized)
	})

	t.Run("changes the password with the current one verified", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, fiber.MethodPut, "/api/user/me", map[string]any{
			"currentPassword": "correct-password",
			"newPassword":     "another-long-password",
		}, authHeaders(token))
		assertStatus(t, resp, fiber.StatusOK)

		login := performJSONRequest(t, env.app, fiber.MethodPost, "/api/auth/login", map[string]any{
			"email":    "alice@example.com",
			"password": "another-long-password",
		}, nil)
		assertStatus(t, login, fiber.StatusOK)
	})
}
