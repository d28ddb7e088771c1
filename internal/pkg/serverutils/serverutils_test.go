package serverutils

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func decode(t *testing.T, body io.Reader) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestParseStaffToken(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name    string
		secret  string
		token   string
		want    string
		wantErr bool
	}{
		{"subject claim", testSecret, signToken(t, testSecret, jwt.MapClaims{"sub": "agent-7", "exp": exp}), "agent-7", false},
		{"user_id claim", testSecret, signToken(t, testSecret, jwt.MapClaims{"user_id": "agent-8", "exp": exp}), "agent-8", false},
		{"wrong secret", testSecret, signToken(t, "other", jwt.MapClaims{"sub": "x", "exp": exp}), "", true},
		{"expired", testSecret, signToken(t, testSecret, jwt.MapClaims{"sub": "x", "exp": time.Now().Add(-time.Hour).Unix()}), "", true},
		{"no subject", testSecret, signToken(t, testSecret, jwt.MapClaims{"exp": exp}), "", true},
		{"not configured", "", signToken(t, testSecret, jwt.MapClaims{"sub": "x"}), "", true},
		{"garbage", testSecret, "not.a.token", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStaffToken(tt.secret, tt.token)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJwtMiddleware(t *testing.T) {
	app := fiber.New()
	app.Get("/staff", NewJwtMiddleware(testSecret), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals(StaffIdLocal).(string))
	})

	req := httptest.NewRequest("GET", "/staff", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest("GET", "/staff", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, jwt.MapClaims{"sub": "agent-1"}))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "agent-1", string(body))
}

type sampleRequest struct {
	Message string `json:"message" validate:"required,max=5"`
}

func TestErrorHandlerMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Post("/validate", func(c *fiber.Ctx) error {
		var req sampleRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid body")
		}
		return ValidateRequest(req)
	})
	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("boom")
	})

	t.Run("validation error", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/validate", strings.NewReader(`{"message":"too long"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		body := decode(t, resp.Body)
		assert.Equal(t, "must be at most 5 characters", body["errors"].(map[string]interface{})["message"])
	})

	t.Run("fiber error", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/validate", strings.NewReader(`{`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Invalid body", decode(t, resp.Body)["message"])
	})

	t.Run("panic", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/panic", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, false, decode(t, resp.Body)["success"])
	})
}
