package middleware

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type mockVerifier struct {
	verifyFn func(token string) (string, error)
}

func (m *mockVerifier) Verify(token string) (string, error) {
	if m.verifyFn != nil {
		return m.verifyFn(token)
	}
	return "", errors.New("invalid token")
}

func authTestApp(verifier Verifier) *fiber.App {
	app := fiber.New()
	app.Get("/protected", RequireAuth(verifier, zap.NewNop()), func(c *fiber.Ctx) error {
		return c.SendString(UserID(c))
	})
	app.Get("/open", OptionalAuth(verifier), func(c *fiber.Ctx) error {
		return c.SendString(UserID(c))
	})
	return app
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	app := authTestApp(&mockVerifier{})

	req := httptest.NewRequest("GET", "/protected", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestRequireAuth_BadScheme(t *testing.T) {
	app := authTestApp(&mockVerifier{})

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	app := authTestApp(&mockVerifier{
		verifyFn: func(token string) (string, error) {
			return "", errors.New("expired")
		},
	})

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestRequireAuth_ValidToken(t *testing.T) {
	app := authTestApp(&mockVerifier{
		verifyFn: func(token string) (string, error) {
			if token != "good-token" {
				t.Fatalf("unexpected token %q", token)
			}
			return "user-a", nil
		},
	})

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := make([]byte, 32)
	n, _ := resp.Body.Read(body)
	if string(body[:n]) != "user-a" {
		t.Fatalf("expected user id in locals, got %q", string(body[:n]))
	}
}

func TestOptionalAuth_NeverRejects(t *testing.T) {
	app := authTestApp(&mockVerifier{
		verifyFn: func(token string) (string, error) {
			return "", errors.New("expired")
		},
	})

	req := httptest.NewRequest("GET", "/open", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := make([]byte, 32)
	n, _ := resp.Body.Read(body)
	if string(body[:n]) != "" {
		t.Fatalf("expected empty user id, got %q", string(body[:n]))
	}
}

func TestOptionalAuth_ValidToken(t *testing.T) {
	app := authTestApp(&mockVerifier{
		verifyFn: func(token string) (string, error) {
			return "user-a", nil
		},
	})

	req := httptest.NewRequest("GET", "/open", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	body := make([]byte, 32)
	n, _ := resp.Body.Read(body)
	if string(body[:n]) != "user-a" {
		t.Fatalf("expected user-a, got %q", string(body[:n]))
	}
}
