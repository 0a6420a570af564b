package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"outreach-backend/internal/shared/auth"
)

type stubVerifier map[string]auth.Identity

func (s stubVerifier) Verify(_ context.Context, token string) (auth.Identity, error) {
	id, ok := s[token]
	if !ok {
		return auth.Identity{}, auth.ErrInvalidToken
	}
	return id, nil
}

func TestAuthAllowsOptionsWithoutIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth(stubVerifier{}))
	router.OPTIONS("/api/v1/generate-outreach", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/generate-outreach", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
}

func TestAuthRejectsMissingAndInvalidTokens(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth(stubVerifier{"good": {UserID: "user-1"}}))
	router.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": UserIDFromContext(c)})
	})

	for name, header := range map[string]string{
		"missing":   "",
		"no bearer": "good",
		"unknown":   "Bearer nope",
		"empty":     "Bearer ",
	} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, resp.Code)
		}
		var body map[string]any
		_ = json.Unmarshal(resp.Body.Bytes(), &body)
		if body["error"] != "Unauthorized" {
			t.Fatalf("%s: unexpected body %s", name, resp.Body.String())
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer good")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body map[string]string
	_ = json.Unmarshal(resp.Body.Bytes(), &body)
	if body["userId"] != "user-1" {
		t.Fatalf("unexpected userId: %v", body["userId"])
	}
}

func TestRequireAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth(stubVerifier{
		"user":  {UserID: "user-1"},
		"admin": {UserID: "admin-1", Role: auth.RoleAdmin},
	}), RequireAdmin())
	router.GET("/admin", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	cases := map[string]int{"user": http.StatusForbidden, "admin": http.StatusOK}
	for token, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != want {
			t.Fatalf("%s: expected %d, got %d", token, want, resp.Code)
		}
	}
}
