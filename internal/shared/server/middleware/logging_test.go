package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"outreach-backend/internal/shared/telemetry"
)

func TestLoggingIncludesRequiredFields(t *testing.T) {
	gin.SetMode(gin.TestMode)

	core, logs := observer.New(zapcore.InfoLevel)
	prev := telemetry.L()
	telemetry.Use(zap.New(core))
	t.Cleanup(func() { telemetry.Use(prev) })

	router := gin.New()
	router.Use(RequestID(), Auth(stubVerifier{"good": {UserID: "user-1"}}), Logging())
	router.GET("/test", func(c *gin.Context) {
		c.Set("generationId", "gen-1")
		c.Set("fallback", true)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer good")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	entries := logs.FilterMessage("request.complete").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 request log, got %d", len(entries))
	}
	payload := entries[0].ContextMap()

	required := []string{"request_id", "user_id", "generation_id", "fallback", "duration_ms", "status"}
	for _, key := range required {
		if _, ok := payload[key]; !ok {
			t.Fatalf("missing log field: %s", key)
		}
	}
	if payload["user_id"] != "user-1" {
		t.Fatalf("unexpected user_id: %v", payload["user_id"])
	}
	if payload["generation_id"] != "gen-1" {
		t.Fatalf("unexpected generation_id: %v", payload["generation_id"])
	}
	if payload["fallback"] != true {
		t.Fatalf("unexpected fallback: %v", payload["fallback"])
	}
}
