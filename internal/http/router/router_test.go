package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apphttp "leadtracker_backend/internal/http"
	"leadtracker_backend/platform/config"
	"leadtracker_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type echoModule struct{}

func (echoModule) Name() string { return "echo" }

func (echoModule) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/echo", func(c *gin.Context) { c.String(http.StatusOK, "get") })
	ctx.V1.POST("/echo", func(c *gin.Context) { c.String(http.StatusOK, "post") })
}

func newApp(health apphttp.HealthChecker, perMinute int) *apphttp.App {
	gin.SetMode(gin.TestMode)
	return &apphttp.App{
		Config:  &config.Config{CORSOrigins: []string{"http://localhost:4200"}, WriteRateLimitPerMinute: perMinute},
		Logger:  logger.Discard(),
		Health:  health,
		Modules: []apphttp.Module{echoModule{}},
	}
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = "10.0.0.1:1234"
	engine.ServeHTTP(w, req)
	return w
}

func TestReadinessReflectsPing(t *testing.T) {
	healthy := New(newApp(pingFunc(func(context.Context) error { return nil }), 0))
	if w := serve(healthy, http.MethodGet, "/api/health/ready"); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	down := New(newApp(pingFunc(func(context.Context) error { return errors.New("db down") }), 0))
	if w := serve(down, http.MethodGet, "/api/health/ready"); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	engine := New(newApp(nil, 0))
	w := serve(engine, http.MethodGet, "/api/health")
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected a generated request id")
	}
}

func TestWriteRateLimitLeavesReadsAlone(t *testing.T) {
	engine := New(newApp(nil, 1))

	if w := serve(engine, http.MethodPost, "/api/v1/echo"); w.Code != http.StatusOK {
		t.Fatalf("first write should pass, got %d", w.Code)
	}
	if w := serve(engine, http.MethodPost, "/api/v1/echo"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("second write should be limited, got %d", w.Code)
	}
	for i := 0; i < 3; i++ {
		if w := serve(engine, http.MethodGet, "/api/v1/echo"); w.Code != http.StatusOK {
			t.Fatalf("reads must not be limited, got %d", w.Code)
		}
	}
}
