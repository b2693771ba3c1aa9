package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/yashrajoria/storefront/logger"
	"github.com/yashrajoria/storefront/models"
	"github.com/yashrajoria/storefront/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeSessions struct {
	session *models.Session
}

func (f fakeSessions) Current() (models.Session, bool) {
	if f.session == nil {
		return models.Session{}, false
	}
	return *f.session, true
}

func (f fakeSessions) State() store.SessionState {
	if f.session == nil {
		return store.LoggedOut
	}
	return store.LoggedIn
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func perform(r http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestCORS_AllowedOrigin(t *testing.T) {
	r := newRouter(CORS([]string{"http://localhost:3000"}))

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://evil.test")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCORS_AnyOrigin(t *testing.T) {
	r := newRouter(CORS([]string{"*"}))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://app.test")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequireSession(t *testing.T) {
	loggedOut := newRouter(RequireSession(fakeSessions{}))
	w := perform(loggedOut, http.MethodGet, "/ping")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "auth", body["navigator"])

	session := &models.Session{User: models.User{ID: 1}, Token: "tok"}
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ping", RequireSession(fakeSessions{session: session}), func(c *gin.Context) {
		got, ok := GetSession(c)
		require.True(t, ok)
		c.String(http.StatusOK, got.Token)
	})
	w = perform(r, http.MethodGet, "/ping")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tok", w.Body.String())
}

func TestRequireGuest(t *testing.T) {
	w := perform(newRouter(RequireGuest(fakeSessions{})), http.MethodGet, "/ping")
	assert.Equal(t, http.StatusOK, w.Code)

	loggedIn := fakeSessions{session: &models.Session{Token: "tok"}}
	w = perform(newRouter(RequireGuest(loggedIn)), http.MethodGet, "/ping")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), `"navigator":"tabs"`)
}

func TestRequireAdmin(t *testing.T) {
	common := fakeSessions{session: &models.Session{User: models.User{Type: models.UserTypeCommon}, Token: "t"}}
	w := perform(newRouter(RequireSession(common), RequireAdmin()), http.MethodGet, "/ping")
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin := fakeSessions{session: &models.Session{User: models.User{Type: models.UserTypeAdmin}, Token: "t"}}
	w = perform(newRouter(RequireSession(admin), RequireAdmin()), http.MethodGet, "/ping")
	assert.Equal(t, http.StatusOK, w.Code)

	w = perform(newRouter(RequireAdmin()), http.MethodGet, "/ping")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, logger.RequestID(c.Request.Context()))
	})

	w := perform(r, http.MethodGet, "/ping")
	assert.NotEmpty(t, w.Body.String())
	assert.Equal(t, w.Body.String(), w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Body.String())
}

func TestRequestLogger_LevelByStatus(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), RequestLogger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusBadGateway) })

	perform(r, http.MethodGet, "/ok")
	perform(r, http.MethodGet, "/bad")
	perform(r, http.MethodGet, "/boom")

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
	assert.Equal(t, zap.ErrorLevel, entries[2].Level)
	assert.NotEmpty(t, entries[0].ContextMap()["request_id"])
}

func TestRateLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rl := NewRateLimiter(ctx, 1, 2, time.Minute)
	r := newRouter(RateLimit(rl))

	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/ping").Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/ping").Code)
	w := perform(r, http.MethodGet, "/ping")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, 1, rl.Len())
}

func TestRateLimit_NonPositiveBurstAllowsOne(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rl := NewRateLimiter(ctx, 1, 0, time.Minute)
	r := newRouter(RateLimit(rl))

	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/ping").Code)
	assert.Equal(t, http.StatusTooManyRequests, perform(r, http.MethodGet, "/ping").Code)
}

func TestRateLimiter_Sweep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rl := NewRateLimiter(ctx, 10, 1, time.Minute)
	rl.GetLimiter("10.0.0.1")

	rl.sweep(time.Now().Add(2 * time.Minute))

	assert.Equal(t, 0, rl.Len())
}

type recordingMetrics struct {
	mu    sync.Mutex
	names []string
	done  chan struct{}
}

func (m *recordingMetrics) RecordCount(_ context.Context, name string, _ map[string]string) error {
	m.mu.Lock()
	m.names = append(m.names, name)
	n := len(m.names)
	m.mu.Unlock()
	if n == 3 {
		close(m.done)
	}
	return nil
}

func (m *recordingMetrics) RecordLatency(_ context.Context, name string, _ time.Duration, _ map[string]string) error {
	m.mu.Lock()
	m.names = append(m.names, name)
	n := len(m.names)
	m.mu.Unlock()
	if n == 3 {
		close(m.done)
	}
	return nil
}

func (m *recordingMetrics) IsEnabled() bool { return true }

func TestMetrics_RecordsErrors(t *testing.T) {
	rec := &recordingMetrics{done: make(chan struct{})}
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics(rec))
	r.GET("/fail", func(c *gin.Context) { c.Status(http.StatusBadGateway) })

	perform(r, http.MethodGet, "/fail")

	select {
	case <-rec.done:
	case <-time.After(time.Second):
		t.Fatal("metrics not recorded")
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.ElementsMatch(t, []string{"HTTPRequests", "HTTPLatency", "HTTPErrors"}, rec.names)
}

func TestStatusCodeToRange(t *testing.T) {
	assert.Equal(t, "2xx", statusCodeToRange(204))
	assert.Equal(t, "4xx", statusCodeToRange(499))
	assert.Equal(t, "5xx", statusCodeToRange(502))
	assert.Equal(t, "unknown", statusCodeToRange(0))
}
