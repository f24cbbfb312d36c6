package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/query-params-practice/internal/config"
	"github.com/iliyamo/query-params-practice/internal/errs"
	"github.com/iliyamo/query-params-practice/internal/queue"
)

func newContext(method, target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRequestID_GeneratesUUID(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/")

	var seen string
	h := RequestID()(func(c echo.Context) error {
		seen = GetRequestID(c)
		return nil
	})
	require.NoError(t, h(c))

	_, err := uuid.Parse(seen)
	assert.NoError(t, err)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
}

func TestRequestID_KeepsIncoming(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/")
	c.Request().Header.Set(RequestIDHeader, "upstream-id")

	require.NoError(t, RequestID()(func(echo.Context) error { return nil })(c))
	assert.Equal(t, "upstream-id", GetRequestID(c))
	assert.Equal(t, "upstream-id", rec.Header().Get(RequestIDHeader))
}

func TestContextLogger_AddsRequestFields(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)
	c, _ := newContext(http.MethodGet, "/search?keyword=a")
	c.SetPath("/search")
	c.Set(RequestIDKey, "rid-1")

	h := ContextLogger(base)(func(c echo.Context) error {
		GetLogger(c).Info().Msg("inside")
		zerolog.Ctx(c.Request().Context()).Info().Msg("from ctx")
		return nil
	})
	require.NoError(t, h(c))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "rid-1", entry["request_id"])
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/search", entry["path"])
}

func TestGetLogger_NopWithoutMiddleware(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/")
	l := GetLogger(c)
	require.NotNil(t, l)
	assert.Equal(t, zerolog.Disabled, l.GetLevel())
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"api error", errs.NewBadRequestError(errs.CodeInvalidLimit, "limit must be non-negative"), 400, "INVALID_LIMIT", "limit must be non-negative"},
		{"wrapped api error", errors.Join(errors.New("ctx"), errs.NewNotFoundError("User not found")), 404, "NOT_FOUND", "User not found"},
		{"route not found", echo.ErrNotFound, 404, "NOT_FOUND", "Route not found"},
		{"method not allowed", echo.ErrMethodNotAllowed, 405, "METHOD_NOT_ALLOWED", "Method Not Allowed"},
		{"echo client error", echo.NewHTTPError(http.StatusRequestEntityTooLarge, "too big"), 413, "REQUEST_ENTITY_TOO_LARGE", "too big"},
		{"unknown error", errors.New("db exploded"), 500, "INTERNAL_SERVER_ERROR", "Internal Server Error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext(http.MethodGet, "/")
			ErrorHandler(tt.err, c)

			assert.Equal(t, tt.status, rec.Code)
			var body errs.HTTPError
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, errs.HTTPError{Code: tt.code, Message: tt.message, Status: tt.status}, body)
		})
	}
}

func TestErrorHandler_HeadHasNoBody(t *testing.T) {
	c, rec := newContext(http.MethodHead, "/")
	ErrorHandler(errs.NewNotFoundError("x"), c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Zero(t, rec.Body.Len())
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, 200, statusOf(200, nil))
	assert.Equal(t, 400, statusOf(200, errs.NewBadRequestError("", "x")))
	assert.Equal(t, 404, statusOf(200, echo.ErrNotFound))
	assert.Equal(t, 500, statusOf(200, errors.New("boom")))
}

func TestCacheKeyFrom(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "route_query"}

	key := func(cfg config.CacheConfig, method, target string) string {
		c, _ := newContext(method, target)
		return cacheKeyFrom(cfg, c)
	}

	a := key(cfg, http.MethodGet, "/flights/NYC/LAX?date=2025-09-15&max_price=400")
	b := key(cfg, http.MethodGet, "/flights/NYC/LAX?max_price=400&date=2025-09-15")
	assert.Equal(t, a, b, "query order does not matter")
	assert.Regexp(t, `^cache:[0-9a-f]{40}$`, a)

	assert.NotEqual(t, key(cfg, http.MethodGet, "/products/1"), key(cfg, http.MethodGet, "/products/2"))
	assert.NotEqual(t, a, key(cfg, http.MethodGet, "/flights/NYC/LAX"))

	routeOnly := config.CacheConfig{Prefix: "cache", KeyStrategy: "route"}
	assert.Equal(t, key(routeOnly, http.MethodGet, "/search?keyword=a"), key(routeOnly, http.MethodGet, "/search?keyword=b"))

	withMethod := config.CacheConfig{Prefix: "cache", KeyStrategy: "method_route_query"}
	assert.NotEqual(t, key(withMethod, http.MethodGet, "/search"), key(withMethod, http.MethodHead, "/search"))
}

func TestPayloadEncoding(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	payload, err := encodePayload(http.StatusOK, hdr, []byte(`{"numbers":[1]}`))
	require.NoError(t, err)

	status, gotHdr, body, ok := decodePayload(payload)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", gotHdr.Get("Content-Type"))
	assert.Equal(t, `{"numbers":[1]}`, string(body))

	_, _, _, ok = decodePayload([]byte{0, 1})
	assert.False(t, ok)
	_, _, _, ok = decodePayload([]byte{0, 0, 0, 200, 0, 0, 0, 99})
	assert.False(t, ok)
}

func TestCaptureWriter_Limit(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 4}

	_, _ = cw.Write([]byte("abc"))
	assert.False(t, cw.truncated())
	_, _ = cw.Write([]byte("def"))
	assert.True(t, cw.truncated())
	assert.Equal(t, "abcd", cw.buf.String())
	assert.Equal(t, "abcdef", rec.Body.String())
}

func TestNewRedisCache_PassThroughWithoutRedis(t *testing.T) {
	mw := NewRedisCache(config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}}, nil)
	c, rec := newContext(http.MethodGet, "/")

	require.NoError(t, mw(func(c echo.Context) error { return c.String(http.StatusOK, "hi") })(c))
	assert.Equal(t, "hi", rec.Body.String())
	assert.Empty(t, rec.Header().Get("X-Cache"))
}

func TestLocalLimiterStore(t *testing.T) {
	s := NewLocalLimiterStore(0.02, 1, time.Minute)

	assert.Same(t, s.Get("k"), s.Get("k"))
	assert.NotSame(t, s.Get("k"), s.Get("other"))
	assert.Equal(t, 2, s.Len())

	lim := s.Get("burst")
	assert.True(t, lim.Allow())
	assert.False(t, lim.Allow())
}

func TestLocalLimiterStore_CleanupRemovesIdle(t *testing.T) {
	s := NewLocalLimiterStore(10, 1, 2*time.Millisecond)

	before := s.Get("k")
	time.Sleep(5 * time.Millisecond)
	s.Cleanup()
	assert.Zero(t, s.Len())
	assert.NotSame(t, before, s.Get("k"))
}

func TestNewTokenBucket_Local(t *testing.T) {
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       1,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		KeyStrategy:    "ip",
		Prefix:         "rl",
		Debug:          true,
	}
	mw := NewTokenBucket(cfg, nil, NewLocalLimiterStore(cfg.RefillRate(), cfg.Capacity, time.Hour))
	h := mw(func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	c, rec := newContext(http.MethodGet, "/")
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "rl:ip:192.0.2.1", rec.Header().Get("X-RateLimit-Key"))

	c, rec = newContext(http.MethodGet, "/")
	err := h(c)
	require.Error(t, err)
	assert.Equal(t, "TOO_MANY_REQUESTS", errs.CodeOf(err))
	assert.Equal(t, "3600", rec.Header().Get("Retry-After"))
}

func TestNewTokenBucket_DisabledPassesThrough(t *testing.T) {
	mw := NewTokenBucket(config.RateLimitConfig{Enabled: false}, nil, NewLocalLimiterStore(0.001, 1, time.Hour))
	h := mw(func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	for range 3 {
		c, rec := newContext(http.MethodGet, "/")
		require.NoError(t, h(c))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}
}

func TestBuildRateKey(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/products/1")
	c.SetPath("/products/:id")

	assert.Equal(t, "rl:ip:192.0.2.1", buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip"}, c))
	assert.Equal(t, "rl:route:GET /products/:id", buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "route"}, c))
	assert.Equal(t, "rl:ip:192.0.2.1:route:GET /products/:id", buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip_route"}, c))
}

type dropSink struct{ got []queue.QueryServedEvent }

func (s *dropSink) Enqueue(ev queue.QueryServedEvent) bool {
	s.got = append(s.got, ev)
	return false
}

func TestAudit(t *testing.T) {
	sink := &dropSink{}
	c, _ := newContext(http.MethodGet, "/users/1/posts?limit=2")
	c.SetPath("/users/:id/posts")
	c.Set(RequestIDKey, "rid-9")

	err := Audit(sink)(func(echo.Context) error { return errs.NewNotFoundError("User not found") })(c)
	require.Error(t, err)

	require.Len(t, sink.got, 1)
	ev := sink.got[0]
	assert.Equal(t, "rid-9", ev.RequestID)
	assert.Equal(t, "/users/:id/posts", ev.Route)
	assert.Equal(t, "/users/1/posts", ev.Path)
	assert.Equal(t, "limit=2", ev.Query)
	assert.Equal(t, http.StatusNotFound, ev.Status)
	assert.Equal(t, "192.0.2.1", ev.ClientIP)
}

func TestAudit_NilSink(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/")
	require.NoError(t, Audit(nil)(func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
