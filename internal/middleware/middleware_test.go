package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/finance-tracker/internal/config"
	"github.com/iliyamo/finance-tracker/internal/log"
	"github.com/iliyamo/finance-tracker/internal/utils"
)

func testTokens() utils.TokenService {
	return utils.TokenService{
		AccessSecret:  "a-secret",
		RefreshSecret: "r-secret",
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	}
}

func serve(e *echo.Echo, method, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func protectedEcho(tokens utils.TokenService) *echo.Echo {
	e := echo.New()
	e.GET("/me", func(c echo.Context) error {
		id, ok := UserID(c)
		if !ok {
			return c.NoContent(http.StatusInternalServerError)
		}
		return c.JSON(http.StatusOK, echo.Map{"id": id, "email": c.Get(ContextEmail)})
	}, JWTAuth(tokens))
	e.GET("/users/:id", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) },
		JWTAuth(tokens), RequireSelf("id"))
	return e
}

func TestJWTAuth(t *testing.T) {
	tokens := testTokens()
	e := protectedEcho(tokens)

	rec := serve(e, http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Access token required")

	rec = serve(e, http.MethodGet, "/me", "garbage")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid access token")

	refresh, err := tokens.IssueRefreshToken(1, "a@b.co", "k")
	require.NoError(t, err)
	rec = serve(e, http.MethodGet, "/me", refresh.Raw)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	expired := tokens
	expired.AccessTTL = -time.Minute
	old, err := expired.IssueAccessToken(1, "a@b.co")
	require.NoError(t, err)
	rec = serve(e, http.MethodGet, "/me", old.Raw)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Access token expired")

	access, err := tokens.IssueAccessToken(7, "a@b.co")
	require.NoError(t, err)
	rec = serve(e, http.MethodGet, "/me", access.Raw)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":7,"email":"a@b.co"}`, rec.Body.String())
}

func TestRequireSelf(t *testing.T) {
	tokens := testTokens()
	e := protectedEcho(tokens)
	access, err := tokens.IssueAccessToken(7, "a@b.co")
	require.NoError(t, err)

	assert.Equal(t, http.StatusNoContent, serve(e, http.MethodGet, "/users/7", access.Raw).Code)
	assert.Equal(t, http.StatusForbidden, serve(e, http.MethodGet, "/users/8", access.Raw).Code)
	assert.Equal(t, http.StatusBadRequest, serve(e, http.MethodGet, "/users/abc", access.Raw).Code)
}

func TestMemoryRateLimiter(t *testing.T) {
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            time.Hour,
		KeyStrategy:    "ip",
		Prefix:         "test",
	}
	e := echo.New()
	e.Use(NewTokenBucket(cfg, nil, log.Discard()))
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/", "").Code)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(e, http.MethodGet, "/", "").Code)
}

func TestDisabledRateLimiter(t *testing.T) {
	e := echo.New()
	e.Use(NewTokenBucket(config.RateLimitConfig{Enabled: false}, nil, log.Discard()))
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/", "").Code)
	}
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/x")

	cfg := config.RateLimitConfig{Prefix: "finance:rl", KeyStrategy: "ip_user"}
	assert.Equal(t, "finance:rl:ip:10.0.0.1:user:anon", buildRateKey(cfg, c))

	c.Set(ContextUserID, uint64(9))
	cfg.KeyStrategy = "user_route"
	assert.Equal(t, "finance:rl:user:9:route:GET /x", buildRateKey(cfg, c))
}

func TestRequestIDAndLogger(t *testing.T) {
	e := echo.New()
	e.Use(RequestID(), RequestLogger(log.Discard()))
	e.GET("/", func(c echo.Context) error {
		// the request-scoped logger is reachable from the context
		assert.NotNil(t, log.FromContext(c.Request().Context()))
		return c.NoContent(http.StatusOK)
	})
	rec := serve(e, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, rec.Header().Get(echo.HeaderXRequestID), 36)
}
