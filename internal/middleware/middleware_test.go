package middleware

import (
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bakery-popup/internal/pkg/jwt"
	"bakery-popup/internal/pkg/ratelimit"
	"bakery-popup/internal/pkg/session"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func operatorRouter(t *testing.T, sessions *session.Manager) (*gin.Engine, *jwt.Generator) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	gen := jwt.NewGenerator(priv, "bakery", "popup-admin", "", time.Hour)
	auth := NewAuthMiddleware(jwt.NewVerifier(&priv.PublicKey, "bakery", "popup-admin"), sessions)

	r := gin.New()
	r.GET("/admin", append(auth.OperatorOnly(), func(c *gin.Context) {
		id, _ := GetOperatorID(c)
		c.String(http.StatusOK, id)
	})...)
	return r, gen
}

func TestOperatorOnly(t *testing.T) {
	r, gen := operatorRouter(t, nil)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/admin", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	require.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	customer, _, err := gen.GenerateOperatorToken("shopper", []string{"customer"})
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+customer)
	require.Equal(t, http.StatusForbidden, serve(r, req).Code)

	operator, _, err := gen.GenerateOperatorToken("baker-1", []string{RoleOperator})
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+operator)
	w = serve(r, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "baker-1", w.Body.String())
}

func TestAuthWithoutVerifierRejects(t *testing.T) {
	r := gin.New()
	r.GET("/admin", NewAuthMiddleware(nil, nil).Auth(), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer anything")
	require.Equal(t, http.StatusUnauthorized, serve(r, req).Code)
}

func TestAuthRejectsRevokedToken(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	sessions := session.NewManager(client)
	r, gen := operatorRouter(t, sessions)

	token, jti, err := gen.GenerateOperatorToken("baker-1", []string{RoleOperator})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	require.Equal(t, http.StatusOK, serve(r, req).Code)

	require.NoError(t, sessions.BlacklistToken(req.Context(), jti, time.Hour))

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	require.Equal(t, http.StatusUnauthorized, serve(r, req).Code)
}

func TestRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	limiter := ratelimit.NewLimiter(client, "feed", 2, time.Minute)
	r := gin.New()
	r.GET("/feed", RateLimit(limiter, zap.NewNop()), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/feed", nil)).Code)
	}
	w := serve(r, httptest.NewRequest(http.MethodGet, "/feed", nil))
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimitFailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	t.Cleanup(func() { client.Close() })

	limiter := ratelimit.NewLimiter(client, "feed", 1, time.Minute)
	r := gin.New()
	r.GET("/feed", RateLimit(limiter, zap.NewNop()), func(c *gin.Context) { c.Status(http.StatusOK) })

	require.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/feed", nil)).Code)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://shop.example.com/"}))
	r.PUT("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	w := serve(r, req)
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "https://shop.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodPut, "/x", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = serve(r, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecoveryAndLogging(t *testing.T) {
	r := gin.New()
	r.Use(LoggingMiddleware(zap.NewNop()), RecoveryMiddleware(zap.NewNop()))
	r.GET("/boom", func(c *gin.Context) { panic("oven on fire") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
}
