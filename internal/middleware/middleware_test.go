package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"crosschain-hub/internal/config"
	"crosschain-hub/internal/handlers"
	"crosschain-hub/internal/types"

	"github.com/gin-gonic/gin"
	"github.com/pquerna/otp/totp"
	"github.com/sirupsen/logrus"
)

const testTOTPSecret = "JBSWY3DPEHPK3PXP"

func init() {
	gin.SetMode(gin.TestMode)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLocalhostOnly(t *testing.T) {
	guard := NewLocalhostOnly(quietLogger(), []string{"10.1.2.3", "192.168.0.0/16", "not-an-ip", "10.0.0.0/33"})
	r := gin.New()
	r.GET("/admin", guard.Restrict(), func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		remote string
		want   int
	}{
		{"127.0.0.1:5000", http.StatusOK},
		{"[::1]:5000", http.StatusOK},
		{"10.1.2.3:5000", http.StatusOK},
		{"192.168.40.7:5000", http.StatusOK},
		{"10.1.2.4:5000", http.StatusForbidden},
		{"8.8.8.8:5000", http.StatusForbidden},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.RemoteAddr = tt.remote
		if w := serve(r, req); w.Code != tt.want {
			t.Fatalf("%s: expected %d, got %d", tt.remote, tt.want, w.Code)
		}
	}
}

func TestRequireTOTP(t *testing.T) {
	r := gin.New()
	r.GET("/admin", NewAdminAuthMiddleware(quietLogger(), testTOTPSecret).RequireTOTP(), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	if w := serve(r, req); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without code, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set(AdminTOTPHeader, "not-a-code")
	if w := serve(r, req); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with malformed code, got %d", w.Code)
	}

	code, err := totp.GenerateCode(testTOTPSecret, time.Now())
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set(AdminTOTPHeader, code)
	if w := serve(r, req); w.Code != http.StatusOK {
		t.Fatalf("expected 200 with valid code, got %d", w.Code)
	}
}

func TestRequireTOTPDisabledWithoutSecret(t *testing.T) {
	r := gin.New()
	r.GET("/admin", NewAdminAuthMiddleware(quietLogger(), "").RequireTOTP(), func(c *gin.Context) { c.Status(http.StatusOK) })

	if w := serve(r, httptest.NewRequest(http.MethodGet, "/admin", nil)); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS(config.CORSConfig{AllowedOrigins: []string{"https://app.example"}, AllowCredentials: true}))
	r.GET("/hub", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/hub", nil)
	req.Header.Set("Origin", "https://app.example")
	w := serve(r, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example" {
		t.Fatalf("expected origin echoed, got %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Fatalf("expected credentials allowed, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/hub", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = serve(r, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected unknown origin refused, got %q", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/hub", nil)
	req.Header.Set("Origin", "https://app.example")
	if w := serve(r, req); w.Code != http.StatusNoContent {
		t.Fatalf("expected preflight 204, got %d", w.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	secret := "test-secret"
	identity := types.BytesToAddress(bytes.Repeat([]byte{0xa1}, 32))
	token, _, err := handlers.GenerateJWTToken([]byte(secret), "test", identity, time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	auth := NewAuthMiddleware(quietLogger(), secret)
	echo := func(c *gin.Context) {
		v, ok := c.Get(handlers.IdentityKey)
		if !ok {
			c.JSON(http.StatusOK, gin.H{"identity": ""})
			return
		}
		c.JSON(http.StatusOK, gin.H{"identity": v.(types.Address).Hex()})
	}
	r := gin.New()
	r.GET("/required", auth.RequireAuth(), echo)
	r.GET("/optional", auth.OptionalAuth(), echo)

	identityOf := func(w *httptest.ResponseRecorder) string {
		var body struct {
			Identity string `json:"identity"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return body.Identity
	}

	req := httptest.NewRequest(http.MethodGet, "/required", nil)
	if w := serve(r, req); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/required", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := serve(r, req)
	if w.Code != http.StatusOK || identityOf(w) != identity.Hex() {
		t.Fatalf("expected identity %s, got %d %s", identity.Hex(), w.Code, w.Body.String())
	}

	forged, _, err := handlers.GenerateJWTToken([]byte("other-secret"), "test", identity, time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	req = httptest.NewRequest(http.MethodGet, "/required", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	if w := serve(r, req); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for foreign signature, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/optional?token="+token, nil)
	if w := serve(r, req); identityOf(w) != identity.Hex() {
		t.Fatalf("expected query token accepted, got %s", w.Body.String())
	}
	req = httptest.NewRequest(http.MethodGet, "/optional", nil)
	if w := serve(r, req); w.Code != http.StatusOK || identityOf(w) != "" {
		t.Fatalf("expected anonymous request to pass, got %d %s", w.Code, w.Body.String())
	}
}
