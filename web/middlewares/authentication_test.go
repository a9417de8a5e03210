package middlewares

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"shiftinsight.com/shiftinsight/security"
)

var rawSecret = []byte("0123456789abcdef0123456789abcdef")

func token(t *testing.T, role string, ttl time.Duration) string {
	t.Helper()
	tok, err := security.CreateIdentityToken(&security.Operator{UserName: "jane", Role: role},
		base64.StdEncoding.EncodeToString(rawSecret), ttl)
	require.NoError(t, err)
	return tok
}

func router() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", Authentication(rawSecret), func(c *gin.Context) {
		claims, _ := Claims(c)
		c.String(http.StatusOK, claims.UniqueName)
	})
	r.GET("/admin", Authentication(rawSecret), RequireRole(security.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestAuthentication(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		header string
		cookie string
		want   int
	}{
		{"bearer token", "/me", "Bearer " + token(t, security.RoleViewer, time.Hour), "", http.StatusOK},
		{"cookie", "/me", "", token(t, security.RoleViewer, time.Hour), http.StatusOK},
		{"no credentials", "/me", "", "", http.StatusUnauthorized},
		{"wrong scheme", "/me", "Basic abc", "", http.StatusUnauthorized},
		{"expired", "/me", "Bearer " + token(t, security.RoleAdmin, -time.Minute), "", http.StatusUnauthorized},
		{"admin allowed", "/admin", "Bearer " + token(t, security.RoleAdmin, time.Hour), "", http.StatusNoContent},
		{"viewer forbidden", "/admin", "Bearer " + token(t, security.RoleViewer, time.Hour), "", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: CookieName, Value: tt.cookie})
			}
			rr := httptest.NewRecorder()
			router().ServeHTTP(rr, req)

			assert.Equal(t, tt.want, rr.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, "jane", rr.Body.String())
			}
		})
	}
}
