package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func corsRouter(origins ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS(origins...))
	r.GET("/api/vehicles", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	r := corsRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/vehicles", nil)
	req.Header.Set("Origin", "https://fleet.example.com")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	require.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "DELETE")
	require.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
	require.Equal(t, "600", w.Header().Get("Access-Control-Max-Age"))
}

func TestCORSAllowedOrigin(t *testing.T) {
	cases := []struct {
		name    string
		origins []string
		origin  string
		want    string
	}{
		{"any origin", nil, "https://fleet.example.com", "*"},
		{"any origin without header", nil, "", "*"},
		{"listed origin", []string{"https://Admin.example.com/"}, "https://admin.example.com", "https://admin.example.com"},
		{"unlisted origin", []string{"https://admin.example.com"}, "https://other.example.com", ""},
		{"no origin header", []string{"https://admin.example.com"}, "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := corsRouter(tc.origins...)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/vehicles", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			r.ServeHTTP(w, req)

			require.Equal(t, http.StatusOK, w.Code, "disallowed origins are not blocked server-side")
			require.Equal(t, tc.want, w.Header().Get("Access-Control-Allow-Origin"))
			if tc.want != "" && tc.want != "*" {
				require.Equal(t, "Origin", w.Header().Get("Vary"))
			}
		})
	}
}
