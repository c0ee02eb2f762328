package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/qs3c/workshop_server/config"
)

var testCORSConfig = config.CORSConfig{
	AllowedOrigins: []string{"http://localhost:5173", "https://admin.example.com"},
	AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
	AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
}

func corsRouter(cfg config.CORSConfig, hits *int) *gin.Engine {
	router := gin.New()
	router.Use(CORS(cfg))
	handler := func(c *gin.Context) {
		*hits++
		c.JSON(http.StatusOK, gin.H{})
	}
	router.GET("/api/v1/workshops", handler)
	router.OPTIONS("/api/v1/workshops", handler)
	return router
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		origin      string
		wantStatus  int
		wantOrigin  string
		wantVary    string
		wantHandled bool
	}{
		{"allowed origin", "GET", "http://localhost:5173", http.StatusOK, "http://localhost:5173", "Origin", true},
		{"second allowed origin", "GET", "https://admin.example.com", http.StatusOK, "https://admin.example.com", "Origin", true},
		{"foreign origin", "GET", "https://evil.example.net", http.StatusOK, "", "", true},
		{"same-origin request", "GET", "", http.StatusOK, "", "", true},
		{"preflight", "OPTIONS", "http://localhost:5173", http.StatusNoContent, "http://localhost:5173", "Origin", false},
		{"foreign preflight", "OPTIONS", "https://evil.example.net", http.StatusNoContent, "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits := 0
			router := corsRouter(testCORSConfig, &hits)

			req := httptest.NewRequest(tt.method, "/api/v1/workshops", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantVary, w.Header().Get("Vary"))
			assert.Equal(t, tt.wantHandled, hits == 1)
		})
	}
}

func TestCORS_JoinsMethodsAndHeaders(t *testing.T) {
	hits := 0
	router := corsRouter(testCORSConfig, &hits)

	req := httptest.NewRequest("OPTIONS", "/api/v1/workshops", nil)
	req.Header.Set("Origin", "https://admin.example.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "GET, POST, PUT, PATCH, DELETE, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Authorization, Content-Type, X-Request-ID", w.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))
}

func TestCORS_EmptyConfig(t *testing.T) {
	hits := 0
	router := corsRouter(config.CORSConfig{}, &hits)

	req := httptest.NewRequest("GET", "/api/v1/workshops", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Methods"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Headers"))
	assert.Empty(t, w.Header().Get("Vary"))
}
