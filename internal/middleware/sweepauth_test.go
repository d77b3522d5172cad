package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func sweepAuthRouter(token string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/internal/sweep", SweepAuth(token), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r
}

func TestSweepAuth(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		header     string
		wantStatus int
	}{
		{name: "valid token", configured: "secret", header: "Bearer secret", wantStatus: http.StatusOK},
		{name: "missing header", configured: "secret", header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong token", configured: "secret", header: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", configured: "secret", header: "Basic secret", wantStatus: http.StatusUnauthorized},
		{name: "not configured", configured: "", header: "Bearer secret", wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := sweepAuthRouter(tt.configured)
			req := httptest.NewRequest(http.MethodPost, "/internal/sweep", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
