package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestCacheRouterHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name      string
		cacheTime int
		want      string
	}{
		{"no cache", CacheNoCache, "no-cache"},
		{"one minute", 60, "private, max-age=60"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/", (&CacheRouter{CacheTime: tt.cacheTime}).Handler(), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})
			resp := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/", nil)
			router.ServeHTTP(resp, req)
			if got := resp.Header().Get("cache-control"); got != tt.want {
				t.Errorf("cache-control = %q, want %q", got, tt.want)
			}
		})
	}
}
