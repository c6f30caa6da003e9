package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// CacheNoCache disables client caching for the routes behind the handler
const CacheNoCache = 0

// CacheRouter sets the cache-control header on every response passing
// through it. The zero value disables caching.
type CacheRouter struct {
	CacheTime int // max-age in seconds, CacheNoCache to disable
}

func (cr *CacheRouter) Handler() gin.HandlerFunc {
	value := "no-cache"
	if cr.CacheTime != CacheNoCache {
		value = "private, max-age=" + strconv.Itoa(cr.CacheTime)
	}
	return func(c *gin.Context) {
		c.Header("cache-control", value)
		c.Next()
	}
}
