package utils

import (
	"log"

	"github.com/gin-gonic/gin"
)

func ErrorLogMiddleware(c *gin.Context) {
	c.Next()
	for _, err := range c.Errors {
		log.Printf("HTTP error: %v, path: %s", err, c.Request.URL.Path)
	}
}
