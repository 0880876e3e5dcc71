// Package server exposes the verdict pipeline over HTTP: one generation
// endpoint plus health and metrics.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes surfaced to callers.
const (
	codeInvalidRequest    = "INVALID_REQUEST"
	codeInjectionDetected = "INJECTION_DETECTED"
	codeInternal          = "INTERNAL_ERROR"
)

// ok sends the success envelope.
func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

// fail sends the error envelope and aborts the handler chain.
func fail(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error":   gin.H{"code": code, "message": message},
	})
}
