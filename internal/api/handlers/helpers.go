package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
)

func writeError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }
