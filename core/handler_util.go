package core

import "github.com/gin-gonic/gin"

// respondError sends the unified error payload {"error": "<message>"}.
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}
