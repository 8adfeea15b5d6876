package controllers

import "github.com/gin-gonic/gin"

// fail writes the uniform error envelope every endpoint uses.
func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error":   message,
	})
}
