package utils

import "github.com/gin-gonic/gin"

// UserIDKey is the gin context key holding the authenticated user id
const UserIDKey = "user_id"

// UserIDHeader carries the user id verified by the upstream auth gateway
const UserIDHeader = "X-User-ID"

// UserID returns the authenticated user of the request, or "" for a guest
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
