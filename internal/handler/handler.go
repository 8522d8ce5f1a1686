package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// parseID reads a numeric path parameter; 0 means absent or malformed.
func parseID(c *gin.Context, name string) uint {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0
	}
	return uint(v)
}
