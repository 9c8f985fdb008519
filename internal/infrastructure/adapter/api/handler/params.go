package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	errs "github.com/amirhossein-jamali/credits-ledger/internal/domain/error"
)

// pathID parses a positive numeric path parameter
func pathID(c *gin.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errs.ErrInvalidRequest
	}
	return id, nil
}

// queryLimit reads ?limit=; absent or malformed means the use case default
func queryLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		return 0
	}
	return limit
}

// bindJSON binds the body, reporting binding failures as validation errors
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		_ = c.Error(errs.ErrInvalidRequest).SetMeta(err.Error())
		return false
	}
	return true
}
