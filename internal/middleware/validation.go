package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/coursereview/internal/app/models/dto"
)

// BindJSON binds and validates the request body into obj. On failure it writes a 400
// response listing the failing fields and returns false.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		RespondWithError(c, http.StatusBadRequest, dto.HandleValidationError(err))
		return false
	}
	return true
}

// BindQuery binds query parameters into obj.
func BindQuery(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		RespondWithError(c, http.StatusBadRequest, dto.HandleValidationError(err))
		return false
	}
	return true
}

// ParseIDParam reads a positive int64 path parameter.
func ParseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+name).
			WithField(name).
			WithDetails(name + " must be a positive number")
		RespondWithError(c, http.StatusBadRequest, detail)
		return 0, false
	}
	return id, true
}
