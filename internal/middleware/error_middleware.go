package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/coursereview/internal/app/models/dto"
	"github.com/yigit/coursereview/internal/pkg/apperrors"
	"github.com/yigit/coursereview/internal/pkg/logger"
)

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	var customErr *apperrors.CustomError
	hasCustom := errors.As(err, &customErr)

	message := func(fallback string) string {
		if hasCustom && customErr.Message != "" {
			return customErr.Message
		}
		return fallback
	}

	switch {
	case errors.Is(err, apperrors.ErrResourceNotFound):
		abortWithError(c, http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, message("Resource not found")))
	case errors.Is(err, apperrors.ErrValidationFailed):
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, message("Validation failed"))
		if hasCustom && customErr.Field() != "" {
			detail.WithField(customErr.Field())
		}
		abortWithError(c, http.StatusBadRequest, detail)
	case errors.Is(err, apperrors.ErrBadRequest):
		abortWithError(c, http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeBadRequest, message("Bad request")))
	case errors.Is(err, apperrors.ErrConflict):
		abortWithError(c, http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeConflict, message("Conflict")))
	case errors.Is(err, apperrors.ErrResourceAlreadyExists):
		abortWithError(c, http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, message("Resource already exists")))
	default:
		// Store details stay in the log.
		logger.Ctx(c.Request.Context()).Error().Err(err).
			Str("path", c.FullPath()).
			Msg("Unhandled error")
		abortWithError(c, http.StatusInternalServerError,
			dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error").WithSeverity(dto.ErrorSeverityCritical))
	}
}

// RespondWithError writes a failed envelope with the given status.
func RespondWithError(c *gin.Context, status int, detail *dto.ErrorDetail) {
	abortWithError(c, status, detail)
}

func abortWithError(c *gin.Context, status int, detail *dto.ErrorDetail) {
	c.AbortWithStatusJSON(status, dto.APIResponse{
		Success:   false,
		Error:     detail,
		Timestamp: time.Now(),
	})
}
