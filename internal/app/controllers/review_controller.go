package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/coursereview/internal/app/models"
	"github.com/yigit/coursereview/internal/app/models/dto"
	"github.com/yigit/coursereview/internal/app/services"
	"github.com/yigit/coursereview/internal/middleware"
)

// ReviewController handles rating and comment submissions
type ReviewController struct {
	reviewService services.ReviewService
}

// NewReviewController creates a new ReviewController
func NewReviewController(reviewService services.ReviewService) *ReviewController {
	return &ReviewController{
		reviewService: reviewService,
	}
}

// rejectionStatus maps a rejection reason to its HTTP status and error code.
func rejectionStatus(reason services.RejectReason) (int, dto.ErrorCode) {
	switch reason {
	case services.RejectReasonAlreadyRated:
		return http.StatusConflict, dto.ErrorCodeAlreadyRated
	case services.RejectReasonCourseNotFound:
		return http.StatusNotFound, dto.ErrorCodeCourseNotFound
	default:
		return http.StatusBadRequest, dto.ErrorCodeInvalidInput
	}
}

// SubmitReview stores a rating and comment for a course
// @Summary Submit a review
// @Description Stores a rating and its comment atomically and returns the new course average
// @Tags reviews
// @Accept json
// @Produce json
// @Param request body dto.SubmitReviewRequest true "Review"
// @Success 201 {object} dto.APIResponse{data=dto.SubmitReviewResponse} "Review submitted"
// @Failure 400 {object} dto.APIResponse "Invalid input"
// @Failure 404 {object} dto.APIResponse "Course not found"
// @Failure 409 {object} dto.APIResponse "Course already rated by this user"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /reviews [post]
func (c *ReviewController) SubmitReview(ctx *gin.Context) {
	var req dto.SubmitReviewRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	result, err := c.reviewService.SubmitReview(ctx.Request.Context(), services.SubmitReviewInput{
		UserID:         models.UserID(req.UserID),
		CourseID:       req.CourseID,
		Score:          *req.Score,
		WouldTakeAgain: *req.WouldTakeAgain,
		Comment:        req.Comment,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if !result.IsSuccess() {
		status, code := rejectionStatus(result.Reason)
		detail := dto.NewErrorDetail(code, result.Message).WithSeverity(dto.ErrorSeverityWarning)
		if result.Field != "" {
			detail.WithField(result.Field)
		}
		middleware.RespondWithError(ctx, status, detail)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.SubmitReviewResponse{
		RatingID:      result.RatingID,
		CommentID:     result.CommentID,
		CourseID:      result.CourseID,
		AverageRating: result.NewAverage,
	}, "Review submitted successfully"))
}

// DeleteReview removes a rating and, optionally, a comment on the same course
// @Summary Delete a review
// @Tags reviews
// @Produce json
// @Param ratingId path int true "Rating ID"
// @Param commentId query int false "Comment ID to delete with the rating"
// @Success 200 {object} dto.APIResponse{data=dto.DeleteReviewResponse} "Review deleted"
// @Failure 400 {object} dto.APIResponse "Invalid request"
// @Failure 404 {object} dto.APIResponse "Rating or comment not found"
// @Router /reviews/{ratingId} [delete]
func (c *ReviewController) DeleteReview(ctx *gin.Context) {
	ratingID, ok := middleware.ParseIDParam(ctx, "ratingId")
	if !ok {
		return
	}

	var commentID *int64
	if raw := ctx.Query("commentId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid commentId").
				WithField("commentId").
				WithDetails("commentId must be a valid number")
			middleware.RespondWithError(ctx, http.StatusBadRequest, detail)
			return
		}
		commentID = &id
	}

	result, err := c.reviewService.DeleteReview(ctx.Request.Context(), ratingID, commentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Success: true,
		Message: "Review deleted successfully",
		Data: dto.DeleteReviewResponse{
			CourseID:      result.CourseID,
			AverageRating: result.NewAverage,
		},
		Timestamp: time.Now(),
	})
}

// DeleteComment removes a single comment
// @Summary Delete a comment
// @Tags reviews
// @Param commentId path int true "Comment ID"
// @Success 204 "Comment deleted"
// @Failure 404 {object} dto.APIResponse "Comment not found"
// @Router /comments/{commentId} [delete]
func (c *ReviewController) DeleteComment(ctx *gin.Context) {
	commentID, ok := middleware.ParseIDParam(ctx, "commentId")
	if !ok {
		return
	}

	if err := c.reviewService.DeleteComment(ctx.Request.Context(), commentID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
