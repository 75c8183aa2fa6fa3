package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/yigit/coursereview/internal/app/models"
	"github.com/yigit/coursereview/internal/app/repositories"
	"github.com/yigit/coursereview/internal/pkg/apperrors"
	"github.com/yigit/coursereview/internal/pkg/logger"
	"github.com/yigit/coursereview/internal/pkg/metrics"
	"github.com/yigit/coursereview/internal/pkg/validation"
)

// SubmitStatus is the outcome of a submission that did not fail.
type SubmitStatus string

const (
	SubmitStatusSuccess  SubmitStatus = "success"
	SubmitStatusRejected SubmitStatus = "rejected"
)

// RejectReason explains a rejected submission.
type RejectReason string

const (
	RejectReasonInvalidInput   RejectReason = "invalid_input"
	RejectReasonAlreadyRated   RejectReason = "already_rated"
	RejectReasonCourseNotFound RejectReason = "course_not_found"
)

// SubmitReviewInput is one rating+comment pair.
type SubmitReviewInput struct {
	UserID         models.UserID
	CourseID       int64
	Score          float64
	WouldTakeAgain bool
	Comment        string
}

// SubmitResult describes a submission that completed without a store failure.
// On success the rating and comment are committed and NewAverage holds the course
// average after the insert. On rejection nothing was written.
type SubmitResult struct {
	Status     SubmitStatus
	Reason     RejectReason
	Message    string
	Field      string
	CourseID   int64
	RatingID   int64
	CommentID  int64
	NewAverage *float64
}

// IsSuccess reports whether the review was stored.
func (r *SubmitResult) IsSuccess() bool {
	return r.Status == SubmitStatusSuccess
}

// DeleteResult is returned after a rating is removed.
type DeleteResult struct {
	CourseID   int64
	NewAverage *float64
}

// ReviewService defines the interface for review-related operations
type ReviewService interface {
	// SubmitReview stores a rating and its comment atomically and refreshes the course
	// average in the same transaction. Business rejections are reported in the result;
	// a non-nil error means the store failed and nothing was committed.
	SubmitReview(ctx context.Context, input SubmitReviewInput) (*SubmitResult, error)
	// DeleteReview removes a rating, and optionally a comment on the same course,
	// and refreshes the course average in the same transaction.
	DeleteReview(ctx context.Context, ratingID int64, commentID *int64) (*DeleteResult, error)
	// DeleteComment removes a comment. Ratings and averages are not affected.
	DeleteComment(ctx context.Context, commentID int64) error
}

type reviewServiceImpl struct {
	store       Transactor
	ratingRepo  *repositories.RatingRepository
	commentRepo *repositories.CommentRepository
	courseRepo  *repositories.CourseRepository
	aggregate   AggregateService
	rules       ReviewRules
}

// NewReviewService creates a new review service instance
func NewReviewService(
	store Transactor,
	repos *repositories.Repositories,
	aggregate AggregateService,
	rules ReviewRules,
) ReviewService {
	return &reviewServiceImpl{
		store:       store,
		ratingRepo:  repos.RatingRepository,
		commentRepo: repos.CommentRepository,
		courseRepo:  repos.CourseRepository,
		aggregate:   aggregate,
		rules:       rules,
	}
}

// rejection aborts a transaction without turning the outcome into a failure.
type rejection struct {
	reason  RejectReason
	message string
}

func (r *rejection) Error() string {
	return string(r.reason) + ": " + r.message
}

func reject(reason RejectReason, message string) error {
	return &rejection{reason: reason, message: message}
}

// validateSubmission checks the input in order: identifiers, score, comment.
func (s *reviewServiceImpl) validateSubmission(input SubmitReviewInput) error {
	if input.UserID <= 0 {
		return apperrors.NewValidationError("userId", "user ID must be positive")
	}
	if input.CourseID <= 0 {
		return apperrors.NewValidationError("courseId", "course ID must be positive")
	}

	if !validation.NewFloatValidation(input.Score).Between(s.rules.MinScore, s.rules.MaxScore).Validate() {
		return apperrors.NewValidationError("score",
			fmt.Sprintf("score must be between %.1f and %.1f", s.rules.MinScore, s.rules.MaxScore))
	}

	comment := validation.NewStringValidation(input.Comment).
		WithMinLength(s.rules.MinCommentLength).
		WithMaxLength(s.rules.MaxCommentLength)
	if !comment.Validate() {
		if comment.Length() < s.rules.MinCommentLength {
			return apperrors.NewValidationError("comment",
				fmt.Sprintf("comment must be at least %d characters", s.rules.MinCommentLength))
		}
		return apperrors.NewValidationError("comment",
			fmt.Sprintf("comment must be at most %d characters", s.rules.MaxCommentLength))
	}

	return nil
}

func (s *reviewServiceImpl) SubmitReview(ctx context.Context, input SubmitReviewInput) (*SubmitResult, error) {
	log := logger.Ctx(ctx).With().
		Int64("userID", int64(input.UserID)).
		Int64("courseID", input.CourseID).
		Logger()

	if err := s.validateSubmission(input); err != nil {
		result := &SubmitResult{
			Status:   SubmitStatusRejected,
			Reason:   RejectReasonInvalidInput,
			Message:  err.Error(),
			CourseID: input.CourseID,
		}
		var customErr *apperrors.CustomError
		if errors.As(err, &customErr) {
			result.Field = customErr.Field()
		}
		metrics.ReviewSubmissions.WithLabelValues(metrics.OutcomeRejected, string(result.Reason)).Inc()
		log.Info().Str("reason", string(result.Reason)).Msg("Review rejected")
		return result, nil
	}

	rating := &models.Rating{
		CourseID:       input.CourseID,
		UserID:         input.UserID,
		Score:          input.Score,
		WouldTakeAgain: input.WouldTakeAgain,
	}
	comment := &models.Comment{
		CourseID: input.CourseID,
		UserID:   input.UserID,
		Content:  strings.TrimSpace(input.Comment),
	}
	var average *float64

	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.courseRepo.LockForUpdate(ctx, tx, input.CourseID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return reject(RejectReasonCourseNotFound, apperrors.ErrCourseNotFound.Error())
			}
			return err
		}

		exists, err := s.ratingRepo.Exists(ctx, tx, input.UserID, input.CourseID)
		if err != nil {
			return err
		}
		if exists {
			return reject(RejectReasonAlreadyRated, apperrors.ErrAlreadyRated.Error())
		}

		if err := s.ratingRepo.Insert(ctx, tx, rating); err != nil {
			switch {
			case errors.Is(err, repositories.ErrRatingAlreadyExists):
				return reject(RejectReasonAlreadyRated, apperrors.ErrAlreadyRated.Error())
			case errors.Is(err, repositories.ErrReferenceMissing):
				return reject(RejectReasonCourseNotFound, apperrors.ErrCourseNotFound.Error())
			}
			return err
		}

		if err := s.commentRepo.Insert(ctx, tx, comment); err != nil {
			return err
		}

		average, err = s.aggregate.Recompute(ctx, tx, input.CourseID)
		return err
	})

	if err != nil {
		var rej *rejection
		if errors.As(err, &rej) {
			metrics.ReviewSubmissions.WithLabelValues(metrics.OutcomeRejected, string(rej.reason)).Inc()
			log.Info().Str("reason", string(rej.reason)).Msg("Review rejected")
			return &SubmitResult{
				Status:   SubmitStatusRejected,
				Reason:   rej.reason,
				Message:  rej.message,
				CourseID: input.CourseID,
			}, nil
		}

		metrics.ReviewSubmissions.WithLabelValues(metrics.OutcomeFailure, metrics.ReasonNone).Inc()
		log.Error().Err(err).Msg("Review submission failed")
		return nil, fmt.Errorf("error submitting review: %w", err)
	}

	metrics.ReviewSubmissions.WithLabelValues(metrics.OutcomeSuccess, metrics.ReasonNone).Inc()
	log.Info().Int64("ratingID", rating.ID).Int64("commentID", comment.ID).Msg("Review submitted")

	return &SubmitResult{
		Status:     SubmitStatusSuccess,
		CourseID:   input.CourseID,
		RatingID:   rating.ID,
		CommentID:  comment.ID,
		NewAverage: average,
	}, nil
}

func (s *reviewServiceImpl) DeleteReview(ctx context.Context, ratingID int64, commentID *int64) (*DeleteResult, error) {
	if ratingID <= 0 {
		metrics.ReviewDeletions.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, apperrors.NewValidationError("ratingId", "rating ID must be positive")
	}
	if commentID != nil && *commentID <= 0 {
		metrics.ReviewDeletions.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, apperrors.NewValidationError("commentId", "comment ID must be positive")
	}

	result := &DeleteResult{}
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		rating, err := s.ratingRepo.GetByID(ctx, tx, ratingID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return apperrors.ErrRatingNotFound
			}
			return err
		}
		result.CourseID = rating.CourseID

		if err := s.courseRepo.LockForUpdate(ctx, tx, rating.CourseID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return apperrors.ErrCourseNotFound
			}
			return err
		}

		if commentID != nil {
			comment, err := s.commentRepo.GetByID(ctx, tx, *commentID)
			if err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return apperrors.ErrCommentNotFound
				}
				return err
			}
			if comment.CourseID != rating.CourseID {
				return apperrors.NewValidationError("commentId", "comment does not belong to the rated course")
			}
		}

		if err := s.ratingRepo.Delete(ctx, tx, ratingID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return apperrors.ErrRatingNotFound
			}
			return err
		}

		if commentID != nil {
			if err := s.commentRepo.Delete(ctx, tx, *commentID); err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return apperrors.ErrCommentNotFound
				}
				return err
			}
		}

		result.NewAverage, err = s.aggregate.Recompute(ctx, tx, rating.CourseID)
		return err
	})

	if err != nil {
		if apperrors.Is(err, apperrors.ErrResourceNotFound, apperrors.ErrValidationFailed) {
			metrics.ReviewDeletions.WithLabelValues(metrics.OutcomeRejected).Inc()
			return nil, err
		}
		metrics.ReviewDeletions.WithLabelValues(metrics.OutcomeFailure).Inc()
		logger.Ctx(ctx).Error().Err(err).Int64("ratingID", ratingID).Msg("Review deletion failed")
		return nil, fmt.Errorf("error deleting review: %w", err)
	}

	metrics.ReviewDeletions.WithLabelValues(metrics.OutcomeSuccess).Inc()
	logger.Ctx(ctx).Info().
		Int64("ratingID", ratingID).
		Int64("courseID", result.CourseID).
		Msg("Review deleted")

	return result, nil
}

func (s *reviewServiceImpl) DeleteComment(ctx context.Context, commentID int64) error {
	if commentID <= 0 {
		return apperrors.NewValidationError("commentId", "comment ID must be positive")
	}

	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.commentRepo.Delete(ctx, tx, commentID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return apperrors.ErrCommentNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return err
		}
		return fmt.Errorf("error deleting comment: %w", err)
	}

	logger.Ctx(ctx).Info().Int64("commentID", commentID).Msg("Comment deleted")
	return nil
}
