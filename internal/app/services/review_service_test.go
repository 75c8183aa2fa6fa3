package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"github.com/yigit/coursereview/internal/app/models"
	"github.com/yigit/coursereview/internal/app/repositories"
	"github.com/yigit/coursereview/internal/db"
	"github.com/yigit/coursereview/internal/pkg/apperrors"
	"github.com/yigit/coursereview/internal/pkg/metrics"
)

const validComment = "Clear lectures and fair exams"

type ReviewServiceSuite struct {
	suite.Suite
	mock    pgxmock.PgxPoolIface
	service ReviewService
	ctx     context.Context
}

func TestReviewServiceSuite(t *testing.T) {
	suite.Run(t, new(ReviewServiceSuite))
}

func (s *ReviewServiceSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	s.Require().NoError(err)
	s.mock = mock
	s.ctx = context.Background()

	repos := repositories.NewRepositories()
	aggregate := NewAggregateService(repos.RatingRepository, repos.CourseRepository)
	s.service = NewReviewService(db.New(mock), repos, aggregate, DefaultReviewRules())
}

func (s *ReviewServiceSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
	s.mock.Close()
}

func (s *ReviewServiceSuite) validInput() SubmitReviewInput {
	return SubmitReviewInput{
		UserID:         42,
		CourseID:       7,
		Score:          4,
		WouldTakeAgain: true,
		Comment:        validComment,
	}
}

func (s *ReviewServiceSuite) expectLock(courseID int64) {
	s.mock.ExpectQuery(`SELECT id FROM courses WHERE id = \$1 FOR UPDATE`).
		WithArgs(courseID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(courseID))
}

func (s *ReviewServiceSuite) expectExists(userID, courseID int64, exists bool) {
	s.mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(userID, courseID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(exists))
}

func (s *ReviewServiceSuite) expectRecompute(courseID int64, average interface{}, scores ...float64) {
	s.mock.ExpectQuery(`SELECT score FROM ratings WHERE course_id = \$1`).
		WithArgs(courseID).
		WillReturnRows(scoreRows(scores...))
	s.mock.ExpectExec(`UPDATE courses SET average_rating = \$1 WHERE id = \$2`).
		WithArgs(average, courseID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
}

func (s *ReviewServiceSuite) TestSubmitReview_Success() {
	now := time.Now()
	in := s.validInput()

	s.mock.ExpectBegin()
	s.expectLock(7)
	s.expectExists(42, 7, false)
	s.mock.ExpectQuery(`INSERT INTO ratings`).
		WithArgs(int64(7), int64(42), 4.0, true).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(100), now))
	s.mock.ExpectQuery(`INSERT INTO comments`).
		WithArgs(int64(7), int64(42), validComment).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(200), now))
	s.expectRecompute(7, 4.0, 4, 5, 3)
	s.mock.ExpectCommit()

	result, err := s.service.SubmitReview(s.ctx, in)

	s.Require().NoError(err)
	s.True(result.IsSuccess())
	s.Equal(int64(100), result.RatingID)
	s.Equal(int64(200), result.CommentID)
	s.Require().NotNil(result.NewAverage)
	s.InDelta(4.0, *result.NewAverage, 1e-9)
}

func (s *ReviewServiceSuite) TestSubmitReview_StoresTrimmedComment() {
	now := time.Now()
	in := s.validInput()
	in.Comment = "   " + validComment + "\n"

	s.mock.ExpectBegin()
	s.expectLock(7)
	s.expectExists(42, 7, false)
	s.mock.ExpectQuery(`INSERT INTO ratings`).
		WithArgs(int64(7), int64(42), 4.0, true).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), now))
	s.mock.ExpectQuery(`INSERT INTO comments`).
		WithArgs(int64(7), int64(42), validComment).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(2), now))
	s.expectRecompute(7, 4.0, 4)
	s.mock.ExpectCommit()

	result, err := s.service.SubmitReview(s.ctx, in)

	s.Require().NoError(err)
	s.True(result.IsSuccess())
}

func (s *ReviewServiceSuite) TestSubmitReview_CommentLengthThreshold() {
	now := time.Now()

	tenChars := s.validInput()
	tenChars.Comment = strings.Repeat("a", 10)
	result, err := s.service.SubmitReview(s.ctx, tenChars)
	s.Require().NoError(err)
	s.Equal(SubmitStatusRejected, result.Status)
	s.Equal(RejectReasonInvalidInput, result.Reason)
	s.Equal("comment", result.Field)

	// Padding does not count toward the minimum.
	padded := s.validInput()
	padded.Comment = "  " + strings.Repeat("a", 10) + "  "
	result, err = s.service.SubmitReview(s.ctx, padded)
	s.Require().NoError(err)
	s.Equal(RejectReasonInvalidInput, result.Reason)

	elevenChars := s.validInput()
	elevenChars.Comment = strings.Repeat("é", 11)
	s.mock.ExpectBegin()
	s.expectLock(7)
	s.expectExists(42, 7, false)
	s.mock.ExpectQuery(`INSERT INTO ratings`).
		WithArgs(int64(7), int64(42), 4.0, true).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), now))
	s.mock.ExpectQuery(`INSERT INTO comments`).
		WithArgs(int64(7), int64(42), elevenChars.Comment).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), now))
	s.expectRecompute(7, 4.0, 4)
	s.mock.ExpectCommit()

	result, err = s.service.SubmitReview(s.ctx, elevenChars)
	s.Require().NoError(err)
	s.True(result.IsSuccess())
}

func (s *ReviewServiceSuite) TestSubmitReview_InvalidInputTouchesNothing() {
	tests := []struct {
		name  string
		mod   func(in *SubmitReviewInput)
		field string
	}{
		{name: "score below range", mod: func(in *SubmitReviewInput) { in.Score = 0.5 }, field: "score"},
		{name: "score above range", mod: func(in *SubmitReviewInput) { in.Score = 5.5 }, field: "score"},
		{name: "score checked before comment", mod: func(in *SubmitReviewInput) { in.Score = 9; in.Comment = "" }, field: "score"},
		{name: "comment too long", mod: func(in *SubmitReviewInput) { in.Comment = strings.Repeat("x", 5001) }, field: "comment"},
		{name: "eleven characters only with surrounding spaces", mod: func(in *SubmitReviewInput) {
			in.Comment = " " + strings.Repeat("a", 9) + " "
		}, field: "comment"},
		{name: "missing user", mod: func(in *SubmitReviewInput) { in.UserID = 0 }, field: "userId"},
		{name: "missing course", mod: func(in *SubmitReviewInput) { in.CourseID = -1 }, field: "courseId"},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			in := s.validInput()
			tt.mod(&in)

			result, err := s.service.SubmitReview(s.ctx, in)

			s.Require().NoError(err)
			s.Equal(SubmitStatusRejected, result.Status)
			s.Equal(RejectReasonInvalidInput, result.Reason)
			s.Equal(tt.field, result.Field)
			s.NotEmpty(result.Message)
		})
	}
}

func (s *ReviewServiceSuite) TestSubmitReview_BoundaryScoresAccepted() {
	now := time.Now()
	for i, score := range []float64{1.0, 5.0} {
		userID := int64(50 + i)
		in := s.validInput()
		in.UserID = models.UserID(userID)
		in.Score = score

		s.mock.ExpectBegin()
		s.expectLock(7)
		s.expectExists(userID, 7, false)
		s.mock.ExpectQuery(`INSERT INTO ratings`).
			WithArgs(int64(7), userID, score, true).
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(i+1), now))
		s.mock.ExpectQuery(`INSERT INTO comments`).
			WithArgs(int64(7), userID, validComment).
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(i+1), now))
		s.expectRecompute(7, score, score)
		s.mock.ExpectCommit()

		result, err := s.service.SubmitReview(s.ctx, in)
		s.Require().NoError(err)
		s.True(result.IsSuccess(), "score %v", score)
	}
}

func (s *ReviewServiceSuite) TestSubmitReview_AlreadyRated() {
	s.mock.ExpectBegin()
	s.expectLock(7)
	s.expectExists(42, 7, true)
	s.mock.ExpectRollback()

	result, err := s.service.SubmitReview(s.ctx, s.validInput())

	s.Require().NoError(err)
	s.Equal(SubmitStatusRejected, result.Status)
	s.Equal(RejectReasonAlreadyRated, result.Reason)
}

func (s *ReviewServiceSuite) TestSubmitReview_UniqueViolationMapsToAlreadyRated() {
	s.mock.ExpectBegin()
	s.expectLock(7)
	s.expectExists(42, 7, false)
	s.mock.ExpectQuery(`INSERT INTO ratings`).
		WithArgs(int64(7), int64(42), 4.0, true).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: repositories.RatingUserCourseConstraint})
	s.mock.ExpectRollback()

	result, err := s.service.SubmitReview(s.ctx, s.validInput())

	s.Require().NoError(err)
	s.Equal(RejectReasonAlreadyRated, result.Reason)
}

func (s *ReviewServiceSuite) TestSubmitReview_CourseNotFound() {
	s.mock.ExpectBegin()
	s.mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(int64(7)).
		WillReturnError(pgx.ErrNoRows)
	s.mock.ExpectRollback()

	result, err := s.service.SubmitReview(s.ctx, s.validInput())

	s.Require().NoError(err)
	s.Equal(RejectReasonCourseNotFound, result.Reason)
}

func (s *ReviewServiceSuite) TestSubmitReview_CommentFailureRollsBackRating() {
	now := time.Now()

	s.mock.ExpectBegin()
	s.expectLock(7)
	s.expectExists(42, 7, false)
	s.mock.ExpectQuery(`INSERT INTO ratings`).
		WithArgs(int64(7), int64(42), 4.0, true).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(100), now))
	s.mock.ExpectQuery(`INSERT INTO comments`).
		WithArgs(int64(7), int64(42), validComment).
		WillReturnError(errors.New("disk full"))
	s.mock.ExpectRollback()

	result, err := s.service.SubmitReview(s.ctx, s.validInput())

	s.Nil(result)
	s.ErrorContains(err, "disk full")
}

func (s *ReviewServiceSuite) TestSubmitReview_CommitFailureIsFailure() {
	now := time.Now()

	s.mock.ExpectBegin()
	s.expectLock(7)
	s.expectExists(42, 7, false)
	s.mock.ExpectQuery(`INSERT INTO ratings`).
		WithArgs(int64(7), int64(42), 4.0, true).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(100), now))
	s.mock.ExpectQuery(`INSERT INTO comments`).
		WithArgs(int64(7), int64(42), validComment).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(200), now))
	s.expectRecompute(7, 4.0, 4)
	s.mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))
	s.mock.ExpectRollback()

	result, err := s.service.SubmitReview(s.ctx, s.validInput())

	s.Nil(result)
	s.ErrorContains(err, "failed to commit transaction")
}

func (s *ReviewServiceSuite) TestDeleteReview_RecomputesInSameTransaction() {
	now := time.Now()

	s.mock.ExpectBegin()
	s.mock.ExpectQuery(`FROM ratings WHERE id = \$1`).
		WithArgs(int64(2)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "course_id", "user_id", "score", "would_take_again", "created_at"}).
			AddRow(int64(2), int64(7), int64(43), 5.0, true, now))
	s.expectLock(7)
	s.mock.ExpectExec(`DELETE FROM ratings WHERE id = \$1`).
		WithArgs(int64(2)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	s.expectRecompute(7, 3.5, 4, 3)
	s.mock.ExpectCommit()

	result, err := s.service.DeleteReview(s.ctx, 2, nil)

	s.Require().NoError(err)
	s.Equal(int64(7), result.CourseID)
	s.Require().NotNil(result.NewAverage)
	s.InDelta(3.5, *result.NewAverage, 1e-9)
}

func (s *ReviewServiceSuite) TestDeleteReview_LastRatingClearsAverage() {
	now := time.Now()
	commentID := int64(9)

	s.mock.ExpectBegin()
	s.mock.ExpectQuery(`FROM ratings WHERE id = \$1`).
		WithArgs(int64(2)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "course_id", "user_id", "score", "would_take_again", "created_at"}).
			AddRow(int64(2), int64(7), int64(43), 5.0, true, now))
	s.expectLock(7)
	s.mock.ExpectQuery(`FROM comments WHERE id = \$1`).
		WithArgs(commentID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "course_id", "user_id", "content", "created_at"}).
			AddRow(commentID, int64(7), int64(43), validComment, now))
	s.mock.ExpectExec(`DELETE FROM ratings`).
		WithArgs(int64(2)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	s.mock.ExpectExec(`DELETE FROM comments`).
		WithArgs(commentID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	s.expectRecompute(7, nil)
	s.mock.ExpectCommit()

	result, err := s.service.DeleteReview(s.ctx, 2, &commentID)

	s.Require().NoError(err)
	s.Nil(result.NewAverage)
}

func (s *ReviewServiceSuite) TestDeleteReview_CommentFromOtherCourse() {
	now := time.Now()
	commentID := int64(9)

	s.mock.ExpectBegin()
	s.mock.ExpectQuery(`FROM ratings WHERE id = \$1`).
		WithArgs(int64(2)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "course_id", "user_id", "score", "would_take_again", "created_at"}).
			AddRow(int64(2), int64(7), int64(43), 5.0, true, now))
	s.expectLock(7)
	s.mock.ExpectQuery(`FROM comments WHERE id = \$1`).
		WithArgs(commentID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "course_id", "user_id", "content", "created_at"}).
			AddRow(commentID, int64(8), int64(43), validComment, now))
	s.mock.ExpectRollback()

	_, err := s.service.DeleteReview(s.ctx, 2, &commentID)

	s.ErrorIs(err, apperrors.ErrValidationFailed)
}

func (s *ReviewServiceSuite) TestDeleteReview_NotFound() {
	s.mock.ExpectBegin()
	s.mock.ExpectQuery(`FROM ratings WHERE id = \$1`).
		WithArgs(int64(2)).
		WillReturnError(pgx.ErrNoRows)
	s.mock.ExpectRollback()

	_, err := s.service.DeleteReview(s.ctx, 2, nil)

	s.ErrorIs(err, apperrors.ErrRatingNotFound)
	s.ErrorIs(err, apperrors.ErrResourceNotFound)
}

func (s *ReviewServiceSuite) TestDeleteReview_OutcomeMetrics() {
	rejected := metrics.ReviewDeletions.WithLabelValues(metrics.OutcomeRejected)
	failed := metrics.ReviewDeletions.WithLabelValues(metrics.OutcomeFailure)
	rejectedBefore := testutil.ToFloat64(rejected)
	failedBefore := testutil.ToFloat64(failed)

	s.mock.ExpectBegin()
	s.mock.ExpectQuery(`FROM ratings WHERE id = \$1`).
		WithArgs(int64(2)).
		WillReturnError(pgx.ErrNoRows)
	s.mock.ExpectRollback()
	_, err := s.service.DeleteReview(s.ctx, 2, nil)
	s.ErrorIs(err, apperrors.ErrRatingNotFound)

	_, err = s.service.DeleteReview(s.ctx, 0, nil)
	s.ErrorIs(err, apperrors.ErrValidationFailed)

	s.Equal(rejectedBefore+2, testutil.ToFloat64(rejected))
	s.Equal(failedBefore, testutil.ToFloat64(failed))

	s.mock.ExpectBegin()
	s.mock.ExpectQuery(`FROM ratings WHERE id = \$1`).
		WithArgs(int64(3)).
		WillReturnError(errors.New("connection reset"))
	s.mock.ExpectRollback()
	_, err = s.service.DeleteReview(s.ctx, 3, nil)
	s.ErrorContains(err, "connection reset")

	s.Equal(rejectedBefore+2, testutil.ToFloat64(rejected))
	s.Equal(failedBefore+1, testutil.ToFloat64(failed))
}

func (s *ReviewServiceSuite) TestDeleteComment() {
	s.mock.ExpectBegin()
	s.mock.ExpectExec(`DELETE FROM comments WHERE id = \$1`).
		WithArgs(int64(9)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	s.mock.ExpectCommit()

	s.Require().NoError(s.service.DeleteComment(s.ctx, 9))
}

func (s *ReviewServiceSuite) TestDeleteComment_NotFound() {
	s.mock.ExpectBegin()
	s.mock.ExpectExec(`DELETE FROM comments WHERE id = \$1`).
		WithArgs(int64(9)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	s.mock.ExpectRollback()

	s.ErrorIs(s.service.DeleteComment(s.ctx, 9), apperrors.ErrCommentNotFound)
}
