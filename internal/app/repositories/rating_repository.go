package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/coursereview/internal/app/models"
	"github.com/yigit/coursereview/internal/db"
	"github.com/yigit/coursereview/internal/pkg/dberrors"
	"github.com/yigit/coursereview/internal/pkg/logger"
)

// RatingRepository handles rating database operations
type RatingRepository struct {
	sb squirrel.StatementBuilderType
}

// NewRatingRepository creates a new RatingRepository
func NewRatingRepository() *RatingRepository {
	return &RatingRepository{sb: statementBuilder()}
}

// Insert stores a rating and fills in its ID and CreatedAt.
func (r *RatingRepository) Insert(ctx context.Context, q db.Querier, rating *models.Rating) error {
	sql, args, err := r.sb.Insert("ratings").
		Columns("course_id", "user_id", "score", "would_take_again").
		Values(rating.CourseID, int64(rating.UserID), rating.Score, rating.WouldTakeAgain).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert rating query: %w", err)
	}

	err = q.QueryRow(ctx, sql, args...).Scan(&rating.ID, &rating.CreatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, RatingUserCourseConstraint) {
			return ErrRatingAlreadyExists
		}
		if dberrors.IsForeignKeyViolation(err) {
			return ErrReferenceMissing
		}
		return fmt.Errorf("error inserting rating: %w", err)
	}

	return nil
}

// Exists reports whether the user already rated the course.
func (r *RatingRepository) Exists(ctx context.Context, q db.Querier, userID models.UserID, courseID int64) (bool, error) {
	sql, args, err := r.sb.Select("1").
		From("ratings").
		Where(squirrel.Eq{"user_id": int64(userID)}).
		Where(squirrel.Eq{"course_id": courseID}).
		Prefix("SELECT EXISTS (").Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build rating exists query: %w", err)
	}

	var exists bool
	if err := q.QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking rating existence: %w", err)
	}

	return exists, nil
}

// GetByID retrieves a rating by ID
func (r *RatingRepository) GetByID(ctx context.Context, q db.Querier, id int64) (*models.Rating, error) {
	sql, args, err := r.sb.Select("id", "course_id", "user_id", "score", "would_take_again", "created_at").
		From("ratings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get rating query: %w", err)
	}

	var rating models.Rating
	var userID int64
	err = q.QueryRow(ctx, sql, args...).Scan(
		&rating.ID, &rating.CourseID, &userID, &rating.Score, &rating.WouldTakeAgain, &rating.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		logger.Error().Err(err).Int64("ratingID", id).Msg("Error scanning rating row")
		return nil, fmt.Errorf("error getting rating by ID: %w", err)
	}
	rating.UserID = models.UserID(userID)

	return &rating, nil
}

// Delete removes a rating by ID.
func (r *RatingRepository) Delete(ctx context.Context, q db.Querier, id int64) error {
	sql, args, err := r.sb.Delete("ratings").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete rating query: %w", err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting rating: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// ListScoresForCourse returns every current score of the course.
func (r *RatingRepository) ListScoresForCourse(ctx context.Context, q db.Querier, courseID int64) ([]float64, error) {
	sql, args, err := r.sb.Select("score").
		From("ratings").
		Where(squirrel.Eq{"course_id": courseID}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list scores query: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying scores: %w", err)
	}
	defer rows.Close()

	scores := []float64{}
	for rows.Next() {
		var score float64
		if err := rows.Scan(&score); err != nil {
			return nil, fmt.Errorf("error scanning score: %w", err)
		}
		scores = append(scores, score)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scores: %w", err)
	}

	return scores, nil
}
