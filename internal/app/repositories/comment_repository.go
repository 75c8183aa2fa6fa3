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
)

// CommentRepository handles comment database operations
type CommentRepository struct {
	sb squirrel.StatementBuilderType
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository() *CommentRepository {
	return &CommentRepository{sb: statementBuilder()}
}

// Insert stores a comment and fills in its ID and CreatedAt.
func (r *CommentRepository) Insert(ctx context.Context, q db.Querier, comment *models.Comment) error {
	sql, args, err := r.sb.Insert("comments").
		Columns("course_id", "user_id", "content").
		Values(comment.CourseID, int64(comment.UserID), comment.Content).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert comment query: %w", err)
	}

	if err := q.QueryRow(ctx, sql, args...).Scan(&comment.ID, &comment.CreatedAt); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return ErrReferenceMissing
		}
		return fmt.Errorf("error inserting comment: %w", err)
	}

	return nil
}

// GetByID retrieves a comment by ID
func (r *CommentRepository) GetByID(ctx context.Context, q db.Querier, id int64) (*models.Comment, error) {
	sql, args, err := r.sb.Select("id", "course_id", "user_id", "content", "created_at").
		From("comments").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get comment query: %w", err)
	}

	var comment models.Comment
	var userID int64
	err = q.QueryRow(ctx, sql, args...).Scan(&comment.ID, &comment.CourseID, &userID, &comment.Content, &comment.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error getting comment by ID: %w", err)
	}
	comment.UserID = models.UserID(userID)

	return &comment, nil
}

// Delete removes a comment by ID.
func (r *CommentRepository) Delete(ctx context.Context, q db.Querier, id int64) error {
	sql, args, err := r.sb.Delete("comments").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete comment query: %w", err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// ListByCourseIDs returns the comments of the given courses, newest first.
func (r *CommentRepository) ListByCourseIDs(ctx context.Context, q db.Querier, courseIDs []int64) ([]*models.Comment, error) {
	if len(courseIDs) == 0 {
		return []*models.Comment{}, nil
	}

	sql, args, err := r.sb.Select("id", "course_id", "user_id", "content", "created_at").
		From("comments").
		Where(squirrel.Eq{"course_id": courseIDs}).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list comments query: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying comments: %w", err)
	}
	defer rows.Close()

	comments := []*models.Comment{}
	for rows.Next() {
		comment := &models.Comment{}
		var userID int64
		if err := rows.Scan(&comment.ID, &comment.CourseID, &userID, &comment.Content, &comment.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning comment row: %w", err)
		}
		comment.UserID = models.UserID(userID)
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comment rows: %w", err)
	}

	return comments, nil
}
