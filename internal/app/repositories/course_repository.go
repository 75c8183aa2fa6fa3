package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/coursereview/internal/app/models"
	"github.com/yigit/coursereview/internal/db"
	"github.com/yigit/coursereview/internal/pkg/dberrors"
	"github.com/yigit/coursereview/internal/pkg/logger"
)

var courseColumns = []string{"id", "course_number", "title", "professor_id", "average_rating", "created_at"}

// CourseRepository handles course database operations
type CourseRepository struct {
	sb squirrel.StatementBuilderType
}

// NewCourseRepository creates a new CourseRepository
func NewCourseRepository() *CourseRepository {
	return &CourseRepository{sb: statementBuilder()}
}

// Create stores a course without an average and fills in its ID and CreatedAt.
func (r *CourseRepository) Create(ctx context.Context, q db.Querier, course *models.Course) error {
	sql, args, err := r.sb.Insert("courses").
		Columns("course_number", "title", "professor_id").
		Values(course.CourseNumber, course.Title, course.ProfessorID).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create course query: %w", err)
	}

	if err := q.QueryRow(ctx, sql, args...).Scan(&course.ID, &course.CreatedAt); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return ErrReferenceMissing
		}
		return fmt.Errorf("error creating course: %w", err)
	}
	course.AverageRating = nil

	return nil
}

// GetByID retrieves a course by ID
func (r *CourseRepository) GetByID(ctx context.Context, q db.Querier, id int64) (*models.Course, error) {
	sql, args, err := r.sb.Select(courseColumns...).
		From("courses").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get course query: %w", err)
	}

	course, err := scanCourse(q.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error getting course by ID: %w", err)
	}

	return course, nil
}

// LockForUpdate takes a row lock on the course for the rest of the transaction.
// Every write to a course's rating set goes through it, which keeps concurrent
// recomputations of the same course from reading each other's partial state.
func (r *CourseRepository) LockForUpdate(ctx context.Context, q db.Querier, id int64) error {
	sql, args, err := r.sb.Select("id").
		From("courses").
		Where(squirrel.Eq{"id": id}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build lock course query: %w", err)
	}

	var lockedID int64
	if err := q.QueryRow(ctx, sql, args...).Scan(&lockedID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("error locking course: %w", err)
	}

	return nil
}

// SetAverage writes the derived average. A nil average stores NULL.
func (r *CourseRepository) SetAverage(ctx context.Context, q db.Querier, id int64, average *float64) error {
	var value interface{}
	if average != nil {
		value = *average
	}

	sql, args, err := r.sb.Update("courses").
		Set("average_rating", value).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build set average query: %w", err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("courseID", id).Msg("Error updating course average")
		return fmt.Errorf("error updating course average: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// ListByProfessor returns a professor's courses ordered by course number.
func (r *CourseRepository) ListByProfessor(ctx context.Context, q db.Querier, professorID int64) ([]*models.Course, error) {
	sql, args, err := r.sb.Select(courseColumns...).
		From("courses").
		Where(squirrel.Eq{"professor_id": professorID}).
		OrderBy("course_number ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list courses query: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying courses: %w", err)
	}
	defer rows.Close()

	courses := []*models.Course{}
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning course row: %w", err)
		}
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating course rows: %w", err)
	}

	return courses, nil
}

func scanCourse(row pgx.Row) (*models.Course, error) {
	course := &models.Course{}
	var average sql.NullFloat64
	if err := row.Scan(&course.ID, &course.CourseNumber, &course.Title, &course.ProfessorID, &average, &course.CreatedAt); err != nil {
		return nil, err
	}
	if average.Valid {
		avg := average.Float64
		course.AverageRating = &avg
	}
	return course, nil
}
